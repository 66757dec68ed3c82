package operators

import (
	"fmt"
	"math"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/qobj"
)

// TensorOrder fixes the factor order inside an oscillator site.
type TensorOrder int

const (
	// QubitFirst lays a site out as qubit ⊗ oscillator.
	QubitFirst TensorOrder = iota
	// OscillatorFirst lays a site out as oscillator ⊗ qubit.
	OscillatorFirst
)

// Operator names accepted by Operators.Get.
const (
	NameZero = "zero"
	NameIden = "iden"
	NameA    = "a"
	NameSm   = "Sm"
	NameSp   = "Sp"
	NameSz   = "Sz"
	NameSx   = "Sx"
	NameSy   = "Sy"
	NameX    = "x"
	NameY    = "y"
	NameN    = "n"
	NameF    = "f"
)

var names = []string{NameZero, NameIden, NameA, NameSm, NameSp, NameSz, NameSx, NameSy, NameX, NameY, NameN, NameF}

// Names lists every operator name in a fixed order.
func Names() []string { return append([]string(nil), names...) }

type options struct {
	order TensorOrder
}

type Option func(*options)

func WithTensorOrder(order TensorOrder) Option {
	return func(o *options) { o.order = order }
}

// Operators holds the full-space operator set, one entry per site.
type Operators struct {
	Sites []dynamo.Site
	Order TensorOrder

	Zero []*qobj.Qobj
	Iden []*qobj.Qobj
	A    []*qobj.Qobj
	Sm   []*qobj.Qobj
	Sp   []*qobj.Qobj
	Sz   []*qobj.Qobj
	Sx   []*qobj.Qobj
	Sy   []*qobj.Qobj
	X    []*qobj.Qobj
	Y    []*qobj.Qobj
	N    []*qobj.Qobj
	F    []*qobj.Qobj
}

type localOps struct {
	zero, iden, a, sm *qobj.Qobj
}

func buildLocal(site dynamo.Site, order TensorOrder) localOps {
	sZero, sIden, sDestroy := qobj.Zero(2), qobj.Identity(2), qobj.Destroy(2)

	switch site.Kind {
	case dynamo.OscillatorSite:
		aZero, aIden, aDestroy := qobj.Zero(site.Fock), qobj.Identity(site.Fock), qobj.Destroy(site.Fock)
		if order == OscillatorFirst {
			return localOps{
				zero: qobj.Tensor(aZero, sZero),
				iden: qobj.Tensor(aIden, sIden),
				a:    qobj.Tensor(aDestroy, sIden),
				sm:   qobj.Tensor(aIden, sDestroy),
			}
		}
		return localOps{
			zero: qobj.Tensor(sZero, aZero),
			iden: qobj.Tensor(sIden, aIden),
			a:    qobj.Tensor(sIden, aDestroy),
			sm:   qobj.Tensor(sDestroy, aIden),
		}
	default:
		// no oscillator: the ladder operator degenerates to the identity
		return localOps{zero: sZero, iden: sIden, a: sIden, sm: sDestroy}
	}
}

// New builds the operator set for p. A Fock list whose length differs from
// NumSites fails with dynamo.ErrDimensionMismatch.
func New(p *dynamo.Parameters, opts ...Option) (*Operators, error) {
	o := options{order: QubitFirst}
	for _, opt := range opts {
		opt(&o)
	}

	nSites := p.NumSites
	if nSites < 1 {
		return nil, fmt.Errorf("%w: %d sites", dynamo.ErrDimensionMismatch, nSites)
	}
	if len(p.Sites) != nSites {
		return nil, fmt.Errorf("%w: %d fock entries for %d sites", dynamo.ErrDimensionMismatch, len(p.Sites), nSites)
	}

	local := make([]localOps, nSites)
	for i, site := range p.Sites {
		local[i] = buildLocal(site, o.order)
	}

	ops := &Operators{
		Sites: append([]dynamo.Site(nil), p.Sites...),
		Order: o.order,
	}

	zeros := make([]*qobj.Qobj, nSites)
	for i := range local {
		zeros[i] = local[i].zero
	}
	zero := qobj.Tensor(zeros...)

	embed := func(n int, op *qobj.Qobj) *qobj.Qobj {
		list := make([]*qobj.Qobj, nSites)
		for m := range local {
			list[m] = local[m].iden
		}
		list[n] = op
		return qobj.Tensor(list...)
	}

	for n := 0; n < nSites; n++ {
		ops.Zero = append(ops.Zero, zero)
		ops.Iden = append(ops.Iden, embed(n, local[n].iden))
		ops.Sm = append(ops.Sm, embed(n, local[n].sm))
		ops.A = append(ops.A, embed(n, local[n].a))
	}

	invSqrt2 := complex(1/math.Sqrt2, 0)
	for n := 0; n < nSites; n++ {
		sm, a := ops.Sm[n], ops.A[n]
		sp := sm.Dag()

		ops.Sp = append(ops.Sp, sp)
		ops.Sz = append(ops.Sz, sm.Mul(sp).Sub(sp.Mul(sm)))
		ops.Sx = append(ops.Sx, sm.Add(sp))
		ops.Sy = append(ops.Sy, sm.Sub(sp).Scale(-1i))

		if p.Sites[n].HasOscillator() {
			ad := a.Dag()
			ops.X = append(ops.X, a.Add(ad).Scale(invSqrt2))
			ops.Y = append(ops.Y, a.Sub(ad).Scale(-1i*invSqrt2))
			ops.N = append(ops.N, ad.Mul(a))
		} else {
			ops.X = append(ops.X, ops.Iden[n])
			ops.Y = append(ops.Y, ops.Iden[n])
			ops.N = append(ops.N, ops.Iden[n])
		}
	}

	ops.F = jordanWigner(ops.Iden[0], ops.Sz, ops.Sm)
	return ops, nil
}

// jordanWigner returns F[n] = Π_{k<n}(-Sz[k]) · Sm[n].
func jordanWigner(iden *qobj.Qobj, sz, sm []*qobj.Qobj) []*qobj.Qobj {
	f := make([]*qobj.Qobj, len(sm))
	phase := iden
	for n := range sm {
		f[n] = phase.Mul(sm[n])
		phase = phase.Mul(sz[n].Neg())
	}
	return f
}

func (o *Operators) NumSites() int { return len(o.Sites) }

// Dim is the total Hilbert-space dimension.
func (o *Operators) Dim() int { return o.Iden[0].N() }

// Dims returns the per-factor dims of the full space.
func (o *Operators) Dims() []int { return o.Iden[0].Dims() }

func (o *Operators) table(name string) ([]*qobj.Qobj, bool) {
	switch name {
	case NameZero:
		return o.Zero, true
	case NameIden:
		return o.Iden, true
	case NameA:
		return o.A, true
	case NameSm:
		return o.Sm, true
	case NameSp:
		return o.Sp, true
	case NameSz:
		return o.Sz, true
	case NameSx:
		return o.Sx, true
	case NameSy:
		return o.Sy, true
	case NameX:
		return o.X, true
	case NameY:
		return o.Y, true
	case NameN:
		return o.N, true
	case NameF:
		return o.F, true
	}
	return nil, false
}

// Get looks an operator up by name and site index.
func (o *Operators) Get(name string, site int) (*qobj.Qobj, error) {
	t, ok := o.table(name)
	if !ok {
		return nil, fmt.Errorf("unknown operator: %s", name)
	}
	if site < 0 || site >= len(t) {
		return nil, fmt.Errorf("site %d out of range [0, %d)", site, len(t))
	}
	return t[site], nil
}

// Site returns the name-to-operator mapping for one site.
func (o *Operators) Site(n int) map[string]*qobj.Qobj {
	m := make(map[string]*qobj.Qobj, len(names))
	for _, name := range names {
		t, _ := o.table(name)
		m[name] = t[n]
	}
	return m
}

// Ground returns the product state with every qubit in |0⟩ and every
// oscillator in vacuum.
func (o *Operators) Ground() *qobj.Qobj {
	return o.productState(make([]int, o.NumSites()), make([]int, o.NumSites()))
}

// ProductState returns the ket with qubit occupations q[i] ∈ {0, 1} and
// oscillator occupations n[i] (ignored on qubit-only sites).
func (o *Operators) ProductState(q, n []int) (*qobj.Qobj, error) {
	if len(q) != len(o.Sites) || len(n) != len(o.Sites) {
		return nil, fmt.Errorf("%w: product state needs %d qubit and oscillator occupations, got %d and %d",
			qobj.ErrDimensionMismatch, len(o.Sites), len(q), len(n))
	}
	for i, site := range o.Sites {
		if q[i] < 0 || q[i] > 1 {
			return nil, fmt.Errorf("%w: qubit occupation %d at site %d", qobj.ErrDimensionMismatch, q[i], i)
		}
		if site.HasOscillator() && (n[i] < 0 || n[i] >= site.Fock) {
			return nil, fmt.Errorf("%w: oscillator occupation %d at site %d outside [0, %d)",
				qobj.ErrDimensionMismatch, n[i], i, site.Fock)
		}
	}
	return o.productState(q, n), nil
}

func (o *Operators) productState(q, n []int) *qobj.Qobj {
	kets := make([]*qobj.Qobj, 0, 2*len(o.Sites))
	for i, site := range o.Sites {
		qk := qobj.Basis(2, q[i])
		if !site.HasOscillator() {
			kets = append(kets, qk)
			continue
		}
		ak := qobj.Basis(site.Fock, n[i])
		if o.Order == OscillatorFirst {
			kets = append(kets, ak, qk)
		} else {
			kets = append(kets, qk, ak)
		}
	}
	return qobj.Tensor(kets...)
}
