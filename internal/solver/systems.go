package solver

import (
	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/qobj"
)

// schrodinger is dψ/dt = -i H(t) ψ.
type schrodinger struct {
	h    Hamiltonian
	args map[string]float64
	n    int
}

func (s *schrodinger) Dim() int { return s.n }

func (s *schrodinger) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, s.n)
	s.h.H0.MulVecTo(dx, -1i, x)
	for _, term := range s.h.Terms {
		term.Op.MulVecTo(dx, -1i*term.Coeff(t, s.args), x)
	}
	return dx
}

type dissipator struct {
	c, cdag, cdc *qobj.Qobj
}

func newDissipator(c *qobj.Qobj) dissipator {
	cdag := c.Dag()
	return dissipator{c: c, cdag: cdag, cdc: cdag.Mul(c)}
}

// apply adds cρc† - ½{c†c, ρ} to dst.
func (d dissipator) apply(dst, rho, scratch []complex128) {
	clear(scratch)
	d.c.MulMatTo(scratch, 1, rho)
	d.cdag.MatMulTo(dst, 1, scratch)
	d.cdc.MulMatTo(dst, -0.5, rho)
	d.cdc.MatMulTo(dst, -0.5, rho)
}

// lindblad is dρ/dt = -i[H(t), ρ] + Σ D[c]ρ over a row-major density matrix.
type lindblad struct {
	h    Hamiltonian
	args map[string]float64
	n    int
	diss []dissipator
}

func newLindblad(h Hamiltonian, args map[string]float64, cOps []*qobj.Qobj) *lindblad {
	l := &lindblad{h: h, args: args, n: h.H0.N()}
	for _, c := range cOps {
		l.diss = append(l.diss, newDissipator(c))
	}
	return l
}

func (l *lindblad) Dim() int { return l.n * l.n }

func (l *lindblad) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, l.n*l.n)
	l.h.H0.MulMatTo(dx, -1i, x)
	l.h.H0.MatMulTo(dx, 1i, x)
	for _, term := range l.h.Terms {
		c := term.Coeff(t, l.args)
		term.Op.MulMatTo(dx, -1i*c, x)
		term.Op.MatMulTo(dx, 1i*c, x)
	}
	if len(l.diss) > 0 {
		scratch := make([]complex128, l.n*l.n)
		for _, d := range l.diss {
			d.apply(dx, x, scratch)
		}
	}
	return dx
}

// homodyne is the stochastic master equation with the sc_ops measured by
// homodyne detection. The deterministic part includes D[c] for both c_ops
// and sc_ops.
type homodyne struct {
	*lindblad
	sc []dissipator
}

func newHomodyne(h Hamiltonian, args map[string]float64, cOps, scOps []*qobj.Qobj) *homodyne {
	all := append(append([]*qobj.Qobj(nil), cOps...), scOps...)
	hd := &homodyne{lindblad: newLindblad(h, args, all)}
	for _, c := range scOps {
		hd.sc = append(hd.sc, newDissipator(c))
	}
	return hd
}

func (h *homodyne) NoiseDim() int { return len(h.sc) }

// expectX returns Tr((c + c†)ρ) for measurement operator i.
func (h *homodyne) expectX(x dynamo.State, i int) float64 {
	return 2 * real(qobj.ExpectRaw(h.sc[i].c, x, false))
}

// Diffusion is cρ + ρc† - Tr(cρ + ρc†)ρ.
func (h *homodyne) Diffusion(x dynamo.State, t float64, i int) dynamo.State {
	d := h.sc[i]
	out := make(dynamo.State, len(x))
	d.c.MulMatTo(out, 1, x)
	d.cdag.MatMulTo(out, 1, x)
	e := complex(h.expectX(x, i), 0)
	for k := range out {
		out[k] -= e * x[k]
	}
	return out
}

// DiffusionDerivative is the derivative of Diffusion at x along dir:
// c·dir + dir·c† - Tr(c·dir + dir·c†)ρ - Tr(cρ + ρc†)·dir.
func (h *homodyne) DiffusionDerivative(x dynamo.State, t float64, i int, dir dynamo.State) dynamo.State {
	d := h.sc[i]
	out := make(dynamo.State, len(x))
	d.c.MulMatTo(out, 1, dir)
	d.cdag.MatMulTo(out, 1, dir)
	eDir := qobj.ExpectRaw(d.c, dir, false) + qobj.ExpectRaw(d.cdag, dir, false)
	eX := complex(h.expectX(x, i), 0)
	for k := range out {
		out[k] -= eDir*x[k] + eX*dir[k]
	}
	return out
}
