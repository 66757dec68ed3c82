package operators

import (
	"fmt"

	"github.com/san-kum/qdynsim/internal/qobj"
)

// QubitOnly is the operator set of n two-level sites with no oscillators,
// built over the excitation-number-restricted basis.
type QubitOnly struct {
	NumSites    int
	Excitations int
	States      [][]int

	Iden *qobj.Qobj
	Zero *qobj.Qobj
	Sm   []*qobj.Qobj
	Sp   []*qobj.Qobj
	Sz   []*qobj.Qobj
	Sx   []*qobj.Qobj
	Sy   []*qobj.Qobj
	F    []*qobj.Qobj
}

// DefaultExcitations asks NewQubitOnly for the nSites² cap.
const DefaultExcitations = -1

// NewQubitOnly builds the restricted operator set. A negative excitations
// cap (DefaultExcitations) means nSites²; a cap of zero keeps only the
// vacuum.
func NewQubitOnly(nSites, excitations int) (*QubitOnly, error) {
	if nSites < 1 {
		return nil, fmt.Errorf("%w: %d sites", qobj.ErrDimensionMismatch, nSites)
	}
	if excitations < 0 {
		excitations = nSites * nSites
	}

	dims := make([]int, nSites)
	for i := range dims {
		dims[i] = 2
	}

	q := &QubitOnly{
		NumSites:    nSites,
		Excitations: excitations,
		States:      qobj.ENRStates(dims, excitations),
		Sm:          qobj.ENRDestroy(dims, excitations),
		Iden:        qobj.ENRIdentity(dims, excitations),
	}
	q.Zero = q.Iden.Scale(0)

	for _, sm := range q.Sm {
		sp := sm.Dag()
		q.Sp = append(q.Sp, sp)
		q.Sz = append(q.Sz, sm.Mul(sp).Sub(sp.Mul(sm)))
		q.Sx = append(q.Sx, sm.Add(sp).Scale(0.5))
		q.Sy = append(q.Sy, sm.Sub(sp).Scale(-0.5i))
	}

	q.F = jordanWigner(q.Iden, q.Sz, q.Sm)
	return q, nil
}

// Dim is the size of the restricted basis.
func (q *QubitOnly) Dim() int { return q.Iden.N() }

// Basis returns the basis ket with the given per-site excitations.
func (q *QubitOnly) Basis(occupations []int) (*qobj.Qobj, error) {
	dims := make([]int, q.NumSites)
	for i := range dims {
		dims[i] = 2
	}
	return qobj.ENRBasis(dims, q.Excitations, occupations)
}
