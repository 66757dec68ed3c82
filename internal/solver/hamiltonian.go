package solver

import (
	"fmt"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/qobj"
)

// CoeffFunc is a time-dependent coefficient. args carries the caller's
// Hamiltonian parameters.
type CoeffFunc func(t float64, args map[string]float64) complex128

type Term struct {
	Op    *qobj.Qobj
	Coeff CoeffFunc
}

// Hamiltonian is H(t) = H0 + Σ_k coeff_k(t)·Op_k.
type Hamiltonian struct {
	H0    *qobj.Qobj
	Terms []Term
}

// Static wraps a time-independent Hamiltonian.
func Static(h *qobj.Qobj) Hamiltonian {
	return Hamiltonian{H0: h}
}

func (h Hamiltonian) TimeDependent() bool { return len(h.Terms) > 0 }

// At evaluates H(t).
func (h Hamiltonian) At(t float64, args map[string]float64) *qobj.Qobj {
	out := h.H0
	for _, term := range h.Terms {
		out = out.Add(term.Op.Scale(term.Coeff(t, args)))
	}
	return out
}

func (h Hamiltonian) validate() error {
	if h.H0 == nil {
		return fmt.Errorf("%w: nil hamiltonian", dynamo.ErrDimensionMismatch)
	}
	if !h.H0.IsOper() {
		return fmt.Errorf("%w: hamiltonian is not an operator", dynamo.ErrDimensionMismatch)
	}
	for i, term := range h.Terms {
		if term.Op == nil || !term.Op.SameSpace(h.H0) {
			return fmt.Errorf("%w: hamiltonian term %d", dynamo.ErrDimensionMismatch, i)
		}
		if term.Coeff == nil {
			return fmt.Errorf("hamiltonian term %d has no coefficient", i)
		}
	}
	return nil
}
