package metrics

import (
	"github.com/san-kum/qdynsim/internal/dynamo"
	"gonum.org/v1/gonum/cmplxs"
)

// Purity reports Tr(ρ²) of the last observed state. A ket state (length
// dim) is pure by construction.
type Purity struct {
	name  string
	dim   int
	value float64
}

func NewPurity(dim int) *Purity {
	return &Purity{name: "purity", dim: dim, value: 1}
}

func (p *Purity) Name() string { return p.name }

// Observe uses Tr(ρ²) = Σ|ρ_ij|² for Hermitian ρ.
func (p *Purity) Observe(x dynamo.State, t float64) {
	if len(x) == p.dim {
		p.value = 1
		return
	}
	norm := cmplxs.Norm(x, 2)
	p.value = norm * norm
}

func (p *Purity) Value() float64 { return p.value }

func (p *Purity) Reset() { p.value = 1 }
