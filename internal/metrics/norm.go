package metrics

import (
	"math"

	"github.com/san-kum/qdynsim/internal/dynamo"
)

// NormDrift is the largest |‖ψ‖ - 1| for kets or |Tr ρ - 1| for density
// matrices seen so far.
type NormDrift struct {
	name     string
	dim      int
	isKet    bool
	maxDrift float64
}

func NewNormDrift(dim int, isKet bool) *NormDrift {
	return &NormDrift{name: "norm_drift", dim: dim, isKet: isKet}
}

func (n *NormDrift) Name() string { return n.name }

func (n *NormDrift) Observe(x dynamo.State, t float64) {
	var v float64
	if n.isKet {
		v = x.Norm()
	} else {
		v = real(trace(x, n.dim))
	}
	n.maxDrift = math.Max(n.maxDrift, math.Abs(v-1))
}

func (n *NormDrift) Value() float64 { return n.maxDrift }

func (n *NormDrift) Reset() { n.maxDrift = 0 }

func trace(rho dynamo.State, dim int) complex128 {
	var tr complex128
	for i := 0; i < dim; i++ {
		tr += rho[i*dim+i]
	}
	return tr
}
