package integrators

import (
	"github.com/san-kum/qdynsim/internal/dynamo"
	"gonum.org/v1/gonum/cmplxs"
)

// Milstein is the strong order 1.0 scheme for an Itô SDE driven by
// independent scalar Wiener increments:
//
//	x' = x + f dt + Σ_i b_i ΔW_i + ½ Σ_ij (b_i' b_j)(ΔW_i ΔW_j - δ_ij dt)
//
// Each noise channel takes one scalar increment per step.
type Milstein struct{}

func NewMilstein() *Milstein {
	return &Milstein{}
}

func (m *Milstein) Step(sys dynamo.StochasticSystem, x dynamo.State, t, dt float64, dW []float64) dynamo.State {
	result := x.Clone()
	cmplxs.AddScaled(result, complex(dt, 0), sys.Derive(x, t))

	nd := sys.NoiseDim()
	b := make([]dynamo.State, nd)
	for i := 0; i < nd; i++ {
		b[i] = sys.Diffusion(x, t, i)
		cmplxs.AddScaled(result, complex(dW[i], 0), b[i])
	}

	for i := 0; i < nd; i++ {
		for j := 0; j < nd; j++ {
			w := dW[i] * dW[j]
			if i == j {
				w -= dt
			}
			if w == 0 {
				continue
			}
			cmplxs.AddScaled(result, complex(0.5*w, 0), sys.DiffusionDerivative(x, t, i, b[j]))
		}
	}
	return result
}

// EulerMaruyama is the strong order 0.5 scheme, kept as a cheaper reference.
type EulerMaruyama struct{}

func NewEulerMaruyama() *EulerMaruyama {
	return &EulerMaruyama{}
}

func (e *EulerMaruyama) Step(sys dynamo.StochasticSystem, x dynamo.State, t, dt float64, dW []float64) dynamo.State {
	result := x.Clone()
	cmplxs.AddScaled(result, complex(dt, 0), sys.Derive(x, t))
	for i := 0; i < sys.NoiseDim(); i++ {
		cmplxs.AddScaled(result, complex(dW[i], 0), sys.Diffusion(x, t, i))
	}
	return result
}
