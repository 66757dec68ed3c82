package integrators

import "github.com/san-kum/qdynsim/internal/dynamo"

// rotator is dx/dt = -i·w·x, with x(t) = x0·exp(-i·w·t).
type rotator struct{ w float64 }

func (r *rotator) Dim() int { return 1 }
func (r *rotator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{complex(0, -r.w) * x[0]}
}

type harmonicOscillator struct{}

func (h *harmonicOscillator) Dim() int { return 2 }
func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (real(x[0])*real(x[0]) + real(x[1])*real(x[1]))
}

// gbm is dX = mu·X dt + sigma·X dW.
type gbm struct{ mu, sigma float64 }

func (g *gbm) Dim() int      { return 1 }
func (g *gbm) NoiseDim() int { return 1 }
func (g *gbm) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{complex(g.mu, 0) * x[0]}
}
func (g *gbm) Diffusion(x dynamo.State, t float64, i int) dynamo.State {
	return dynamo.State{complex(g.sigma, 0) * x[0]}
}
func (g *gbm) DiffusionDerivative(x dynamo.State, t float64, i int, dir dynamo.State) dynamo.State {
	return dynamo.State{complex(g.sigma, 0) * dir[0]}
}
