package integrators

import (
	"github.com/san-kum/qdynsim/internal/dynamo"
	"gonum.org/v1/gonum/cmplxs"
)

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	dx := dyn.Derive(x, t)
	result := x.Clone()
	cmplxs.AddScaled(result, complex(dt, 0), dx)
	return result
}
