package integrators

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/qdynsim/internal/dynamo"
)

func TestRK4Accuracy(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(real(x[0])-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", real(x[0]), expectedX)
	}

	if math.Abs(real(x[1])-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", real(x[1]), expectedV)
	}
}

func TestRK4Phase(t *testing.T) {
	dyn := &rotator{w: 2}
	integ := NewRK4()

	x := dynamo.State{1}
	dt := 0.001
	for i := 0; i < 1000; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	want := cmplx.Exp(complex(0, -2))
	if cmplx.Abs(x[0]-want) > 1e-9 {
		t.Errorf("phase error too large: got %v, want %v", x[0], want)
	}
}

func TestEulerFirstOrder(t *testing.T) {
	dyn := &rotator{w: 1}
	integ := NewEuler()

	x := dynamo.State{1}
	x = integ.Step(dyn, x, 0, 0.1)

	if x[0] != complex(1, -0.1) {
		t.Errorf("euler step = %v, want (1-0.1i)", x[0])
	}
}
