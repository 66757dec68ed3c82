package integrators

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/qdynsim/internal/dynamo"
)

func TestRK45_Step(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}

	x := dynamo.State{1.0, 0.0}
	dt := 0.01

	for i := 0; i < 1000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	if !x.IsValid() {
		t.Error("RK45 produced invalid state")
	}
}

func TestRK45_EnergyConservation(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	initialEnergy := dyn.Energy(x0)
	x := x0.Clone()
	dt := 0.01

	for i := 0; i < 10000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	finalEnergy := dyn.Energy(x)
	drift := math.Abs(finalEnergy-initialEnergy) / initialEnergy

	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45_AdaptiveStep(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	x, newDt, err := integrator.StepAdaptive(dyn, x0, 0, 0.1, 1e-6)

	if err != nil {
		t.Errorf("StepAdaptive returned error: %v", err)
	}

	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}

	if newDt <= 0 {
		t.Errorf("StepAdaptive returned invalid dt: %f", newDt)
	}
}

func TestRK45_RejectsLargeStep(t *testing.T) {
	integrator := NewRK45()
	dyn := &rotator{w: 50}

	x, newDt, err := integrator.StepAdaptive(dyn, dynamo.State{1}, 0, 1.0, 1e-10)

	if !errors.Is(err, dynamo.ErrStepRejected) {
		t.Fatalf("expected ErrStepRejected, got %v", err)
	}
	if x != nil {
		t.Error("rejected step should not return a state")
	}
	if newDt >= 1.0 {
		t.Errorf("rejected step should shrink dt, got %f", newDt)
	}
}

func TestRK45_AdaptiveLoop(t *testing.T) {
	integrator := NewRK45()
	dyn := &rotator{w: 3}

	x := dynamo.State{1}
	tNow, dt, end := 0.0, 0.5, 2.0
	for tNow < end {
		if tNow+dt > end {
			dt = end - tNow
		}
		xNew, dtNew, err := integrator.StepAdaptive(dyn, x, tNow, dt, 1e-10)
		if errors.Is(err, dynamo.ErrStepRejected) {
			dt = dtNew
			continue
		}
		x = xNew
		tNow += dt
		dt = dtNew
	}

	want := cmplx.Exp(complex(0, -6))
	if cmplx.Abs(x[0]-want) > 1e-7 {
		t.Errorf("adaptive solution = %v, want %v", x[0], want)
	}
}
