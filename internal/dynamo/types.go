package dynamo

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
)

// State is a flattened complex state: a ket of length d or a row-major
// density matrix of length d*d.
type State []complex128

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return cmplxs.Norm(s, 2)
}

func (s State) Add(other State) State {
	result := s.Clone()
	cmplxs.Add(result, other)
	return result
}

func (s State) Sub(other State) State {
	result := s.Clone()
	cmplxs.Sub(result, other)
	return result
}

func (s State) Scale(factor complex128) State {
	result := s.Clone()
	cmplxs.Scale(factor, result)
	return result
}

// MaxAbs returns the largest element modulus.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		m = math.Max(m, cmplx.Abs(v))
	}
	return m
}

type System interface {
	Derive(x State, t float64) State
	Dim() int
}

// StochasticSystem is an Itô SDE with NoiseDim independent scalar Wiener
// processes. DiffusionDerivative is the directional derivative of the i-th
// diffusion term at x along dir, needed by the Milstein correction.
type StochasticSystem interface {
	System
	NoiseDim() int
	Diffusion(x State, t float64, i int) State
	DiffusionDerivative(x State, t float64, i int, dir State) State
}

type Integrator interface {
	Step(sys System, x State, t float64, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, error)
}

type StochasticIntegrator interface {
	Step(sys StochasticSystem, x State, t, dt float64, dW []float64) State
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

// Progress receives output-point progress from a running solve.
type Progress interface {
	Start(total int)
	Update(done int)
	Finish()
}

type Config struct {
	Dt            float64
	Tolerance     float64
	MaxDt         float64
	MinDt         float64
	Adaptive      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1e-3,
		Tolerance:     1e-8,
		MaxDt:         0,
		MinDt:         1e-12,
		Adaptive:      true,
		ValidateState: true,
	}
}
