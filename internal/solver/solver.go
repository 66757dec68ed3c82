package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/qobj"
)

// SolveTimeEvolution solves the Schrödinger (p.Solver == "sesolve") or
// Lindblad master (p.Solver == "mesolve") equation from state0 over p.Times.
// sesolve ignores cOps. Any other solver fails with dynamo.ErrUnsupportedSolver.
func SolveTimeEvolution(ctx context.Context, p *dynamo.Parameters, h Hamiltonian, state0 *qobj.Qobj, cOps []*qobj.Qobj, opts ...Option) (*Result, error) {
	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}

	switch p.Solver {
	case dynamo.Sesolve:
		return sesolve(ctx, p, h, state0, s)
	case dynamo.Mesolve:
		return mesolve(ctx, p, h, state0, cOps, s)
	default:
		return nil, fmt.Errorf("%w: solver %q is not a valid solver", dynamo.ErrUnsupportedSolver, p.Solver)
	}
}

func validateTimes(times []float64) error {
	if len(times) == 0 {
		return fmt.Errorf("%w: no time points", dynamo.ErrInvalidTimeGrid)
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return fmt.Errorf("%w: times[%d]=%g does not follow %g", dynamo.ErrInvalidTimeGrid, i, times[i], times[i-1])
		}
	}
	return nil
}

func validateOps(h Hamiltonian, ops []*qobj.Qobj, what string) error {
	for i, op := range ops {
		if op == nil || !op.SameSpace(h.H0) {
			return fmt.Errorf("%w: %s %d does not act on the hamiltonian's space", dynamo.ErrDimensionMismatch, what, i)
		}
	}
	return nil
}

func sesolve(ctx context.Context, p *dynamo.Parameters, h Hamiltonian, psi0 *qobj.Qobj, s settings) (*Result, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	if !psi0.IsKet() || !psi0.HasDims(h.H0.Dims()) {
		return nil, fmt.Errorf("%w: sesolve needs a ket over the hamiltonian's space", dynamo.ErrDimensionMismatch)
	}
	sys := &schrodinger{h: h, args: s.args, n: h.H0.N()}
	return evolve(ctx, p, string(dynamo.Sesolve), sys, psi0.Dims(), true, dynamo.State(psi0.Raw()).Clone(), s)
}

func mesolve(ctx context.Context, p *dynamo.Parameters, h Hamiltonian, state0 *qobj.Qobj, cOps []*qobj.Qobj, s settings) (*Result, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	if err := validateOps(h, cOps, "collapse operator"); err != nil {
		return nil, err
	}
	rho0, err := densityMatrix(h, state0)
	if err != nil {
		return nil, err
	}
	sys := newLindblad(h, s.args, cOps)
	return evolve(ctx, p, string(dynamo.Mesolve), sys, rho0.Dims(), false, dynamo.State(rho0.Raw()).Clone(), s)
}

// densityMatrix promotes a ket to |ψ⟩⟨ψ| and checks the space.
func densityMatrix(h Hamiltonian, state0 *qobj.Qobj) (*qobj.Qobj, error) {
	rho0 := state0
	if state0.IsKet() {
		rho0 = state0.KetToDM()
	}
	if !rho0.SameSpace(h.H0) {
		return nil, fmt.Errorf("%w: initial state does not live in the hamiltonian's space", dynamo.ErrDimensionMismatch)
	}
	return rho0, nil
}

func toQobj(dims []int, isKet bool, x dynamo.State) *qobj.Qobj {
	if isKet {
		return qobj.NewKet(dims, x.Clone())
	}
	return qobj.NewOperator(dims, x.Clone())
}

func evolve(ctx context.Context, p *dynamo.Parameters, name string, sys dynamo.System, dims []int, isKet bool, x dynamo.State, s settings) (*Result, error) {
	times := p.Times
	if err := validateTimes(times); err != nil {
		return nil, err
	}
	for i, op := range s.eOps {
		if op == nil || !op.IsOper() || !op.HasDims(dims) {
			return nil, fmt.Errorf("%w: expectation operator %d", dynamo.ErrDimensionMismatch, i)
		}
	}

	log := s.log.With().Str("solver", name).Logger()
	log.Debug().EmbedObject(p).Msg("solve start")
	start := time.Now()

	result := &Result{
		Solver:  name,
		Times:   append([]float64(nil), times...),
		Expect:  make([][]complex128, len(s.eOps)),
		Metrics: make(map[string]float64),
	}
	for i := range result.Expect {
		result.Expect[i] = make([]complex128, 0, len(times))
	}
	store := s.storeStates || len(s.eOps) == 0

	for _, m := range s.metrics {
		m.Reset()
	}

	record := func(idx int) {
		for i, op := range s.eOps {
			result.Expect[i] = append(result.Expect[i], qobj.ExpectRaw(op, x, isKet))
		}
		if store {
			result.States = append(result.States, toQobj(dims, isKet, x))
		}
		for _, m := range s.metrics {
			m.Observe(x, times[idx])
		}
		for _, o := range s.observers {
			o.OnStep(x, times[idx])
		}
	}

	if s.progress != nil {
		s.progress.Start(len(times))
		defer s.progress.Finish()
	}

	integ := s.newIntegrator()
	adaptive, isAdaptive := integ.(dynamo.AdaptiveIntegrator)
	isAdaptive = isAdaptive && s.cfg.Adaptive

	record(0)
	if s.progress != nil {
		s.progress.Update(1)
	}

	dt := s.cfg.Dt
	for k := 0; k+1 < len(times); k++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		t, end := times[k], times[k+1]
		var err error
		if isAdaptive {
			x, dt, err = stepAdaptive(adaptive, sys, x, t, end, dt, s.cfg, &result.Stats)
		} else {
			x = stepFixed(integ, sys, x, t, end, s.cfg.Dt, &result.Stats)
		}
		if err == nil && s.cfg.ValidateState && !x.IsValid() {
			err = dynamo.ErrInvalidState
		}
		if err != nil {
			return result, &dynamo.SolveError{Solver: name, Step: result.Stats.Steps, Time: t, Wrapped: err}
		}

		record(k + 1)
		if s.progress != nil {
			s.progress.Update(k + 2)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	log.Debug().
		Int("steps", result.Stats.Steps).
		Int("rejected", result.Stats.Rejected).
		Dur("elapsed", time.Since(start)).
		Msg("solve done")

	return result, nil
}

// stepFixed covers [t, end] in equal substeps no longer than dt.
func stepFixed(integ dynamo.Integrator, sys dynamo.System, x dynamo.State, t, end, dt float64, stats *Stats) dynamo.State {
	n := int((end-t)/dt + 0.5)
	if n < 1 {
		n = 1
	}
	h := (end - t) / float64(n)
	for i := 0; i < n; i++ {
		x = integ.Step(sys, x, t+float64(i)*h, h)
		stats.Steps++
	}
	return x
}

// stepAdaptive covers [t, end] with error-controlled steps and returns the
// step size to try next.
func stepAdaptive(integ dynamo.AdaptiveIntegrator, sys dynamo.System, x dynamo.State, t, end, dt float64, cfg dynamo.Config, stats *Stats) (dynamo.State, float64, error) {
	for t < end {
		if cfg.MaxDt > 0 && dt > cfg.MaxDt {
			dt = cfg.MaxDt
		}
		h := dt
		last := t+h >= end
		if last {
			h = end - t
		}

		xNew, dtNew, err := integ.StepAdaptive(sys, x, t, h, cfg.Tolerance)
		if errors.Is(err, dynamo.ErrStepRejected) {
			stats.Rejected++
			dt = dtNew
			if dt < cfg.MinDt {
				return x, dt, dynamo.ErrStepTooSmall
			}
			continue
		}
		if err != nil {
			return x, dt, err
		}

		x = xNew
		stats.Steps++
		if last {
			t = end
		} else {
			t += h
		}
		dt = dtNew
	}
	return x, dt, nil
}
