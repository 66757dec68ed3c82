package experiment

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"github.com/san-kum/qdynsim/internal/config"
	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/qobj"
	"github.com/san-kum/qdynsim/internal/solver"
)

// Outcome is a finished run reduced to real-valued series.
type Outcome struct {
	Solver string
	Times  []float64
	Labels []string
	// Expect[i][k] is ⟨EOps[i]⟩ at Times[k].
	Expect [][]float64
	// MeasurementLabels names the homodyne records of a stochastic run.
	MeasurementLabels []string
	// Measurement[k][i] is record i averaged over [Times[k], Times[k+1]].
	Measurement [][]float64
	Metrics     map[string]float64
	Stats       solver.Stats

	Deterministic *solver.Result
	Stochastic    *solver.StochasticResult
}

type Experiment struct {
	cfg     *config.Config
	params  *dynamo.Parameters
	problem *Problem
	log     zerolog.Logger

	newIntegrator func() dynamo.Integrator
	newStochastic func() dynamo.StochasticIntegrator
	metrics       []dynamo.Metric
	opts          []solver.Option
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, log: zerolog.Nop()}
}

func (e *Experiment) WithLogger(log zerolog.Logger) *Experiment {
	e.log = log
	return e
}

// Setup validates the config, builds the model and resolves the
// integrator. Extra solver options (progress, observers) are applied to
// every solve.
func (e *Experiment) Setup(reg *Registry, opts ...solver.Option) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	build, err := reg.GetModel(e.cfg.Model)
	if err != nil {
		return err
	}
	e.params = e.cfg.ToParameters()
	e.problem, err = build(e.cfg, e.params)
	if err != nil {
		return fmt.Errorf("build %s: %w", e.cfg.Model, err)
	}

	if e.cfg.Stochastic() {
		name := e.cfg.Integrator
		if name == "" {
			name = "milstein"
		}
		if e.newStochastic, err = reg.GetStochasticIntegrator(name); err != nil {
			return err
		}
		if len(e.problem.SCOps) == 0 {
			return fmt.Errorf("model %s has no measurement operators for %s", e.cfg.Model, config.Smesolve)
		}
	} else {
		name := e.cfg.Integrator
		if name == "" {
			name = "rk45"
		}
		if e.newIntegrator, err = reg.GetIntegrator(name); err != nil {
			return err
		}
		e.metrics = reg.DefaultMetrics(e.problem, e.params.Solver == dynamo.Sesolve)
	}

	e.opts = opts
	return nil
}

func (e *Experiment) Params() *dynamo.Parameters { return e.params }

func (e *Experiment) Problem() *Problem { return e.problem }

// Run solves the configured problem. rng seeds stochastic runs; nil
// derives a generator from the config seed.
func (e *Experiment) Run(ctx context.Context, rng *rand.Rand) (*Outcome, error) {
	if e.problem == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	e.params.LogParameters(e.log)

	opts := []solver.Option{
		solver.WithExpect(e.problem.EOps...),
		solver.WithArgs(e.cfg.Params),
		solver.WithConfig(e.cfg.SolveConfig()),
		solver.WithLogger(e.log),
	}
	opts = append(opts, e.opts...)

	if e.cfg.Stochastic() {
		opts = append(opts, solver.WithStochasticIntegrator(e.newStochastic))
		res, err := solver.SolveTimeEvolutionTrajectories(ctx, e.params, e.problem.H, e.problem.State0,
			e.problem.COps, e.problem.SCOps, e.cfg.NTraj, e.cfg.NSubsteps, rng, opts...)
		if err != nil {
			return nil, err
		}
		return e.stochasticOutcome(res), nil
	}

	opts = append(opts, solver.WithIntegrator(e.newIntegrator), solver.WithMetrics(e.metrics...))
	cOps := append(append([]*qobj.Qobj(nil), e.problem.COps...), e.problem.SCOps...)
	res, err := solver.SolveTimeEvolution(ctx, e.params, e.problem.H, e.problem.State0, cOps, opts...)
	if err != nil {
		return nil, err
	}
	out := &Outcome{
		Solver:        res.Solver,
		Times:         res.Times,
		Labels:        e.problem.Labels,
		Expect:        make([][]float64, len(res.Expect)),
		Metrics:       res.Metrics,
		Stats:         res.Stats,
		Deterministic: res,
	}
	for i := range res.Expect {
		out.Expect[i] = res.RealExpect(i)
	}
	return out, nil
}

func (e *Experiment) stochasticOutcome(res *solver.StochasticResult) *Outcome {
	out := &Outcome{
		Solver:      config.Smesolve,
		Times:       res.Times,
		Labels:      e.problem.Labels,
		Expect:      make([][]float64, len(res.Expect)),
		Measurement: res.Measurement,
		Metrics:     map[string]float64{"ntraj": float64(len(res.Trajectories))},
		Stochastic:  res,
	}
	for i := range res.Expect {
		out.Expect[i] = res.RealExpect(i)
	}
	for i := range e.problem.SCOps {
		out.MeasurementLabels = append(out.MeasurementLabels, fmt.Sprintf("J[%d]", i))
	}
	return out
}

// AddOptions appends solver options after Setup, for callers that need
// the built problem to construct them.
func (e *Experiment) AddOptions(opts ...solver.Option) {
	e.opts = append(e.opts, opts...)
}
