package solver

import (
	"github.com/rs/zerolog"
	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/integrators"
	"github.com/san-kum/qdynsim/internal/qobj"
)

type settings struct {
	eOps          []*qobj.Qobj
	args          map[string]float64
	progress      dynamo.Progress
	log           zerolog.Logger
	newIntegrator func() dynamo.Integrator
	newStochastic func() dynamo.StochasticIntegrator
	cfg           dynamo.Config
	metrics       []dynamo.Metric
	observers     []dynamo.Observer
	storeStates   bool
}

func defaults() settings {
	return settings{
		log:           zerolog.Nop(),
		newIntegrator: func() dynamo.Integrator { return integrators.NewRK45() },
		newStochastic: func() dynamo.StochasticIntegrator { return integrators.NewMilstein() },
		cfg:           dynamo.DefaultConfig(),
	}
}

type Option func(*settings)

// WithExpect records ⟨op⟩ at every output time.
func WithExpect(ops ...*qobj.Qobj) Option {
	return func(s *settings) { s.eOps = append(s.eOps, ops...) }
}

// WithArgs passes Hamiltonian parameters to time-dependent coefficients.
func WithArgs(args map[string]float64) Option {
	return func(s *settings) { s.args = args }
}

// WithProgress reports output-point (or trajectory) progress.
func WithProgress(p dynamo.Progress) Option {
	return func(s *settings) { s.progress = p }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithIntegrator selects the deterministic stepper. The factory is called
// once per solve.
func WithIntegrator(newIntegrator func() dynamo.Integrator) Option {
	return func(s *settings) { s.newIntegrator = newIntegrator }
}

// WithStochasticIntegrator selects the SDE stepper. The factory is called
// once per trajectory.
func WithStochasticIntegrator(newIntegrator func() dynamo.StochasticIntegrator) Option {
	return func(s *settings) { s.newStochastic = newIntegrator }
}

func WithConfig(cfg dynamo.Config) Option {
	return func(s *settings) { s.cfg = cfg }
}

// WithMetrics attaches observers evaluated at every output time of a
// deterministic solve.
func WithMetrics(metrics ...dynamo.Metric) Option {
	return func(s *settings) { s.metrics = append(s.metrics, metrics...) }
}

// WithStoreStates keeps the state at every output time even when
// expectation operators are given.
func WithStoreStates(store bool) Option {
	return func(s *settings) { s.storeStates = store }
}

// WithObserver streams every output state of a deterministic solve to obs.
// The state must not be retained past the call.
func WithObserver(obs ...dynamo.Observer) Option {
	return func(s *settings) { s.observers = append(s.observers, obs...) }
}
