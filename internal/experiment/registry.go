package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/integrators"
	"github.com/san-kum/qdynsim/internal/metrics"
)

type Registry struct {
	models      map[string]ModelFunc
	integrators map[string]func() dynamo.Integrator
	stochastic  map[string]func() dynamo.StochasticIntegrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]ModelFunc),
		integrators: make(map[string]func() dynamo.Integrator),
		stochastic:  make(map[string]func() dynamo.StochasticIntegrator),
	}

	r.models["rabi"] = rabi
	r.models["jaynes_cummings"] = jaynesCummings
	r.models["hopping_chain"] = hoppingChain
	r.models["homodyne_decay"] = homodyneDecay

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }

	r.stochastic["milstein"] = func() dynamo.StochasticIntegrator { return integrators.NewMilstein() }
	r.stochastic["euler_maruyama"] = func() dynamo.StochasticIntegrator { return integrators.NewEulerMaruyama() }

	return r
}

// RegisterModel adds or replaces a model.
func (r *Registry) RegisterModel(name string, fn ModelFunc) {
	r.models[name] = fn
}

func (r *Registry) GetModel(name string) (ModelFunc, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn, nil
}

// GetIntegrator returns a factory, since solves create one stepper each.
func (r *Registry) GetIntegrator(name string) (func() dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

func (r *Registry) GetStochasticIntegrator(name string) (func() dynamo.StochasticIntegrator, error) {
	fn, ok := r.stochastic[name]
	if !ok {
		return nil, fmt.Errorf("unknown stochastic integrator: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) ListStochasticIntegrators() []string {
	return sortedKeys(r.stochastic)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the observers attached to deterministic runs.
func (r *Registry) DefaultMetrics(pr *Problem, isKet bool) []dynamo.Metric {
	dim := pr.H.H0.N()
	return []dynamo.Metric{
		metrics.NewNormDrift(dim, isKet),
		metrics.NewPurity(dim),
		metrics.NewEnergyDrift(pr.H.H0, isKet),
		metrics.NewStability(1 + 1e-6),
	}
}
