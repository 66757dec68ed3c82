// Package dynamo provides the core primitives shared by the quantum solvers.
//
// The package defines the vocabulary the rest of the module speaks:
//
//   - [State]: flattened complex state vector (a ket or a row-major density matrix)
//   - [System]: deterministic equation of motion dX/dt = f(X, t)
//   - [StochasticSystem]: Itô SDE dX = f(X, t) dt + Σ b_i(X, t) dW_i
//   - [Integrator], [AdaptiveIntegrator], [StochasticIntegrator]: numerical steppers
//   - [Parameters]: per-site Fock truncation, time grid and solver options
//   - [Ensemble]: fan-out of independent stochastic trajectories
//
// # Example
//
//	p := dynamo.NewParameters(2,
//		dynamo.WithFockList([]int{3, 1}),
//		dynamo.WithTimes(dynamo.Linspace(0, 10, 201)),
//		dynamo.WithSolver(dynamo.Mesolve),
//	)
//	ops, _ := operators.New(p)
//
// # Thread Safety
//
// Parameters are read-only once built and may be shared. Integrators carry
// scratch buffers and are NOT thread-safe; each trajectory worker owns its
// own integrator.
package dynamo
