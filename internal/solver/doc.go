// Package solver integrates closed and open quantum dynamics over a time grid.
//
// [SolveTimeEvolution] dispatches on [dynamo.Parameters].Solver:
//
//   - "sesolve": Schrödinger equation for a ket; collapse operators are ignored
//   - "mesolve": Lindblad master equation for a density matrix
//
// [SolveTimeEvolutionTrajectories] integrates the homodyne stochastic master
// equation trajectory by trajectory with the Milstein scheme, one scalar
// Wiener increment per measurement operator per substep. The random
// generator is an explicit argument; per-trajectory seeds are drawn from it
// before any worker starts, so results do not depend on scheduling.
package solver
