// Package analysis post-processes expectation series from finished runs.
//
//   - [PowerSpectrum] and [DominantFrequency]: FFT of a uniformly sampled
//     series, e.g. to read the Rabi frequency off ⟨Sp·Sm⟩(t)
//   - [NewPhasePortrait]: two series against each other, e.g. ⟨Sx⟩ vs ⟨Sz⟩
//
// A resonant Rabi run oscillates at Ω/2π in population:
//
//	dt, _ := analysis.UniformStep(times)
//	f, _ := analysis.DominantFrequency(pop, dt)
package analysis
