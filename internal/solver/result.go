package solver

import "github.com/san-kum/qdynsim/internal/qobj"

type Stats struct {
	Steps    int
	Rejected int
}

type Result struct {
	Solver  string
	Times   []float64
	States  []*qobj.Qobj
	Expect  [][]complex128
	Metrics map[string]float64
	Stats   Stats
}

// RealExpect returns the real part of the i-th expectation series.
func (r *Result) RealExpect(i int) []float64 {
	return realParts(r.Expect[i])
}

// Trajectory is one stochastic realization. Measurement[k][i] is the
// homodyne record of measurement operator i averaged over [t_k, t_{k+1}].
type Trajectory struct {
	Seed        [2]uint64
	States      []*qobj.Qobj
	Expect      [][]complex128
	Measurement [][]float64
}

type StochasticResult struct {
	Times        []float64
	Trajectories []Trajectory
	// Expect is the trajectory average of each expectation series.
	Expect [][]complex128
	// Measurement is the trajectory average of the homodyne records.
	Measurement [][]float64
}

func (r *StochasticResult) RealExpect(i int) []float64 {
	return realParts(r.Expect[i])
}

func realParts(s []complex128) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = real(v)
	}
	return out
}
