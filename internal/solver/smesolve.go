package solver

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/qobj"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const smesolveName = "smesolve"

// SolveTimeEvolutionTrajectories integrates the homodyne stochastic master
// equation for ntraj trajectories with nsubsteps Milstein steps per output
// interval. Zero or negative ntraj and nsubsteps fall back to p.NTraj and
// p.NSubsteps. rng seeds every trajectory; nil derives a generator from
// p.Seed. Identical generator state and inputs give identical results.
func SolveTimeEvolutionTrajectories(
	ctx context.Context,
	p *dynamo.Parameters,
	h Hamiltonian,
	state0 *qobj.Qobj,
	cOps, scOps []*qobj.Qobj,
	ntraj, nsubsteps int,
	rng *rand.Rand,
	opts ...Option,
) (*StochasticResult, error) {
	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}

	if ntraj <= 0 {
		ntraj = p.NTraj
	}
	if nsubsteps <= 0 {
		nsubsteps = p.NSubsteps
	}
	if ntraj <= 0 || nsubsteps <= 0 {
		return nil, fmt.Errorf("%s: need positive trajectory and substep counts, got %d and %d", smesolveName, ntraj, nsubsteps)
	}
	if rng == nil {
		rng = rand.New(p.NewSource())
	}

	if err := h.validate(); err != nil {
		return nil, err
	}
	if err := validateOps(h, cOps, "collapse operator"); err != nil {
		return nil, err
	}
	if err := validateOps(h, scOps, "measurement operator"); err != nil {
		return nil, err
	}
	if err := validateOps(h, s.eOps, "expectation operator"); err != nil {
		return nil, err
	}
	if err := validateTimes(p.Times); err != nil {
		return nil, err
	}
	rho0, err := densityMatrix(h, state0)
	if err != nil {
		return nil, err
	}

	seeds := make([][2]uint64, ntraj)
	for i := range seeds {
		seeds[i] = [2]uint64{rng.Uint64(), rng.Uint64()}
	}

	log := s.log.With().Str("solver", smesolveName).Logger()
	log.Debug().EmbedObject(p).Int("ntraj", ntraj).Int("nsubsteps", nsubsteps).Msg("solve start")
	start := time.Now()

	result := &StochasticResult{
		Times:        append([]float64(nil), p.Times...),
		Trajectories: make([]Trajectory, ntraj),
	}

	var (
		mu   sync.Mutex
		done int
	)
	if s.progress != nil {
		s.progress.Start(ntraj)
		defer s.progress.Finish()
	}

	traj := &trajectoryRunner{
		times:     p.Times,
		nsubsteps: nsubsteps,
		dims:      rho0.Dims(),
		rho0:      dynamo.State(rho0.Raw()),
		h:         h,
		cOps:      cOps,
		scOps:     scOps,
		s:         s,
	}

	err = dynamo.NewEnsemble(ntraj).Run(ctx, func(ctx context.Context, idx int) error {
		tr, err := traj.run(ctx, seeds[idx])
		if err != nil {
			return err
		}
		result.Trajectories[idx] = tr

		if s.progress != nil {
			mu.Lock()
			done++
			s.progress.Update(done)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Expect = averageExpect(result.Trajectories, len(s.eOps), len(p.Times))
	result.Measurement = averageMeasurement(result.Trajectories, len(scOps), len(p.Times)-1)

	log.Debug().Dur("elapsed", time.Since(start)).Msg("solve done")
	return result, nil
}

type trajectoryRunner struct {
	times     []float64
	nsubsteps int
	dims      []int
	rho0      dynamo.State
	h         Hamiltonian
	cOps      []*qobj.Qobj
	scOps     []*qobj.Qobj
	s         settings
}

func (r *trajectoryRunner) run(ctx context.Context, seed [2]uint64) (Trajectory, error) {
	sys := newHomodyne(r.h, r.s.args, r.cOps, r.scOps)
	integ := r.s.newStochastic()
	src := rand.NewPCG(seed[0], seed[1])
	nsc := len(r.scOps)

	tr := Trajectory{
		Seed:        seed,
		Expect:      make([][]complex128, len(r.s.eOps)),
		Measurement: make([][]float64, 0, len(r.times)-1),
	}
	store := r.s.storeStates || len(r.s.eOps) == 0

	x := r.rho0.Clone()
	record := func() {
		for i, op := range r.s.eOps {
			tr.Expect[i] = append(tr.Expect[i], qobj.ExpectRaw(op, x, false))
		}
		if store {
			tr.States = append(tr.States, toQobj(r.dims, false, x))
		}
	}
	record()

	dW := make([]float64, nsc)
	step := 0
	for k := 0; k+1 < len(r.times); k++ {
		if err := ctx.Err(); err != nil {
			return tr, err
		}

		t0, t1 := r.times[k], r.times[k+1]
		dt := (t1 - t0) / float64(r.nsubsteps)
		noise := distuv.Normal{Mu: 0, Sigma: math.Sqrt(dt), Src: src}
		meas := make([]float64, nsc)

		for j := 0; j < r.nsubsteps; j++ {
			t := t0 + float64(j)*dt
			for i := range dW {
				dW[i] = noise.Rand()
				meas[i] += sys.expectX(x, i)*dt + dW[i]
			}
			x = integ.Step(sys, x, t, dt, dW)
			step++
		}
		if r.s.cfg.ValidateState && !x.IsValid() {
			return tr, &dynamo.SolveError{Solver: smesolveName, Step: step, Time: t1, Wrapped: dynamo.ErrInvalidState}
		}

		for i := range meas {
			meas[i] /= t1 - t0
		}
		tr.Measurement = append(tr.Measurement, meas)
		record()
	}
	return tr, nil
}

func averageExpect(trajs []Trajectory, nOps, nTimes int) [][]complex128 {
	out := make([][]complex128, nOps)
	re := make([]float64, len(trajs))
	im := make([]float64, len(trajs))
	for i := range out {
		out[i] = make([]complex128, nTimes)
		for k := 0; k < nTimes; k++ {
			for j, tr := range trajs {
				re[j], im[j] = real(tr.Expect[i][k]), imag(tr.Expect[i][k])
			}
			out[i][k] = complex(stat.Mean(re, nil), stat.Mean(im, nil))
		}
	}
	return out
}

func averageMeasurement(trajs []Trajectory, nOps, nIntervals int) [][]float64 {
	out := make([][]float64, nIntervals)
	vals := make([]float64, len(trajs))
	for k := range out {
		out[k] = make([]float64, nOps)
		for i := 0; i < nOps; i++ {
			for j, tr := range trajs {
				vals[j] = tr.Measurement[k][i]
			}
			out[k][i] = stat.Mean(vals, nil)
		}
	}
	return out
}
