package solver_test

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/integrators"
	"github.com/san-kum/qdynsim/internal/qobj"
	"github.com/san-kum/qdynsim/internal/solver"
)

var _ = Describe("SolveTimeEvolutionTrajectories", func() {
	const gamma = 0.5
	times := dynamo.Linspace(0, 1, 11)

	var (
		p     *dynamo.Parameters
		h     solver.Hamiltonian
		psi0  *qobj.Qobj
		pop   *qobj.Qobj
		cOps  []*qobj.Qobj
		scOps []*qobj.Qobj
	)

	BeforeEach(func() {
		ops := mustQubit(times)
		p = dynamo.NewParameters(1, dynamo.WithFock(1), dynamo.WithTimes(times), dynamo.WithSeed(7))
		h = solver.Static(ops.Sz[0].Scale(0.5))
		psi0 = excited(ops)
		pop = ops.Sp[0].Mul(ops.Sm[0])
		cOps = []*qobj.Qobj{ops.Sm[0].Scale(complex(math.Sqrt(gamma), 0))}
		scOps = []*qobj.Qobj{ops.Sm[0].Scale(complex(math.Sqrt(gamma), 0))}
	})

	solve := func(rng *rand.Rand, ntraj int, opts ...solver.Option) *solver.StochasticResult {
		opts = append(opts, solver.WithExpect(pop))
		res, err := solver.SolveTimeEvolutionTrajectories(context.Background(), p, h, psi0, cOps, scOps, ntraj, 20, rng, opts...)
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	It("shapes results by trajectory, time and operator", func() {
		res := solve(rand.New(rand.NewPCG(1, 2)), 3)
		Expect(res.Times).To(Equal(times))
		Expect(res.Trajectories).To(HaveLen(3))
		Expect(res.Expect).To(HaveLen(1))
		Expect(res.Expect[0]).To(HaveLen(len(times)))
		Expect(res.Measurement).To(HaveLen(len(times) - 1))
		for _, tr := range res.Trajectories {
			Expect(tr.Expect[0]).To(HaveLen(len(times)))
			Expect(tr.Measurement).To(HaveLen(len(times) - 1))
			Expect(tr.Measurement[0]).To(HaveLen(len(scOps)))
		}
	})

	It("is reproducible for identical generator state", func() {
		a := solve(rand.New(rand.NewPCG(11, 12)), 4)
		b := solve(rand.New(rand.NewPCG(11, 12)), 4)
		Expect(a.Measurement).To(Equal(b.Measurement))
		Expect(a.Expect).To(Equal(b.Expect))
		for i := range a.Trajectories {
			Expect(a.Trajectories[i].Seed).To(Equal(b.Trajectories[i].Seed))
		}
	})

	It("derives the generator from the seeded parameters when none is given", func() {
		a := solve(nil, 2)
		b := solve(nil, 2)
		Expect(a.Measurement).To(Equal(b.Measurement))
	})

	It("draws distinct noise for distinct trajectories", func() {
		res := solve(rand.New(rand.NewPCG(3, 4)), 2)
		Expect(res.Trajectories[0].Measurement).NotTo(Equal(res.Trajectories[1].Measurement))
	})

	It("falls back to the parameter defaults for trajectory counts", func() {
		p.NTraj = 5
		res, err := solver.SolveTimeEvolutionTrajectories(context.Background(), p, h, psi0, cOps, scOps, 0, 0, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Trajectories).To(HaveLen(5))
	})

	It("keeps every trajectory a unit-trace density matrix", func() {
		res := solve(rand.New(rand.NewPCG(5, 6)), 2, solver.WithStoreStates(true))
		for _, tr := range res.Trajectories {
			Expect(tr.States).To(HaveLen(len(times)))
			for _, s := range tr.States {
				Expect(real(s.Trace())).To(BeNumerically("~", 1, 1e-9))
			}
		}
	})

	It("reduces to the master equation for a vanishing measurement rate", func() {
		scOps = []*qobj.Qobj{scOps[0].Scale(1e-4)}
		res := solve(rand.New(rand.NewPCG(9, 10)), 2)
		for k, t := range times {
			Expect(res.RealExpect(0)[k]).To(BeNumerically("~", math.Exp(-(gamma+gamma*1e-8)*t), 1e-3))
		}
	})

	It("follows the unconditional decay on average", func() {
		res := solve(rand.New(rand.NewPCG(21, 22)), 64,
			solver.WithStochasticIntegrator(func() dynamo.StochasticIntegrator { return integrators.NewMilstein() }))
		last := len(times) - 1
		Expect(res.RealExpect(0)[last]).To(BeNumerically("~", math.Exp(-2*gamma), 0.1))
	})

	It("rejects measurement operators on another space", func() {
		_, err := solver.SolveTimeEvolutionTrajectories(context.Background(), p, h, psi0, cOps,
			[]*qobj.Qobj{qobj.Destroy(3)}, 1, 1, nil)
		Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := solver.SolveTimeEvolutionTrajectories(ctx, p, h, psi0, cOps, scOps, 2, 2, nil)
		Expect(err).To(MatchError(context.Canceled))
	})
})
