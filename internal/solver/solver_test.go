package solver_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/integrators"
	"github.com/san-kum/qdynsim/internal/metrics"
	"github.com/san-kum/qdynsim/internal/operators"
	"github.com/san-kum/qdynsim/internal/qobj"
	"github.com/san-kum/qdynsim/internal/solver"
)

func mustQubit(times []float64) *operators.Operators {
	_, ops := qubitOps(dynamo.Sesolve, times)
	return ops
}

func qubitOps(solverKind dynamo.SolverKind, times []float64) (*dynamo.Parameters, *operators.Operators) {
	p := dynamo.NewParameters(1,
		dynamo.WithFock(1),
		dynamo.WithTimes(times),
		dynamo.WithSolver(solverKind),
	)
	ops, err := operators.New(p)
	Expect(err).NotTo(HaveOccurred())
	return p, ops
}

func excited(ops *operators.Operators) *qobj.Qobj {
	psi, err := ops.ProductState([]int{1}, []int{0})
	Expect(err).NotTo(HaveOccurred())
	return psi
}

var _ = Describe("SolveTimeEvolution", func() {
	const omega = 2 * math.Pi
	times := dynamo.Linspace(0, 1, 21)

	Describe("sesolve", func() {
		It("reproduces Rabi oscillations", func() {
			p, ops := qubitOps(dynamo.Sesolve, times)
			h := solver.Static(ops.Sx[0].Scale(omega / 2))
			pop := ops.Sp[0].Mul(ops.Sm[0])

			res, err := solver.SolveTimeEvolution(context.Background(), p, h, ops.Ground(), nil, solver.WithExpect(pop))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Solver).To(Equal("sesolve"))
			Expect(res.Times).To(HaveLen(len(times)))

			got := res.RealExpect(0)
			for i, t := range times {
				want := math.Pow(math.Sin(omega*t/2), 2)
				Expect(got[i]).To(BeNumerically("~", want, 1e-5), "t=%g", t)
			}
		})

		It("stores states when no expectation operators are given", func() {
			p, ops := qubitOps(dynamo.Sesolve, times)
			res, err := solver.SolveTimeEvolution(context.Background(), p, solver.Static(ops.Sz[0]), ops.Ground(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.States).To(HaveLen(len(times)))
			for _, s := range res.States {
				Expect(s.IsKet()).To(BeTrue())
				Expect(s.Norm()).To(BeNumerically("~", 1, 1e-6))
			}
		})

		It("drives time-dependent terms with the given args", func() {
			p, ops := qubitOps(dynamo.Sesolve, times)
			h := solver.Hamiltonian{
				H0: ops.Zero[0],
				Terms: []solver.Term{{
					Op: ops.Sx[0],
					Coeff: func(t float64, args map[string]float64) complex128 {
						return complex(args["omega"]/2, 0)
					},
				}},
			}
			pop := ops.Sp[0].Mul(ops.Sm[0])

			res, err := solver.SolveTimeEvolution(context.Background(), p, h, ops.Ground(), nil,
				solver.WithExpect(pop),
				solver.WithArgs(map[string]float64{"omega": omega}),
			)
			Expect(err).NotTo(HaveOccurred())
			last := len(times) - 1
			Expect(res.RealExpect(0)[last]).To(BeNumerically("~", math.Pow(math.Sin(omega/2), 2), 1e-5))
			Expect(res.RealExpect(0)[10]).To(BeNumerically("~", 1, 1e-5))
		})

		It("accepts fixed-step integrators", func() {
			p, ops := qubitOps(dynamo.Sesolve, times)
			h := solver.Static(ops.Sx[0].Scale(omega / 2))
			pop := ops.Sp[0].Mul(ops.Sm[0])

			cfg := dynamo.DefaultConfig()
			cfg.Dt = 1e-3
			res, err := solver.SolveTimeEvolution(context.Background(), p, h, ops.Ground(), nil,
				solver.WithExpect(pop),
				solver.WithConfig(cfg),
				solver.WithIntegrator(func() dynamo.Integrator { return integrators.NewRK4() }),
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.RealExpect(0)[10]).To(BeNumerically("~", 1, 1e-8))
			Expect(res.Stats.Steps).To(Equal(1000))
		})

		It("rejects a density-matrix initial state", func() {
			p, ops := qubitOps(dynamo.Sesolve, times)
			_, err := solver.SolveTimeEvolution(context.Background(), p, solver.Static(ops.Sz[0]), ops.Ground().KetToDM(), nil)
			Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
		})

		It("ignores collapse operators", func() {
			p, ops := qubitOps(dynamo.Sesolve, times)
			h := solver.Static(ops.Sx[0].Scale(omega / 2))
			eops := solver.WithExpect(ops.Sp[0].Mul(ops.Sm[0]), ops.Sx[0])

			bare, err := solver.SolveTimeEvolution(context.Background(), p, h, ops.Ground(), nil, eops)
			Expect(err).NotTo(HaveOccurred())

			cOps := []*qobj.Qobj{ops.Sm[0].Scale(complex(math.Sqrt(0.5), 0)), qobj.Destroy(5)}
			damped, err := solver.SolveTimeEvolution(context.Background(), p, h, ops.Ground(), cOps, eops)
			Expect(err).NotTo(HaveOccurred())
			Expect(damped.Solver).To(Equal("sesolve"))
			Expect(damped.Expect).To(Equal(bare.Expect))
		})

		It("rejects states and operators built in another tensor order", func() {
			p := dynamo.NewParameters(1,
				dynamo.WithFock(3),
				dynamo.WithTimes(times),
				dynamo.WithSolver(dynamo.Sesolve),
			)
			qf, err := operators.New(p, operators.WithTensorOrder(operators.QubitFirst))
			Expect(err).NotTo(HaveOccurred())
			of, err := operators.New(p, operators.WithTensorOrder(operators.OscillatorFirst))
			Expect(err).NotTo(HaveOccurred())
			h := solver.Static(qf.Sx[0].Add(qf.N[0]))

			_, err = solver.SolveTimeEvolution(context.Background(), p, h, of.Ground(), nil)
			Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())

			_, err = solver.SolveTimeEvolution(context.Background(), p, h, qf.Ground(), nil, solver.WithExpect(of.N[0]))
			Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())

			_, err = solver.SolveTimeEvolution(context.Background(), p, h, qf.Ground(), nil, solver.WithExpect(qf.N[0]))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("mesolve", func() {
		It("matches sesolve without collapse operators", func() {
			pS, ops := qubitOps(dynamo.Sesolve, times)
			pM := *pS
			pM.Solver = dynamo.Mesolve
			h := solver.Static(ops.Sx[0].Scale(omega / 2).Add(ops.Sz[0].Scale(0.3)))
			eops := solver.WithExpect(ops.Sx[0], ops.Sy[0], ops.Sz[0])

			se, err := solver.SolveTimeEvolution(context.Background(), pS, h, ops.Ground(), nil, eops)
			Expect(err).NotTo(HaveOccurred())
			me, err := solver.SolveTimeEvolution(context.Background(), &pM, h, ops.Ground(), nil, eops)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.Solver).To(Equal("mesolve"))

			for i := range se.Expect {
				for k := range times {
					Expect(real(me.Expect[i][k])).To(BeNumerically("~", real(se.Expect[i][k]), 1e-5))
				}
			}
		})

		It("relaxes an excited qubit at the collapse rate", func() {
			const gamma = 0.8
			p, ops := qubitOps(dynamo.Mesolve, times)
			c := ops.Sm[0].Scale(complex(math.Sqrt(gamma), 0))
			pop := ops.Sp[0].Mul(ops.Sm[0])

			res, err := solver.SolveTimeEvolution(context.Background(), p, solver.Static(ops.Zero[0]), excited(ops), []*qobj.Qobj{c},
				solver.WithExpect(pop))
			Expect(err).NotTo(HaveOccurred())
			for i, t := range times {
				Expect(res.RealExpect(0)[i]).To(BeNumerically("~", math.Exp(-gamma*t), 1e-5))
			}
		})

		It("keeps the trace and reports metrics", func() {
			p, ops := qubitOps(dynamo.Mesolve, times)
			c := ops.Sm[0].Scale(0.5)
			h := ops.Sx[0].Scale(omega / 2)
			norm := metrics.NewNormDrift(p.Dim(), false)
			purity := metrics.NewPurity(p.Dim())

			res, err := solver.SolveTimeEvolution(context.Background(), p, solver.Static(h), ops.Ground(), []*qobj.Qobj{c},
				solver.WithMetrics(norm, purity))
			Expect(err).NotTo(HaveOccurred())
			for _, s := range res.States {
				Expect(real(s.Trace())).To(BeNumerically("~", 1, 1e-6))
				Expect(s.IsHermitian(1e-6)).To(BeTrue())
			}
			Expect(res.Metrics).To(HaveKey("norm_drift"))
			Expect(res.Metrics["norm_drift"]).To(BeNumerically("<", 1e-6))
			Expect(res.Metrics["purity"]).To(BeNumerically("<", 1))
		})

		It("rejects collapse operators on another space", func() {
			p, ops := qubitOps(dynamo.Mesolve, times)
			_, err := solver.SolveTimeEvolution(context.Background(), p, solver.Static(ops.Sz[0]), ops.Ground(), []*qobj.Qobj{qobj.Destroy(3)})
			Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
		})
	})

	It("rejects unknown solvers", func() {
		p, ops := qubitOps("brsolve", times)
		_, err := solver.SolveTimeEvolution(context.Background(), p, solver.Static(ops.Sz[0]), ops.Ground(), nil)
		Expect(errors.Is(err, dynamo.ErrUnsupportedSolver)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("brsolve"))
	})

	It("rejects a non-increasing time grid", func() {
		p, ops := qubitOps(dynamo.Sesolve, []float64{0, 1, 1})
		_, err := solver.SolveTimeEvolution(context.Background(), p, solver.Static(ops.Sz[0]), ops.Ground(), nil)
		Expect(errors.Is(err, dynamo.ErrInvalidTimeGrid)).To(BeTrue())
	})

	It("rejects expectation operators on another space", func() {
		p, ops := qubitOps(dynamo.Sesolve, times)
		_, err := solver.SolveTimeEvolution(context.Background(), p, solver.Static(ops.Sz[0]), ops.Ground(), nil,
			solver.WithExpect(qobj.Identity(4)))
		Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
	})

	It("stops when the context is cancelled", func() {
		p, ops := qubitOps(dynamo.Sesolve, times)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := solver.SolveTimeEvolution(ctx, p, solver.Static(ops.Sz[0]), ops.Ground(), nil)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("reports progress once per output time", func() {
		p, ops := qubitOps(dynamo.Sesolve, times)
		prog := &countingProgress{}
		_, err := solver.SolveTimeEvolution(context.Background(), p, solver.Static(ops.Sz[0]), ops.Ground(), nil,
			solver.WithProgress(prog))
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.total).To(Equal(len(times)))
		Expect(prog.last).To(Equal(len(times)))
		Expect(prog.finished).To(BeTrue())
	})

	It("evolves a qubit-cavity exchange", func() {
		p := dynamo.NewParameters(1, dynamo.WithFock(3), dynamo.WithTimes(times))
		ops, err := operators.New(p)
		Expect(err).NotTo(HaveOccurred())
		const g = math.Pi
		h := ops.A[0].Dag().Mul(ops.Sm[0]).Add(ops.Sp[0].Mul(ops.A[0])).Scale(g)

		res, err := solver.SolveTimeEvolution(context.Background(), p, solver.Static(h),
			excited(ops), nil, solver.WithExpect(ops.N[0]))
		Expect(err).NotTo(HaveOccurred())
		for i, t := range times {
			Expect(res.RealExpect(0)[i]).To(BeNumerically("~", math.Pow(math.Sin(g*t), 2), 1e-5))
		}
	})
})

type countingProgress struct {
	total, last int
	finished    bool
}

func (c *countingProgress) Start(total int) { c.total = total }
func (c *countingProgress) Update(done int) { c.last = done }
func (c *countingProgress) Finish()         { c.finished = true }
