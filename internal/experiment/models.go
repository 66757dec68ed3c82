package experiment

import (
	"fmt"
	"math"

	"github.com/san-kum/qdynsim/internal/config"
	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/operators"
	"github.com/san-kum/qdynsim/internal/qobj"
	"github.com/san-kum/qdynsim/internal/solver"
)

// Problem is everything a solve needs besides the parameters.
type Problem struct {
	H      solver.Hamiltonian
	State0 *qobj.Qobj
	COps   []*qobj.Qobj
	SCOps  []*qobj.Qobj
	EOps   []*qobj.Qobj
	// Labels names EOps for tables and plots.
	Labels []string
}

func (pr *Problem) expect(label string, op *qobj.Qobj) {
	pr.Labels = append(pr.Labels, label)
	pr.EOps = append(pr.EOps, op)
}

// ModelFunc builds a problem from a run config and its parameters.
type ModelFunc func(cfg *config.Config, p *dynamo.Parameters) (*Problem, error)

// collapse appends sqrt(rate)·op when rate is positive.
func collapse(ops []*qobj.Qobj, rate float64, op *qobj.Qobj) []*qobj.Qobj {
	if rate <= 0 {
		return ops
	}
	return append(ops, op.Scale(complex(math.Sqrt(rate), 0)))
}

// argOr reads a solve argument, falling back to def when the run did not
// set it.
func argOr(args map[string]float64, name string, def float64) float64 {
	if v, ok := args[name]; ok {
		return v
	}
	return def
}

// rabi drives every qubit with H = unit·(Ω/2·Sx + Δ/2·Sz). With time_dep
// the drive becomes Ω/2·cos(unit·drive_freq·t)·Sx read from the solve args,
// with the same defaults as the static drive.
func rabi(cfg *config.Config, p *dynamo.Parameters) (*Problem, error) {
	ops, err := operators.New(p)
	if err != nil {
		return nil, err
	}
	omega := cfg.Param("omega", 1)
	driveFreq := cfg.Param("drive_freq", 0)
	detuning := cfg.Param("detuning", 0)
	gamma := cfg.Param("gamma", 0)
	unit := p.Unit

	h0 := ops.Zero[0]
	sx := ops.Zero[0]
	for n := 0; n < ops.NumSites(); n++ {
		h0 = h0.Add(ops.Sz[n].Scale(complex(unit*detuning/2, 0)))
		sx = sx.Add(ops.Sx[n])
	}

	pr := &Problem{State0: ops.Ground()}
	if p.TimeDep {
		pr.H = solver.Hamiltonian{
			H0: h0,
			Terms: []solver.Term{{
				Op: sx,
				Coeff: func(t float64, args map[string]float64) complex128 {
					w := argOr(args, "omega", omega)
					f := argOr(args, "drive_freq", driveFreq)
					return complex(unit*w/2*math.Cos(unit*f*t), 0)
				},
			}},
		}
	} else {
		pr.H = solver.Static(h0.Add(sx.Scale(complex(unit*omega/2, 0))))
	}

	for n := 0; n < ops.NumSites(); n++ {
		pr.COps = collapse(pr.COps, gamma, ops.Sm[n])
		pr.expect(fmt.Sprintf("P_e[%d]", n), ops.Sp[n].Mul(ops.Sm[n]))
	}
	pr.expect("Sx[0]", ops.Sx[0])
	pr.expect("Sz[0]", ops.Sz[0])
	return pr, nil
}

// jaynesCummings couples each qubit to its own cavity in the rotating
// frame: H = unit·Σ(Δ/2·Sz + g(a†Sm + Sp a)). The first qubit starts
// excited with every cavity in vacuum.
func jaynesCummings(cfg *config.Config, p *dynamo.Parameters) (*Problem, error) {
	ops, err := operators.New(p)
	if err != nil {
		return nil, err
	}
	for n, site := range ops.Sites {
		if !site.HasOscillator() {
			return nil, fmt.Errorf("jaynes_cummings: site %d has no oscillator (fock < 2)", n)
		}
	}
	g := cfg.Param("g", 0.5)
	detuning := cfg.Param("detuning", 0)
	kappa := cfg.Param("kappa", 0)
	gamma := cfg.Param("gamma", 0)
	unit := p.Unit

	h := ops.Zero[0]
	pr := &Problem{}
	for n := 0; n < ops.NumSites(); n++ {
		exchange := ops.A[n].Dag().Mul(ops.Sm[n]).Add(ops.Sp[n].Mul(ops.A[n]))
		h = h.Add(ops.Sz[n].Scale(complex(unit*detuning/2, 0))).Add(exchange.Scale(complex(unit*g, 0)))

		pr.COps = collapse(pr.COps, kappa, ops.A[n])
		pr.COps = collapse(pr.COps, gamma, ops.Sm[n])
		pr.expect(fmt.Sprintf("n[%d]", n), ops.N[n])
		pr.expect(fmt.Sprintf("P_e[%d]", n), ops.Sp[n].Mul(ops.Sm[n]))
	}
	pr.H = solver.Static(h)

	q := make([]int, ops.NumSites())
	q[0] = 1
	if pr.State0, err = ops.ProductState(q, make([]int, ops.NumSites())); err != nil {
		return nil, err
	}
	return pr, nil
}

// hoppingChain is a spinless fermion chain on the qubit-only ENR space:
// H = -unit·J Σ(F†_k F_{k+1} + h.c.), one excitation starting on site 0.
func hoppingChain(cfg *config.Config, p *dynamo.Parameters) (*Problem, error) {
	if p.NumSites < 2 {
		return nil, fmt.Errorf("hopping_chain: need at least 2 sites, got %d", p.NumSites)
	}
	excitations := operators.DefaultExcitations
	if cfg.Excitations != nil {
		excitations = *cfg.Excitations
	}
	q, err := operators.NewQubitOnly(p.NumSites, excitations)
	if err != nil {
		return nil, err
	}
	hop := cfg.Param("J", 0.5)
	gamma := cfg.Param("gamma", 0)

	h := q.Zero
	for k := 0; k+1 < p.NumSites; k++ {
		pair := q.F[k].Dag().Mul(q.F[k+1])
		h = h.Add(pair.Add(pair.Dag()).Scale(complex(-p.Unit*hop, 0)))
	}

	occ := make([]int, p.NumSites)
	occ[0] = 1
	psi0, err := q.Basis(occ)
	if err != nil {
		return nil, err
	}

	pr := &Problem{H: solver.Static(h), State0: psi0}
	for k := 0; k < p.NumSites; k++ {
		pr.COps = collapse(pr.COps, gamma, q.Sm[k])
		pr.expect(fmt.Sprintf("n[%d]", k), q.Sp[k].Mul(q.Sm[k]))
	}
	return pr, nil
}

// homodyneDecay is an excited qubit relaxing at rate gamma while its
// emission is monitored by homodyne detection at rate measure.
func homodyneDecay(cfg *config.Config, p *dynamo.Parameters) (*Problem, error) {
	ops, err := operators.New(p)
	if err != nil {
		return nil, err
	}
	gamma := cfg.Param("gamma", 0.2)
	measure := cfg.Param("measure", 0.1)
	detuning := cfg.Param("detuning", 0)

	pr := &Problem{
		H: solver.Static(ops.Sz[0].Scale(complex(p.Unit*detuning/2, 0))),
	}
	if pr.State0, err = ops.ProductState(onesAt(ops.NumSites(), 0), make([]int, ops.NumSites())); err != nil {
		return nil, err
	}
	pr.COps = collapse(pr.COps, gamma, ops.Sm[0])
	pr.SCOps = collapse(pr.SCOps, measure, ops.Sm[0])
	pr.expect("P_e[0]", ops.Sp[0].Mul(ops.Sm[0]))
	pr.expect("Sx[0]", ops.Sx[0])
	return pr, nil
}

func onesAt(n int, idx ...int) []int {
	out := make([]int, n)
	for _, i := range idx {
		out[i] = 1
	}
	return out
}
