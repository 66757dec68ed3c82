package dynamo

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

type SolverKind string

const (
	Sesolve SolverKind = "sesolve"
	Mesolve SolverKind = "mesolve"
)

const (
	DefaultFock      = 2
	DefaultNTraj     = 4
	DefaultNSubsteps = 41
)

type SiteKind int

const (
	// QubitSite is a bare two-level system with no oscillator attached.
	QubitSite SiteKind = iota
	// OscillatorSite couples a two-level system to a Fock-truncated oscillator.
	OscillatorSite
)

// Site describes the local Hilbert space of one lattice site.
type Site struct {
	Kind SiteKind
	Fock int
}

// Oscillator returns a site with a fock-level oscillator. Truncations below
// two carry no oscillator degree of freedom and yield a qubit-only site.
func Oscillator(fock int) Site {
	if fock < 2 {
		return Qubit()
	}
	return Site{Kind: OscillatorSite, Fock: fock}
}

func Qubit() Site { return Site{Kind: QubitSite} }

func (s Site) HasOscillator() bool { return s.Kind == OscillatorSite }

// LocalDim is the dimension of the site's Hilbert space.
func (s Site) LocalDim() int {
	switch s.Kind {
	case OscillatorSite:
		return 2 * s.Fock
	default:
		return 2
	}
}

func (s Site) String() string {
	switch s.Kind {
	case OscillatorSite:
		return fmt.Sprintf("qubit+fock(%d)", s.Fock)
	default:
		return "qubit"
	}
}

type Parameters struct {
	NumSites  int
	Sites     []Site
	Unit      float64
	Times     []float64
	TimeDep   bool
	Solver    SolverKind
	NTraj     int
	NSubsteps int
	Seed      uint64
	Seeded    bool
}

type Option func(*Parameters)

// NewParameters builds a normalized parameter set for numSites sites. Every
// site defaults to a two-level oscillator truncation.
func NewParameters(numSites int, opts ...Option) *Parameters {
	p := &Parameters{
		NumSites:  numSites,
		Unit:      2 * math.Pi,
		Solver:    Sesolve,
		NTraj:     DefaultNTraj,
		NSubsteps: DefaultNSubsteps,
	}
	WithFock(DefaultFock)(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithFock broadcasts one truncation to every site.
func WithFock(fock int) Option {
	return func(p *Parameters) {
		p.Sites = make([]Site, p.NumSites)
		for i := range p.Sites {
			p.Sites[i] = Oscillator(fock)
		}
	}
}

// WithFockList sets the truncation site by site. The list length is not
// checked here; a mismatch fails operator construction.
func WithFockList(focks []int) Option {
	return func(p *Parameters) {
		p.Sites = make([]Site, len(focks))
		for i, f := range focks {
			p.Sites[i] = Oscillator(f)
		}
	}
}

func WithSites(sites []Site) Option {
	return func(p *Parameters) {
		p.Sites = append([]Site(nil), sites...)
	}
}

func WithTimes(times []float64) Option {
	return func(p *Parameters) {
		p.Times = append([]float64(nil), times...)
	}
}

func WithSolver(s SolverKind) Option {
	return func(p *Parameters) { p.Solver = s }
}

func WithTimeDep(dep bool) Option {
	return func(p *Parameters) { p.TimeDep = dep }
}

func WithTrajectories(n int) Option {
	return func(p *Parameters) { p.NTraj = n }
}

func WithSubsteps(n int) Option {
	return func(p *Parameters) { p.NSubsteps = n }
}

func WithSeed(seed uint64) Option {
	return func(p *Parameters) {
		p.Seed = seed
		p.Seeded = true
	}
}

// Dim is the total Hilbert-space dimension, the product of the local dims.
func (p *Parameters) Dim() int {
	d := 1
	for _, s := range p.Sites {
		d *= s.LocalDim()
	}
	return d
}

// NewSource returns a generator source seeded from Seed, or from the
// runtime generator when no seed was given.
func (p *Parameters) NewSource() rand.Source {
	if !p.Seeded {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15)
}

func (p *Parameters) MarshalZerologObject(e *zerolog.Event) {
	e.Str("solver", string(p.Solver)).
		Int("num_pts", len(p.Times)).
		Int("num_sites", p.NumSites).
		Int("dim", p.Dim())
	if p.Seeded {
		e.Uint64("seed", p.Seed)
	}
}

// LogParameters writes the solver and grid size at info level.
func (p *Parameters) LogParameters(log zerolog.Logger) {
	log.Info().EmbedObject(p).Msg("parameters")
}

// Linspace returns n evenly spaced points over [start, stop].
func Linspace(start, stop float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, stop)
}
