package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDuration  = 1.0
	DefaultNumPoints = 101
	DefaultDt        = 1e-3
	DefaultTolerance = 1e-8
)

// Smesolve selects the stochastic trajectory solver. It is a run mode
// rather than a dynamo.SolverKind.
const Smesolve = "smesolve"

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Model       string             `yaml:"model"`
	Solver      string             `yaml:"solver"`
	Integrator  string             `yaml:"integrator"`
	NumSites    int                `yaml:"num_sites"`
	Fock        FockSpec           `yaml:"fock"`
	Excitations *int               `yaml:"excitations,omitempty"` // qubit-only cap, nil means sites²
	Duration    float64            `yaml:"duration"`
	NumPoints   int                `yaml:"num_points"`
	Dt          float64            `yaml:"dt"`
	Tolerance   float64            `yaml:"tolerance"`
	TimeDep     bool               `yaml:"time_dep"`
	NTraj       int                `yaml:"ntraj"`
	NSubsteps   int                `yaml:"nsubsteps"`
	Seed        *uint64            `yaml:"seed,omitempty"`
	Params      map[string]float64 `yaml:"params,omitempty"`
}

// FockSpec is a per-site oscillator truncation, written in YAML either as
// one integer broadcast to every site or as a list with one entry per site.
type FockSpec struct {
	Value int
	List  []int
}

func Fock(v int) FockSpec { return FockSpec{Value: v} }

func FockList(v ...int) FockSpec { return FockSpec{List: append([]int(nil), v...)} }

func (f FockSpec) IsList() bool { return f.List != nil }

func (f *FockSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v int
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("fock: %w", err)
		}
		*f = FockSpec{Value: v}
	case yaml.SequenceNode:
		var v []int
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("fock: %w", err)
		}
		if v == nil {
			v = []int{}
		}
		*f = FockSpec{List: v}
	default:
		return fmt.Errorf("fock: line %d: want an integer or a list of integers", node.Line)
	}
	return nil
}

func (f FockSpec) MarshalYAML() (any, error) {
	if f.IsList() {
		return f.List, nil
	}
	return f.Value, nil
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "rabi",
		Solver:     string(dynamo.Sesolve),
		Integrator: "rk45",
		NumSites:   1,
		Fock:       Fock(dynamo.DefaultFock),
		Duration:   DefaultDuration,
		NumPoints:  DefaultNumPoints,
		Dt:         DefaultDt,
		Tolerance:  DefaultTolerance,
		NTraj:      dynamo.DefaultNTraj,
		NSubsteps:  dynamo.DefaultNSubsteps,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets can be handed out and modified.
func (c *Config) Clone() *Config {
	out := *c
	if c.Fock.List != nil {
		out.Fock.List = append([]int{}, c.Fock.List...)
	}
	if c.Seed != nil {
		seed := *c.Seed
		out.Seed = &seed
	}
	if c.Excitations != nil {
		e := *c.Excitations
		out.Excitations = &e
	}
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

func (c *Config) Validate() error {
	switch {
	case c.NumSites < 1:
		return fmt.Errorf("%w: num_sites must be positive, got %d", ErrInvalidConfig, c.NumSites)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	case c.NumPoints < 2:
		return fmt.Errorf("%w: num_points must be at least 2, got %d", ErrInvalidConfig, c.NumPoints)
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	case c.Excitations != nil && *c.Excitations < 0:
		return fmt.Errorf("%w: excitations must not be negative, got %d", ErrInvalidConfig, *c.Excitations)
	}
	switch c.Solver {
	case string(dynamo.Sesolve), string(dynamo.Mesolve), Smesolve:
	default:
		return fmt.Errorf("%w: solver %q", ErrInvalidConfig, c.Solver)
	}
	return nil
}

// Stochastic reports whether the run uses the trajectory solver.
func (c *Config) Stochastic() bool { return c.Solver == Smesolve }

// Param returns the named model parameter or def when unset.
func (c *Config) Param(name string, def float64) float64 {
	if v, ok := c.Params[name]; ok {
		return v
	}
	return def
}

// Times is the output grid: NumPoints evenly spaced points over [0, Duration].
func (c *Config) Times() []float64 {
	return dynamo.Linspace(0, c.Duration, c.NumPoints)
}

// ToParameters builds the solver parameters. The stochastic mode keeps
// mesolve as the deterministic reference solver.
func (c *Config) ToParameters() *dynamo.Parameters {
	opts := []dynamo.Option{
		dynamo.WithTimes(c.Times()),
		dynamo.WithTimeDep(c.TimeDep),
		dynamo.WithTrajectories(c.NTraj),
		dynamo.WithSubsteps(c.NSubsteps),
	}
	if c.Fock.IsList() {
		opts = append(opts, dynamo.WithFockList(c.Fock.List))
	} else {
		opts = append(opts, dynamo.WithFock(c.Fock.Value))
	}
	if c.Stochastic() {
		opts = append(opts, dynamo.WithSolver(dynamo.Mesolve))
	} else {
		opts = append(opts, dynamo.WithSolver(dynamo.SolverKind(c.Solver)))
	}
	if c.Seed != nil {
		opts = append(opts, dynamo.WithSeed(*c.Seed))
	}
	return dynamo.NewParameters(c.NumSites, opts...)
}

// SolveConfig maps the stepping fields onto dynamo.Config.
func (c *Config) SolveConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = c.Dt
	if c.Tolerance > 0 {
		cfg.Tolerance = c.Tolerance
	}
	return cfg
}
