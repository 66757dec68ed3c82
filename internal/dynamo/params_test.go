package dynamo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParameters_Defaults(t *testing.T) {
	p := NewParameters(3)

	require.Len(t, p.Sites, 3)
	for _, s := range p.Sites {
		assert.Equal(t, Oscillator(DefaultFock), s)
	}
	assert.Equal(t, Sesolve, p.Solver)
	assert.Equal(t, DefaultNTraj, p.NTraj)
	assert.Equal(t, DefaultNSubsteps, p.NSubsteps)
	assert.InDelta(t, 2*math.Pi, p.Unit, 1e-15)
	assert.False(t, p.Seeded)
	assert.Equal(t, 64, p.Dim())
}

func TestFockNormalization(t *testing.T) {
	tests := []struct {
		name  string
		opt   Option
		sites []Site
		dim   int
	}{
		{"scalar", WithFock(3), []Site{Oscillator(3), Oscillator(3)}, 36},
		{"scalar below two", WithFock(1), []Site{Qubit(), Qubit()}, 4},
		{"list", WithFockList([]int{3, 2}), []Site{Oscillator(3), Oscillator(2)}, 24},
		{"list with qubit", WithFockList([]int{4, 0}), []Site{Oscillator(4), Qubit()}, 16},
		{"short list", WithFockList([]int{2}), []Site{Oscillator(2)}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParameters(2, tt.opt)
			assert.Equal(t, tt.sites, p.Sites)
			assert.Equal(t, tt.dim, p.Dim())
		})
	}
}

func TestSite(t *testing.T) {
	assert.Equal(t, Qubit(), Oscillator(1))
	assert.False(t, Qubit().HasOscillator())
	assert.True(t, Oscillator(2).HasOscillator())
	assert.Equal(t, 2, Qubit().LocalDim())
	assert.Equal(t, 10, Oscillator(5).LocalDim())
	assert.Equal(t, "qubit", Qubit().String())
	assert.Equal(t, "qubit+fock(5)", Oscillator(5).String())
}

func TestWithSites_Copies(t *testing.T) {
	sites := []Site{Qubit(), Oscillator(3)}
	p := NewParameters(2, WithSites(sites))
	sites[0] = Oscillator(4)
	assert.Equal(t, Qubit(), p.Sites[0])
}

func TestLinspace(t *testing.T) {
	assert.Nil(t, Linspace(0, 1, 0))
	assert.Equal(t, []float64{2}, Linspace(2, 5, 1))

	ts := Linspace(0, 1, 5)
	require.Len(t, ts, 5)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1}, ts, 1e-15)
}

func TestNewSource_Deterministic(t *testing.T) {
	a := NewParameters(1, WithSeed(42)).NewSource()
	b := NewParameters(1, WithSeed(42)).NewSource()
	c := NewParameters(1, WithSeed(43)).NewSource()

	for i := 0; i < 8; i++ {
		va, vb := a.Uint64(), b.Uint64()
		assert.Equal(t, va, vb)
		assert.NotEqual(t, va, c.Uint64())
	}
}

func TestSolveError(t *testing.T) {
	var err error = &SolveError{Solver: "mesolve", Step: 12, Time: 0.5, Wrapped: ErrInvalidState}

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.NotErrorIs(t, err, ErrStepTooSmall)
	assert.Contains(t, err.Error(), "mesolve: step 12 (t=0.5000)")

	var se *SolveError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 12, se.Step)
}
