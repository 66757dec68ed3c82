package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/qobj"
	"github.com/stretchr/testify/assert"
)

func sigmaZ() *qobj.Qobj {
	return qobj.NewOperator([]int{2}, []complex128{1, 0, 0, -1})
}

func TestEnergyDriftKet(t *testing.T) {
	m := NewEnergyDrift(sigmaZ(), true)
	assert.Equal(t, "energy_drift", m.Name())

	m.Observe(dynamo.State{1, 0}, 0)
	assert.InDelta(t, 0, m.Value(), 1e-12)
	assert.InDelta(t, 1, m.Current(), 1e-12)

	s := complex(1/math.Sqrt2, 0)
	m.Observe(dynamo.State{s, s}, 1)
	assert.InDelta(t, 1, m.Value(), 1e-12)

	m.Observe(dynamo.State{1, 0}, 2)
	assert.InDelta(t, 1, m.Value(), 1e-12, "drift keeps its maximum")
}

func TestEnergyDriftDensityMatrix(t *testing.T) {
	m := NewEnergyDrift(sigmaZ(), false)
	m.Observe(dynamo.State{0, 0, 0, 1}, 0)
	m.Observe(dynamo.State{0.25, 0, 0, 0.75}, 1)
	assert.InDelta(t, 0.5, m.Value(), 1e-12)
	assert.InDelta(t, -0.5, m.Current(), 1e-12)
}

func TestEnergyDriftReset(t *testing.T) {
	m := NewEnergyDrift(sigmaZ(), true)
	m.Observe(dynamo.State{1, 0}, 0)
	m.Observe(dynamo.State{0, 1}, 1)
	assert.NotZero(t, m.Value())

	m.Reset()
	assert.Zero(t, m.Value())
	assert.Zero(t, m.Current())
}

func TestEnergyDriftZeroInitialEnergy(t *testing.T) {
	m := NewEnergyDrift(sigmaZ(), true)
	s := complex(1/math.Sqrt2, 0)
	m.Observe(dynamo.State{s, s}, 0)
	m.Observe(dynamo.State{1, 0}, 1)
	assert.InDelta(t, 1, m.Value(), 1e-12, "absolute drift from a zero start")
}
