package metrics

import (
	"math"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/qobj"
)

// EnergyDrift tracks the largest deviation of ⟨H⟩ from its first observed
// value, relative when the initial energy is nonzero.
type EnergyDrift struct {
	name          string
	h             *qobj.Qobj
	isKet         bool
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(h *qobj.Qobj, isKet bool) *EnergyDrift {
	return &EnergyDrift{
		name:  "energy_drift",
		h:     h,
		isKet: isKet,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	energy := real(qobj.ExpectRaw(e.h, x, e.isKet))

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	drift := math.Abs(energy - e.initialEnergy)
	if e.initialEnergy != 0 {
		drift /= math.Abs(e.initialEnergy)
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current is the last observed energy.
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
