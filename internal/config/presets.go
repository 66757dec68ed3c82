package config

import "sort"

func seed(v uint64) *uint64 { return &v }

// ExcitationCap returns a pointer to v for Config.Excitations.
func ExcitationCap(v int) *int { return &v }

var Presets = map[string]map[string]*Config{
	"rabi": {
		"resonant": {
			Model: "rabi", Solver: "sesolve", Integrator: "rk45", NumSites: 1, Fock: Fock(1),
			Duration: 2.0, NumPoints: 201, Dt: 1e-3,
			Params: map[string]float64{"omega": 1.0},
		},
		"detuned": {
			Model: "rabi", Solver: "sesolve", Integrator: "rk45", NumSites: 1, Fock: Fock(1),
			Duration: 2.0, NumPoints: 201, Dt: 1e-3,
			Params: map[string]float64{"omega": 1.0, "detuning": 1.0},
		},
		"driven": {
			Model: "rabi", Solver: "sesolve", Integrator: "rk45", NumSites: 1, Fock: Fock(1),
			Duration: 4.0, NumPoints: 401, Dt: 1e-3, TimeDep: true,
			Params: map[string]float64{"omega": 1.0, "drive_freq": 0.0},
		},
		"damped": {
			Model: "rabi", Solver: "mesolve", Integrator: "rk45", NumSites: 1, Fock: Fock(1),
			Duration: 4.0, NumPoints: 401, Dt: 1e-3,
			Params: map[string]float64{"omega": 1.0, "gamma": 0.5},
		},
	},
	"jaynes_cummings": {
		"vacuum": {
			Model: "jaynes_cummings", Solver: "sesolve", Integrator: "rk45", NumSites: 1, Fock: Fock(4),
			Duration: 2.0, NumPoints: 201, Dt: 1e-3,
			Params: map[string]float64{"g": 0.5},
		},
		"lossy": {
			Model: "jaynes_cummings", Solver: "mesolve", Integrator: "rk45", NumSites: 1, Fock: Fock(4),
			Duration: 4.0, NumPoints: 201, Dt: 1e-3,
			Params: map[string]float64{"g": 0.5, "kappa": 0.1, "gamma": 0.05},
		},
	},
	"hopping_chain": {
		"pair": {
			Model: "hopping_chain", Solver: "sesolve", Integrator: "rk45", NumSites: 2, Fock: Fock(1),
			Excitations: ExcitationCap(1), Duration: 1.0, NumPoints: 101, Dt: 1e-3,
			Params: map[string]float64{"J": 0.5},
		},
		"chain": {
			Model: "hopping_chain", Solver: "sesolve", Integrator: "rk45", NumSites: 5, Fock: Fock(1),
			Excitations: ExcitationCap(1), Duration: 2.0, NumPoints: 201, Dt: 1e-3,
			Params: map[string]float64{"J": 0.5},
		},
	},
	"homodyne_decay": {
		"weak": {
			Model: "homodyne_decay", Solver: "smesolve", Integrator: "milstein", NumSites: 1, Fock: Fock(1),
			Duration: 2.0, NumPoints: 41, Dt: 1e-3, NTraj: 16, NSubsteps: 41, Seed: seed(1),
			Params: map[string]float64{"gamma": 0.2, "measure": 0.1},
		},
		"strong": {
			Model: "homodyne_decay", Solver: "smesolve", Integrator: "milstein", NumSites: 1, Fock: Fock(1),
			Duration: 2.0, NumPoints: 41, Dt: 1e-3, NTraj: 16, NSubsteps: 41, Seed: seed(1),
			Params: map[string]float64{"gamma": 0.2, "measure": 1.0},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
