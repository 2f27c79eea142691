package config

import (
	"sort"

	"github.com/san-kum/ljsim/internal/sim"
)

// NIST reference system for argon-like Lennard-Jones parameters.
const (
	nistSigma   = 3.73
	nistEpsilon = 148.0
)

var Presets = map[string]map[string]*Config{
	sim.MethodMonteCarlo: {
		"reduced": {
			Method: sim.MethodMonteCarlo, Temperature: 0.9, Steps: 50000, PrintProp: 1000, PrintXYZ: 1000,
			MaxDisp: 0.1, Seed: 1,
			Box:       BoxConfig{Density: 0.9, NumParticles: 500, Mass: 1, Placement: PlacementLattice},
			Potential: PotentialConfig{Cutoff: 3},
		},
		"argon": {
			Method: sim.MethodMonteCarlo, Temperature: 90, Steps: 100000, PrintProp: 1000, PrintXYZ: 5000,
			MaxDisp: 0.3, Seed: 1,
			Box:       BoxConfig{Length: 29.12, NumParticles: 500, Mass: 39.948, Placement: PlacementLattice},
			Potential: PotentialConfig{Cutoff: 10.2, Params: []float64{3.405, 119.8}},
		},
		"nist": {
			Method: sim.MethodMonteCarlo, Temperature: 0.85 * nistEpsilon, Steps: 100000, PrintProp: 1000, PrintXYZ: 10000,
			MaxDisp: 0.3, Seed: 1,
			Box:       BoxConfig{Length: 10 * nistSigma, NumParticles: 800, Mass: 1, Placement: PlacementRandom},
			Potential: PotentialConfig{Cutoff: 3 * nistSigma, Params: []float64{nistSigma, nistEpsilon}},
		},
	},
	sim.MethodMolecularDynamics: {
		"reduced": {
			Method: sim.MethodMolecularDynamics, Temperature: 0.9, Steps: 20000, PrintProp: 100, PrintXYZ: 1000,
			TimeStep: 0.001, ScaleFreq: 10, Seed: 1,
			Box:       BoxConfig{Density: 0.8, NumParticles: 500, Mass: 1, Placement: PlacementLattice},
			Potential: PotentialConfig{Cutoff: 3, Switch: 2.5},
		},
		"nve": {
			Method: sim.MethodMolecularDynamics, Temperature: 0.7, Steps: 20000, PrintProp: 100, PrintXYZ: 2000,
			TimeStep: 0.002, ScaleFreq: 0, Seed: 1,
			Box:       BoxConfig{Density: 0.7, NumParticles: 256, Mass: 1, Placement: PlacementLattice},
			Potential: PotentialConfig{Cutoff: 2.5, Switch: 2.0},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(method, preset string) *Config {
	methodPresets, ok := Presets[method]
	if !ok {
		return nil
	}
	cfg, ok := methodPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(method string) []string {
	methodPresets, ok := Presets[method]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(methodPresets))
	for name := range methodPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Methods lists the methods that have presets.
func Methods() []string {
	out := make([]string, 0, len(Presets))
	for m := range Presets {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
