package config

import "sort"

var Presets = map[string]*Config{
	"single_harmonic": {
		Grid:  GridConfig{Width: 64, Height: 64, DeltaX: 0.25, DeltaY: 0.25},
		Nodes: 1,
		Species: []SpeciesConfig{{
			Mass: 1, Coupling: 0,
			Potential: Strategy{Name: "harmonic", Params: map[string]float64{"omega": 1}},
			Initial:   Strategy{Name: "gaussian", Params: map[string]float64{"width": 1}},
		}},
		Iterations: 1, DeltaT: 1e-3, Output: DefaultOutput, LogLevel: "info",
	},
	"rotating": {
		Grid:     GridConfig{Width: 96, Height: 96, DeltaX: 0.2, DeltaY: 0.2},
		Nodes:    4,
		Rotation: RotationConfig{Omega: 0.7},
		Species: []SpeciesConfig{{
			Mass: 1, Coupling: 50,
			Potential: Strategy{Name: "harmonic", Params: map[string]float64{"omega": 1}},
			Initial:   Strategy{Name: "vortex", Params: map[string]float64{"width": 2, "charge": 1}},
		}},
		Iterations: 1, DeltaT: 1e-3, Output: DefaultOutput, LogLevel: "info",
	},
	"coupled": {
		Grid:       GridConfig{Width: 64, Height: 64, DeltaX: 0.25, DeltaY: 0.25},
		Nodes:      2,
		CouplingAB: 0.5,
		Rabi:       RabiConfig{Real: 0.2},
		Species: []SpeciesConfig{
			{
				Mass: 1, Coupling: 1,
				Potential: Strategy{Name: "harmonic", Params: map[string]float64{"omega": 1}},
				Initial:   Strategy{Name: "gaussian", Params: map[string]float64{"width": 1, "x": -1}},
			},
			{
				Mass: 1.5, Coupling: 1,
				Potential: Strategy{Name: "harmonic", Params: map[string]float64{"omega": 1.2}},
				Initial:   Strategy{Name: "gaussian", Params: map[string]float64{"width": 1, "x": 1}},
			},
		},
		Iterations: 1, DeltaT: 1e-3, Output: DefaultOutput, LogLevel: "info",
	},
	"periodic_plane_wave": {
		Grid:  GridConfig{Width: 48, Height: 32, DeltaX: 0.5, DeltaY: 0.5, PeriodicX: true, PeriodicY: true},
		Nodes: 4,
		Species: []SpeciesConfig{{
			Mass: 1, Coupling: 0,
			Potential: Strategy{Name: "const", Params: map[string]float64{"value": 0}},
			Initial:   Strategy{Name: "plane_wave", Params: map[string]float64{"nx": 2, "ny": 1}},
		}},
		Iterations: 1, DeltaT: 1e-3, Output: DefaultOutput, LogLevel: "info",
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Species = append([]SpeciesConfig(nil), p.Species...)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
