package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/halosim/internal/lattice"
)

const (
	DefaultSize     = 64
	DefaultDelta    = 0.25
	DefaultMass     = 1.0
	DefaultNodes    = 1
	DefaultDeltaT   = 1e-3
	DefaultOutput   = "runs"
	DefaultHarmonic = 1.0
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Grid       GridConfig      `yaml:"grid"`
	Nodes      int             `yaml:"nodes"`
	NodeGrid   []int           `yaml:"node_grid,omitempty"`
	Species    []SpeciesConfig `yaml:"species"`
	Rotation   RotationConfig  `yaml:"rotation"`
	CouplingAB float64         `yaml:"coupling_ab"`
	Rabi       RabiConfig      `yaml:"rabi"`
	Iterations int             `yaml:"iterations"`
	Snapshots  int             `yaml:"snapshots"`
	DeltaT     float64         `yaml:"delta_t"`
	Output     string          `yaml:"output"`
	LogLevel   string          `yaml:"log_level"`
}

type GridConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	DeltaX    float64 `yaml:"delta_x"`
	DeltaY    float64 `yaml:"delta_y"`
	PeriodicX bool    `yaml:"periodic_x"`
	PeriodicY bool    `yaml:"periodic_y"`
}

type SpeciesConfig struct {
	Mass      float64  `yaml:"mass"`
	Coupling  float64  `yaml:"coupling"`
	Potential Strategy `yaml:"potential"`
	Initial   Strategy `yaml:"initial"`
	// Optional files read instead of the strategies.
	PotentialFile string `yaml:"potential_file,omitempty"`
	StateFile     string `yaml:"state_file,omitempty"`
	StateSkip     int    `yaml:"state_skip,omitempty"`
}

// Strategy names a registered potential or initial state and its
// parameters.
type Strategy struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

type RotationConfig struct {
	Omega float64 `yaml:"omega"`
	// Center defaults to the middle of the grid when empty.
	Center []float64 `yaml:"center,omitempty"`
}

type RabiConfig struct {
	Real float64 `yaml:"real"`
	Imag float64 `yaml:"imag"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			Width:  DefaultSize,
			Height: DefaultSize,
			DeltaX: DefaultDelta,
			DeltaY: DefaultDelta,
		},
		Nodes: DefaultNodes,
		Species: []SpeciesConfig{{
			Mass:      DefaultMass,
			Potential: Strategy{Name: "harmonic", Params: map[string]float64{"omega": DefaultHarmonic}},
			Initial:   Strategy{Name: "gaussian", Params: map[string]float64{"width": 2}},
		}},
		Iterations: 1,
		DeltaT:     DefaultDeltaT,
		Output:     DefaultOutput,
		LogLevel:   "info",
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

func (c *Config) Validate() error {
	g := c.Grid
	if g.Width < 1 || g.Height < 1 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalid, g.Width, g.Height)
	}
	if g.DeltaX <= 0 || g.DeltaY <= 0 {
		return fmt.Errorf("%w: spacing %gx%g", ErrInvalid, g.DeltaX, g.DeltaY)
	}
	if c.Nodes < 1 {
		return fmt.Errorf("%w: %d nodes", ErrInvalid, c.Nodes)
	}
	if n := len(c.NodeGrid); n != 0 && n != 2 {
		return fmt.Errorf("%w: node_grid needs 2 entries, got %d", ErrInvalid, n)
	}
	if n := len(c.Species); n < 1 || n > 2 {
		return fmt.Errorf("%w: %d species, want 1 or 2", ErrInvalid, n)
	}
	for i, s := range c.Species {
		if s.Mass <= 0 {
			return fmt.Errorf("%w: species %d mass %g", ErrInvalid, i, s.Mass)
		}
		if s.Initial.Name == "" && s.StateFile == "" {
			return fmt.Errorf("%w: species %d has no initial state", ErrInvalid, i)
		}
	}
	if n := len(c.Rotation.Center); n != 0 && n != 2 {
		return fmt.Errorf("%w: rotation center needs 2 entries, got %d", ErrInvalid, n)
	}
	if c.Iterations < 0 || c.Snapshots < 0 {
		return fmt.Errorf("%w: iterations %d snapshots %d", ErrInvalid, c.Iterations, c.Snapshots)
	}
	return nil
}

// Lattice converts the grid section to a lattice configuration.
func (c *Config) Lattice() lattice.Config {
	lc := lattice.Config{
		DimX:      c.Grid.Width,
		DimY:      c.Grid.Height,
		DeltaX:    c.Grid.DeltaX,
		DeltaY:    c.Grid.DeltaY,
		PeriodicX: c.Grid.PeriodicX,
		PeriodicY: c.Grid.PeriodicY,
		Omega:     c.Rotation.Omega,
	}
	if len(c.NodeGrid) == 2 {
		lc.Dims = [2]int{c.NodeGrid[0], c.NodeGrid[1]}
	}
	return lc
}

func (c *Config) TwoComponent() bool { return len(c.Species) == 2 }
