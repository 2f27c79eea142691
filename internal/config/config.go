package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/sim"
)

const (
	PlacementLattice = "lattice"
	PlacementRandom  = "random"
	PlacementFile    = "file"
)

const (
	DefaultTemperature  = 0.9
	DefaultSteps        = 50000
	DefaultPrintProp    = 1000
	DefaultPrintXYZ     = 1000
	DefaultMaxDisp      = 0.1
	DefaultScaleFreq    = 10
	DefaultTimeStep     = 0.001
	DefaultNumParticles = 500
	DefaultDensity      = 0.9
	DefaultCutoff       = 3.0
)

// ErrUnknownParam is returned by SetParam for names it does not know.
var ErrUnknownParam = errors.New("config: unknown parameter")

// EnvPrefix is prepended to every environment override, e.g.
// LJSIM_TEMPERATURE or LJSIM_BOX_DENSITY.
const EnvPrefix = "LJSIM_"

type Config struct {
	Method      string          `yaml:"method" toml:"method" json:"method" env:"METHOD"`
	Temperature float64         `yaml:"temperature" toml:"temperature" json:"temperature" env:"TEMPERATURE"`
	Steps       int             `yaml:"steps" toml:"steps" json:"steps" env:"STEPS"`
	PrintProp   int             `yaml:"print_prop" toml:"print_prop" json:"print_prop" env:"PRINT_PROP"`
	PrintXYZ    int             `yaml:"print_xyz" toml:"print_xyz" json:"print_xyz" env:"PRINT_XYZ"`
	MaxDisp     float64         `yaml:"max_disp" toml:"max_disp" json:"max_disp" env:"MAX_DISP"`
	ScaleFreq   int             `yaml:"scale_freq" toml:"scale_freq" json:"scale_freq" env:"SCALE_FREQ"`
	TimeStep    float64         `yaml:"time_step" toml:"time_step" json:"time_step" env:"TIME_STEP"`
	Seed        int64           `yaml:"seed" toml:"seed" json:"seed" env:"SEED"`
	Workers     int             `yaml:"workers" toml:"workers" json:"workers" env:"WORKERS"`
	Box         BoxConfig       `yaml:"box" toml:"box" json:"box" envPrefix:"BOX_"`
	Potential   PotentialConfig `yaml:"potential" toml:"potential" json:"potential" envPrefix:"POTENTIAL_"`
}

// BoxConfig describes the cell. Length wins over Density when both are set.
type BoxConfig struct {
	Length       float64 `yaml:"length,omitempty" toml:"length,omitempty" json:"length,omitempty" env:"LENGTH"`
	Density      float64 `yaml:"density,omitempty" toml:"density,omitempty" json:"density,omitempty" env:"DENSITY"`
	NumParticles int     `yaml:"num_particles" toml:"num_particles" json:"num_particles" env:"NUM_PARTICLES"`
	Mass         float64 `yaml:"mass" toml:"mass" json:"mass" env:"MASS"`
	Placement    string  `yaml:"placement" toml:"placement" json:"placement" env:"PLACEMENT"`
	File         string  `yaml:"file,omitempty" toml:"file,omitempty" json:"file,omitempty" env:"FILE"`
}

// PotentialConfig holds the Lennard-Jones settings. A zero Switch disables
// smoothing; an empty Params list selects reduced units.
type PotentialConfig struct {
	Cutoff float64   `yaml:"cutoff" toml:"cutoff" json:"cutoff" env:"CUTOFF"`
	Switch float64   `yaml:"switch,omitempty" toml:"switch,omitempty" json:"switch,omitempty" env:"SWITCH"`
	Params []float64 `yaml:"params,omitempty" toml:"params,omitempty" json:"params,omitempty" env:"PARAMS"`
}

func DefaultConfig() *Config {
	return &Config{
		Method:      sim.MethodMonteCarlo,
		Temperature: DefaultTemperature,
		Steps:       DefaultSteps,
		PrintProp:   DefaultPrintProp,
		PrintXYZ:    DefaultPrintXYZ,
		MaxDisp:     DefaultMaxDisp,
		ScaleFreq:   DefaultScaleFreq,
		TimeStep:    DefaultTimeStep,
		Seed:        1,
		Box: BoxConfig{
			Density:      DefaultDensity,
			NumParticles: DefaultNumParticles,
			Mass:         1,
			Placement:    PlacementLattice,
		},
		Potential: PotentialConfig{Cutoff: DefaultCutoff},
	}
}

// Load reads a YAML or TOML file (chosen by extension) on top of the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := tree.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		data, err = toml.Marshal(*cfg)
	default:
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overlays LJSIM_* environment variables. Unset variables leave
// the current values untouched.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// BoxLength returns the configured edge, derived from the density when no
// explicit length is given.
func (c *Config) BoxLength() float64 {
	if c.Box.Length > 0 {
		return c.Box.Length
	}
	if c.Box.Density > 0 && c.Box.NumParticles > 0 {
		return box.LengthForDensity(c.Box.NumParticles, c.Box.Density)
	}
	return 0
}

func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{dynamo.ErrInvalidConfig}, args...)...)
	}

	switch c.Method {
	case sim.MethodMonteCarlo:
		if !(c.MaxDisp > 0) {
			return invalid("max_disp must be positive, got %g", c.MaxDisp)
		}
	case sim.MethodMolecularDynamics:
		if !(c.TimeStep > 0) {
			return invalid("time_step must be positive, got %g", c.TimeStep)
		}
		if c.ScaleFreq < 0 {
			return invalid("scale_freq must be non-negative, got %d", c.ScaleFreq)
		}
	default:
		return invalid("unknown method %q", c.Method)
	}

	if !(c.Temperature > 0) {
		return invalid("temperature must be positive, got %g", c.Temperature)
	}
	if c.Steps < 0 {
		return invalid("steps must be non-negative, got %d", c.Steps)
	}
	if c.PrintProp <= 0 || c.PrintXYZ <= 0 {
		return invalid("print_prop and print_xyz must be positive")
	}

	switch c.Box.Placement {
	case PlacementLattice, PlacementRandom:
		if c.Box.NumParticles <= 0 {
			return invalid("num_particles must be positive, got %d", c.Box.NumParticles)
		}
	case PlacementFile:
		if c.Box.File == "" {
			return invalid("placement %q needs box.file", PlacementFile)
		}
	default:
		return invalid("unknown placement %q", c.Box.Placement)
	}
	if c.Box.Length <= 0 && c.Box.Density <= 0 {
		return invalid("box needs a length or a density")
	}
	if !(c.Box.Mass > 0) {
		return invalid("mass must be positive, got %g", c.Box.Mass)
	}

	p := c.Potential
	if !(p.Cutoff > 0) {
		return invalid("cutoff must be positive, got %g", p.Cutoff)
	}
	if p.Switch < 0 || p.Switch > p.Cutoff {
		return invalid("switch %g outside [0, %g]", p.Switch, p.Cutoff)
	}
	if n := len(p.Params); n != 0 && n != 2 {
		return invalid("params needs sigma and epsilon, got %d values", n)
	}
	return nil
}

// CutoffExceedsHalfBox reports whether the cutoff is longer than half the
// box edge, which breaks the minimum-image convention.
func (c *Config) CutoffExceedsHalfBox() bool {
	l := c.BoxLength()
	return l > 0 && c.Potential.Cutoff > l/2
}

// SetParam sets a numeric setting by its file key. Setting the density
// clears an explicit length.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "temperature":
		c.Temperature = v
	case "max_disp":
		c.MaxDisp = v
	case "time_step":
		c.TimeStep = v
	case "density":
		c.Box.Density = v
		c.Box.Length = 0
	case "length":
		c.Box.Length = v
	case "num_particles":
		c.Box.NumParticles = int(v)
	case "cutoff":
		c.Potential.Cutoff = v
	case "switch":
		c.Potential.Switch = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

// Params lists the names accepted by SetParam.
func Params() []string {
	return []string{"temperature", "max_disp", "time_step", "density", "length", "num_particles", "cutoff", "switch"}
}

func (c *Config) Clone() *Config {
	out := *c
	out.Potential.Params = append([]float64(nil), c.Potential.Params...)
	return &out
}
