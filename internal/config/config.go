// Package config loads and validates run configurations.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/boundary"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/initial"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/integrators"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/metrics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeStep = 60.0
	MinTimeStep     = 1.0
	MaxTimeStep     = 3600.0
	DefaultSteps    = 100
	DefaultFPS      = 60
	DefaultProbeI   = 50
	DefaultProbeJ   = 50
)

type Config struct {
	Grid          dynamo.Params   `yaml:"grid"`
	Initializer   string          `yaml:"initializer"`
	Integrator    string          `yaml:"integrator"`
	Boundary      string          `yaml:"boundary"`
	StageBoundary bool            `yaml:"stage_boundary"`
	TimeStep      float64         `yaml:"time_step"`
	Steps         int             `yaml:"steps"`
	Seed          int64           `yaml:"seed"`
	Probe         ProbeConfig     `yaml:"probe"`
	ValidateState bool            `yaml:"validate_state"`
	FPS           int             `yaml:"fps"`
	NetCDF        string          `yaml:"netcdf,omitempty"`
	Profile       initial.Profile `yaml:"profile"`
	Metrics       []string        `yaml:"metrics"`
}

type ProbeConfig struct {
	I int `yaml:"i"`
	J int `yaml:"j"`
}

func (p ProbeConfig) Cell() dynamo.Cell { return dynamo.Cell{I: p.I, J: p.J} }

func DefaultConfig() *Config {
	return &Config{
		Grid:          dynamo.DefaultParams(),
		Initializer:   "analytic",
		Integrator:    "rk4",
		Boundary:      "ghost",
		TimeStep:      DefaultTimeStep,
		Steps:         DefaultSteps,
		Probe:         ProbeConfig{I: DefaultProbeI, J: DefaultProbeJ},
		ValidateState: true,
		FPS:           DefaultFPS,
		Profile:       initial.DefaultProfile(),
		Metrics:       metrics.Names(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Validate checks the values a user can get wrong. The time step must lie in
// [MinTimeStep, MaxTimeStep]; the controller itself accepts any value. The
// analytic profiles must keep pressure positive, which initial.New checks.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Grid.Validate(); err != nil {
		errs = append(errs, err)
	}
	if math.IsNaN(c.TimeStep) || c.TimeStep < MinTimeStep || c.TimeStep > MaxTimeStep {
		errs = append(errs, fmt.Errorf("time_step %g outside [%g, %g]: %w", c.TimeStep, MinTimeStep, MaxTimeStep, dynamo.ErrInvalidTimeStep))
	}
	if c.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps must not be negative, got %d", c.Steps))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}

	if _, err := initial.New(c.Initializer, c.InitSettings()); err != nil {
		errs = append(errs, err)
	}
	if _, err := integrators.New(c.Integrator, nil); err != nil {
		errs = append(errs, err)
	}
	if _, err := boundary.New(c.Boundary); err != nil {
		errs = append(errs, err)
	}
	for _, name := range c.Metrics {
		if _, err := metrics.New(name); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (c *Config) InitSettings() initial.Settings {
	return initial.Settings{Profile: c.Profile, Seed: c.Seed, Path: c.NetCDF}
}

// Duration is the simulated time covered by Steps steps.
func (c *Config) Duration() float64 {
	return float64(c.Steps) * c.TimeStep
}

func (c *Config) Clone() *Config {
	out := *c
	out.Metrics = append([]string(nil), c.Metrics...)
	return &out
}
