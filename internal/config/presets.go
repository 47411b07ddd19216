package config

import "sort"

var Presets = map[string]*Config{
	"default": preset(func(c *Config) {}),
	"calm": preset(func(c *Config) {
		c.Initializer = "uniform"
	}),
	"gradient": preset(func(c *Config) {
		c.Grid.NX, c.Grid.NY = 10, 10
		c.Initializer = "gradient"
		c.TimeStep = 1
		c.Probe = ProbeConfig{I: 5, J: 5}
	}),
	"storm": preset(func(c *Config) {
		c.Initializer = "randomized"
		c.Profile.Ap = 3000
		c.Profile.Au = 15
		c.TimeStep = 30
		c.Steps = 300
	}),
	"euler": preset(func(c *Config) {
		c.Integrator = "euler"
	}),
	"wrap": preset(func(c *Config) {
		c.Boundary = "wrap"
		c.StageBoundary = true
	}),
	"hourly": preset(func(c *Config) {
		c.TimeStep = MaxTimeStep
		c.Steps = 48
	}),
}

func preset(fn func(*Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
