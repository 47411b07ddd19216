package experiment

import (
	"log/slog"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/boundary"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/config"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/initial"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/integrators"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/metrics"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/physics"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/sim"
)

// Components lists the registered names per component kind.
func Components() map[string][]string {
	return map[string][]string{
		"initializer": initial.Names(),
		"integrator":  integrators.Names(),
		"boundary":    {"ghost", "wrap", "none"},
		"metric":      metrics.Names(),
	}
}

// Build assembles a controller from cfg. cfg is validated first.
func Build(cfg *config.Config, log *slog.Logger) (*sim.Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bc, err := boundary.New(cfg.Boundary)
	if err != nil {
		return nil, err
	}
	var stage dynamo.Enforcer
	if cfg.StageBoundary {
		stage = bc
	}
	integ, err := integrators.New(cfg.Integrator, stage)
	if err != nil {
		return nil, err
	}
	init, err := initial.New(cfg.Initializer, cfg.InitSettings())
	if err != nil {
		return nil, err
	}

	probe := cfg.Probe.Cell()
	ctrl, err := sim.New(sim.Options{
		Grid:           cfg.Grid,
		System:         physics.NewAtmosphere(cfg.Grid),
		Integrator:     integ,
		Initializer:    init,
		Boundary:       bc,
		TimeStep:       cfg.TimeStep,
		Probe:          &probe,
		AllowNonFinite: !cfg.ValidateState,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}

	for _, name := range cfg.Metrics {
		m, err := metrics.New(name)
		if err != nil {
			return nil, err
		}
		ctrl.AddMetric(m)
	}
	return ctrl, nil
}
