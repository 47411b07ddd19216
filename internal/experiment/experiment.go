// Package experiment wires a configuration into a runnable simulation.
package experiment

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/config"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/sim"
)

type Experiment struct {
	cfg  *config.Config
	ctrl *sim.Controller
	log  *slog.Logger
}

// Result is the outcome of a headless run.
type Result struct {
	Config  *config.Config
	Steps   int
	Elapsed float64
	Wall    time.Duration
	Initial *dynamo.State
	Final   sim.Snapshot
	History sim.History
	Metrics map[string]float64
	Fault   error
}

func New(cfg *config.Config, log *slog.Logger) (*Experiment, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctrl, err := Build(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Experiment{cfg: cfg, ctrl: ctrl, log: log}, nil
}

// Controller returns the underlying controller for adding observers or
// attaching a scheduler.
func (e *Experiment) Controller() *sim.Controller {
	return e.ctrl
}

// Run takes cfg.Steps steps. A numerical fault ends the run early and is
// reported in Result.Fault, not as an error; err is only set when ctx ends
// the run.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	initialState := e.ctrl.Snapshot().State
	start := time.Now()
	e.log.Info("run", "steps", e.cfg.Steps, "dt", e.cfg.TimeStep,
		"grid", e.cfg.Grid, "integrator", e.cfg.Integrator, "initializer", e.cfg.Initializer)

	err := e.ctrl.Run(ctx, e.cfg.Steps)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}

	res := &Result{
		Config:  e.cfg,
		Steps:   e.ctrl.Steps(),
		Elapsed: e.ctrl.Elapsed(),
		Wall:    time.Since(start),
		Initial: initialState,
		Final:   e.ctrl.Snapshot(),
		History: e.ctrl.History(),
		Metrics: e.ctrl.MetricValues(),
		Fault:   e.ctrl.Fault(),
	}
	e.log.Info("run finished", "steps", res.Steps, "wall", res.Wall, "fault", res.Fault)
	return res, nil
}
