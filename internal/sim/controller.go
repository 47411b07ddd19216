// Package sim drives the atmosphere forward in time.
//
// A [Controller] owns the current state, the run phase, the time step and the
// probe history. Steps are taken by [Controller.Tick], normally from the frame
// callback registered with [Controller.Attach]. A Controller is not safe for
// concurrent use: every command and every frame must run on one goroutine.
package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/boundary"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/initial"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/integrators"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/metrics"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/physics"
)

const DefaultTimeStep = 60.0

// Options configures a Controller. Zero fields take defaults: the analytic
// initializer, the atmosphere tendencies, RK4, ghost boundaries, a 60 s step
// and the grid centre as probe.
type Options struct {
	Grid        dynamo.Params
	System      dynamo.System
	Integrator  dynamo.Integrator
	Initializer dynamo.Initializer
	Boundary    dynamo.Enforcer
	TimeStep    float64

	// Probe is the cell sampled into the history. Nil or out-of-grid cells
	// fall back to the grid centre.
	Probe *dynamo.Cell

	// AllowNonFinite disables the per-step NaN/Inf check and lets degenerate
	// values propagate.
	AllowNonFinite bool

	Logger *slog.Logger
}

type Controller struct {
	grid     dynamo.Params
	sys      dynamo.System
	integ    dynamo.Integrator
	init     dynamo.Initializer
	bc       dynamo.Enforcer
	probe    dynamo.Cell
	validate bool
	log      *slog.Logger

	state    *dynamo.State
	phase    Phase
	timeStep float64
	step     int
	elapsed  float64
	history  History
	fault    error

	metrics   []metrics.Metric
	observers []Observer
}

// New builds a controller and creates the initial state. The controller
// starts Idle.
func New(opts Options) (*Controller, error) {
	if err := opts.Grid.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		grid:     opts.Grid,
		sys:      opts.System,
		integ:    opts.Integrator,
		init:     opts.Initializer,
		bc:       opts.Boundary,
		timeStep: opts.TimeStep,
		validate: !opts.AllowNonFinite,
		log:      opts.Logger,
	}
	if c.sys == nil {
		c.sys = physics.NewAtmosphere(opts.Grid)
	}
	if c.integ == nil {
		c.integ = integrators.NewRK4()
	}
	if c.init == nil {
		c.init = initial.NewAnalytic()
	}
	if c.bc == nil {
		c.bc = boundary.NewPeriodic(boundary.Ghost)
	}
	if c.timeStep == 0 {
		c.timeStep = DefaultTimeStep
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c.probe = opts.Grid.Center()
	if opts.Probe != nil {
		if opts.Grid.Contains(*opts.Probe) {
			c.probe = *opts.Probe
		} else {
			c.log.Warn("probe outside grid, using centre", "probe", opts.Probe.String(), "centre", c.probe.String())
		}
	}

	state, err := c.initialState()
	if err != nil {
		return nil, err
	}
	c.state = state
	return c, nil
}

func (c *Controller) initialState() (*dynamo.State, error) {
	s, err := c.init.Initialize(c.grid)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	if err := s.CheckShape(c.grid); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return s, nil
}

// AddMetric registers m. A metrics.Baseliner is given the current state as
// its reference.
func (c *Controller) AddMetric(m metrics.Metric) {
	c.metrics = append(c.metrics, m)
	if b, ok := m.(metrics.Baseliner); ok {
		b.Baseline(c.state)
	}
}

func (c *Controller) AddObserver(o Observer) { c.observers = append(c.observers, o) }

// Start begins stepping on subsequent frames. It is a no-op while running.
func (c *Controller) Start() {
	if c.phase == Running {
		return
	}
	c.phase = Running
	c.fault = nil
	c.log.Info("simulation started", "step", c.step, "dt", c.timeStep)
}

// Stop halts stepping after the current frame.
func (c *Controller) Stop() {
	if c.phase != Running {
		return
	}
	c.phase = Paused
	c.log.Info("simulation stopped", "step", c.step)
}

// Reset stops the run, discards the state and history and re-creates the
// initial state. On error the previous state is kept and the controller
// stays stopped.
func (c *Controller) Reset() error {
	if c.phase == Running {
		c.phase = Paused
	}

	state, err := c.initialState()
	if err != nil {
		c.log.Error("reset failed", "err", err)
		return err
	}

	c.state = state
	c.phase = Idle
	c.step = 0
	c.elapsed = 0
	c.history = History{}
	c.fault = nil
	for _, m := range c.metrics {
		m.Reset()
		if b, ok := m.(metrics.Baseliner); ok {
			b.Baseline(c.state)
		}
	}
	c.log.Info("simulation reset")
	return nil
}

// SetTimeStep replaces the step size from the next step on. The value is not
// range checked.
func (c *Controller) SetTimeStep(dt float64) {
	c.timeStep = dt
	c.log.Info("time step changed", "dt", dt)
}

// Tick advances one step if running. It returns a *dynamo.SimError wrapping
// dynamo.ErrNonFinite when the new state is degenerate; the step is then
// discarded and the controller pauses.
func (c *Controller) Tick() error {
	if c.phase != Running {
		return nil
	}

	next := c.integ.Step(c.sys, c.state, c.timeStep)
	c.bc.Apply(next)

	if c.validate {
		if err := next.Validate(); err != nil {
			c.fault = &dynamo.SimError{Step: c.step, Time: c.elapsed + c.timeStep, Wrapped: err}
			c.phase = Paused
			c.log.Error("numerical fault, simulation paused", "step", c.step, "err", err)
			return c.fault
		}
	}

	c.state = next
	idx := c.step
	c.step++
	c.elapsed += c.timeStep

	c.history.Pressure = append(c.history.Pressure, HistorySample{Step: idx, Value: next.Pressure.At(c.probe.I, c.probe.J)})
	c.history.Temperature = append(c.history.Temperature, HistorySample{Step: idx, Value: next.Temperature.At(c.probe.I, c.probe.J)})

	for _, m := range c.metrics {
		m.Observe(next, idx)
	}

	if c.log.Enabled(context.Background(), slog.LevelDebug) {
		c.log.Debug("step",
			"step", idx,
			"t", c.elapsed,
			"pressure", metrics.Describe(next.Pressure).String(),
			"temperature", metrics.Describe(next.Temperature).String())
	}

	if len(c.observers) > 0 {
		snap := c.Snapshot()
		for _, o := range c.observers {
			o.OnStep(idx, snap)
		}
	}
	return nil
}

// Run starts the controller and ticks until steps steps have completed, a
// fault occurs or ctx is done. It leaves the controller paused.
func (c *Controller) Run(ctx context.Context, steps int) error {
	c.Start()
	defer c.Stop()

	for done := 0; done < steps; done++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := c.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// Attach registers a self-rescheduling frame callback with s. Frames keep
// arriving while the controller is stopped; a step is only taken while
// running. The returned function detaches the callback.
func (c *Controller) Attach(s Scheduler) (detach func()) {
	var detached atomic.Bool
	var frame func()
	frame = func() {
		if detached.Load() {
			return
		}
		c.Tick()
		s.RequestFrame(frame)
	}
	s.RequestFrame(frame)
	return func() { detached.Store(true) }
}

func (c *Controller) Phase() Phase              { return c.phase }
func (c *Controller) Running() bool             { return c.phase == Running }
func (c *Controller) TimeStep() float64         { return c.timeStep }
func (c *Controller) Steps() int                { return c.step }
func (c *Controller) Elapsed() float64          { return c.elapsed }
func (c *Controller) Grid() dynamo.Params       { return c.grid }
func (c *Controller) Probe() dynamo.Cell        { return c.probe }
func (c *Controller) Metrics() []metrics.Metric { return c.metrics }

// Fault returns the error that last paused the run, or nil.
func (c *Controller) Fault() error { return c.fault }

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Step:     c.step,
		Time:     c.elapsed,
		TimeStep: c.timeStep,
		Phase:    c.phase,
		Grid:     c.grid,
		Probe:    c.probe,
		State:    c.state.Clone(),
	}
}

// History copies both probe series.
func (c *Controller) History() History { return c.history.clone() }

// MetricValues returns the current value of every registered metric.
func (c *Controller) MetricValues() map[string]float64 {
	out := make(map[string]float64, len(c.metrics))
	for _, m := range c.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
