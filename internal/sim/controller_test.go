package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/initial"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/metrics"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/sim"
)

var smallGrid = dynamo.Params{NX: 10, NY: 10, DX: 10000, DY: 10000}

// pressureHole zeroes the pressure at one interior cell next to a gradient,
// which makes the wind tendency divide by zero on the first step.
type pressureHole struct{}

func (pressureHole) Initialize(p dynamo.Params) (*dynamo.State, error) {
	s, err := initial.NewGradient().Initialize(p)
	if err != nil {
		return nil, err
	}
	s.Pressure.Set(4, 4, 0)
	return s, nil
}

type failingInit struct{}

func (failingInit) Initialize(dynamo.Params) (*dynamo.State, error) {
	return nil, errors.New("no data")
}

var _ = Describe("Controller", func() {
	var (
		ctrl  *sim.Controller
		sched *sim.ManualScheduler
	)

	newController := func(opts sim.Options) *sim.Controller {
		if opts.Grid == (dynamo.Params{}) {
			opts.Grid = smallGrid
		}
		c, err := sim.New(opts)
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	BeforeEach(func() {
		ctrl = newController(sim.Options{Initializer: initial.NewAnalytic()})
		sched = sim.NewManualScheduler()
	})

	Describe("construction", func() {
		It("starts idle with an empty history", func() {
			Expect(ctrl.Phase()).To(Equal(sim.Idle))
			Expect(ctrl.Steps()).To(BeZero())
			Expect(ctrl.History().Len()).To(BeZero())
			Expect(ctrl.TimeStep()).To(Equal(sim.DefaultTimeStep))
		})

		It("probes the grid centre by default", func() {
			Expect(ctrl.Probe()).To(Equal(dynamo.Cell{I: 5, J: 5}))
		})

		It("clamps an out-of-grid probe to the centre", func() {
			c := newController(sim.Options{Probe: &dynamo.Cell{I: 50, J: 50}})
			Expect(c.Probe()).To(Equal(dynamo.Cell{I: 5, J: 5}))

			c = newController(sim.Options{Probe: &dynamo.Cell{I: 2, J: 7}})
			Expect(c.Probe()).To(Equal(dynamo.Cell{I: 2, J: 7}))
		})

		It("rejects an invalid grid", func() {
			_, err := sim.New(sim.Options{Grid: dynamo.Params{NX: 2, NY: 2, DX: 1, DY: 1}})
			Expect(err).To(MatchError(dynamo.ErrInvalidGrid))
		})

		It("reports initializer failures", func() {
			_, err := sim.New(sim.Options{Grid: smallGrid, Initializer: failingInit{}})
			Expect(err).To(MatchError(ContainSubstring("no data")))
		})
	})

	Describe("commands", func() {
		It("does not step while idle or paused", func() {
			Expect(ctrl.Tick()).To(Succeed())
			Expect(ctrl.Steps()).To(BeZero())

			ctrl.Start()
			Expect(ctrl.Tick()).To(Succeed())
			ctrl.Stop()
			Expect(ctrl.Phase()).To(Equal(sim.Paused))

			Expect(ctrl.Tick()).To(Succeed())
			Expect(ctrl.Steps()).To(Equal(1))
		})

		It("ignores Start while running and Stop while idle", func() {
			ctrl.Stop()
			Expect(ctrl.Phase()).To(Equal(sim.Idle))

			ctrl.Start()
			ctrl.Start()
			Expect(ctrl.Phase()).To(Equal(sim.Running))
		})

		It("applies a new time step on the next step without validating it", func() {
			ctrl.Start()
			Expect(ctrl.Tick()).To(Succeed())
			ctrl.SetTimeStep(3600)
			Expect(ctrl.Tick()).To(Succeed())
			Expect(ctrl.Elapsed()).To(Equal(60.0 + 3600.0))

			ctrl.SetTimeStep(-1)
			Expect(ctrl.TimeStep()).To(Equal(-1.0))
		})
	})

	Describe("history", func() {
		It("records one sample per field per completed step", func() {
			ctrl.Start()
			for n := 0; n < 7; n++ {
				Expect(ctrl.Tick()).To(Succeed())
			}

			h := ctrl.History()
			Expect(h.Pressure).To(HaveLen(7))
			Expect(h.Temperature).To(HaveLen(7))
			for n, sample := range h.Pressure {
				Expect(sample.Step).To(Equal(n))
				Expect(h.Temperature[n].Step).To(Equal(n))
			}
		})

		It("samples the probe cell of the new state", func() {
			ctrl.Start()
			Expect(ctrl.Tick()).To(Succeed())

			snap := ctrl.Snapshot()
			h := ctrl.History()
			Expect(h.Pressure[0].Value).To(Equal(snap.State.Pressure.At(5, 5)))
			Expect(h.Temperature[0].Value).To(Equal(snap.State.Temperature.At(5, 5)))
		})

		It("hands out copies", func() {
			ctrl.Start()
			Expect(ctrl.Tick()).To(Succeed())

			h := ctrl.History()
			h.Pressure[0].Value = -1
			Expect(ctrl.History().Pressure[0].Value).NotTo(Equal(-1.0))

			snap := ctrl.Snapshot()
			snap.State.Pressure.Fill(0)
			Expect(ctrl.Snapshot().State.Pressure.At(3, 3)).NotTo(BeZero())
		})
	})

	Describe("Reset", func() {
		It("stops the run and restores the initial state", func() {
			x0 := ctrl.Snapshot().State

			ctrl.Start()
			Expect(ctrl.Tick()).To(Succeed())
			Expect(ctrl.Tick()).To(Succeed())
			Expect(ctrl.Reset()).To(Succeed())

			Expect(ctrl.Phase()).To(Equal(sim.Idle))
			Expect(ctrl.Steps()).To(BeZero())
			Expect(ctrl.Elapsed()).To(BeZero())
			Expect(ctrl.History().Len()).To(BeZero())
			Expect(ctrl.Snapshot().State.Equal(x0)).To(BeTrue())
		})

		It("is idempotent", func() {
			ctrl.Start()
			Expect(ctrl.Tick()).To(Succeed())

			Expect(ctrl.Reset()).To(Succeed())
			once := ctrl.Snapshot().State
			Expect(ctrl.Reset()).To(Succeed())

			Expect(ctrl.Snapshot().State.Equal(once)).To(BeTrue())
			Expect(ctrl.History().Len()).To(BeZero())
		})

		It("resets registered metrics", func() {
			m := metrics.NewMaxWind()
			ctrl.AddMetric(m)
			ctrl.Start()
			Expect(ctrl.Tick()).To(Succeed())
			Expect(m.Value()).To(BeNumerically(">", 0))

			Expect(ctrl.Reset()).To(Succeed())
			Expect(m.Value()).To(BeZero())
		})

		It("measures mass drift from the initial state", func() {
			m := metrics.NewMassDrift()
			ctrl.AddMetric(m)
			initialMass := metrics.InteriorSum(ctrl.Snapshot().State.Pressure)

			ctrl.Start()
			Expect(ctrl.Tick()).To(Succeed())

			mass := metrics.InteriorSum(ctrl.Snapshot().State.Pressure)
			Expect(mass).NotTo(Equal(initialMass))
			Expect(m.Value()).To(BeNumerically("~", math.Abs(mass-initialMass)/math.Abs(initialMass), 1e-18))

			Expect(ctrl.Reset()).To(Succeed())
			Expect(m.Value()).To(BeZero())
			ctrl.Start()
			Expect(ctrl.Tick()).To(Succeed())
			Expect(m.Value()).To(BeNumerically(">", 0))
		})
	})

	Describe("steady state", func() {
		It("leaves a calm uniform atmosphere unchanged", func() {
			c := newController(sim.Options{Initializer: initial.NewUniform(), TimeStep: 60})
			x0 := c.Snapshot().State

			c.Start()
			Expect(c.Tick()).To(Succeed())

			Expect(c.Snapshot().State.Equal(x0)).To(BeTrue())
		})
	})

	Describe("numerical faults", func() {
		It("pauses, keeps the last good state and records the fault", func() {
			c := newController(sim.Options{Initializer: pressureHole{}, TimeStep: 1})
			x0 := c.Snapshot().State

			c.Start()
			err := c.Tick()

			Expect(err).To(MatchError(dynamo.ErrNonFinite))
			var se *dynamo.SimError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Step).To(BeZero())

			Expect(c.Phase()).To(Equal(sim.Paused))
			Expect(c.Fault()).To(MatchError(dynamo.ErrNonFinite))
			Expect(c.Steps()).To(BeZero())
			Expect(c.History().Len()).To(BeZero())
			Expect(c.Snapshot().State.Equal(x0)).To(BeTrue())
		})

		It("lets non-finite values through when validation is off", func() {
			c := newController(sim.Options{Initializer: pressureHole{}, TimeStep: 1, AllowNonFinite: true})

			c.Start()
			Expect(c.Tick()).To(Succeed())
			Expect(c.Steps()).To(Equal(1))
			Expect(c.Snapshot().State.IsValid()).To(BeFalse())
		})

		It("clears the fault on reset", func() {
			c := newController(sim.Options{Initializer: pressureHole{}, TimeStep: 1})
			c.Start()
			Expect(c.Tick()).NotTo(Succeed())

			Expect(c.Reset()).To(Succeed())
			Expect(c.Fault()).NotTo(HaveOccurred())
		})
	})

	Describe("scheduling", func() {
		It("steps once per frame while running", func() {
			detach := ctrl.Attach(sched)
			defer detach()

			Expect(sched.Advance(3)).To(Equal(3))
			Expect(ctrl.Steps()).To(BeZero())

			ctrl.Start()
			Expect(sched.Advance(5)).To(Equal(5))
			Expect(ctrl.Steps()).To(Equal(5))

			ctrl.Stop()
			sched.Advance(4)
			Expect(ctrl.Steps()).To(Equal(5))
			Expect(ctrl.History().Len()).To(Equal(5))
		})

		It("stops requesting frames once detached", func() {
			detach := ctrl.Attach(sched)
			ctrl.Start()
			sched.Advance(2)

			detach()
			sched.Advance(1)
			Expect(sched.Pending()).To(BeZero())
			Expect(sched.Advance(10)).To(BeZero())
			Expect(ctrl.Steps()).To(Equal(2))
		})

		It("applies a reset issued between frames before the next step", func() {
			ctrl.Attach(sched)
			ctrl.Start()
			sched.Advance(3)

			Expect(ctrl.Reset()).To(Succeed())
			sched.Advance(3)
			Expect(ctrl.Steps()).To(BeZero())
			Expect(ctrl.History().Len()).To(BeZero())
		})
	})

	Describe("observers", func() {
		It("receives every step in order", func() {
			var seen []int
			ctrl.AddObserver(sim.ObserverFunc(func(step int, snap sim.Snapshot) {
				Expect(snap.Step).To(Equal(step + 1))
				seen = append(seen, step)
			}))

			Expect(ctrl.Run(context.Background(), 4)).To(Succeed())
			Expect(seen).To(Equal([]int{0, 1, 2, 3}))
			Expect(ctrl.Phase()).To(Equal(sim.Paused))
		})
	})

	Describe("Run", func() {
		It("returns when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Expect(ctrl.Run(ctx, 10)).To(MatchError(context.Canceled))
			Expect(ctrl.Steps()).To(BeZero())
		})

		It("stops on the first fault", func() {
			c := newController(sim.Options{Initializer: pressureHole{}, TimeStep: 1})
			Expect(c.Run(context.Background(), 10)).To(MatchError(dynamo.ErrNonFinite))
		})
	})
})
