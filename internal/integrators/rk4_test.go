package integrators

import (
	"math"
	"testing"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/boundary"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/physics"
)

// oscillator makes every cell a harmonic oscillator: U' = V, V' = -U.
type oscillator struct{}

func (oscillator) Derive(s *dynamo.State) *dynamo.State {
	nx, ny := s.Dims()
	k := dynamo.NewState(nx, ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			k.WindU.Set(i, j, s.WindV.At(i, j))
			k.WindV.Set(i, j, -s.WindU.At(i, j))
		}
	}
	return k
}

func oscillatorError(integ dynamo.Integrator, dt, duration float64) float64 {
	x := dynamo.NewState(2, 2)
	x.WindU.Fill(1)

	steps := int(math.Round(duration / dt))
	for i := 0; i < steps; i++ {
		x = integ.Step(oscillator{}, x, dt)
	}

	return math.Hypot(x.WindU.At(1, 1)-math.Cos(duration), x.WindV.At(1, 1)+math.Sin(duration))
}

func TestRK4Accuracy(t *testing.T) {
	if err := oscillatorError(NewRK4(), 0.01, 1.0); err > 1e-9 {
		t.Errorf("error too large: %g", err)
	}
}

func TestRK4FourthOrderConvergence(t *testing.T) {
	dts := []float64{0.2, 0.1, 0.05}
	errs := make([]float64, len(dts))
	for i, dt := range dts {
		errs[i] = oscillatorError(NewRK4(), dt, 2.0)
	}

	for i := 1; i < len(errs); i++ {
		ratio := errs[i-1] / errs[i]
		if ratio < 14 || ratio > 18 {
			t.Errorf("halving dt %g -> %g reduced error by %.2f, want ~16", dts[i-1], dts[i], ratio)
		}
	}
}

func TestEulerFirstOrderConvergence(t *testing.T) {
	coarse := oscillatorError(NewEuler(), 0.01, 1.0)
	fine := oscillatorError(NewEuler(), 0.005, 1.0)

	ratio := coarse / fine
	if ratio < 1.8 || ratio > 2.2 {
		t.Errorf("euler error ratio %.2f, want ~2", ratio)
	}
}

func smoothAtmosphere(p dynamo.Params) *dynamo.State {
	s := dynamo.NewStateFor(p)
	s.Pressure.Apply(func(i, j int) float64 {
		return 10 + math.Sin(2*math.Pi*float64(i)/float64(p.NX))*math.Cos(2*math.Pi*float64(j)/float64(p.NY))
	})
	s.Temperature.Apply(func(i, j int) float64 { return 5 + 0.1*float64(i) })
	s.WindU.Apply(func(i, j int) float64 { return 0.5 * math.Sin(2*math.Pi*float64(j)/float64(p.NY)) })
	s.WindV.Apply(func(i, j int) float64 { return 0.5 * math.Cos(2*math.Pi*float64(i)/float64(p.NX)) })
	return s
}

func integrate(integ dynamo.Integrator, sys dynamo.System, x *dynamo.State, dt float64, steps int) *dynamo.State {
	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, dt)
	}
	return x
}

func maxDiff(a, b *dynamo.State) float64 {
	worst := 0.0
	fa, fb := a.Fields(), b.Fields()
	for n := range fa {
		da, db := fa[n].Data(), fb[n].Data()
		for k := range da {
			worst = math.Max(worst, math.Abs(da[k]-db[k]))
		}
	}
	return worst
}

func TestRK4ConvergesOnAtmosphere(t *testing.T) {
	p := dynamo.Params{NX: 16, NY: 16, DX: 1, DY: 1}
	sys := physics.NewAtmosphere(p)
	x0 := smoothAtmosphere(p)
	const duration = 0.8

	reference := integrate(NewRK4(), sys, x0, duration/256, 256)

	steps := []int{4, 8, 16}
	errs := make([]float64, len(steps))
	for i, n := range steps {
		errs[i] = maxDiff(integrate(NewRK4(), sys, x0, duration/float64(n), n), reference)
	}

	for i := 1; i < len(errs); i++ {
		ratio := errs[i-1] / errs[i]
		if ratio < 14 || ratio > 18 {
			t.Errorf("%d -> %d steps reduced error by %.2f (%g -> %g), want ~16", steps[i-1], steps[i], ratio, errs[i-1], errs[i])
		}
	}
}

func TestRK4PreservesShape(t *testing.T) {
	for _, p := range []dynamo.Params{
		{NX: 3, NY: 3, DX: 1, DY: 1},
		{NX: 7, NY: 12, DX: 500, DY: 250},
		{NX: 20, NY: 5, DX: 10000, DY: 10000},
	} {
		out := NewRK4().Step(physics.NewAtmosphere(p), smoothAtmosphere(p), 0.1)
		if err := out.CheckShape(p); err != nil {
			t.Errorf("grid %dx%d: %v", p.NX, p.NY, err)
		}
	}
}

func TestRK4DoesNotMutateInput(t *testing.T) {
	p := dynamo.Params{NX: 8, NY: 8, DX: 1, DY: 1}
	x := smoothAtmosphere(p)
	before := x.Clone()

	NewRK4().Step(physics.NewAtmosphere(p), x, 0.1)

	if !x.Equal(before) {
		t.Error("Step modified its input state")
	}
}

func TestRK4SteadyState(t *testing.T) {
	p := dynamo.Params{NX: 10, NY: 10, DX: 10000, DY: 10000}
	x := dynamo.NewStateFor(p)
	x.Pressure.Fill(100000)
	x.Temperature.Fill(288)

	out := NewRK4().Step(physics.NewAtmosphere(p), x, 60)
	boundary.NewPeriodic(boundary.Ghost).Apply(out)

	if !out.Equal(x) {
		t.Error("uniform calm state should be left exactly unchanged")
	}
}

func TestRK4PressureGradientDrivesZonalWind(t *testing.T) {
	p := dynamo.Params{NX: 10, NY: 10, DX: 10000, DY: 10000}
	x := dynamo.NewStateFor(p)
	x.Pressure.Apply(func(i, j int) float64 { return 100000 + 100*float64(i) })

	out := NewRK4().Step(physics.NewAtmosphere(p), x, 1)
	boundary.NewPeriodic(boundary.Ghost).Apply(out)

	for i := 1; i < p.NX-1; i++ {
		for j := 1; j < p.NY-1; j++ {
			if out.WindU.At(i, j) == 0 {
				t.Errorf("windU at (%d,%d) should be non-zero", i, j)
			}
			if v := out.WindV.At(i, j); math.Abs(v) > 1e-15 {
				t.Errorf("windV at (%d,%d) = %g, want 0", i, j, v)
			}
		}
	}
}

func TestRK4StageBoundary(t *testing.T) {
	p := dynamo.Params{NX: 8, NY: 8, DX: 1, DY: 1}
	sys := physics.NewAtmosphere(p)
	x := smoothAtmosphere(p)

	stale := NewRK4().Step(sys, x, 0.1)
	corrected := NewRK4WithStageBoundary(boundary.NewPeriodic(boundary.Ghost)).Step(sys, x, 0.1)

	if err := corrected.CheckShape(p); err != nil {
		t.Fatal(err)
	}
	if stale.Equal(corrected) {
		t.Error("per-stage boundary correction should change the interior result")
	}
}

func TestRK4ReusesScratchAcrossShapes(t *testing.T) {
	integ := NewRK4()
	small := dynamo.Params{NX: 4, NY: 4, DX: 1, DY: 1}
	large := dynamo.Params{NX: 9, NY: 6, DX: 1, DY: 1}

	integ.Step(physics.NewAtmosphere(small), smoothAtmosphere(small), 0.1)
	out := integ.Step(physics.NewAtmosphere(large), smoothAtmosphere(large), 0.1)

	if err := out.CheckShape(large); err != nil {
		t.Errorf("scratch not resized: %v", err)
	}
}
