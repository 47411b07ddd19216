package integrators

import (
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// RK4 is the classical four-stage Runge-Kutta scheme applied element-wise
// to every field of the state.
//
// The intermediate stage states are not boundary corrected unless Stage is
// set, in which case Stage.Apply runs on each of them before the next
// tendency evaluation.
type RK4 struct {
	Stage dynamo.Enforcer

	scratch *dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

// NewRK4WithStageBoundary corrects the edges of every sub-stage with bc.
func NewRK4WithStageBoundary(bc dynamo.Enforcer) *RK4 {
	return &RK4{Stage: bc}
}

func (r *RK4) ensureScratch(nx, ny int) {
	if r.scratch != nil {
		if sx, sy := r.scratch.Dims(); sx == nx && sy == ny {
			return
		}
	}
	r.scratch = dynamo.NewState(nx, ny)
}

// stage writes x + h*k into the scratch state.
func (r *RK4) stage(x, k *dynamo.State, h float64) *dynamo.State {
	dst, xs, ks := r.scratch.Fields(), x.Fields(), k.Fields()
	for n := range dst {
		floats.AddScaledTo(dst[n].Data(), xs[n].Data(), h, ks[n].Data())
	}
	if r.Stage != nil {
		r.Stage.Apply(r.scratch)
	}
	return r.scratch
}

func (r *RK4) Step(sys dynamo.System, x *dynamo.State, dt float64) *dynamo.State {
	nx, ny := x.Dims()
	r.ensureScratch(nx, ny)

	k1 := sys.Derive(x)
	k2 := sys.Derive(r.stage(x, k1, dt*0.5))
	k3 := sys.Derive(r.stage(x, k2, dt*0.5))
	k4 := sys.Derive(r.stage(x, k3, dt))

	result := dynamo.NewState(nx, ny)
	dt6 := dt / 6.0
	out, xs := result.Fields(), x.Fields()
	a, b, c, d := k1.Fields(), k2.Fields(), k3.Fields(), k4.Fields()
	for n := range out {
		o, xv := out[n].Data(), xs[n].Data()
		av, bv, cv, dv := a[n].Data(), b[n].Data(), c[n].Data(), d[n].Data()
		for i := range o {
			o[i] = xv[i] + dt6*(av[i]+2*bv[i]+2*cv[i]+dv[i])
		}
	}

	return result
}
