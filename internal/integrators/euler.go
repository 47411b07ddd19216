package integrators

import (
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Euler is the explicit first-order forward step x + dt*f(x).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x *dynamo.State, dt float64) *dynamo.State {
	nx, ny := x.Dims()
	k := sys.Derive(x)
	result := dynamo.NewState(nx, ny)
	out, xs, ks := result.Fields(), x.Fields(), k.Fields()
	for n := range out {
		floats.AddScaledTo(out[n].Data(), xs[n].Data(), dt, ks[n].Data())
	}
	return result
}
