package physics

import "github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"

// Constants are the physical constants of dry air. They are held fixed for a
// run; the simplified tendencies below do not couple through them yet.
type Constants struct {
	R  float64 // gas constant for dry air, J/kg/K
	Cp float64 // specific heat at constant pressure, J/kg/K
	G  float64 // gravitational acceleration, m/s^2
}

func DryAir() Constants {
	return Constants{R: 287.05, Cp: 1004.0, G: 9.81}
}

// Atmosphere is a shallow advection/divergence system on a 2-D grid:
//
//	dP/dt = -(∂U/∂x + ∂V/∂y)
//	dT/dt = -U ∂T/∂x - V ∂T/∂y + Q
//	dU/dt = -(U ∂U/∂x + V ∂U/∂y) - (1/P) ∂P/∂x
//	dV/dt = -(U ∂V/∂x + V ∂V/∂y) - (1/P) ∂P/∂y
//
// Derivatives are 2nd-order central differences, x along i and y along j.
// There is no Coriolis, gravity or hydrostatic coupling. Tendencies are only
// computed on the interior; edge rows and columns stay zero. A cell with zero
// pressure produces ±Inf or NaN in the wind tendencies.
type Atmosphere struct {
	Grid  dynamo.Params
	Const Constants
}

func NewAtmosphere(grid dynamo.Params) *Atmosphere {
	return &Atmosphere{Grid: grid, Const: DryAir()}
}

func (a *Atmosphere) Derive(s *dynamo.State) *dynamo.State {
	nx, ny := s.Dims()
	out := dynamo.NewState(nx, ny)
	if nx < 3 || ny < 3 {
		return out
	}

	p, t, u, v := s.Pressure, s.Temperature, s.WindU, s.WindV
	inv2dx, inv2dy := 1/(2*a.Grid.DX), 1/(2*a.Grid.DY)

	for i := 1; i < nx-1; i++ {
		for j := 1; j < ny-1; j++ {
			uc, vc, pc := u.At(i, j), v.At(i, j), p.At(i, j)

			dPdx := (p.At(i+1, j) - p.At(i-1, j)) * inv2dx
			dPdy := (p.At(i, j+1) - p.At(i, j-1)) * inv2dy
			dUdx := (u.At(i+1, j) - u.At(i-1, j)) * inv2dx
			dUdy := (u.At(i, j+1) - u.At(i, j-1)) * inv2dy
			dVdx := (v.At(i+1, j) - v.At(i-1, j)) * inv2dx
			dVdy := (v.At(i, j+1) - v.At(i, j-1)) * inv2dy
			dTdx := (t.At(i+1, j) - t.At(i-1, j)) * inv2dx
			dTdy := (t.At(i, j+1) - t.At(i, j-1)) * inv2dy

			out.Pressure.Set(i, j, -(dUdx + dVdy))
			out.Temperature.Set(i, j, -uc*dTdx-vc*dTdy+a.diabatic(i, j))
			out.WindU.Set(i, j, -(uc*dUdx+vc*dUdy)-(1/pc)*dPdx)
			out.WindV.Set(i, j, -(uc*dVdx+vc*dVdy)-(1/pc)*dPdy)
		}
	}
	return out
}

// diabatic is the heating source term. No sources are modelled.
func (a *Atmosphere) diabatic(i, j int) float64 { return 0 }

// GetParams reports the fixed constants and grid spacing.
func (a *Atmosphere) GetParams() map[string]float64 {
	return map[string]float64{
		"R":  a.Const.R,
		"Cp": a.Const.Cp,
		"g":  a.Const.G,
		"dx": a.Grid.DX,
		"dy": a.Grid.DY,
	}
}
