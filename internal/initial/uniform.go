package initial

import "github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"

// Uniform is a calm atmosphere: constant pressure and temperature, no wind.
// It is a steady state of the tendency equations.
type Uniform struct {
	Pressure    float64
	Temperature float64
}

func NewUniform() *Uniform {
	return &Uniform{Pressure: 100000, Temperature: 288}
}

func (u *Uniform) Initialize(p dynamo.Params) (*dynamo.State, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := dynamo.NewStateFor(p)
	s.Pressure.Fill(u.Pressure)
	s.Temperature.Fill(u.Temperature)
	return s, nil
}

// Gradient is a resting atmosphere with pressure rising linearly along x,
// pressure[i][j] = Base + PerCell·i. Temperature and wind are zero.
type Gradient struct {
	Base    float64
	PerCell float64
}

func NewGradient() *Gradient {
	return &Gradient{Base: 100000, PerCell: 100}
}

func (g *Gradient) Initialize(p dynamo.Params) (*dynamo.State, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := dynamo.NewStateFor(p)
	s.Pressure.Apply(func(i, j int) float64 { return g.Base + g.PerCell*float64(i) })
	return s, nil
}
