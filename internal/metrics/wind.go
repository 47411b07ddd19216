package metrics

import (
	"math"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// MaxWind is the peak wind speed seen over the run.
type MaxWind struct {
	name string
	peak float64
}

func NewMaxWind() *MaxWind {
	return &MaxWind{name: "max_wind"}
}

func (w *MaxWind) Name() string { return w.name }

func (w *MaxWind) Observe(s *dynamo.State, step int) {
	w.peak = math.Max(w.peak, Speed(s))
}

func (w *MaxWind) Value() float64 { return w.peak }

func (w *MaxWind) Reset() { w.peak = 0 }

// Speed returns the largest sqrt(u²+v²) over the grid.
func Speed(s *dynamo.State) float64 {
	u, v := s.WindU.Data(), s.WindV.Data()
	peak := 0.0
	for k := range u {
		peak = math.Max(peak, math.Hypot(u[k], v[k]))
	}
	return peak
}

// MeanTemperature is the grid-mean temperature of the latest observed step.
type MeanTemperature struct {
	name  string
	value float64
}

func NewMeanTemperature() *MeanTemperature {
	return &MeanTemperature{name: "mean_temperature"}
}

func (m *MeanTemperature) Name() string { return m.name }

func (m *MeanTemperature) Observe(s *dynamo.State, step int) {
	data := s.Temperature.Data()
	m.value = floats.Sum(data) / float64(len(data))
}

func (m *MeanTemperature) Value() float64 { return m.value }

func (m *MeanTemperature) Reset() { m.value = 0 }
