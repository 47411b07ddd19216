package viz

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
)

// ColorScale maps a value range linearly onto an HSL hue range at full
// saturation and half lightness.
type ColorScale struct {
	Min, Max        float64
	HueLow, HueHigh float64
}

// High pressure and cold air show red, low pressure and warm air blue.
var scales = map[dynamo.Variable]ColorScale{
	dynamo.Pressure:    {Min: 95000, Max: 105000, HueLow: 240, HueHigh: 0},
	dynamo.Temperature: {Min: 250, Max: 320, HueLow: 0, HueHigh: 240},
	dynamo.WindU:       {Min: -20, Max: 20, HueLow: 240, HueHigh: 0},
	dynamo.WindV:       {Min: -20, Max: 20, HueLow: 240, HueHigh: 0},
}

func ScaleFor(v dynamo.Variable) ColorScale { return scales[v] }

// Normalize returns the position of x in [Min, Max], clamped to [0, 1].
// NaN maps to 0.
func (s ColorScale) Normalize(x float64) float64 {
	if math.IsNaN(x) || s.Max == s.Min {
		return 0
	}
	n := (x - s.Min) / (s.Max - s.Min)
	return math.Max(0, math.Min(1, n))
}

func (s ColorScale) Hue(x float64) float64 {
	return s.HueLow + s.Normalize(x)*(s.HueHigh-s.HueLow)
}

func (s ColorScale) Color(x float64) colorful.Color {
	return colorful.Hsl(s.Hue(x), 1, 0.5)
}
