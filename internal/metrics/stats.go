// Package metrics observes simulation states: per-step scalar metrics for
// the controller and summary statistics of single fields.
package metrics

import (
	"fmt"
	"math/rand"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of one field.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func (s Summary) String() string {
	return fmt.Sprintf("mean=%.4g std=%.4g min=%.4g max=%.4g", s.Mean, s.StdDev, s.Min, s.Max)
}

// Describe returns the population mean, standard deviation and range of f.
// Non-finite cells propagate into the result.
func Describe(f *dynamo.Field) Summary {
	data := f.Data()
	if len(data) == 0 {
		return Summary{}
	}
	mean, std := stat.PopMeanStdDev(data, nil)
	return Summary{Mean: mean, StdDev: std, Min: floats.Min(data), Max: floats.Max(data)}
}

// CellValue is one sampled grid cell.
type CellValue struct {
	Cell  dynamo.Cell
	Value float64
}

// Sample picks n cells uniformly at random, with replacement.
func Sample(f *dynamo.Field, n int, rng *rand.Rand) []CellValue {
	nx, ny := f.Dims()
	if n <= 0 || nx == 0 || ny == 0 {
		return nil
	}
	out := make([]CellValue, n)
	for k := range out {
		c := dynamo.Cell{I: rng.Intn(nx), J: rng.Intn(ny)}
		out[k] = CellValue{Cell: c, Value: f.At(c.I, c.J)}
	}
	return out
}
