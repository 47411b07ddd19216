package analysis

import (
	"math"
	"testing"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/sim"
)

func sine(n int, period float64) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = 101325 + 50*math.Sin(2*math.Pi*float64(i)/period)
	}
	return data
}

func TestDominantPeak(t *testing.T) {
	pk, ok := DominantPeak(sine(100, 10), 60)
	if !ok {
		t.Fatal("expected a peak")
	}
	if math.Abs(pk.Period-600) > 1e-9 {
		t.Errorf("period = %g, want 600", pk.Period)
	}
	if math.Abs(pk.Frequency-1.0/600) > 1e-12 {
		t.Errorf("frequency = %g, want %g", pk.Frequency, 1.0/600)
	}
}

func TestDominantPeakFlat(t *testing.T) {
	flat := make([]float64, 32)
	for i := range flat {
		flat[i] = 288
	}
	if _, ok := DominantPeak(flat, 60); ok {
		t.Error("constant series should have no peak")
	}
	if _, ok := DominantPeak([]float64{1, 2}, 60); ok {
		t.Error("too-short series should have no peak")
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	ps := PowerSpectrum(sine(64, 8))
	if len(ps) != 33 {
		t.Fatalf("len = %d, want 33", len(ps))
	}
	if ps[0] > 1e-12 {
		t.Errorf("DC power = %g, want 0", ps[0])
	}
}

func TestValues(t *testing.T) {
	got := Values([]sim.HistorySample{{Step: 0, Value: 1}, {Step: 1, Value: 2}})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Values = %v", got)
	}
}
