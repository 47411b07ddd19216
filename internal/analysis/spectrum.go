package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/sim"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Peak is one bin of a power spectrum.
type Peak struct {
	Frequency float64 // Hz
	Period    float64 // s
	Power     float64
}

// Values extracts the sample values of a history series.
func Values(samples []sim.HistorySample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}

// PowerSpectrum returns |X_k|^2 for k = 0..n/2 of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	seq := make([]float64, len(data))
	copy(seq, data)
	floats.AddConst(-stat.Mean(seq, nil), seq)

	coeff := fourier.NewFFT(len(seq)).Coefficients(nil, seq)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		a := cmplx.Abs(c)
		ps[i] = a * a
	}
	return ps
}

// Spectrum returns every non-DC bin of data sampled every dt seconds.
func Spectrum(data []float64, dt float64) []Peak {
	if len(data) < 4 || dt <= 0 {
		return nil
	}
	ps := PowerSpectrum(data)
	fft := fourier.NewFFT(len(data))

	peaks := make([]Peak, 0, len(ps)-1)
	for k := 1; k < len(ps); k++ {
		f := fft.Freq(k) / dt
		peaks = append(peaks, Peak{Frequency: f, Period: 1 / f, Power: ps[k]})
	}
	return peaks
}

// DominantPeak returns the strongest non-DC bin. ok is false when the series
// is too short or carries no variance.
func DominantPeak(data []float64, dt float64) (pk Peak, ok bool) {
	peaks := Spectrum(data, dt)
	if len(peaks) == 0 {
		return Peak{}, false
	}
	best := 0
	for i, p := range peaks {
		if p.Power > peaks[best].Power {
			best = i
		}
	}
	if peaks[best].Power == 0 || math.IsNaN(peaks[best].Power) {
		return Peak{}, false
	}
	return peaks[best], true
}
