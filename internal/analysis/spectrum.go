package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Spectrum is the one-sided amplitude spectrum of an evenly sampled series
// with its mean removed.
type Spectrum struct {
	Freqs      []float64 // Hz
	Amplitudes []float64 // same unit as the series
}

// NewSpectrum transforms series sampled every dt seconds. Series shorter than
// two samples yield an empty spectrum.
func NewSpectrum(series []float64, dt float64) Spectrum {
	n := len(series)
	if n < 2 || dt <= 0 {
		return Spectrum{}
	}

	mean := stat.Mean(series, nil)
	x := make([]float64, n)
	for i, v := range series {
		x[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, x)

	s := Spectrum{
		Freqs:      make([]float64, len(coeff)),
		Amplitudes: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		s.Freqs[i] = fft.Freq(i) / dt
		amp := cmplx.Abs(c) / float64(n)
		// DC and Nyquist bins have no mirrored half.
		if i != 0 && !(n%2 == 0 && i == n/2) {
			amp *= 2
		}
		s.Amplitudes[i] = amp
	}
	return s
}

// Peak returns the index of the strongest non-DC component, or -1.
func (s Spectrum) Peak() int {
	best := -1
	for i := 1; i < len(s.Amplitudes); i++ {
		if best < 0 || s.Amplitudes[i] > s.Amplitudes[best] {
			best = i
		}
	}
	return best
}

type Oscillation struct {
	Mean      float64
	Period    float64 // s, 0 when the series is flat
	Amplitude float64
}

// flatAmplitude is the amplitude below which a series counts as settled.
const flatAmplitude = 1e-9

// DominantOscillation reports the strongest periodic component of series.
func DominantOscillation(series []float64, dt float64) Oscillation {
	if len(series) == 0 {
		return Oscillation{}
	}
	osc := Oscillation{Mean: stat.Mean(series, nil)}

	s := NewSpectrum(series, dt)
	i := s.Peak()
	if i < 0 || s.Amplitudes[i] < flatAmplitude || s.Freqs[i] == 0 {
		return osc
	}
	osc.Period = 1 / s.Freqs[i]
	osc.Amplitude = s.Amplitudes[i]
	return osc
}

// SteadyState returns the last fraction of series. The result aliases series.
func SteadyState(series []float64, fraction float64) []float64 {
	if fraction <= 0 {
		return nil
	}
	if fraction >= 1 {
		return series
	}
	start := len(series) - int(float64(len(series))*fraction)
	return series[start:]
}
