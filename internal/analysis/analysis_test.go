package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, mean, amp, period float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + amp*math.Sin(2*math.Pi*float64(i)/period)
	}
	return out
}

func TestDominantOscillation(t *testing.T) {
	osc := DominantOscillation(sine(400, 60, 0.5, 40), 1)

	assert.InDelta(t, 60, osc.Mean, 1e-9)
	assert.InDelta(t, 40, osc.Period, 1e-9)
	assert.InDelta(t, 0.5, osc.Amplitude, 1e-9)
}

func TestDominantOscillationSampleInterval(t *testing.T) {
	osc := DominantOscillation(sine(200, 0, 2, 20), 0.5)

	assert.InDelta(t, 10, osc.Period, 1e-9)
	assert.InDelta(t, 2, osc.Amplitude, 1e-9)
}

func TestDominantOscillationFlat(t *testing.T) {
	flat := make([]float64, 64)
	for i := range flat {
		flat[i] = 110
	}
	osc := DominantOscillation(flat, 1)

	assert.Equal(t, 110.0, osc.Mean)
	assert.Zero(t, osc.Period)
	assert.Zero(t, osc.Amplitude)

	assert.Equal(t, Oscillation{}, DominantOscillation(nil, 1))
}

func TestSpectrum(t *testing.T) {
	s := NewSpectrum(sine(128, 5, 1, 16), 1)

	require.Len(t, s.Freqs, 65)
	require.Len(t, s.Amplitudes, 65)
	assert.InDelta(t, 0, s.Amplitudes[0], 1e-9, "mean is removed")
	assert.InDelta(t, 0.5, s.Freqs[64], 1e-12, "nyquist")
	assert.Equal(t, 8, s.Peak())

	assert.Empty(t, NewSpectrum([]float64{1}, 1).Freqs)
	assert.Equal(t, -1, Spectrum{}.Peak())
}

func TestSteadyState(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	assert.Equal(t, []float64{6, 7, 8, 9, 10}, SteadyState(series, 0.5))
	assert.Equal(t, series, SteadyState(series, 1))
	assert.Nil(t, SteadyState(series, 0))
}

func TestUniformity(t *testing.T) {
	s := Uniformity([][]float64{{58, 60}, {60, 62}})

	assert.Equal(t, 58.0, s.Min)
	assert.Equal(t, 62.0, s.Max)
	assert.Equal(t, 4.0, s.Spread())
	assert.InDelta(t, 60, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(8.0/3), s.StdDev, 1e-12)

	assert.Equal(t, SurfaceStats{}, Uniformity(nil))
}
