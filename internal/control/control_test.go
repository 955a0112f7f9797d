package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 0.25 m square, 3 mm aluminium plate.
var testPlant = Plant{Width: 0.25, Height: 0.25, ThermalMass: 0.9 * 2710000 * 0.25 * 0.25 * 0.003}

func TestTuneHeaterProbe(t *testing.T) {
	tn := Tune(testPlant, false)

	assert.InDelta(t, 0.541809, tn.K, 1e-5)
	assert.InDelta(t, 293.5319, tn.T1, 1e-3)
	assert.Equal(t, 10.0, tn.L)
	assert.InDelta(t, 33.52646, tn.Ti, 1e-4)
	assert.InDelta(t, 2.972592, tn.Td, 1e-5)

	assert.InDelta(t, 48.75864, tn.Kp, 1e-4)
	assert.InDelta(t, 1.454333, tn.Ki, 1e-5)
	assert.InDelta(t, 144.9395, tn.Kd, 1e-3)
}

func TestTuneEmbeddedProbe(t *testing.T) {
	heater := Tune(testPlant, false)
	embedded := Tune(testPlant, true)

	// K shrinks and L grows by the same factor, so Kp is unchanged.
	assert.InDelta(t, heater.Kp, embedded.Kp, 1e-9)
	assert.Less(t, embedded.Ki, heater.Ki)
	assert.Greater(t, embedded.Kd, heater.Kd)
	assert.Equal(t, 50.0, embedded.L)
	assert.InDelta(t, 0.2833393, embedded.Ki, 1e-6)
}

func TestNewTunedPID(t *testing.T) {
	tn := Tune(testPlant, false)
	p := NewTunedPID(testPlant, false, WithSmoothTau(5))
	assert.Equal(t, tn.Gains, p.Gains())
	assert.Equal(t, 5.0, p.SmoothTau)
	assert.Equal(t, DefaultIntegralTau, p.IntegralTau)
}

func TestPIDSmoothedOutput(t *testing.T) {
	p := NewPID(2, 0, 0)

	// A pure proportional step is low-pass filtered.
	out := p.Update(10, 0, 1)
	want := (1 - math.Exp(-1.0/DefaultSmoothTau)) * 20
	assert.InDelta(t, want, out, 1e-12)

	for i := 0; i < 200; i++ {
		out = p.Update(10, 0, 1)
	}
	assert.InDelta(t, 20, out, 1e-6)
}

func TestPIDIntegralClamp(t *testing.T) {
	p := NewPID(0, 1, 0)
	for i := 0; i < 1000; i++ {
		p.Update(100, 0, 1)
	}
	assert.Equal(t, DefaultIntegralLimit, p.Integral())

	p = NewPID(0, 1, 0)
	for i := 0; i < 1000; i++ {
		p.Update(0, 100, 1)
	}
	assert.Equal(t, -DefaultIntegralLimit, p.Integral())
}

func TestPIDIntegralDecays(t *testing.T) {
	p := NewPID(0, 1, 0, WithIntegralLimit(1e9))
	p.Update(1, 0, 10)
	require.InDelta(t, 10, p.Integral(), 1e-12)

	p.Update(0, 0, 500)
	assert.InDelta(t, 10*math.Exp(-1), p.Integral(), 1e-9)
}

func TestPIDDerivativeOnError(t *testing.T) {
	p := NewPID(0, 0, 1, WithSmoothTau(1e-9))
	p.Update(5, 0, 1)
	// error unchanged, derivative zero
	assert.InDelta(t, 0, p.Update(5, 0, 1), 1e-9)
	// error drops by 2 over 1 s
	assert.InDelta(t, -2, p.Update(5, 2, 1), 1e-9)
}

func TestPIDReset(t *testing.T) {
	p := NewPID(1, 1, 1)
	p.Update(10, 0, 1)
	p.Reset()
	assert.Zero(t, p.Integral())
	assert.Zero(t, p.smoothed)
	assert.Zero(t, p.prevErr)
}

func TestPIDParams(t *testing.T) {
	p := NewPID(1, 2, 3)
	params := p.GetParams()
	assert.Equal(t, map[string]float64{
		"Kp": 1, "Ki": 2, "Kd": 3,
		"IntegralTau": DefaultIntegralTau, "SmoothTau": DefaultSmoothTau,
	}, params)

	require.NoError(t, p.SetParam("Kd", 7))
	assert.Equal(t, 7.0, p.Kd)
	assert.Error(t, p.SetParam("gain", 1))
}

func TestBangBangHysteresis(t *testing.T) {
	b := NewBangBang(2, 100)

	assert.Equal(t, 100.0, b.Update(60, 20, 1), "cold bed heats")
	assert.Equal(t, 100.0, b.Update(60, 61, 1), "keeps heating inside the band")
	assert.Equal(t, 0.0, b.Update(60, 62, 1), "switches off at the upper edge")
	assert.Equal(t, 0.0, b.Update(60, 59, 1), "stays off inside the band")
	assert.Equal(t, 100.0, b.Update(60, 58, 1), "switches on at the lower edge")
	assert.True(t, b.Heating())
}

func TestManual(t *testing.T) {
	m := NewManual(25)
	assert.Equal(t, 25.0, m.Update(100, 0, 1))
	m.SetOutput(0)
	assert.Equal(t, 0.0, m.Update(100, 0, 1))
}
