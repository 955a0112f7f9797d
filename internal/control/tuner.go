package control

import "math"

const (
	tuneAmbient    = 20.0 // °C
	tuneLow        = 85.0 // °C
	tuneHigh       = 95.0 // °C
	tuneConvection = 5.0  // W/m²K
	tuneEmissivity = 0.9
	tuneDeadTime   = 10.0 // s

	stefanBoltzmann = 5.67e-8
	kelvinOffset    = 273.0
)

// Plant describes the bed as seen by the tuner.
type Plant struct {
	Width, Height float64 // m
	ThermalMass   float64 // J/K
}

// Tuning holds the estimated open-loop plant parameters and the gains
// derived from them.
type Tuning struct {
	Gains
	K  float64 // steady-state gain, K/W
	T1 float64 // time constant, s
	L  float64 // effective dead time, s
	Ti float64 // integral time, s
	Td float64 // derivative time, s
}

// EmbeddedProbeFactor returns the lag penalty applied when the control probe
// sits inside the bed rather than on the heater.
func EmbeddedProbeFactor(embeddedProbe bool) float64 {
	if embeddedProbe {
		return 5
	}
	return 1
}

// Tune estimates the open-loop response of the plant at two operating points
// from its convective and radiative losses and maps it to PID gains.
func Tune(p Plant, embeddedProbe bool) Tuning {
	f := EmbeddedProbeFactor(embeddedProbe)

	area := 2 * p.Width * p.Height
	q0 := steadyLoss(area, tuneLow)
	q1 := steadyLoss(area, tuneHigh)

	k := (tuneHigh - tuneLow) / (q1 - q0) / f
	t1 := 1.5 * (2.0 / 3.0 * p.ThermalMass * (tuneHigh - tuneAmbient)) / q1
	l := tuneDeadTime * f

	ti := l * (3.33*t1 + l) / (t1 + 0.1*l)
	td := l * t1 / (3.33*t1 + l)

	kp := 0.9 / k * t1 / l
	return Tuning{
		Gains: Gains{Kp: kp, Ki: kp / ti, Kd: kp * td},
		K:     k,
		T1:    t1,
		L:     l,
		Ti:    ti,
		Td:    td,
	}
}

// NewTunedPID tunes the plant and returns a PID with the derived gains.
func NewTunedPID(p Plant, embeddedProbe bool, opts ...PIDOption) *PID {
	t := Tune(p, embeddedProbe)
	return NewPID(t.Kp, t.Ki, t.Kd, opts...)
}

func steadyLoss(area, temp float64) float64 {
	convection := tuneConvection * area * (temp - tuneAmbient)
	radiation := tuneEmissivity * stefanBoltzmann * area *
		(math.Pow(temp+kelvinOffset, 4) - math.Pow(tuneAmbient+kelvinOffset, 4))
	return convection + radiation
}
