package control

import (
	"fmt"
	"math"
)

const (
	DefaultIntegralTau   = 500.0 // s
	DefaultSmoothTau     = 10.0  // s
	DefaultIntegralLimit = 100.0
)

// Gains are the PID coefficients.
type Gains struct {
	Kp float64 `json:"kp" yaml:"kp"`
	Ki float64 `json:"ki" yaml:"ki"`
	Kd float64 `json:"kd" yaml:"kd"`
}

// PID is a PID controller whose integral decays exponentially with
// IntegralTau and whose output passes through a first-order low-pass filter
// with SmoothTau. The decaying integral and the smoothing trade response speed
// for stability when the probe lags the heater.
type PID struct {
	Kp            float64
	Ki            float64
	Kd            float64
	IntegralTau   float64
	SmoothTau     float64
	IntegralLimit float64

	integral float64
	prevErr  float64
	smoothed float64
}

type PIDOption func(*PID)

func WithIntegralTau(tau float64) PIDOption { return func(p *PID) { p.IntegralTau = tau } }
func WithSmoothTau(tau float64) PIDOption   { return func(p *PID) { p.SmoothTau = tau } }
func WithIntegralLimit(l float64) PIDOption { return func(p *PID) { p.IntegralLimit = l } }

func NewPID(kp, ki, kd float64, opts ...PIDOption) *PID {
	p := &PID{
		Kp:            kp,
		Ki:            ki,
		Kd:            kd,
		IntegralTau:   DefaultIntegralTau,
		SmoothTau:     DefaultSmoothTau,
		IntegralLimit: DefaultIntegralLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Update advances the controller by dt seconds and returns the smoothed output.
func (p *PID) Update(setpoint, measured, dt float64) float64 {
	err := setpoint - measured

	decay := math.Exp(-dt / p.IntegralTau)
	p.integral = decay*p.integral + err*dt
	p.integral = math.Min(math.Max(p.integral, -p.IntegralLimit), p.IntegralLimit)

	derivative := (err - p.prevErr) / dt
	p.prevErr = err

	raw := p.Kp*err + p.Ki*p.integral + p.Kd*derivative

	blend := math.Exp(-dt / p.SmoothTau)
	p.smoothed = blend*p.smoothed + (1-blend)*raw

	return p.smoothed
}

// Reset clears integral, derivative and smoothing state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.smoothed = 0
}

func (p *PID) Gains() Gains { return Gains{Kp: p.Kp, Ki: p.Ki, Kd: p.Kd} }

// Integral returns the current integral accumulator.
func (p *PID) Integral() float64 { return p.integral }

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":          p.Kp,
		"Ki":          p.Ki,
		"Kd":          p.Kd,
		"IntegralTau": p.IntegralTau,
		"SmoothTau":   p.SmoothTau,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "IntegralTau":
		p.IntegralTau = value
	case "SmoothTau":
		p.SmoothTau = value
	default:
		return fmt.Errorf("control: unknown pid parameter %q", name)
	}
	return nil
}
