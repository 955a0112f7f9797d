package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/bedsim/internal/sim"
	"github.com/san-kum/bedsim/internal/thermal"
)

// Overshoot is the largest probe excursion above the target in K.
type Overshoot struct {
	max float64
}

func NewOvershoot() *Overshoot { return &Overshoot{} }

func (o *Overshoot) Name() string { return "overshoot" }

func (o *Overshoot) Observe(s sim.Sample) {
	o.max = math.Max(o.max, s.Probe-s.Target)
}

func (o *Overshoot) Value() float64 { return o.max }
func (o *Overshoot) Reset()         { o.max = 0 }

// SettlingTime is the time after which the probe stays within Band of the
// target for the rest of the run. A run that has not settled reports -1.
type SettlingTime struct {
	Band    float64
	settled float64
	inside  bool
}

func NewSettlingTime(band float64) *SettlingTime {
	return &SettlingTime{Band: band}
}

func (st *SettlingTime) Name() string { return "settling_time" }

func (st *SettlingTime) Observe(s sim.Sample) {
	in := math.Abs(s.Probe-s.Target) <= st.Band
	if in && !st.inside {
		st.settled = s.Time
	}
	st.inside = in
}

func (st *SettlingTime) Value() float64 {
	if !st.inside {
		return -1
	}
	return st.settled
}

func (st *SettlingTime) Reset() {
	st.settled = 0
	st.inside = false
}

// SteadyStateError is the mean absolute tracking error over the last Window
// samples.
type SteadyStateError struct {
	Window int
	errs   []float64
}

func NewSteadyStateError(window int) *SteadyStateError {
	if window <= 0 {
		window = 60
	}
	return &SteadyStateError{Window: window}
}

func (e *SteadyStateError) Name() string { return "steady_state_error" }

func (e *SteadyStateError) Observe(s sim.Sample) {
	e.errs = append(e.errs, s.Probe-s.Target)
	if len(e.errs) > e.Window {
		e.errs = e.errs[1:]
	}
}

func (e *SteadyStateError) Value() float64 {
	if len(e.errs) == 0 {
		return 0
	}
	return math.Abs(stat.Mean(e.errs, nil))
}

// StdDev is the standard deviation of the tracking error over the window.
func (e *SteadyStateError) StdDev() float64 {
	if len(e.errs) < 2 {
		return 0
	}
	return stat.StdDev(e.errs, nil)
}

func (e *SteadyStateError) Reset() { e.errs = e.errs[:0] }

// Ripple reports SteadyStateError.StdDev as its own metric.
type Ripple struct {
	*SteadyStateError
}

func NewRipple(window int) *Ripple {
	return &Ripple{NewSteadyStateError(window)}
}

func (r *Ripple) Name() string   { return "ripple" }
func (r *Ripple) Value() float64 { return r.StdDev() }

// ITAE is the integral of time-weighted absolute error, ∫ t·|e| dt, the cost
// minimized by the gain search.
type ITAE struct {
	sum float64
}

func NewITAE() *ITAE { return &ITAE{} }

func (m *ITAE) Name() string { return "itae" }

func (m *ITAE) Observe(s sim.Sample) {
	m.sum += s.Time * math.Abs(s.Probe-s.Target) * thermal.StepSize
}

func (m *ITAE) Value() float64 { return m.sum }
func (m *ITAE) Reset()         { m.sum = 0 }
