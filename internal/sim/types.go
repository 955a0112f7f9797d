package sim

import (
	"math"

	"github.com/san-kum/bedsim/internal/bed"
)

// Sample is the state of a run at the end of one tick.
type Sample struct {
	Time     float64
	Target   float64
	Probe    float64
	Wattage  float64
	HeatLoss float64
	// Readouts follow the order of Config.Readouts.
	Readouts []float64
}

func (s Sample) IsValid() bool {
	if !finite(s.Probe) || !finite(s.Wattage) {
		return false
	}
	for _, v := range s.Readouts {
		if !finite(v) {
			return false
		}
	}
	return true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(s Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Sample)

func (f ObserverFunc) OnTick(s Sample) { f(s) }

// Configurable is implemented by controllers whose parameters can be changed
// while a run is in progress.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	// Duration is the number of one second ticks to run.
	Duration      int
	ValidateState bool
	Readouts      []bed.Readout
}

type Result struct {
	Samples      []Sample
	ReadoutNames []string
	Metrics      map[string]float64
	TicksTaken   int
	Errors       []error
	// Surface is the top layer field at the end of the run, Surface[y][x].
	Surface [][]float64
}

// Times returns the sample times.
func (r *Result) Times() []float64 {
	return r.column(func(s Sample) float64 { return s.Time })
}

// Probes returns the control probe temperatures.
func (r *Result) Probes() []float64 {
	return r.column(func(s Sample) float64 { return s.Probe })
}

// Wattages returns the controlled heater wattages.
func (r *Result) Wattages() []float64 {
	return r.column(func(s Sample) float64 { return s.Wattage })
}

// Readout returns the series of a named readout, or nil.
func (r *Result) Readout(name string) []float64 {
	for i, n := range r.ReadoutNames {
		if n == name {
			return r.column(func(s Sample) float64 { return s.Readouts[i] })
		}
	}
	return nil
}

func (r *Result) column(fn func(Sample) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = fn(s)
	}
	return out
}

// Final returns the last sample.
func (r *Result) Final() Sample {
	if len(r.Samples) == 0 {
		return Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}
