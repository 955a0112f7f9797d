package metrics

import (
	"math"

	"github.com/san-kum/bedsim/internal/bed"
	"github.com/san-kum/bedsim/internal/sim"
)

// Overheat counts the ticks in which the control probe or any readout was
// above bed.OverheatThreshold, and remembers the peak.
type Overheat struct {
	Threshold float64
	ticks     int
	peak      float64
}

func NewOverheat() *Overheat {
	return &Overheat{Threshold: bed.OverheatThreshold, peak: math.Inf(-1)}
}

func (o *Overheat) Name() string { return "overheat_ticks" }

func (o *Overheat) Observe(s sim.Sample) {
	hot := s.Probe
	for _, r := range s.Readouts {
		hot = math.Max(hot, r)
	}
	o.peak = math.Max(o.peak, hot)
	if hot > o.Threshold {
		o.ticks++
	}
}

func (o *Overheat) Value() float64 { return float64(o.ticks) }

// Peak returns the hottest observed temperature.
func (o *Overheat) Peak() float64 { return o.peak }

func (o *Overheat) Reset() {
	o.ticks = 0
	o.peak = math.Inf(-1)
}

// Default returns the metrics recorded for every run.
func Default(settlingBand float64) []sim.Metric {
	return []sim.Metric{
		NewControlEffort(),
		NewHeaterEnergy(),
		NewOvershoot(),
		NewSettlingTime(settlingBand),
		NewSteadyStateError(60),
		NewRipple(60),
		NewITAE(),
		NewOverheat(),
	}
}
