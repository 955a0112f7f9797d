package metrics

import (
	"github.com/san-kum/bedsim/internal/sim"
	"github.com/san-kum/bedsim/internal/thermal"
)

// ControlEffort is the mean controlled heater wattage over a run.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s sim.Sample) {
	c.sum += s.Wattage
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// HeaterEnergy is the electrical energy delivered to the heater in Wh.
// Every sample covers one tick of thermal.StepSize seconds.
type HeaterEnergy struct {
	joules float64
}

func NewHeaterEnergy() *HeaterEnergy { return &HeaterEnergy{} }

func (h *HeaterEnergy) Name() string { return "heater_energy_wh" }

func (h *HeaterEnergy) Observe(s sim.Sample) {
	h.joules += s.Wattage * thermal.StepSize
}

func (h *HeaterEnergy) Value() float64 { return h.joules / 3600 }

func (h *HeaterEnergy) Reset() { h.joules = 0 }
