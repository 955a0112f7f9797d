package thermal

import (
	"github.com/san-kum/bedsim/internal/control"
)

const (
	// StepSize is the simulated duration of one Iterate call in seconds.
	StepSize = 1.0
	// DefaultIterationsPerTimestep is the number of sub-steps per tick.
	DefaultIterationsPerTimestep = 25
)

// Controller turns a setpoint and a measured temperature into a raw heater
// power command in watts. The stepper clamps the result to the heater limit.
type Controller interface {
	Update(setpoint, measured, dt float64) float64
}

// Point is a location in meters. Z is the height above the heater bottom.
type Point struct {
	X, Y, Z float64
}

// Conditions are the per-tick inputs of Iterate.
type Conditions struct {
	Target           float64 // °C
	PowerDensity     float64 // W/cm² of heater area
	Ambient          float64 // °C
	ConvectionTop    float64 // W/m²K, also used for the side edges
	ConvectionBottom float64 // W/m²K
	Probe            Point
}

// Simulation is one owned simulation session: a grid, the controller that
// drives its heater and the elapsed simulated time.
type Simulation struct {
	grid        *Grid
	ctrl        Controller
	iterations  int
	workers     int
	time        float64
	lastWattage float64
}

type Option func(*Simulation)

// WithIterations sets the number of sub-steps per tick.
func WithIterations(n int) Option {
	return func(s *Simulation) {
		if n > 0 {
			s.iterations = n
		}
	}
}

// WithWorkers splits the per-cell integration pass over n goroutines.
func WithWorkers(n int) Option {
	return func(s *Simulation) {
		if n > 0 {
			s.workers = n
		}
	}
}

func NewSimulation(opts ...Option) *Simulation {
	s := &Simulation{
		iterations: DefaultIterationsPerTimestep,
		workers:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset discards the current grid and allocates a new one at ambient
// temperature. The controller is kept; call Tune afterwards so its gains
// match the new geometry.
func (s *Simulation) Reset(plateWidth, plateHeight, heaterWidth, heaterHeight, resolution float64, layers []Layer, ambient float64) {
	s.grid = NewGrid(plateWidth, plateHeight, heaterWidth, heaterHeight, resolution, layers, ambient)
	s.time = 0
	s.lastWattage = 0
}

// Tune derives PID gains from the current grid and installs a fresh PID
// controller. embeddedProbe selects a probe inside the bed instead of one
// mounted on the heater.
func (s *Simulation) Tune(embeddedProbe bool) control.Tuning {
	t := control.Tune(s.Plant(), embeddedProbe)
	s.ctrl = control.NewPID(t.Kp, t.Ki, t.Kd)
	return t
}

// Plant returns the tuner's view of the current grid.
func (s *Simulation) Plant() control.Plant {
	return control.Plant{
		Width:       s.grid.Width,
		Height:      s.grid.Height,
		ThermalMass: s.grid.ThermalMass(),
	}
}

// SetController installs c in place of the current controller.
func (s *Simulation) SetController(c Controller) { s.ctrl = c }

func (s *Simulation) Controller() Controller { return s.ctrl }
func (s *Simulation) Grid() *Grid            { return s.grid }
func (s *Simulation) Iterations() int        { return s.iterations }

// Time returns the simulated seconds since the last Reset.
func (s *Simulation) Time() float64 { return s.time }

// LastWattage returns the controlled wattage of the most recent sub-step.
func (s *Simulation) LastWattage() float64 { return s.lastWattage }

func (s *Simulation) TemperatureAt(x, y, z float64) float64 {
	return s.grid.TemperatureAt(x, y, z)
}

func (s *Simulation) TemperatureAtGrid(x, y, layer int) float64 {
	return s.grid.TemperatureAtGrid(x, y, layer)
}

// HeaterArea returns the configured heater area in cm².
func (s *Simulation) HeaterArea() float64 {
	return s.grid.HeaterWidth * s.grid.HeaterHeight * cm2PerM2
}

// PowerLimit returns the maximum heater output in watts for a power density
// in W/cm².
func (s *Simulation) PowerLimit(powerDensity float64) float64 {
	return powerDensity * s.HeaterArea()
}
