package bed

import (
	"fmt"

	"github.com/san-kum/bedsim/internal/thermal"
)

type ProbeKind string

const (
	// ProbeHeater is a thermistor bonded to the heater center.
	ProbeHeater ProbeKind = "heater"
	// ProbePlate is a thermistor embedded in the plate near the back edge.
	ProbePlate ProbeKind = "plate"
)

// Embedded reports whether the probe sits inside the bed.
func (k ProbeKind) Embedded() bool { return k == ProbePlate }

// ParseProbe validates a probe name.
func ParseProbe(s string) (ProbeKind, error) {
	switch ProbeKind(s) {
	case ProbeHeater, ProbePlate:
		return ProbeKind(s), nil
	}
	return "", fmt.Errorf("bed: unknown probe %q", s)
}

// ProbeLocation returns the thermistor position for the probe kind.
func (b Build) ProbeLocation(k ProbeKind) thermal.Point {
	if k == ProbePlate {
		return thermal.Point{X: b.PlateWidth / 2, Y: b.PlateHeight - 0.01, Z: b.Depth() / 2}
	}
	return thermal.Point{X: b.PlateWidth / 2, Y: b.PlateHeight / 2, Z: 0}
}

// Readout is a named location reported alongside the control probe.
type Readout struct {
	Name  string
	Point thermal.Point
}

// Readouts returns the standard report points: both thermistors, the surface
// center, edge and corner, and the plate core.
func (b Build) Readouts() []Readout {
	d := b.Depth()
	w, h := b.PlateWidth, b.PlateHeight
	return []Readout{
		{Name: "heater", Point: b.ProbeLocation(ProbeHeater)},
		{Name: "plate", Point: b.ProbeLocation(ProbePlate)},
		{Name: "surface_center", Point: thermal.Point{X: w / 2, Y: h / 2, Z: d}},
		{Name: "surface_edge", Point: thermal.Point{X: w / 2, Y: h - 0.0175, Z: d}},
		{Name: "surface_corner", Point: thermal.Point{X: 0.0175, Y: 0.0175, Z: d}},
		{Name: "core", Point: thermal.Point{X: w / 2, Y: h / 2, Z: d / 2}},
	}
}
