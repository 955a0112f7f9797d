package control

// Manual passes a fixed output to the heater regardless of the measurement.
// Used for open-loop power tests and cool-down runs.
type Manual struct {
	Output float64
}

func NewManual(output float64) *Manual {
	return &Manual{Output: output}
}

// SetOutput updates the commanded wattage.
func (m *Manual) SetOutput(w float64) {
	m.Output = w
}

func (m *Manual) Update(setpoint, measured, dt float64) float64 {
	return m.Output
}
