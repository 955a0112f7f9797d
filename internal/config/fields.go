package config

import (
	"fmt"
	"sort"
)

// fields maps the yaml path of every numeric setting to its location.
var fields = map[string]func(*Config) *float64{
	"plate.width_mm":                func(c *Config) *float64 { return &c.Plate.Width },
	"plate.height_mm":               func(c *Config) *float64 { return &c.Plate.Height },
	"plate.thickness_mm":            func(c *Config) *float64 { return &c.Plate.Thickness },
	"plate.conductivity":            func(c *Config) *float64 { return &c.Plate.Conductivity },
	"heater.width_mm":               func(c *Config) *float64 { return &c.Heater.Width },
	"heater.height_mm":              func(c *Config) *float64 { return &c.Heater.Height },
	"heater.power_density":          func(c *Config) *float64 { return &c.Heater.PowerDensity },
	"heater.conductivity":           func(c *Config) *float64 { return &c.Heater.Conductivity },
	"magnetic_sticker.conductivity": func(c *Config) *float64 { return &c.Sticker.Conductivity },
	"sheet.conductivity":            func(c *Config) *float64 { return &c.Sheet.Conductivity },
	"environment.ambient":           func(c *Config) *float64 { return &c.Environment.Ambient },
	"environment.convection_top":    func(c *Config) *float64 { return &c.Environment.ConvectionTop },
	"environment.convection_bottom": func(c *Config) *float64 { return &c.Environment.ConvectionBottom },
	"control.target":                func(c *Config) *float64 { return &c.Control.Target },
	"control.max_delta":             func(c *Config) *float64 { return &c.Control.MaxDelta },
	"control.manual_wattage":        func(c *Config) *float64 { return &c.Control.ManualWattage },
	"simulation.resolution_mm":      func(c *Config) *float64 { return &c.Simulation.Resolution },
}

// Field returns a pointer to the numeric setting at the yaml path name.
func (c *Config) Field(name string) (*float64, error) {
	f, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
	return f(c), nil
}

// SetField sets the numeric setting at the yaml path name.
func (c *Config) SetField(name string, v float64) error {
	p, err := c.Field(name)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func FieldNames() []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
