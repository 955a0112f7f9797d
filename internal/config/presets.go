package config

import "sort"

// Presets are named variations of DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"embedded-magnets": func(c *Config) {
		c.Sticker.Enabled = false
	},
	"plate-probe": func(c *Config) {
		c.Control.Probe = "plate"
	},
	"bangbang": func(c *Config) {
		c.Control.Controller = ControllerBangBang
	},
	"small": func(c *Config) {
		c.Plate.Width, c.Plate.Height, c.Plate.Thickness = 120, 120, 3
		c.Heater.Width, c.Heater.Height = 100, 100
		c.Heater.PowerDensity = 1.5
	},
	"large": func(c *Config) {
		c.Plate.Width, c.Plate.Height, c.Plate.Thickness = 400, 400, 10
		c.Heater.Width, c.Heater.Height = 380, 380
		c.Simulation.Resolution = 10
		c.Simulation.Duration = 1800
	},
	"enclosure": func(c *Config) {
		c.Environment.Ambient = 45
		c.Environment.ConvectionTop = 4
		c.Environment.ConvectionBottom = 2
	},
	"cooldown": func(c *Config) {
		c.Control.Controller = ControllerManual
		c.Control.ManualWattage = 0
		c.Control.Target = c.Environment.Ambient
	},
}

// GetPreset returns a fresh config for the preset or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Name = name
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
