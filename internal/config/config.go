package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bedsim/internal/bed"
	"github.com/san-kum/bedsim/internal/control"
	"github.com/san-kum/bedsim/internal/thermal"
)

const (
	DefaultPlateSize         = 250.0 // mm
	DefaultPlateThickness    = 8.0   // mm
	DefaultHeaterSize        = 200.0 // mm
	DefaultPowerDensity      = 0.8   // W/cm²
	DefaultConvectionTop     = 8.0   // W/m²K
	DefaultConvectionBottom  = 4.0   // W/m²K
	DefaultAmbient           = 22.0  // °C
	DefaultTarget            = 110.0 // °C
	DefaultResolution        = 5.0   // mm
	DefaultDuration          = 900   // s
	DefaultBangBangMaxDelta  = 2.0   // °C
	DefaultIterationsPerTick = thermal.DefaultIterationsPerTimestep

	mmPerM = 1000.0
)

// Controller names understood by the experiment registry.
const (
	ControllerPID      = "pid"
	ControllerBangBang = "bangbang"
	ControllerManual   = "manual"
)

type Config struct {
	Name        string            `yaml:"name,omitempty"`
	Plate       PlateConfig       `yaml:"plate"`
	Heater      HeaterConfig      `yaml:"heater"`
	Sticker     StickerConfig     `yaml:"magnetic_sticker"`
	Sheet       SheetConfig       `yaml:"sheet"`
	Environment EnvironmentConfig `yaml:"environment"`
	Control     ControlConfig     `yaml:"control"`
	Simulation  SimulationConfig  `yaml:"simulation"`
}

type PlateConfig struct {
	Width        float64 `yaml:"width_mm"`
	Height       float64 `yaml:"height_mm"`
	Thickness    float64 `yaml:"thickness_mm"`
	Conductivity float64 `yaml:"conductivity"`
}

type HeaterConfig struct {
	Width        float64 `yaml:"width_mm"`
	Height       float64 `yaml:"height_mm"`
	PowerDensity float64 `yaml:"power_density"` // W/cm²
	Conductivity float64 `yaml:"conductivity"`
}

type StickerConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Conductivity float64 `yaml:"conductivity"`
}

type SheetConfig struct {
	Conductivity float64 `yaml:"conductivity"`
}

type EnvironmentConfig struct {
	Ambient          float64 `yaml:"ambient"`
	ConvectionTop    float64 `yaml:"convection_top"`
	ConvectionBottom float64 `yaml:"convection_bottom"`
}

type ControlConfig struct {
	Target     float64 `yaml:"target"`
	Probe      string  `yaml:"probe"`
	Controller string  `yaml:"controller"`
	// Gains overrides the analytic tuning when set.
	Gains         *control.Gains `yaml:"gains,omitempty"`
	MaxDelta      float64        `yaml:"max_delta,omitempty"`
	ManualWattage float64        `yaml:"manual_wattage,omitempty"`
}

type SimulationConfig struct {
	Resolution        float64 `yaml:"resolution_mm"`
	IterationsPerTick int     `yaml:"iterations_per_tick"`
	Duration          int     `yaml:"duration_s"`
	Workers           int     `yaml:"workers,omitempty"`
	ValidateState     bool    `yaml:"validate_state"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "default",
		Plate: PlateConfig{
			Width:        DefaultPlateSize,
			Height:       DefaultPlateSize,
			Thickness:    DefaultPlateThickness,
			Conductivity: bed.Aluminium5083.Conductivity,
		},
		Heater: HeaterConfig{
			Width:        DefaultHeaterSize,
			Height:       DefaultHeaterSize,
			PowerDensity: DefaultPowerDensity,
			Conductivity: bed.SiliconeHeater.Conductivity,
		},
		Sticker: StickerConfig{
			Enabled:      true,
			Conductivity: bed.MagneticSticker.Conductivity,
		},
		Sheet: SheetConfig{
			Conductivity: bed.PEISpringSteel.Conductivity,
		},
		Environment: EnvironmentConfig{
			Ambient:          DefaultAmbient,
			ConvectionTop:    DefaultConvectionTop,
			ConvectionBottom: DefaultConvectionBottom,
		},
		Control: ControlConfig{
			Target:     DefaultTarget,
			Probe:      string(bed.ProbeHeater),
			Controller: ControllerPID,
			MaxDelta:   DefaultBangBangMaxDelta,
		},
		Simulation: SimulationConfig{
			Resolution:        DefaultResolution,
			IterationsPerTick: DefaultIterationsPerTick,
			Duration:          DefaultDuration,
			ValidateState:     true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	if c.Control.Gains != nil {
		g := *c.Control.Gains
		cp.Control.Gains = &g
	}
	return &cp
}

// Normalize clamps the heater to the plate in both axes. The thermal core
// trusts the footprint to fit, so this must run before a simulation is built.
// It reports whether anything was clamped.
func (c *Config) Normalize() bool {
	clamped := false
	if c.Heater.Width > c.Plate.Width {
		c.Heater.Width = c.Plate.Width
		clamped = true
	}
	if c.Heater.Height > c.Plate.Height {
		c.Heater.Height = c.Plate.Height
		clamped = true
	}
	return clamped
}

// Validate checks the preconditions the thermal core does not re-check.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"plate.width_mm", c.Plate.Width},
		{"plate.height_mm", c.Plate.Height},
		{"plate.thickness_mm", c.Plate.Thickness},
		{"plate.conductivity", c.Plate.Conductivity},
		{"heater.width_mm", c.Heater.Width},
		{"heater.height_mm", c.Heater.Height},
		{"heater.conductivity", c.Heater.Conductivity},
		{"magnetic_sticker.conductivity", c.Sticker.Conductivity},
		{"sheet.conductivity", c.Sheet.Conductivity},
		{"simulation.resolution_mm", c.Simulation.Resolution},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return fmt.Errorf("%s = %v: %w", p.name, p.value, ErrNonPositive)
		}
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"heater.power_density", c.Heater.PowerDensity},
		{"environment.convection_top", c.Environment.ConvectionTop},
		{"environment.convection_bottom", c.Environment.ConvectionBottom},
	}
	for _, p := range nonNegative {
		if p.value < 0 {
			return fmt.Errorf("%s = %v: %w", p.name, p.value, ErrNegative)
		}
	}

	res := c.Simulation.Resolution
	if math.Round(c.Plate.Width/res) < 1 || math.Round(c.Plate.Height/res) < 1 {
		return fmt.Errorf("plate %vx%v mm at %v mm resolution: %w",
			c.Plate.Width, c.Plate.Height, res, ErrGridTooCoarse)
	}
	if c.Heater.Width > c.Plate.Width || c.Heater.Height > c.Plate.Height {
		return fmt.Errorf("heater %vx%v mm on plate %vx%v mm: %w",
			c.Heater.Width, c.Heater.Height, c.Plate.Width, c.Plate.Height, ErrHeaterTooLarge)
	}
	if c.Simulation.IterationsPerTick <= 0 {
		return fmt.Errorf("simulation.iterations_per_tick = %d: %w", c.Simulation.IterationsPerTick, ErrNonPositive)
	}
	if c.Simulation.Duration <= 0 {
		return fmt.Errorf("simulation.duration_s = %d: %w", c.Simulation.Duration, ErrNonPositive)
	}
	if _, err := bed.ParseProbe(c.Control.Probe); err != nil {
		return fmt.Errorf("%q: %w", c.Control.Probe, ErrUnknownProbe)
	}
	switch c.Control.Controller {
	case ControllerPID, ControllerBangBang, ControllerManual:
	default:
		return fmt.Errorf("%q: %w", c.Control.Controller, ErrUnknownController)
	}
	return nil
}

// Build converts the millimeter based configuration to a bed description.
func (c *Config) Build() bed.Build {
	return bed.Build{
		PlateWidth:          c.Plate.Width / mmPerM,
		PlateHeight:         c.Plate.Height / mmPerM,
		PlateThickness:      c.Plate.Thickness / mmPerM,
		HeaterWidth:         c.Heater.Width / mmPerM,
		HeaterHeight:        c.Heater.Height / mmPerM,
		MagneticSticker:     c.Sticker.Enabled,
		HeaterConductivity:  c.Heater.Conductivity,
		PlateConductivity:   c.Plate.Conductivity,
		StickerConductivity: c.Sticker.Conductivity,
		SheetConductivity:   c.Sheet.Conductivity,
	}
}

// ProbeKind returns the control probe. Validate must have succeeded.
func (c *Config) ProbeKind() bed.ProbeKind {
	return bed.ProbeKind(c.Control.Probe)
}

// Resolution returns the grid resolution in meters.
func (c *Config) Resolution() float64 {
	return c.Simulation.Resolution / mmPerM
}

// Conditions returns the per-tick stepper inputs.
func (c *Config) Conditions() thermal.Conditions {
	return thermal.Conditions{
		Target:           c.Control.Target,
		PowerDensity:     c.Heater.PowerDensity,
		Ambient:          c.Environment.Ambient,
		ConvectionTop:    c.Environment.ConvectionTop,
		ConvectionBottom: c.Environment.ConvectionBottom,
		Probe:            c.Build().ProbeLocation(c.ProbeKind()),
	}
}
