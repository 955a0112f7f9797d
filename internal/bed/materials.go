// Package bed describes the physical heated-bed build: the material table,
// the layer stack and the probe and readout locations on it.
package bed

import "github.com/san-kum/bedsim/internal/thermal"

// All these numbers are approximate.
var (
	// Glass fiber reinforced silicone rubber heater.
	SiliconeHeater = thermal.Material{
		Name:         "silicone_heater",
		Density:      1100000,
		Capacity:     0.9,
		Conductivity: 0.3,
		Emissivity:   0.9,
	}

	// Aluminium alloy 5083 tooling plate.
	Aluminium5083 = thermal.Material{
		Name:         "aluminium_5083",
		Density:      2650000,
		Capacity:     0.9,
		Conductivity: 120,
		Emissivity:   0.2,
	}

	// Rolled aluminium, used by the single plate reference scenario.
	Aluminium = thermal.Material{
		Name:         "aluminium",
		Density:      2710000,
		Capacity:     0.9,
		Conductivity: 273,
		Emissivity:   0.2,
	}

	// Magnetic silicone rubber sheet. No published data; best estimate.
	MagneticSticker = thermal.Material{
		Name:         "magnetic_sticker",
		Density:      1100000,
		Capacity:     0.9,
		Conductivity: 0.3,
		Emissivity:   0.9,
	}

	// PEI coated spring steel, both PEI films folded into one layer.
	PEISpringSteel = thermal.Material{
		Name:         "pei_spring_steel",
		Density:      5500000,
		Capacity:     0.58,
		Conductivity: 0.6,
		Emissivity:   0.9,
	}
)

var materials = map[string]thermal.Material{
	SiliconeHeater.Name:  SiliconeHeater,
	Aluminium5083.Name:   Aluminium5083,
	Aluminium.Name:       Aluminium,
	MagneticSticker.Name: MagneticSticker,
	PEISpringSteel.Name:  PEISpringSteel,
}

// LookupMaterial returns a material from the built-in table.
func LookupMaterial(name string) (thermal.Material, bool) {
	m, ok := materials[name]
	return m, ok
}

// WithConductivity returns a copy of m with a different conductivity.
func WithConductivity(m thermal.Material, k float64) thermal.Material {
	if k > 0 {
		m.Conductivity = k
	}
	return m
}
