package thermal

// Material holds the bulk thermal properties of one layer.
type Material struct {
	Name         string
	Density      float64 // g/m^3
	Capacity     float64 // J/gK
	Conductivity float64 // W/mK
	Emissivity   float64
}

// Layer is a horizontal slab spanning the whole plate. Layers are ordered
// from the heater (index 0) to the build surface.
type Layer struct {
	Name      string
	Material  Material
	Thickness float64 // m
}

// VolumetricCapacity returns the heat capacity per cubic meter in J/K.
func (m Material) VolumetricCapacity() float64 {
	return m.Capacity * m.Density
}

// StackHeight returns the summed thickness of all layers.
func StackHeight(layers []Layer) float64 {
	h := 0.0
	for _, l := range layers {
		h += l.Thickness
	}
	return h
}
