package bed

import "github.com/san-kum/bedsim/internal/thermal"

const (
	HeaterThickness          = 0.0015  // m
	MagneticStickerThickness = 0.0012  // m
	SheetThickness           = 0.00075 // m

	// OverheatThreshold is the temperature above which a probe reading is
	// flagged as overheating.
	OverheatThreshold = 116.0
)

// Build is the user-adjustable description of a bed.
type Build struct {
	PlateWidth, PlateHeight   float64 // m
	PlateThickness            float64 // m
	HeaterWidth, HeaterHeight float64 // m

	MagneticSticker bool

	HeaterConductivity  float64
	PlateConductivity   float64
	StickerConductivity float64
	SheetConductivity   float64
}

// Layers returns the stack from heater to build surface: heater, plate,
// optional magnetic sticker, PEI sheet. Zero conductivities keep the
// material defaults.
func (b Build) Layers() []thermal.Layer {
	layers := []thermal.Layer{
		{Name: "heater", Material: WithConductivity(SiliconeHeater, b.HeaterConductivity), Thickness: HeaterThickness},
		{Name: "plate", Material: WithConductivity(Aluminium5083, b.PlateConductivity), Thickness: b.PlateThickness},
	}
	if b.MagneticSticker {
		layers = append(layers, thermal.Layer{
			Name:      "magnetic_sticker",
			Material:  WithConductivity(MagneticSticker, b.StickerConductivity),
			Thickness: MagneticStickerThickness,
		})
	}
	return append(layers, thermal.Layer{
		Name:      "sheet",
		Material:  WithConductivity(PEISpringSteel, b.SheetConductivity),
		Thickness: SheetThickness,
	})
}

// Depth returns the total stack height.
func (b Build) Depth() float64 {
	return thermal.StackHeight(b.Layers())
}
