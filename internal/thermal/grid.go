package thermal

import "math"

// Grid is the voxel discretization of the bed stack. Cells are stored
// layer-major, then row-major, in flat buffers.
type Grid struct {
	Width, Height             float64
	HeaterWidth, HeaterHeight float64
	Resolution                float64

	CountX, CountY int
	Layers         []Layer

	// Heater footprint on layer 0.
	HeaterCountX, HeaterCountY int
	HeaterStartX, HeaterStartY int

	Temperatures []float64
	dQ           []float64

	// Per-layer caches derived from the layer materials.
	capacity     []float64 // J/K per cell
	lateral      []float64 // W/K between in-plane neighbors
	vertical     []float64 // W/K between layer l and l+1
	sideFaceArea []float64 // m^2 of one outer side face
}

// NewGrid allocates a grid for the given plate and heater dimensions and sets
// every cell to ambient. Plate cell counts are rounded, heater cell counts are
// truncated. Dimensions must be positive and the heater must fit the plate.
func NewGrid(plateWidth, plateHeight, heaterWidth, heaterHeight, resolution float64, layers []Layer, ambient float64) *Grid {
	g := &Grid{
		Width:        plateWidth,
		Height:       plateHeight,
		HeaterWidth:  heaterWidth,
		HeaterHeight: heaterHeight,
		Resolution:   resolution,
		CountX:       int(math.Round(plateWidth / resolution)),
		CountY:       int(math.Round(plateHeight / resolution)),
		HeaterCountX: truncCount(heaterWidth, resolution),
		HeaterCountY: truncCount(heaterHeight, resolution),
		Layers:       append([]Layer(nil), layers...),
	}
	g.HeaterStartX = (g.CountX - g.HeaterCountX) / 2
	g.HeaterStartY = (g.CountY - g.HeaterCountY) / 2

	n := g.CountX * g.CountY * len(layers)
	g.Temperatures = make([]float64, n)
	g.dQ = make([]float64, n)
	for i := range g.Temperatures {
		g.Temperatures[i] = ambient
	}

	g.deriveLayerCaches()
	return g
}

// countEpsilon absorbs the representation error of exact multiples, e.g.
// 0.145/0.005 evaluating to 28.999999999999996.
const countEpsilon = 1e-9

// truncCount is the number of whole cells of size res that fit in length.
func truncCount(length, res float64) int {
	return int(math.Floor(length/res + countEpsilon))
}

func (g *Grid) deriveLayerCaches() {
	nl := len(g.Layers)
	res := g.Resolution
	g.capacity = make([]float64, nl)
	g.lateral = make([]float64, nl)
	g.vertical = make([]float64, nl)
	g.sideFaceArea = make([]float64, nl)

	for l, layer := range g.Layers {
		m := layer.Material
		g.capacity[l] = m.Capacity * m.Density * res * res * layer.Thickness
		g.lateral[l] = m.Conductivity * (res * layer.Thickness) / res
		g.sideFaceArea[l] = res * layer.Thickness
		if l < nl-1 {
			g.vertical[l] = LayerConductance(layer, g.Layers[l+1]) * res * res
		}
	}
}

// LayerConductance returns the conductance per unit area in W/m²K between the
// centers of two stacked layers: the series combination of their half
// thickness resistances.
func LayerConductance(a, b Layer) float64 {
	r1 := 0.5 * a.Thickness / a.Material.Conductivity
	r2 := 0.5 * b.Thickness / b.Material.Conductivity
	return 1 / (r1 + r2)
}

// Index maps grid coordinates to the flat buffer offset.
func (g *Grid) Index(x, y, layer int) int {
	return layer*g.CountX*g.CountY + y*g.CountX + x
}

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.Temperatures) }

// CellCapacity returns the heat capacity of one cell of the layer in J/K.
func (g *Grid) CellCapacity(layer int) float64 { return g.capacity[layer] }

// LayerIndexAt resolves a height above the heater bottom to a layer. Heights
// above the stack resolve to the top layer.
func (g *Grid) LayerIndexAt(z float64) int {
	h := 0.0
	l := 0
	for ; l < len(g.Layers)-1; l++ {
		h += g.Layers[l].Thickness
		if z < h {
			break
		}
	}
	return l
}

// TemperatureAt returns the temperature of the cell nearest to the world
// coordinates in meters. X and Y are clamped to the plate.
func (g *Grid) TemperatureAt(x, y, z float64) float64 {
	xx := clampInt(int(math.Round(x/g.Resolution)), 0, g.CountX-1)
	yy := clampInt(int(math.Round(y/g.Resolution)), 0, g.CountY-1)
	return g.Temperatures[g.Index(xx, yy, g.LayerIndexAt(z))]
}

// TemperatureAtGrid returns the temperature of a cell, clamping each index.
func (g *Grid) TemperatureAtGrid(x, y, layer int) float64 {
	return g.Temperatures[g.clampedIndex(x, y, layer)]
}

// SetTemperatureAtGrid overwrites the temperature of a cell, clamping each index.
func (g *Grid) SetTemperatureAtGrid(x, y, layer int, t float64) {
	g.Temperatures[g.clampedIndex(x, y, layer)] = t
}

func (g *Grid) clampedIndex(x, y, layer int) int {
	return g.Index(
		clampInt(x, 0, g.CountX-1),
		clampInt(y, 0, g.CountY-1),
		clampInt(layer, 0, len(g.Layers)-1),
	)
}

// InHeater reports whether the layer 0 cell at (x, y) receives heater energy.
func (g *Grid) InHeater(x, y int) bool {
	return x >= g.HeaterStartX && x < g.HeaterStartX+g.HeaterCountX &&
		y >= g.HeaterStartY && y < g.HeaterStartY+g.HeaterCountY
}

// StoredEnergy returns Σ T·C over all cells in joules relative to 0 °C.
func (g *Grid) StoredEnergy() float64 {
	plane := g.CountX * g.CountY
	e := 0.0
	for l := range g.Layers {
		sum := 0.0
		for _, t := range g.Temperatures[l*plane : (l+1)*plane] {
			sum += t
		}
		e += sum * g.capacity[l]
	}
	return e
}

// ThermalMass returns the heat capacity of the whole stack in J/K.
func (g *Grid) ThermalMass() float64 {
	c := 0.0
	for _, l := range g.Layers {
		c += l.Material.Density * l.Material.Capacity * g.Width * g.Height * l.Thickness
	}
	return c
}

// LayerStats summarizes the temperatures of one layer.
type LayerStats struct {
	Min, Max, Mean float64
}

// Stats returns min, max and mean temperature of a layer.
func (g *Grid) Stats(layer int) LayerStats {
	plane := g.CountX * g.CountY
	cells := g.Temperatures[layer*plane : (layer+1)*plane]
	s := LayerStats{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, t := range cells {
		s.Min = math.Min(s.Min, t)
		s.Max = math.Max(s.Max, t)
		s.Mean += t
	}
	s.Mean /= float64(len(cells))
	return s
}

// Surface returns a copy of the top layer as rows of CountX temperatures.
func (g *Grid) Surface() [][]float64 {
	top := len(g.Layers) - 1
	rows := make([][]float64, g.CountY)
	for y := range rows {
		start := g.Index(0, y, top)
		rows[y] = append([]float64(nil), g.Temperatures[start:start+g.CountX]...)
	}
	return rows
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
