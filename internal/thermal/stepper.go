package thermal

import "math"

const (
	StefanBoltzmann = 5.67e-8 // W/m²K⁴

	// EmissivityCompensation scales radiation down to account for the film of
	// warm air that forms around hot surfaces, which the model does not track.
	EmissivityCompensation = 0.85

	kelvinOffset = 273.0
	cm2PerM2     = 100 * 100
)

// Iterate advances the simulation by one tick of StepSize seconds and returns
// the controlled heater wattage of the last sub-step. Reset must have been
// called before. Without a controller the heater stays off.
func (s *Simulation) Iterate(c Conditions) float64 {
	g := s.grid
	dt := StepSize / float64(s.iterations)
	limit := s.PowerLimit(c.PowerDensity)

	var wattage float64
	for t := 0; t < s.iterations; t++ {
		clear(g.dQ)

		measured := g.TemperatureAt(c.Probe.X, c.Probe.Y, c.Probe.Z)
		k := 0.0
		if s.ctrl != nil {
			k = s.ctrl.Update(c.Target, measured, dt)
		}
		wattage = math.Min(math.Max(k, 0), limit)

		s.injectHeat(wattage * dt)
		s.conduct(dt)
		s.exchange(c, dt)
		s.integrate()
	}

	s.time += StepSize
	s.lastWattage = wattage
	return wattage
}

// injectHeat spreads joules evenly over the heater footprint on layer 0.
func (s *Simulation) injectHeat(joules float64) {
	g := s.grid
	cells := g.HeaterCountX * g.HeaterCountY
	if cells == 0 {
		return
	}
	perCell := joules / float64(cells)
	for y := g.HeaterStartY; y < g.HeaterStartY+g.HeaterCountY; y++ {
		row := g.Index(g.HeaterStartX, y, 0)
		for x := 0; x < g.HeaterCountX; x++ {
			g.dQ[row+x] = perCell
		}
	}
}

// conduct accumulates the heat exchanged between every cell and its x+1, y+1
// and layer+1 neighbors. What leaves one cell enters the other.
func (s *Simulation) conduct(dt float64) {
	g := s.grid
	nx, ny, nl := g.CountX, g.CountY, len(g.Layers)
	plane := nx * ny
	temps, dQ := g.Temperatures, g.dQ

	for l := 0; l < nl; l++ {
		lateral := g.lateral[l] * dt
		vertical := g.vertical[l] * dt
		hasAbove := l < nl-1

		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				i := g.Index(x, y, l)
				ti := temps[i]

				if x < nx-1 {
					q := lateral * (ti - temps[i+1])
					dQ[i] -= q
					dQ[i+1] += q
				}
				if y < ny-1 {
					q := lateral * (ti - temps[i+nx])
					dQ[i] -= q
					dQ[i+nx] += q
				}
				if hasAbove {
					q := vertical * (ti - temps[i+plane])
					dQ[i] -= q
					dQ[i+plane] += q
				}
			}
		}
	}
}

// exchange removes the convective and radiative losses of every outer face.
func (s *Simulation) exchange(c Conditions, dt float64) {
	g := s.grid
	ambient4 := math.Pow(c.Ambient+kelvinOffset, 4)
	g.forEachFace(c, func(i int, h, e, area float64) {
		g.dQ[i] -= faceLoss(g.Temperatures[i], c.Ambient, ambient4, h, e, area) * dt
	})
}

// HeatLoss returns the current rate of heat leaving all outer faces in watts.
// At steady state it equals the heater wattage.
func (s *Simulation) HeatLoss(c Conditions) float64 {
	g := s.grid
	ambient4 := math.Pow(c.Ambient+kelvinOffset, 4)
	total := 0.0
	g.forEachFace(c, func(i int, h, e, area float64) {
		total += faceLoss(g.Temperatures[i], c.Ambient, ambient4, h, e, area)
	})
	return total
}

// faceLoss is the convective plus compensated radiative loss of one face in W.
func faceLoss(t, ambient, ambient4, h, e, area float64) float64 {
	convection := h * area * (t - ambient)
	radiation := e * StefanBoltzmann * area * (math.Pow(t+kelvinOffset, 4) - ambient4) * EmissivityCompensation
	return convection + radiation
}

// forEachFace visits the top, bottom, front, back, left and right boundary
// faces in that order. Side faces use the top convection coefficient.
func (g *Grid) forEachFace(c Conditions, fn func(i int, h, e, area float64)) {
	nx, ny := g.CountX, g.CountY
	top := len(g.Layers) - 1
	faceXY := g.Resolution * g.Resolution

	e := g.Layers[top].Material.Emissivity
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			fn(g.Index(x, y, top), c.ConvectionTop, e, faceXY)
		}
	}

	e = g.Layers[0].Material.Emissivity
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			fn(g.Index(x, y, 0), c.ConvectionBottom, e, faceXY)
		}
	}

	for l, layer := range g.Layers {
		e := layer.Material.Emissivity
		area := g.sideFaceArea[l]
		for x := 0; x < nx; x++ {
			fn(g.Index(x, 0, l), c.ConvectionTop, e, area)
		}
		for x := 0; x < nx; x++ {
			fn(g.Index(x, ny-1, l), c.ConvectionTop, e, area)
		}
		for y := 0; y < ny; y++ {
			fn(g.Index(0, y, l), c.ConvectionTop, e, area)
		}
		for y := 0; y < ny; y++ {
			fn(g.Index(nx-1, y, l), c.ConvectionTop, e, area)
		}
	}
}

// integrate applies the accumulated heat deltas. Cells are independent here so
// the pass is split over the configured workers.
func (s *Simulation) integrate() {
	g := s.grid
	plane := g.CountX * g.CountY
	ParallelFor(g.Len(), plane, s.workers, func(start, end int) {
		for i := start; i < end; i++ {
			g.Temperatures[i] += g.dQ[i] / g.capacity[i/plane]
		}
	})
}
