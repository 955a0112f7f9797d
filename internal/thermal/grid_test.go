package thermal

import (
	"math"
	"testing"
)

var testAluminium = Material{Name: "aluminium", Density: 2710000, Capacity: 0.9, Conductivity: 273, Emissivity: 0.2}

func singleLayer(thickness float64) []Layer {
	return []Layer{{Name: "plate", Material: testAluminium, Thickness: thickness}}
}

func TestNewGridCounts(t *testing.T) {
	g := NewGrid(0.25, 0.2, 0.1, 0.1, 0.005, singleLayer(0.003), 22)

	if g.CountX != 50 || g.CountY != 40 {
		t.Fatalf("counts = %dx%d, want 50x40", g.CountX, g.CountY)
	}
	if g.HeaterCountX != 20 || g.HeaterCountY != 20 {
		t.Errorf("heater = %dx%d, want 20x20", g.HeaterCountX, g.HeaterCountY)
	}
	if g.HeaterStartX != 15 || g.HeaterStartY != 10 {
		t.Errorf("heater start = %d,%d", g.HeaterStartX, g.HeaterStartY)
	}
	if g.Len() != 2000 {
		t.Errorf("len = %d", g.Len())
	}
	for i, v := range g.Temperatures {
		if v != 22 {
			t.Fatalf("cell %d = %v, want ambient", i, v)
		}
	}
}

func TestHeaterCountExactMultiples(t *testing.T) {
	for _, mm := range []float64{145, 235, 285, 290, 295} {
		g := NewGrid(0.3, 0.3, mm/1000, mm/1000, 0.005, singleLayer(0.003), 22)
		want := int(mm / 5)
		if g.HeaterCountX != want || g.HeaterCountY != want {
			t.Errorf("heater %v mm = %dx%d, want %d", mm, g.HeaterCountX, g.HeaterCountY, want)
		}
	}
}

func TestHeaterCountTruncates(t *testing.T) {
	g := NewGrid(0.05, 0.05, 0.0149, 0.0149, 0.005, singleLayer(0.003), 22)
	if g.HeaterCountX != 2 || g.HeaterCountY != 2 {
		t.Errorf("heater = %dx%d, want 2x2", g.HeaterCountX, g.HeaterCountY)
	}
	if !g.InHeater(4, 4) || g.InHeater(6, 4) {
		t.Error("unexpected heater footprint")
	}
}

func TestIndexLayout(t *testing.T) {
	layers := append(singleLayer(0.001), singleLayer(0.002)...)
	g := NewGrid(0.03, 0.02, 0.01, 0.01, 0.01, layers, 0)

	if got := g.Index(2, 1, 1); got != 1*6+1*3+2 {
		t.Errorf("index = %d", got)
	}
	g.SetTemperatureAtGrid(2, 1, 1, 50)
	if g.Temperatures[11] != 50 {
		t.Error("set did not hit flat offset 11")
	}
}

func TestTemperatureAtGridClamps(t *testing.T) {
	g := NewGrid(0.03, 0.03, 0.01, 0.01, 0.01, singleLayer(0.003), 20)
	g.SetTemperatureAtGrid(0, 0, 0, 1)
	g.SetTemperatureAtGrid(2, 2, 0, 9)

	if got := g.TemperatureAtGrid(-5, -1, -3); got != 1 {
		t.Errorf("low clamp = %v", got)
	}
	if got := g.TemperatureAtGrid(10, 99, 4); got != 9 {
		t.Errorf("high clamp = %v", got)
	}
	if got := g.TemperatureAt(1, 1, 1); got != 9 {
		t.Errorf("world clamp = %v", got)
	}
}

func TestLayerIndexAt(t *testing.T) {
	layers := []Layer{
		{Material: testAluminium, Thickness: 0.001},
		{Material: testAluminium, Thickness: 0.002},
		{Material: testAluminium, Thickness: 0.001},
	}
	g := NewGrid(0.02, 0.02, 0.01, 0.01, 0.01, layers, 0)

	tests := []struct {
		z    float64
		want int
	}{
		{0, 0},
		{0.0005, 0},
		{0.0015, 1},
		{0.0035, 2},
		{0.01, 2},
	}
	for _, tt := range tests {
		if got := g.LayerIndexAt(tt.z); got != tt.want {
			t.Errorf("LayerIndexAt(%v) = %d, want %d", tt.z, got, tt.want)
		}
	}
}

func TestLayerConductance(t *testing.T) {
	a := Layer{Material: Material{Conductivity: 1}, Thickness: 0.002}
	b := Layer{Material: Material{Conductivity: 2}, Thickness: 0.004}

	if got := LayerConductance(a, b); math.Abs(got-500) > 1e-9 {
		t.Errorf("conductance = %v, want 500", got)
	}
	if LayerConductance(a, b) != LayerConductance(b, a) {
		t.Error("conductance should be symmetric")
	}
}

// columnDQ runs one conduct pass over a single-cell column of two layers
// and returns the heat gained by the bottom and top cell in joules.
func columnDQ(bottom, top Layer, tBottom, tTop float64) (float64, float64) {
	s := NewSimulation()
	s.Reset(0.01, 0.01, 0.01, 0.01, 0.01, []Layer{bottom, top}, 0)
	g := s.Grid()
	g.Temperatures[0], g.Temperatures[1] = tBottom, tTop
	s.conduct(1)
	return g.dQ[0], g.dQ[1]
}

func TestHarmonicConductionSymmetric(t *testing.T) {
	a := Layer{Name: "a", Material: Material{Density: 1, Capacity: 1, Conductivity: 1}, Thickness: 0.001}
	b := Layer{Name: "b", Material: Material{Density: 1, Capacity: 1, Conductivity: 2}, Thickness: 0.002}

	// 1/(0.0005 + 0.0005) W/m²K over 1 cm² with a 10 K gradient for 1 s.
	const want = 1.0

	tests := []struct {
		name        string
		bottom, top Layer
		tB, tT      float64
	}{
		{"a to b", a, b, 30, 20},
		{"b to a", a, b, 20, 30},
		{"a to b flipped stack", b, a, 20, 30},
		{"b to a flipped stack", b, a, 30, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotB, gotT := columnDQ(tt.bottom, tt.top, tt.tB, tt.tT)
			if math.Abs(math.Abs(gotB)-want) > 1e-12 {
				t.Errorf("|dQ| = %v, want %v", math.Abs(gotB), want)
			}
			if gotB+gotT != 0 {
				t.Errorf("dQ not conserved: %v + %v", gotB, gotT)
			}
			if (tt.tB > tt.tT) != (gotB < 0) {
				t.Errorf("heat flowed from cold to hot: bottom dQ %v", gotB)
			}
		})
	}
}

func TestThermalMassMatchesCells(t *testing.T) {
	g := NewGrid(0.05, 0.05, 0.02, 0.02, 0.01, singleLayer(0.003), 0)
	cells := float64(g.Len()) * g.CellCapacity(0)
	if math.Abs(cells-g.ThermalMass())/cells > 1e-9 {
		t.Errorf("cells %v vs thermal mass %v", cells, g.ThermalMass())
	}
	if e := NewGrid(0.05, 0.05, 0.02, 0.02, 0.01, singleLayer(0.003), 10).StoredEnergy(); math.Abs(e-10*cells)/e > 1e-9 {
		t.Errorf("stored energy = %v, want %v", e, 10*cells)
	}
}

func TestStatsAndSurface(t *testing.T) {
	layers := append(singleLayer(0.001), singleLayer(0.001)...)
	g := NewGrid(0.03, 0.02, 0.01, 0.01, 0.01, layers, 20)
	g.SetTemperatureAtGrid(1, 1, 1, 50)

	s := g.Stats(1)
	if s.Min != 20 || s.Max != 50 || math.Abs(s.Mean-25) > 1e-12 {
		t.Errorf("stats = %+v", s)
	}
	surface := g.Surface()
	if len(surface) != 2 || len(surface[0]) != 3 || surface[1][1] != 50 {
		t.Errorf("surface = %v", surface)
	}
	surface[1][1] = 0
	if g.TemperatureAtGrid(1, 1, 1) != 50 {
		t.Error("surface should be a copy")
	}
}

func TestParallelForCoversRange(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		seen := make([]int, 103)
		ParallelFor(len(seen), 10, workers, func(start, end int) {
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for i, n := range seen {
			if n != 1 {
				t.Fatalf("workers=%d: index %d visited %d times", workers, i, n)
			}
		}
	}
}
