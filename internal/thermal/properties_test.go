package thermal_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bedsim/internal/bed"
	"github.com/san-kum/bedsim/internal/control"
	"github.com/san-kum/bedsim/internal/thermal"
)

// stack returns the full bed at 10 mm resolution with a 3 mm plate.
func stack() bed.Build {
	return bed.Build{
		PlateWidth:      0.1,
		PlateHeight:     0.1,
		PlateThickness:  0.003,
		HeaterWidth:     0.08,
		HeaterHeight:    0.08,
		MagneticSticker: true,
	}
}

func newSimulation(b bed.Build, ambient float64, opts ...thermal.Option) *thermal.Simulation {
	s := thermal.NewSimulation(opts...)
	s.Reset(b.PlateWidth, b.PlateHeight, b.HeaterWidth, b.HeaterHeight, 0.01, b.Layers(), ambient)
	return s
}

func maxTemperature(g *thermal.Grid) float64 {
	m := math.Inf(-1)
	for _, t := range g.Temperatures {
		m = math.Max(m, t)
	}
	return m
}

var _ = Describe("Simulation", func() {
	Context("without boundary losses", func() {
		var (
			s    *thermal.Simulation
			cond thermal.Conditions
		)

		BeforeEach(func() {
			b := stack()
			layers := b.Layers()
			for i := range layers {
				layers[i].Material.Emissivity = 0
			}
			s = thermal.NewSimulation(thermal.WithIterations(10))
			s.Reset(b.PlateWidth, b.PlateHeight, b.HeaterWidth, b.HeaterHeight, 0.01, layers, 22)
			cond = thermal.Conditions{Target: 60, PowerDensity: 0.8, Ambient: 22}
		})

		It("conserves energy while conducting", func() {
			s.SetController(control.NewManual(0))
			g := s.Grid()
			g.SetTemperatureAtGrid(2, 3, 0, 90)
			g.SetTemperatureAtGrid(7, 7, 1, 60)
			g.SetTemperatureAtGrid(5, 0, 3, 10)
			before := g.StoredEnergy()

			for i := 0; i < 50; i++ {
				s.Iterate(cond)
			}

			Expect(g.StoredEnergy()).To(BeNumerically("~", before, before*1e-9))
			Expect(g.Stats(0).Max).To(BeNumerically("<", 90))
		})

		It("stores exactly the injected heater energy", func() {
			s.SetController(control.NewManual(10))
			before := s.Grid().StoredEnergy()

			for i := 0; i < 20; i++ {
				Expect(s.Iterate(cond)).To(Equal(10.0))
			}

			Expect(s.Grid().StoredEnergy() - before).To(BeNumerically("~", 200, 1e-6))
		})
	})

	It("stays at ambient with the heater off", func() {
		s := newSimulation(stack(), 22)
		s.SetController(control.NewManual(0))
		cond := thermal.Conditions{Ambient: 22, ConvectionTop: 8, ConvectionBottom: 4}

		for i := 0; i < 20; i++ {
			s.Iterate(cond)
		}

		for _, t := range s.Grid().Temperatures {
			Expect(t).To(Equal(22.0))
		}
		Expect(s.HeatLoss(cond)).To(BeZero())
	})

	It("cools monotonically towards ambient", func() {
		s := newSimulation(stack(), 80)
		s.SetController(control.NewManual(0))
		cond := thermal.Conditions{Ambient: 22, ConvectionTop: 8, ConvectionBottom: 4}
		g := s.Grid()

		energy, peak := g.StoredEnergy(), maxTemperature(g)
		prev := append([]float64(nil), g.Temperatures...)
		for i := 0; i < 60; i++ {
			s.Iterate(cond)
			Expect(g.StoredEnergy()).To(BeNumerically("<", energy))
			Expect(maxTemperature(g)).To(BeNumerically("<=", peak))
			for c, t := range g.Temperatures {
				Expect(t).To(BeNumerically("<", prev[c]), "cell %d at tick %d", c, i+1)
			}
			energy, peak = g.StoredEnergy(), maxTemperature(g)
			copy(prev, g.Temperatures)
		}
		Expect(g.Stats(0).Min).To(BeNumerically(">", 22))
	})

	It("gives identical results with parallel integration", func() {
		cond := thermal.Conditions{Target: 90, PowerDensity: 0.8, Ambient: 22, ConvectionTop: 8, ConvectionBottom: 4}
		seq := newSimulation(stack(), 22)
		par := newSimulation(stack(), 22, thermal.WithWorkers(4))
		seq.Tune(false)
		par.Tune(false)

		for i := 0; i < 30; i++ {
			Expect(par.Iterate(cond)).To(Equal(seq.Iterate(cond)))
		}
		Expect(par.Grid().Temperatures).To(Equal(seq.Grid().Temperatures))
	})

	Describe("the 0.25 m aluminium plate", Ordered, func() {
		layers := []thermal.Layer{{Name: "plate", Material: bed.Aluminium, Thickness: 0.003}}
		cond := thermal.Conditions{
			Target:           60,
			PowerDensity:     0.8,
			Ambient:          22,
			ConvectionTop:    8,
			ConvectionBottom: 8,
			Probe:            thermal.Point{X: 0.125, Y: 0.125},
		}

		run := func() (*thermal.Simulation, float64) {
			s := thermal.NewSimulation()
			s.Reset(0.25, 0.25, 0.1, 0.1, 0.005, layers, 22)
			s.Tune(false)
			var w float64
			for i := 0; i < 600; i++ {
				w = s.Iterate(cond)
			}
			return s, w
		}

		var (
			s       *thermal.Simulation
			wattage float64
		)

		BeforeAll(func() {
			s, wattage = run()
		})

		It("holds the center at the target", func() {
			Expect(s.TemperatureAt(0.125, 0.125, 0)).To(BeNumerically("~", 60, 2))
			Expect(s.Time()).To(Equal(600.0))
		})

		It("balances heater power against the boundary loss", func() {
			loss := s.HeatLoss(cond)
			Expect(loss).To(BeNumerically("~", 38.4, 1))
			Expect(wattage).To(BeNumerically("~", loss, 0.05*loss))
		})

		It("is deterministic", func() {
			again, w := run()
			Expect(w).To(Equal(wattage))
			Expect(again.Grid().Temperatures).To(Equal(s.Grid().Temperatures))
		})
	})
})
