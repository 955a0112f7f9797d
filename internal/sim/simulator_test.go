package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/bedsim/internal/bed"
	"github.com/san-kum/bedsim/internal/control"
	"github.com/san-kum/bedsim/internal/thermal"
)

type nanController struct{}

func (nanController) Update(setpoint, measured, dt float64) float64 { return math.NaN() }

func testBuild() bed.Build {
	return bed.Build{
		PlateWidth:      0.05,
		PlateHeight:     0.05,
		PlateThickness:  0.003,
		HeaterWidth:     0.04,
		HeaterHeight:    0.04,
		MagneticSticker: true,
	}
}

func newTestSimulator(ctrl thermal.Controller) *Simulator {
	b := testBuild()
	s := thermal.NewSimulation(thermal.WithIterations(5))
	s.Reset(b.PlateWidth, b.PlateHeight, b.HeaterWidth, b.HeaterHeight, 0.01, b.Layers(), 20)
	s.SetController(ctrl)

	cond := thermal.Conditions{
		Target:           60,
		PowerDensity:     0.8,
		Ambient:          20,
		ConvectionTop:    8,
		ConvectionBottom: 4,
		Probe:            b.ProbeLocation(bed.ProbeHeater),
	}
	return New(s, cond)
}

func TestSimulatorRun(t *testing.T) {
	s := newTestSimulator(control.NewManual(5))

	cfg := Config{Duration: 10, ValidateState: true, Readouts: testBuild().Readouts()}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Samples) != 11 {
		t.Fatalf("expected 11 samples, got %d", len(result.Samples))
	}
	if result.TicksTaken != 10 {
		t.Errorf("expected 10 ticks, got %d", result.TicksTaken)
	}

	times := result.Times()
	for i, tm := range times {
		if tm != float64(i) {
			t.Errorf("sample %d at t=%v", i, tm)
		}
	}

	if w := result.Final().Wattage; w != 5 {
		t.Errorf("expected 5 W, got %v", w)
	}
	if result.Final().Probe <= 20 {
		t.Errorf("probe did not heat: %v", result.Final().Probe)
	}
	if got := result.Readout("surface_center"); len(got) != 11 {
		t.Errorf("expected surface_center series, got %d values", len(got))
	}
	if result.Readout("nope") != nil {
		t.Error("unknown readout should be nil")
	}
}

func TestSimulatorInvalidDuration(t *testing.T) {
	s := newTestSimulator(control.NewManual(0))

	for _, d := range []int{0, -5} {
		_, err := s.Run(context.Background(), Config{Duration: d})
		if !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("duration %d: got %v", d, err)
		}
	}
}

func TestSimulatorCancelBetweenTicks(t *testing.T) {
	s := newTestSimulator(control.NewManual(5))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := 0
	s.AddObserver(ObserverFunc(func(Sample) {
		ticks++
		if ticks == 3 {
			cancel()
		}
	}))

	result, err := s.Run(ctx, Config{Duration: 100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.TicksTaken != 3 {
		t.Errorf("expected 3 completed ticks, got %d", result.TicksTaken)
	}
	if s.Simulation().Time() != 3 {
		t.Errorf("expected simulation time 3, got %v", s.Simulation().Time())
	}
}

func TestSimulatorValidateState(t *testing.T) {
	s := newTestSimulator(nanController{})

	result, err := s.Run(context.Background(), Config{Duration: 5, ValidateState: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	if !errors.Is(result.Errors[0], ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", result.Errors[0])
	}
	var simErr SimError
	if !errors.As(result.Errors[0], &simErr) || simErr.Tick != 0 {
		t.Errorf("expected SimError at tick 0, got %v", result.Errors[0])
	}
}

type countMetric struct{ n int }

func (c *countMetric) Name() string   { return "count" }
func (c *countMetric) Observe(Sample) { c.n++ }
func (c *countMetric) Value() float64 { return float64(c.n) }
func (c *countMetric) Reset()         { c.n = 0 }

func TestSimulatorMetrics(t *testing.T) {
	s := newTestSimulator(control.NewManual(1))
	s.AddMetric(&countMetric{})

	for range 2 {
		result, err := s.Run(context.Background(), Config{Duration: 4})
		if err != nil {
			t.Fatal(err)
		}
		if result.Metrics["count"] != 4 {
			t.Errorf("expected metric reset per run, got %v", result.Metrics["count"])
		}
	}
}

func TestRunWithCallback(t *testing.T) {
	s := newTestSimulator(control.NewManual(1))

	calls := 0
	err := s.RunWithCallback(context.Background(), Config{}, func(Sample) bool {
		calls++
		return calls < 7
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 7 {
		t.Errorf("expected 7 callbacks, got %d", calls)
	}
}

func TestEnsembleMatchesSequential(t *testing.T) {
	watts := []float64{0, 2, 4, 8}
	build := func(i int) (*Simulator, error) {
		return newTestSimulator(control.NewManual(watts[i])), nil
	}

	results, err := NewEnsemble(len(watts), 2, build).Run(context.Background(), Config{Duration: 20})
	if err != nil {
		t.Fatal(err)
	}

	for i, r := range results {
		seq, _ := build(i)
		want, err := seq.Run(context.Background(), Config{Duration: 20})
		if err != nil {
			t.Fatal(err)
		}
		if r.Final().Probe != want.Final().Probe {
			t.Errorf("run %d: %v != %v", i, r.Final().Probe, want.Final().Probe)
		}
	}
}

func TestEnsembleBuildError(t *testing.T) {
	boom := errors.New("boom")
	e := NewEnsemble(3, 0, func(i int) (*Simulator, error) {
		if i == 1 {
			return nil, boom
		}
		return newTestSimulator(control.NewManual(0)), nil
	})
	if _, err := e.Run(context.Background(), Config{Duration: 2}); !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}
