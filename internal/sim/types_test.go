package sim

import (
	"math"
	"testing"
)

func TestSample_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
		valid  bool
	}{
		{"zero", Sample{}, true},
		{"normal", Sample{Probe: 60, Wattage: 40, Readouts: []float64{58, 59}}, true},
		{"NaN probe", Sample{Probe: math.NaN()}, false},
		{"Inf wattage", Sample{Wattage: math.Inf(1)}, false},
		{"NaN readout", Sample{Readouts: []float64{1, math.NaN()}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sample.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestResultColumns(t *testing.T) {
	r := &Result{
		ReadoutNames: []string{"a", "b"},
		Samples: []Sample{
			{Time: 0, Probe: 20, Wattage: 0, Readouts: []float64{1, 2}},
			{Time: 1, Probe: 21, Wattage: 9, Readouts: []float64{3, 4}},
		},
	}

	if got := r.Probes(); got[1] != 21 {
		t.Errorf("probes = %v", got)
	}
	if got := r.Wattages(); got[1] != 9 {
		t.Errorf("wattages = %v", got)
	}
	if got := r.Readout("b"); got[0] != 2 || got[1] != 4 {
		t.Errorf("readout b = %v", got)
	}
	if (&Result{}).Final().Time != 0 {
		t.Error("empty result final should be zero")
	}
}
