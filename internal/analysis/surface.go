package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SurfaceStats summarizes a temperature field.
type SurfaceStats struct {
	Min, Max float64
	Mean     float64
	StdDev   float64
}

// Spread is the hottest minus the coldest cell.
func (s SurfaceStats) Spread() float64 { return s.Max - s.Min }

// Uniformity summarizes a surface indexed [y][x]. An empty surface yields the
// zero value.
func Uniformity(surface [][]float64) SurfaceStats {
	var cells []float64
	for _, row := range surface {
		cells = append(cells, row...)
	}
	if len(cells) == 0 {
		return SurfaceStats{}
	}
	mean, std := stat.MeanStdDev(cells, nil)
	return SurfaceStats{
		Min:    floats.Min(cells),
		Max:    floats.Max(cells),
		Mean:   mean,
		StdDev: std,
	}
}
