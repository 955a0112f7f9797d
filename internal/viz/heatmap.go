package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeatMap renders a temperature field with half-block characters, two field
// rows per text line, scaled to cols x 2*rows samples. surface[y][x] is drawn
// with the highest y (the back edge) at the top.
func HeatMap(surface [][]float64, cols, rows int, lo, hi float64) string {
	if len(surface) == 0 || len(surface[0]) == 0 || cols <= 0 || rows <= 0 {
		return ""
	}
	ny, nx := len(surface), len(surface[0])

	sample := func(c, r int) float64 {
		x := c * nx / cols
		y := ny - 1 - r*ny/(2*rows)
		return surface[max(y, 0)][min(x, nx-1)]
	}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			upper := TemperatureHex(sample(c, 2*r), lo, hi)
			lower := TemperatureHex(sample(c, 2*r+1), lo, hi)
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(upper)).
				Background(lipgloss.Color(lower)).
				Render("▀"))
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Legend renders a horizontal color scale from lo to hi.
func Legend(width int, lo, hi float64) string {
	var b strings.Builder
	for i := 0; i < width; i++ {
		t := lo + (hi-lo)*float64(i)/float64(max(width-1, 1))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(TemperatureHex(t, lo, hi))).Render("█"))
	}
	return b.String()
}

// Row returns row y of the field with x increasing, i.e. a profile along the
// plate width.
func Row(surface [][]float64, y int) []float64 {
	if len(surface) == 0 {
		return nil
	}
	y = max(0, min(y, len(surface)-1))
	return append([]float64(nil), surface[y]...)
}
