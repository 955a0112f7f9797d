package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/bedsim/internal/viz"
)

var seriesColors = []string{"#ffaa00", "#00ccff", "#ff88ff", "#88ff88", "#ff5555", "#aaaaff"}

type box struct {
	x, y, w, h float64
}

// SVG renders the probe and readout temperatures, the heater wattage and, when
// present, the final surface field.
func SVG(d Data, width, height int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="monospace" font-size="12">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	w, h := float64(width), float64(height)
	temps := box{40, 30, w - 60, h*0.6 - 40}
	watts := box{40, h*0.6 + 20, w - 60, h*0.4 - 40}
	if len(d.Surface) > 0 {
		watts.w = w*0.6 - 60
	}

	sb.WriteString(fmt.Sprintf(`<text x="%.0f" y="20" fill="#ff8844">%s: %s, %s probe, target %.1f °C</text>
`, temps.x, d.Name, d.Controller, d.Probe, d.Target))

	names := make([]string, 0, len(d.Readouts))
	for name := range d.Readouts {
		names = append(names, name)
	}
	sort.Strings(names)

	lo, hi := math.Min(d.Ambient, d.Target), math.Max(d.Ambient, d.Target)
	series := [][]float64{d.Probes}
	for _, name := range names {
		series = append(series, d.Readouts[name])
	}
	for _, s := range series {
		for _, v := range s {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}

	sb.WriteString(frame(temps, "°C", lo, hi))
	sb.WriteString(hline(temps, d.Target, lo, hi, "#666688"))
	sb.WriteString(path(temps, d.Times, d.Probes, lo, hi, seriesColors[0], 1.5))
	legend := []string{"probe"}
	for i, name := range names {
		sb.WriteString(path(temps, d.Times, d.Readouts[name], lo, hi, seriesColors[(i+1)%len(seriesColors)], 1))
		legend = append(legend, name)
	}
	for i, name := range legend {
		sb.WriteString(fmt.Sprintf(`<text x="%.0f" y="%.0f" fill="%s">%s</text>
`, temps.x+temps.w-140, temps.y+14+float64(i)*14, seriesColors[i%len(seriesColors)], name))
	}

	wlo, whi := 0.0, 1.0
	for _, v := range d.Wattages {
		whi = math.Max(whi, v)
	}
	sb.WriteString(frame(watts, "W", wlo, whi))
	sb.WriteString(path(watts, d.Times, d.Wattages, wlo, whi, "#ff5555", 1))
	sb.WriteString(path(watts, d.Times, d.HeatLoss, wlo, whi, "#00ff88", 1))

	if len(d.Surface) > 0 {
		sb.WriteString(surface(box{w * 0.6, h*0.6 + 20, w*0.4 - 20, h*0.4 - 40}, d.Surface))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func frame(b box, unit string, lo, hi float64) string {
	return fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#444466"/>
<text x="%.1f" y="%.1f" fill="#888899" text-anchor="end">%.0f</text>
<text x="%.1f" y="%.1f" fill="#888899" text-anchor="end">%.0f %s</text>
`, b.x, b.y, b.w, b.h, b.x-4, b.y+b.h, lo, b.x-4, b.y+10, hi, unit)
}

func hline(b box, v, lo, hi float64, stroke string) string {
	y := scaleY(b, v, lo, hi)
	return fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="4 4"/>
`, b.x, y, b.x+b.w, y, stroke)
}

func scaleY(b box, v, lo, hi float64) float64 {
	if hi <= lo {
		return b.y + b.h
	}
	return b.y + b.h - (v-lo)/(hi-lo)*b.h
}

// path draws ys against xs inside b. The x range is taken from xs.
func path(b box, xs, ys []float64, lo, hi float64, stroke string, width float64) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}
	minX, maxX := xs[0], xs[n-1]
	rangeX := maxX - minX
	if rangeX == 0 {
		rangeX = 1
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="%.1f" d="M`, stroke, width))
	for i := 0; i < n; i++ {
		x := b.x + (xs[i]-minX)/rangeX*b.w
		y := scaleY(b, ys[i], lo, hi)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>
`)
	return sb.String()
}

// surface draws field[y][x] with the back edge on top, keeping the aspect
// ratio of the field.
func surface(b box, field [][]float64) string {
	ny, nx := len(field), len(field[0])
	cell := math.Min(b.w/float64(nx), b.h/float64(ny))

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range field {
		for _, v := range row {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}

	var sb strings.Builder
	sb.WriteString(`<g shape-rendering="crispEdges">
`)
	for y, row := range field {
		for x, v := range row {
			sb.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>
`, b.x+float64(x)*cell, b.y+float64(ny-1-y)*cell, cell, cell, viz.TemperatureHex(v, lo, hi)))
		}
	}
	sb.WriteString("</g>\n")
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="#888899">surface %.1f to %.1f °C</text>
`, b.x, b.y+float64(ny)*cell+14, lo, hi))
	return sb.String()
}
