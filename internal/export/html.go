package export

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var surfaceRamp = []string{"#000033", "#2200aa", "#aa0088", "#ff3300", "#ffaa00", "#ffff88"}

// WriteHTML renders an interactive page with the temperature and power series
// and the final surface field.
func WriteHTML(w io.Writer, d Data) error {
	page := components.NewPage()
	page.AddCharts(temperatureChart(d), powerChart(d))
	if len(d.Surface) > 0 {
		page.AddCharts(surfaceChart(d))
	}
	return page.Render(w)
}

func timeAxis(d Data) []string {
	xs := make([]string, len(d.Times))
	for i, t := range d.Times {
		xs[i] = fmt.Sprintf("%.0f", t)
	}
	return xs
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: math.Round(v*100) / 100}
	}
	return data
}

func temperatureChart(d Data) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "bedsim " + d.Name, Theme: "dark", Width: "1100px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Temperatures", Subtitle: fmt.Sprintf("%s, %s probe, target %.1f °C", d.Controller, d.Probe, d.Target)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "°C"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "s"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	line.SetXAxis(timeAxis(d)).AddSeries("probe", lineData(d.Probes))

	names := make([]string, 0, len(d.Readouts))
	for name := range d.Readouts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		line.AddSeries(name, lineData(d.Readouts[name]))
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line
}

func powerChart(d Data) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1100px", Height: "320px"}),
		charts.WithTitleOpts(opts.Title{Title: "Power"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "W"}),
	)
	line.SetXAxis(timeAxis(d)).
		AddSeries("heater", lineData(d.Wattages)).
		AddSeries("heat loss", lineData(d.HeatLoss))
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line
}

// surfaceChart draws the field as a scatter colored by a visual map,
// Surface[y][x] at (x, y).
func surfaceChart(d Data) *charts.Scatter {
	lo, hi := math.Inf(1), math.Inf(-1)
	data := make([]opts.ScatterData, 0, len(d.Surface)*len(d.Surface[0]))
	for y, row := range d.Surface {
		for x, v := range row {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
			data = append(data, opts.ScatterData{Value: []interface{}{x, y, math.Round(v*10) / 10}})
		}
	}

	nx, ny := len(d.Surface[0]), len(d.Surface)
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "700px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Surface", Subtitle: fmt.Sprintf("%dx%d cells", nx, ny)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: nx - 1, Name: "x"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: ny - 1, Name: "y"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: surfaceRamp},
		}),
	)
	scatter.AddSeries("surface", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
	return scatter
}
