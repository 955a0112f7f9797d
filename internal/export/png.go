package export

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const pngDPI = 150

// surfaceGrid adapts a surface field to plotter.GridXYZ in cell units.
type surfaceGrid [][]float64

func (g surfaceGrid) Dims() (c, r int)   { return len(g[0]), len(g) }
func (g surfaceGrid) Z(c, r int) float64 { return g[r][c] }
func (g surfaceGrid) X(c int) float64    { return float64(c) }
func (g surfaceGrid) Y(r int) float64    { return float64(r) }

// WritePNG renders the temperature and power plots, and the surface field
// when present, stacked on one image of widthIn x heightIn inches.
func WritePNG(w io.Writer, d Data, widthIn, heightIn float64) error {
	plots, err := runPlots(d)
	if err != nil {
		return err
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(pngDPI),
	)
	dc := draw.New(c)

	rows := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		rows[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align(rows, tiles, dc)
	for i, p := range plots {
		p.Draw(canvases[i][0])
	}

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func runPlots(d Data) ([]*plot.Plot, error) {
	pTemp := plot.New()
	pTemp.Title.Text = fmt.Sprintf("%s - %s, %s probe", d.Name, d.Controller, d.Probe)
	pTemp.X.Label.Text = "Time (s)"
	pTemp.Y.Label.Text = "Temperature (°C)"

	names := make([]string, 0, len(d.Readouts))
	for name := range d.Readouts {
		names = append(names, name)
	}
	sort.Strings(names)

	target := make([]float64, len(d.Times))
	for i := range target {
		target[i] = d.Target
	}
	series := append([]string{"probe", "target"}, names...)
	values := append([][]float64{d.Probes, target}, make([][]float64, len(names))...)
	for i, name := range names {
		values[i+2] = d.Readouts[name]
	}
	for i, name := range series {
		line, err := plotter.NewLine(xys(d.Times, values[i]))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		if name == "target" {
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		}
		pTemp.Add(line)
		pTemp.Legend.Add(name, line)
	}
	pTemp.Legend.Top = true
	pTemp.Legend.Left = false
	pTemp.Add(plotter.NewGrid())

	pPower := plot.New()
	pPower.Title.Text = "Heater power"
	pPower.X.Label.Text = "Time (s)"
	pPower.Y.Label.Text = "Power (W)"
	for i, s := range []struct {
		name   string
		values []float64
	}{{"heater", d.Wattages}, {"heat loss", d.HeatLoss}} {
		line, err := plotter.NewLine(xys(d.Times, s.values))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		pPower.Add(line)
		pPower.Legend.Add(s.name, line)
	}
	pPower.Legend.Top = true
	pPower.Legend.Left = false

	plots := []*plot.Plot{pTemp, pPower}
	if len(d.Surface) > 0 && len(d.Surface[0]) > 0 {
		pSurf := plot.New()
		pSurf.Title.Text = "Final surface temperature"
		pSurf.X.Label.Text = "x (cells)"
		pSurf.Y.Label.Text = "y (cells)"
		pSurf.Add(plotter.NewHeatMap(surfaceGrid(d.Surface), palette.Heat(16, 1)))
		plots = append(plots, pSurf)
	}
	return plots, nil
}

func xys(xs, ys []float64) plotter.XYs {
	n := min(len(xs), len(ys))
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return pts
}
