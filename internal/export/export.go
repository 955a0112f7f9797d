package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/sim"
)

// Formats accepted by File.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatHTML = "html"
)

var ErrUnknownFormat = errors.New("export: unknown format")

// Data is the exported view of one run.
type Data struct {
	Name       string               `json:"name"`
	Controller string               `json:"controller"`
	Probe      string               `json:"probe"`
	Target     float64              `json:"target"`
	Ambient    float64              `json:"ambient"`
	Ticks      int                  `json:"ticks"`
	Times      []float64            `json:"times"`
	Probes     []float64            `json:"probe_temperatures"`
	Wattages   []float64            `json:"wattages"`
	HeatLoss   []float64            `json:"heat_loss"`
	Readouts   map[string][]float64 `json:"readouts"`
	Metrics    map[string]float64   `json:"metrics"`
	Surface    [][]float64          `json:"surface,omitempty"`
}

func NewData(cfg *config.Config, result *sim.Result) Data {
	d := Data{
		Name:       cfg.Name,
		Controller: cfg.Control.Controller,
		Probe:      cfg.Control.Probe,
		Target:     cfg.Control.Target,
		Ambient:    cfg.Environment.Ambient,
		Ticks:      result.TicksTaken,
		Times:      result.Times(),
		Probes:     result.Probes(),
		Wattages:   result.Wattages(),
		HeatLoss:   make([]float64, len(result.Samples)),
		Readouts:   make(map[string][]float64, len(result.ReadoutNames)),
		Metrics:    result.Metrics,
		Surface:    result.Surface,
	}
	for i, s := range result.Samples {
		d.HeatLoss[i] = s.HeatLoss
	}
	for _, name := range result.ReadoutNames {
		d.Readouts[name] = result.Readout(name)
	}
	return d
}

// File writes d to path in the given format. An empty format is taken from
// the file extension.
func File(path, format string, d Data) error {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch format {
	case FormatJSON, FormatSVG, FormatPNG, FormatHTML:
	default:
		return fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case FormatJSON:
		err = WriteJSON(f, d)
	case FormatSVG:
		_, err = f.WriteString(SVG(d, 960, 640))
	case FormatPNG:
		err = WritePNG(f, d, 10, 8)
	case FormatHTML:
		err = WriteHTML(f, d)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	return f.Close()
}
