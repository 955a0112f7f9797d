package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/control"
	"github.com/san-kum/bedsim/internal/monitoring"
	"github.com/san-kum/bedsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
	surfaceFile  = "surface.csv"
	configFile   = "config.yaml"
)

// ErrNoRuns is returned by Latest on an empty store.
var ErrNoRuns = errors.New("storage: no runs")

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Controller string             `json:"controller"`
	Probe      string             `json:"probe"`
	Target     float64            `json:"target"`
	Duration   int                `json:"duration"`
	Ticks      int                `json:"ticks"`
	Gains      *control.Gains     `json:"gains,omitempty"`
	Readouts   []string           `json:"readouts"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the metadata, the sample series and the configuration of a run
// and returns its ID.
func (s *Store) Save(cfg *config.Config, gains *control.Gains, result *sim.Result) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%s", ts.Format("20060102-150405"), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       cfg.Name,
		Timestamp:  ts,
		Controller: cfg.Control.Controller,
		Probe:      cfg.Control.Probe,
		Target:     cfg.Control.Target,
		Duration:   cfg.Simulation.Duration,
		Ticks:      result.TicksTaken,
		Gains:      gains,
		Readouts:   result.ReadoutNames,
		Metrics:    result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("storage: metadata: %w", err)
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", fmt.Errorf("storage: config: %w", err)
	}
	if err := writeSamples(filepath.Join(runDir, samplesFile), result); err != nil {
		return "", fmt.Errorf("storage: samples: %w", err)
	}
	if len(result.Surface) > 0 {
		if err := writeSurface(filepath.Join(runDir, surfaceFile), result.Surface); err != nil {
			return "", fmt.Errorf("storage: surface: %w", err)
		}
	}

	monitoring.Debugf("storage: saved run %s (%d samples)", runID, len(result.Samples))
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSamples(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{"time", "target", "probe", "wattage", "heat_loss"}, result.ReadoutNames...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, smp := range result.Samples {
		row := make([]string, 0, len(header))
		for _, v := range []float64{smp.Time, smp.Target, smp.Probe, smp.Wattage, smp.HeatLoss} {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		for _, v := range smp.Readouts {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeSurface(path string, surface [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range surface {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'f', 4, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// readSurface returns nil when the run has no surface file.
func readSurface(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	surface := make([][]float64, len(records))
	for y, record := range records {
		surface[y] = make([]float64, len(record))
		for x, field := range record {
			if surface[y][x], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, err
			}
		}
	}
	return surface, nil
}

// List returns all readable runs, oldest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			monitoring.Debugf("storage: skipping %s: %v", entry.Name(), err)
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

// Latest returns the ID of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrNoRuns
	}
	return runs[len(runs)-1].ID, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadConfig returns the configuration the run was made with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadResult rebuilds the sample series and metrics of a run.
func (s *Store) LoadResult(runID string) (*sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	result := &sim.Result{
		ReadoutNames: meta.Readouts,
		Metrics:      meta.Metrics,
		TicksTaken:   meta.Ticks,
		Samples:      make([]sim.Sample, 0, max(len(records)-1, 0)),
	}

	if result.Surface, err = readSurface(filepath.Join(s.baseDir, runID, surfaceFile)); err != nil {
		return nil, fmt.Errorf("storage: %s: surface: %w", runID, err)
	}
	if len(records) < 2 {
		return result, nil
	}

	for _, record := range records[1:] {
		vals := make([]float64, len(record))
		ok := true
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok || len(vals) < 5 {
			continue
		}
		result.Samples = append(result.Samples, sim.Sample{
			Time:     vals[0],
			Target:   vals[1],
			Probe:    vals[2],
			Wattage:  vals[3],
			HeatLoss: vals[4],
			Readouts: vals[5:],
		})
	}

	return result, nil
}
