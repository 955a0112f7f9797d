package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/control"
	"github.com/san-kum/bedsim/internal/experiment"
	"github.com/san-kum/bedsim/internal/export"
	"github.com/san-kum/bedsim/internal/monitoring"
	"github.com/san-kum/bedsim/internal/optim"
	"github.com/san-kum/bedsim/internal/sim"
	"github.com/san-kum/bedsim/internal/storage"
	"github.com/san-kum/bedsim/internal/viz"
)

var (
	dataDir string
	verbose bool

	configFile string
	preset     string

	target     float64
	probe      string
	controller string
	duration   int
	resolution float64
	power      float64
	ambient    float64
	sticker    bool
	kp, ki, kd float64
	workers    int
	iterations int

	format  string
	outPath string
	force   bool
	theme   string

	search     bool
	points     int
	spread     float64
	metricName string

	benchTicks int
	benchRuns  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bedsim",
		Short: "heated bed thermal simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			monitoring.SetVerbose(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bedsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	bedFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data (json, svg, png, html)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&format, "format", "f", export.FormatJSON, "json, svg, png or html")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (json defaults to stdout)")
	exportCmd.Flags().StringVar(&theme, "theme", "thermal", "surface color ramp for svg")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	bedFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "thermal", "color ramp ("+fmt.Sprint(viz.ThemeNames())+")")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "print analytic PID tuning",
		Args:  cobra.NoArgs,
		RunE:  tuneBed,
	}
	bedFlags(tuneCmd)
	tuneCmd.Flags().BoolVar(&search, "search", false, "grid search around the analytic gains")
	tuneCmd.Flags().IntVar(&points, "points", 3, "factors per gain")
	tuneCmd.Flags().Float64Var(&spread, "spread", 0.5, "factor range 1±spread")
	tuneCmd.Flags().StringVar(&metricName, "metric", "itae", "metric to minimize")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration files",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from preset")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(initCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the solver",
		Args:  cobra.NoArgs,
		RunE:  benchBed,
	}
	bedFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 60, "ticks per run")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 1, "concurrent runs")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, liveCmd, tuneCmd, presetsCmd, configCmd, benchCmd)
	rootCmd.AddCommand(automationCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func bedFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&target, "target", config.DefaultTarget, "target temperature °C")
	f.StringVar(&probe, "probe", "heater", "control probe (heater, plate)")
	f.StringVar(&controller, "controller", config.ControllerPID, "controller (pid, bangbang, manual)")
	f.IntVar(&duration, "time", config.DefaultDuration, "duration in seconds")
	f.Float64Var(&resolution, "resolution", config.DefaultResolution, "grid resolution mm")
	f.Float64Var(&power, "power", config.DefaultPowerDensity, "heater power density W/cm²")
	f.Float64Var(&ambient, "ambient", config.DefaultAmbient, "ambient temperature °C")
	f.BoolVar(&sticker, "sticker", true, "magnetic sticker between plate and sheet")
	f.Float64Var(&kp, "kp", 0, "pid kp (overrides tuning)")
	f.Float64Var(&ki, "ki", 0, "pid ki (overrides tuning)")
	f.Float64Var(&kd, "kd", 0, "pid kd (overrides tuning)")
	f.IntVar(&workers, "workers", 0, "goroutines per integration pass")
	f.IntVar(&iterations, "iterations", config.DefaultIterationsPerTick, "sub-steps per tick")
}

// loadConfig resolves preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.Control.Target = target
	}
	if flags.Changed("probe") {
		cfg.Control.Probe = probe
	}
	if flags.Changed("controller") {
		cfg.Control.Controller = controller
	}
	if flags.Changed("time") {
		cfg.Simulation.Duration = duration
	}
	if flags.Changed("resolution") {
		cfg.Simulation.Resolution = resolution
	}
	if flags.Changed("power") {
		cfg.Heater.PowerDensity = power
	}
	if flags.Changed("ambient") {
		cfg.Environment.Ambient = ambient
	}
	if flags.Changed("sticker") {
		cfg.Sticker.Enabled = sticker
	}
	if flags.Changed("workers") {
		cfg.Simulation.Workers = workers
	}
	if flags.Changed("iterations") {
		cfg.Simulation.IterationsPerTick = iterations
	}
	if flags.Changed("kp") || flags.Changed("ki") || flags.Changed("kd") {
		cfg.Control.Gains = &control.Gains{Kp: kp, Ki: ki, Kd: kd}
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s (%s, %s probe, target %.1f °C)...\n", exp.Config().Name, exp.Config().Control.Controller, exp.Config().Control.Probe, exp.Config().Control.Target)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		fmt.Println("interrupted, saving partial run")
	}
	elapsed := time.Since(start)

	runID, err := st.Save(exp.Config(), pidGains(exp), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.TicksTaken)
	final := result.Final()
	fmt.Printf("final probe: %.2f °C, heater %.1f W\n", final.Probe, final.Wattage)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func pidGains(exp *experiment.Experiment) *control.Gains {
	if p, ok := exp.Simulation().Controller().(*control.PID); ok {
		g := p.Gains()
		return &g
	}
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tTICKS\tCTRL\tPROBE\tTARGET")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%.1f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Controller,
			run.Probe,
			run.Target,
		)
	}

	return w.Flush()
}

// resolveRun returns the requested run ID or the latest one.
func resolveRun(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return st.Latest()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	if len(result.Samples) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("bed: %s, %s controller, %s probe\n", meta.Name, meta.Controller, meta.Probe)
	fmt.Printf("samples: %d\n\n", len(result.Samples))

	target := make([]float64, len(result.Samples))
	for i, s := range result.Samples {
		target[i] = s.Target
	}
	graph := asciigraph.PlotMany([][]float64{result.Probes(), target},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Yellow, asciigraph.Gray),
		asciigraph.Caption("probe temperature °C (target gray)"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(result.Wattages(),
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("heater power W"),
	)
	fmt.Println(graph)
	fmt.Println()

	if surface := result.Readout("surface_center"); len(surface) > 1 {
		graph = asciigraph.Plot(surface,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("surface center °C"),
		)
		fmt.Println(graph)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	data := export.NewData(cfg, result)
	if outPath == "" {
		if format == export.FormatJSON {
			return export.WriteJSON(os.Stdout, data)
		}
		outPath = filepath.Join(".", runID+"."+format)
	}
	if err := export.File(outPath, format, data); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", runID, outPath)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)
	return viz.RunLive(func() (*experiment.Experiment, error) {
		return experiment.New(cfg)
	})
}

func tuneBed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	t := exp.Tuning()
	plant := exp.Simulation().Plant()
	fmt.Printf("bed: %.0fx%.0f mm, thermal mass %.0f J/K, %s probe\n",
		plant.Width*1000, plant.Height*1000, plant.ThermalMass, exp.Config().Control.Probe)
	fmt.Printf("plant: K=%.4f K/W  T1=%.1f s  L=%.1f s\n", t.K, t.T1, t.L)
	fmt.Printf("times: Ti=%.1f s  Td=%.2f s\n", t.Ti, t.Td)
	fmt.Printf("gains: kp=%.4f ki=%.6f kd=%.4f\n", t.Kp, t.Ki, t.Kd)

	if !search {
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	factors := optim.Span(1-spread, 1+spread, points)
	fmt.Printf("\nsearching %d combinations by %s...\n", points*points*points, metricName)
	start := time.Now()
	best, score, err := optim.GainSearch(ctx, cfg, factors, metricName, workers)
	if err != nil {
		return err
	}
	fmt.Printf("best in %v: kp=%.4f ki=%.6f kd=%.4f (%s=%.4f)\n",
		time.Since(start), best.Kp, best.Ki, best.Kd, metricName, score)
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "bedsim.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s exists (use --force)", path)
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return fmt.Errorf("unknown preset: %s", preset)
		}
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func benchBed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Simulation.Duration = benchTicks

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	g := exp.Simulation().Grid()
	fmt.Printf("benchmarking %s: %dx%dx%d cells, %d sub-steps per tick\n\n",
		exp.Config().Name, g.CountX, g.CountY, len(g.Layers), exp.Simulation().Iterations())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUNS\tTICKS\tTIME\tTICKS/SEC\tCELL-STEPS/SEC")

	ctx, cancel := signalContext()
	defer cancel()

	cells := float64(len(g.Temperatures) * exp.Simulation().Iterations())

	start := time.Now()
	if _, err := exp.Run(ctx); err != nil {
		return err
	}
	elapsed := time.Since(start)
	rate := float64(benchTicks) / elapsed.Seconds()
	fmt.Fprintf(w, "1\t%d\t%v\t%.1f\t%.3g\n", benchTicks, elapsed, rate, rate*cells)

	if benchRuns > 1 {
		ens := sim.NewEnsemble(benchRuns, 0, func(i int) (*sim.Simulator, error) {
			e, err := experiment.New(cfg)
			if err != nil {
				return nil, err
			}
			return e.GetSimulator(), nil
		})
		start = time.Now()
		if _, err := ens.Run(ctx, exp.SimConfig()); err != nil {
			return err
		}
		elapsed = time.Since(start)
		rate = float64(benchTicks*benchRuns) / elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%d\t%v\t%.1f\t%.3g\n", benchRuns, benchTicks*benchRuns, elapsed, rate, rate*cells)
	}

	return w.Flush()
}
