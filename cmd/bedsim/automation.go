package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/bedsim/internal/analysis"
	"github.com/san-kum/bedsim/internal/automation"
	"github.com/san-kum/bedsim/internal/config"
	"github.com/san-kum/bedsim/internal/optim"
	"github.com/san-kum/bedsim/internal/storage"
)

var (
	steadyFraction float64

	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int

	trials   int
	mcSpread float64
	seed     int64
)

func automationCommands() []*cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "probe oscillation and surface uniformity of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&steadyFraction, "steady", 0.5, "trailing fraction of the run to analyze")

	scenarioCmd := &cobra.Command{
		Use:   "scenario <file>",
		Short: "run a scripted target schedule",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	bedFlags(scenarioCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one setting and compare a metric",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	bedFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "plate.thickness_mm", "setting to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 3, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 10, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().StringVar(&metricName, "metric", "itae", "metric to report")

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb convection and contact conductivities",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	bedFlags(mcCmd)
	mcCmd.Flags().IntVar(&trials, "trials", 16, "number of trials")
	mcCmd.Flags().Float64Var(&mcSpread, "spread", 0.3, "relative perturbation")
	mcCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")

	return []*cobra.Command{analyzeCmd, scenarioCmd, sweepCmd, mcCmd}
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	tail := analysis.SteadyState(result.Probes(), steadyFraction)
	if len(tail) < 4 {
		return fmt.Errorf("run %s: too few samples to analyze", runID)
	}

	fmt.Printf("run: %s (last %d s)\n", runID, len(tail))
	osc := analysis.DominantOscillation(tail, 1)
	if osc.Period == 0 {
		fmt.Printf("probe: settled at %.2f °C\n", osc.Mean)
	} else {
		fmt.Printf("probe: mean %.2f °C, oscillation ±%.3f K, period %.1f s\n", osc.Mean, osc.Amplitude, osc.Period)

		spectrum := analysis.NewSpectrum(tail, 1)
		amps := spectrum.Amplitudes[1:]
		if len(amps) > 80 {
			amps = amps[:80]
		}
		fmt.Println(asciigraph.Plot(amps,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("probe amplitude spectrum K"),
		))
	}

	if len(result.Surface) > 0 {
		u := analysis.Uniformity(result.Surface)
		fmt.Printf("surface: %.2f..%.2f °C, mean %.2f, spread %.2f K, σ %.3f K\n",
			u.Min, u.Max, u.Mean, u.Spread(), u.StdDev)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.Preset != "" && !cmd.Flags().Changed("preset") {
		preset = sc.Preset
	}
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running scenario %s (%d steps)...\n", sc.Name, len(sc.Steps))
	result, cfg, err := automation.RunScenario(ctx, base, sc)
	if err != nil && (result == nil || !errors.Is(err, ctx.Err())) {
		return err
	}

	runID, err := st.Save(cfg, nil, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("final probe: %.2f °C (target %.1f)\n", result.Final().Probe, result.Final().Target)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	sweep := &automation.ParameterSweep{
		Param:   sweepParam,
		Values:  optim.Span(sweepFrom, sweepTo, sweepSteps),
		Workers: workers,
	}
	fmt.Printf("sweeping %s over %d values...\n", sweepParam, len(sweep.Values))
	start := time.Now()
	results, err := automation.RunSweep(ctx, base, sweep)
	if err != nil {
		if errors.Is(err, config.ErrUnknownField) {
			return fmt.Errorf("%w (available: %v)", err, config.FieldNames())
		}
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tFINAL PROBE\tENERGY Wh\n", sweepParam, metricName)
	for _, r := range results {
		v, ok := r.Metrics[metricName]
		if !ok {
			v = math.NaN()
		}
		fmt.Fprintf(w, "%.4g\t%.4f\t%.2f\t%.2f\n", r.Value, v, r.Final.Probe, r.Metrics["heater_energy_wh"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start))
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %d trials, ±%.0f%% on %v...\n", trials, mcSpread*100, automation.Perturbed)
	results, err := automation.RunMonteCarlo(ctx, base, &automation.MonteCarlo{
		Trials:  trials,
		Spread:  mcSpread,
		Seed:    seed,
		Workers: workers,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, name := range automation.MetricNames(results) {
		s := automation.Summarize(results, name)
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", s.Metric, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
}
