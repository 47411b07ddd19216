package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/analysis"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/config"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/experiment"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/metrics"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/render"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/sim"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/storage"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/viz"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d steps of %gs on a %dx%d grid...\n", cfg.Steps, cfg.TimeStep, cfg.Grid.NX, cfg.Grid.NY)
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	runID, err := st.Save(res)
	if err != nil {
		return err
	}

	if plotPNG {
		if err := writePNGs(filepath.Join(dataDir, runID), res); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", res.Wall)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (%.2f h simulated)\n", res.Steps, res.Elapsed/3600)
	if res.Fault != nil {
		fmt.Printf("fault: %v\n", res.Fault)
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(res.Metrics) {
		fmt.Printf("  %s: %.6g\n", name, res.Metrics[name])
	}
	return nil
}

func writePNGs(dir string, res *experiment.Result) error {
	opts := render.DefaultOptions()
	for _, v := range dynamo.Variables() {
		if err := render.SaveHeatmap(filepath.Join(dir, v.String()+".png"), res.Final.State, res.Final.Grid, v, opts); err != nil {
			return err
		}
	}
	if err := render.SaveHistory(filepath.Join(dir, "history_pressure.png"), res.History.Pressure, dynamo.Pressure, res.Final.TimeStep, opts); err != nil {
		return err
	}
	return render.SaveHistory(filepath.Join(dir, "history_temperature.png"), res.History.Temperature, dynamo.Temperature, res.Final.TimeStep, opts)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctrl, err := experiment.Build(cfg, log)
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(ctrl, cfg.FPS), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tGRID\tSTEPS\tDT\tINIT\tINTEG\tBOUNDARY\tFAULT")
	for _, run := range runs {
		fault := "-"
		if run.Fault != "" {
			fault = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%gs\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Grid.NX, run.Grid.NY,
			run.Steps,
			run.TimeStep,
			run.Initializer,
			run.Integrator,
			run.Boundary,
			fault,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	h, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	if h.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("probe: %s\n", meta.Probe)
	fmt.Printf("samples: %d\n\n", h.Len())

	for _, series := range []struct {
		samples []sim.HistorySample
		caption string
	}{
		{h.Pressure, "pressure at probe (Pa)"},
		{h.Temperature, "temperature at probe (K)"},
	} {
		data := make([]float64, len(series.samples))
		for i, s := range series.samples {
			data[i] = s.Value
		}
		fmt.Println(asciigraph.Plot(data, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption(series.caption)))
		fmt.Println()
	}
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	v, err := dynamo.ParseVariable(field)
	if err != nil {
		return err
	}

	state, grid, err := storage.New(dataDir).LoadFields(runID)
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = filepath.Join(dataDir, runID, v.String()+".png")
	}
	if err := render.SaveHeatmap(path, state, grid, v, render.DefaultOptions()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func inspectRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	state, _, err := st.LoadFields(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("grid: %dx%d, dx=%gm dy=%gm\n", meta.Grid.NX, meta.Grid.NY, meta.Grid.DX, meta.Grid.DY)
	fmt.Printf("steps: %d of %gs (%s, %s, %s)\n", meta.Steps, meta.TimeStep, meta.Initializer, meta.Integrator, meta.Boundary)
	if meta.Fault != "" {
		fmt.Printf("fault: %s\n", meta.Fault)
	}
	fmt.Println()

	s := seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(s))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tMEAN\tSTD\tMIN\tMAX\tSAMPLES")
	for _, v := range dynamo.Variables() {
		f := state.Field(v)
		sum := metrics.Describe(f)
		fmt.Fprintf(w, "%s\t%.6g\t%.4g\t%.6g\t%.6g\t", v, sum.Mean, sum.StdDev, sum.Min, sum.Max)
		for _, cv := range metrics.Sample(f, numSamples, rng) {
			fmt.Fprintf(w, "%s=%.5g ", cv.Cell, cv.Value)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	h, err := storage.New(dataDir).LoadHistory(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, h)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	h, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, h)
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	h, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tPERIOD\tFREQ (mHz)\tPOWER")
	for _, series := range []struct {
		name    string
		samples []sim.HistorySample
	}{
		{"pressure", h.Pressure},
		{"temperature", h.Temperature},
	} {
		peaks := analysis.Spectrum(analysis.Values(series.samples), meta.TimeStep)
		if len(peaks) == 0 {
			fmt.Fprintf(w, "%s\t-\t-\t-\n", series.name)
			continue
		}
		sort.Slice(peaks, func(a, b int) bool { return peaks[a].Power > peaks[b].Power })
		for _, pk := range peaks[:min(numSamples, len(peaks))] {
			fmt.Fprintf(w, "%s\t%v\t%.4f\t%.4g\n", series.name,
				time.Duration(pk.Period*float64(time.Second)).Round(time.Second), pk.Frequency*1000, pk.Power)
		}
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := experiment.Compare(ctx, base, args, log)
	if err != nil {
		return err
	}
	fmt.Printf("seed: %d\n", results[0].Config.Seed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "INTEGRATOR\tSTEPS\tWALL\tPROBE P\tPROBE T\tMASS DRIFT\tMAX |Δ| vs %s\n", args[0])
	for i, res := range results {
		h := res.History
		probeP, probeT := math.NaN(), math.NaN()
		if h.Len() > 0 {
			probeP, probeT = h.Pressure[h.Len()-1].Value, h.Temperature[h.Len()-1].Value
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%.3f\t%.4f\t%.3g\t%.3g\n",
			args[i], res.Steps, res.Wall.Round(time.Millisecond), probeP, probeT,
			res.Metrics["mass_drift"], experiment.MaxAbsDiff(results[0], res))
	}
	return w.Flush()
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctrl, err := experiment.Build(cfg, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := ctrl.Run(context.Background(), benchSteps); err != nil {
		return err
	}
	elapsed := time.Since(start)

	perStep := elapsed / time.Duration(max(1, benchSteps))
	fmt.Printf("grid: %dx%d  integrator: %s\n", cfg.Grid.NX, cfg.Grid.NY, cfg.Integrator)
	fmt.Printf("steps: %d in %v (%v/step, %.1f steps/s)\n", benchSteps, elapsed, perStep, float64(benchSteps)/elapsed.Seconds())
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tINIT\tINTEG\tBOUNDARY\tDT\tSTEPS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%gs\t%d\n", name, p.Initializer, p.Integrator, p.Boundary, p.TimeStep, p.Steps)
	}
	return w.Flush()
}

func listComponents(cmd *cobra.Command, args []string) error {
	comps := experiment.Components()
	for _, kind := range sortedKeys(comps) {
		fmt.Printf("%s:\n", kind)
		for _, name := range comps[kind] {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
