package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logFile  string

	// Run configuration flags. They override the config file or preset
	// only when set on the command line.
	configFile    string
	preset        string
	timeStep      float64
	steps         int
	nx, ny        int
	dx, dy        float64
	seed          int64
	integrator    string
	initializer   string
	boundaryMode  string
	stageBoundary bool
	probeI        int
	probeJ        int
	netcdfPath    string
	noValidate    bool
	frameRate     int

	// Output flags.
	plotPNG    bool
	field      string
	outPath    string
	numSamples int
	benchSteps int
)

// main registers the commands and runs the CLI. With no subcommand it opens
// the live view on the default configuration.
func main() {
	rootCmd := &cobra.Command{
		Use:          "nwpsim",
		Short:        "2-D atmospheric time-stepping lab",
		SilenceUsage: true,
		RunE:         runLive,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nwpsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	addConfigFlags(rootCmd)
	rootCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&plotPNG, "png", false, "also write heatmap and history PNGs into the run directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in the terminal with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the probe history of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a field of a run's final state to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&field, "field", "pressure", "field to render (pressure, temperature, wind_u, wind_v)")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run>/<field>.png)")

	inspectCmd := &cobra.Command{
		Use:   "inspect [run_id]",
		Short: "show field statistics and sampled cells of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectRun,
	}
	inspectCmd.Flags().IntVar(&numSamples, "samples", 5, "number of random cells to sample per field")
	inspectCmd.Flags().Int64Var(&seed, "seed", 0, "sampling seed (0 uses the clock)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the probe history to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and history to JSON on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "show the dominant oscillation periods at the probe",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}
	spectrumCmd.Flags().IntVar(&numSamples, "top", 5, "number of peaks to show")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same configuration",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addConfigFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure step throughput",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	addConfigFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchSteps, "n", 50, "steps to time")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	componentsCmd := &cobra.Command{
		Use:   "components",
		Short: "list registered initializers, integrators, boundaries and metrics",
		Args:  cobra.NoArgs,
		RunE:  listComponents,
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file from the defaults or a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initConfigCmd.Flags().StringVar(&preset, "preset", "", "start from this preset")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, renderCmd, inspectCmd, exportCSVCmd, exportJSONCmd,
		spectrumCmd, compareCmd, benchCmd, presetsCmd, componentsCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&timeStep, "dt", config.DefaultTimeStep, "time step in seconds")
	f.IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	f.IntVar(&nx, "nx", 100, "grid cells along x")
	f.IntVar(&ny, "ny", 100, "grid cells along y")
	f.Float64Var(&dx, "dx", 10000, "grid spacing along x in metres")
	f.Float64Var(&dy, "dy", 10000, "grid spacing along y in metres")
	f.Int64Var(&seed, "seed", 0, "seed for the randomized initializer (0 uses the clock)")
	f.StringVar(&integrator, "integrator", "rk4", "integrator")
	f.StringVar(&initializer, "initializer", "analytic", "initial condition")
	f.StringVar(&boundaryMode, "boundary", "ghost", "boundary mode (ghost, wrap, none)")
	f.BoolVar(&stageBoundary, "stage-boundary", false, "apply the boundary after every RK4 stage")
	f.IntVar(&probeI, "probe-i", config.DefaultProbeI, "probe cell row")
	f.IntVar(&probeJ, "probe-j", config.DefaultProbeJ, "probe cell column")
	f.StringVar(&netcdfPath, "netcdf", "", "NetCDF file for the netcdf initializer")
	f.BoolVar(&noValidate, "no-validate", false, "let NaN/Inf propagate instead of pausing")
}

// loadConfig builds the run configuration: defaults, then preset, then
// config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.TimeStep = timeStep
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("nx") {
		cfg.Grid.NX = nx
	}
	if flags.Changed("ny") {
		cfg.Grid.NY = ny
	}
	if flags.Changed("dx") {
		cfg.Grid.DX = dx
	}
	if flags.Changed("dy") {
		cfg.Grid.DY = dy
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("initializer") {
		cfg.Initializer = initializer
	}
	if flags.Changed("boundary") {
		cfg.Boundary = boundaryMode
	}
	if flags.Changed("stage-boundary") {
		cfg.StageBoundary = stageBoundary
	}
	if flags.Changed("probe-i") {
		cfg.Probe.I = probeI
	}
	if flags.Changed("probe-j") {
		cfg.Probe.J = probeJ
	}
	if flags.Changed("netcdf") {
		cfg.NetCDF = netcdfPath
		if !flags.Changed("initializer") {
			cfg.Initializer = "netcdf"
		}
	}
	if flags.Changed("no-validate") {
		cfg.ValidateState = !noValidate
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger. quiet routes logs nowhere unless a
// log file was given, for commands that own the terminal.
func newLogger(quiet bool) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		return slog.New(slog.NewTextHandler(f, opts)), func() { f.Close() }, nil
	}
	if quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
}
