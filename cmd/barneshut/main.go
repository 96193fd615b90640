package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/barneshut/internal/config"
	"github.com/san-kum/barneshut/internal/integrators"
	"github.com/san-kum/barneshut/internal/layout"
)

var (
	dataDir     string
	logLevel    string
	logFormat   string
	configFile  string
	preset      string
	layoutName  string
	integName   string
	numBodies   int
	dt          float64
	steps       int
	sampleEvery int
	theta       float64
	gravity     float64
	softening   float64
	seed        int64
	workers     int
	validate    bool
	// run
	saveName    string
	noSave      bool
	metricsAddr string
	// accuracy and bench
	thetaList string
	sizeList  string
	// snapshot and plot
	outFile  string
	svgFile  string
	drawTree bool
	imgSize  int

	log = logrus.New()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "barneshut",
		Short:         "barnes-hut gravity lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".barneshut", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save its diagnostics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&saveName, "save", "", "run name (default preset or layout name)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the run to the data directory")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "write an svg frame of the bodies and tree after the configured steps",
		Args:  cobra.NoArgs,
		RunE:  runSnapshot,
	}
	addSimFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "frame.svg", "output file")
	snapshotCmd.Flags().BoolVar(&drawTree, "tree", true, "draw the quadtree")
	snapshotCmd.Flags().IntVar(&imgSize, "size", 800, "image size in pixels")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().IntVar(&workers, "workers", 0, "force workers (0 uses config)")
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write runs to the data directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the energy series to an svg file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	accuracyCmd := &cobra.Command{
		Use:   "accuracy",
		Short: "compare tree forces against direct summation over theta",
		Args:  cobra.NoArgs,
		RunE:  runAccuracy,
	}
	addSimFlags(accuracyCmd)
	accuracyCmd.Flags().StringVar(&thetaList, "thetas", "0.1,0.3,0.5,0.7,1.0", "comma separated theta values")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time force backends over body counts",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().StringVar(&sizeList, "sizes", "100,500,1000,2000", "comma separated body counts")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets and layouts",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, snapshotCmd, scenarioCmd, listCmd, plotCmd, exportCmd,
		accuracyCmd, benchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&layoutName, "layout", config.DefaultLayout, "initial layout ("+strings.Join(layout.Names(), ", ")+")")
	cmd.Flags().StringVar(&integName, "integrator", integrators.Default, "integrator ("+strings.Join(integrators.Names(), ", ")+")")
	cmd.Flags().IntVarP(&numBodies, "bodies", "n", config.DefaultCount, "number of bodies for the layout")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "record diagnostics every n steps")
	cmd.Flags().Float64Var(&theta, "theta", 0.5, "opening threshold")
	cmd.Flags().Float64Var(&gravity, "g", 1, "gravitational constant")
	cmd.Flags().Float64Var(&softening, "softening", 0.5, "softening length")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "force workers (0 uses all cpus)")
	cmd.Flags().BoolVar(&validate, "validate", false, "stop when a body becomes non-finite")
}

func setupLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	switch logFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format: %s", logFormat)
	}
	return nil
}

// resolveConfig layers a preset, then a config file, then explicitly set
// flags over the default configuration.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := ""

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}

	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
		}
	}

	fl := cmd.Flags()
	if fl.Changed("layout") || (preset == "" && configFile == "") {
		cfg.Layout.Name = layoutName
		cfg.Bodies = nil
	}
	switch {
	case fl.Changed("bodies"):
		cfg.Layout.Count = numBodies
	case fl.Changed("layout"):
		// take the layout's own count
		cfg.Layout.Count = 0
	}
	if fl.Changed("integrator") {
		cfg.Integrator = integName
	}
	if fl.Changed("dt") {
		cfg.Dt = dt
	}
	if fl.Changed("steps") {
		cfg.Steps = steps
	}
	if fl.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if fl.Changed("theta") {
		cfg.Engine.Theta = theta
	}
	if fl.Changed("g") {
		cfg.Engine.G = gravity
	}
	if fl.Changed("softening") {
		cfg.Engine.Softening = softening
	}
	if fl.Changed("seed") {
		cfg.Seed = seed
	}
	if fl.Changed("workers") {
		cfg.Workers = workers
	}
	if fl.Changed("validate") {
		cfg.ValidateState = validate
	}

	if name == "" {
		name = cfg.Layout.Name
	}
	return cfg, name, cfg.Validate()
}
