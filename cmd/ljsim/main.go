package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/ljsim/internal/analysis"
	"github.com/san-kum/ljsim/internal/automation"
	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/engine"
	"github.com/san-kum/ljsim/internal/experiment"
	"github.com/san-kum/ljsim/internal/export"
	"github.com/san-kum/ljsim/internal/logging"
	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/optim"
	"github.com/san-kum/ljsim/internal/potential"
	"github.com/san-kum/ljsim/internal/sim"
	"github.com/san-kum/ljsim/internal/storage"
	"github.com/san-kum/ljsim/internal/trajectory"
	"github.com/san-kum/ljsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	configFile string
	preset     string

	temperature  float64
	steps        int
	printProp    int
	printXYZ     int
	maxDisp      float64
	scaleFreq    int
	timeStep     float64
	seed         int64
	workers      int
	numParticles int
	density      float64
	boxLength    float64
	cutoff       float64
	switchR      float64
	placement    string
	inputFile    string

	// live view
	stepsPerFrame int
	theme         string

	// analysis
	rdfBins    int
	rdfRMax    float64
	rdfDiscard int
	blocks     int

	replicas int

	svgOutput   string
	svgProperty string

	sweepParam   string
	sweepValues  []float64
	sweepDiscard int
	saveRuns     bool

	gridSpecs  []string
	targetFlag string

	benchParticles int
	benchRepeats   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ljsim",
		Short: "lennard-jones monte carlo and molecular dynamics",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(os.Stderr, logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ljsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [method]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run properties",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run properties to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and properties to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [method]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [method]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 50, "steps advanced per frame")
	liveCmd.Flags().StringVar(&theme, "theme", "argon", "color theme")

	rdfCmd := &cobra.Command{
		Use:   "rdf [run_id]",
		Short: "radial distribution function of a stored trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  rdfRun,
	}
	rdfCmd.Flags().IntVar(&rdfBins, "bins", 100, "histogram bins")
	rdfCmd.Flags().Float64Var(&rdfRMax, "rmax", 0, "largest distance (default half the box)")
	rdfCmd.Flags().IntVar(&rdfDiscard, "discard", 1, "leading frames to skip")

	statsCmd := &cobra.Command{
		Use:   "stats [run_id]",
		Short: "block averages of run properties",
		Args:  cobra.ExactArgs(1),
		RunE:  statsRun,
	}
	statsCmd.Flags().IntVar(&blocks, "blocks", 5, "number of blocks")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [method]",
		Short: "run independent replicas concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&replicas, "replicas", 4, "number of replicas")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a property series, g(r) or the final frame as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOutput, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&svgProperty, "property", "energy", "property column, rdf or box")
	exportSVGCmd.Flags().IntVar(&rdfBins, "bins", 100, "histogram bins (rdf)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addConfigFlags(scenarioCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [method]",
		Short: "average energy and pressure across values of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "temperature", fmt.Sprintf("parameter to vary %v", config.Params()))
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", nil, "parameter values")
	sweepCmd.Flags().IntVar(&sweepDiscard, "discard", 0, "leading reports to skip per point")
	sweepCmd.Flags().BoolVar(&saveRuns, "save", false, "store every point as a run")

	searchCmd := &cobra.Command{
		Use:   "search [method]",
		Short: "grid search for the state point closest to a target metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearch,
	}
	addConfigFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "grid axis as name=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&targetFlag, "target", "pressure=1", "target as metric=value")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the pair sum",
		RunE:  benchEngine,
	}
	benchCmd.Flags().IntVar(&benchParticles, "particles", 2048, "particle count")
	benchCmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "number density")
	benchCmd.Flags().Float64Var(&cutoff, "cutoff", config.DefaultCutoff, "cutoff radius")
	benchCmd.Flags().IntVar(&benchRepeats, "repeats", 10, "evaluations per worker count")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd, liveCmd, rdfCmd, statsCmd, ensembleCmd, exportSVGCmd, scenarioCmd, sweepCmd, searchCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&temperature, "temperature", config.DefaultTemperature, "temperature")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&printProp, "print-prop", config.DefaultPrintProp, "steps between property reports")
	cmd.Flags().IntVar(&printXYZ, "print-xyz", config.DefaultPrintXYZ, "steps between trajectory frames")
	cmd.Flags().Float64Var(&maxDisp, "max-disp", config.DefaultMaxDisp, "initial maximum displacement (monteCarlo)")
	cmd.Flags().IntVar(&scaleFreq, "scale-freq", config.DefaultScaleFreq, "steps between velocity rescales, 0 for NVE (molecularDynamics)")
	cmd.Flags().Float64Var(&timeStep, "dt", config.DefaultTimeStep, "timestep (molecularDynamics)")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "pair sum workers (0 = all CPUs)")
	cmd.Flags().IntVar(&numParticles, "particles", config.DefaultNumParticles, "number of particles")
	cmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "number density")
	cmd.Flags().Float64Var(&boxLength, "length", 0, "box edge (overrides density)")
	cmd.Flags().Float64Var(&cutoff, "cutoff", config.DefaultCutoff, "cutoff radius")
	cmd.Flags().Float64Var(&switchR, "switch", 0, "switching distance (0 disables)")
	cmd.Flags().StringVar(&placement, "placement", config.PlacementLattice, "initial placement (lattice, random, file)")
	cmd.Flags().StringVar(&inputFile, "input", "", "starting configuration file (implies --placement file)")
}

// resolveConfig layers defaults, preset, config file, environment and flags,
// in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Method = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Method, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Method))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Method = args[0]
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("temperature") {
		cfg.Temperature = temperature
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("print-prop") {
		cfg.PrintProp = printProp
	}
	if flags.Changed("print-xyz") {
		cfg.PrintXYZ = printXYZ
	}
	if flags.Changed("max-disp") {
		cfg.MaxDisp = maxDisp
	}
	if flags.Changed("scale-freq") {
		cfg.ScaleFreq = scaleFreq
	}
	if flags.Changed("dt") {
		cfg.TimeStep = timeStep
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("particles") {
		cfg.Box.NumParticles = numParticles
	}
	if flags.Changed("density") {
		cfg.Box.Density = density
		cfg.Box.Length = 0
	}
	if flags.Changed("length") {
		cfg.Box.Length = boxLength
	}
	if flags.Changed("cutoff") {
		cfg.Potential.Cutoff = cutoff
	}
	if flags.Changed("switch") {
		cfg.Potential.Switch = switchR
	}
	if flags.Changed("placement") {
		cfg.Box.Placement = placement
	}
	if flags.Changed("input") {
		cfg.Box.File = inputFile
		cfg.Box.Placement = config.PlacementFile
	}

	if cfg.CutoffExceedsHalfBox() {
		logger.Warn("cutoff exceeds half the box, minimum image is not exact",
			"cutoff", cfg.Potential.Cutoff, "half_box", cfg.BoxLength()/2)
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Create(cfg.Method)
	if err != nil {
		return err
	}

	xyz, err := os.Create(st.TrajectoryPath(runID))
	if err != nil {
		return err
	}
	defer xyz.Close()

	printer := sim.NewPropertyPrinter(os.Stdout)
	exp := experiment.New(cfg)
	if err := exp.Setup(
		sim.WithObserver(printer),
		sim.WithTrajectory(trajectory.NewWriter(xyz)),
		sim.WithLogger(logger),
	); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running simulation", "method", cfg.Method, "particles", exp.Box().NumParticles(),
		"length", exp.Box().Length, "steps", cfg.Steps)
	start := time.Now()

	result, runErr := exp.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if err := printer.Err(); err != nil {
		return fmt.Errorf("write properties: %w", err)
	}

	summary := metrics.Summary(exp.Metrics()...)
	if err := st.Save(runID, cfg, exp.Box().NumParticles(), exp.Box().Length, result, summary); err != nil {
		return err
	}

	if runErr != nil {
		logger.Warn("run interrupted", "steps", result.StepsTaken)
	}
	logger.Info("completed", "run", runID, "steps", result.StepsTaken, "elapsed", time.Since(start).Round(time.Millisecond))
	printSummary(result, summary)
	return nil
}

func printSummary(result *sim.Result, summary map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(summary) {
		fmt.Printf("  %s: %.6f\n", name, summary[name])
	}
	if result.Method == sim.MethodMonteCarlo && result.Attempted > 0 {
		fmt.Printf("  accepted: %d / %d\n", result.Accepted, result.Attempted)
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
	fmt.Fprintln(w, "ID\tMETHOD\tTIME\tN\tL\tSTEPS\tENERGY")

	for _, run := range runs {
		energy := 0.0
		if run.NumParticles > 0 {
			energy = run.PairEnergy / float64(run.NumParticles)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3f\t%d/%d\t%.4f\n",
			run.ID,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.NumParticles,
			run.BoxLength,
			run.StepsTaken,
			run.Steps,
			energy,
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

	props, err := st.LoadProperties(runID)
	if err != nil {
		return err
	}
	if len(props) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("method: %s\n", meta.Method)
	fmt.Printf("reports: %d\n\n", len(props))

	for _, col := range propertyColumns(meta.Method) {
		graph := asciigraph.Plot(col.values(props),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col.name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	props, err := st.LoadProperties(runID)
	if err != nil {
		return err
	}
	if len(props) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteCSV(os.Stdout, meta.Method, props)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).Export(os.Stdout, args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	methods := config.Methods()
	if len(args) > 0 {
		methods = args
	}
	for _, m := range methods {
		presets := config.ListPresets(m)
		if len(presets) == 0 {
			fmt.Printf("no presets for method: %s\n", m)
			continue
		}
		fmt.Printf("presets for %s:\n", m)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Create(cfg.Method)
	if err != nil {
		return err
	}
	xyz, err := os.Create(st.TrajectoryPath(runID))
	if err != nil {
		return err
	}
	defer xyz.Close()

	// the terminal belongs to the view while it runs
	exp := experiment.New(cfg)
	if err := exp.Setup(sim.WithTrajectory(trajectory.NewWriter(xyz)), sim.WithLogger(logging.Nop())); err != nil {
		return err
	}

	m, err := viz.NewModel(cfg.Method, exp.Runner(), exp.RunConfig(), stepsPerFrame)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}

	result, runErr := final.(viz.Model).Result()
	summary := metrics.Summary(exp.Metrics()...)
	if err := st.Save(runID, cfg, exp.Box().NumParticles(), exp.Box().Length, result, summary); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("saved", "run", runID, "steps", result.StepsTaken)
	printSummary(result, summary)
	return nil
}

func rdfRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if rdfDiscard > 0 && rdfDiscard < len(frames) {
		frames = frames[rdfDiscard:]
	}

	res, err := analysis.RDF(cmd.Context(), frames, meta.BoxLength, rdfBins, rdfRMax)
	if err != nil {
		return err
	}

	peak := 0
	for i, g := range res.G {
		if g > res.G[peak] {
			peak = i
		}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("frames: %d\n\n", len(frames))
	fmt.Println(asciigraph.Plot(res.G,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("g(r), r in [0, %.3f]", res.R[len(res.R)-1])),
	))
	fmt.Printf("\npeak: g(%.4f) = %.4f\n", res.R[peak], res.G[peak])
	fmt.Printf("coordination at peak: %.3f\n", res.Coordination[peak])
	return nil
}

func statsRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	props, err := st.LoadProperties(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%d reports, %d blocks)\n\n", meta.ID, len(props), blocks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROPERTY\tMEAN\tSTDERR")
	for _, col := range propertyColumns(meta.Method) {
		mean, stdErr, err := analysis.BlockAverage(col.values(props), blocks)
		if err != nil {
			return fmt.Errorf("%s: %w", col.name, err)
		}
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\n", col.name, mean, stdErr)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if meta.Method == sim.MethodMonteCarlo && len(props) > 0 {
		trace := acceptanceTrace(props)
		lo, hi := trace.MaxDispRange()
		fmt.Printf("\nacceptance in [%.0f%%, %.0f%%]: %.1f%% of reports\n",
			sim.LowAcceptance, sim.HighAcceptance, 100*trace.InBand(sim.LowAcceptance, sim.HighAcceptance))
		fmt.Printf("max displacement: %.6f .. %.6f\n", lo, hi)
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if replicas < 1 {
		return fmt.Errorf("replicas must be positive, got %d", replicas)
	}

	factory, err := experiment.ReplicaFactory(cfg, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running ensemble", "method", cfg.Method, "replicas", replicas, "steps", cfg.Steps)
	start := time.Now()
	ens := sim.NewEnsemble(factory, replicas, cfg.Seed).WithReplicaOptions(func(replica int) []sim.RunnerOption {
		return []sim.RunnerOption{sim.WithLogger(logger.With("replica", replica))}
	})
	results, err := ens.Run(ctx, sim.RunConfig{
		Steps:     cfg.Steps,
		PrintProp: cfg.PrintProp,
		PrintXYZ:  cfg.PrintXYZ,
	})
	if err != nil {
		return err
	}
	logger.Info("completed", "elapsed", time.Since(start).Round(time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REPLICA\tSEED\tENERGY\tPRESSURE")
	means := make([]float64, len(results))
	for i, res := range results {
		energy := metrics.NewEnergyStats()
		pressure := metrics.NewPressureStats()
		for _, p := range res.Reports {
			energy.Observe(p)
			pressure.Observe(p)
		}
		means[i] = energy.Value()
		fmt.Fprintf(w, "%d\t%d\t%.6f\t%.6f\n", i, cfg.Seed+int64(i), energy.Value(), pressure.Value())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(means) >= 2 {
		mean, stdErr, err := analysis.BlockAverage(means, len(means))
		if err != nil {
			return err
		}
		fmt.Printf("\nensemble energy: %.6f +/- %.6f\n", mean, stdErr)
	}
	return nil
}

func benchEngine(cmd *cobra.Command, args []string) error {
	b, err := box.New(box.LengthForDensity(benchParticles, density), 1, benchParticles)
	if err != nil {
		return err
	}
	b.PlaceLattice()

	lj, err := potential.NewLennardJones(cutoff)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking pair sum: N=%d L=%.3f rc=%.2f\n\n", benchParticles, b.Length, cutoff)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tTIME/CALL\tCALLS/SEC\tENERGY/N")

	counts := []int{1}
	for n := 2; n <= runtime.NumCPU(); n *= 2 {
		counts = append(counts, n)
	}
	for _, n := range counts {
		eng := engine.New(lj, engine.WithWorkers(n), engine.WithParallelThreshold(0))

		var energy float64
		start := time.Now()
		for i := 0; i < benchRepeats; i++ {
			energy, _ = eng.TotalPairEnergyAndVirial(b, true)
		}
		perCall := time.Since(start) / time.Duration(max(benchRepeats, 1))

		fmt.Fprintf(w, "%d\t%v\t%.1f\t%.6f\n", n, perCall, 1/perCall.Seconds(), energy/float64(benchParticles))
	}
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	var svg string
	switch svgProperty {
	case "rdf":
		frames, err := st.LoadFrames(runID)
		if err != nil {
			return err
		}
		res, err := analysis.RDF(cmd.Context(), frames, meta.BoxLength, rdfBins, 0)
		if err != nil {
			return err
		}
		svg = export.SeriesToSVG(res.R, res.G, 800, 400, "#00ffff")
	case "box":
		frames, err := st.LoadFrames(runID)
		if err != nil {
			return err
		}
		if len(frames) == 0 {
			return fmt.Errorf("no frames in run %s", runID)
		}
		b, err := box.New(meta.BoxLength, 1, 0)
		if err != nil {
			return err
		}
		b.SetCoordinates(frames[len(frames)-1])
		cv := viz.NewCanvas(80, 40)
		viz.RenderBox(cv, b, viz.NewCamera())
		svg = export.CanvasToSVG(cv, 4)
	default:
		props, err := st.LoadProperties(runID)
		if err != nil {
			return err
		}
		var col *propertyColumn
		for _, c := range propertyColumns(meta.Method) {
			if c.name == svgProperty {
				col = &c
				break
			}
		}
		if col == nil {
			return fmt.Errorf("unknown property %q for %s", svgProperty, meta.Method)
		}
		steps := make([]float64, len(props))
		for i, p := range props {
			steps[i] = float64(p.Step)
		}
		svg = export.SeriesToSVG(steps, col.values(props), 800, 400, "#ff00ff")
	}

	out := os.Stdout
	if svgOutput != "" {
		f, err := os.Create(svgOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return export.WriteSVG(out, svg)
}

func newAutomationRunner(save bool) *automation.Runner {
	r := &automation.Runner{Logger: logger}
	if save {
		r.Store = storage.New(dataDir)
	}
	return r
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if scenario.Description != "" {
		fmt.Printf("%s: %s\n\n", scenario.Name, scenario.Description)
	}
	results, err := newAutomationRunner(true).RunScenario(ctx, scenario, base)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tMETHOD\tSTEPS\tENERGY\tPRESSURE")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.6f\t%.6f\n",
			r.Name, r.RunID, r.Result.Method, r.Result.StepsTaken, r.Metrics["energy"], r.Metrics["pressure"])
	}
	if flushErr := w.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sweep := &automation.ParameterSweep{Param: sweepParam, Values: sweepValues, Discard: sweepDiscard}
	points, err := newAutomationRunner(saveRuns).RunSweep(ctx, sweep, base)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tENERGY\tSTD\tPRESSURE\tSTD\tRUN\n", sweepParam)
	for _, p := range points {
		fmt.Fprintf(w, "%.4f\t%.6f\t%.6f\t%.6f\t%.6f\t%s\n",
			p.Value, p.Energy, p.EnergyStd, p.Pressure, p.PressureStd, p.RunID)
	}
	if flushErr := w.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return err
}

func runSearch(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	names, ranges, err := optim.ParseGrid(gridSpecs)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	metric, target, err := optim.ParseTarget(targetFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("grid search", "points", g.Size(), "metric", metric, "target", target)
	best, points, err := g.Search(ctx, optim.ConfigBuilder(base), optim.Target(metric, target))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, n := range names {
		fmt.Fprintf(w, "%s\t", n)
	}
	fmt.Fprintf(w, "|%s-%g|\n", metric, target)
	for _, p := range points {
		for _, n := range names {
			fmt.Fprintf(w, "%.4f\t", p.Params[n])
		}
		fmt.Fprintf(w, "%.6f\n", p.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest:")
	for _, n := range names {
		fmt.Printf(" %s=%g", n, best.Params[n])
	}
	fmt.Printf(" (score %.6f)\n", best.Score)
	return nil
}
