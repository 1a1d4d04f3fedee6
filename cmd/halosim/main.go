package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/halosim/internal/config"
	"github.com/san-kum/halosim/internal/experiment"
	"github.com/san-kum/halosim/internal/logging"
	"github.com/san-kum/halosim/internal/quadrant"
	"github.com/san-kum/halosim/internal/storage"
	"github.com/san-kum/halosim/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	verbose    bool
	configFile string
	preset     string
	nodes      int
	nodeGrid   []int
	width      int
	height     int
	omega      float64
	iterations int
	snapshots  int
	plot       bool
	outFile    string
	component  int
	iteration  int
	showPhase  bool
	themeName  string
	cols       int
	rows       int
	contour    float64
	window     []int

	log *logrus.Logger
)

var (
	title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	label = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	value = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "halosim",
		Short:         "distributed lattice states and observables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.New(os.Stderr, logLevel, verbose)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".halosim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "build the lattice, reduce observables and stamp the initial state",
		RunE:  runLattice,
	}
	addConfigFlags(runCmd)

	bordersCmd := &cobra.Command{
		Use:   "borders",
		Short: "print the domain decomposition",
		RunE:  printBorders,
	}
	addConfigFlags(bordersCmd)

	statsCmd := &cobra.Command{
		Use:   "stats [run_id]",
		Short: "expectation values over the stamped snapshots of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}
	statsCmd.Flags().IntVar(&iterations, "iterations", 0, "iterations between snapshots")
	statsCmd.Flags().IntVar(&snapshots, "snapshots", 0, "number of snapshots after the initial one")
	statsCmd.Flags().BoolVar(&plot, "plot", false, "plot the energy per snapshot")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		RunE:  listPresets,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and expectation values to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	densityCmd := &cobra.Command{
		Use:   "density [run_id]",
		Short: "draw a stamped density or phase map",
		Args:  cobra.ExactArgs(1),
		RunE:  drawDensity,
	}
	densityCmd.Flags().IntVar(&component, "component", 1, "species")
	densityCmd.Flags().IntVar(&iteration, "iteration", 0, "iteration of the stamp")
	densityCmd.Flags().BoolVar(&showPhase, "phase", false, "draw the phase instead of the density")
	densityCmd.Flags().StringVar(&themeName, "theme", viz.ThemeThermal.Name, "colour theme")
	densityCmd.Flags().IntVar(&cols, "cols", 64, "columns")
	densityCmd.Flags().IntVar(&rows, "rows", 32, "rows")
	densityCmd.Flags().Float64Var(&contour, "contour", 0, "draw the region above this fraction of the maximum instead")
	densityCmd.Flags().IntSliceVar(&window, "window", nil, "draw only the window x,y,width,height")

	rootCmd.AddCommand(runCmd, bordersCmd, statsCmd, listCmd, presetsCmd, exportJSONCmd, densityCmd)

	if err := rootCmd.Execute(); err != nil {
		if log != nil {
			log.WithError(err).Error("command failed")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVarP(&nodes, "nodes", "n", 0, "number of nodes")
	cmd.Flags().IntSliceVar(&nodeGrid, "node-grid", nil, "node grid rows,cols")
	cmd.Flags().IntVar(&width, "width", 0, "grid width")
	cmd.Flags().IntVar(&height, "height", 0, "grid height")
	cmd.Flags().Float64Var(&omega, "omega", 0, "rotation frequency")
}

// loadConfig resolves the preset, then the config file, then the flags
// set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("nodes") {
		cfg.Nodes = nodes
	}
	if flags.Changed("node-grid") {
		cfg.NodeGrid = nodeGrid
	}
	if flags.Changed("width") {
		cfg.Grid.Width = width
	}
	if flags.Changed("height") {
		cfg.Grid.Height = height
	}
	if flags.Changed("omega") {
		cfg.Rotation.Omega = omega
	}
	if !flags.Changed("log-level") && cfg.LogLevel != "" {
		log = logging.New(os.Stderr, cfg.LogLevel, verbose)
	}
	return cfg, cfg.Validate()
}

func header(s string) {
	fmt.Println(title.Render(s))
}

func field(name string, v any) {
	fmt.Printf("  %s %s\n", label.Render(fmt.Sprintf("%-10s", name)), value.Render(fmt.Sprint(v)))
}

func runLattice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir, log.WithField("component", "storage"))
	exp := experiment.New(cfg, preset, experiment.NewRegistry(), st, log)

	res, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	header("run " + res.RunID)
	field("grid", fmt.Sprintf("%dx%d", cfg.Grid.Width, cfg.Grid.Height))
	field("nodes", fmt.Sprintf("%d (%dx%d)", cfg.Nodes, res.Dims[0], res.Dims[1]))
	field("energy", fmt.Sprintf("%.8e", res.Energy))
	field("output", res.Dir)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPECIES\tNORM\tENERGY\tPX\tPY\tX\tY\tSIGMA_X\tSIGMA_Y")
	for i, s := range res.Snapshots {
		fmt.Fprintf(w, "%d\t%.6e\t%.6e\t%.4e\t%.4e\t%.4f\t%.4f\t%.4f\t%.4f\n",
			i+1, s.Norm, s.Energy, s.Px, s.Py, s.X, s.Y, s.SigmaX, s.SigmaY)
	}
	return w.Flush()
}

func printBorders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tiles, err := experiment.Layout(cfg)
	if err != nil {
		return err
	}

	l := tiles[0]
	header("decomposition")
	field("grid", fmt.Sprintf("%dx%d", cfg.Grid.Width, cfg.Grid.Height))
	field("global", fmt.Sprintf("%dx%d", l.GlobalDimX, l.GlobalDimY))
	field("nodes", fmt.Sprintf("%dx%d", l.Dims[0], l.Dims[1]))
	field("halo", l.HaloX)
	field("periodic", fmt.Sprintf("x=%t y=%t", cfg.Grid.PeriodicX, cfg.Grid.PeriodicY))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCOORDS\tX\tINNER_X\tY\tINNER_Y\tTILE")
	for _, t := range tiles {
		fmt.Fprintf(w, "%d\t%d,%d\t[%d,%d)\t[%d,%d)\t[%d,%d)\t[%d,%d)\t%dx%d\n",
			t.Rank, t.Coords[0], t.Coords[1],
			t.X.Start, t.X.End, t.X.InnerStart, t.X.InnerEnd,
			t.Y.Start, t.Y.End, t.Y.InnerStart, t.Y.InnerEnd,
			t.DimX, t.DimY)
	}
	return w.Flush()
}

// runConfig loads the configuration saved with a run and applies the
// snapshot flags.
func runConfig(cmd *cobra.Command, dir string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(dir, experiment.ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load run config: %w", err)
	}
	if cmd.Flags().Changed("iterations") {
		cfg.Iterations = iterations
	}
	if cmd.Flags().Changed("snapshots") {
		cfg.Snapshots = snapshots
	}
	return cfg, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, log.WithField("component", "storage"))
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	dir := st.Dir(meta.ID)
	cfg, err := runConfig(cmd, dir)
	if err != nil {
		return err
	}

	rows, summary, err := experiment.Stats(dir, cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	header("expectation values " + meta.ID)
	if err := storage.WriteExpectTable(os.Stdout, rows); err != nil {
		return err
	}
	fmt.Println()
	field("<E>", fmt.Sprintf("%.8e ± %.2e", summary.MeanE, summary.StdE))
	field("<Px>", fmt.Sprintf("%.8e ± %.2e", summary.MeanPx, summary.StdPx))
	field("<Py>", fmt.Sprintf("%.8e ± %.2e", summary.MeanPy, summary.StdPy))
	field("drift", fmt.Sprintf("%.2e", summary.Drift))

	if plot && len(rows) > 1 {
		energy := make([]float64, len(rows))
		for i, r := range rows {
			energy[i] = r.Energy
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(energy,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("energy per snapshot"),
		))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, log.WithField("component", "storage"))
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tGRID\tNODES\tSPECIES\tENERGY")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%.6e\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Nodes,
			run.Species,
			run.Observables["energy"],
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	header("presets")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGRID\tNODES\tSPECIES\tOMEGA\tPERIODIC")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%dx%d\t%d\t%d\t%g\t%t,%t\n",
			name, p.Grid.Width, p.Grid.Height, p.Nodes, len(p.Species),
			p.Rotation.Omega, p.Grid.PeriodicX, p.Grid.PeriodicY)
	}
	return w.Flush()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, log.WithField("component", "storage"))
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	dir := st.Dir(meta.ID)
	cfg, err := runConfig(cmd, dir)
	if err != nil {
		return err
	}

	rows, summary, err := experiment.Stats(dir, cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	data := storage.ExportData{Run: *meta, Snapshots: rows, Summary: &summary}

	if outFile == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	if err := storage.ExportJSON(outFile, data); err != nil {
		return err
	}
	log.WithField("file", outFile).Info("exported")
	return nil
}

func drawDensity(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, log.WithField("component", "storage"))
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	tag := fmt.Sprintf("density_%d", component)
	if showPhase {
		tag = fmt.Sprintf("phase_%d", component)
	}
	path := filepath.Join(st.Dir(meta.ID), storage.TagName(iteration, tag))
	data, _, err := storage.ReadComplexMatrix(path, meta.Width, meta.Height)
	if err != nil {
		return err
	}

	w, h := meta.Width, meta.Height
	if window != nil {
		if len(window) != 4 {
			return fmt.Errorf("window needs x,y,width,height, got %v", window)
		}
		q, err := quadrant.Split(data, w, h)
		if err != nil {
			return err
		}
		w, h = window[2], window[3]
		data = make([]float64, w*h)
		if _, err := quadrant.SampleToBuffer(q, window[0], window[1], w, h, data, w); err != nil {
			return err
		}
	}

	header(fmt.Sprintf("%s %s iteration %d", meta.ID, tag, iteration))
	if contour > 0 {
		c := viz.NewCanvas(cols, rows)
		viz.Contour(c, data, w, h, contour*floats.Max(data))
		fmt.Print(c.String())
		return nil
	}

	theme, ok := viz.Themes[themeName]
	if !ok {
		return fmt.Errorf("unknown theme: %s", themeName)
	}
	out, err := viz.Heatmap(data, w, h, cols, rows, theme)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
