// collide runs collision scenes from presets or yaml files
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"collide3d/internal/config"
	"collide3d/internal/scene"
	"collide3d/internal/viz"
)

var (
	verbose    int
	configFile string
	workers    int
	cutoff     float32
	frames     int
	seed       int64
	saveFile   string

	stressCounts     []int
	stressWorkers    []int
	stressIterations int

	rayOrigin string
	rayDir    string
	rayTarget string
	rayLength float32
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	hitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "collide",
		Short:        "collision detection scenes",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().IntVarP(&verbose, "verbose", "v", 0, "log verbosity (0 silent, 1 info, 2 per frame)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scene file (yaml)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "detection workers (0 = one per CPU)")
	rootCmd.PersistentFlags().Float32Var(&cutoff, "cutoff", 0, "skip pairs whose centers are further apart (0 = off)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed for generated bodies")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scene and print a summary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	runCmd.Flags().StringVar(&saveFile, "save", "", "write the effective scene to this yaml file")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scene with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frames, "frames", 0, "stop after this many frames (0 = until quit)")

	stressCmd := &cobra.Command{
		Use:   "stress",
		Short: "time the broad phase over body and worker counts",
		Args:  cobra.NoArgs,
		RunE:  runStress,
	}
	stressCmd.Flags().IntSliceVar(&stressCounts, "counts", []int{100, 500, 1000, 2000, 5000}, "body counts")
	stressCmd.Flags().IntSliceVar(&stressWorkers, "worker-counts", []int{1, runtime.NumCPU()}, "worker counts")
	stressCmd.Flags().IntVar(&stressIterations, "iterations", 10, "Detect calls per measurement")

	rayCmd := &cobra.Command{
		Use:   "ray [preset]",
		Short: "cast the scene's rays, or one given on the command line",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRay,
	}
	rayCmd.Flags().StringVar(&rayOrigin, "origin", "", "ray origin x,y,z")
	rayCmd.Flags().StringVar(&rayDir, "dir", "0,0,1", "ray direction x,y,z")
	rayCmd.Flags().StringVar(&rayTarget, "to", "", "ray destination x,y,z (overrides --dir and --length)")
	rayCmd.Flags().Float32Var(&rayLength, "length", 100, "ray length")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, stressCmd, rayCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			log.Printf("%s: %s", prefix, args)
		} else {
			log.Println(args)
		}
	}, funcr.Options{Verbosity: verbose})
}

// loadConfig resolves --config, a preset argument or the default preset,
// then applies the flags the user actually set.
func loadConfig(cmd *cobra.Command, args []string, fallback string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case configFile != "":
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	case len(args) > 0:
		cfg, err = config.GetPreset(args[0])
		if err != nil {
			return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(config.ListPresets(), ", "))
		}
	default:
		cfg, err = config.GetPreset(fallback)
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("cutoff") {
		cfg.Cutoff = cutoff
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("frames") {
		cfg.Frames = frames
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args, "pass")
	if err != nil {
		return err
	}
	if saveFile != "" {
		if err := config.Save(saveFile, cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}

	s, err := scene.New(cfg, newLogger())
	if err != nil {
		return err
	}
	defer s.Close()

	var (
		pairs         []float64
		total         scene.FrameStats
		detect, worst time.Duration
	)
	start := time.Now()
	s.Run(cfg.Frames, func(st scene.FrameStats) {
		pairs = append(pairs, float64(st.Pairs))
		total.Triggers += st.Triggers
		total.Stays += st.Stays
		total.Exits += st.Exits
		detect += st.Detect
		worst = max(worst, st.Detect)
	})
	elapsed := time.Since(start)

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s: %d frames, %d bodies, %d workers", cfg.Name, cfg.Frames, len(s.Actors()), s.Manager().Workers())))
	fmt.Println(dimStyle.Render(fmt.Sprintf("wall %v | detect avg %v max %v",
		elapsed.Round(time.Millisecond),
		(detect / time.Duration(cfg.Frames)).Round(time.Microsecond),
		worst.Round(time.Microsecond))))
	fmt.Printf("trigger %d  stay %d  exit %d\n\n", total.Triggers, total.Stays, total.Exits)

	if len(pairs) > 1 {
		fmt.Println(asciigraph.Plot(pairs, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("overlapping pairs per frame")))
		fmt.Println()
	}

	if len(s.Actors()) <= 20 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "BODY\tSHAPE\tTRIGGER\tSTAY\tEXIT")
		for _, a := range s.Actors() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", a.Name, a.Body.Shape(), a.Triggers, a.Stays, a.Exits)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Println()
	}

	return printRays(s.CastRays())
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args, "crowd")
	if err != nil {
		return err
	}
	s, err := scene.New(cfg, logr.Discard())
	if err != nil {
		return err
	}
	defer s.Close()

	p := tea.NewProgram(viz.NewModel(s, frames), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runStress(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tWORKERS\tDETECT\tPAIRS\tSPEEDUP")

	// One series per worker count, for the plot
	series := make([][]float64, len(stressWorkers))
	for _, count := range stressCounts {
		var base time.Duration
		for i, n := range stressWorkers {
			cfg := config.DefaultConfig()
			cfg.Workers = n
			cfg.Cutoff = cutoff
			cfg.Seed = 42
			// Grow the arena with the population to keep density comparable
			cfg.Bounds = 25 + float32(count)/200
			cfg.Random.Count = count
			cfg.Random.MaxSpeed = 0

			s, err := scene.New(cfg, logger)
			if err != nil {
				return err
			}

			// Warm up
			s.Step()
			var spent time.Duration
			var pairs int
			for it := 0; it < stressIterations; it++ {
				st := s.Step()
				spent += st.Detect
				pairs = st.Pairs
			}
			s.Close()

			avg := spent / time.Duration(max(stressIterations, 1))
			if i == 0 {
				base = avg
			}
			speedup := float64(base) / float64(max(avg, 1))
			series[i] = append(series[i], float64(avg.Microseconds())/1000)
			fmt.Fprintf(w, "%d\t%d\t%v\t%d\t%.1fx\n", count, s.Manager().Workers(), avg.Round(time.Microsecond), pairs, speedup)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(stressCounts) > 1 {
		legends := make([]string, len(stressWorkers))
		for i, n := range stressWorkers {
			legends[i] = fmt.Sprintf("%d workers", n)
		}
		fmt.Println()
		fmt.Println(asciigraph.PlotMany(series,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("detect ms by body count"),
			asciigraph.SeriesLegends(legends...),
			asciigraph.SeriesColors(asciigraph.Green, asciigraph.Yellow, asciigraph.Red, asciigraph.Blue),
		))
	}
	return nil
}

func runRay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args, "gallery")
	if err != nil {
		return err
	}
	s, err := scene.New(cfg, newLogger())
	if err != nil {
		return err
	}
	defer s.Close()
	s.Step()

	if rayOrigin == "" {
		return printRays(s.CastRays())
	}

	rc := config.RayConfig{Length: rayLength}
	if rc.Origin, err = parseVec(rayOrigin); err != nil {
		return err
	}
	if rayTarget != "" {
		target, err := parseVec(rayTarget)
		if err != nil {
			return err
		}
		rc.Target = &target
	} else if rc.Direction, err = parseVec(rayDir); err != nil {
		return err
	}
	return printRays([]scene.RayResult{s.Cast("cli", rc)})
}

func printRays(results []scene.RayResult) error {
	if len(results) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RAY\tHIT\tDISTANCE\tPOINT")
	for _, r := range results {
		target := "-"
		if r.Hit.Hit() {
			target = hitStyle.Render(r.Target)
		}
		p := r.Hit.Point
		fmt.Fprintf(w, "%s\t%s\t%.3f\t(%.2f, %.2f, %.2f)\n", r.Name, target, r.Hit.Distance, p.X, p.Y, p.Z)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBODIES\tRAYS\tFRAMES")
	for _, name := range config.ListPresets() {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", name, len(cfg.Bodies)+cfg.Random.Count, len(cfg.Rays), cfg.Frames)
	}
	return w.Flush()
}

func parseVec(s string) (config.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return config.Vec3{}, fmt.Errorf("invalid vector %q: want x,y,z", s)
	}
	var v config.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return config.Vec3{}, fmt.Errorf("invalid vector %q: %w", s, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}
