package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/lloyd"
	"github.com/hupe1980/lloyd/dataset"
	"github.com/hupe1980/lloyd/history"
	"github.com/hupe1980/lloyd/internal/config"
	"github.com/hupe1980/lloyd/render"
)

// Version is injected at build time.
var Version = "dev"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lloyd",
		Short: "k-means clustering with an animated iteration history",
		Long: `lloyd clusters a point set with Lloyd's algorithm, records every
iteration and renders the history as an animated GIF.`,
		Version:       Version,
		SilenceUsage:  true,
	}
	rootCmd.SetOut(stdout)

	rootCmd.AddCommand(newRunCmd(stdout))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(stdout, "lloyd %s\nGo version: %s\n", Version, runtime.Version())
			return nil
		},
	})

	return rootCmd
}

func newRunCmd(stdout io.Writer) *cobra.Command {
	var (
		cfgFile string
		seed    int64
	)
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Cluster a dataset and write the animation",
		Long: `Cluster the points from --input (CSV or YAML) or, without input,
the generated four-blob demonstration set. Flags override values from --config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				loaded, err := config.Load(cfgFile)
				if err != nil {
					return err
				}
				// Flags set explicitly win over the file.
				overlayFlags(cmd, loaded, cfg)
				cfg = loaded
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = &seed
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return execute(cfg, stdout)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "YAML config file")
	f.StringVarP(&cfg.Input, "input", "i", cfg.Input, "points file (.csv, .yaml, .yml)")
	f.IntVarP(&cfg.K, "k", "k", cfg.K, "number of clusters")
	f.Int64Var(&seed, "seed", 0, "random seed (clock-based when unset)")
	f.Float64Var(&cfg.Epsilon, "epsilon", cfg.Epsilon, "convergence tolerance")
	f.IntVar(&cfg.MaxIterations, "max-iterations", cfg.MaxIterations, "iteration cap")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "goroutines for the assignment step")
	f.StringVar(&cfg.Output.GIF, "gif", cfg.Output.GIF, "animated GIF output (empty to skip)")
	f.StringVar(&cfg.Output.History, "history", cfg.Output.History, "history stream output (empty to skip)")
	f.StringVar(&cfg.Output.Compression, "compression", cfg.Output.Compression, "history compression: none, lz4, zstd")
	f.IntVar(&cfg.Output.Delay, "delay", cfg.Output.Delay, "frame delay in hundredths of a second")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging")

	return cmd
}

// overlayFlags copies every explicitly set flag value from src into dst.
func overlayFlags(cmd *cobra.Command, dst, src *config.Config) {
	changed := cmd.Flags().Changed
	if changed("input") {
		dst.Input = src.Input
	}
	if changed("k") {
		dst.K = src.K
	}
	if changed("epsilon") {
		dst.Epsilon = src.Epsilon
	}
	if changed("max-iterations") {
		dst.MaxIterations = src.MaxIterations
	}
	if changed("workers") {
		dst.Workers = src.Workers
	}
	if changed("gif") {
		dst.Output.GIF = src.Output.GIF
	}
	if changed("history") {
		dst.Output.History = src.Output.History
	}
	if changed("compression") {
		dst.Output.Compression = src.Output.Compression
	}
	if changed("delay") {
		dst.Output.Delay = src.Output.Delay
	}
	if changed("verbose") {
		dst.Verbose = src.Verbose
	}
}

func execute(cfg *config.Config, stdout io.Writer) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := lloyd.NewTextLogger(level)

	points, err := loadPoints(cfg)
	if err != nil {
		return err
	}

	metrics := &lloyd.BasicMetricsCollector{}
	opts := append(cfg.Options(), lloyd.WithLogger(logger), lloyd.WithMetricsCollector(metrics))

	res, err := lloyd.Cluster(points, cfg.K, opts...)
	if err != nil && !errors.Is(err, lloyd.ErrNonConvergence) {
		return err
	}
	if err != nil {
		logger.Warn("writing best-effort result", "error", err)
	}

	fmt.Fprintf(stdout, "points=%d k=%d iterations=%d converged=%t inertia=%.6g\n",
		len(points), res.K(), res.Iterations, res.Converged, res.Inertia)
	for c, size := range res.Sizes() {
		fmt.Fprintf(stdout, "cluster %d: size=%d centroid=%v\n", c, size, res.Centroids[c])
	}

	if cfg.Output.History != "" {
		if err := writeHistory(cfg, res); err != nil {
			return err
		}
		logger.Info("history written", "path", cfg.Output.History, "snapshots", res.Snapshots())
	}
	if cfg.Output.GIF != "" {
		if err := writeGIF(cfg, res, points); err != nil {
			return err
		}
		logger.Info("animation written", "path", cfg.Output.GIF, "frames", res.Snapshots())
	}

	stats := metrics.GetStats()
	logger.Debug("run metrics",
		"iterations", stats.IterationCount,
		"points_moved", stats.PointsMoved,
		"avg_iteration_ns", stats.IterationAvgNanos,
	)

	return nil
}

func loadPoints(cfg *config.Config) ([][]float64, error) {
	if cfg.Input == "" {
		seed := int64(0)
		if cfg.Seed != nil {
			seed = *cfg.Seed
		}
		points, _, err := dataset.Blobs(rand.New(rand.NewSource(seed)), cfg.Blobs)
		return points, err
	}

	f, err := os.Open(cfg.Input)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(cfg.Input)) {
	case ".csv":
		return dataset.LoadCSV(f)
	case ".yaml", ".yml":
		return dataset.LoadYAML(f)
	default:
		return nil, fmt.Errorf("unsupported input format %q", filepath.Ext(cfg.Input))
	}
}

func writeHistory(cfg *config.Config, res *lloyd.Result) error {
	compression, err := history.ParseCompression(cfg.Output.Compression)
	if err != nil {
		return err
	}
	f, err := os.Create(cfg.Output.History)
	if err != nil {
		return err
	}
	if _, err := history.Write(f, res.History(), compression); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeGIF(cfg *config.Config, res *lloyd.Result, points [][]float64) error {
	opts := render.DefaultOptions()
	opts.Delay = cfg.Output.Delay
	if cfg.Output.Width > 0 {
		opts.Width = cfg.Output.Width
	}
	if cfg.Output.Height > 0 {
		opts.Height = cfg.Output.Height
	}

	f, err := os.Create(cfg.Output.GIF)
	if err != nil {
		return err
	}
	if err := render.WriteGIF(f, res.History(), points, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
