package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/carsim/config"
	"github.com/pthm-cable/carsim/game"
	"github.com/pthm-cable/carsim/neural"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	generations := flag.Int("generations", -1, "Stop after N generations (0 = unlimited, -1 = use config)")
	mapIndex := flag.Int("map", -1, "Catalogue index of the starting map (-1 = use config)")
	neatConfig := flag.String("neat-config", "", "Path to the NEAT config file (empty = use config)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}
	if *generations >= 0 {
		cfg.Evolution.Generations = *generations
	}
	if *mapIndex >= 0 {
		cfg.Track.MapIndex = *mapIndex
	}
	if *neatConfig != "" {
		cfg.Evolution.NEATConfig = *neatConfig
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Evolution.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	neatCfg, err := loadNEATConfig(cfg.Evolution.NEATConfig)
	if err != nil {
		slog.Error("failed to load NEAT config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := game.Options{
		Seed:        rngSeed,
		OutputDir:   cfg.Telemetry.OutputDir,
		Generations: cfg.Evolution.Generations,
		NEAT:        neatCfg,
	}

	if *headless {
		slog.Info("starting headless evolution",
			"seed", rngSeed,
			"generations", opts.Generations,
			"map_index", cfg.Track.MapIndex,
		)
		if err := run(ctx, cfg, opts); err != nil {
			slog.Error("run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Derived.TotalWidth), int32(cfg.Screen.MapHeight), "Car Evolution")
	rl.SetWindowMinSize(cfg.Derived.TotalWidth, cfg.Screen.MapHeight)
	rl.SetExitKey(0)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	ctx, cancel := context.WithCancel(ctx)
	display := game.NewRaylibDisplay(cfg, cancel)
	opts.Display = display

	err = run(ctx, cfg, opts)
	cancel()
	display.Close()
	rl.CloseWindow()

	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// run drives the game until it stops or ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, opts game.Options) error {
	g, err := game.NewGame(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Close()

	return g.Run(ctx)
}

// loadNEATConfig reads the NEAT file, falling back to defaults when it does not exist.
func loadNEATConfig(path string) (*neural.Config, error) {
	if path == "" {
		return neural.DefaultConfig(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("NEAT config not found, using defaults", "path", path)
		return neural.DefaultConfig(), nil
	}
	return neural.LoadConfig(path)
}
