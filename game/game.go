// Package game drives the application: a state machine over the map
// preview and the evolution run, with one top-level loop executing the
// commands each state returns.
package game

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/pthm-cable/carsim/config"
	"github.com/pthm-cable/carsim/neural"
	"github.com/pthm-cable/carsim/sim"
	"github.com/pthm-cable/carsim/telemetry"
	"github.com/pthm-cable/carsim/track"
)

// Telemetry windows
const (
	perfWindowTicks = 240
	bookmarkHistory = 10
	topSpecies      = 5
)

// Options configures a Game beyond the config file.
type Options struct {
	Seed        int64
	OutputDir   string
	Generations int // stop after this many generations per run (0 = unlimited)
	NEAT        *neural.Config
	Display     Display // nil runs headless: no preview, one run, then stop

	// OnGeneration, if set, receives every generation's stats.
	OnGeneration func(telemetry.GenerationStats)
}

// Game holds the application state across runs.
type Game struct {
	cfg  *config.Config
	opts Options
	rng  *rand.Rand

	maps    []track.MapInfo
	catalog *track.Catalog
	baseDir string
	current *mapAssets

	state State

	// Current run
	evolver   *neural.Evolver
	evaluator *sim.Evaluator
	started   time.Time
	bestEver  float64

	perf      *telemetry.PerfCollector
	bookmarks *telemetry.BookmarkDetector
	output    *telemetry.OutputManager
}

// NewGame reads the map catalogue and prepares the output directory.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	if opts.NEAT == nil {
		opts.NEAT = neural.DefaultConfig()
	}
	if got, want := opts.NEAT.Inputs, len(cfg.Car.SensorOffsets); got != want {
		return nil, fmt.Errorf("NEAT num_inputs is %d but cars have %d sensors", got, want)
	}
	if got, want := opts.NEAT.Outputs, sim.NumActions; got != want {
		return nil, fmt.Errorf("NEAT num_outputs is %d but there are %d actions", got, want)
	}

	maps, err := track.LoadInfo(cfg.Track.InfoFile)
	if err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	g := &Game{
		cfg:     cfg,
		opts:    opts,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		maps:    maps,
		baseDir: filepath.Dir(cfg.Track.InfoFile),
		state:   StateMenu,
		perf:    telemetry.NewPerfCollector(perfWindowTicks),
		output:  output,
	}
	return g, nil
}

// State returns the current state.
func (g *Game) State() State {
	return g.state
}

// Close flushes telemetry output.
func (g *Game) Close() error {
	return g.output.Close()
}

// Run executes the state machine until it stops or ctx is cancelled.
// Cancellation is a normal exit and returns nil.
func (g *Game) Run(ctx context.Context) error {
	for g.state != StateStopped {
		cmd, err := g.step(ctx)
		if err != nil {
			return err
		}
		if err := g.apply(cmd); err != nil {
			return err
		}
	}
	return nil
}

// step runs the current state's handler once.
func (g *Game) step(ctx context.Context) (Command, error) {
	if ctx.Err() != nil {
		return CmdQuit, nil
	}

	switch g.state {
	case StateMenu:
		return g.menu()
	case StatePreview:
		return g.opts.Display.Preview(g.previewView()), nil
	case StateRunning:
		return g.runGeneration(ctx)
	default:
		return CmdQuit, nil
	}
}

// apply performs cmd's side effects and moves to the next state.
func (g *Game) apply(cmd Command) error {
	prev := g.state

	switch {
	case prev == StatePreview && cmd == CmdNextMap:
		assets, err := loadMap(g.cfg, g.baseDir, g.catalog.Next())
		if err != nil {
			return err
		}
		g.current = assets
	case (prev == StateMenu || prev == StatePreview) && cmd == CmdPlay:
		if err := g.startRun(); err != nil {
			return err
		}
	}

	g.state = prev.Next(cmd)
	if g.state != prev {
		slog.Debug("state changed", "from", prev.String(), "to", g.state.String(), "command", cmd.String())
	}
	return nil
}

// menu starts over from the configured map.
func (g *Game) menu() (Command, error) {
	catalog, err := track.NewCatalog(g.maps, g.cfg.Track.MapIndex)
	if err != nil {
		return CmdNone, err
	}
	assets, err := loadMap(g.cfg, g.baseDir, catalog.Current())
	if err != nil {
		return CmdNone, err
	}
	g.catalog = catalog
	g.current = assets
	g.evolver = nil
	g.evaluator = nil

	if g.opts.Display == nil {
		return CmdPlay, nil
	}
	return CmdShowPreview, nil
}

func (g *Game) previewView() PreviewView {
	return PreviewView{
		Surface:  g.current.surface,
		Car:      g.current.previewCar(),
		Map:      g.current.info,
		MapIndex: g.catalog.Index(),
		MapCount: g.catalog.Len(),
	}
}

// startRun creates a fresh population and evaluator for the selected map.
func (g *Game) startRun() error {
	evolver, err := neural.NewEvolver(g.opts.NEAT, g.rng.Int63())
	if err != nil {
		return err
	}

	var fe sim.Frontend
	if g.opts.Display != nil {
		fe = g.opts.Display
	}
	evaluator := sim.NewEvaluator(g.current.surface, g.current.params, g.current.start, g.cfg.Simulation, fe)
	evaluator.SetTimer(g.perf)

	g.evolver = evolver
	g.evaluator = evaluator
	g.started = time.Now()
	g.bestEver = math.Inf(-1)
	g.bookmarks = telemetry.NewBookmarkDetector(bookmarkHistory)

	slog.Info("run started",
		"map", g.current.info.File,
		"population", g.opts.NEAT.NEAT.PopSize,
		"max_ticks", g.cfg.Simulation.MaxTicks,
	)
	return nil
}

// runGeneration evaluates and evolves one generation.
func (g *Game) runGeneration(ctx context.Context) (Command, error) {
	if g.opts.Display != nil {
		g.opts.Display.BeginRun(g.runView())
	}
	g.perf.Reset()

	report, err := g.evolver.RunGeneration(ctx, g.evaluator.Evaluate)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			slog.Info("exit requested", "generation", g.evolver.Generation()+1)
			return CmdQuit, nil
		}
		return CmdNone, err
	}
	g.recordGeneration(report)

	switch {
	case report.Solved:
		slog.Info("fitness threshold reached",
			"generation", report.Generation,
			"best_fitness", report.BestFitness,
			"genome", report.BestKey,
		)
		if g.opts.Display == nil {
			return CmdQuit, nil
		}
		return CmdReturn, nil
	case report.Result.MenuRequested:
		return CmdReturn, nil
	case g.opts.Generations > 0 && report.Generation >= g.opts.Generations:
		slog.Info("generation limit reached", "generations", report.Generation)
		if g.opts.Display == nil {
			return CmdQuit, nil
		}
		return CmdReturn, nil
	}
	return CmdNone, nil
}

func (g *Game) runView() RunView {
	pop := g.evolver.Population()
	tints := make([]color.RGBA, len(pop))
	networks := make([]neural.Topology, len(pop))
	for i, cand := range pop {
		c := g.evolver.SpeciesColor(i)
		tints[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
		networks[i] = neural.NewTopology(cand.Genome)
	}

	species := g.evolver.Species()
	return RunView{
		Surface:  g.current.surface,
		Tints:    tints,
		Started:  g.started,
		BestEver: math.Max(g.bestEver, 0),
		Species:  species.GetTopSpecies(topSpecies, g.evolver.Generation()),
		Count:    len(species.Species),
		Perf:     g.perf.Stats(),
		Networks: networks,
	}
}
