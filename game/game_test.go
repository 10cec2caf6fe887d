package game

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/carsim/car"
	"github.com/pthm-cable/carsim/config"
	"github.com/pthm-cable/carsim/neural"
	"github.com/pthm-cable/carsim/sim"
	"github.com/pthm-cable/carsim/telemetry"
)

// writeTrack writes an 80x60 PNG with a 1px white wall around a black floor.
func writeTrack(t *testing.T, path string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 80, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			c := color.RGBA{A: 255}
			if x == 0 || y == 0 || x == 79 || y == 59 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
}

// testSetup writes two maps and a catalogue into a temp dir and returns a
// config pointing at them.
func testSetup(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	writeTrack(t, filepath.Join(dir, "a.png"))
	writeTrack(t, filepath.Join(dir, "b.png"))

	info := "a.png;20;10;100;100\nb.png;20;10;200;200\n"
	infoPath := filepath.Join(dir, "info.txt")
	if err := os.WriteFile(infoPath, []byte(info), 0644); err != nil {
		t.Fatalf("writing catalogue: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Track.InfoFile = infoPath
	cfg.Simulation.MaxTicks = 5
	return cfg
}

func smallNEAT() *neural.Config {
	cfg := neural.DefaultConfig()
	cfg.NEAT.PopSize = 6
	return cfg
}

// scriptedDisplay replays preview commands and requests the menu on the
// first poll of every run.
type scriptedDisplay struct {
	commands []Command
	previews []int // map index of every preview frame
	runs     int
	frames   int
	polled   bool
}

func (d *scriptedDisplay) Poll() (sim.Event, bool) {
	if d.polled {
		return sim.EventNone, false
	}
	d.polled = true
	return sim.EventMenu, true
}

func (d *scriptedDisplay) Render(f sim.Frame) {
	d.frames++
}

func (d *scriptedDisplay) Preview(v PreviewView) Command {
	d.previews = append(d.previews, v.MapIndex)
	if len(d.commands) == 0 {
		return CmdQuit
	}
	cmd := d.commands[0]
	d.commands = d.commands[1:]
	return cmd
}

func (d *scriptedDisplay) BeginRun(v RunView) {
	d.runs++
	d.polled = false
}

func TestStateNext(t *testing.T) {
	tests := []struct {
		from State
		cmd  Command
		want State
	}{
		{StateMenu, CmdShowPreview, StatePreview},
		{StateMenu, CmdPlay, StateRunning},
		{StateMenu, CmdReturn, StateMenu},
		{StatePreview, CmdNone, StatePreview},
		{StatePreview, CmdNextMap, StatePreview},
		{StatePreview, CmdPlay, StateRunning},
		{StateRunning, CmdNone, StateRunning},
		{StateRunning, CmdNextMap, StateRunning},
		{StateRunning, CmdReturn, StateMenu},
		{StateRunning, CmdQuit, StateStopped},
		{StatePreview, CmdQuit, StateStopped},
		{StateMenu, CmdQuit, StateStopped},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.cmd.String(), func(t *testing.T) {
			if got := tt.from.Next(tt.cmd); got != tt.want {
				t.Errorf("%s.Next(%s) = %s, want %s", tt.from, tt.cmd, got, tt.want)
			}
		})
	}
}

func TestHeadlessRunStopsAtGenerationLimit(t *testing.T) {
	cfg := testSetup(t)
	outDir := filepath.Join(t.TempDir(), "out")

	var seen []telemetry.GenerationStats
	g, err := NewGame(cfg, Options{
		Seed:         7,
		OutputDir:    outDir,
		Generations:  3,
		NEAT:         smallNEAT(),
		OnGeneration: func(s telemetry.GenerationStats) { seen = append(seen, s) },
	})
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if g.State() != StateStopped {
		t.Errorf("expected stopped state, got %s", g.State())
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 generations, got %d", len(seen))
	}
	for i, s := range seen {
		if s.Generation != i+1 {
			t.Errorf("generation %d reported as %d", i+1, s.Generation)
		}
		if s.Map != "a.png" {
			t.Errorf("expected map a.png, got %q", s.Map)
		}
		if s.Population != 6 {
			t.Errorf("expected population 6, got %d", s.Population)
		}
		if s.Ticks < 1 || s.Ticks > 5 {
			t.Errorf("ticks %d outside [1, 5]", s.Ticks)
		}
	}

	f, err := os.Open(filepath.Join(outDir, "generations.csv"))
	if err != nil {
		t.Fatalf("opening generations.csv: %v", err)
	}
	defer f.Close()
	var rows []telemetry.GenerationStats
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		t.Fatalf("reading generations.csv: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 csv rows, got %d", len(rows))
	}
	if _, err := os.Stat(filepath.Join(outDir, "config.yaml")); err != nil {
		t.Errorf("expected config snapshot: %v", err)
	}
}

func TestCancelledContextStops(t *testing.T) {
	cfg := testSetup(t)
	g, err := NewGame(cfg, Options{NEAT: smallNEAT()})
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := g.Run(ctx); err != nil {
		t.Fatalf("cancelled run should exit cleanly, got %v", err)
	}
	if g.State() != StateStopped {
		t.Errorf("expected stopped state, got %s", g.State())
	}
}

func TestPreviewNextPlayAndReturn(t *testing.T) {
	cfg := testSetup(t)
	display := &scriptedDisplay{commands: []Command{CmdNone, CmdNextMap, CmdPlay}}

	var maps []string
	g, err := NewGame(cfg, Options{
		Seed:         1,
		NEAT:         smallNEAT(),
		Display:      display,
		OnGeneration: func(s telemetry.GenerationStats) { maps = append(maps, s.Map) },
	})
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// None, Next, Play on the first visit; the menu request returns to map 0
	// where the exhausted script quits.
	want := []int{0, 0, 1, 0}
	if len(display.previews) != len(want) {
		t.Fatalf("previews = %v, want %v", display.previews, want)
	}
	for i := range want {
		if display.previews[i] != want[i] {
			t.Errorf("preview %d showed map %d, want %d", i, display.previews[i], want[i])
		}
	}

	if display.runs != 1 {
		t.Errorf("expected 1 generation before returning, got %d", display.runs)
	}
	if display.frames == 0 {
		t.Error("expected rendered frames")
	}
	if len(maps) != 1 || maps[0] != "b.png" {
		t.Errorf("expected one generation on b.png, got %v", maps)
	}
}

func TestNewGameRejectsMismatchedNEAT(t *testing.T) {
	cfg := testSetup(t)

	tests := []struct {
		name   string
		modify func(*neural.Config)
	}{
		{"inputs", func(c *neural.Config) { c.Inputs = 3 }},
		{"outputs", func(c *neural.Config) { c.Outputs = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := smallNEAT()
			tt.modify(n)
			if _, err := NewGame(cfg, Options{NEAT: n}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewGameMissingCatalogue(t *testing.T) {
	cfg := testSetup(t)
	cfg.Track.InfoFile = filepath.Join(t.TempDir(), "missing.txt")

	if _, err := NewGame(cfg, Options{NEAT: smallNEAT()}); err == nil {
		t.Error("expected error for missing catalogue")
	}
}

func TestCrashedCarsIncludesDead(t *testing.T) {
	p := car.DefaultParams(20, 20)
	dead := car.New(p, 10, 10)
	dead.Alive = false
	dead.CrashMemory().Record(20, 20, 0)
	alive := car.New(p, 50, 50)
	alive.CrashMemory().Record(60, 60, 90)
	clean := car.New(p, 90, 90)

	got := crashedCars([]*car.Car{dead, alive, clean})
	if len(got) != 2 {
		t.Fatalf("crashedCars returned %d cars, want 2", len(got))
	}
	if got[0] != dead || got[1] != alive {
		t.Errorf("crashedCars = %v, want dead then alive car", got)
	}
}
