package game

import (
	"context"
	"image/color"
	"strconv"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/carsim/car"
	"github.com/pthm-cable/carsim/config"
	"github.com/pthm-cable/carsim/neural"
	"github.com/pthm-cable/carsim/renderer"
	"github.com/pthm-cable/carsim/sim"
	"github.com/pthm-cable/carsim/telemetry"
	"github.com/pthm-cable/carsim/track"
	"github.com/pthm-cable/carsim/ui"
)

// Display is the windowed side of the driver. No method may block.
type Display interface {
	sim.Frontend
	// Preview draws one preview frame and returns the command chosen on it.
	Preview(v PreviewView) Command
	// BeginRun is called before every generation.
	BeginRun(v RunView)
}

// PreviewView is what the map preview shows.
type PreviewView struct {
	Surface  *track.Surface
	Car      *car.Car
	Map      track.MapInfo
	MapIndex int
	MapCount int
}

// RunView is the per-generation context the running screen draws around frames.
type RunView struct {
	Surface  *track.Surface
	Tints    []color.RGBA // species color per genome index
	Started  time.Time    // wall-clock start of the run
	BestEver float64
	Species  []neural.SpeciesInfo
	Count    int // number of species
	Perf     telemetry.PerfStats
	Networks []neural.Topology // per genome index
}

// CarColor is the body color of cars when species colors are off.
var CarColor = rl.Color{R: 230, G: 60, B: 60, A: 255}

// RaylibDisplay draws the preview and the running generation into a
// letterboxed canvas and turns window input into commands and events.
type RaylibDisplay struct {
	mapWidth   int32
	panelWidth int32
	height     int32
	cancel     context.CancelFunc

	canvas    *renderer.Canvas
	track     *renderer.TrackRenderer
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	species   *ui.SpeciesPanel
	inspector *ui.Inspector
	perfPanel *ui.PerfPanel
	network   *ui.NetworkPanel
	overlays  *ui.OverlayRegistry

	maxRadar     float64
	inputLabels  []string
	outputLabels []string

	run     RunView
	pending []sim.Event
}

// NewRaylibDisplay creates the display (must be called after the raylib
// window is created). cancel is called when the window is closed.
func NewRaylibDisplay(cfg *config.Config, cancel context.CancelFunc) *RaylibDisplay {
	mapW := int32(cfg.Screen.MapWidth)
	panelW := int32(cfg.Screen.PanelWidth)
	h := int32(cfg.Screen.MapHeight)

	d := &RaylibDisplay{
		mapWidth:   mapW,
		panelWidth: panelW,
		height:     h,
		cancel:     cancel,
		canvas:     renderer.NewCanvas(int32(cfg.Derived.TotalWidth), h),
		track:      renderer.NewTrackRenderer(),
		hud:        ui.NewHUD(mapW),
		controls:   ui.NewControlsPanel(mapW, h),
		species:    ui.NewSpeciesPanel(mapW, h/2-110, panelW),
		inspector:  ui.NewInspector(mapW, h/2+85, panelW, len(cfg.Car.SensorOffsets), cfg.Car.MaxRadar),
		perfPanel:  ui.NewPerfPanel(mapW, h/2+85),
		network:    ui.NewNetworkPanel(10, h-170, 260, 160),
		overlays:   ui.NewOverlayRegistry(),
		maxRadar:   float64(cfg.Car.MaxRadar),
	}
	for _, off := range cfg.Car.SensorOffsets {
		d.inputLabels = append(d.inputLabels, strconv.FormatFloat(off, 'f', -1, 64))
	}
	for a := range sim.NumActions {
		d.outputLabels = append(d.outputLabels, sim.Action(a).String())
	}
	d.canvas.Init()
	return d
}

// Close frees GPU resources.
func (d *RaylibDisplay) Close() {
	d.track.Unload()
	d.canvas.Unload()
}

// closed reports a window close request and cancels the run.
func (d *RaylibDisplay) closed() bool {
	if rl.WindowShouldClose() {
		d.cancel()
		return true
	}
	return false
}

// Poll returns queued navigation events. Key presses toggle overlays and
// are consumed here.
func (d *RaylibDisplay) Poll() (sim.Event, bool) {
	if d.closed() {
		return sim.EventNone, false
	}

	if len(d.pending) > 0 {
		ev := d.pending[0]
		d.pending = d.pending[1:]
		return ev, true
	}

	if key := rl.GetKeyPressed(); key != 0 {
		d.handleKey(key)
		return sim.EventNone, true
	}
	return sim.EventNone, false
}

func (d *RaylibDisplay) handleKey(key int32) {
	if key == rl.KeyF11 {
		rl.ToggleFullscreen()
		return
	}
	d.overlays.HandleKeyPress(key)
}

// BeginRun stores the generation context and uploads the track if it changed.
func (d *RaylibDisplay) BeginRun(v RunView) {
	d.run = v
	d.pending = d.pending[:0]
	d.track.SetSurface(v.Surface)
}

// Preview draws the selected map with a car at its start pose.
func (d *RaylibDisplay) Preview(v PreviewView) Command {
	if d.closed() {
		return CmdQuit
	}
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		d.handleKey(key)
	}
	d.track.SetSurface(v.Surface)

	d.canvas.Begin()
	rl.ClearBackground(rl.White)
	d.track.Draw()
	if v.Car != nil {
		renderer.DrawCar(v.Car, CarColor)
	}

	d.hud.DrawPanelBackground(d.mapWidth, d.panelWidth, d.height)
	d.hud.DrawPreview(ui.PreviewData{
		MapFile:  v.Map.File,
		MapIndex: v.MapIndex,
		MapCount: v.MapCount,
	})
	clicked := d.controls.Draw(ui.ButtonNext, ui.ButtonPlay)
	d.canvas.End()
	d.canvas.Present()

	switch clicked {
	case ui.ButtonNext:
		return CmdNextMap
	case ui.ButtonPlay:
		return CmdPlay
	default:
		return CmdNone
	}
}

// Render draws one tick of the running generation.
func (d *RaylibDisplay) Render(f sim.Frame) {
	d.canvas.Begin()
	rl.ClearBackground(rl.White)
	d.track.Draw()

	// Crashes are recorded on death, so marks come from dead cars too.
	if d.overlays.IsEnabled(ui.OverlayCrashMarks) {
		for _, c := range crashedCars(f.Cars) {
			renderer.DrawCrashMarks(c)
		}
	}

	for i, c := range f.Cars {
		if !c.Alive {
			continue
		}
		renderer.DrawCar(c, d.carTint(i))

		if d.overlays.IsEnabled(ui.OverlayAllRadars) {
			renderer.DrawRadars(c)
		}
		if i == f.Leader && d.overlays.IsEnabled(ui.OverlayLeaderRadars) {
			renderer.DrawRadars(c)
			renderer.DrawFootprint(c)
		}
	}

	if d.overlays.IsEnabled(ui.OverlayNetwork) && f.Leader < len(d.run.Networks) && f.Leader < len(f.Cars) {
		d.drawNetwork(f.Leader, f.Cars[f.Leader])
	}

	d.drawPanel(f)
	d.canvas.End()
	d.canvas.Present()
}

func (d *RaylibDisplay) drawPanel(f sim.Frame) {
	d.hud.DrawPanelBackground(d.mapWidth, d.panelWidth, d.height)
	d.hud.Draw(ui.HUDData{
		Generation: f.Generation,
		Alive:      f.Alive,
		Elapsed:    time.Since(d.run.Started),
	})

	if d.controls.Draw(ui.ButtonReturn) == ui.ButtonReturn {
		d.pending = append(d.pending, sim.EventMenu)
	}

	rows := make([]ui.SpeciesRow, len(d.run.Species))
	for i, sp := range d.run.Species {
		rows[i] = ui.SpeciesRow{
			ID:        sp.ID,
			Size:      sp.Size,
			Staleness: sp.Staleness,
			Fitness:   sp.Fitness,
			Color:     rl.Color{R: sp.Color.R, G: sp.Color.G, B: sp.Color.B, A: 255},
		}
	}
	d.species.Draw(ui.SpeciesData{Species: d.run.Count, BestEver: d.run.BestEver, Top: rows})

	switch {
	case d.overlays.IsEnabled(ui.OverlayInspector) && f.Leader < len(f.Cars):
		d.inspector.Draw(ui.LeaderData{
			Car:     f.Cars[f.Leader],
			Index:   f.Leader,
			Fitness: f.Fitness[f.Leader],
		})
	case d.overlays.IsEnabled(ui.OverlayPerf):
		d.perfPanel.Draw(ui.PerfPanelData{
			PhaseAvg: d.run.Perf.PhaseAvg,
			Phases:   telemetry.Phases,
			Total:    d.run.Perf.AvgTickDuration,
			FPS:      float64(rl.GetFPS()),
		})
	}
}

// drawNetwork shows the leader's topology with its radar readings as input activity.
func (d *RaylibDisplay) drawNetwork(leader int, c *car.Car) {
	inputs := make([]float64, len(c.Radars))
	for i, r := range c.Radars {
		inputs[i] = float64(r.Length) / d.maxRadar
	}
	d.network.Draw(ui.NetworkData{
		Topology:     d.run.Networks[leader],
		Inputs:       inputs,
		InputLabels:  d.inputLabels,
		OutputLabels: d.outputLabels,
	})
}

// crashedCars returns the cars, dead or alive, that remember at least one crash.
func crashedCars(cars []*car.Car) []*car.Car {
	var out []*car.Car
	for _, c := range cars {
		if c.CrashMemory().Len() > 0 {
			out = append(out, c)
		}
	}
	return out
}

func (d *RaylibDisplay) carTint(i int) rl.Color {
	if !d.overlays.IsEnabled(ui.OverlaySpeciesColors) || i >= len(d.run.Tints) {
		return CarColor
	}
	c := d.run.Tints[i]
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

var _ Display = (*RaylibDisplay)(nil)
