package ui

import (
	"fmt"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds the run counters shown at the top of the panel.
type HUDData struct {
	Generation int
	Alive      int
	Elapsed    time.Duration // wall-clock time since Play
}

// HUD renders the run counters in the side panel.
type HUD struct {
	renderer *Renderer
	x        int32
}

// NewHUD creates a HUD for a panel starting at mapWidth.
func NewHUD(mapWidth int32) *HUD {
	return &HUD{
		renderer: NewRenderer(),
		x:        mapWidth + 20,
	}
}

// DrawPanelBackground fills the side panel.
func (h *HUD) DrawPanelBackground(mapWidth, panelWidth, height int32) {
	h.renderer.DrawPanel(mapWidth, 0, panelWidth, height)
}

// Draw renders generation, alive count and elapsed whole seconds.
func (h *HUD) Draw(data HUDData) {
	size := h.renderer.Theme.HUDFontSize
	color := h.renderer.Theme.TextColor

	rl.DrawText(fmt.Sprintf("Gen: %d", data.Generation), h.x, 50, size, color)
	rl.DrawText(fmt.Sprintf("Alive: %d", data.Alive), h.x, 100, size, color)
	rl.DrawText(fmt.Sprintf("Time: %ds", int(data.Elapsed.Seconds())), h.x, 150, size, color)
}

// PreviewData holds what the map preview shows.
type PreviewData struct {
	MapFile  string
	MapIndex int
	MapCount int
}

// DrawPreview renders the selected map's name and position in the catalogue.
func (h *HUD) DrawPreview(data PreviewData) {
	r := h.renderer
	rl.DrawText(fmt.Sprintf("Map %d/%d", data.MapIndex+1, data.MapCount), h.x, 50, r.Theme.HUDFontSize-6, r.Theme.TextColor)
	rl.DrawText(filepath.Base(data.MapFile), h.x, 85, r.Theme.FontSize+2, r.Theme.LabelColor)
}

// SpeciesData holds data for the species panel.
type SpeciesData struct {
	Species  int
	BestEver float64
	Top      []SpeciesRow
}

// SpeciesRow is one line of the species table.
type SpeciesRow struct {
	ID        int
	Size      int
	Staleness int
	Fitness   float64
	Color     rl.Color
}

// SpeciesPanel renders the species overview.
type SpeciesPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewSpeciesPanel creates a species panel.
func NewSpeciesPanel(x, y, width int32) *SpeciesPanel {
	return &SpeciesPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the species panel and returns the Y below it.
func (s *SpeciesPanel) Draw(data SpeciesData) int32 {
	r := s.renderer
	x := s.x + r.Theme.Padding
	y := s.y

	y = r.DrawSectionHeader(x, y, "Species")
	y = r.DrawLabelValue(x, y, "Count", fmt.Sprintf("%d", data.Species))
	y = r.DrawLabelValue(x, y, "Best", fmt.Sprintf("%.0f", data.BestEver))

	swatchSize := int32(8)
	for i, sp := range data.Top {
		if i >= 5 {
			break
		}
		rl.DrawRectangle(x, y+2, swatchSize, swatchSize, sp.Color)
		text := fmt.Sprintf("#%d: %d (stale %d)", sp.ID, sp.Size, sp.Staleness)
		rl.DrawText(text, x+swatchSize+4, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
	}

	return y + 4
}

// PerfPanelData holds per-phase tick timings.
type PerfPanelData struct {
	PhaseAvg map[string]time.Duration
	Phases   []string // display order
	Total    time.Duration
	FPS      float64
}

// PerfPanel renders the tick timing breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData) {
	r := p.renderer
	x := p.x + r.Theme.Padding
	y := p.y

	y = r.DrawSectionHeader(x, y, "Tick")
	y = r.DrawLabelValue(x, y, "Total", data.Total.Round(time.Microsecond).String())
	for _, name := range data.Phases {
		avg := data.PhaseAvg[name]
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := r.Theme.LabelColor
		if pct > 50 {
			color = rl.Maroon
		}
		rl.DrawText(fmt.Sprintf("%-7s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct), x, y, r.Theme.FontSize, color)
		y += r.Theme.LineHeight
	}
	if data.FPS > 0 {
		r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%.0f", data.FPS))
	}
}
