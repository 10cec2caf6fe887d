package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Button sizes and placement relative to the panel.
const (
	ButtonWidth   = 100
	ButtonHeight  = 50
	ButtonMarginX = 50 // from the left edge of the panel
)

// ButtonID names a panel button.
type ButtonID int

const (
	ButtonNone ButtonID = iota
	ButtonNext
	ButtonPlay
	ButtonReturn
)

func (b ButtonID) String() string {
	switch b {
	case ButtonNext:
		return "Next"
	case ButtonPlay:
		return "Play"
	case ButtonReturn:
		return "Return"
	default:
		return ""
	}
}

// ButtonRect returns the button's rectangle on a canvas whose map area is
// mapWidth wide and height tall. Next, Play and Return stack downward from
// 75px above the vertical middle.
func ButtonRect(id ButtonID, mapWidth, height int32) rl.Rectangle {
	x := float32(mapWidth + ButtonMarginX)
	mid := float32(height / 2)

	var y float32
	switch id {
	case ButtonNext:
		y = mid - 75
	case ButtonPlay:
		y = mid - 25
	case ButtonReturn:
		y = mid + 25
	}
	return rl.Rectangle{X: x, Y: y, Width: ButtonWidth, Height: ButtonHeight}
}

// ControlsPanel draws the panel buttons for the current screen.
type ControlsPanel struct {
	renderer *Renderer
	mapWidth int32
	height   int32
}

// NewControlsPanel creates a controls panel for a map of the given size.
func NewControlsPanel(mapWidth, height int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		mapWidth: mapWidth,
		height:   height,
	}
}

// Draw renders the given buttons and returns the one clicked this frame.
// Must be called between BeginDrawing/EndDrawing (or texture mode).
func (c *ControlsPanel) Draw(buttons ...ButtonID) ButtonID {
	clicked := ButtonNone
	for _, id := range buttons {
		rect := ButtonRect(id, c.mapWidth, c.height)

		// Color tab on the left edge identifies the button at a glance
		rl.DrawRectangle(int32(rect.X)-8, int32(rect.Y), 6, int32(rect.Height), c.buttonColor(id))

		if gui.Button(rect, id.String()) {
			clicked = id
		}
	}
	return clicked
}

func (c *ControlsPanel) buttonColor(id ButtonID) rl.Color {
	switch id {
	case ButtonNext:
		return c.renderer.Theme.NextButton
	case ButtonPlay:
		return c.renderer.Theme.PlayButton
	case ButtonReturn:
		return c.renderer.Theme.ReturnButton
	default:
		return rl.Gray
	}
}
