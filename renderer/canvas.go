// Package renderer draws the track, the cars and the offscreen canvas they
// are composed on.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/carsim/camera"
)

// Canvas is an offscreen render target at the logical resolution.
// Everything is drawn in logical coordinates and presented letterboxed.
type Canvas struct {
	target   rl.RenderTexture2D
	width    int32
	height   int32
	viewport *camera.Viewport

	initialized bool
}

// NewCanvas creates a canvas of the given logical size.
func NewCanvas(width, height int32) *Canvas {
	return &Canvas{
		width:    width,
		height:   height,
		viewport: camera.New(float32(width), float32(height), float32(width), float32(height)),
	}
}

// Init allocates the render target (must be called after the raylib window is created).
func (c *Canvas) Init() {
	if c.initialized {
		return
	}
	c.target = rl.LoadRenderTexture(c.width, c.height)
	rl.SetTextureFilter(c.target.Texture, rl.FilterBilinear)
	c.initialized = true
}

// Viewport returns the current logical-to-window mapping.
func (c *Canvas) Viewport() *camera.Viewport {
	return c.viewport
}

// Begin follows window resizes and starts drawing into the canvas.
// Mouse input is remapped so widgets see logical coordinates.
func (c *Canvas) Begin() {
	if !c.initialized {
		c.Init()
	}

	c.viewport.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	rl.SetMouseOffset(-int(c.viewport.OffsetX), -int(c.viewport.OffsetY))
	rl.SetMouseScale(1/c.viewport.Scale, 1/c.viewport.Scale)

	rl.BeginTextureMode(c.target)
}

// End stops drawing into the canvas.
func (c *Canvas) End() {
	rl.EndTextureMode()
}

// Present draws the canvas into the window.
func (c *Canvas) Present() {
	// Render textures are stored upside down
	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(c.width), Height: -float32(c.height)}
	x, y, w, h := c.viewport.Bounds()
	dstRect := rl.Rectangle{X: x, Y: y, Width: w, Height: h}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	rl.DrawTexturePro(c.target.Texture, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
	rl.EndDrawing()
}

// Unload frees GPU resources.
func (c *Canvas) Unload() {
	if !c.initialized {
		return
	}
	rl.UnloadRenderTexture(c.target)
	c.initialized = false
}
