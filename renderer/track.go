package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/carsim/track"
)

// TrackRenderer draws a track surface from a GPU texture.
// The texture is rebuilt only when the surface changes.
type TrackRenderer struct {
	surface *track.Surface
	tex     rl.Texture2D
	loaded  bool
}

// NewTrackRenderer creates an empty track renderer.
func NewTrackRenderer() *TrackRenderer {
	return &TrackRenderer{}
}

// SetSurface uploads s (must be called after the raylib window is created).
func (t *TrackRenderer) SetSurface(s *track.Surface) {
	if s == t.surface {
		return
	}
	t.Unload()
	t.surface = s
	if s == nil {
		return
	}

	img := rl.NewImageFromImage(s.Image())
	t.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(t.tex, rl.FilterPoint)
	t.loaded = true
}

// Draw renders the track at the canvas origin.
func (t *TrackRenderer) Draw() {
	if !t.loaded {
		return
	}
	rl.DrawTexture(t.tex, 0, 0, rl.White)
}

// Unload frees the texture.
func (t *TrackRenderer) Unload() {
	if !t.loaded {
		return
	}
	rl.UnloadTexture(t.tex)
	t.surface = nil
	t.loaded = false
}
