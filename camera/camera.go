// Package camera maps the fixed logical canvas onto a resizable window.
package camera

// Viewport letterboxes a logical canvas of fixed size into the window.
// The canvas keeps its aspect ratio; the spare space is split evenly
// on both sides.
type Viewport struct {
	// Logical canvas size (track plus side panel)
	LogicalW, LogicalH float32

	// Window size in screen pixels
	WindowW, WindowH float32

	// Derived on Resize
	Scale            float32
	OffsetX, OffsetY float32
}

// New creates a viewport for a logicalW x logicalH canvas in a windowW x windowH window.
func New(logicalW, logicalH, windowW, windowH float32) *Viewport {
	v := &Viewport{LogicalW: logicalW, LogicalH: logicalH}
	v.Resize(windowW, windowH)
	return v
}

// Resize updates the window dimensions and recomputes scale and offsets.
// A degenerate window keeps the previous mapping.
func (v *Viewport) Resize(windowW, windowH float32) {
	if windowW <= 0 || windowH <= 0 {
		return
	}
	if windowW == v.WindowW && windowH == v.WindowH && v.Scale > 0 {
		return
	}
	v.WindowW = windowW
	v.WindowH = windowH

	v.Scale = min(windowW/v.LogicalW, windowH/v.LogicalH)
	v.OffsetX = (windowW - v.LogicalW*v.Scale) / 2
	v.OffsetY = (windowH - v.LogicalH*v.Scale) / 2
}

// LogicalToScreen converts canvas coordinates to window coordinates.
func (v *Viewport) LogicalToScreen(lx, ly float32) (sx, sy float32) {
	return v.OffsetX + lx*v.Scale, v.OffsetY + ly*v.Scale
}

// ScreenToLogical converts window coordinates to canvas coordinates.
func (v *Viewport) ScreenToLogical(sx, sy float32) (lx, ly float32) {
	return (sx - v.OffsetX) / v.Scale, (sy - v.OffsetY) / v.Scale
}

// Contains reports whether a window point falls on the canvas.
func (v *Viewport) Contains(sx, sy float32) bool {
	lx, ly := v.ScreenToLogical(sx, sy)
	return lx >= 0 && ly >= 0 && lx < v.LogicalW && ly < v.LogicalH
}

// Bounds returns the canvas rectangle in window coordinates.
func (v *Viewport) Bounds() (x, y, w, h float32) {
	return v.OffsetX, v.OffsetY, v.LogicalW * v.Scale, v.LogicalH * v.Scale
}

// ClampToCanvas restricts a canvas point to the canvas.
func (v *Viewport) ClampToCanvas(lx, ly float32) (float32, float32) {
	return clamp(lx, 0, v.LogicalW), clamp(ly, 0, v.LogicalH)
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
