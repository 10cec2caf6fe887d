package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/carsim/car"
)

// Leader highlight colors
var (
	RadarColor     = rl.Yellow
	FootprintColor = rl.Green
	CrashColor     = rl.Color{R: 220, G: 40, B: 40, A: 200}
)

// RadarDotRadius is the radius of the circle drawn at each radar impact point.
const RadarDotRadius = 5

// DrawCar draws the car body rotated about its center, with a nose mark
// showing the heading.
func DrawCar(c *car.Car, tint rl.Color) {
	p := c.Params()
	w, h := float32(p.Width), float32(p.Height)
	cx, cy := float32(c.Center.X), float32(c.Center.Y)

	body := rl.Rectangle{X: cx, Y: cy, Width: w, Height: h}
	// Headings are counter-clockwise; raylib rotates clockwise on screen
	rl.DrawRectanglePro(body, rl.Vector2{X: w / 2, Y: h / 2}, float32(-c.Angle), tint)

	corners := c.Corners()
	nose := rl.Vector2{
		X: (float32(corners[0].X) + float32(corners[3].X)) / 2,
		Y: (float32(corners[0].Y) + float32(corners[3].Y)) / 2,
	}
	rl.DrawLineV(rl.Vector2{X: cx, Y: cy}, nose, rl.Black)
}

// DrawRadars draws every ray from the car center to its impact point.
func DrawRadars(c *car.Car) {
	center := rl.Vector2{X: float32(c.Center.X), Y: float32(c.Center.Y)}
	for _, r := range c.Radars {
		end := rl.Vector2{X: float32(r.Point.X), Y: float32(r.Point.Y)}
		rl.DrawLineV(center, end, RadarColor)
		rl.DrawCircleV(end, RadarDotRadius, RadarColor)
	}
}

// DrawFootprint outlines the car's unrotated footprint at its position.
func DrawFootprint(c *car.Car) {
	p := c.Params()
	rect := rl.Rectangle{
		X:      float32(c.Position.X),
		Y:      float32(c.Position.Y),
		Width:  float32(p.Width),
		Height: float32(p.Height),
	}
	rl.DrawRectangleLinesEx(rect, 2, FootprintColor)
}

// DrawCrashMarks draws a cross at each remembered crash, sized by its count.
func DrawCrashMarks(c *car.Car) {
	for _, e := range c.CrashMemory().Entries() {
		x, y := float32(e.Key.X), float32(e.Key.Y)
		s := float32(3 + min(e.Count, 5))
		rl.DrawLineV(rl.Vector2{X: x - s, Y: y - s}, rl.Vector2{X: x + s, Y: y + s}, CrashColor)
		rl.DrawLineV(rl.Vector2{X: x - s, Y: y + s}, rl.Vector2{X: x + s, Y: y - s}, CrashColor)
	}
}
