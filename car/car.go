package car

import "image"

// cornerOffsets are the hull corner directions relative to heading, degrees.
// The hull is a diamond of radius Width/2, not the true rectangle.
var cornerOffsets = [4]float64{30, 150, 210, 330}

// Surface is the read-only track a car drives on.
type Surface interface {
	Width() int
	Height() int
	IsBoundary(x, y int) bool
}

// Radar is one sensor reading: where the ray stopped and how far it went.
type Radar struct {
	Point  image.Point
	Length int
}

// Car is one agent's kinematic and sensing state.
// A dead car is frozen: Update is a no-op and Alive never returns to true.
type Car struct {
	params Params

	Position Vec2    // top-left of the footprint
	Center   Vec2    // derived from Position each update
	Angle    float64 // degrees, counter-clockwise from east, not normalized
	Speed    float64
	Alive    bool
	Distance float64 // odometer: sum of Speed over updates
	Ticks    int     // updates survived

	Radars []Radar

	speedSet bool
	corners  [4]Vec2
	crash    *CrashMemory
}

// New creates a car at the given top-left start position, heading east, speed unset.
func New(p Params, startX, startY float64) *Car {
	c := &Car{
		params:   p,
		Position: Vec2{X: startX, Y: startY},
		Alive:    true,
		Radars:   make([]Radar, 0, len(p.SensorOffsets)),
		crash:    NewCrashMemory(p.CrashBucket),
	}
	c.Center = Vec2{
		X: startX + float64(p.Width)/2,
		Y: startY + float64(p.Height)/2,
	}
	return c
}

// Params returns the parameters the car was built with.
func (c *Car) Params() Params {
	return c.params
}

// SpeedSet reports whether the initial speed has been assigned.
func (c *Car) SpeedSet() bool {
	return c.speedSet
}

// CrashMemory returns the car's crash record.
func (c *Car) CrashMemory() *CrashMemory {
	return c.crash
}

// Corners returns the hull corners computed by the last update.
func (c *Car) Corners() [4]Vec2 {
	return c.corners
}

// Steer turns the heading by deg degrees.
func (c *Car) Steer(deg float64) {
	c.Angle += deg
}

// Brake lowers the speed by one step unless that would drop below MinSpeed.
func (c *Car) Brake() {
	if c.Speed-c.params.SpeedStep >= c.params.MinSpeed {
		c.Speed -= c.params.SpeedStep
	}
}

// Accelerate raises the speed by one step.
func (c *Car) Accelerate() {
	c.Speed += c.params.SpeedStep
}

// Update advances the car one tick on s: bias, re-center, move, clamp,
// collide, then sense. It does nothing once the car is dead.
func (c *Car) Update(s Surface) {
	if !c.Alive {
		return
	}

	if !c.speedSet {
		c.Speed = c.params.InitialSpeed
		c.speedSet = true
	}

	c.Angle += c.crash.Bias(c.Center, c.Angle, c.params.AvoidRadius, c.params.AvoidStep, c.params.AvoidMaxWeight)

	// Keep the rotated footprint centered where the unrotated one was
	c.Position, _, _ = recenter(c.Position, c.params.Width, c.params.Height, c.Angle)

	dx, dy := heading(c.Angle)
	maxX := float64(s.Width() - c.params.Width)
	maxY := float64(s.Height() - c.params.Height)

	c.Position.X = clamp(c.Position.X+dx*c.Speed, 0, maxX)
	c.Distance += c.Speed
	c.Ticks++
	c.Position.Y = clamp(c.Position.Y+dy*c.Speed, 0, maxY)

	c.Center = Vec2{
		X: float64(int(c.Position.X)) + float64(c.params.Width)/2,
		Y: float64(int(c.Position.Y)) + float64(c.params.Height)/2,
	}

	c.updateCorners()
	c.checkCollision(s)
	c.updateRadars(s)
}

// updateCorners places the hull diamond around the current center.
func (c *Car) updateCorners() {
	length := 0.5 * float64(c.params.Width)
	for i, off := range cornerOffsets {
		dx, dy := heading(c.Angle + off)
		c.corners[i] = Vec2{X: c.Center.X + dx*length, Y: c.Center.Y + dy*length}
	}
}

// checkCollision kills the car on the first corner that sits on a boundary
// pixel and records the crash.
func (c *Car) checkCollision(s Surface) {
	for _, p := range c.corners {
		if s.IsBoundary(int(p.X), int(p.Y)) {
			c.Alive = false
			c.crash.Record(c.Center.X, c.Center.Y, c.Angle)
			return
		}
	}
}

// Reward is the fitness earned for the current tick: distance in half-widths,
// less the death penalty once the car has crashed.
func (c *Car) Reward() float64 {
	reward := c.Distance / (float64(c.params.Width) / 2)
	if !c.Alive {
		reward -= c.params.DeathPenalty
	}
	return reward
}

// Footprint returns the rotated drawing rectangle at the current pose.
func (c *Car) Footprint() image.Rectangle {
	pos, w, h := recenter(c.Position, c.params.Width, c.params.Height, c.Angle)
	x, y := int(pos.X), int(pos.Y)
	return image.Rect(x, y, x+w, y+h)
}
