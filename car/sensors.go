package car

import "image"

// updateRadars replaces last tick's readings with one ray per sensor offset.
func (c *Car) updateRadars(s Surface) {
	c.Radars = c.Radars[:0]
	for _, off := range c.params.SensorOffsets {
		c.Radars = append(c.Radars, c.castRay(s, off))
	}
}

// castRay marches from the center one pixel at a time until it samples a
// boundary pixel or reaches MaxRadar. Out-of-range samples stop the ray.
func (c *Car) castRay(s Surface, offset float64) Radar {
	dx, dy := heading(c.Angle + offset)
	at := func(length int) (int, int) {
		l := float64(length)
		return int(c.Center.X + dx*l), int(c.Center.Y + dy*l)
	}

	length := 0
	x, y := at(length)
	for !s.IsBoundary(x, y) && length < c.params.MaxRadar {
		length++
		x, y = at(length)
	}
	return Radar{Point: image.Pt(x, y), Length: length}
}

// Inputs returns the controller inputs: one int(length/SensorScale) per
// sensor, 0 for sensors without a reading yet.
func (c *Car) Inputs() []float64 {
	out := make([]float64, len(c.params.SensorOffsets))
	for i, r := range c.Radars {
		if i >= len(out) {
			break
		}
		out[i] = float64(int(float64(r.Length) / c.params.SensorScale))
	}
	return out
}
