package car

import "math"

// degToRad converts degrees to radians.
const degToRad = math.Pi / 180

// Vec2 is a point or offset in track pixels.
type Vec2 struct {
	X, Y float64
}

// heading returns the unit direction for a heading in degrees.
// Screen y grows downward, so headings are negated before the trig.
func heading(deg float64) (dx, dy float64) {
	r := (360 - deg) * degToRad
	return math.Cos(r), math.Sin(r)
}

// rotatedExtents returns the axis-aligned size of a w x h raster rotated by
// angle degrees. Quarter turns are exact; other angles take the truncated
// maximum projection of the corners, matching raster rotation.
func rotatedExtents(w, h int, angle float64) (int, int) {
	if math.Mod(angle, 90) == 0 {
		turns := int(angle/90) % 4
		if turns%2 == 0 {
			return w, h
		}
		return h, w
	}

	s, c := math.Sincos(angle * degToRad)
	cx, cy := c*float64(w), c*float64(h)
	sx, sy := s*float64(w), s*float64(h)

	nx := max(math.Abs(cx+sy), math.Abs(cx-sy), math.Abs(-cx+sy), math.Abs(-cx-sy))
	ny := max(math.Abs(sx+cy), math.Abs(sx-cy), math.Abs(-sx+cy), math.Abs(-sx-cy))
	return int(nx), int(ny)
}

// recenter returns the top-left of the rotated footprint whose center
// matches the center of the unrotated footprint at pos, plus its size.
// All arithmetic is on integer rects, as with a raster blit.
func recenter(pos Vec2, w, h int, angle float64) (Vec2, int, int) {
	cx := int(pos.X) + w/2
	cy := int(pos.Y) + h/2
	nw, nh := rotatedExtents(w, h, angle)
	return Vec2{X: float64(cx - nw/2), Y: float64(cy - nh/2)}, nw, nh
}

// clamp restricts x to [lo, hi]; hi wins when the range is empty.
func clamp(x, lo, hi float64) float64 {
	x = math.Max(x, lo)
	return math.Min(x, hi)
}
