package track

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Surface is a track raster at the fixed logical resolution.
// Pixels matching the boundary color exactly are impassable.
// A Surface is read-only once built and may be shared by every car.
type Surface struct {
	img      *image.RGBA
	boundary color.RGBA
}

// NewSurface rescales src to width x height and classifies pixels against boundary.
// Alpha is dropped: every pixel keeps its straight color and becomes opaque.
func NewSurface(src image.Image, width, height int, boundary color.RGBA) *Surface {
	scaled := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)

	dst := image.NewRGBA(scaled.Bounds())
	for i := 0; i < len(scaled.Pix); i += 4 {
		copy(dst.Pix[i:i+3], scaled.Pix[i:i+3])
		dst.Pix[i+3] = 0xff
	}
	return &Surface{img: dst, boundary: boundary}
}

// Load decodes the image at path (PNG or BMP) and builds a Surface from it.
func Load(path string, width, height int, boundary color.RGBA) (*Surface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening track image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding track image %s: %w", path, err)
	}
	return NewSurface(src, width, height, boundary), nil
}

// Width returns the logical track width in pixels.
func (s *Surface) Width() int {
	return s.img.Rect.Dx()
}

// Height returns the logical track height in pixels.
func (s *Surface) Height() int {
	return s.img.Rect.Dy()
}

// Image exposes the scaled raster for rendering.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// At returns the pixel color at (x, y). Out-of-range samples return the boundary color.
func (s *Surface) At(x, y int) color.RGBA {
	if !s.inBounds(x, y) {
		return s.boundary
	}
	return s.img.RGBAAt(x, y)
}

// IsBoundary reports whether (x, y) is impassable.
// Samples outside the raster count as boundary.
func (s *Surface) IsBoundary(x, y int) bool {
	if !s.inBounds(x, y) {
		return true
	}
	i := s.img.PixOffset(x, y)
	p := s.img.Pix[i : i+4 : i+4]
	return p[0] == s.boundary.R && p[1] == s.boundary.G && p[2] == s.boundary.B && p[3] == s.boundary.A
}

func (s *Surface) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.img.Rect.Dx() && y < s.img.Rect.Dy()
}
