// Package raster is an offscreen field.Surface backed by an image.RGBA,
// used to render frames without a window.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"
)

// Surface paints antialiased shapes into an RGBA image.
type Surface struct {
	img        *image.RGBA
	background color.Color
	rast       *vector.Rasterizer
}

// New creates a width x height surface cleared to background.
func New(width, height int, background color.Color) *Surface {
	s := &Surface{background: background}
	s.Resize(width, height)
	return s
}

// Resize reallocates the image and clears it.
func (s *Surface) Resize(width, height int) {
	width = max(width, 0)
	height = max(height, 0)
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	s.rast = vector.NewRasterizer(width, height)
	s.Clear()
}

// SetBackground changes the colour used by Clear.
func (s *Surface) SetBackground(c color.Color) {
	s.background = c
}

// Clear fills the whole image with the background colour.
func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
}

// FillCircle approximates the circle with a polygon fine enough that the
// facets stay below a pixel.
func (s *Surface) FillCircle(x, y, r float64, c color.Color) {
	if r <= 0 {
		return
	}
	segments := max(12, int(math.Ceil(2*math.Pi*r/2)))
	s.begin()
	s.rast.MoveTo(float32(x+r), float32(y))
	for i := 1; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		s.rast.LineTo(float32(x+r*math.Cos(a)), float32(y+r*math.Sin(a)))
	}
	s.rast.ClosePath()
	s.paint(c)
}

// StrokeLine fills the quad around the segment. Widths under a pixel are
// widened to one so hairlines stay visible.
func (s *Surface) StrokeLine(x0, y0, x1, y1, width float64, c color.Color) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	half := math.Max(width, 1) / 2
	nx, ny := -dy/length*half, dx/length*half

	s.begin()
	s.rast.MoveTo(float32(x0+nx), float32(y0+ny))
	s.rast.LineTo(float32(x1+nx), float32(y1+ny))
	s.rast.LineTo(float32(x1-nx), float32(y1-ny))
	s.rast.LineTo(float32(x0-nx), float32(y0-ny))
	s.rast.ClosePath()
	s.paint(c)
}

func (s *Surface) begin() {
	b := s.img.Bounds()
	s.rast.Reset(b.Dx(), b.Dy())
	s.rast.DrawOp = draw.Over
}

func (s *Surface) paint(c color.Color) {
	s.rast.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{})
}

// Image returns the backing image. It is reused across frames.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// WritePNG encodes the current frame.
func (s *Surface) WritePNG(w io.Writer) error {
	if err := png.Encode(w, s.img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
