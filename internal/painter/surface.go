// Package painter draws generative weather art onto a raster surface.
package painter

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrNoSurface is returned when a surface cannot be created for the
// requested dimensions. Rendering never starts without a surface.
var ErrNoSurface = errors.New("no drawable surface")

// Surface is the pixel buffer for a single render. It is never shared
// between renders.
type Surface struct {
	dc *gg.Context
	w  float64
	h  float64
}

// NewSurface allocates a transparent width×height surface.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrNoSurface, width, height)
	}
	return &Surface{
		dc: gg.NewContext(width, height),
		w:  float64(width),
		h:  float64(height),
	}, nil
}

func (s *Surface) Width() int  { return s.dc.Width() }
func (s *Surface) Height() int { return s.dc.Height() }

// Image returns the surface's backing image.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// FillVertical paints a top-to-bottom gradient from colors[0] to the last
// colour over the whole surface.
func (s *Surface) FillVertical(colors []string) {
	s.fillGradient(0, 0, 0, s.h, colors)
}

// FillDiagonal paints a top-left to bottom-right gradient through the
// first, middle and last colours.
func (s *Surface) FillDiagonal(colors []string) {
	if len(colors) == 0 {
		s.fillGradient(0, 0, s.w, s.h, nil)
		return
	}
	stops := []string{colors[0], colors[len(colors)/2], colors[len(colors)-1]}
	s.fillGradient(0, 0, s.w, s.h, stops)
}

func (s *Surface) fillGradient(x0, y0, x1, y1 float64, stops []string) {
	swatches := parseSwatches(stops)

	// Opaque base so no pixel is left untouched by antialiasing.
	s.dc.SetColor(swatches[0])
	s.dc.Clear()

	if len(swatches) < 2 {
		return
	}
	g := gg.NewLinearGradient(x0, y0, x1, y1)
	last := float64(len(swatches) - 1)
	for i, c := range swatches {
		g.AddColorStop(float64(i)/last, c)
	}
	s.dc.SetFillStyle(g)
	s.dc.DrawRectangle(0, 0, s.w, s.h)
	s.dc.Fill()
}

// swatches is a parsed palette. It always holds at least one colour.
type swatches []colorful.Color

var white = colorful.Color{R: 1, G: 1, B: 1}

func parseSwatches(hexes []string) swatches {
	out := make(swatches, 0, len(hexes))
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			// Unparseable entries render black rather than failing.
			c = colorful.Color{}
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		out = append(out, white)
	}
	return out
}
