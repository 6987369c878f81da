package painter

import (
	"math"
	"math/rand/v2"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lox/unplugged/internal/artstyle"
)

// brush carries per-render drawing state.
type brush struct {
	s   *Surface
	rng *rand.Rand
	pal swatches
	p   artstyle.DrawingParams
}

// pick returns a uniformly random palette colour.
func (b *brush) pick() colorful.Color {
	return b.pal[b.rng.IntN(len(b.pal))]
}

// between returns a uniform value in [lo, lo+span).
func (b *brush) between(lo, span float64) float64 {
	return lo + b.rng.Float64()*span
}

func (b *brush) set(c colorful.Color, alpha float64) {
	b.s.dc.SetRGBA(c.R, c.G, c.B, alpha)
}

func (b *brush) randomPoint() (float64, float64) {
	return b.rng.Float64() * b.s.w, b.rng.Float64() * b.s.h
}

// strokeWidth is the stroke width capped at the surface diagonal. Anything
// wider paints the same pixels but costs time proportional to its size.
func (b *brush) strokeWidth() float64 {
	return math.Min(b.p.StrokeWidth, math.Hypot(b.s.w, b.s.h))
}

// count turns a fractional loop bound into an iteration count, running
// once more for any fractional part.
func count(n float64) int {
	return int(math.Ceil(n))
}

// impressionism scatters small unmixed dabs of colour.
func (b *brush) impressionism() {
	dc := b.s.dc
	n := count(b.p.Density * 3)
	for range n {
		x, y := b.randomPoint()
		c := b.pick()
		size := b.between(5, 15)
		b.set(c, b.between(0.3, 0.4))
		dc.DrawCircle(x, y, size)
		dc.Fill()
	}
}

// abstractExpressionism sweeps bezier gestures along the wind direction.
func (b *brush) abstractExpressionism() {
	dc := b.s.dc
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	angle := b.p.Directionality / 180 * math.Pi
	dx, dy := math.Cos(angle), math.Sin(angle)
	curve := b.p.Distortion * 3

	for range 20 {
		sx, sy := b.randomPoint()
		c := b.pick()
		dc.SetLineWidth(3 + b.rng.Float64()*b.strokeWidth()*3)
		b.set(c, b.between(0.4, 0.4))

		jitter := func() float64 { return b.rng.Float64()*100 - 50 }
		c1x := sx + dx*curve + jitter()
		c1y := sy + dy*curve + jitter()
		c2x := sx + dx*curve*2 + jitter()
		c2y := sy + dy*curve*2 + jitter()
		ex := sx + dx*curve*3 + jitter()
		ey := sy + dy*curve*3 + jitter()

		dc.MoveTo(sx, sy)
		dc.CubicTo(c1x, c1y, c2x, c2y, ex, ey)
		dc.Stroke()
	}
}

// watercolor lays translucent irregular blobs with quadratic edges.
func (b *brush) watercolor() {
	dc := b.s.dc
	for range 10 {
		x, y := b.randomPoint()
		c := b.pick()
		size := b.between(30, 100)
		b.set(c, b.between(0.1, 0.2))

		points := 8 + b.rng.IntN(8)
		step := 2 * math.Pi / float64(points)
		for j := range points {
			a := float64(j) * step
			r := size * b.between(0.5, 0.5)
			px, py := x+math.Cos(a)*r, y+math.Sin(a)*r
			if j == 0 {
				dc.MoveTo(px, py)
				continue
			}
			mid := (float64(j-1)*step + a) / 2
			dc.QuadraticTo(x+math.Cos(mid)*r*1.5, y+math.Sin(mid)*r*1.5, px, py)
		}
		dc.ClosePath()
		dc.Fill()
	}
}

// geometric tiles a 4-7 cell grid with rectangles, circles and triangles.
func (b *brush) geometric() {
	dc := b.s.dc
	grid := 4 + b.rng.IntN(4)
	cw := b.s.w / float64(grid)
	ch := b.s.h / float64(grid)

	for gx := range grid {
		for gy := range grid {
			if b.rng.Float64() <= 0.3 {
				continue
			}
			c := b.pick()
			shape := b.rng.IntN(3)
			x0 := float64(gx) * cw
			y0 := float64(gy) * ch
			size := math.Min(cw, ch) * b.between(0.5, 0.5)
			b.set(c, b.between(0.7, 0.3))

			switch shape {
			case 0:
				dc.DrawRectangle(x0+(cw-size)/2, y0+(ch-size)/2, size, size)
			case 1:
				dc.DrawCircle(x0+cw/2, y0+ch/2, size/2)
			default:
				dc.MoveTo(x0+cw/2, y0+(ch-size)/2)
				dc.LineTo(x0+(cw-size)/2, y0+(ch+size)/2)
				dc.LineTo(x0+(cw+size)/2, y0+(ch+size)/2)
				dc.ClosePath()
			}
			dc.Fill()
		}
	}
}

// minimalism places one to three solid primitives in the central 60%.
func (b *brush) minimalism() {
	dc := b.s.dc
	c := b.pick()
	n := 1 + b.rng.IntN(3)
	b.set(c, 1)

	for range n {
		x := b.s.w * b.between(0.2, 0.6)
		y := b.s.h * b.between(0.2, 0.6)
		size := math.Min(b.s.w, b.s.h) * b.between(0.05, 0.2)

		switch b.rng.IntN(3) {
		case 0:
			dc.DrawCircle(x, y, size)
		case 1:
			dc.DrawRectangle(x-size*2, y, size*4, size/10)
		default:
			dc.DrawRectangle(x-size/2, y-size/2, size, size)
		}
		dc.Fill()
	}
}

// pointillism stipples dense dots no larger than the stroke width.
func (b *brush) pointillism() {
	dc := b.s.dc
	n := count(b.p.Density * 8)
	width := b.strokeWidth()
	for range n {
		x, y := b.randomPoint()
		c := b.pick()
		size := 1 + b.rng.Float64()*width
		b.set(c, b.between(0.6, 0.4))
		dc.DrawCircle(x, y, size)
		dc.Fill()
	}
}

// glitch draws displaced horizontal bands and pixel noise.
func (b *brush) glitch() {
	dc := b.s.dc
	stripes := 5 + b.rng.IntN(10)
	sh := b.s.h / float64(stripes)

	for i := range stripes {
		y := float64(i) * sh
		c := b.pick()
		offset := b.rng.Float64() * b.p.Distortion * 2
		b.set(c, b.between(0.3, 0.4))

		if b.rng.Float64() > 0.7 {
			dc.DrawRectangle(offset, y, b.s.w-offset, sh*b.between(0.5, 0.5))
		} else {
			dc.DrawRectangle(0, y, b.s.w, sh)
		}
		dc.Fill()
	}

	for range 500 {
		x, y := b.randomPoint()
		size := b.between(1, 3)
		b.set(b.pick(), b.rng.Float64())
		dc.DrawRectangle(x, y, size, size)
		dc.Fill()
	}
}

// lineArt strokes segments within ±45° of the wind direction.
func (b *brush) lineArt() {
	dc := b.s.dc
	n := count(20 + b.p.Density)
	base := b.p.Directionality / 180 * math.Pi

	dc.SetLineWidth(b.strokeWidth())
	dc.SetLineCap(gg.LineCapRound)

	for range n {
		c := b.pick()
		angle := base + (b.rng.Float64()-0.5)*math.Pi/2
		sx, sy := b.randomPoint()
		length := b.between(50, 200)
		b.set(c, b.between(0.5, 0.5))

		dc.MoveTo(sx, sy)
		dc.LineTo(sx+math.Cos(angle)*length, sy+math.Sin(angle)*length)
		dc.Stroke()
	}
}

// abstract is the generic composite used by genres without a dedicated
// algorithm: large translucent circles crossed by short strokes.
func (b *brush) abstract() {
	dc := b.s.dc
	for range 5 {
		x, y := b.randomPoint()
		size := b.between(50, 150)
		b.set(b.pick(), b.between(0.2, 0.3))
		dc.DrawCircle(x, y, size)
		dc.Fill()
	}

	dc.SetLineWidth(b.strokeWidth())
	dc.SetLineCap(gg.LineCapRound)
	for range 15 {
		sx, sy := b.randomPoint()
		ex := sx + b.between(-100, 200)
		ey := sy + b.between(-100, 200)
		b.set(b.pick(), b.between(0.6, 0.4))
		dc.MoveTo(sx, sy)
		dc.LineTo(ex, ey)
		dc.Stroke()
	}
}
