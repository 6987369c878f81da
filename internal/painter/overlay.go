package painter

import (
	"image/color"

	"github.com/fogleman/gg"
)

// atmosphere washes the whole image with white; humid air softens it more.
func (b *brush) atmosphere() {
	dc := b.s.dc
	dc.SetRGBA(1, 1, 1, 0.1*(b.p.Blur/5))
	dc.DrawRectangle(0, 0, b.s.w, b.s.h)
	dc.Fill()
}

// rain draws short slanted streaks; stronger wind slants them further.
func (b *brush) rain() {
	dc := b.s.dc
	dc.SetRGBA255(200, 200, 255, 128)
	dc.SetLineWidth(1)

	length := b.p.ParticleSize * 10
	slant := b.p.Distortion / 10
	for range count(b.p.ParticleCount) {
		x, y := b.randomPoint()
		dc.MoveTo(x, y)
		dc.LineTo(x-slant, y+length)
		dc.Stroke()
	}
}

func (b *brush) snow() {
	dc := b.s.dc
	dc.SetRGBA(1, 1, 1, 0.8)
	for range count(b.p.ParticleCount) {
		x, y := b.randomPoint()
		dc.DrawCircle(x, y, b.p.ParticleSize)
		dc.Fill()
	}
}

// fog stacks three horizontal bands, each denser than the one above and
// peaking in its middle.
func (b *brush) fog() {
	dc := b.s.dc
	band := b.s.h / 3
	for i := range 3 {
		y := float64(i) * band
		edge := mist(0.05 + float64(i)*0.05)
		core := mist(0.15 + float64(i)*0.05)

		g := gg.NewLinearGradient(0, y, 0, y+band)
		g.AddColorStop(0, edge)
		g.AddColorStop(0.5, core)
		g.AddColorStop(1, edge)

		dc.SetFillStyle(g)
		dc.DrawRectangle(0, y, b.s.w, band)
		dc.Fill()
	}
}

func mist(alpha float64) color.NRGBA {
	return color.NRGBA{R: 255, G: 255, B: 255, A: uint8(alpha*255 + 0.5)}
}
