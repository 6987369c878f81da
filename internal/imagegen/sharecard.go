package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/lox/unplugged/internal/models"
	"github.com/lox/unplugged/internal/painter"
)

var (
	fontOnce    sync.Once
	boldFont    *opentype.Font
	regularFont *opentype.Font
	fontErr     error
)

func loadFonts() error {
	fontOnce.Do(func() {
		boldFont, fontErr = opentype.Parse(gobold.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("go bold: %w", fontErr)
			return
		}
		regularFont, fontErr = opentype.Parse(goregular.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("go regular: %w", fontErr)
		}
	})
	return fontErr
}

// captionFaces hold per-card glyph caches. A font.Face must not be shared
// between goroutines, so every card gets its own.
type captionFaces struct {
	large   font.Face
	regular font.Face
}

func newCaptionFaces() (*captionFaces, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	large, err := newFace(boldFont, 120)
	if err != nil {
		return nil, err
	}
	regular, err := newFace(regularFont, 36)
	if err != nil {
		large.Close()
		return nil, err
	}
	return &captionFaces{large: large, regular: regular}, nil
}

func (f *captionFaces) Close() {
	f.large.Close()
	f.regular.Close()
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return face, nil
}

// ShareCardData is the text drawn over a share card.
type ShareCardData struct {
	Temperature float64 // Celsius; NaN omits the temperature
	Condition   string  // e.g. "Scattered Clouds"
	Place       string
}

// Share cards use the Open Graph image size.
const (
	ShareCardWidth  = 1200
	ShareCardHeight = 630
)

// GenerateShareCard scales art to cover a share card and captions it.
func GenerateShareCard(art []byte, data ShareCardData) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(art))
	if err != nil {
		return nil, fmt.Errorf("decode art: %w", err)
	}

	faces, err := newCaptionFaces()
	if err != nil {
		return nil, err
	}
	defer faces.Close()

	dst := image.NewRGBA(image.Rect(0, 0, ShareCardWidth, ShareCardHeight))

	// Cover: scale so the smaller axis fills, then centre-crop the other.
	sb := src.Bounds()
	scale := max(float64(ShareCardWidth)/float64(sb.Dx()), float64(ShareCardHeight)/float64(sb.Dy()))
	scaledW := int(float64(sb.Dx())*scale + 0.5)
	scaledH := int(float64(sb.Dy())*scale + 0.5)
	offX := (scaledW - ShareCardWidth) / 2
	offY := (scaledH - ShareCardHeight) / 2
	draw.CatmullRom.Scale(dst, image.Rect(-offX, -offY, scaledW-offX, scaledH-offY), src, sb, draw.Src, nil)

	darkenBottom(dst)
	drawCaptions(dst, data, faces)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode share card: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateFallbackShareCard captions the plain fallback gradient for when
// no art exists for a location.
func GenerateFallbackShareCard(data ShareCardData) ([]byte, error) {
	faces, err := newCaptionFaces()
	if err != nil {
		return nil, err
	}
	defer faces.Close()

	img := fallbackImage(ShareCardWidth, ShareCardHeight, models.Description(data.Condition))
	darkenBottom(img)
	drawCaptions(img, data, faces)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode fallback share card: %w", err)
	}
	return buf.Bytes(), nil
}

// darkenBottom blends the lower 300px towards black with an ease-in curve.
func darkenBottom(img *image.RGBA) {
	b := img.Bounds()
	const band = 300

	for y := b.Max.Y - band; y < b.Max.Y; y++ {
		p := float64(y-(b.Max.Y-band)) / band
		alpha := p * p * 0.85

		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			c.R = uint8(float64(c.R) * (1 - alpha))
			c.G = uint8(float64(c.G) * (1 - alpha))
			c.B = uint8(float64(c.B) * (1 - alpha))
			img.SetRGBA(x, y, c)
		}
	}
}

func drawCaptions(img *image.RGBA, data ShareCardData, faces *captionFaces) {
	white := color.RGBA{255, 255, 255, 255}
	grey := color.RGBA{210, 210, 210, 255}

	if !math.IsNaN(data.Temperature) {
		drawText(img, fmt.Sprintf("%.0f°", data.Temperature), 60, ShareCardHeight-180, white, faces.large)
	}
	if data.Condition != "" {
		drawText(img, data.Condition, 60, ShareCardHeight-80, grey, faces.regular)
	}

	place := data.Place
	if place == "" {
		place = "unplugged"
	}
	drawText(img, place, 60, ShareCardHeight-30, grey, faces.regular)
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// GenerateFallback returns a plain vertical gradient tinted for d. It is
// what callers show when the art pipeline cannot run.
func GenerateFallback(width, height int, d models.Description) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", painter.ErrNoSurface, width, height)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, fallbackImage(width, height, d)); err != nil {
		return nil, fmt.Errorf("encode fallback: %w", err)
	}
	return buf.Bytes(), nil
}

func fallbackImage(width, height int, d models.Description) *image.RGBA {
	top, bottom := fallbackColors(d)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := range height {
		t := 0.0
		if height > 1 {
			t = float64(y) / float64(height-1)
		}
		r, g, b := top.BlendLab(bottom, t).Clamped().RGB255()
		row := color.RGBA{r, g, b, 255}
		for x := range width {
			img.SetRGBA(x, y, row)
		}
	}
	return img
}

func fallbackColors(d models.Description) (top, bottom colorful.Color) {
	hex := func(s string) colorful.Color {
		c, _ := colorful.Hex(s)
		return c
	}
	switch {
	case d.IsClear():
		return hex("#4a90d9"), hex("#f5d76e")
	case d.IsCloudy():
		return hex("#7f8c9a"), hex("#d5dce4")
	case d.IsRainy():
		return hex("#2c3e50"), hex("#6b8ba4")
	case d == models.DescThunderstorm:
		return hex("#1f1c2c"), hex("#4b4c6b")
	case d.IsSnowy():
		return hex("#d6e4f0"), hex("#ffffff")
	case d.IsFoggy():
		return hex("#9ea7ad"), hex("#e3e6e8")
	}
	return hex("#141428"), hex("#1e233c")
}

type shareEntry struct {
	data      []byte
	expiresAt time.Time
}

// ShareCardCache keeps recently generated share cards in memory.
type ShareCardCache struct {
	mu      sync.RWMutex
	entries map[string]shareEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

func NewShareCardCache(ttl time.Duration, clock clockwork.Clock) *ShareCardCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ShareCardCache{
		entries: make(map[string]shareEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the cached card for location if it has not expired.
func (c *ShareCardCache) Get(location string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[location]
	if !ok || c.clock.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

func (c *ShareCardCache) Set(location string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[location] = shareEntry{
		data:      data,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}
