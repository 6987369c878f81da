// Package imagegen turns weather observations into encoded art images and
// caches the results for the HTTP layer.
package imagegen

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/lox/unplugged/internal/artstyle"
	"github.com/lox/unplugged/internal/metrics"
	"github.com/lox/unplugged/internal/models"
	"github.com/lox/unplugged/internal/painter"
)

// Mode selects one of the render entry points.
type Mode string

const (
	// ModeBasic enhances the observation and keeps the mapper's two-stop
	// vertical background.
	ModeBasic Mode = "basic"
	// ModeVibrant enhances the observation and replaces the background with
	// a three-stop diagonal gradient from the vibrant palette.
	ModeVibrant Mode = "vibrant"
	// ModeRaw skips the enhancer entirely.
	ModeRaw Mode = "raw"
)

var Modes = []Mode{ModeBasic, ModeVibrant, ModeRaw}

// ParseMode maps a flag or query value to a Mode. Empty means vibrant.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeVibrant, nil
	case ModeBasic, ModeVibrant, ModeRaw:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown render mode %q", s)
}

// Generator renders weather art. It holds no per-render state, so one
// Generator may be shared between goroutines.
type Generator struct {
	seed   uint64
	seeded bool
}

type Option func(*Generator)

// WithSeed pins every render to the same random sequence, making output
// reproducible for a given observation and size.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
		g.seeded = true
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result is one encoded render and the plan that produced it.
type Result struct {
	Plan
	PNG    []byte
	Mode   Mode
	Width  int
	Height int
}

// DataURL returns the PNG as a data: URL suitable for a CSS background.
func (r *Result) DataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(r.PNG)
}

// Record describes the result as a render history entry.
func (r *Result) Record(locationID string, at time.Time) models.Render {
	return models.Render{
		LocationID:       locationID,
		Mode:             string(r.Mode),
		Genre:            string(r.Style.Genre),
		Mood:             r.Style.Mood,
		ColorDescription: r.Style.ColorDescription,
		Technique:        r.Style.Technique,
		Width:            r.Width,
		Height:           r.Height,
		Bytes:            len(r.PNG),
		CreatedAt:        at,
	}
}

func (g *Generator) RenderBasic(obs models.Observation, width, height int) (*Result, error) {
	return g.Render(ModeBasic, obs, width, height)
}

func (g *Generator) RenderVibrant(obs models.Observation, width, height int) (*Result, error) {
	return g.Render(ModeVibrant, obs, width, height)
}

func (g *Generator) RenderRaw(obs models.Observation, width, height int) (*Result, error) {
	return g.Render(ModeRaw, obs, width, height)
}

// Render runs the full pipeline for mode. The only error it returns for a
// well-formed mode is painter.ErrNoSurface; any observation renders.
func (g *Generator) Render(mode Mode, obs models.Observation, width, height int) (*Result, error) {
	start := time.Now()
	rng := g.rand()
	p := plan(rng, mode, obs)

	s, err := painter.NewSurface(width, height)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeBasic, ModeRaw:
		s.FillVertical(p.Params.BackgroundGradient)
	case ModeVibrant:
		// The vibrant palette is chosen from what the sky is actually doing,
		// not from the enhanced observation.
		s.FillDiagonal(artstyle.EnhancedPalette(obs))
	default:
		return nil, fmt.Errorf("unknown render mode %q", mode)
	}

	painter.Paint(rng, s, painter.Scene{
		Genre:       p.Style.Genre,
		Description: p.Observation.Description,
		Params:      p.Params,
	})

	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	elapsed := time.Since(start)
	metrics.RendersTotal.WithLabelValues(string(p.Style.Genre), string(mode)).Inc()
	metrics.RenderDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	metrics.RenderBytes.Observe(float64(buf.Len()))

	logrus.WithFields(logrus.Fields{
		"mode":     mode,
		"genre":    p.Style.Genre,
		"size":     fmt.Sprintf("%dx%d", width, height),
		"bytes":    humanize.Bytes(uint64(buf.Len())),
		"duration": elapsed.Round(time.Millisecond),
	}).Debug("Rendered weather art")

	return &Result{
		Plan:   p,
		PNG:    buf.Bytes(),
		Mode:   mode,
		Width:  width,
		Height: height,
	}, nil
}

// Plan is everything decided about a render before any pixel is drawn.
type Plan struct {
	Observation models.Observation // as painted, after enhancement unless raw
	Params      artstyle.DrawingParams
	Style       artstyle.ArtStyle
}

// Plan returns the parameters and style Render would use for obs without
// drawing anything. With a seed, the style matches what Render picks.
func (g *Generator) Plan(mode Mode, obs models.Observation) Plan {
	return plan(g.rand(), mode, obs)
}

func plan(rng *rand.Rand, mode Mode, obs models.Observation) Plan {
	painted := obs
	if mode != ModeRaw {
		painted = artstyle.Enhance(obs)
	}
	return Plan{
		Observation: painted,
		Params:      artstyle.GenerateDrawingParams(painted),
		Style:       artstyle.GenerateArtStyle(rng, painted),
	}
}

// rand returns a fresh source per render so concurrent renders never share
// random state.
func (g *Generator) rand() *rand.Rand {
	if g.seeded {
		return rand.New(rand.NewPCG(g.seed, g.seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
