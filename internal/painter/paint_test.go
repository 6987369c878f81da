package painter

import (
	"bytes"
	"image"
	"image/png"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unplugged/internal/artstyle"
	"github.com/lox/unplugged/internal/models"
)

func testScene(genre artstyle.Genre, desc models.Description) Scene {
	obs := artstyle.Enhance(models.Observation{
		Temperature:              18,
		PrecipitationProbability: 0.8,
		PrecipitationIntensity:   2,
		WindSpeed:                10,
		WindDirection:            220,
		CloudCover:               60,
		Humidity:                 85,
		UVIndex:                  4,
		Description:              desc,
	})
	return Scene{
		Genre:       genre,
		Description: obs.Description,
		Params:      artstyle.GenerateDrawingParams(obs),
	}
}

func render(t *testing.T, seed uint64, sc Scene) *Surface {
	t.Helper()
	s, err := NewSurface(800, 400)
	require.NoError(t, err)
	s.FillVertical(sc.Params.BackgroundGradient)
	return Paint(rand.New(rand.NewPCG(seed, seed)), s, sc)
}

func assertOpaque(t *testing.T, img image.Image) {
	t.Helper()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a != 0xffff {
				t.Fatalf("pixel (%d,%d) alpha = %d, want opaque", x, y, a)
			}
		}
	}
}

func TestNewSurface_RejectsEmptyDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 400}, {800, 0}, {-1, -1}} {
		_, err := NewSurface(dims[0], dims[1])
		assert.ErrorIs(t, err, ErrNoSurface)
	}
}

func TestPaint_EveryGenreCompletes(t *testing.T) {
	for _, genre := range artstyle.Genres {
		t.Run(string(genre), func(t *testing.T) {
			t.Parallel()
			s := render(t, 11, testScene(genre, models.DescRain))
			assert.Equal(t, 800, s.Width())
			assert.Equal(t, 400, s.Height())
			assertOpaque(t, s.Image())
		})
	}
}

func TestPaint_UnknownGenreUsesAbstract(t *testing.T) {
	sc := testScene(artstyle.Genre("Cubism"), models.DescClear)
	want := render(t, 5, sc)

	sc.Genre = artstyle.GenreFauvism
	got := render(t, 5, sc)

	assert.Equal(t, want.Image(), got.Image())
}

func TestHasDedicatedAlgorithm(t *testing.T) {
	fallbacks := []artstyle.Genre{
		artstyle.GenreFauvism,
		artstyle.GenrePopArt,
		artstyle.GenreSurrealism,
		artstyle.GenreExpressionism,
	}
	for _, g := range artstyle.Genres {
		assert.Equal(t, !contains(fallbacks, g), HasDedicatedAlgorithm(g), g)
	}
}

func TestPaint_FallbackGenresMatchAbstractComposite(t *testing.T) {
	for _, g := range []artstyle.Genre{artstyle.GenrePopArt, artstyle.GenreSurrealism, artstyle.GenreExpressionism} {
		sc := testScene(g, models.DescFog)
		got := render(t, 9, sc)

		sc.Genre = artstyle.GenreFauvism
		want := render(t, 9, sc)
		assert.Equal(t, want.Image(), got.Image(), g)
	}
}

func TestPaint_SeedIsReproducible(t *testing.T) {
	sc := testScene(artstyle.GenreWatercolor, models.DescSnow)
	a := render(t, 21, sc)
	b := render(t, 21, sc)
	assert.Equal(t, a.Image(), b.Image())
}

func TestPaint_WeatherOverlaysChangeImage(t *testing.T) {
	for _, desc := range []models.Description{models.DescRain, models.DescSnow, models.DescFog} {
		t.Run(string(desc), func(t *testing.T) {
			sc := testScene(artstyle.GenreMinimalism, desc)
			with := render(t, 3, sc)

			sc.Description = models.DescClear
			without := render(t, 3, sc)

			assert.NotEqual(t, without.Image(), with.Image())
		})
	}
}

func TestPaint_DegenerateParamsDoNotPanic(t *testing.T) {
	sc := Scene{
		Genre:       artstyle.GenreLineArt,
		Description: models.DescSnow,
		Params: artstyle.DrawingParams{
			ColorPalette:       []string{"not-a-colour"},
			BackgroundGradient: nil,
			StrokeWidth:        1,
			Density:            -10,
			Blur:               -2,
			ParticleSize:       -1,
			ParticleCount:      -5,
		},
	}
	assert.NotPanics(t, func() {
		for _, g := range artstyle.Genres {
			sc.Genre = g
			render(t, 1, sc)
		}
	})
}

func TestPaint_HugeStrokeWidthIsBounded(t *testing.T) {
	obs := models.Observation{
		Temperature:              5,
		PrecipitationProbability: 1,
		PrecipitationIntensity:   10,
		Humidity:                 50,
		UVIndex:                  -1e12,
		Description:              models.DescSnow,
	}
	params := artstyle.GenerateDrawingParams(obs)
	require.Greater(t, params.StrokeWidth, 1e11)

	for _, genre := range artstyle.Genres {
		t.Run(string(genre), func(t *testing.T) {
			t.Parallel()
			s, err := NewSurface(200, 100)
			require.NoError(t, err)
			s.FillVertical(params.BackgroundGradient)

			start := time.Now()
			Paint(rand.New(rand.NewPCG(3, 3)), s, Scene{Genre: genre, Description: obs.Description, Params: params})
			assert.Less(t, time.Since(start), 10*time.Second)
			assertOpaque(t, s.Image())
		})
	}
}

func TestCount_RoundsFractionsUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{3, 3},
		{181.5, 182},
		{10.01, 11},
		{-4.5, -4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, count(tt.in), "count(%v)", tt.in)
	}
}

func TestFillDiagonal_UsesFirstMiddleLast(t *testing.T) {
	s, err := NewSurface(100, 100)
	require.NoError(t, err)
	s.FillDiagonal([]string{"#FF0000", "#000000", "#00FF00", "#000000", "#0000FF"})

	img := s.Image()
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Greater(t, r>>8, uint32(200), "top-left should be red")

	_, _, bl, _ := img.At(99, 99).RGBA()
	assert.Greater(t, bl>>8, uint32(200), "bottom-right should be blue")

	_, g, _, _ := img.At(50, 50).RGBA()
	assert.Greater(t, g>>8, uint32(150), "centre should be green")
	assertOpaque(t, img)
}

func TestSurface_EncodePNG(t *testing.T) {
	s := render(t, 2, testScene(artstyle.GenreGlitchArt, models.DescThunderstorm))
	var buf bytes.Buffer
	require.NoError(t, s.EncodePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 800, 400), img.Bounds())
}

func contains(gs []artstyle.Genre, g artstyle.Genre) bool {
	for _, x := range gs {
		if x == g {
			return true
		}
	}
	return false
}
