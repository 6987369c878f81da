package imagegen

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unplugged/internal/artstyle"
	"github.com/lox/unplugged/internal/models"
	"github.com/lox/unplugged/internal/painter"
)

func stormyObservation() models.Observation {
	return models.Observation{
		Temperature:              12,
		PrecipitationProbability: 0.9,
		PrecipitationIntensity:   8,
		WindSpeed:                2,
		WindDirection:            270,
		CloudCover:               95,
		Humidity:                 90,
		UVIndex:                  1,
		Description:              models.DescBrokenClouds,
	}
}

func decodeSize(t *testing.T, data []byte) image.Rectangle {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds()
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeVibrant, false},
		{"basic", ModeBasic, false},
		{"vibrant", ModeVibrant, false},
		{"raw", ModeRaw, false},
		{"Vibrant", "", true},
		{"sepia", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRender_AllModesProducePNG(t *testing.T) {
	g := NewGenerator(WithSeed(42))
	for _, mode := range Modes {
		t.Run(string(mode), func(t *testing.T) {
			res, err := g.Render(mode, stormyObservation(), 320, 160)
			require.NoError(t, err)
			assert.Equal(t, mode, res.Mode)
			assert.Equal(t, image.Rect(0, 0, 320, 160), decodeSize(t, res.PNG))
			assert.Contains(t, artstyle.Genres, res.Style.Genre)
		})
	}
}

func TestRender_EnhancesExceptRaw(t *testing.T) {
	g := NewGenerator(WithSeed(1))

	basic, err := g.RenderBasic(stormyObservation(), 64, 32)
	require.NoError(t, err)
	assert.Equal(t, 30.0, basic.Observation.CloudCover)
	assert.Equal(t, 7.0, basic.Observation.UVIndex)
	assert.Equal(t, 3.0, basic.Observation.PrecipitationIntensity)
	assert.Equal(t, 5.0, basic.Observation.WindSpeed)
	assert.Equal(t, models.DescScatteredClouds, basic.Observation.Description)

	raw, err := g.RenderRaw(stormyObservation(), 64, 32)
	require.NoError(t, err)
	assert.Equal(t, stormyObservation(), raw.Observation)
	assert.Equal(t, artstyle.GenerateDrawingParams(stormyObservation()), raw.Params)
}

func TestRender_SeededIsReproducible(t *testing.T) {
	g := NewGenerator(WithSeed(99))
	a, err := g.RenderVibrant(stormyObservation(), 200, 100)
	require.NoError(t, err)
	b, err := g.RenderVibrant(stormyObservation(), 200, 100)
	require.NoError(t, err)

	assert.Equal(t, a.Style, b.Style)
	assert.True(t, bytes.Equal(a.PNG, b.PNG), "seeded renders should be byte-identical")
}

func TestRender_VibrantAndBasicBackgroundsDiffer(t *testing.T) {
	g := NewGenerator(WithSeed(5))
	basic, err := g.RenderBasic(stormyObservation(), 200, 100)
	require.NoError(t, err)
	vibrant, err := g.RenderVibrant(stormyObservation(), 200, 100)
	require.NoError(t, err)

	assert.Equal(t, basic.Style, vibrant.Style)
	assert.False(t, bytes.Equal(basic.PNG, vibrant.PNG))
}

func TestRender_MissingSurface(t *testing.T) {
	g := NewGenerator()
	for _, dims := range [][2]int{{0, 100}, {100, 0}, {-5, 20}} {
		_, err := g.RenderVibrant(stormyObservation(), dims[0], dims[1])
		assert.ErrorIs(t, err, painter.ErrNoSurface)
	}
}

func TestRender_UnknownMode(t *testing.T) {
	_, err := NewGenerator().Render(Mode("sepia"), stormyObservation(), 10, 10)
	assert.Error(t, err)
}

func TestRender_OutOfRangeInputsStillRender(t *testing.T) {
	obs := models.Observation{
		Temperature:              -80,
		PrecipitationProbability: 4,
		PrecipitationIntensity:   -3,
		WindSpeed:                -20,
		WindDirection:            9999,
		CloudCover:               250,
		Humidity:                 -40,
		UVIndex:                  30,
		Description:              "Volcanic Ash",
	}
	for _, mode := range Modes {
		res, err := NewGenerator().Render(mode, obs, 120, 60)
		require.NoError(t, err, mode)
		assert.NotEmpty(t, res.PNG)
	}
}

func TestRenderRaw_ExtremeUVFinishes(t *testing.T) {
	obs := models.Observation{
		Temperature: 0,
		Humidity:    50,
		UVIndex:     -1e12,
		Description: models.DescSnow,
	}
	start := time.Now()
	for seed := range uint64(12) {
		res, err := NewGenerator(WithSeed(seed)).RenderRaw(obs, 200, 100)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 200, 100), decodeSize(t, res.PNG))
	}
	assert.Less(t, time.Since(start), 30*time.Second)
}

func TestResult_DataURL(t *testing.T) {
	res, err := NewGenerator(WithSeed(3)).RenderBasic(stormyObservation(), 40, 20)
	require.NoError(t, err)

	url := res.DataURL()
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, res.PNG, raw)
}

func TestPlan_MatchesSeededRender(t *testing.T) {
	g := NewGenerator(WithSeed(17))
	for _, mode := range Modes {
		p := g.Plan(mode, stormyObservation())
		res, err := g.Render(mode, stormyObservation(), 100, 50)
		require.NoError(t, err)
		assert.Equal(t, p, res.Plan, mode)
	}
}

func TestResult_Record(t *testing.T) {
	res, err := NewGenerator(WithSeed(4)).RenderRaw(stormyObservation(), 30, 20)
	require.NoError(t, err)

	at := time.Date(2026, 10, 16, 7, 30, 0, 0, time.UTC)
	r := res.Record("bright", at)
	assert.Equal(t, "bright", r.LocationID)
	assert.Equal(t, "raw", r.Mode)
	assert.Equal(t, string(res.Style.Genre), r.Genre)
	assert.Equal(t, res.Style.Technique, r.Technique)
	assert.Equal(t, 30, r.Width)
	assert.Equal(t, 20, r.Height)
	assert.Equal(t, len(res.PNG), r.Bytes)
	assert.Equal(t, at, r.CreatedAt)
}
