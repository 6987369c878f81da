package imagegen

import (
	"bytes"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unplugged/internal/models"
	"github.com/lox/unplugged/internal/painter"
)

func TestGenerateShareCard(t *testing.T) {
	art, err := NewGenerator(WithSeed(8)).RenderVibrant(stormyObservation(), 800, 400)
	require.NoError(t, err)

	card, err := GenerateShareCard(art.PNG, ShareCardData{
		Temperature: 17.6,
		Condition:   "Scattered Clouds",
		Place:       "Wandiligong",
	})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, ShareCardWidth, ShareCardHeight), decodeSize(t, card))
}

func TestGenerateShareCard_RejectsGarbage(t *testing.T) {
	_, err := GenerateShareCard([]byte("not a png"), ShareCardData{})
	assert.Error(t, err)
}

func TestGenerateFallbackShareCard(t *testing.T) {
	card, err := GenerateFallbackShareCard(ShareCardData{Temperature: -2, Condition: "Snow"})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, ShareCardWidth, ShareCardHeight), decodeSize(t, card))
}

func TestGenerateFallbackShareCard_Concurrent(t *testing.T) {
	data := ShareCardData{Temperature: 21, Condition: string(models.DescMist), Place: "Bright"}
	want, err := GenerateFallbackShareCard(data)
	require.NoError(t, err)

	var wg sync.WaitGroup
	cards := make([][]byte, 8)
	errs := make([]error, 8)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cards[i], errs[i] = GenerateFallbackShareCard(data)
		}()
	}
	wg.Wait()

	for i := range 8 {
		require.NoError(t, errs[i])
		assert.Equal(t, want, cards[i], "card %d differs from a sequential render", i)
	}
}

func TestGenerateFallback(t *testing.T) {
	for _, d := range append(models.Descriptions, "Volcanic Ash") {
		t.Run(string(d), func(t *testing.T) {
			data, err := GenerateFallback(64, 32, d)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 64, 32), img.Bounds())

			_, _, _, a := img.At(10, 10).RGBA()
			assert.Equal(t, uint32(0xffff), a)
			assert.NotEqual(t, img.At(0, 0), img.At(0, 31), "fallback should be a gradient")
		})
	}
}

func TestGenerateFallback_MissingSurface(t *testing.T) {
	_, err := GenerateFallback(0, 10, models.DescClear)
	assert.ErrorIs(t, err, painter.ErrNoSurface)
}

func TestShareCardCache(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewShareCardCache(5*time.Minute, clock)

	_, ok := c.Get("bright")
	assert.False(t, ok)

	c.Set("bright", []byte("card"))
	got, ok := c.Get("bright")
	require.True(t, ok)
	assert.Equal(t, []byte("card"), got)

	_, ok = c.Get("wandiligong")
	assert.False(t, ok)

	clock.Advance(6 * time.Minute)
	_, ok = c.Get("bright")
	assert.False(t, ok)
}
