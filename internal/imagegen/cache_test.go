package imagegen

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC))
	return NewCache(t.TempDir(), time.Hour, clock), clock
}

func TestCache_GetSet(t *testing.T) {
	c, _ := newTestCache(t)
	k := Key{Location: "wandiligong", Mode: ModeVibrant, Width: 800, Height: 400}

	_, ok := c.Get(k)
	assert.False(t, ok)

	require.NoError(t, c.Set(k, []byte("png")))
	got, ok := c.Get(k)
	require.True(t, ok)
	assert.Equal(t, []byte("png"), got)

	_, ok = c.Get(Key{Location: "wandiligong", Mode: ModeBasic, Width: 800, Height: 400})
	assert.False(t, ok, "mode is part of the key")
}

func TestCache_Staleness(t *testing.T) {
	c, clock := newTestCache(t)
	k := Key{Location: "bright", Mode: ModeVibrant, Width: 10, Height: 10}
	require.NoError(t, c.Set(k, []byte("a")))

	clock.Advance(59 * time.Minute)
	_, ok := c.Get(k)
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok = c.Get(k)
	assert.False(t, ok)

	data, ok := c.GetAny()
	require.True(t, ok, "stale banners still serve as a last resort")
	assert.Equal(t, []byte("a"), data)
}

func TestCache_GetAnyPrefersNewest(t *testing.T) {
	c, clock := newTestCache(t)

	_, ok := c.GetAny()
	assert.False(t, ok)

	require.NoError(t, c.Set(Key{Location: "a", Mode: ModeBasic, Width: 1, Height: 1}, []byte("old")))
	clock.Advance(time.Minute)
	require.NoError(t, c.Set(Key{Location: "b", Mode: ModeBasic, Width: 1, Height: 1}, []byte("new")))

	data, ok := c.GetAny()
	require.True(t, ok)
	assert.Equal(t, []byte("new"), data)
}

func TestCache_List(t *testing.T) {
	c, _ := newTestCache(t)
	keys := []Key{
		{Location: "mount_beauty", Mode: ModeRaw, Width: 1200, Height: 630},
		{Location: "bright", Mode: ModeVibrant, Width: 800, Height: 400},
	}
	for _, k := range keys {
		require.NoError(t, c.Set(k, []byte("x")))
	}

	assert.ElementsMatch(t, keys, c.List())
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name string
		want Key
		ok   bool
	}{
		{"banner_bright_vibrant_800x400.png", Key{"bright", ModeVibrant, 800, 400}, true},
		{"banner_mount_beauty_raw_10x20.png", Key{"mount_beauty", ModeRaw, 10, 20}, true},
		{"banner_bright_800x400.png", Key{}, false},
		{"banner_bright_basic_big.png", Key{}, false},
		{"weather_clear.png", Key{}, false},
	}
	for _, tt := range tests {
		got, ok := parseKey(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
