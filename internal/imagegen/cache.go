package imagegen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/lox/unplugged/internal/metrics"
)

// DefaultMaxAge is how long a banner is served before it is re-rendered.
const DefaultMaxAge = time.Hour

// Key identifies one cached banner.
type Key struct {
	Location string
	Mode     Mode
	Width    int
	Height   int
}

func (k Key) filename() string {
	loc := strings.NewReplacer("/", "-", "\\", "-", "..", "-").Replace(k.Location)
	return fmt.Sprintf("banner_%s_%s_%dx%d.png", loc, k.Mode, k.Width, k.Height)
}

// parseKey reverses filename. Locations may contain underscores, so the
// mode and size are taken from the right.
func parseKey(name string) (Key, bool) {
	if !strings.HasPrefix(name, "banner_") || !strings.HasSuffix(name, ".png") {
		return Key{}, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(name, "banner_"), ".png")
	parts := strings.Split(body, "_")
	if len(parts) < 3 {
		return Key{}, false
	}

	var k Key
	if _, err := fmt.Sscanf(parts[len(parts)-1], "%dx%d", &k.Width, &k.Height); err != nil {
		return Key{}, false
	}
	k.Mode = Mode(parts[len(parts)-2])
	k.Location = strings.Join(parts[:len(parts)-2], "_")
	return k, true
}

// Cache provides file-based caching for rendered banners.
type Cache struct {
	dir    string
	maxAge time.Duration
	clock  clockwork.Clock
}

// NewCache creates a banner cache in dir. Banners older than maxAge are
// treated as missing so the weather they show stays current.
func NewCache(dir string, maxAge time.Duration, clock clockwork.Clock) *Cache {
	if err := os.MkdirAll(dir, 0755); err != nil {
		// The cache is optional; Set will fail and callers re-render.
		logrus.WithError(err).WithField("dir", dir).Warn("Could not create banner cache directory")
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{dir: dir, maxAge: maxAge, clock: clock}
}

func (c *Cache) path(k Key) string {
	return filepath.Join(c.dir, k.filename())
}

// Get retrieves a banner if it exists and is not stale.
func (c *Cache) Get(k Key) ([]byte, bool) {
	path := c.path(k)
	info, err := os.Stat(path)
	if err != nil {
		metrics.BannerCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	if c.clock.Since(info.ModTime()) > c.maxAge {
		metrics.BannerCacheTotal.WithLabelValues("stale").Inc()
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		metrics.BannerCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.BannerCacheTotal.WithLabelValues("hit").Inc()
	return data, true
}

// Set stores a banner, stamping it with the cache clock's time.
func (c *Cache) Set(k Key, data []byte) error {
	path := c.path(k)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write banner: %w", err)
	}
	now := c.clock.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		return fmt.Errorf("stamp banner: %w", err)
	}
	return nil
}

// GetAny returns the newest cached banner regardless of key or age.
// Useful when nothing current can be rendered.
func (c *Cache) GetAny() ([]byte, bool) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, false
	}

	var (
		newest  string
		newestT time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".png" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestT) {
			newest, newestT = entry.Name(), info.ModTime()
		}
	}
	if newest == "" {
		return nil, false
	}

	data, err := os.ReadFile(filepath.Join(c.dir, newest))
	if err != nil {
		return nil, false
	}
	metrics.BannerCacheTotal.WithLabelValues("fallback").Inc()
	return data, true
}

// List returns the keys of every cached banner, stale ones included.
func (c *Cache) List() []Key {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil
	}

	var keys []Key
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if k, ok := parseKey(entry.Name()); ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].filename() < keys[j].filename()
	})
	return keys
}
