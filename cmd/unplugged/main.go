package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	_ "modernc.org/sqlite"

	"github.com/lox/unplugged/internal/api"
	"github.com/lox/unplugged/internal/imagegen"
	"github.com/lox/unplugged/internal/ingest"
	"github.com/lox/unplugged/internal/models"
	"github.com/lox/unplugged/internal/openweather"
	"github.com/lox/unplugged/internal/store"
)

type Globals struct {
	EnvFile   kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file'"`
	LogLevel  string                   `help:"Log level." enum:"debug,info,warn,error" default:"info" env:"LOG_LEVEL"`
	LogFormat string                   `help:"Log format." enum:"text,json" default:"text" env:"LOG_FORMAT"`
}

type CLI struct {
	Globals

	Serve    ServeCmd    `cmd:"" default:"withargs" help:"Serve art over HTTP and poll the weather."`
	Ingest   IngestCmd   `cmd:"" help:"Fetch and render every location once, then exit."`
	Render   RenderCmd   `cmd:"" help:"Render one image from weather given on the command line."`
	Describe DescribeCmd `cmd:"" help:"Print the palette, parameters and style a render would use."`
}

// StoreFlags are shared by commands that touch the database.
type StoreFlags struct {
	DB        string   `help:"Path to SQLite database." default:"data/unplugged.db" env:"UNPLUGGED_DB" type:"path"`
	Locations []string `name:"location" help:"Location to track, as ID:LAT:LON[:NAME]. Repeatable." default:"wandiligong:-36.794:146.977:Wandiligong" env:"UNPLUGGED_LOCATIONS" sep:";"`
}

// WeatherFlags configure polling and pre-rendering.
type WeatherFlags struct {
	OpenWeatherKey string `name:"openweather-key" help:"OpenWeather API key." env:"OPENWEATHER_API_KEY"`
	CacheDir       string `help:"Directory for cached banners." default:"data/banners" env:"UNPLUGGED_CACHE_DIR" type:"path"`
	Width          int    `help:"Banner width." default:"800"`
	Height         int    `help:"Banner height." default:"400"`
}

type ServeCmd struct {
	StoreFlags   `embed:""`
	WeatherFlags `embed:""`

	Port         string        `help:"HTTP server port." default:"8080" env:"PORT"`
	NoPoll       bool          `help:"Disable polling (server only, for local dev)."`
	PollInterval time.Duration `help:"How often to fetch the weather." default:"15m"`
	StaleAfter   time.Duration `help:"Age after which /health reports a location stale." default:"1h"`
}

func (c *ServeCmd) Run(g *Globals) error {
	st, closeDB, err := openStore(c.StoreFlags)
	if err != nil {
		return err
	}
	defer closeDB()

	gen := imagegen.NewGenerator()
	cache := imagegen.NewCache(c.CacheDir, imagegen.DefaultMaxAge, nil)

	server := api.NewServer(st, api.Config{
		Port:         c.Port,
		Generator:    gen,
		Cache:        cache,
		BannerWidth:  c.Width,
		BannerHeight: c.Height,
		StaleAfter:   c.StaleAfter,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if c.NoPoll {
		logrus.Info("Polling disabled (--no-poll)")
	} else {
		if c.OpenWeatherKey == "" {
			return fmt.Errorf("%w: set OPENWEATHER_API_KEY or pass --no-poll", openweather.ErrNoAPIKey)
		}
		scheduler := ingest.NewScheduler(st, openweather.NewClient(c.OpenWeatherKey), c.PollInterval, nil)
		scheduler.SetImageGenerator(gen, cache, c.Width, c.Height)
		go scheduler.Run(ctx)
	}

	return server.Run(ctx)
}

type IngestCmd struct {
	StoreFlags   `embed:""`
	WeatherFlags `embed:""`

	NoRender bool `help:"Store observations without pre-rendering banners."`
}

func (c *IngestCmd) Run(g *Globals) error {
	if c.OpenWeatherKey == "" {
		return fmt.Errorf("%w: set OPENWEATHER_API_KEY", openweather.ErrNoAPIKey)
	}

	st, closeDB, err := openStore(c.StoreFlags)
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scheduler := ingest.NewScheduler(st, openweather.NewClient(c.OpenWeatherKey), 0, nil)
	if !c.NoRender {
		scheduler.SetImageGenerator(imagegen.NewGenerator(), imagegen.NewCache(c.CacheDir, imagegen.DefaultMaxAge, nil), c.Width, c.Height)
	}

	n, err := scheduler.IngestOnce(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no locations ingested")
	}
	return nil
}

// WeatherArgs describe a single observation on the command line.
type WeatherArgs struct {
	Temp        float64 `help:"Temperature in °C." default:"20"`
	Pop         float64 `help:"Precipitation probability, 0-1." default:"0"`
	Intensity   float64 `help:"Precipitation intensity in mm/hr." default:"0"`
	Wind        float64 `help:"Wind speed." default:"0"`
	WindDir     float64 `help:"Wind direction in degrees." default:"0"`
	Clouds      float64 `help:"Cloud cover percent." default:"0"`
	Humidity    float64 `help:"Relative humidity percent." default:"50"`
	UV          float64 `name:"uv" help:"UV index." default:"5"`
	Description string  `help:"Weather description: Clear, Few Clouds, Scattered Clouds, Broken Clouds, Shower Rain, Rain, Thunderstorm, Snow, Mist or Fog. Other values use the default styles." default:"Scattered Clouds"`

	Mode string  `help:"Rendering mode." enum:"basic,vibrant,raw" default:"vibrant"`
	Seed *uint64 `help:"Seed for reproducible output. Omit for a random image."`
}

func (a WeatherArgs) observation() models.Observation {
	d, _ := models.ParseDescription(a.Description)
	return models.Observation{
		Temperature:              a.Temp,
		PrecipitationProbability: a.Pop,
		PrecipitationIntensity:   a.Intensity,
		WindSpeed:                a.Wind,
		WindDirection:            a.WindDir,
		CloudCover:               a.Clouds,
		Humidity:                 a.Humidity,
		UVIndex:                  a.UV,
		Description:              d,
	}
}

func (a WeatherArgs) generator() *imagegen.Generator {
	if a.Seed != nil {
		return imagegen.NewGenerator(imagegen.WithSeed(*a.Seed))
	}
	return imagegen.NewGenerator()
}

type RenderCmd struct {
	WeatherArgs `embed:""`

	Width   int    `help:"Image width." default:"800"`
	Height  int    `help:"Image height." default:"400"`
	Output  string `short:"o" help:"Where to write the PNG." default:"art.png" type:"path"`
	DataURL bool   `name:"data-url" help:"Print a data: URL to stdout instead of writing a file."`
}

func (c *RenderCmd) Run(g *Globals) error {
	res, err := c.generator().Render(imagegen.Mode(c.Mode), c.observation(), c.Width, c.Height)
	if err != nil {
		return err
	}

	if c.DataURL {
		fmt.Println(res.DataURL())
		return nil
	}
	if err := os.WriteFile(c.Output, res.PNG, 0644); err != nil {
		return fmt.Errorf("write %s: %w", c.Output, err)
	}

	logrus.WithFields(logrus.Fields{
		"file":  c.Output,
		"genre": res.Style.Genre,
		"mood":  res.Style.Mood,
	}).Info("Rendered")
	return nil
}

type DescribeCmd struct {
	WeatherArgs `embed:""`
}

func (c *DescribeCmd) Run(g *Globals) error {
	plan := c.generator().Plan(imagegen.Mode(c.Mode), c.observation())
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("unplugged"),
		kong.Description("Generative art from the weather."),
		kong.UsageOnError(),
	)

	setupLogging(cli.LogLevel, cli.LogFormat)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}

func setupLogging(level, format string) {
	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// openStore opens and migrates the database and seeds the configured
// locations.
func openStore(f StoreFlags) (*store.Store, func(), error) {
	locations, err := parseLocations(f.Locations)
	if err != nil {
		return nil, nil, err
	}

	if dir := filepath.Dir(f.DB); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", f.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	for _, l := range locations {
		if err := st.UpsertLocation(l); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("upsert location %s: %w", l.LocationID, err)
		}
	}
	logrus.WithField("locations", len(locations)).Info("Locations seeded")

	return st, func() { db.Close() }, nil
}
