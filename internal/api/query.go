package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/lox/unplugged/internal/imagegen"
	"github.com/lox/unplugged/internal/models"
)

// observationParams maps query parameters onto observation fields. Missing
// parameters keep the defaults from defaultObservation.
var observationParams = []struct {
	name  string
	field func(*models.Observation) *float64
}{
	{"temp", func(o *models.Observation) *float64 { return &o.Temperature }},
	{"pop", func(o *models.Observation) *float64 { return &o.PrecipitationProbability }},
	{"intensity", func(o *models.Observation) *float64 { return &o.PrecipitationIntensity }},
	{"wind", func(o *models.Observation) *float64 { return &o.WindSpeed }},
	{"wind_dir", func(o *models.Observation) *float64 { return &o.WindDirection }},
	{"clouds", func(o *models.Observation) *float64 { return &o.CloudCover }},
	{"humidity", func(o *models.Observation) *float64 { return &o.Humidity }},
	{"uv", func(o *models.Observation) *float64 { return &o.UVIndex }},
}

func defaultObservation() models.Observation {
	return models.Observation{
		Temperature: 20,
		Humidity:    50,
		UVIndex:     5,
		Description: models.DescScatteredClouds,
	}
}

// observationFromQuery builds an observation from query parameters. Values
// are not range-checked; the art pipeline tolerates anything finite. An
// unrecognised description is kept as given.
func observationFromQuery(q url.Values) (models.Observation, error) {
	obs := defaultObservation()
	for _, p := range observationParams {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return obs, fmt.Errorf("invalid %s: %q", p.name, v)
		}
		*p.field(&obs) = f
	}
	if d := q.Get("description"); d != "" {
		obs.Description, _ = models.ParseDescription(d)
	}
	return obs, nil
}

type renderOptions struct {
	mode          imagegen.Mode
	width, height int
	seed          uint64
	seeded        bool
}

func (s *Server) renderOptionsFromQuery(q url.Values) (renderOptions, error) {
	opts := renderOptions{width: s.width, height: s.height}

	mode, err := imagegen.ParseMode(q.Get("mode"))
	if err != nil {
		return opts, err
	}
	opts.mode = mode

	if opts.width, err = dimension(q, "w", s.width); err != nil {
		return opts, err
	}
	if opts.height, err = dimension(q, "h", s.height); err != nil {
		return opts, err
	}

	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid seed: %q", v)
		}
		opts.seed, opts.seeded = seed, true
	}
	return opts, nil
}

// generator returns a seeded generator when a seed was requested.
func (s *Server) generator(opts renderOptions) *imagegen.Generator {
	if opts.seeded {
		return imagegen.NewGenerator(imagegen.WithSeed(opts.seed))
	}
	return s.gen
}

func dimension(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > MaxDimension {
		return 0, fmt.Errorf("invalid %s: must be 1-%d", name, MaxDimension)
	}
	return n, nil
}
