package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unplugged_renders_total",
			Help: "Total art renders completed",
		},
		[]string{"genre", "mode"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unplugged_render_duration_seconds",
			Help:    "Time spent rendering and encoding one image",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"mode"},
	)

	RenderBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "unplugged_render_bytes",
			Help:    "Encoded PNG size of rendered images",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 8),
		},
	)

	OpenWeatherCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unplugged_openweather_calls_total",
			Help: "Total OpenWeather API calls",
		},
		[]string{"status"},
	)

	OpenWeatherLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "unplugged_openweather_latency_seconds",
			Help:    "OpenWeather API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	BannerCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unplugged_banner_cache_total",
			Help: "Banner cache lookups by result",
		},
		[]string{"result"},
	)

	ObservationsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unplugged_observations_ingested_total",
			Help: "Total observations successfully ingested",
		},
		[]string{"location"},
	)
)
