// Package api serves generated weather art over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/lox/unplugged/internal/imagegen"
	"github.com/lox/unplugged/internal/store"
)

const (
	DefaultBannerWidth  = 800
	DefaultBannerHeight = 400
	// MaxDimension bounds requested image sizes.
	MaxDimension = 4096
)

type Config struct {
	Port         string
	Generator    *imagegen.Generator
	Cache        *imagegen.Cache
	ShareCards   *imagegen.ShareCardCache
	Clock        clockwork.Clock
	BannerWidth  int
	BannerHeight int
	// StaleAfter is how old a location's last observation may be before
	// /health reports degraded.
	StaleAfter time.Duration
}

type Server struct {
	store      *store.Store
	port       string
	gen        *imagegen.Generator
	cache      *imagegen.Cache
	shareCards *imagegen.ShareCardCache
	clock      clockwork.Clock
	width      int
	height     int
	staleAfter time.Duration
}

func NewServer(st *store.Store, cfg Config) *Server {
	s := &Server{
		store:      st,
		port:       cfg.Port,
		gen:        cfg.Generator,
		cache:      cfg.Cache,
		shareCards: cfg.ShareCards,
		clock:      cfg.Clock,
		width:      cfg.BannerWidth,
		height:     cfg.BannerHeight,
		staleAfter: cfg.StaleAfter,
	}
	if s.gen == nil {
		s.gen = imagegen.NewGenerator()
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.shareCards == nil {
		s.shareCards = imagegen.NewShareCardCache(5*time.Minute, s.clock)
	}
	if s.width <= 0 {
		s.width = DefaultBannerWidth
	}
	if s.height <= 0 {
		s.height = DefaultBannerHeight
	}
	if s.staleAfter <= 0 {
		s.staleAfter = time.Hour
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /art.png", s.handleArt)
	mux.HandleFunc("GET /art/{file}", s.handleLocationArt)
	mux.HandleFunc("GET /share/{file}", s.handleShareCard)
	mux.HandleFunc("GET /api/style", s.handleAPIStyle)
	mux.HandleFunc("GET /api/renders", s.handleAPIRenders)
	mux.HandleFunc("GET /api/genres", s.handleAPIGenres)
	mux.HandleFunc("GET /api/locations", s.handleAPILocations)
	mux.HandleFunc("GET /api/banners", s.handleAPIBanners)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logrus.WithField("port", s.port).Info("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

type HealthStatus struct {
	Status        string           `json:"status"`
	SchemaVersion int              `json:"schema_version"`
	Locations     []LocationHealth `json:"locations"`
	LastIngest    *time.Time       `json:"last_ingest,omitempty"`
	IngestErrors  []IngestError    `json:"ingest_errors,omitempty"`
	Errors        []string         `json:"errors,omitempty"`
}

// IngestError is a recent failed ingest run. Failed runs are reported but
// do not change the status; stale locations do.
type IngestError struct {
	LocationID string    `json:"location_id"`
	At         time.Time `json:"at"`
	Error      string    `json:"error"`
}

type LocationHealth struct {
	LocationID string    `json:"location_id"`
	LastSeen   time.Time `json:"last_seen,omitzero"`
	AgeMinutes int       `json:"age_minutes"`
	Stale      bool      `json:"stale"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	locations, err := s.store.GetActiveLocations()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
		return
	}

	health := HealthStatus{
		Status:    "ok",
		Locations: make([]LocationHealth, 0, len(locations)),
	}
	now := s.clock.Now()

	for _, l := range locations {
		obs, err := s.store.GetLatestObservation(l.LocationID)
		if err != nil {
			health.Errors = append(health.Errors, l.LocationID+": "+err.Error())
			continue
		}

		lh := LocationHealth{LocationID: l.LocationID}
		if obs != nil {
			lh.LastSeen = obs.ObservedAt
			lh.AgeMinutes = int(now.Sub(obs.ObservedAt).Minutes())
			lh.Stale = now.Sub(obs.ObservedAt) > s.staleAfter
		} else {
			lh.Stale = true
			lh.AgeMinutes = -1
		}

		if lh.Stale {
			health.Status = "degraded"
		}
		health.Locations = append(health.Locations, lh)
	}

	if version, err := s.store.MigrationVersion(); err != nil {
		health.Errors = append(health.Errors, "schema: "+err.Error())
	} else {
		health.SchemaVersion = version
	}

	if runs, err := s.store.GetRecentIngestErrors(5); err != nil {
		health.Errors = append(health.Errors, "ingest errors: "+err.Error())
	} else {
		for _, r := range runs {
			health.IngestErrors = append(health.IngestErrors, IngestError{
				LocationID: r.LocationID,
				At:         r.StartedAt,
				Error:      r.ErrorMessage.String,
			})
		}
	}

	if last, err := s.store.LastSuccessfulIngest(); err != nil {
		health.Errors = append(health.Errors, "ingest: "+err.Error())
	} else if !last.IsZero() {
		health.LastIngest = &last
	}

	if len(health.Errors) > 0 {
		health.Status = "error"
	}

	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Debug("Write JSON response")
	}
}
