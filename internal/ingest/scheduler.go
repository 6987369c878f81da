// Package ingest polls current conditions for each configured location and
// pre-renders its banner.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/lox/unplugged/internal/imagegen"
	"github.com/lox/unplugged/internal/metrics"
	"github.com/lox/unplugged/internal/models"
	"github.com/lox/unplugged/internal/store"
)

const DefaultInterval = 15 * time.Minute

// Fetcher returns current conditions at a coordinate.
type Fetcher interface {
	Current(ctx context.Context, lat, lon float64) (*models.Observation, error)
}

type Scheduler struct {
	store    *store.Store
	fetcher  Fetcher
	interval time.Duration
	clock    clockwork.Clock

	gen           *imagegen.Generator
	cache         *imagegen.Cache
	width, height int
}

func NewScheduler(st *store.Store, fetcher Fetcher, interval time.Duration, clock clockwork.Clock) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		store:    st,
		fetcher:  fetcher,
		interval: interval,
		clock:    clock,
	}
}

// SetImageGenerator makes each ingest pre-render a vibrant banner of the
// given size into cache.
func (s *Scheduler) SetImageGenerator(gen *imagegen.Generator, cache *imagegen.Cache, width, height int) {
	s.gen = gen
	s.cache = cache
	s.width = width
	s.height = height
}

// Run ingests immediately and then on every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.ingest(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Scheduler shutting down")
			return
		case <-ticker.Chan():
			s.ingest(ctx)
		}
	}
}

func (s *Scheduler) ingest(ctx context.Context) {
	if _, err := s.IngestOnce(ctx); err != nil {
		logrus.WithError(err).Error("Ingest failed")
	}
}

// IngestOnce fetches, stores and renders every active location. A failing
// location is logged and skipped; the error return is reserved for not
// being able to list locations at all. It returns how many locations were
// ingested.
func (s *Scheduler) IngestOnce(ctx context.Context) (int, error) {
	locations, err := s.store.GetActiveLocations()
	if err != nil {
		return 0, fmt.Errorf("list locations: %w", err)
	}

	ok := 0
	for _, loc := range locations {
		if ctx.Err() != nil {
			return ok, ctx.Err()
		}

		run, err := s.store.StartIngestRun(loc.LocationID)
		if err != nil {
			logrus.WithError(err).WithField("location", loc.LocationID).Warn("Could not record ingest run")
		}

		err = s.ingestLocation(ctx, loc, run)
		if cerr := s.store.CompleteIngestRun(run, err); cerr != nil {
			logrus.WithError(cerr).WithField("location", loc.LocationID).Warn("Could not complete ingest run")
		}
		if err != nil {
			logrus.WithError(err).WithField("location", loc.LocationID).Warn("Skipping location")
			continue
		}
		ok++
	}

	logrus.WithFields(logrus.Fields{
		"ingested":  ok,
		"locations": len(locations),
	}).Info("Ingest complete")
	return ok, nil
}

func (s *Scheduler) ingestLocation(ctx context.Context, loc models.Location, run *store.IngestRun) error {
	log := logrus.WithField("location", loc.LocationID)

	obs, err := s.fetcher.Current(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	obs.LocationID = loc.LocationID
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = s.clock.Now().UTC()
	}

	if flags := ValidateObservation(obs); len(flags) > 0 {
		log.WithField("flags", flags).Warn("Observation has quality flags")
	}

	if err := s.store.InsertObservation(*obs); err != nil {
		return fmt.Errorf("store observation: %w", err)
	}
	metrics.ObservationsIngested.WithLabelValues(loc.LocationID).Inc()

	log.WithFields(logrus.Fields{
		"temperature": obs.Temperature,
		"description": obs.Description,
	}).Debug("Stored observation")

	if s.gen == nil {
		return nil
	}

	res, err := s.gen.RenderVibrant(*obs, s.width, s.height)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	key := imagegen.Key{Location: loc.LocationID, Mode: res.Mode, Width: s.width, Height: s.height}
	if s.cache != nil {
		if err := s.cache.Set(key, res.PNG); err != nil {
			log.WithError(err).Warn("Could not cache banner")
		}
	}

	if _, err := s.store.InsertRender(res.Record(loc.LocationID, s.clock.Now())); err != nil {
		log.WithError(err).Warn("Could not record render")
	}
	if run != nil {
		run.Rendered = true
	}

	log.WithFields(logrus.Fields{
		"genre": res.Style.Genre,
		"bytes": humanize.Bytes(uint64(len(res.PNG))),
	}).Info("Rendered banner")
	return nil
}
