package api

import (
	"math"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lox/unplugged/internal/imagegen"
	"github.com/lox/unplugged/internal/models"
)

// handleArt renders art for an observation described entirely by query
// parameters. ?format=dataurl returns the image as a data: URL instead.
func (s *Server) handleArt(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	obs, err := observationFromQuery(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, err := s.renderOptionsFromQuery(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.generator(opts).Render(opts.mode, obs, opts.width, opts.height)
	if err != nil {
		logrus.WithError(err).Warn("Render failed, serving fallback")
		s.serveFallback(w, opts.width, opts.height, obs.Description)
		return
	}
	s.recordRender(res, "")

	w.Header().Set("X-Art-Genre", string(res.Style.Genre))
	if opts.seeded {
		w.Header().Set("Cache-Control", "public, max-age=86400")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}

	if q.Get("format") == "dataurl" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(res.DataURL()))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(res.PNG)
}

// handleLocationArt serves a location's banner. It falls back from the
// cache, to rendering the latest stored observation, to any cached banner,
// to a plain gradient, so missing data never produces a broken image.
func (s *Server) handleLocationArt(w http.ResponseWriter, r *http.Request) {
	id, ok := pngName(r.PathValue("file"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	opts, err := s.renderOptionsFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log := logrus.WithField("location", id)
	loc, err := s.store.GetLocation(id)
	if err != nil {
		log.WithError(err).Warn("Location lookup failed")
	} else if loc == nil {
		http.NotFound(w, r)
		return
	}

	key := imagegen.Key{Location: id, Mode: opts.mode, Width: opts.width, Height: opts.height}
	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			s.serveBannerImage(w, data)
			return
		}
	}

	obs, err := s.store.GetLatestObservation(id)
	if err != nil {
		log.WithError(err).Warn("Latest observation lookup failed")
	}
	if obs != nil {
		res, err := s.generator(opts).Render(opts.mode, *obs, opts.width, opts.height)
		if err == nil {
			if s.cache != nil {
				if err := s.cache.Set(key, res.PNG); err != nil {
					log.WithError(err).Warn("Could not cache banner")
				}
			}
			s.recordRender(res, id)
			s.serveBannerImage(w, res.PNG)
			return
		}
		log.WithError(err).Warn("Banner render failed")
	}

	if s.cache != nil {
		if data, ok := s.cache.GetAny(); ok {
			s.serveBannerImage(w, data)
			return
		}
	}

	var desc models.Description
	if obs != nil {
		desc = obs.Description
	}
	s.serveFallback(w, opts.width, opts.height, desc)
}

// handleShareCard serves a 1200x630 captioned card for a location.
func (s *Server) handleShareCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pngName(r.PathValue("file"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	if data, ok := s.shareCards.Get(id); ok {
		serveShareCard(w, data)
		return
	}

	log := logrus.WithField("location", id)
	loc, err := s.store.GetLocation(id)
	if err != nil {
		log.WithError(err).Error("Location lookup failed")
		http.Error(w, "Failed to load location", http.StatusInternalServerError)
		return
	}
	if loc == nil {
		http.NotFound(w, r)
		return
	}

	obs, err := s.store.GetLatestObservation(id)
	if err != nil {
		log.WithError(err).Warn("Latest observation lookup failed")
	}

	data := imagegen.ShareCardData{Temperature: math.NaN(), Place: loc.Name}
	if obs != nil {
		data.Temperature = obs.Temperature
		data.Condition = string(obs.Description)
	}

	var card []byte
	if art, ok := s.shareArt(id, obs); ok {
		card, err = imagegen.GenerateShareCard(art, data)
	} else {
		card, err = imagegen.GenerateFallbackShareCard(data)
	}
	if err != nil {
		log.WithError(err).Error("Share card generation failed")
		http.Error(w, "Failed to generate share card", http.StatusInternalServerError)
		return
	}

	s.shareCards.Set(id, card)
	serveShareCard(w, card)
}

// shareArt finds art for a share card: the location's cached vibrant
// banner, a fresh render, or any cached banner.
func (s *Server) shareArt(id string, obs *models.Observation) ([]byte, bool) {
	key := imagegen.Key{Location: id, Mode: imagegen.ModeVibrant, Width: s.width, Height: s.height}
	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			return data, true
		}
	}
	if obs != nil {
		res, err := s.gen.RenderVibrant(*obs, s.width, s.height)
		if err == nil {
			s.recordRender(res, id)
			return res.PNG, true
		}
		logrus.WithError(err).WithField("location", id).Warn("Share card render failed")
	}
	if s.cache != nil {
		return s.cache.GetAny()
	}
	return nil, false
}

func (s *Server) recordRender(res *imagegen.Result, locationID string) {
	if _, err := s.store.InsertRender(res.Record(locationID, s.clock.Now())); err != nil {
		logrus.WithError(err).Warn("Could not record render")
	}
}

func (s *Server) serveBannerImage(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=600")
	w.Write(data)
}

func serveShareCard(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(data)
}

func (s *Server) serveFallback(w http.ResponseWriter, width, height int, d models.Description) {
	data, err := imagegen.GenerateFallback(width, height, d)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Write(data)
}

// pngName strips the .png extension from a path segment.
func pngName(file string) (string, bool) {
	name, ok := strings.CutSuffix(file, ".png")
	return name, ok && name != ""
}
