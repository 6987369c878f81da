package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lox/unplugged/internal/artstyle"
	"github.com/lox/unplugged/internal/imagegen"
	"github.com/lox/unplugged/internal/painter"
)

// handleAPIStyle reports what /art.png would paint for the same query,
// without drawing it.
func (s *Server) handleAPIStyle(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, newStyleView(opts.mode, s.generator(opts).Plan(opts.mode, obs)))
}

func (s *Server) handleAPIRenders(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 200)
	}

	renders, err := s.store.RecentRenders(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]RenderView, 0, len(renders))
	for _, rd := range renders {
		views = append(views, newRenderView(rd))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleAPIGenres tallies rendered genres over the last ?hours (default 24).
func (s *Server) handleAPIGenres(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid hours", http.StatusBadRequest)
			return
		}
		hours = n
	}

	since := s.clock.Now().Add(-time.Duration(hours) * time.Hour)
	counts, err := s.store.GenreCounts(since)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]GenreCountView, 0, len(counts))
	for _, c := range counts {
		views = append(views, GenreCountView{
			Genre:     c.Genre,
			Count:     c.Count,
			Dedicated: painter.HasDedicatedAlgorithm(artstyle.Genre(c.Genre)),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleAPILocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.store.GetActiveLocations()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]LocationView, 0, len(locations))
	for _, l := range locations {
		views = append(views, LocationView{
			ID:        l.LocationID,
			Name:      l.Name,
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			ArtURL:    "/art/" + l.LocationID + ".png",
			ShareURL:  "/share/" + l.LocationID + ".png",
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// handleAPIBanners lists the banners in the file cache, stale ones
// included.
func (s *Server) handleAPIBanners(w http.ResponseWriter, r *http.Request) {
	views := []BannerView{}
	if s.cache != nil {
		for _, k := range s.cache.List() {
			views = append(views, BannerView{
				Location: k.Location,
				Mode:     k.Mode,
				Width:    k.Width,
				Height:   k.Height,
				URL:      fmt.Sprintf("/art/%s.png?mode=%s&w=%d&h=%d", k.Location, k.Mode, k.Width, k.Height),
			})
		}
	}
	writeJSON(w, http.StatusOK, views)
}

// StyleView is the JSON form of a render plan.
type StyleView struct {
	Mode               imagegen.Mode          `json:"mode"`
	Observation        ObservationView        `json:"observation"`
	Params             artstyle.DrawingParams `json:"params"`
	Style              artstyle.ArtStyle      `json:"style"`
	CandidateGenres    []artstyle.Genre       `json:"candidateGenres"`
	DedicatedAlgorithm bool                   `json:"dedicatedAlgorithm"`
}

func newStyleView(mode imagegen.Mode, p imagegen.Plan) StyleView {
	return StyleView{
		Mode:               mode,
		Observation:        newObservationView(p.Observation),
		Params:             p.Params,
		Style:              p.Style,
		CandidateGenres:    artstyle.GetGenresByDescription(p.Observation.Description),
		DedicatedAlgorithm: painter.HasDedicatedAlgorithm(p.Style.Genre),
	}
}
