package api

import (
	"time"

	"github.com/lox/unplugged/internal/imagegen"
	"github.com/lox/unplugged/internal/models"
)

type ObservationView struct {
	LocationID               string    `json:"locationId,omitempty"`
	ObservedAt               time.Time `json:"observedAt,omitzero"`
	Temperature              float64   `json:"temperature"`
	PrecipitationProbability float64   `json:"precipitationProbability"`
	PrecipitationIntensity   float64   `json:"precipitationIntensity"`
	WindSpeed                float64   `json:"windSpeed"`
	WindDirection            float64   `json:"windDirection"`
	CloudCover               float64   `json:"cloudCover"`
	Humidity                 float64   `json:"humidity"`
	UVIndex                  float64   `json:"uvIndex"`
	Description              string    `json:"description"`
	KnownDescription         bool      `json:"knownDescription"`
}

func newObservationView(o models.Observation) ObservationView {
	return ObservationView{
		LocationID:               o.LocationID,
		ObservedAt:               o.ObservedAt,
		Temperature:              o.Temperature,
		PrecipitationProbability: o.PrecipitationProbability,
		PrecipitationIntensity:   o.PrecipitationIntensity,
		WindSpeed:                o.WindSpeed,
		WindDirection:            o.WindDirection,
		CloudCover:               o.CloudCover,
		Humidity:                 o.Humidity,
		UVIndex:                  o.UVIndex,
		Description:              string(o.Description),
		KnownDescription:         o.Description.IsKnown(),
	}
}

type RenderView struct {
	ID               int64     `json:"id"`
	LocationID       string    `json:"locationId,omitempty"`
	Mode             string    `json:"mode"`
	Genre            string    `json:"genre"`
	Mood             string    `json:"mood"`
	ColorDescription string    `json:"colorDescription"`
	Technique        string    `json:"technique"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	Bytes            int       `json:"bytes"`
	CreatedAt        time.Time `json:"createdAt"`
}

func newRenderView(r models.Render) RenderView {
	return RenderView{
		ID:               r.ID,
		LocationID:       r.LocationID,
		Mode:             r.Mode,
		Genre:            r.Genre,
		Mood:             r.Mood,
		ColorDescription: r.ColorDescription,
		Technique:        r.Technique,
		Width:            r.Width,
		Height:           r.Height,
		Bytes:            r.Bytes,
		CreatedAt:        r.CreatedAt,
	}
}

type GenreCountView struct {
	Genre     string `json:"genre"`
	Count     int    `json:"count"`
	Dedicated bool   `json:"dedicated"`
}

type LocationView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ArtURL    string  `json:"artUrl"`
	ShareURL  string  `json:"shareUrl"`
}

type BannerView struct {
	Location string        `json:"location"`
	Mode     imagegen.Mode `json:"mode"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	URL      string        `json:"url"`
}
