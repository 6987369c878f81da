package models

import (
	"time"
)

type Location struct {
	LocationID string
	Name       string
	Latitude   float64
	Longitude  float64
	Active     bool
}

// Observation is a point-in-time weather state as consumed by the art
// pipeline. Units: temperature °C, precipitation probability 0-1,
// intensity mm/hr, wind direction degrees, cloud cover and humidity percent.
// Wind speed is in whatever unit the provider reports.
type Observation struct {
	ID                       int64
	LocationID               string
	ObservedAt               time.Time
	Temperature              float64
	PrecipitationProbability float64
	PrecipitationIntensity   float64
	WindSpeed                float64
	WindDirection            float64
	CloudCover               float64
	Humidity                 float64
	UVIndex                  float64
	Description              Description
	RawJSON                  string
}

type Render struct {
	ID               int64
	LocationID       string // empty for ad-hoc renders
	Mode             string
	Genre            string
	Mood             string
	ColorDescription string
	Technique        string
	Width            int
	Height           int
	Bytes            int
	CreatedAt        time.Time
}

type GenreCount struct {
	Genre string
	Count int
}
