package openweather

import (
	"math"
	"strings"
	"time"

	"github.com/lox/unplugged/internal/models"
)

// UV index is not part of the current weather endpoint.
const defaultUVIndex = 5

// Convert maps a current weather response onto an Observation. Wind speed
// is passed through in the API's units.
func Convert(r *Response) *models.Observation {
	var main, detail string
	if len(r.Weather) > 0 {
		main = r.Weather[0].Main
		detail = r.Weather[0].Description
	}

	prob, intensity := precipitation(r, main)

	obs := &models.Observation{
		Temperature:              r.Main.Temp,
		PrecipitationProbability: prob,
		PrecipitationIntensity:   intensity,
		WindSpeed:                r.Wind.Speed,
		WindDirection:            r.Wind.Deg,
		CloudCover:               r.Clouds.All,
		Humidity:                 r.Main.Humidity,
		UVIndex:                  defaultUVIndex,
		Description:              describe(main, detail),
	}
	if r.Dt > 0 {
		obs.ObservedAt = time.Unix(r.Dt, 0).UTC()
	}
	return obs
}

var descriptionRules = []struct {
	substr string
	desc   models.Description
}{
	{"clear", models.DescClear},
	{"few clouds", models.DescFewClouds},
	{"scattered clouds", models.DescScatteredClouds},
	{"broken clouds", models.DescBrokenClouds},
	{"shower rain", models.DescShowerRain},
	{"rain", models.DescRain},
	{"thunderstorm", models.DescThunderstorm},
	{"snow", models.DescSnow},
	{"mist", models.DescMist},
	{"fog", models.DescFog},
}

// describe matches the condition group against the rules in order. The
// group for cloud is just "Clouds", so the detailed text is used instead to
// tell few, scattered and broken apart.
func describe(main, detail string) models.Description {
	text := strings.ToLower(main)
	if strings.Contains(text, "cloud") {
		text = strings.ToLower(detail)
	}
	for _, r := range descriptionRules {
		if strings.Contains(text, r.substr) {
			return r.desc
		}
	}
	return models.DescScatteredClouds
}

// precipitation prefers measured rain, then snow, and otherwise infers a
// moderate value from the condition group.
func precipitation(r *Response, main string) (probability, intensity float64) {
	if mm, ok := lastHour(r.Rain); ok {
		return math.Min(1, mm/10), math.Min(10, mm)
	}
	if mm, ok := lastHour(r.Snow); ok {
		return math.Min(1, mm/10), math.Min(10, mm)
	}

	m := strings.ToLower(main)
	switch {
	case strings.Contains(m, "rain"), strings.Contains(m, "shower"), strings.Contains(m, "drizzle"):
		return 0.7, 3
	case strings.Contains(m, "snow"):
		return 0.7, 3
	}
	return 0, 0
}

func lastHour(p *Precip) (float64, bool) {
	if p == nil || p.OneHour == nil || *p.OneHour == 0 {
		return 0, false
	}
	return *p.OneHour, true
}
