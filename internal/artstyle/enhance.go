package artstyle

import (
	"math"
	"strings"

	"github.com/lox/unplugged/internal/models"
)

// Enhance returns a copy of obs biased toward vibrant output. The caps and
// floors are idempotent, so Enhance(Enhance(o)) == Enhance(o).
func Enhance(obs models.Observation) models.Observation {
	out := obs

	out.CloudCover = math.Min(out.CloudCover, 30)
	out.UVIndex = math.Max(out.UVIndex, 7)
	out.PrecipitationIntensity = math.Min(out.PrecipitationIntensity, 3)
	out.WindSpeed = clamp(out.WindSpeed, 5, 15)

	// Every cloudy sky renders as scattered clouds; that bucket has the most
	// colourful genres.
	if out.Description.IsCloudy() {
		out.Description = models.DescScatteredClouds
	}
	return out
}

var (
	sunnyPalette   = []string{"#FF9500", "#FFD700", "#FF4500", "#FFA500", "#FFFF00"}
	cloudyPalette  = []string{"#FF6B6B", "#4ECDC4", "#FF9A8B", "#FFD166", "#06D6A0"}
	rainyPalette   = []string{"#00BFFF", "#9370DB", "#FF69B4", "#00CED1", "#FF1493"}
	windyPalette   = []string{"#00FFFF", "#FF00FF", "#FFFF00", "#00FF00", "#FF6347"}
	vibrantDefault = []string{"#FF6347", "#FF7F50", "#FFA500", "#FFD700", "#ADFF2F"}

	warmAccents = []string{"#FF4500", "#FF6347"}
	coolAccents = []string{"#4169E1", "#1E90FF"}
)

// EnhancedPalette picks a vibrant palette for the description and, for hot
// or cold temperatures, replaces its last two colours with warm or cool
// accents placed first. The result always has five colours.
func EnhancedPalette(obs models.Observation) []string {
	d := obs.Description
	var base []string
	switch {
	case d.IsClear():
		base = sunnyPalette
	case d.IsCloudy():
		base = cloudyPalette
	case d.IsRainy():
		base = rainyPalette
	case d.IsKnown():
		base = vibrantDefault
	// Free-text descriptions from other providers ("Sunny", "Windy").
	case strings.Contains(string(d), "Sun"):
		base = sunnyPalette
	case strings.Contains(string(d), "Wind"):
		base = windyPalette
	default:
		base = vibrantDefault
	}

	switch {
	case obs.Temperature > 25:
		return withAccents(warmAccents, base)
	case obs.Temperature < 5:
		return withAccents(coolAccents, base)
	}
	return clonePalette(base)
}

func withAccents(accents, base []string) []string {
	out := make([]string, 0, len(accents)+3)
	out = append(out, accents...)
	return append(out, base[:3]...)
}
