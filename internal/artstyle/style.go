package artstyle

import (
	"fmt"
	"math/rand/v2"

	"github.com/lox/unplugged/internal/models"
)

// Genre names a visual style. Only some genres have a dedicated drawing
// algorithm; the rest render with the generic abstract composite.
type Genre string

const (
	GenreImpressionism         Genre = "Impressionism"
	GenreAbstractExpressionism Genre = "Abstract Expressionism"
	GenreWatercolor            Genre = "Watercolor"
	GenreGlitchArt             Genre = "Glitch Art"
	GenreLineArt               Genre = "Line Art"
	GenreGeometricAbstract     Genre = "Geometric Abstract"
	GenreFauvism               Genre = "Fauvism"
	GenrePopArt                Genre = "Pop Art"
	GenreMinimalism            Genre = "Minimalism"
	GenrePointillism           Genre = "Pointillism"
	GenreExpressionism         Genre = "Expressionism"
	GenreSurrealism            Genre = "Surrealism"
)

// Genres lists all twelve genres.
var Genres = []Genre{
	GenreImpressionism,
	GenreAbstractExpressionism,
	GenreWatercolor,
	GenreGlitchArt,
	GenreLineArt,
	GenreGeometricAbstract,
	GenreFauvism,
	GenrePopArt,
	GenreMinimalism,
	GenrePointillism,
	GenreExpressionism,
	GenreSurrealism,
}

var genresByDescription = map[models.Description][]Genre{
	models.DescClear:           {GenreMinimalism, GenreGeometricAbstract, GenrePopArt},
	models.DescFewClouds:       {GenreMinimalism, GenreWatercolor, GenreGeometricAbstract},
	models.DescScatteredClouds: {GenreImpressionism, GenreWatercolor, GenreAbstractExpressionism},
	models.DescBrokenClouds:    {GenreAbstractExpressionism, GenreImpressionism, GenreSurrealism},
	models.DescShowerRain:      {GenreImpressionism, GenreWatercolor, GenreLineArt},
	models.DescRain:            {GenreImpressionism, GenreWatercolor, GenreAbstractExpressionism},
	models.DescThunderstorm:    {GenreExpressionism, GenreSurrealism, GenreGlitchArt},
	models.DescSnow:            {GenreMinimalism, GenrePointillism, GenreWatercolor},
	models.DescMist:            {GenreImpressionism, GenreMinimalism, GenreWatercolor},
	models.DescFog:             {GenreImpressionism, GenreMinimalism, GenreAbstractExpressionism},
}

var fallbackGenres = []Genre{GenreAbstractExpressionism}

// GetGenresByDescription returns the candidate genres for a description.
func GetGenresByDescription(d models.Description) []Genre {
	genres, ok := genresByDescription[d]
	if !ok {
		genres = fallbackGenres
	}
	out := make([]Genre, len(genres))
	copy(out, genres)
	return out
}

// SelectGenre picks one candidate genre uniformly using rng.
func SelectGenre(rng *rand.Rand, d models.Description) Genre {
	genres := GetGenresByDescription(d)
	return genres[rng.IntN(len(genres))]
}

// ArtStyle is descriptive metadata for a render. Only Genre affects drawing.
type ArtStyle struct {
	Genre            Genre  `json:"genre"`
	Mood             string `json:"mood"`
	ColorDescription string `json:"colorDescription"`
	Technique        string `json:"technique"`
}

// GenerateArtStyle selects a genre for obs and composes its descriptive text.
func GenerateArtStyle(rng *rand.Rand, obs models.Observation) ArtStyle {
	genre := SelectGenre(rng, obs.Description)
	return ArtStyle{
		Genre:            genre,
		Mood:             mood(obs),
		ColorDescription: colorDescription(obs),
		Technique:        technique(genre, obs),
	}
}

func mood(obs models.Observation) string {
	var m string
	switch {
	case obs.Temperature > 25:
		m = "warm, vibrant"
	case obs.Temperature < 5:
		m = "cold, stark"
	default:
		m = "balanced, moderate"
	}

	switch {
	case obs.Description.IsRainy():
		m += ", dramatic"
	case obs.Description.IsClear():
		m += ", peaceful"
	}
	return m
}

func colorDescription(obs models.Observation) string {
	tempWord := "neutral"
	switch {
	case obs.Temperature > 25:
		tempWord = "warm"
	case obs.Temperature < 5:
		tempWord = "cool"
	}

	saturationWord := "vibrant"
	if obs.CloudCover > 70 {
		saturationWord = "muted"
	}
	return fmt.Sprintf("%s %s tones", saturationWord, tempWord)
}

func technique(genre Genre, obs models.Observation) string {
	switch genre {
	case GenreImpressionism:
		if obs.Description.IsRainy() {
			return "wet-on-wet brushwork"
		}
		return "quick, light brushstrokes"
	case GenreAbstractExpressionism:
		if obs.WindSpeed > 20 {
			return "dynamic, sweeping gestures"
		}
		return "layered, textural application"
	case GenreWatercolor:
		if obs.Humidity > 70 {
			return "blended washes with soft edges"
		}
		return "controlled wash with defined edges"
	case GenreGeometricAbstract:
		return "structured geometric shapes with clean lines"
	case GenreMinimalism:
		return "restrained elements with emphasis on negative space"
	case GenrePointillism:
		return "densely packed color points creating optical blending"
	default:
		return "mixed media with varied mark-making"
	}
}
