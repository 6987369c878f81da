package artstyle

import (
	"math"

	"github.com/lox/unplugged/internal/models"
)

// temperatureBands maps temperature moods to hand-tuned palettes, hottest
// first. A band matches when the temperature is strictly above its floor.
var temperatureBands = []struct {
	above   float64
	palette []string
}{
	{30, []string{"#FF4500", "#FF7F50", "#FFA07A", "#FFD700", "#FFFFE0"}}, // hot
	{20, []string{"#FFA500", "#FFD700", "#FFDAB9", "#FFFACD", "#FFFFE0"}}, // warm
	{10, []string{"#98FB98", "#7FFFD4", "#FFFACD", "#B0E0E6", "#87CEEB"}}, // mild
	{0, []string{"#ADD8E6", "#B0E0E6", "#87CEEB", "#E0FFFF", "#F0F8FF"}},  // cool
}

var coldPalette = []string{"#E0FFFF", "#F0F8FF", "#B0C4DE", "#D6BCFA", "#9370DB"}

// GetColorPalette returns the five-colour palette for a temperature in °C.
// Bands cut over hard at 30, 20, 10 and 0 with no interpolation.
func GetColorPalette(temperature float64) []string {
	for _, band := range temperatureBands {
		if temperature > band.above {
			return clonePalette(band.palette)
		}
	}
	// NaN also lands here.
	return clonePalette(coldPalette)
}

func clonePalette(p []string) []string {
	out := make([]string, len(p))
	copy(out, p)
	return out
}

type PrecipitationParams struct {
	Density float64 // 5-100
	Opacity float64 // 0.3-0.9
}

func GetPrecipitationParams(probability, intensity float64) PrecipitationParams {
	return PrecipitationParams{
		Density: clamp(probability*100, 5, 100),
		Opacity: clamp(0.3+intensity/10, 0.3, 0.9),
	}
}

type WindParams struct {
	Distortion     float64 // 0-50
	Directionality float64 // degrees, passthrough
}

func GetWindParams(speed, direction float64) WindParams {
	return WindParams{
		Distortion:     clamp(speed*5, 0, 50),
		Directionality: direction,
	}
}

type AtmosphericParams struct {
	Contrast   float64
	Saturation float64
	Brightness float64
	Blur       float64
}

// GetAtmosphericParams floors contrast, saturation and brightness at 50 so
// heavy cloud never flattens the image. Humidity is not clamped below.
func GetAtmosphericParams(cloudCover, humidity float64) AtmosphericParams {
	return AtmosphericParams{
		Contrast:   math.Max(50, 100-cloudCover),
		Saturation: math.Max(50, 100-cloudCover*0.5),
		Brightness: math.Max(50, 100-cloudCover*0.7),
		Blur:       math.Min(5, humidity/20),
	}
}

// DrawingParams are the numeric rendering parameters derived from an
// observation. MovementSpeed is only meaningful to animated consumers.
type DrawingParams struct {
	ColorPalette       []string `json:"colorPalette"`
	BackgroundGradient []string `json:"backgroundGradient"`
	StrokeWidth        float64  `json:"strokeWidth"`
	Density            float64  `json:"density"`
	Opacity            float64  `json:"opacity"`
	Distortion         float64  `json:"distortion"`
	Directionality     float64  `json:"directionality"`
	Contrast           float64  `json:"contrast"`
	Saturation         float64  `json:"saturation"`
	Brightness         float64  `json:"brightness"`
	Blur               float64  `json:"blur"`
	ParticleSize       float64  `json:"particleSize"`
	ParticleCount      float64  `json:"particleCount"`
	MovementSpeed      float64  `json:"movementSpeed"`
}

// GenerateDrawingParams derives DrawingParams from obs. It has no
// randomness: identical observations yield identical parameters.
func GenerateDrawingParams(obs models.Observation) DrawingParams {
	palette := GetColorPalette(obs.Temperature)
	precip := GetPrecipitationParams(obs.PrecipitationProbability, obs.PrecipitationIntensity)
	wind := GetWindParams(obs.WindSpeed, obs.WindDirection)
	atmos := GetAtmosphericParams(obs.CloudCover, obs.Humidity)

	return DrawingParams{
		ColorPalette:       palette,
		BackgroundGradient: []string{palette[0], palette[len(palette)-1]},
		StrokeWidth:        math.Max(1, 5-obs.UVIndex/3),
		Density:            precip.Density,
		Opacity:            precip.Opacity,
		Distortion:         wind.Distortion,
		Directionality:     wind.Directionality,
		Contrast:           atmos.Contrast,
		Saturation:         atmos.Saturation,
		Brightness:         atmos.Brightness,
		Blur:               atmos.Blur,
		ParticleSize:       clamp(obs.PrecipitationIntensity*2, 1, 5),
		ParticleCount:      clamp(obs.PrecipitationProbability*500, 10, 500),
		MovementSpeed:      clamp(obs.WindSpeed*0.5, 1, 10),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
