package ingest

import (
	"github.com/lox/unplugged/internal/models"
)

// Quality flags mark values that are physically unlikely. Flagged
// observations are still stored and rendered; the art pipeline clamps what
// it needs to.
const (
	FlagTempOutOfRange     = "temp_out_of_range"
	FlagHumidityInvalid    = "humidity_invalid"
	FlagCloudCoverInvalid  = "cloud_cover_invalid"
	FlagWindDirInvalid     = "wind_dir_invalid"
	FlagWindSpeedUnlikely  = "wind_speed_unlikely"
	FlagPrecipInvalid      = "precip_invalid"
	FlagDescriptionUnknown = "description_unknown"
)

func ValidateObservation(obs *models.Observation) []string {
	var flags []string

	if obs.Temperature < -60 || obs.Temperature > 60 {
		flags = append(flags, FlagTempOutOfRange)
	}
	if obs.Humidity < 0 || obs.Humidity > 100 {
		flags = append(flags, FlagHumidityInvalid)
	}
	if obs.CloudCover < 0 || obs.CloudCover > 100 {
		flags = append(flags, FlagCloudCoverInvalid)
	}
	if obs.WindDirection < 0 || obs.WindDirection > 360 {
		flags = append(flags, FlagWindDirInvalid)
	}
	if obs.WindSpeed < 0 || obs.WindSpeed > 200 {
		flags = append(flags, FlagWindSpeedUnlikely)
	}
	if obs.PrecipitationProbability < 0 || obs.PrecipitationProbability > 1 || obs.PrecipitationIntensity < 0 {
		flags = append(flags, FlagPrecipInvalid)
	}
	if !obs.Description.IsKnown() {
		flags = append(flags, FlagDescriptionUnknown)
	}

	return flags
}
