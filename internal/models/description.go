package models

// Description is the categorical weather summary driving genre selection.
// Values outside the known set are tolerated and fall through to defaults.
type Description string

const (
	DescClear           Description = "Clear"
	DescFewClouds       Description = "Few Clouds"
	DescScatteredClouds Description = "Scattered Clouds"
	DescBrokenClouds    Description = "Broken Clouds"
	DescShowerRain      Description = "Shower Rain"
	DescRain            Description = "Rain"
	DescThunderstorm    Description = "Thunderstorm"
	DescSnow            Description = "Snow"
	DescMist            Description = "Mist"
	DescFog             Description = "Fog"
)

// Descriptions lists every known description in canonical order.
var Descriptions = []Description{
	DescClear,
	DescFewClouds,
	DescScatteredClouds,
	DescBrokenClouds,
	DescShowerRain,
	DescRain,
	DescThunderstorm,
	DescSnow,
	DescMist,
	DescFog,
}

// ParseDescription matches s exactly against the known descriptions.
func ParseDescription(s string) (Description, bool) {
	for _, d := range Descriptions {
		if string(d) == s {
			return d, true
		}
	}
	return Description(s), false
}

// IsClear reports descriptions containing "Clear".
func (d Description) IsClear() bool {
	return d == DescClear
}

// IsCloudy reports descriptions containing "Cloud".
func (d Description) IsCloudy() bool {
	switch d {
	case DescFewClouds, DescScatteredClouds, DescBrokenClouds:
		return true
	}
	return false
}

// IsRainy reports descriptions containing "Rain" or "Shower".
// Thunderstorm is deliberately excluded.
func (d Description) IsRainy() bool {
	switch d {
	case DescRain, DescShowerRain:
		return true
	}
	return false
}

// IsSnowy reports descriptions containing "Snow".
func (d Description) IsSnowy() bool {
	return d == DescSnow
}

// IsFoggy reports descriptions containing "Fog" or "Mist".
func (d Description) IsFoggy() bool {
	switch d {
	case DescFog, DescMist:
		return true
	}
	return false
}

func (d Description) String() string {
	return string(d)
}

// IsKnown reports whether d is one of the enumerated descriptions.
func (d Description) IsKnown() bool {
	_, ok := ParseDescription(string(d))
	return ok
}
