package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/unplugged/internal/models"
)

// parseLocation parses ID:LAT:LON[:NAME]. The name defaults to the ID and
// may itself contain colons.
func parseLocation(s string) (models.Location, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return models.Location{}, fmt.Errorf("location %q: want ID:LAT:LON[:NAME]", s)
	}

	id := strings.TrimSpace(parts[0])
	if id == "" || strings.ContainsAny(id, "/\\") {
		return models.Location{}, fmt.Errorf("location %q: invalid id", s)
	}

	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || lat < -90 || lat > 90 {
		return models.Location{}, fmt.Errorf("location %q: invalid latitude", s)
	}
	lon, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || lon < -180 || lon > 180 {
		return models.Location{}, fmt.Errorf("location %q: invalid longitude", s)
	}

	name := id
	if len(parts) == 4 && strings.TrimSpace(parts[3]) != "" {
		name = strings.TrimSpace(parts[3])
	}

	return models.Location{LocationID: id, Name: name, Latitude: lat, Longitude: lon, Active: true}, nil
}

func parseLocations(specs []string) ([]models.Location, error) {
	seen := make(map[string]bool)
	var locations []models.Location
	for _, s := range specs {
		if strings.TrimSpace(s) == "" {
			continue
		}
		l, err := parseLocation(s)
		if err != nil {
			return nil, err
		}
		if seen[l.LocationID] {
			return nil, fmt.Errorf("duplicate location %q", l.LocationID)
		}
		seen[l.LocationID] = true
		locations = append(locations, l)
	}
	return locations, nil
}
