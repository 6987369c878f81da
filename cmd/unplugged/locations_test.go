package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unplugged/internal/imagegen"
	"github.com/lox/unplugged/internal/models"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Location
		wantErr bool
	}{
		{
			in:   "wandiligong:-36.794:146.977:Wandiligong",
			want: models.Location{LocationID: "wandiligong", Name: "Wandiligong", Latitude: -36.794, Longitude: 146.977, Active: true},
		},
		{
			in:   "bright:-36.729:146.968",
			want: models.Location{LocationID: "bright", Name: "bright", Latitude: -36.729, Longitude: 146.968, Active: true},
		},
		{
			in:   "nyc:40.71:-74.0:New York: Manhattan",
			want: models.Location{LocationID: "nyc", Name: "New York: Manhattan", Latitude: 40.71, Longitude: -74, Active: true},
		},
		{in: "bright", wantErr: true},
		{in: ":1:2", wantErr: true},
		{in: "../etc:1:2", wantErr: true},
		{in: "x:north:2", wantErr: true},
		{in: "x:91:2", wantErr: true},
		{in: "x:1:-181", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLocation(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocations_RejectsDuplicates(t *testing.T) {
	_, err := parseLocations([]string{"a:1:2", "a:3:4"})
	assert.Error(t, err)

	locations, err := parseLocations([]string{"a:1:2", "", "b:3:4"})
	require.NoError(t, err)
	assert.Len(t, locations, 2)
}

func TestWeatherArgs_Observation(t *testing.T) {
	a := WeatherArgs{Temp: 30, Humidity: 40, UV: 8, Description: "Clear"}
	obs := a.observation()
	assert.Equal(t, models.DescClear, obs.Description)
	assert.Equal(t, 30.0, obs.Temperature)

	a.Description = "Volcanic Ash"
	assert.Equal(t, models.Description("Volcanic Ash"), a.observation().Description)
}

func TestWeatherArgs_SeedZeroIsPinned(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=debug\n"), 0644))

	var cli CLI
	parser, err := kong.New(&cli, kong.Name("unplugged"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"--env-file", envFile, "describe", "--seed", "0", "--description", "Rain"})
	require.NoError(t, err)
	require.NotNil(t, cli.Describe.Seed)
	assert.Equal(t, uint64(0), *cli.Describe.Seed)

	a := cli.Describe.WeatherArgs
	first := a.generator().Plan(imagegen.ModeVibrant, a.observation())
	for range 5 {
		assert.Equal(t, first, a.generator().Plan(imagegen.ModeVibrant, a.observation()))
	}

	cli = CLI{}
	_, err = parser.Parse([]string{"--env-file", envFile, "describe"})
	require.NoError(t, err)
	assert.Nil(t, cli.Describe.Seed)
}

func TestWeatherArgs_DescriptionHelpListsKnownValues(t *testing.T) {
	field, ok := reflect.TypeOf(WeatherArgs{}).FieldByName("Description")
	require.True(t, ok)
	help := field.Tag.Get("help")
	for _, d := range models.Descriptions {
		assert.Contains(t, help, string(d))
	}

	def, known := models.ParseDescription(field.Tag.Get("default"))
	assert.True(t, known, "default %q is not a known description", def)
}
