package store

import (
	"database/sql"
	"time"

	"github.com/lox/unplugged/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertLocation(l models.Location) error {
	_, err := s.db.Exec(`
		INSERT INTO locations (location_id, name, latitude, longitude, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(location_id) DO UPDATE SET
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			active = excluded.active
	`, l.LocationID, l.Name, l.Latitude, l.Longitude, l.Active)
	return err
}

func (s *Store) GetActiveLocations() ([]models.Location, error) {
	rows, err := s.db.Query(`SELECT location_id, name, latitude, longitude, active FROM locations WHERE active = TRUE ORDER BY location_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.LocationID, &l.Name, &l.Latitude, &l.Longitude, &l.Active); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// GetLocation returns nil, nil when the location does not exist.
func (s *Store) GetLocation(id string) (*models.Location, error) {
	var l models.Location
	err := s.db.QueryRow(`SELECT location_id, name, latitude, longitude, active FROM locations WHERE location_id = ?`, id).
		Scan(&l.LocationID, &l.Name, &l.Latitude, &l.Longitude, &l.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// InsertObservation stores obs. A second observation for the same location
// and time is ignored.
func (s *Store) InsertObservation(obs models.Observation) error {
	_, err := s.db.Exec(`
		INSERT INTO observations (location_id, observed_at, temperature, precip_probability, precip_intensity, wind_speed, wind_direction, cloud_cover, humidity, uv_index, description, raw_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(location_id, observed_at) DO NOTHING
	`, obs.LocationID, obs.ObservedAt.UTC(), obs.Temperature, obs.PrecipitationProbability, obs.PrecipitationIntensity,
		obs.WindSpeed, obs.WindDirection, obs.CloudCover, obs.Humidity, obs.UVIndex, string(obs.Description), obs.RawJSON)
	return err
}

// GetLatestObservation returns nil, nil when nothing has been observed for
// the location yet.
func (s *Store) GetLatestObservation(locationID string) (*models.Observation, error) {
	row := s.db.QueryRow(`
		SELECT id, location_id, observed_at, temperature, precip_probability, precip_intensity, wind_speed, wind_direction, cloud_cover, humidity, uv_index, description, COALESCE(raw_json, '')
		FROM observations
		WHERE location_id = ?
		ORDER BY observed_at DESC
		LIMIT 1
	`, locationID)

	var (
		obs  models.Observation
		desc string
	)
	err := row.Scan(&obs.ID, &obs.LocationID, &obs.ObservedAt, &obs.Temperature, &obs.PrecipitationProbability,
		&obs.PrecipitationIntensity, &obs.WindSpeed, &obs.WindDirection, &obs.CloudCover, &obs.Humidity,
		&obs.UVIndex, &desc, &obs.RawJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	obs.Description = models.Description(desc)
	return &obs, nil
}

func (s *Store) InsertRender(r models.Render) (int64, error) {
	var locationID sql.NullString
	if r.LocationID != "" {
		locationID = sql.NullString{String: r.LocationID, Valid: true}
	}
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.db.Exec(`
		INSERT INTO renders (location_id, mode, genre, mood, color_description, technique, width, height, bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, locationID, r.Mode, r.Genre, r.Mood, r.ColorDescription, r.Technique, r.Width, r.Height, r.Bytes, createdAt.UTC())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// RecentRenders returns up to limit renders, newest first.
func (s *Store) RecentRenders(limit int) ([]models.Render, error) {
	rows, err := s.db.Query(`
		SELECT id, COALESCE(location_id, ''), mode, genre, COALESCE(mood, ''), COALESCE(color_description, ''), COALESCE(technique, ''), width, height, bytes, created_at
		FROM renders
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var renders []models.Render
	for rows.Next() {
		var r models.Render
		if err := rows.Scan(&r.ID, &r.LocationID, &r.Mode, &r.Genre, &r.Mood, &r.ColorDescription,
			&r.Technique, &r.Width, &r.Height, &r.Bytes, &r.CreatedAt); err != nil {
			return nil, err
		}
		renders = append(renders, r)
	}
	return renders, rows.Err()
}

// GenreCounts tallies renders per genre since the given time, most common
// first.
func (s *Store) GenreCounts(since time.Time) ([]models.GenreCount, error) {
	rows, err := s.db.Query(`
		SELECT genre, COUNT(*) AS n
		FROM renders
		WHERE created_at >= ?
		GROUP BY genre
		ORDER BY n DESC, genre
	`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.GenreCount
	for rows.Next() {
		var c models.GenreCount
		if err := rows.Scan(&c.Genre, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
