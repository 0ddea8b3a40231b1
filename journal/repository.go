// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

// Package journal stores travels and their cities, the journal surface the
// place resolution engine feeds. Persistence is DuckDB with the spatial
// extension; each city additionally carries H3 cells so stats can count
// distinct regions without geometry queries.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carnet-app/carnet/spatial"
	"github.com/uber/h3-go/v4"
)

// City is one stop of a travel. Coordinates are optional: a city entered by
// hand may not be resolved yet, backfill takes care of it later.
type City struct {
	ID            int64          `json:"id"`
	TravelID      int64          `json:"travel_id"`
	Name          string         `json:"name"`
	Point         *spatial.Point `json:"point,omitempty"`
	CountryCode   string         `json:"country_code,omitempty"`
	ArrivalDate   string         `json:"arrival_date,omitempty"`   // ISO date, may be empty
	DepartureDate string         `json:"departure_date,omitempty"` // ISO date, may be empty
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	H3Res3        int64          `json:"-"`
	H3Res6        int64          `json:"-"`
}

// computeH3 fills the city's H3 cells from its coordinates: res 3 is the
// "region" granularity used by stats, res 6 the locality granularity.
func (c *City) computeH3() error {
	if c.Point == nil {
		c.H3Res3, c.H3Res6 = 0, 0

		return nil
	}

	latLng := h3.NewLatLng(c.Point.Lat, c.Point.Lng)

	res3, err := h3.LatLngToCell(latLng, 3)
	if err != nil {
		return fmt.Errorf("converting to h3 cell at res 3: %w", err)
	}

	res6, err := h3.LatLngToCell(latLng, 6)
	if err != nil {
		return fmt.Errorf("converting to h3 cell at res 6: %w", err)
	}

	c.H3Res3 = int64(res3)
	c.H3Res6 = int64(res6)

	return nil
}

// Travel is a country-level trip with its ordered cities.
type Travel struct {
	ID        int64          `json:"id"`
	Country   string         `json:"country"`
	Point     *spatial.Point `json:"point,omitempty"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Notes     string         `json:"notes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Cities    []*City        `json:"cities"`
}

// Stats summarizes the whole journal.
type Stats struct {
	Travels        int     `json:"travels"`
	Cities         int     `json:"cities"`
	Countries      int     `json:"countries"`
	Regions        int     `json:"regions"` // distinct H3 res-3 cells
	DistanceMeters float64 `json:"distance_meters"`
}

// TravelRepository handles persistence of travels and cities.
type TravelRepository interface {
	// CreateSchema creates the travels and cities tables
	CreateSchema() error

	// SaveTravel inserts a travel with its cities, computing the travel
	// center from city coordinates when absent
	SaveTravel(t *Travel) error

	// ListTravels returns all travels with their cities, newest first
	ListTravels() ([]*Travel, error)

	// GetTravel returns one travel with its cities
	GetTravel(id int64) (*Travel, error)

	// DeleteTravel removes a travel and its cities
	DeleteTravel(id int64) error

	// GetCity returns one city
	GetCity(id int64) (*City, error)

	// UpdateCity updates a city's fields, recomputing its H3 cells
	UpdateCity(c *City) error

	// ListUnresolvedCities returns cities without coordinates
	ListUnresolvedCities() ([]*City, error)

	// CountTravels returns the number of travels
	CountTravels() (int, error)

	// Stats computes journal-wide statistics
	Stats() (*Stats, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

// ErrNotFound is returned when a travel or city does not exist.
var ErrNotFound = errors.New("journal: not found")

type sqlTravelRepository struct {
	db *sql.DB
}

// NewTravelRepository creates a new travel repository.
func NewTravelRepository(db *sql.DB) TravelRepository {
	return &sqlTravelRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlTravelRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlTravelRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS travels_seq START 1;
		CREATE SEQUENCE IF NOT EXISTS cities_seq START 1;

		CREATE TABLE IF NOT EXISTS travels (
			id BIGINT PRIMARY KEY DEFAULT nextval('travels_seq'),
			country VARCHAR NOT NULL,
			point POINT_2D NOT NULL,
			start_date VARCHAR NOT NULL,
			end_date VARCHAR NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS cities (
			id BIGINT PRIMARY KEY DEFAULT nextval('cities_seq'),
			travel_id BIGINT NOT NULL,
			name VARCHAR NOT NULL,
			point POINT_2D,
			country_code VARCHAR,
			arrival_date VARCHAR,
			departure_date VARCHAR,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			h3_res3 BIGINT,
			h3_res6 BIGINT
		);
	`)

	return err
}

func (r *sqlTravelRepository) SaveTravel(t *Travel) error {
	if err := validateTravel(t); err != nil {
		return err
	}

	// Mirror the original journal: the travel center defaults to the
	// mean of the resolved city coordinates.
	if t.Point == nil {
		var points []spatial.Point

		for _, c := range t.Cities {
			if c.Point != nil && c.Point.IsFinite() {
				points = append(points, *c.Point)
			}
		}

		center := spatial.Center(points)
		t.Point = &center
	}

	t.CreatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	err = tx.QueryRow(`
		INSERT INTO travels (country, point, start_date, end_date, notes, created_at)
		VALUES (?, ST_Point(?, ?), ?, ?, ?, ?)
		RETURNING id
	`,
		t.Country,
		t.Point.Lng,
		t.Point.Lat,
		t.StartDate,
		t.EndDate,
		t.Notes,
		t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return rollback(tx, fmt.Errorf("inserting travel: %w", err))
	}

	for _, c := range t.Cities {
		c.TravelID = t.ID
		c.CreatedAt = t.CreatedAt

		if err := insertCity(tx, c); err != nil {
			return rollback(tx, fmt.Errorf("inserting city %q: %w", c.Name, err))
		}
	}

	return tx.Commit()
}

func rollback(tx *sql.Tx, err error) error {
	if rErr := tx.Rollback(); rErr != nil {
		return errors.Join(err, rErr)
	}

	return err
}

func insertCity(tx *sql.Tx, c *City) error {
	if err := c.computeH3(); err != nil {
		return err
	}

	if c.Point != nil {
		return tx.QueryRow(`
			INSERT INTO cities (travel_id, name, point, country_code, arrival_date, departure_date, notes, created_at, h3_res3, h3_res6)
			VALUES (?, ?, ST_Point(?, ?), ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`,
			c.TravelID, c.Name, c.Point.Lng, c.Point.Lat, c.CountryCode,
			c.ArrivalDate, c.DepartureDate, c.Notes, c.CreatedAt, c.H3Res3, c.H3Res6,
		).Scan(&c.ID)
	}

	return tx.QueryRow(`
		INSERT INTO cities (travel_id, name, point, country_code, arrival_date, departure_date, notes, created_at, h3_res3, h3_res6)
		VALUES (?, ?, NULL, ?, ?, ?, ?, ?, NULL, NULL)
		RETURNING id
	`,
		c.TravelID, c.Name, c.CountryCode,
		c.ArrivalDate, c.DepartureDate, c.Notes, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *sqlTravelRepository) ListTravels() ([]*Travel, error) {
	rows, err := r.db.Query(`
		SELECT id, country, point, start_date, end_date, notes, created_at
		FROM travels
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var travels []*Travel

	for rows.Next() {
		t, err := scanTravel(rows)
		if err != nil {
			return nil, err
		}

		travels = append(travels, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range travels {
		if t.Cities, err = r.citiesOf(t.ID); err != nil {
			return nil, err
		}
	}

	return travels, nil
}

func (r *sqlTravelRepository) GetTravel(id int64) (*Travel, error) {
	row := r.db.QueryRow(`
		SELECT id, country, point, start_date, end_date, notes, created_at
		FROM travels
		WHERE id = ?
	`, id)

	t, err := scanTravel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	if t.Cities, err = r.citiesOf(t.ID); err != nil {
		return nil, err
	}

	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTravel(row rowScanner) (*Travel, error) {
	t := &Travel{Point: &spatial.Point{}}

	err := row.Scan(&t.ID, &t.Country, t.Point, &t.StartDate, &t.EndDate, &t.Notes, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (r *sqlTravelRepository) citiesOf(travelID int64) ([]*City, error) {
	rows, err := r.db.Query(`
		SELECT id, travel_id, name, point IS NOT NULL, point, country_code, arrival_date, departure_date, notes, created_at, h3_res3, h3_res6
		FROM cities
		WHERE travel_id = ?
		ORDER BY arrival_date, id
	`, travelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []*City

	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}

		cities = append(cities, c)
	}

	return cities, rows.Err()
}

func scanCity(row rowScanner) (*City, error) {
	c := &City{}
	point := &spatial.Point{}

	var hasPoint bool

	var countryCode, arrival, departure sql.NullString

	var h3Res3, h3Res6 sql.NullInt64

	err := row.Scan(
		&c.ID, &c.TravelID, &c.Name, &hasPoint, point, &countryCode,
		&arrival, &departure, &c.Notes, &c.CreatedAt, &h3Res3, &h3Res6,
	)
	if err != nil {
		return nil, err
	}

	if hasPoint {
		c.Point = point
	}

	c.CountryCode = countryCode.String
	c.ArrivalDate = arrival.String
	c.DepartureDate = departure.String
	c.H3Res3 = h3Res3.Int64
	c.H3Res6 = h3Res6.Int64

	return c, nil
}

func (r *sqlTravelRepository) GetCity(id int64) (*City, error) {
	row := r.db.QueryRow(`
		SELECT id, travel_id, name, point IS NOT NULL, point, country_code, arrival_date, departure_date, notes, created_at, h3_res3, h3_res6
		FROM cities
		WHERE id = ?
	`, id)

	c, err := scanCity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	return c, err
}

func (r *sqlTravelRepository) UpdateCity(c *City) error {
	if err := validateCity(c); err != nil {
		return err
	}

	if err := c.computeH3(); err != nil {
		return err
	}

	var result sql.Result

	var err error

	if c.Point != nil {
		result, err = r.db.Exec(`
			UPDATE cities
			SET name = ?, point = ST_Point(?, ?), country_code = ?,
			    arrival_date = ?, departure_date = ?, notes = ?,
			    h3_res3 = ?, h3_res6 = ?
			WHERE id = ?
		`,
			c.Name, c.Point.Lng, c.Point.Lat, c.CountryCode,
			c.ArrivalDate, c.DepartureDate, c.Notes,
			c.H3Res3, c.H3Res6, c.ID,
		)
	} else {
		result, err = r.db.Exec(`
			UPDATE cities
			SET name = ?, point = NULL, country_code = ?,
			    arrival_date = ?, departure_date = ?, notes = ?,
			    h3_res3 = NULL, h3_res6 = NULL
			WHERE id = ?
		`,
			c.Name, c.CountryCode,
			c.ArrivalDate, c.DepartureDate, c.Notes, c.ID,
		)
	}

	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *sqlTravelRepository) DeleteTravel(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM cities WHERE travel_id = ?`, id); err != nil {
		return rollback(tx, err)
	}

	result, err := tx.Exec(`DELETE FROM travels WHERE id = ?`, id)
	if err != nil {
		return rollback(tx, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return rollback(tx, err)
	}

	if n == 0 {
		return rollback(tx, ErrNotFound)
	}

	return tx.Commit()
}

func (r *sqlTravelRepository) ListUnresolvedCities() ([]*City, error) {
	rows, err := r.db.Query(`
		SELECT id, travel_id, name, point IS NOT NULL, point, country_code, arrival_date, departure_date, notes, created_at, h3_res3, h3_res6
		FROM cities
		WHERE point IS NULL
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []*City

	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}

		cities = append(cities, c)
	}

	return cities, rows.Err()
}

func (r *sqlTravelRepository) CountTravels() (int, error) {
	var count int

	err := r.db.QueryRow(`SELECT COUNT(*) FROM travels`).Scan(&count)

	return count, err
}

func (r *sqlTravelRepository) Stats() (*Stats, error) {
	stats := &Stats{}

	err := r.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM travels),
			(SELECT COUNT(*) FROM cities),
			(SELECT COUNT(DISTINCT country) FROM travels),
			(SELECT COUNT(DISTINCT h3_res3) FROM cities WHERE h3_res3 IS NOT NULL)
	`).Scan(&stats.Travels, &stats.Cities, &stats.Countries, &stats.Regions)
	if err != nil {
		return nil, err
	}

	travels, err := r.ListTravels()
	if err != nil {
		return nil, err
	}

	for _, t := range travels {
		stats.DistanceMeters += travelDistance(t)
	}

	return stats, nil
}

// travelDistance sums the haversine legs between consecutive resolved
// cities of a travel, in their arrival order.
func travelDistance(t *Travel) float64 {
	var total float64

	var prev *spatial.Point

	for _, c := range t.Cities {
		if c.Point == nil {
			continue
		}

		if prev != nil {
			total += prev.HaversineDistance(c.Point)
		}

		prev = c.Point
	}

	return total
}
