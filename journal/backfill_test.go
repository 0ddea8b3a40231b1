// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"sync"
	"testing"

	"github.com/carnet-app/carnet/geocode"
	"github.com/carnet-app/carnet/spatial"
	_ "github.com/duckdb/duckdb-go/v2"
)

// stubGeocoder is safe for concurrent use, Backfill runs workers.
type stubGeocoder struct {
	mu     sync.Mutex
	cities map[string]*geocode.CitySummary
	calls  []string
}

func (s *stubGeocoder) GeocodeCity(cityText, countryName string) *geocode.CitySummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, cityText)

	return s.cities[cityText]
}

func TestBackfill(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	travel := sampleTravel()
	if err := repo.SaveTravel(travel); err != nil {
		t.Fatalf("SaveTravel() error = %v", err)
	}

	geocoder := &stubGeocoder{
		cities: map[string]*geocode.CitySummary{
			"Annecy": {Name: "Annecy", Point: spatial.Point{Lat: 45.8992, Lng: 6.1294}, CountryCode: "FR"},
		},
	}

	metrics, err := Backfill(repo, geocoder, BackfillOptions{})
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}

	if metrics.Candidates != 1 || metrics.Resolved != 1 || metrics.Unresolved != 0 {
		t.Errorf("metrics = %+v, want 1 candidate resolved", metrics)
	}

	// Only the city without coordinates was geocoded
	if len(geocoder.calls) != 1 || geocoder.calls[0] != "Annecy" {
		t.Errorf("geocoder calls = %v, want [Annecy]", geocoder.calls)
	}

	cities, err := repo.ListUnresolvedCities()
	if err != nil {
		t.Fatalf("ListUnresolvedCities() error = %v", err)
	}

	if len(cities) != 0 {
		t.Errorf("unresolved cities after backfill = %d, want 0", len(cities))
	}
}

func TestBackfillUnresolvable(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	travel := sampleTravel()
	if err := repo.SaveTravel(travel); err != nil {
		t.Fatalf("SaveTravel() error = %v", err)
	}

	geocoder := &stubGeocoder{cities: map[string]*geocode.CitySummary{}}

	metrics, err := Backfill(repo, geocoder, BackfillOptions{})
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}

	if metrics.Unresolved != 1 || metrics.Resolved != 0 {
		t.Errorf("metrics = %+v, want 1 unresolved", metrics)
	}

	// The city stays in the queue for the next run
	cities, err := repo.ListUnresolvedCities()
	if err != nil {
		t.Fatalf("ListUnresolvedCities() error = %v", err)
	}

	if len(cities) != 1 {
		t.Errorf("unresolved cities = %d, want 1", len(cities))
	}
}

func TestBackfillDryRun(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	travel := sampleTravel()
	if err := repo.SaveTravel(travel); err != nil {
		t.Fatalf("SaveTravel() error = %v", err)
	}

	geocoder := &stubGeocoder{
		cities: map[string]*geocode.CitySummary{
			"Annecy": {Name: "Annecy", Point: spatial.Point{Lat: 45.8992, Lng: 6.1294}},
		},
	}

	metrics, err := Backfill(repo, geocoder, BackfillOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}

	if metrics.Resolved != 1 {
		t.Errorf("Resolved = %d, want 1", metrics.Resolved)
	}

	cities, err := repo.ListUnresolvedCities()
	if err != nil {
		t.Fatalf("ListUnresolvedCities() error = %v", err)
	}

	if len(cities) != 1 {
		t.Errorf("dry run persisted coordinates, unresolved = %d, want 1", len(cities))
	}
}

func TestBackfillEmpty(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	geocoder := &stubGeocoder{}

	metrics, err := Backfill(repo, geocoder, BackfillOptions{})
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}

	if metrics.Candidates != 0 {
		t.Errorf("Candidates = %d, want 0", metrics.Candidates)
	}

	if len(geocoder.calls) != 0 {
		t.Errorf("geocoder calls = %v, want none", geocoder.calls)
	}
}
