// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SeedData represents the JSON seed file format.
type SeedData struct {
	Version     string    `json:"version"`
	LastUpdated time.Time `json:"last_updated"`
	Travels     []*Travel `json:"travels"`
}

// ExportToJSON exports all travels to a JSON file.
func ExportToJSON(repo TravelRepository, filepath string) error {
	travels, err := repo.ListTravels()
	if err != nil {
		return fmt.Errorf("listing travels: %w", err)
	}

	seed := &SeedData{
		Version:     "1.0",
		LastUpdated: time.Now(),
		Travels:     travels,
	}

	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	err = os.WriteFile(filepath, data, 0o600)
	if err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// ImportFromJSON imports travels from a JSON file.
func ImportFromJSON(repo TravelRepository, filepath string) (int, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parsing JSON: %w", err)
	}

	imported := 0

	for _, travel := range seed.Travels {
		// Imported travels get fresh identifiers
		travel.ID = 0

		if err := repo.SaveTravel(travel); err != nil {
			return imported, fmt.Errorf("saving travel to %s: %w", travel.Country, err)
		}

		imported++
	}

	return imported, nil
}

// SeedIfEmpty seeds the database from a JSON file if no travels exist.
func SeedIfEmpty(repo TravelRepository, filepath string) (bool, int, error) {
	count, err := repo.CountTravels()
	if err != nil {
		return false, 0, fmt.Errorf("counting travels: %w", err)
	}

	if count > 0 {
		return false, count, nil
	}
	// Database is empty, try to seed
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		// No seed file exists, that's okay
		return false, 0, nil
	}

	imported, err := ImportFromJSON(repo, filepath)
	if err != nil {
		return false, 0, err
	}

	return true, imported, nil
}
