// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	maxNameLength  = 200
	maxNotesLength = 2000
)

// validateCoordinates checks global WGS84 bounds.
func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got: %f)", lat)
	}

	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got: %f)", lng)
	}

	return nil
}

// validateDate accepts empty or ISO dates (YYYY-MM-DD).
func validateDate(field, value string) error {
	if value == "" {
		return nil
	}

	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("%s must be an ISO date (YYYY-MM-DD): %q", field, value)
	}

	return nil
}

// validateTravel checks a travel and all its cities before saving.
func validateTravel(t *Travel) error {
	if t == nil {
		return errors.New("travel cannot be nil")
	}

	if strings.TrimSpace(t.Country) == "" {
		return errors.New("country cannot be empty")
	}

	if len(t.Country) > maxNameLength {
		return fmt.Errorf("country too long (max %d characters)", maxNameLength)
	}

	if err := validateDate("start_date", t.StartDate); err != nil {
		return err
	}

	if err := validateDate("end_date", t.EndDate); err != nil {
		return err
	}

	if t.StartDate == "" || t.EndDate == "" {
		return errors.New("start_date and end_date are required")
	}

	if t.EndDate < t.StartDate {
		return fmt.Errorf("end_date %s is before start_date %s", t.EndDate, t.StartDate)
	}

	if t.Point != nil {
		if err := validateCoordinates(t.Point.Lat, t.Point.Lng); err != nil {
			return fmt.Errorf("invalid travel coordinates: %w", err)
		}
	}

	if len(t.Notes) > maxNotesLength {
		return fmt.Errorf("notes too long (max %d characters)", maxNotesLength)
	}

	for i, c := range t.Cities {
		if err := validateCity(c); err != nil {
			return fmt.Errorf("city %d: %w", i, err)
		}
	}

	return nil
}

// validateCity checks a single city.
func validateCity(c *City) error {
	if c == nil {
		return errors.New("city cannot be nil")
	}

	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name cannot be empty")
	}

	if len(c.Name) > maxNameLength {
		return fmt.Errorf("name too long (max %d characters)", maxNameLength)
	}

	if c.Point != nil {
		if err := validateCoordinates(c.Point.Lat, c.Point.Lng); err != nil {
			return fmt.Errorf("invalid coordinates: %w", err)
		}
	}

	if err := validateDate("arrival_date", c.ArrivalDate); err != nil {
		return err
	}

	if err := validateDate("departure_date", c.DepartureDate); err != nil {
		return err
	}

	if len(c.Notes) > maxNotesLength {
		return fmt.Errorf("notes too long (max %d characters)", maxNotesLength)
	}

	return nil
}
