// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/carnet-app/carnet/geocode"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// CityGeocoder resolves free-form city text into a located summary.
// It never fails: unresolvable input yields nil.
type CityGeocoder interface {
	GeocodeCity(cityText, countryName string) *geocode.CitySummary
}

// BackfillOptions tunes the backfill run.
type BackfillOptions struct {
	// MaxProcs limits the concurrent geocoding requests. Defaults to 2,
	// geocoding providers throttle aggressive clients.
	MaxProcs int

	// DryRun resolves cities without persisting the coordinates.
	DryRun bool
}

// BackfillMetrics tracks statistics about a backfill run.
type BackfillMetrics struct {
	Candidates int
	Resolved   int
	Unresolved int
	Failed     int
}

// Backfill resolves coordinates for every city that has none, using the
// travel's country to bias the lookup. Cities the geocoder cannot resolve
// are left untouched.
func Backfill(repo TravelRepository, geocoder CityGeocoder, options BackfillOptions) (*BackfillMetrics, error) {
	cities, err := repo.ListUnresolvedCities()
	if err != nil {
		return nil, fmt.Errorf("listing unresolved cities: %w", err)
	}

	metrics := &BackfillMetrics{Candidates: len(cities)}
	if len(cities) == 0 {
		return metrics, nil
	}

	// The geocoder only sees the city name, the travel carries the country
	countries := make(map[int64]string)

	for _, c := range cities {
		if _, ok := countries[c.TravelID]; ok {
			continue
		}

		t, err := repo.GetTravel(c.TravelID)
		if err != nil {
			return nil, fmt.Errorf("loading travel %d: %w", c.TravelID, err)
		}

		countries[c.TravelID] = t.Country
	}

	maxProcs := options.MaxProcs
	if maxProcs <= 0 {
		maxProcs = 2
	}

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(cities),
			progressbar.OptionSetDescription("Backfilling cities"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var wg sync.WaitGroup

	var mu sync.Mutex

	semaphore := make(chan struct{}, maxProcs)
	errChan := make(chan error, len(cities))

	for _, city := range cities {
		wg.Add(1)

		go func(city *City) {
			defer wg.Done()
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			summary := geocoder.GeocodeCity(city.Name, countries[city.TravelID])

			mu.Lock()
			if summary == nil {
				metrics.Unresolved++
			} else {
				metrics.Resolved++
			}
			mu.Unlock()

			if summary != nil && !options.DryRun {
				city.Point = &summary.Point
				city.CountryCode = summary.CountryCode

				if err := repo.UpdateCity(city); err != nil {
					mu.Lock()
					metrics.Failed++
					mu.Unlock()

					errChan <- fmt.Errorf("updating city %q: %w", city.Name, err)
				}
			}

			if bar == nil {
				log.Printf("Backfilling %s", city.Name)
			} else {
				if err := bar.Add(1); err != nil {
					errChan <- fmt.Errorf("updating progress bar for %s: %w", city.Name, err)
				}
			}
		}(city)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		log.Printf("Backfill failed - %s", err)
	}

	log.Printf(
		"Backfill complete - %d candidates, %d resolved, %d unresolved, %d failed.",
		metrics.Candidates,
		metrics.Resolved,
		metrics.Unresolved,
		metrics.Failed,
	)

	return metrics, nil
}
