// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"log"
	"strings"
)

// GeocodeCity resolves a free-text city (optionally with a country name) to
// a single best-matching city. It tries four strategies in order, each
// strictly after the previous one failed:
//
//  1. the raw "City, Country" text when the user already typed a comma,
//  2. the plain city text filtered by the resolved country code,
//  3. the plain city text with no filter,
//  4. the city and country concatenated as one query.
//
// Provider failures in one stage are logged and treated as "no result" so a
// degraded strategy never blocks a later one. The method never returns an
// error: nil means the city could not be resolved at all, which makes it
// safe to call unconditionally from interactive callers.
func (c *Client) GeocodeCity(cityText, countryName string) *CitySummary {
	query := strings.TrimSpace(cityText)
	if query == "" {
		return nil
	}

	if err := c.requireKey(); err != nil {
		log.Printf("geocode: %v", err)

		return nil
	}

	var biasISO2 string

	if countryName != "" {
		country, err := c.GeocodeCountry(countryName)
		if err != nil {
			log.Printf("geocode: country bias lookup for %q: %v", countryName, err)
		} else if country != nil {
			biasISO2 = country.ISO2
		}
	}

	type strategy struct {
		name   string
		search string
		target string
		hint   string
	}

	var strategies []strategy

	if strings.Contains(query, ",") {
		strategies = append(strategies, strategy{
			name:   "compound",
			search: query,
			target: strings.SplitN(query, ",", 2)[0],
		})
	}

	strategies = append(strategies,
		strategy{name: "biased", search: query, target: query, hint: biasISO2},
		strategy{name: "global", search: query, target: query},
	)

	if countryName != "" {
		strategies = append(strategies, strategy{
			name:   "concatenated",
			search: query + ", " + countryName,
			target: query,
		})
	}

	for _, st := range strategies {
		list, err := c.SearchPlaces(st.search, SearchOptions{
			Limit:       MaxProviderLimit,
			CountryHint: st.hint,
		})
		if err != nil {
			log.Printf("geocode: %s stage for %q: %v", st.name, st.search, err)

			continue
		}

		best := c.weights.PickBest(list, st.target, biasISO2)
		if best == nil {
			continue
		}

		name := best.ShortName
		if name == "" {
			name = best.Name
		}

		return &CitySummary{
			Name:        name,
			Point:       *best.Point,
			CountryCode: best.CountryCode,
		}
	}

	log.Printf("geocode: no result for city %q (country %q)", cityText, countryName)

	return nil
}
