// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"strings"

	"github.com/carnet-app/carnet/spatial"
)

// Override is a statically curated city whose provider ranking is unreliable
// for short queries. Priority orders overrides among themselves, lower first.
type Override struct {
	Name        string
	CountryName string
	ISO2        string
	Point       spatial.Point
	Kind        string
	Priority    int
}

// majorCities is the curated override table. It is never mutated at runtime.
var majorCities = []Override{
	{Name: "Paris", CountryName: "France", ISO2: "FR", Point: spatial.Point{Lat: 48.8566, Lng: 2.3522}, Kind: KindPlace, Priority: 1},
	{Name: "Lyon", CountryName: "France", ISO2: "FR", Point: spatial.Point{Lat: 45.764, Lng: 4.8357}, Kind: KindPlace, Priority: 2},
	{Name: "Marseille", CountryName: "France", ISO2: "FR", Point: spatial.Point{Lat: 43.2965, Lng: 5.3698}, Kind: KindPlace, Priority: 3},
	{Name: "Toulouse", CountryName: "France", ISO2: "FR", Point: spatial.Point{Lat: 43.6047, Lng: 1.4442}, Kind: KindPlace, Priority: 4},
	{Name: "Nice", CountryName: "France", ISO2: "FR", Point: spatial.Point{Lat: 43.7102, Lng: 7.262}, Kind: KindPlace, Priority: 5},
	{Name: "Nantes", CountryName: "France", ISO2: "FR", Point: spatial.Point{Lat: 47.2184, Lng: -1.5536}, Kind: KindPlace, Priority: 6},
	{Name: "Montpellier", CountryName: "France", ISO2: "FR", Point: spatial.Point{Lat: 43.611, Lng: 3.8767}, Kind: KindPlace, Priority: 7},
	{Name: "Strasbourg", CountryName: "France", ISO2: "FR", Point: spatial.Point{Lat: 48.5734, Lng: 7.7521}, Kind: KindPlace, Priority: 8},
	{Name: "Bordeaux", CountryName: "France", ISO2: "FR", Point: spatial.Point{Lat: 44.8378, Lng: -0.5792}, Kind: KindPlace, Priority: 9},
	{Name: "Lille", CountryName: "France", ISO2: "FR", Point: spatial.Point{Lat: 50.6292, Lng: 3.0573}, Kind: KindPlace, Priority: 10},
}

// matchesCountryHint reports whether an override satisfies a country filter.
// The hint may be an ISO2 code or a country name fragment.
func (o Override) matchesCountryHint(hint string) bool {
	if hint == "" {
		return true
	}

	if strings.EqualFold(o.ISO2, hint) {
		return true
	}

	return strings.Contains(Normalize(o.CountryName), Normalize(hint))
}

// Place converts the override into a search candidate.
func (o Override) Place() *Place {
	point := o.Point

	return &Place{
		ID:             "override:" + Normalize(o.Name),
		Name:           o.Name,
		ShortName:      o.Name,
		Point:          &point,
		Kind:           o.Kind,
		CountryCode:    o.ISO2,
		CountryName:    o.CountryName,
		ManualOverride: true,
		ManualPriority: o.Priority,
	}
}

// lookupOverrides scans the curated table for entries whose normalized name
// starts with or contains the normalized query. The table is small and
// static, so a linear scan per call is fine.
func lookupOverrides(queryNorm, countryHint string) []*Place {
	if queryNorm == "" {
		return nil
	}

	var matches []*Place

	for _, city := range majorCities {
		name := Normalize(city.Name)
		if !strings.HasPrefix(name, queryNorm) && !strings.Contains(name, queryNorm) {
			continue
		}

		if !city.matchesCountryHint(countryHint) {
			continue
		}

		matches = append(matches, city.Place())
	}

	return matches
}
