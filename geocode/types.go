// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode implements the place resolution engine: it turns free-text
// place queries into ranked, deduplicated geographic candidates and resolves
// a (city, country) pair to a single best-matching city through a cascade of
// fallback strategies. Results merge a curated table of well-known cities
// with the MapTiler geocoding API.
package geocode

import (
	"github.com/carnet-app/carnet/spatial"
)

// Place kinds as reported by the provider's primary type classification.
const (
	KindPlace    = "place"
	KindLocality = "locality"
)

// Place is a resolved point-like geographic candidate.
type Place struct {
	ID             string         `json:"id,omitempty"`
	Name           string         `json:"name"`
	ShortName      string         `json:"short_name,omitempty"`
	Point          *spatial.Point `json:"point"`
	Kind           string         `json:"kind,omitempty"`     // place, locality
	OSMKind        string         `json:"osm_kind,omitempty"` // city, town, municipality, suburb, village, hamlet
	CountryCode    string         `json:"country_code,omitempty"`
	CountryName    string         `json:"country_name,omitempty"`
	Relevance      *float64       `json:"relevance,omitempty"`
	Population     int64          `json:"population,omitempty"` // 0 means unknown
	ManualOverride bool           `json:"manual,omitempty"`
	ManualPriority int            `json:"-"`
}

// Country is a resolved country entity. ISO2 may be empty when the provider
// did not report a code; country bias is then unavailable to callers.
type Country struct {
	Name  string        `json:"name"`
	Point spatial.Point `json:"point"`
	ISO2  string        `json:"iso2,omitempty"`
}

// CitySummary is the final result of the city resolution cascade.
type CitySummary struct {
	Name        string        `json:"name"`
	Point       spatial.Point `json:"point"`
	CountryCode string        `json:"country_code,omitempty"`
}

// SearchOptions controls a place search.
type SearchOptions struct {
	// Kinds is the provider result-kind filter. Empty means DefaultKinds.
	Kinds string

	// Limit caps the number of results. Values above the provider maximum
	// are clamped; zero or negative means the provider maximum.
	Limit int

	// CountryHint is an ISO2 code used both as a provider-side country
	// filter and as a ranking preference.
	CountryHint string
}

// DefaultKinds restricts searches to city-like results.
const DefaultKinds = KindPlace + "," + KindLocality
