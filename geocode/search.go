// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"log"
	"sort"
	"strings"
)

// SearchPlaces returns ranked, deduplicated candidates for a free-text
// query, suitable for autocomplete. Curated overrides come first, then
// provider results, ordered by the ranking comparator. A provider failure
// propagates to the caller only when the curated table matched nothing; the
// city resolution cascade absorbs it and moves to its next strategy.
func (c *Client) SearchPlaces(query string, opts SearchOptions) ([]*Place, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	queryNorm := Normalize(query)

	candidates := lookupOverrides(queryNorm, opts.CountryHint)

	remote, err := c.remoteSearch(query, opts)
	if err != nil {
		// Best effort: curated matches need no network access, so a
		// provider failure only becomes fatal when there is nothing
		// else to return.
		if len(candidates) == 0 {
			return nil, err
		}

		log.Printf("geocode: provider search for %q failed, serving curated matches only: %v", query, err)
	}

	candidates = append(candidates, remote...)
	candidates = dropInvalid(candidates)

	rankPlaces(candidates, queryNorm, opts.CountryHint)
	candidates = dedupeByName(candidates)

	limit := opts.Limit
	if limit <= 0 {
		limit = MaxProviderLimit
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

// dropInvalid filters out candidates without finite coordinates. They must
// never be surfaced to callers.
func dropInvalid(places []*Place) []*Place {
	valid := places[:0]

	for _, p := range places {
		if p.Point != nil && p.Point.IsFinite() {
			valid = append(valid, p)
		}
	}

	return valid
}

// countryHintMatches reports whether a candidate matches the country hint,
// either by ISO2 code or by country name fragment.
func countryHintMatches(p *Place, hint string) bool {
	if strings.EqualFold(p.CountryCode, hint) {
		return true
	}

	return p.CountryName != "" && strings.Contains(Normalize(p.CountryName), Normalize(hint))
}

// kindRank orders place kinds: place before locality, anything else last.
func kindRank(kind string) int {
	switch kind {
	case KindPlace:
		return 0
	case KindLocality:
		return 1
	default:
		return 10
	}
}

// rankPlaces sorts candidates in display order. The criteria apply in strict
// precedence: manual overrides, override priority, exact normalized match,
// country-hint match, kind, prefix match, then shorter name. The sort is
// stable so full ties keep their merge order.
func rankPlaces(places []*Place, queryNorm, countryHint string) {
	sort.SliceStable(places, func(i, j int) bool {
		a, b := places[i], places[j]

		if a.ManualOverride != b.ManualOverride {
			return a.ManualOverride
		}

		if a.ManualOverride && b.ManualOverride && a.ManualPriority != b.ManualPriority {
			return a.ManualPriority < b.ManualPriority
		}

		aName := Normalize(a.Name)
		bName := Normalize(b.Name)

		aExact := aName == queryNorm
		bExact := bName == queryNorm

		if aExact != bExact {
			return aExact
		}

		if countryHint != "" {
			aCountry := countryHintMatches(a, countryHint)
			bCountry := countryHintMatches(b, countryHint)

			if aCountry != bCountry {
				return aCountry
			}
		}

		if aKind, bKind := kindRank(a.Kind), kindRank(b.Kind); aKind != bKind {
			return aKind < bKind
		}

		aStarts := strings.HasPrefix(aName, queryNorm)
		bStarts := strings.HasPrefix(bName, queryNorm)

		if aStarts != bStarts {
			return aStarts
		}

		return len(aName) < len(bName)
	})
}

// dedupeByName keeps the first occurrence of each normalized name, falling
// back to the short name as the key. Entries with an empty key are dropped.
func dedupeByName(places []*Place) []*Place {
	seen := make(map[string]bool, len(places))
	unique := places[:0]

	for _, p := range places {
		key := Normalize(p.Name)
		if key == "" {
			key = Normalize(p.ShortName)
		}

		if key == "" || seen[key] {
			continue
		}

		seen[key] = true

		unique = append(unique, p)
	}

	return unique
}
