// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"math"
	"strings"
)

// ScoringWeights is the policy behind best-city selection. The values were
// tuned empirically; they are carried as configuration so they can change
// without touching resolver logic. Display ranking uses different criteria
// on purpose: it favors manual curation, while this score favors settlement
// kind and population.
type ScoringWeights struct {
	// ExactShortName is granted when the normalized short name equals the
	// normalized query.
	ExactShortName float64

	// NameContains is granted when the normalized display name contains
	// the normalized query.
	NameContains float64

	// KindBonus maps the finer-grained OSM place kind to a bonus. Unknown
	// kinds get nothing.
	KindBonus map[string]float64

	// CountryMatch is granted when the candidate's country code equals the
	// requested ISO2 code.
	CountryMatch float64

	// PopulationCap bounds the population bonus; PopulationLogScale
	// multiplies log10 of the population.
	PopulationCap      float64
	PopulationLogScale float64

	// RelevanceScale multiplies the provider-supplied relevance.
	RelevanceScale float64
}

// DefaultScoringWeights returns the tuned scoring policy.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		ExactShortName: 100,
		NameContains:   20,
		KindBonus: map[string]float64{
			"city":         60,
			"town":         40,
			"municipality": 35,
			"suburb":       25,
			"village":      10,
			"hamlet":       5,
		},
		CountryMatch:       15,
		PopulationCap:      25,
		PopulationLogScale: 8,
		RelevanceScale:     10,
	}
}

// Score rates how well a candidate matches a city query. Higher is better;
// the score is monotonic in population and relevance.
func (w ScoringWeights) Score(p *Place, queryCity, countryISO2 string) float64 {
	q := Normalize(queryCity)

	name := p.ShortName
	if name == "" {
		name = p.Name
	}

	var s float64

	if Normalize(name) == q {
		s += w.ExactShortName
	}

	if strings.Contains(Normalize(p.Name), q) {
		s += w.NameContains
	}

	s += w.KindBonus[p.OSMKind]

	if countryISO2 != "" && p.CountryCode == strings.ToUpper(countryISO2) {
		s += w.CountryMatch
	}

	if p.Population > 0 {
		s += math.Min(w.PopulationCap, math.Log10(math.Max(1, float64(p.Population)))*w.PopulationLogScale)
	}

	if p.Relevance != nil {
		s += *p.Relevance * w.RelevanceScale
	}

	return s
}

// PickBest returns the single best city from a candidate list: an exact
// normalized short-name match wins outright, otherwise the strictly highest
// score (first seen wins ties). It returns nil on an empty list.
func (w ScoringWeights) PickBest(list []*Place, queryCity, countryISO2 string) *Place {
	if len(list) == 0 {
		return nil
	}

	q := Normalize(queryCity)

	for _, p := range list {
		if Normalize(p.ShortName) == q {
			return p
		}
	}

	var best *Place

	bestScore := math.Inf(-1)

	for _, p := range list {
		if score := w.Score(p, queryCity, countryISO2); score > bestScore {
			bestScore = score
			best = p
		}
	}

	return best
}
