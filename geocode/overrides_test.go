// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import "testing"

func TestLookupOverrides(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		countryHint string
		wantNames   []string
	}{
		{
			name:      "exact key",
			query:     "paris",
			wantNames: []string{"Paris"},
		},
		{
			name:      "prefix match",
			query:     "mar",
			wantNames: []string{"Marseille"},
		},
		{
			name:      "substring match",
			query:     "ulous",
			wantNames: []string{"Toulouse"},
		},
		{
			name:      "diacritic insensitive",
			query:     Normalize("lyón"),
			wantNames: []string{"Lyon"},
		},
		{
			name:        "country hint by iso2",
			query:       "paris",
			countryHint: "FR",
			wantNames:   []string{"Paris"},
		},
		{
			name:        "country hint excludes",
			query:       "paris",
			countryHint: "US",
			wantNames:   nil,
		},
		{
			name:      "empty query matches nothing",
			query:     "",
			wantNames: nil,
		},
		{
			name:      "unknown city",
			query:     "atlantis",
			wantNames: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lookupOverrides(tt.query, tt.countryHint)

			if len(got) != len(tt.wantNames) {
				t.Fatalf("lookupOverrides(%q, %q) returned %d entries, want %d",
					tt.query, tt.countryHint, len(got), len(tt.wantNames))
			}

			for i, place := range got {
				if place.Name != tt.wantNames[i] {
					t.Errorf("entry %d = %q, want %q", i, place.Name, tt.wantNames[i])
				}

				if !place.ManualOverride {
					t.Errorf("entry %q not flagged as manual override", place.Name)
				}

				if place.Point == nil || !place.Point.IsFinite() {
					t.Errorf("entry %q has no usable coordinates", place.Name)
				}
			}
		})
	}
}

func TestOverridePriorityOrder(t *testing.T) {
	// The table is authored in priority order so the merge step can rely
	// on it before ranking runs.
	for i := 1; i < len(majorCities); i++ {
		if majorCities[i-1].Priority >= majorCities[i].Priority {
			t.Errorf("override %q (priority %d) not strictly before %q (priority %d)",
				majorCities[i-1].Name, majorCities[i-1].Priority,
				majorCities[i].Name, majorCities[i].Priority)
		}
	}
}
