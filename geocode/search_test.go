// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feature builds a minimal MapTiler feature literal for mock responses.
func feature(id, text, placeName, kind string, lng, lat float64, extra map[string]any) map[string]any {
	f := map[string]any{
		"id":         id,
		"text":       text,
		"place_name": placeName,
		"place_type": []string{kind},
		"center":     []float64{lng, lat},
	}

	for k, v := range extra {
		f[k] = v
	}

	return f
}

func mockProvider(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient("test-key", &ClientOptions{BaseURL: srv.URL + "/"})
}

func respondFeatures(t *testing.T, w http.ResponseWriter, features ...map[string]any) {
	t.Helper()

	if features == nil {
		features = []map[string]any{}
	}

	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"features": features}))
}

func names(places []*Place) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		out = append(out, p.Name)
	}

	return out
}

func TestSearchPlacesMissingKey(t *testing.T) {
	c := NewClient("", nil)

	_, err := c.SearchPlaces("Paris", SearchOptions{})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestSearchPlacesOverrideFirst(t *testing.T) {
	c := mockProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		respondFeatures(t, w,
			feature("p1", "Paris", "Paris, Texas, United States", "place", -95.5555, 33.6609, nil),
			feature("p2", "Parigné", "Parigné, France", "place", -1.1833, 48.4333, nil),
		)
	})

	places, err := c.SearchPlaces("paris", SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, places)

	assert.True(t, places[0].ManualOverride)
	assert.Equal(t, "Paris", places[0].Name)
	assert.Equal(t, 48.8566, places[0].Point.Lat)
}

func TestSearchPlacesOverridePriorityOrder(t *testing.T) {
	c := mockProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		respondFeatures(t, w)
	})

	// Several curated cities contain "l": the lower priority rank must
	// come first among them.
	places, err := c.SearchPlaces("l", SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, places)

	for i := 1; i < len(places); i++ {
		require.True(t, places[i-1].ManualPriority < places[i].ManualPriority,
			"override order broken at %d: %v", i, names(places))
	}
}

func TestSearchPlacesDeduplicatesByNormalizedName(t *testing.T) {
	c := mockProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		respondFeatures(t, w,
			feature("a", "Lyon", "Lyón", "place", 4.83, 45.76, nil),
			feature("b", "Lyon", "lyon", "place", 4.84, 45.77, nil),
			feature("c", "Lyons", "Lyons", "place", -77.0, 43.06, nil),
		)
	})

	places, err := c.SearchPlaces("lyon", SearchOptions{})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, p := range places {
		key := Normalize(p.Name)
		assert.False(t, seen[key], "duplicate normalized name %q", key)
		seen[key] = true
	}

	// The curated Lyon absorbs both provider spellings.
	if diff := cmp.Diff([]string{"Lyon", "Lyons"}, names(places)); diff != "" {
		t.Errorf("result names mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchPlacesCountryHintRanksFirst(t *testing.T) {
	c := mockProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		respondFeatures(t, w,
			feature("s1", "Springfield", "Springfield, Illinois, United States", "place", -89.65, 39.78,
				map[string]any{"properties": map[string]any{"country_code": "us"}}),
			feature("s2", "Springfield", "Springfield, Canada", "place", -80.0, 43.0,
				map[string]any{"properties": map[string]any{"country_code": "ca"}}),
		)
	})

	places, err := c.SearchPlaces("Springfield", SearchOptions{CountryHint: "CA"})
	require.NoError(t, err)
	require.NotEmpty(t, places)

	assert.Equal(t, "CA", places[0].CountryCode)
}

func TestSearchPlacesDropsCandidatesWithoutCoordinates(t *testing.T) {
	c := mockProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		broken := map[string]any{
			"id":         "x",
			"text":       "Nowhere",
			"place_name": "Nowhere",
			"place_type": []string{"place"},
		}

		respondFeatures(t, w,
			broken,
			feature("ok", "Niort", "Niort, France", "place", -0.46, 46.32, nil),
		)
	})

	places, err := c.SearchPlaces("nowhere or niort", SearchOptions{})
	require.NoError(t, err)

	for _, p := range places {
		require.NotNil(t, p.Point)
		require.True(t, p.Point.IsFinite())
	}
}

func TestSearchPlacesDiacriticInsensitive(t *testing.T) {
	c := mockProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		respondFeatures(t, w)
	})

	places, err := c.SearchPlaces("lyón", SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, places)
	assert.Equal(t, "lyon", Normalize(places[0].ShortName))
}

func TestSearchPlacesProviderDownWithOverrides(t *testing.T) {
	c := mockProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	places, err := c.SearchPlaces("paris", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Paris", places[0].Name)
}

func TestSearchPlacesProviderDownWithoutOverrides(t *testing.T) {
	c := mockProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.SearchPlaces("atlantis", SearchOptions{})
	require.Error(t, err)
	assert.True(t, IsProviderError(err))
}

func TestSearchPlacesLimit(t *testing.T) {
	c := mockProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		respondFeatures(t, w,
			feature("a", "Nancy", "Nancy, France", "place", 6.18, 48.69, nil),
			feature("b", "Nancy-sur-Cluses", "Nancy-sur-Cluses, France", "place", 6.47, 46.0, nil),
			feature("c", "Nances", "Nances, France", "place", 5.78, 45.56, nil),
		)
	})

	places, err := c.SearchPlaces("nan", SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(places), 2)
}
