// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/carnet-app/carnet/utils/httputils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteSearchRequestParameters(t *testing.T) {
	var gotPath string

	var gotQuery map[string][]string

	c := mockProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		respondFeatures(t, w)
	})

	_, err := c.remoteSearch("Aix-en-Provence", SearchOptions{
		Limit:       25, // above the provider maximum, must be clamped
		CountryHint: "FR",
	})
	require.NoError(t, err)

	assert.Equal(t, "/Aix-en-Provence.json", gotPath)
	assert.Equal(t, []string{"test-key"}, gotQuery["key"])
	assert.Equal(t, []string{"10"}, gotQuery["limit"])
	assert.Equal(t, []string{DefaultKinds}, gotQuery["types"])
	assert.Equal(t, []string{"fr"}, gotQuery["language"])
	assert.Equal(t, []string{"true"}, gotQuery["autocomplete"])
	assert.Equal(t, []string{"fr"}, gotQuery["country"])
}

func TestRemoteSearchIgnoresNonISO2CountryHint(t *testing.T) {
	var gotQuery map[string][]string

	c := mockProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		respondFeatures(t, w)
	})

	_, err := c.remoteSearch("Paris", SearchOptions{CountryHint: "France"})
	require.NoError(t, err)
	assert.NotContains(t, gotQuery, "country")
}

func TestRemoteSearchSkipsMalformedFeature(t *testing.T) {
	c := mockProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		// place_type with the wrong JSON type must only sink this feature
		respondFeatures(t, w,
			map[string]any{"place_type": "place", "center": "oops"},
			feature("p1", "Niort", "Niort, Nouvelle-Aquitaine, France", "place", -0.4594, 46.3237, nil),
		)
	})

	places, err := c.remoteSearch("Niort", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Niort", places[0].ShortName)
}

func TestRemoteSearchMalformedBody(t *testing.T) {
	c := mockProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := c.remoteSearch("Paris", SearchOptions{})
	require.Error(t, err)
	assert.True(t, IsProviderError(err))
}

func TestFeatureToPlace(t *testing.T) {
	raw := `{
		"id": "place.123",
		"text": "Lyon",
		"place_name": "Lyon, Auvergne-Rhône-Alpes, France",
		"place_type": ["place"],
		"relevance": 0.93,
		"geometry": {"coordinates": [4.8357, 45.764]},
		"properties": {
			"osm:place_type": "city",
			"osm:tags": {"population": "522 969"}
		},
		"context": [
			{"id": "region.42", "short_code": "ara"},
			{"id": "country.250", "short_code": "fr"}
		]
	}`

	var f maptilerFeature
	require.NoError(t, json.Unmarshal([]byte(raw), &f))

	p := featureToPlace(f)
	require.NotNil(t, p)

	assert.Equal(t, "place.123", p.ID)
	assert.Equal(t, "Lyon", p.ShortName)
	assert.Equal(t, "Lyon, Auvergne-Rhône-Alpes, France", p.Name)
	assert.Equal(t, KindPlace, p.Kind)
	assert.Equal(t, "city", p.OSMKind)
	assert.Equal(t, "FR", p.CountryCode, "country code from context entry")
	assert.Equal(t, int64(522969), p.Population, "formatted population string")
	require.NotNil(t, p.Relevance)
	assert.InDelta(t, 0.93, *p.Relevance, 1e-9)
	assert.InDelta(t, 45.764, p.Point.Lat, 1e-9)
	assert.InDelta(t, 4.8357, p.Point.Lng, 1e-9)
}

func TestFeatureToPlaceWithoutCoordinates(t *testing.T) {
	var f maptilerFeature
	require.NoError(t, json.Unmarshal([]byte(`{"id": "x", "text": "Nowhere"}`), &f))

	assert.Nil(t, featureToPlace(f))
}

func TestParsePopulation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{name: "absent", raw: "", want: 0},
		{name: "number", raw: "2102650", want: 2102650},
		{name: "fractional number keeps its digits", raw: "1234.5", want: 12345},
		{name: "quoted plain", raw: `"48550"`, want: 48550},
		{name: "quoted with spaces", raw: `"2 102 650"`, want: 2102650},
		{name: "quoted with commas", raw: `"1,234,567"`, want: 1234567},
		{name: "no digits", raw: `"unknown"`, want: 0},
		{name: "null", raw: "null", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw json.RawMessage
			if tt.raw != "" {
				raw = json.RawMessage(tt.raw)
			}

			if got := parsePopulation(raw); got != tt.want {
				t.Errorf("parsePopulation(%s) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewClientHasNoDefaultDeadline(t *testing.T) {
	c := NewClient("test-key", nil)

	assert.Zero(t, c.client.Timeout)

	headers, ok := c.client.Transport.(*httputils.AppendRequestHeadersRoundTripper)
	require.True(t, ok)

	logging, ok := headers.Transport.(*httputils.LoggingRoundTripper)
	require.True(t, ok)

	transport, ok := logging.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Zero(t, transport.ResponseHeaderTimeout)
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{status: http.StatusTooManyRequests, want: ErrorTypeRateLimit},
		{status: http.StatusForbidden, want: ErrorTypeProvider},
		{status: http.StatusBadGateway, want: ErrorTypeNetwork},
		{status: http.StatusNotFound, want: ErrorTypeProvider},
	}

	for _, tt := range tests {
		err := ClassifyHTTPError(tt.status)
		if err.Type != tt.want {
			t.Errorf("ClassifyHTTPError(%d).Type = %v, want %v", tt.status, err.Type, tt.want)
		}

		if !IsProviderError(err) && err.Type != ErrorTypeConfiguration {
			t.Errorf("ClassifyHTTPError(%d) not recognized as provider error", tt.status)
		}
	}
}
