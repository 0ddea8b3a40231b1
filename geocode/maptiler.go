// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/carnet-app/carnet/spatial"
	"github.com/carnet-app/carnet/utils/httputils"
)

// MaxProviderLimit is the largest result count MapTiler accepts per request.
// Requested limits above it are clamped client-side.
const MaxProviderLimit = 10

const defaultBaseURL = "https://api.maptiler.com/geocoding/"

// ClientOptions configuration for the geocoding client.
type ClientOptions struct {
	// BaseURL overrides the MapTiler geocoding endpoint. Used in tests.
	BaseURL string

	// Language is the preferred language for place labels.
	Language string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// Timeout for a single provider call. Zero means no client timeout;
	// a hung call then hangs the requesting stage.
	Timeout time.Duration

	// Weights overrides the scoring policy. Nil means the defaults.
	Weights *ScoringWeights
}

// Client resolves free-text place queries against the curated override table
// and the MapTiler geocoding API. It is stateless and safe for concurrent
// use; each call performs at most one outbound request.
type Client struct {
	apiKey  string
	baseURL string
	options *ClientOptions
	client  *http.Client
	weights ScoringWeights
}

// NewClient creates a geocoding client. An empty apiKey is allowed; every
// operation then fails with a configuration error.
func NewClient(apiKey string, options *ClientOptions) *Client {
	if options == nil {
		options = &ClientOptions{}
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace {
		httpLogWriter = os.Stderr
	}

	// No request deadline lives in the transport: a zero Timeout in the
	// options really means no client timeout at all.
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		MaxConnsPerHost:     4,
		IdleConnTimeout:     30 * time.Second,
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    httpLogWriter,
		DumpBody:  options.EnableHTTPBodyTrace,
		Transport: transport,
	}

	userAgent := "carnet/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		Transport: loggingTransport,
	}

	baseURL := defaultBaseURL
	if options.BaseURL != "" {
		baseURL = options.BaseURL
	}

	weights := DefaultScoringWeights()
	if options.Weights != nil {
		weights = *options.Weights
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		options: options,
		weights: weights,
		client: &http.Client{
			Timeout:   options.Timeout,
			Transport: headerTransport,
		},
	}
}

func (c *Client) language() string {
	if c.options.Language != "" {
		return c.options.Language
	}

	return "fr"
}

type maptilerProperties struct {
	Name         string          `json:"name"`
	Label        string          `json:"label"`
	Type         string          `json:"type"`
	CountryCode  string          `json:"country_code"`
	ISOA2        string          `json:"iso_a2"`
	ISO2         string          `json:"iso2"`
	OSMPlaceType string          `json:"osm:place_type"`
	Population   json.RawMessage `json:"population"`
	OSMTags      struct {
		Population json.RawMessage `json:"population"`
	} `json:"osm:tags"`
}

type maptilerFeature struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	PlaceName string    `json:"place_name"`
	PlaceType []string  `json:"place_type"`
	Center    []float64 `json:"center"`
	Relevance *float64  `json:"relevance"`
	Geometry  struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties maptilerProperties `json:"properties"`
	Context    []struct {
		ID        string `json:"id"`
		ShortCode string `json:"short_code"`
	} `json:"context"`
}

// Features stay raw so one malformed entry cannot poison the batch; each
// is decoded individually.
type maptilerResponse struct {
	Features []json.RawMessage `json:"features"`
}

var iso2Pattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

// fetchFeatures performs one geocoding request against the provider. The
// query goes in the URL path, everything else as query parameters.
func (c *Client) fetchFeatures(query string, params url.Values) ([]maptilerFeature, error) {
	params.Set("key", c.apiKey)

	reqURL := c.baseURL + url.PathEscape(query) + ".json?" + params.Encode()

	resp, err := c.client.Get(reqURL)
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeNetwork,
			Message: "geocoding request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var mtResp maptilerResponse
	if err := json.NewDecoder(resp.Body).Decode(&mtResp); err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeProvider,
			Message: "decoding provider response",
			Err:     err,
		}
	}

	features := make([]maptilerFeature, 0, len(mtResp.Features))

	for _, raw := range mtResp.Features {
		var f maptilerFeature
		if err := json.Unmarshal(raw, &f); err != nil {
			log.Printf("geocode: skipping malformed feature for %q: %v", query, err)

			continue
		}

		features = append(features, f)
	}

	return features, nil
}

// remoteSearch queries the provider for city-like candidates and maps each
// feature into a Place. Malformed features are skipped, never fatal.
func (c *Client) remoteSearch(query string, opts SearchOptions) ([]*Place, error) {
	kinds := opts.Kinds
	if kinds == "" {
		kinds = DefaultKinds
	}

	limit := opts.Limit
	if limit <= 0 || limit > MaxProviderLimit {
		limit = MaxProviderLimit
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("types", kinds)
	params.Set("language", c.language())
	params.Set("autocomplete", "true")

	if iso2Pattern.MatchString(opts.CountryHint) {
		params.Set("country", strings.ToLower(opts.CountryHint))
	}

	features, err := c.fetchFeatures(query, params)
	if err != nil {
		return nil, err
	}

	places := make([]*Place, 0, len(features))

	for _, f := range features {
		if place := featureToPlace(f); place != nil {
			places = append(places, place)
		}
	}

	return places, nil
}

// featureToPlace maps a provider feature into the engine's representation.
// It returns nil when the feature carries no usable coordinates.
func featureToPlace(f maptilerFeature) *Place {
	point := featurePoint(f)
	if point == nil {
		return nil
	}

	kind := f.Properties.Type
	if len(f.PlaceType) > 0 {
		kind = f.PlaceType[0]
	}

	shortName := f.Text
	if shortName == "" {
		shortName = f.Properties.Name
	}

	name := f.PlaceName
	if name == "" {
		name = f.Properties.Label
	}

	if name == "" {
		name = shortName
	}

	return &Place{
		ID:          f.ID,
		Name:        name,
		ShortName:   shortName,
		Point:       point,
		Kind:        kind,
		OSMKind:     f.Properties.OSMPlaceType,
		CountryCode: featureCountryCode(f),
		Relevance:   f.Relevance,
		Population:  featurePopulation(f.Properties),
	}
}

// featurePoint extracts the [lng, lat] pair from the feature's center or its
// point geometry.
func featurePoint(f maptilerFeature) *spatial.Point {
	coords := f.Center
	if len(coords) < 2 {
		coords = f.Geometry.Coordinates
	}

	if len(coords) < 2 {
		return nil
	}

	point := &spatial.Point{Lat: coords[1], Lng: coords[0]}
	if !point.IsFinite() {
		return nil
	}

	return point
}

// featureCountryCode prefers the feature's own country_code property, then
// falls back to a context entry whose id starts with "country".
func featureCountryCode(f maptilerFeature) string {
	if f.Properties.CountryCode != "" {
		return strings.ToUpper(f.Properties.CountryCode)
	}

	for _, entry := range f.Context {
		if strings.HasPrefix(entry.ID, "country") && entry.ShortCode != "" {
			return strings.ToUpper(entry.ShortCode)
		}
	}

	return ""
}

// The population field may be a number, or a formatted string such as
// "2 102 650" in OSM tags; digits are kept, everything else stripped.
func featurePopulation(props maptilerProperties) int64 {
	raw := props.Population
	if len(raw) == 0 {
		raw = props.OSMTags.Population
	}

	return parsePopulation(raw)
}

func parsePopulation(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}

	// Numbers take the same stringify-then-strip path as strings, so a
	// fractional population like 1234.5 yields 12345.
	var text string

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		text = strconv.FormatFloat(asNumber, 'f', -1, 64)
	} else if err := json.Unmarshal(raw, &text); err != nil {
		return 0
	}

	var digits strings.Builder

	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	if digits.Len() == 0 {
		return 0
	}

	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}

	return n
}

func (c *Client) requireKey() error {
	if c.apiKey == "" {
		return &GeocodingError{
			Type:    ErrorTypeConfiguration,
			Message: "MAPTILER_API_KEY is not set",
		}
	}

	return nil
}
