// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"errors"
	"fmt"
	"net/http"
)

// GeocodingError represents an error from the place resolution engine.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies geocoding errors.
type ErrorType int

const (
	// ErrorTypeUnknown is an unclassified provider failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeConfiguration means provider credentials are missing. No
	// resolution strategy can succeed without them.
	ErrorTypeConfiguration
	// ErrorTypeProvider means the provider returned a non-success status
	// or an unparsable body.
	ErrorTypeProvider
	// ErrorTypeRateLimit means the provider rate limit was reached.
	ErrorTypeRateLimit
	// ErrorTypeNetwork means the provider was unreachable or unavailable.
	ErrorTypeNetwork
)

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether the error is a missing-credentials
// failure. Unlike provider failures it cannot be recovered by retrying a
// later cascade stage.
func IsConfigurationError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeConfiguration
	}

	return false
}

// IsProviderError reports whether the error came from the remote provider,
// in any of its flavors. Callers orchestrating fallback treat these as
// "no results" and try the next strategy.
func IsProviderError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type != ErrorTypeConfiguration
	}

	return false
}

// ClassifyHTTPError maps a non-success provider status to a geocoding error.
func ClassifyHTTPError(statusCode int) *GeocodingError {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &GeocodingError{
			Type:    ErrorTypeRateLimit,
			Message: "provider rate limit reached",
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &GeocodingError{
			Type:    ErrorTypeProvider,
			Message: fmt.Sprintf("provider rejected the request (status %d)", statusCode),
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &GeocodingError{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("provider unavailable (status %d)", statusCode),
		}
	default:
		return &GeocodingError{
			Type:    ErrorTypeProvider,
			Message: fmt.Sprintf("provider HTTP %d", statusCode),
		}
	}
}
