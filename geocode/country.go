// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"net/url"
	"strings"
)

// GeocodeCountry resolves a country name to a canonical country entity used
// to bias city search. It returns nil when the provider finds nothing.
func (c *Client) GeocodeCountry(countryName string) (*Country, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("types", "country")
	params.Set("limit", "1")
	params.Set("language", c.language())

	features, err := c.fetchFeatures(countryName, params)
	if err != nil {
		return nil, err
	}

	if len(features) == 0 {
		return nil, nil
	}

	f := features[0]

	point := featurePoint(f)
	if point == nil {
		return nil, nil
	}

	name := f.Text
	if name == "" {
		name = f.Properties.Name
	}

	if name == "" {
		name = countryName
	}

	return &Country{
		Name:  name,
		Point: *point,
		ISO2:  countryISO2(f.Properties),
	}, nil
}

// countryISO2 extracts the two-letter code from whichever of the provider's
// three property spellings is present.
func countryISO2(props maptilerProperties) string {
	for _, code := range []string{props.CountryCode, props.ISOA2, props.ISO2} {
		if code != "" {
			return strings.ToUpper(code)
		}
	}

	return ""
}
