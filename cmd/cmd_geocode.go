// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/carnet-app/carnet/geocode"
	"github.com/spf13/cobra"
)

var searchOptions = geocode.SearchOptions{}

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve places, cities and countries from the command line",
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

var geocodeSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search places by free-form text",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		places, err := newGeocodeClient().SearchPlaces(args[0], searchOptions)
		if err != nil {
			return err
		}

		return printJSON(places)
	},
}

var geocodeCityCountry string

var geocodeCityCmd = &cobra.Command{
	Use:   "city <name>",
	Short: "Resolve a city to coordinates",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		summary := newGeocodeClient().GeocodeCity(args[0], geocodeCityCountry)
		if summary == nil {
			return fmt.Errorf("no result for %q", args[0])
		}

		return printJSON(summary)
	},
}

var geocodeCountryCmd = &cobra.Command{
	Use:   "country <name>",
	Short: "Resolve a country to its center and ISO code",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		country, err := newGeocodeClient().GeocodeCountry(args[0])
		if err != nil {
			return err
		}

		if country == nil {
			return errors.New("no result")
		}

		return printJSON(country)
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
	geocodeCmd.AddCommand(geocodeSearchCmd)
	geocodeCmd.AddCommand(geocodeCityCmd)
	geocodeCmd.AddCommand(geocodeCountryCmd)

	geocodeSearchCmd.Flags().StringVar(
		&searchOptions.Kinds,
		"kinds",
		"",
		"Comma separated result kinds (defaults to place,locality)",
	)
	geocodeSearchCmd.Flags().StringVar(
		&searchOptions.CountryHint,
		"country",
		"",
		"ISO2 country code to restrict the search",
	)
	geocodeSearchCmd.Flags().IntVar(
		&searchOptions.Limit,
		"limit",
		0,
		"Maximum number of results",
	)
	geocodeCityCmd.Flags().StringVar(
		&geocodeCityCountry,
		"country",
		"",
		"Country name used to bias the resolution",
	)
}
