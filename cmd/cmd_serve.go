// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/carnet-app/carnet/geocode"
	"github.com/carnet-app/carnet/journal"
	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"
)

var serveOptions = struct {
	DbPath   string
	Listen   string
	SeedFile string
}{}

var geocodeOptions = &geocode.ClientOptions{}

// newGeocodeClient builds the engine client from the environment. The key
// may be empty, the engine reports a configuration error on first use.
func newGeocodeClient() *geocode.Client {
	geocodeOptions.UserAgent = fmt.Sprintf("carnet/%s (+https://github.com/carnet-app/carnet)", Version)

	return geocode.NewClient(os.Getenv("MAPTILER_API_KEY"), geocodeOptions)
}

// openRepository opens the journal database and ensures the schema exists.
func openRepository(dbPath string) (*sql.DB, journal.TravelRepository, error) {
	if err := os.MkdirAll(dbPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(dbPath, "carnet.duckdb"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := journal.NewTravelRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, repo, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the travel journal web server",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openRepository(serveOptions.DbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if serveOptions.SeedFile != "" {
			seeded, count, err := journal.SeedIfEmpty(repo, serveOptions.SeedFile)
			if err != nil {
				return fmt.Errorf("seeding database: %w", err)
			}

			if seeded {
				log.Printf("Seeded %d travels from %s", count, serveOptions.SeedFile)
			}
		}

		server := journal.NewServer(repo, newGeocodeClient(), Version)

		log.Printf("Listening on %s", serveOptions.Listen)

		return server.Run(serveOptions.Listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.PersistentFlags().StringVar(
		&serveOptions.DbPath,
		"db-path",
		"db",
		"Directory where the journal database is stored",
	)
	rootCmd.PersistentFlags().StringVar(
		&geocodeOptions.Language,
		"language",
		"",
		"Language for geocoding results (defaults to fr)",
	)
	rootCmd.PersistentFlags().BoolVar(
		&geocodeOptions.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	rootCmd.PersistentFlags().BoolVar(
		&geocodeOptions.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
	serveCmd.Flags().StringVar(
		&serveOptions.Listen,
		"listen",
		"localhost:8080",
		"Address to listen on",
	)
	serveCmd.Flags().StringVar(
		&serveOptions.SeedFile,
		"seed-file",
		"",
		"JSON file to seed an empty database from",
	)
}
