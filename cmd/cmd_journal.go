// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"

	"github.com/carnet-app/carnet/journal"
	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Manage the travel journal data",
}

var journalExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export all travels to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		db, repo, err := openRepository(serveOptions.DbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := journal.ExportToJSON(repo, args[0]); err != nil {
			return err
		}

		log.Printf("Exported travels to %s", args[0])

		return nil
	},
}

var journalImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import travels from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		db, repo, err := openRepository(serveOptions.DbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		imported, err := journal.ImportFromJSON(repo, args[0])
		if err != nil {
			return fmt.Errorf("importing travels: %w", err)
		}

		log.Printf("Imported %d travels from %s", imported, args[0])

		return nil
	},
}

var backfillOptions = journal.BackfillOptions{}

var journalBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Resolve coordinates for cities that have none",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openRepository(serveOptions.DbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		_, err = journal.Backfill(repo, newGeocodeClient(), backfillOptions)

		return err
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalExportCmd)
	journalCmd.AddCommand(journalImportCmd)
	journalCmd.AddCommand(journalBackfillCmd)

	journalBackfillCmd.Flags().BoolVar(
		&backfillOptions.DryRun,
		"dry-run",
		false,
		"Resolve cities without persisting the coordinates",
	)
	journalBackfillCmd.Flags().IntVar(
		&backfillOptions.MaxProcs,
		"max-procs",
		0,
		"Max concurrent geocoding requests. Defaults to 2",
	)
}
