// Copyright 2026 The Carnet Authors
// SPDX-License-Identifier: Apache-2.0

// Package cmd wires the carnet command line interface.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "carnet",
	Short: "carnet de voyage with place resolution",
	Long: `
carnet keeps a travel journal backed by a place resolution engine: free-form
city names are resolved to coordinates through a curated override table and
the MapTiler geocoding API.
`,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	// Local development keeps MAPTILER_API_KEY in a .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
