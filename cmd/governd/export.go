// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bimsrama/relasi4warna-governance/services/governance/storage"
	"github.com/bimsrama/relasi4warna-governance/services/governance/store"
)

var (
	exportDataDir string
	exportFrom    string
	exportTo      string

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export audit records as JSON lines to stdout",
		Long: `Export reads the audit log directly from the data directory and
writes one JSON record per line, oldest first. Run it against a stopped
daemon or a snapshot of its data directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport()
		},
	}
)

func init() {
	exportCmd.Flags().StringVar(&exportDataDir, "data-dir", "./data/governd", "BadgerDB data directory")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start, RFC 3339 (inclusive)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Range end, RFC 3339 (exclusive)")
	rootCmd.AddCommand(exportCmd)
}

func runExport() error {
	var from, to time.Time
	var err error
	if exportFrom != "" {
		if from, err = time.Parse(time.RFC3339, exportFrom); err != nil {
			return fmt.Errorf("parse --from: %w", err)
		}
	}
	if exportTo != "" {
		if to, err = time.Parse(time.RFC3339, exportTo); err != nil {
			return fmt.Errorf("parse --to: %w", err)
		}
	}

	cfg := storage.DefaultConfig(exportDataDir)
	db, err := storage.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	records, err := store.New(db).Export(context.Background(), from, to)
	if err != nil {
		return fmt.Errorf("export audit records: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "exported %d records\n", len(records))
	return nil
}
