package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-parser/internal/export"
	"github.com/jonathan/resume-parser/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored parse runs to an XLSX workbook",
	Long:  "Read parse runs and their field results from the database and write them to an XLSX workbook with one sheet of runs and one sheet of per-field results.",
	RunE:  runExport,
}

var (
	exportDatabaseURL string
	exportOutPath     string
	exportSource      string
	exportStatus      string
	exportLimit       int
)

func init() {
	exportCmd.Flags().StringVar(&exportDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	exportCmd.Flags().StringVarP(&exportOutPath, "out", "o", "runs.xlsx", "Path of the XLSX file to write")
	exportCmd.Flags().StringVar(&exportSource, "source", "", "Only export runs whose source matches this substring")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "Only export runs with this status")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 200, "Maximum number of runs to export")

	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := exportDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	st, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, store.RunFilters{
		Source: exportSource,
		Status: exportStatus,
		Limit:  exportLimit,
	})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no runs to export")
	}

	results := make(map[uuid.UUID][]store.Result, len(runs))
	for _, run := range runs {
		rs, err := st.GetResults(ctx, run.ID)
		if err != nil {
			return err
		}
		results[run.ID] = rs
	}

	wb, err := export.RunsWorkbook(runs, results)
	if err != nil {
		return err
	}
	if err := wb.SaveAs(exportOutPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOutPath, err)
	}

	fmt.Printf("Exported %d runs to %s\n", len(runs), exportOutPath)
	return nil
}
