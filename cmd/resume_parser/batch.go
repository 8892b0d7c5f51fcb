package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	resumeparser "github.com/jonathan/resume-parser"
	"github.com/jonathan/resume-parser/internal/export"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir|file...>",
	Short: "Parse many resumes concurrently",
	Long:  "Parse a directory of resumes, or an explicit list of files, with a bounded worker pool. A file that fails to parse is reported in the summary and never aborts the rest of the batch.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

var (
	batchConfigPath  string
	batchDatabaseURL string
	batchWorkers     int
	batchJSON        bool
	batchVerbose     bool
	batchReportPath  string
)

func init() {
	batchCmd.Flags().StringVar(&batchConfigPath, "config", "", "Path to settings file (YAML or JSON)")
	batchCmd.Flags().StringVar(&batchDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Concurrent parse workers (defaults to settings)")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "Print the batch summary as JSON instead of console output")
	batchCmd.Flags().BoolVarP(&batchVerbose, "verbose", "v", false, "Print parsed fields and trails for every file")
	batchCmd.Flags().StringVar(&batchReportPath, "report", "", "Write an XLSX report of the batch to this path")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	settings, err := resumeparser.LoadSettings(batchConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db-url") {
		settings.DatabaseURL = batchDatabaseURL
	}
	if cmd.Flags().Changed("workers") {
		settings.Workers = batchWorkers
	}

	logger := observability.Setup(settings.Log)

	parser, err := newResumeParser(settings, logger)
	if err != nil {
		return fmt.Errorf("failed to build parser: %w", err)
	}
	defer func() { _ = parser.Close() }()

	opts := pipeline.RunOptions{
		Workers:     settings.Workers,
		DatabaseURL: settings.DatabaseURL,
		Verbose:     batchVerbose,
		Quiet:       batchJSON,
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if info.IsDir() {
			if opts.Dir != "" {
				return fmt.Errorf("only one directory argument is supported")
			}
			opts.Dir = arg
		} else {
			opts.Paths = append(opts.Paths, arg)
		}
	}

	summary, err := pipeline.Run(ctx, parser, opts)
	if err != nil {
		return err
	}

	if batchJSON {
		b, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		fmt.Println(string(b))
	}

	if batchReportPath != "" {
		wb, err := export.SummaryWorkbook(summary)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		if err := wb.SaveAs(batchReportPath); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote report to %s\n", batchReportPath)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Total)
	}
	return nil
}
