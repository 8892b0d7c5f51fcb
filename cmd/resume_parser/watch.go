package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	resumeparser "github.com/jonathan/resume-parser"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/pipeline"
	"github.com/jonathan/resume-parser/internal/store"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and parse resumes as they appear",
	Long:  "Watch a directory tree and parse every supported resume file created or modified under it. Writes are debounced so half-written documents are not picked up mid-copy.",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

var (
	watchConfigPath  string
	watchDatabaseURL string
	watchInitialScan bool
	watchDebounce    time.Duration
	watchTrail       bool
)

func init() {
	watchCmd.Flags().StringVar(&watchConfigPath, "config", "", "Path to settings file (YAML or JSON)")
	watchCmd.Flags().StringVar(&watchDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", false, "Parse files already present before watching")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Settle window before a changed file is parsed")
	watchCmd.Flags().BoolVar(&watchTrail, "trail", false, "Print the strategy attempt trail for every file")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := resumeparser.LoadSettings(watchConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db-url") {
		settings.DatabaseURL = watchDatabaseURL
	}

	logger := observability.Setup(settings.Log)

	parser, err := newResumeParser(settings, logger)
	if err != nil {
		return fmt.Errorf("failed to build parser: %w", err)
	}
	defer func() { _ = parser.Close() }()

	var st *store.Store
	if settings.DatabaseURL != "" {
		st, err = store.Connect(ctx, settings.DatabaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to connect to database: %v\n", err)
			fmt.Fprintf(os.Stderr, "Continuing without database persistence...\n")
		} else {
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to migrate database: %v\n", err)
				fmt.Fprintf(os.Stderr, "Continuing without database persistence...\n")
				st = nil
			}
		}
	}

	paths, errs, err := pipeline.Watch(ctx, parser, pipeline.WatchOptions{
		Dir:         args[0],
		InitialScan: watchInitialScan,
		Debounce:    watchDebounce,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Watching %s for resumes (Ctrl-C to stop)...\n", args[0])
	printer := observability.NewPrinter(os.Stdout)
	for {
		select {
		case path, ok := <-paths:
			if !ok {
				return nil
			}
			parseWatched(ctx, parser, st, printer, path)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Warning: watch error: %v\n", err)
		}
	}
}

// parseWatched parses one discovered file and persists it when a store
// is connected. Failures are reported and the watch keeps going.
func parseWatched(ctx context.Context, parser *resumeparser.Parser, st *store.Store, printer *observability.Printer, path string) {
	data, meta, err := parser.ParseFile(ctx, path)
	if err != nil {
		fmt.Printf("✗ %s: %v\n", path, err)
		return
	}

	fmt.Printf("\n%s\n", path)
	printer.PrintResumeData(data)
	if watchTrail {
		printer.PrintTrails(data)
	}

	if st != nil {
		runID, err := st.CreateRun(ctx, meta)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to create database run for %s: %v\n", path, err)
			return
		}
		_ = st.SaveResults(ctx, runID, data)
		_ = st.CompleteRun(ctx, runID, store.StatusCompleted)
		fmt.Printf("Saved run %s\n", runID)
	}
}
