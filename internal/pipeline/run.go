// Package pipeline provides the high-level orchestration for batch resume parsing.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-parser/internal/ingestion"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/store"
	"github.com/jonathan/resume-parser/internal/types"
)

// Stage labels for progress events.
const (
	StageCollect = "collect"
	StageParse   = "parse"
	StagePersist = "persist"
)

// ProgressEvent represents a progress update during batch execution
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when batch progress occurs
type ProgressCallback func(event ProgressEvent)

// Parser is the subset of the resume parser the batch runner needs.
type Parser interface {
	ParseFile(ctx context.Context, path string) (*types.ResumeData, *ingestion.Metadata, error)
	Supported(path string) bool
}

// RunOptions holds configuration for running a batch
type RunOptions struct {
	Paths       []string
	Dir         string
	Workers     int
	DatabaseURL string
	Verbose     bool
	Quiet       bool
	OnProgress  ProgressCallback
}

// FileResult holds the outcome of parsing a single file.
type FileResult struct {
	Path    string              `json:"path"`
	Data    *types.ResumeData   `json:"data,omitempty"`
	Meta    *ingestion.Metadata `json:"metadata,omitempty"`
	RunID   uuid.UUID           `json:"run_id"`
	Elapsed time.Duration       `json:"elapsed_ns"`
	Error   string              `json:"error,omitempty"`

	Err error `json:"-"`
}

// Succeeded reports whether the file parsed without error.
func (r FileResult) Succeeded() bool {
	return r.Err == nil
}

// Summary aggregates the results of a batch run.
type Summary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Results   []FileResult  `json:"results"`
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, stage, path, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Stage:   stage,
			Path:    path,
			Message: message,
			Content: content,
		})
	}
}

// CollectFiles walks dir and returns every file the parser has a reader for,
// sorted by path. Hidden files and directories are skipped.
func CollectFiles(dir string, parser Parser) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if parser.Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collecting resume files from %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Run parses every file in the batch with a bounded worker pool. A file that
// fails to parse is recorded in the summary and never aborts the rest of the
// batch. Results are persisted to the database when DatabaseURL is set.
func Run(ctx context.Context, parser Parser, opts RunOptions) (*Summary, error) {
	start := time.Now()

	files := append([]string{}, opts.Paths...)
	if opts.Dir != "" {
		collected, err := CollectFiles(opts.Dir, parser)
		if err != nil {
			return nil, err
		}
		emitProgress(&opts, StageCollect, opts.Dir,
			fmt.Sprintf("Collected %d resume files from %s", len(collected), opts.Dir), nil)
		files = append(files, collected...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no resume files to process")
	}

	// Initialize observability printer for verbose output
	printer := observability.NewPrinter(os.Stdout)

	// Initialize database connection if configured
	var st *store.Store
	if opts.DatabaseURL != "" {
		var err error
		st, err = store.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
		} else {
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				fmt.Printf("Warning: Failed to migrate database: %v\n", err)
				fmt.Printf("Continuing without database persistence...\n")
				st = nil
			}
		}
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if !opts.Quiet {
		fmt.Printf("Processing %d resume files with %d workers...\n", len(files), workers)
	}

	results := make([]FileResult, len(files))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			results[i] = processFile(ctx, parser, st, path, &opts)
			return nil
		})
	}
	// Workers absorb their own failures, so Wait only synchronizes.
	_ = g.Wait()

	summary := &Summary{
		Total:   len(files),
		Elapsed: time.Since(start),
		Results: results,
	}
	for _, r := range results {
		if r.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	if opts.Verbose && !opts.Quiet {
		for _, r := range results {
			if r.Data != nil {
				fmt.Printf("\n%s\n", r.Path)
				printer.PrintResumeData(r.Data)
				printer.PrintTrails(r.Data)
			}
		}
	}
	if !opts.Quiet {
		printer.PrintBatchSummary(summary.Total, summary.Succeeded, summary.Failed, summary.Elapsed)
	}
	return summary, nil
}

// processFile parses one file and persists the outcome when a store is connected.
func processFile(ctx context.Context, parser Parser, st *store.Store, path string, opts *RunOptions) FileResult {
	fileStart := time.Now()
	emitProgress(opts, StageParse, path, fmt.Sprintf("Parsing %s", path), nil)

	data, meta, err := parser.ParseFile(ctx, path)
	if err != nil {
		if !opts.Quiet {
			fmt.Printf("✗ %s: %v\n", path, err)
		}
		emitProgress(opts, StageParse, path, fmt.Sprintf("Failed: %v", err), nil)
		return FileResult{
			Path:    path,
			Elapsed: time.Since(fileStart),
			Error:   err.Error(),
			Err:     err,
		}
	}

	result := FileResult{
		Path:    path,
		Data:    data,
		Meta:    meta,
		Elapsed: time.Since(fileStart),
	}

	if st != nil {
		runID, err := st.CreateRun(ctx, meta)
		if err != nil {
			fmt.Printf("Warning: Failed to create database run for %s: %v\n", path, err)
		} else {
			result.RunID = runID
			_ = st.SaveResults(ctx, runID, data)
			_ = st.CompleteRun(ctx, runID, store.StatusCompleted)
			emitProgress(opts, StagePersist, path, fmt.Sprintf("Saved run %s", runID), nil)
		}
	}

	if !opts.Quiet {
		fmt.Printf("✓ %s (%d/%d fields, %s)\n",
			path, resolvedCount(data), len(data.Fields()), result.Elapsed.Round(time.Millisecond))
	}
	emitProgress(opts, StageParse, path, "Parsed", data)
	return result
}

// resolvedCount returns how many fields the chains resolved.
func resolvedCount(data *types.ResumeData) int {
	count := 0
	for _, field := range data.Fields() {
		if data.Resolved(field) {
			count++
		}
	}
	return count
}
