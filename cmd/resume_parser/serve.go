package main

import (
	"fmt"

	"github.com/spf13/cobra"

	resumeparser "github.com/jonathan/resume-parser"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  "Start an HTTP server that exposes resume parsing, batch runs, and stored results over REST endpoints.",
	RunE:  runServe,
}

var (
	serveConfigPath  string
	servePort        int
	serveDatabaseURL string
	serveWorkers     int
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to settings file (YAML or JSON)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to settings)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Concurrent parse workers for batch requests (defaults to settings)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := resumeparser.LoadSettings(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		settings.Server.Port = servePort
	}
	if cmd.Flags().Changed("db-url") {
		settings.DatabaseURL = serveDatabaseURL
	}
	if cmd.Flags().Changed("workers") {
		settings.Workers = serveWorkers
	}

	logger := observability.Setup(settings.Log)

	parser, err := newResumeParser(settings, logger)
	if err != nil {
		return fmt.Errorf("failed to build parser: %w", err)
	}
	defer func() { _ = parser.Close() }()

	srv, err := server.New(parser, server.Config{
		Port:        settings.Server.Port,
		DatabaseURL: settings.DatabaseURL,
		Workers:     settings.Workers,
		APIKeyHash:  settings.Server.APIKeyHash,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
