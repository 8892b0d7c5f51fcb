package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	resumeparser "github.com/jonathan/resume-parser"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/schemas"
	"github.com/jonathan/resume-parser/internal/store"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse one resume into structured fields",
	Long:  "Parse a resume document and print the extracted fields, either as a human-readable summary or as JSON. Every configured strategy attempt is recorded and can be printed with --trail.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var (
	parseConfigPath  string
	parseDatabaseURL string
	parseJSON        bool
	parseTrail       bool
	parseValidate    bool
)

func init() {
	parseCmd.Flags().StringVar(&parseConfigPath, "config", "", "Path to settings file (YAML or JSON)")
	parseCmd.Flags().StringVar(&parseDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print the parsed fields as JSON")
	parseCmd.Flags().BoolVar(&parseTrail, "trail", false, "Print the strategy attempt trail for every field")
	parseCmd.Flags().BoolVar(&parseValidate, "validate", false, "Validate the output against the embedded JSON schema")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	settings, err := resumeparser.LoadSettings(parseConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db-url") {
		settings.DatabaseURL = parseDatabaseURL
	}

	logger := observability.Setup(settings.Log)

	parser, err := newResumeParser(settings, logger)
	if err != nil {
		return fmt.Errorf("failed to build parser: %w", err)
	}
	defer func() { _ = parser.Close() }()

	data, meta, err := parser.ParseFile(ctx, args[0])
	if err != nil {
		return err
	}

	if parseJSON {
		var out any = data
		if parseTrail {
			out = struct {
				Fields *resumeparser.ResumeData                                 `json:"fields"`
				Trails map[resumeparser.FieldType][]resumeparser.AttemptRecord `json:"trails"`
			}{data, data.Trails()}
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(b))
	} else {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintResumeData(data)
		if parseTrail {
			printer.PrintTrails(data)
		}
	}

	if parseValidate {
		jsonOut, err := data.ToJSON()
		if err != nil {
			return err
		}
		if err := schemas.ValidateResumeData(jsonOut); err != nil {
			var validationErr *schemas.ValidationError
			if errors.As(err, &validationErr) {
				return fmt.Errorf("parsed output does not validate against schema: %w", err)
			}
			// Schema loading trouble is not the document's fault.
			fmt.Fprintf(os.Stderr, "Warning: Could not validate output against schema: %v\n", err)
		}
	}

	if settings.DatabaseURL != "" {
		if err := persistParse(ctx, settings.DatabaseURL, meta, data); err != nil {
			return err
		}
	}

	return nil
}

// persistParse saves one parse as a completed run.
func persistParse(ctx context.Context, databaseURL string, meta *resumeparser.Metadata, data *resumeparser.ResumeData) error {
	st, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	runID, err := st.CreateRun(ctx, meta)
	if err != nil {
		return err
	}
	if err := st.SaveResults(ctx, runID, data); err != nil {
		return err
	}
	if err := st.CompleteRun(ctx, runID, store.StatusCompleted); err != nil {
		return err
	}

	// Keep stdout clean for JSON consumers.
	out := os.Stdout
	if parseJSON {
		out = os.Stderr
	}
	fmt.Fprintf(out, "Saved run %s\n", runID)
	return nil
}
