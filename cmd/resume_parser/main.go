// Package main provides the resume parser command line interface.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	resumeparser "github.com/jonathan/resume-parser"
)

var rootCmd = &cobra.Command{
	Use:   "resume_parser",
	Short: "Resume field extraction engine",
	Long:  "Resume Parser extracts structured fields (name, email, skills) from resume documents using per-field chains of regex, NER, and LLM strategies, with a diagnostic trail of every attempt.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newResumeParser builds the parser every command shares: the document
// formats plus the plain-text formats useful from the command line.
func newResumeParser(settings *resumeparser.Settings, logger zerolog.Logger) (*resumeparser.Parser, error) {
	return resumeparser.New(
		resumeparser.WithSettings(settings),
		resumeparser.WithLogger(logger),
		resumeparser.WithExtensions(".txt", ".md", ".html", ".htm"),
	)
}
