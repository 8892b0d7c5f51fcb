// Package observability provides structured logging setup and formatted
// output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/resume-parser/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResumeData outputs a human-readable summary of one parsed resume.
func (p *Printer) PrintResumeData(data *types.ResumeData) {
	if data == nil {
		return
	}

	var sb strings.Builder
	for _, field := range data.Fields() {
		value, _ := data.Value(field)
		label := fmt.Sprintf("%-8s", field.String()+":")

		switch {
		case value.Kind() == types.ValueList:
			items := value.Items()
			sb.WriteString(fmt.Sprintf("%s %d found\n", label, len(items)))
			count := min(len(items), maxItemsToShow)
			for i := 0; i < count; i++ {
				sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
			}
			if len(items) > maxItemsToShow {
				sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
			}
		case value.IsEmpty():
			sb.WriteString(label + " (not found)\n")
		default:
			sb.WriteString(fmt.Sprintf("%s %s\n", label, value.Text()))
		}
	}

	p.printBox("PARSED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTrails outputs the strategy attempt trail for every field.
func (p *Printer) PrintTrails(data *types.ResumeData) {
	if data == nil {
		return
	}

	var sb strings.Builder
	for _, field := range data.Fields() {
		sb.WriteString(field.String() + ":\n")
		trail := data.Trail(field)
		if len(trail) == 0 {
			sb.WriteString("  (no strategies attempted)\n")
			continue
		}
		for _, attempt := range trail {
			sb.WriteString(fmt.Sprintf("  %s: %s", attempt.Strategy, attempt.Outcome))
			if attempt.Detail != "" {
				detail := attempt.Detail
				if len(detail) > 36 {
					detail = detail[:33] + "..."
				}
				sb.WriteString(" (" + detail + ")")
			}
			sb.WriteString("\n")
		}
	}

	p.printBox("EXTRACTION TRAIL", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatchSummary outputs the outcome of a batch run.
func (p *Printer) PrintBatchSummary(total, succeeded, failed int, elapsed time.Duration) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Files:     %d\n", total))
	sb.WriteString(fmt.Sprintf("Succeeded: %d\n", succeeded))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", failed))
	sb.WriteString(fmt.Sprintf("Elapsed:   %s", elapsed.Round(time.Millisecond)))

	p.printBox("BATCH SUMMARY", sb.String())
}
