// Package llm - extractor.go provides generic LLM-based field extraction.
package llm

import (
	"fmt"
	"strings"
)

// FieldPrompt defines one field-extraction task for the LLM. The model
// is always asked for a JSON array of strings; scalar fields request a
// single-element array so the response shape stays uniform.
type FieldPrompt struct {
	Field       string // field name used in the instructions (e.g., "email")
	Instruction string // task description for the model
	MaxItems    int    // maximum array length; 0 means unlimited
	Scalar      bool   // true when exactly one value is expected
}

// BuildFieldPrompt constructs the LLM prompt for one field from its
// task description and the resume text.
func BuildFieldPrompt(p FieldPrompt, inputText string) string {
	var sb strings.Builder

	sb.WriteString(p.Instruction)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY a valid JSON array of strings")
	if p.Scalar {
		sb.WriteString(fmt.Sprintf(" containing at most one element, e.g. [\"<%s>\"]", p.Field))
	} else if p.MaxItems > 0 {
		sb.WriteString(fmt.Sprintf(" with at most %d elements", p.MaxItems))
	}
	sb.WriteString(". Return [] if the resume contains no ")
	sb.WriteString(p.Field)
	sb.WriteString(".\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Copy values directly from the text, do not invent or rephrase.\n")
	sb.WriteString("- Return ONLY the JSON array, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Resume text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}
