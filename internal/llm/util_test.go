package llm

import (
	"testing"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n[\"a\", \"b\"]\n```",
			expected: `["a", "b"]`,
		},
		{
			name:     "generic code block",
			input:    "```\n[\"a\", \"b\"]\n```",
			expected: `["a", "b"]`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON untouched",
			input:    `["a", "b"]`,
			expected: `["a", "b"]`,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n[\"a\"]\n  ",
			expected: `["a"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare array",
			input:    `["a", "b", "c"]`,
			expected: `["a", "b", "c"]`,
		},
		{
			name:     "fenced array",
			input:    "```json\n[\"a\", \"b\"]\n```",
			expected: `["a", "b"]`,
		},
		{
			name:     "prose around the array",
			input:    `Here are the skills I found: ["Go", "SQL"] Hope that helps`,
			expected: `["Go", "SQL"]`,
		},
		{
			name:     "nested arrays kept whole",
			input:    `[[1, 2], [3, 4]]`,
			expected: `[[1, 2], [3, 4]]`,
		},
		{
			name:     "empty array",
			input:    `[]`,
			expected: `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ExtractJSONArray(tt.input)
			if err != nil {
				t.Fatalf("ExtractJSONArray() error = %v", err)
			}
			if result != tt.expected {
				t.Errorf("ExtractJSONArray() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSONArray_NoArray(t *testing.T) {
	for _, input := range []string{"", "no array here", `{"key": "value"}`, "] backwards ["} {
		if _, err := ExtractJSONArray(input); err == nil {
			t.Errorf("ExtractJSONArray(%q) expected an error", input)
		}
	}
}
