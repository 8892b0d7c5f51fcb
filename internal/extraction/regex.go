package extraction

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jonathan/resume-parser/internal/types"
)

// RegexStrategy extracts a field by matching its configured patterns
// against the raw text. Patterns are tried in order and the first one
// with any match supplies the candidates; candidates must also survive
// an anchored re-validation so a partial match never leaks through.
type RegexStrategy struct {
	spec     FieldSpec
	patterns []*regexp.Regexp
	anchored []*regexp.Regexp
}

// NewRegexStrategy compiles the field's patterns case-insensitively in
// multiline mode. Fields without patterns are rejected at registration
// time, not here.
func NewRegexStrategy(spec FieldSpec) (*RegexStrategy, error) {
	if len(spec.Patterns) == 0 {
		return nil, fmt.Errorf("field %s has no regex patterns", spec.Field)
	}
	s := &RegexStrategy{spec: spec}
	for _, p := range spec.Patterns {
		compiled, err := regexp.Compile(`(?im)` + p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern for %s: %w", spec.Field, err)
		}
		full, err := regexp.Compile(`(?i)^(?:` + p + `)$`)
		if err != nil {
			return nil, fmt.Errorf("failed to compile anchored pattern for %s: %w", spec.Field, err)
		}
		s.patterns = append(s.patterns, compiled)
		s.anchored = append(s.anchored, full)
	}
	return s, nil
}

// Extract implements Strategy.
func (s *RegexStrategy) Extract(_ context.Context, rawText string, field types.FieldType) (types.FieldValue, error) {
	if field != s.spec.Field {
		return types.FieldValue{}, &ExecutionError{
			Strategy: types.StrategyRegex,
			Field:    field,
			Message:  fmt.Sprintf("strategy is bound to field %s", s.spec.Field),
		}
	}

	for i, pattern := range s.patterns {
		candidates := s.matchCandidates(pattern, rawText)
		if len(candidates) == 0 {
			continue
		}
		valid := make([]string, 0, len(candidates))
		for _, c := range candidates {
			if s.anchored[i].MatchString(c) {
				valid = append(valid, c)
			}
		}
		if len(valid) > 0 {
			// First pattern with surviving candidates wins.
			return s.spec.Normalize(valid), nil
		}
	}
	return types.Absent(), nil
}

// matchCandidates collects all matches for one pattern, flattening
// capture groups when the pattern has them.
func (s *RegexStrategy) matchCandidates(pattern *regexp.Regexp, rawText string) []string {
	matches := pattern.FindAllStringSubmatch(rawText, -1)
	if len(matches) == 0 {
		return nil
	}
	candidates := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			for _, group := range m[1:] {
				if group != "" {
					candidates = append(candidates, group)
				}
			}
			continue
		}
		candidates = append(candidates, m[0])
	}
	return candidates
}
