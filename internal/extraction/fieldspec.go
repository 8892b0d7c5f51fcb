package extraction

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-parser/internal/types"
)

// FieldSpec carries the per-field parameters the strategies share: the
// expected value shape, candidate filtering rules, and the inputs each
// technique needs (patterns, entity labels, prompt key). Extending the
// engine to a new field means adding a spec here plus factory
// registrations for the strategies that support it.
type FieldSpec struct {
	Field        types.FieldType
	Shape        types.ValueKind // ValueScalar or ValueList
	Limit        int             // max list items; 0 means unlimited
	MinLength    int             // shortest candidate accepted
	Patterns     []string        // regex alternatives, first match wins
	EntityLabels []string        // NER labels mapped to this field
	PromptKey    string          // template key for the LLM prompt
}

// emailPattern accepts the common mailbox@domain.tld shape. Candidates
// are re-validated against the anchored form before acceptance.
const emailPattern = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`

var fieldSpecs = map[types.FieldType]FieldSpec{
	types.FieldName: {
		Field:        types.FieldName,
		Shape:        types.ValueScalar,
		MinLength:    1,
		EntityLabels: []string{"person"},
		PromptKey:    "name",
	},
	types.FieldEmail: {
		Field:        types.FieldEmail,
		Shape:        types.ValueScalar,
		MinLength:    5,
		Patterns:     []string{emailPattern},
		EntityLabels: []string{"email"},
		PromptKey:    "email",
	},
	types.FieldSkills: {
		Field:        types.FieldSkills,
		Shape:        types.ValueList,
		MinLength:    2,
		EntityLabels: []string{"skill"},
		PromptKey:    "skills",
	},
}

// anchoredValidators holds each field's patterns compiled in anchored
// form. Normalize applies them to candidates from every strategy, so a
// truncated NER span or a model answer like "not found" can never
// resolve the email field.
var anchoredValidators = compileValidators()

func compileValidators() map[types.FieldType][]*regexp.Regexp {
	m := make(map[types.FieldType][]*regexp.Regexp, len(fieldSpecs))
	for field, spec := range fieldSpecs {
		for _, p := range spec.Patterns {
			m[field] = append(m[field], regexp.MustCompile(`(?i)^(?:`+p+`)$`))
		}
	}
	return m
}

// validCandidate checks a candidate against the field's anchored
// patterns. Fields without patterns accept everything.
func validCandidate(field types.FieldType, c string) bool {
	validators := anchoredValidators[field]
	if len(validators) == 0 {
		return true
	}
	for _, re := range validators {
		if re.MatchString(c) {
			return true
		}
	}
	return false
}

// SpecFor returns the extraction parameters for a field.
func SpecFor(f types.FieldType) (FieldSpec, bool) {
	spec, ok := fieldSpecs[f]
	return spec, ok
}

// Normalize turns raw candidates into the field's value: trims
// whitespace, drops candidates below the minimum length or failing the
// field's anchored patterns, deduplicates preserving order, applies the
// list limit, and shapes the result. An empty candidate set yields an
// absent value.
func (s FieldSpec) Normalize(candidates []string) types.FieldValue {
	kept := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if len(c) < s.MinLength || c == "" {
			continue
		}
		if !validCandidate(s.Field, c) {
			continue
		}
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return types.Absent()
	}
	if s.Shape == types.ValueScalar {
		return types.Scalar(kept[0])
	}
	if s.Limit > 0 && len(kept) > s.Limit {
		kept = kept[:s.Limit]
	}
	return types.List(kept)
}
