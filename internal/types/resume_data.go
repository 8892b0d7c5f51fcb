// Package types provides type definitions for structured data used throughout the resume-parser system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
)

// AttemptOutcome classifies a single strategy attempt within a field's chain.
type AttemptOutcome string

const (
	// AttemptResolved means the strategy produced a usable value and won the chain.
	AttemptResolved AttemptOutcome = "resolved"
	// AttemptEmpty means the strategy ran successfully but found nothing.
	AttemptEmpty AttemptOutcome = "empty"
	// AttemptFailed means the strategy errored; the chain moved on.
	AttemptFailed AttemptOutcome = "failed"
)

// AttemptRecord is one entry in a field's diagnostic trail.
type AttemptRecord struct {
	Strategy StrategyType   `json:"strategy"`
	Outcome  AttemptOutcome `json:"outcome"`
	Detail   string         `json:"detail,omitempty"`
}

// FieldOutcome is the terminal state of one field's extraction chain:
// either resolved with a value and a winning strategy, or exhausted with
// an absent value. Attempts lists every strategy tried, in order.
type FieldOutcome struct {
	Field    FieldType      `json:"field"`
	Value    FieldValue     `json:"value"`
	Resolved bool           `json:"resolved"`
	Winner   StrategyType   `json:"winner,omitempty"`
	Attempts []AttemptRecord `json:"attempts"`
}

// ResumeData is the aggregate output of one parse: exactly one slot per
// configured field, plus the per-field diagnostic trail. Immutable after
// construction.
type ResumeData struct {
	order    []FieldType
	values   map[FieldType]FieldValue
	resolved map[FieldType]bool
	winners  map[FieldType]StrategyType
	trails   map[FieldType][]AttemptRecord
}

// NewResumeData assembles the aggregate from per-field outcomes. Slot
// order follows the outcome order; later duplicates of a field replace
// earlier ones.
func NewResumeData(outcomes []FieldOutcome) *ResumeData {
	r := &ResumeData{
		values:   make(map[FieldType]FieldValue, len(outcomes)),
		resolved: make(map[FieldType]bool, len(outcomes)),
		winners:  make(map[FieldType]StrategyType, len(outcomes)),
		trails:   make(map[FieldType][]AttemptRecord, len(outcomes)),
	}
	for _, o := range outcomes {
		if _, seen := r.values[o.Field]; !seen {
			r.order = append(r.order, o.Field)
		}
		r.values[o.Field] = o.Value
		r.resolved[o.Field] = o.Resolved
		if o.Resolved {
			r.winners[o.Field] = o.Winner
		} else {
			delete(r.winners, o.Field)
		}
		trail := make([]AttemptRecord, len(o.Attempts))
		copy(trail, o.Attempts)
		r.trails[o.Field] = trail
	}
	return r
}

// Fields returns the configured field slots in output order.
func (r *ResumeData) Fields() []FieldType {
	out := make([]FieldType, len(r.order))
	copy(out, r.order)
	return out
}

// Value returns the slot for a field and whether the field has a slot at
// all, so callers can distinguish "not attempted" from "attempted, not
// found".
func (r *ResumeData) Value(f FieldType) (FieldValue, bool) {
	v, ok := r.values[f]
	return v, ok
}

// Resolved reports whether some strategy produced a usable value for the field.
func (r *ResumeData) Resolved(f FieldType) bool {
	return r.resolved[f]
}

// Winner returns the strategy that resolved the field, if any.
func (r *ResumeData) Winner(f FieldType) (StrategyType, bool) {
	w, ok := r.winners[f]
	return w, ok
}

// Trail returns a copy of the field's attempt trail.
func (r *ResumeData) Trail(f FieldType) []AttemptRecord {
	trail, ok := r.trails[f]
	if !ok {
		return nil
	}
	out := make([]AttemptRecord, len(trail))
	copy(out, trail)
	return out
}

// Trails returns every field's attempt trail keyed by field type.
func (r *ResumeData) Trails() map[FieldType][]AttemptRecord {
	out := make(map[FieldType][]AttemptRecord, len(r.trails))
	for f := range r.trails {
		out[f] = r.Trail(f)
	}
	return out
}

// ToMap converts the record to a plain mapping keyed by field-type name.
// Absent scalars map to nil and absent lists to an empty list; fields are
// never omitted.
func (r *ResumeData) ToMap() map[string]any {
	out := make(map[string]any, len(r.order))
	for _, f := range r.order {
		out[f.String()] = r.values[f].AsAny()
	}
	return out
}

// ToJSON serializes the plain-mapping form of the record.
func (r *ResumeData) ToJSON() (string, error) {
	b, err := json.Marshal(r.ToMap())
	if err != nil {
		return "", fmt.Errorf("failed to serialize resume data: %w", err)
	}
	return string(b), nil
}

// MarshalJSON renders the record as its plain-mapping form.
func (r *ResumeData) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// ResumeDataFromMap reconstructs a record from its plain-mapping form.
// Trails and winning strategies are not part of the mapping and come back
// empty; values and the present/absent distinction round-trip exactly.
func ResumeDataFromMap(m map[string]any) (*ResumeData, error) {
	outcomes := make([]FieldOutcome, 0, len(m))
	for _, f := range AllFieldTypes() {
		raw, ok := m[f.String()]
		if !ok {
			continue
		}
		value, err := valueFromAny(f, raw)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, FieldOutcome{
			Field:    f,
			Value:    value,
			Resolved: !value.IsEmpty(),
		})
	}
	return NewResumeData(outcomes), nil
}

func valueFromAny(f FieldType, raw any) (FieldValue, error) {
	switch v := raw.(type) {
	case nil:
		return Absent(), nil
	case string:
		return Scalar(v), nil
	case []string:
		return List(v), nil
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return FieldValue{}, fmt.Errorf("field %s: list item is %T, want string", f, item)
			}
			items = append(items, s)
		}
		return List(items), nil
	default:
		return FieldValue{}, fmt.Errorf("field %s: unsupported value type %T", f, raw)
	}
}
