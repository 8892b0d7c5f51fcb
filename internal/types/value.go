// Package types provides type definitions for structured data used throughout the resume-parser system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "encoding/json"

// ValueKind distinguishes the three shapes a field value can take.
type ValueKind int

const (
	// ValueAbsent means the field was attempted but nothing usable was found.
	ValueAbsent ValueKind = iota
	// ValueScalar is a single string payload (name, email).
	ValueScalar
	// ValueList is an ordered list payload (skills).
	ValueList
)

// String names the kind for logs and API output.
func (k ValueKind) String() string {
	switch k {
	case ValueScalar:
		return "scalar"
	case ValueList:
		return "list"
	}
	return "absent"
}

// FieldValue is the tagged payload of one extracted field: a scalar
// string, an ordered list of strings, or explicitly absent. The zero
// value is absent.
type FieldValue struct {
	kind   ValueKind
	scalar string
	list   []string
}

// Absent returns an explicitly absent value.
func Absent() FieldValue {
	return FieldValue{}
}

// Scalar wraps a single string payload. An empty string yields an
// absent value so a chain can never resolve on a blank result.
func Scalar(s string) FieldValue {
	if s == "" {
		return FieldValue{}
	}
	return FieldValue{kind: ValueScalar, scalar: s}
}

// List wraps an ordered list payload. The slice is copied.
func List(items []string) FieldValue {
	out := make([]string, len(items))
	copy(out, items)
	return FieldValue{kind: ValueList, list: out}
}

// Kind returns the shape of the value.
func (v FieldValue) Kind() ValueKind {
	return v.kind
}

// IsEmpty reports whether the value carries no usable payload. An empty
// list is empty even though its kind is ValueList.
func (v FieldValue) IsEmpty() bool {
	switch v.kind {
	case ValueScalar:
		return v.scalar == ""
	case ValueList:
		return len(v.list) == 0
	}
	return true
}

// Text returns the scalar payload, or "" for list/absent values.
func (v FieldValue) Text() string {
	return v.scalar
}

// Items returns a copy of the list payload, or nil for scalar/absent values.
func (v FieldValue) Items() []string {
	if v.kind != ValueList {
		return nil
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out
}

// AsAny renders the value for a plain mapping: string for scalars,
// []string for lists (empty list when nothing was found), nil for absent.
func (v FieldValue) AsAny() any {
	switch v.kind {
	case ValueScalar:
		return v.scalar
	case ValueList:
		return v.Items()
	}
	return nil
}

// MarshalJSON renders the value as its plain-mapping form.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.AsAny())
}
