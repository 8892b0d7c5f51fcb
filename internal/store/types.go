package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-parser/internal/types"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run represents one parse run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Source      string     `json:"source"`
	Format      string     `json:"format"`
	TextChars   int        `json:"text_chars"`
	TextHash    string     `json:"text_hash"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Result represents one extracted field within a run
type Result struct {
	ID        uuid.UUID             `json:"id"`
	RunID     uuid.UUID             `json:"run_id"`
	Field     types.FieldType       `json:"field"`
	Value     any                   `json:"value"`
	Resolved  bool                  `json:"resolved"`
	Strategy  string                `json:"strategy,omitempty"`
	Attempts  []types.AttemptRecord `json:"attempts"`
	CreatedAt time.Time             `json:"created_at"`
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	Source string
	Status string
	Limit  int
}
