package extraction

import (
	"context"

	"github.com/jonathan/resume-parser/internal/types"
)

// FieldExtractor walks one field's strategy chain. Strategies run in
// configured order exactly: a failed or empty attempt is recorded and
// the chain advances, the first non-empty result wins and stops the
// chain, and no strategy kind runs twice.
type FieldExtractor struct {
	field      types.FieldType
	strategies []types.StrategyType
	factory    *Factory
}

// NewFieldExtractor builds a chain for one field from an ordered
// strategy list, normally the slice a validated config returns.
func NewFieldExtractor(field types.FieldType, strategies []types.StrategyType, factory *Factory) *FieldExtractor {
	ordered := make([]types.StrategyType, len(strategies))
	copy(ordered, strategies)
	return &FieldExtractor{field: field, strategies: ordered, factory: factory}
}

// Field returns the field this chain extracts.
func (e *FieldExtractor) Field() types.FieldType {
	return e.field
}

// Extract runs the chain against raw resume text. The outcome always
// carries one attempt record per strategy tried; when every strategy
// fails or comes back empty the value is absent, shaped for the field
// (empty list for list fields).
func (e *FieldExtractor) Extract(ctx context.Context, rawText string) types.FieldOutcome {
	attempts := make([]types.AttemptRecord, 0, len(e.strategies))

	for _, kind := range e.strategies {
		if ctx.Err() != nil {
			break
		}

		strategy, err := e.factory.Create(ctx, e.field, kind)
		if err != nil {
			attempts = append(attempts, types.AttemptRecord{
				Strategy: kind,
				Outcome:  types.AttemptFailed,
				Detail:   err.Error(),
			})
			continue
		}

		value, err := strategy.Extract(ctx, rawText, e.field)
		if err != nil {
			attempts = append(attempts, types.AttemptRecord{
				Strategy: kind,
				Outcome:  types.AttemptFailed,
				Detail:   err.Error(),
			})
			continue
		}
		if value.IsEmpty() {
			attempts = append(attempts, types.AttemptRecord{
				Strategy: kind,
				Outcome:  types.AttemptEmpty,
			})
			continue
		}

		attempts = append(attempts, types.AttemptRecord{
			Strategy: kind,
			Outcome:  types.AttemptResolved,
		})
		return types.FieldOutcome{
			Field:    e.field,
			Value:    value,
			Resolved: true,
			Winner:   kind,
			Attempts: attempts,
		}
	}

	return types.FieldOutcome{
		Field:    e.field,
		Value:    e.exhaustedValue(),
		Attempts: attempts,
	}
}

// exhaustedValue is what an unresolved field reports: nil for scalars,
// an empty list for list fields.
func (e *FieldExtractor) exhaustedValue() types.FieldValue {
	if spec, ok := SpecFor(e.field); ok && spec.Shape == types.ValueList {
		return types.List(nil)
	}
	return types.Absent()
}
