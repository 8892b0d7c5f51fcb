package extraction

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/types"
)

// Coordinator runs every configured field chain against one piece of
// raw resume text and assembles the per-field outcomes into a single
// record. Fields are independent: one field exhausting its chain never
// disturbs another.
type Coordinator struct {
	extraction *config.Extraction
	factory    *Factory
	parallel   bool
	logger     *zerolog.Logger
}

// NewCoordinator builds a coordinator. A nil extraction config falls
// back to the defaults, a nil logger to a no-op one.
func NewCoordinator(extraction *config.Extraction, factory *Factory, logger *zerolog.Logger) *Coordinator {
	if extraction == nil {
		extraction = config.DefaultExtraction()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Coordinator{extraction: extraction, factory: factory, logger: logger}
}

// SetParallel toggles concurrent field chains. Output order and
// per-field behavior are identical either way.
func (c *Coordinator) SetParallel(on bool) {
	c.parallel = on
}

// Extraction returns the config the coordinator runs with.
func (c *Coordinator) Extraction() *config.Extraction {
	return c.extraction
}

// ExtractAll extracts every configured field from raw resume text.
// Blank input fails up front with FieldExtractionError; after that,
// strategy failures are absorbed by their field's chain and the call
// always returns a complete record.
func (c *Coordinator) ExtractAll(ctx context.Context, rawText string) (*types.ResumeData, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, &FieldExtractionError{Message: "raw text is empty"}
	}

	fields := c.extraction.Fields()
	outcomes := make([]types.FieldOutcome, len(fields))

	run := func(i int, field types.FieldType) {
		chain := NewFieldExtractor(field, c.extraction.Strategies(field), c.factory)
		outcomes[i] = chain.Extract(ctx, rawText)
	}

	if c.parallel && len(fields) > 1 {
		var g errgroup.Group
		for i, field := range fields {
			g.Go(func() error {
				run(i, field)
				return nil
			})
		}
		// Chains absorb their own failures, so Wait only synchronizes.
		_ = g.Wait()
	} else {
		for i, field := range fields {
			run(i, field)
		}
	}

	for _, o := range outcomes {
		evt := c.logger.Debug().
			Str("field", o.Field.String()).
			Bool("resolved", o.Resolved).
			Int("attempts", len(o.Attempts))
		if o.Resolved {
			evt = evt.Str("strategy", o.Winner.String())
		}
		evt.Msg("field chain finished")
	}

	return types.NewResumeData(outcomes), nil
}
