package extraction

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/resume-parser/internal/ner"
	"github.com/jonathan/resume-parser/internal/types"
)

// strategyBuilder constructs one strategy for a field, drawing shared
// backends from the factory.
type strategyBuilder func(ctx context.Context, f *Factory, spec FieldSpec) (Strategy, error)

// registry is the static table of buildable (field, strategy) pairs,
// populated at process start. Regex extraction only works for fields
// with patterns, so it is registered for email alone.
var registry = map[types.FieldType]map[types.StrategyType]strategyBuilder{
	types.FieldName: {
		types.StrategyNER: buildNER,
		types.StrategyLLM: buildLLM,
	},
	types.FieldEmail: {
		types.StrategyRegex: buildRegex,
		types.StrategyNER:   buildNER,
		types.StrategyLLM:   buildLLM,
	},
	types.FieldSkills: {
		types.StrategyNER: buildNER,
		types.StrategyLLM: buildLLM,
	},
}

// FactoryConfig wires the shared backends. Nil fields fall back to
// defaults: a NER client pointed at localhost, and no LLM backend,
// which makes every llm attempt fail gracefully instead of crashing
// the parse.
type FactoryConfig struct {
	NewRecognizer func() EntityRecognizer
	NewGenerator  func(ctx context.Context) (TextGenerator, error)
}

// Factory builds strategies for (field, strategy) pairs and memoizes
// them, together with the expensive backends they share, for the
// process lifetime. Lazy initialization is guarded so at most one
// goroutine initializes any given key at a time; a failed
// initialization is retried on the next request instead of being
// cached.
type Factory struct {
	cfg FactoryConfig

	mu         sync.RWMutex
	strategies map[string]Strategy
	recognizer EntityRecognizer
	generator  TextGenerator

	group singleflight.Group
}

// NewFactory creates a strategy factory.
func NewFactory(cfg FactoryConfig) *Factory {
	return &Factory{
		cfg:        cfg,
		strategies: make(map[string]Strategy),
	}
}

// Supported reports whether a (field, strategy) pair has a registration.
func Supported(field types.FieldType, strategy types.StrategyType) bool {
	_, ok := registry[field][strategy]
	return ok
}

// Create returns the strategy for a (field, strategy) pair, building
// and caching it on first use. Pairs without a registration fail with
// UnsupportedStrategyError.
func (f *Factory) Create(ctx context.Context, field types.FieldType, strategy types.StrategyType) (Strategy, error) {
	build, ok := registry[field][strategy]
	if !ok {
		return nil, &UnsupportedStrategyError{Field: field, Strategy: strategy}
	}
	spec, ok := SpecFor(field)
	if !ok {
		return nil, &UnsupportedStrategyError{Field: field, Strategy: strategy}
	}

	key := field.String() + "/" + strategy.String()
	f.mu.RLock()
	cached, ok := f.strategies[key]
	f.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := f.group.Do(key, func() (any, error) {
		f.mu.RLock()
		cached, ok := f.strategies[key]
		f.mu.RUnlock()
		if ok {
			return cached, nil
		}
		built, err := build(ctx, f, spec)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.strategies[key] = built
		f.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Strategy), nil
}

// sharedRecognizer lazily initializes the NER backend shared by every
// NER strategy.
func (f *Factory) sharedRecognizer() (EntityRecognizer, error) {
	f.mu.RLock()
	r := f.recognizer
	f.mu.RUnlock()
	if r != nil {
		return r, nil
	}

	v, err, _ := f.group.Do("backend/ner", func() (any, error) {
		f.mu.RLock()
		r := f.recognizer
		f.mu.RUnlock()
		if r != nil {
			return r, nil
		}
		var built EntityRecognizer
		if f.cfg.NewRecognizer != nil {
			built = f.cfg.NewRecognizer()
		} else {
			built = ner.NewClient(ner.Config{})
		}
		f.mu.Lock()
		f.recognizer = built
		f.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(EntityRecognizer), nil
}

// sharedGenerator lazily initializes the LLM backend shared by every
// LLM strategy.
func (f *Factory) sharedGenerator(ctx context.Context) (TextGenerator, error) {
	f.mu.RLock()
	g := f.generator
	f.mu.RUnlock()
	if g != nil {
		return g, nil
	}

	v, err, _ := f.group.Do("backend/llm", func() (any, error) {
		f.mu.RLock()
		g := f.generator
		f.mu.RUnlock()
		if g != nil {
			return g, nil
		}
		if f.cfg.NewGenerator == nil {
			return nil, fmt.Errorf("no LLM backend configured")
		}
		built, err := f.cfg.NewGenerator(ctx)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.generator = built
		f.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(TextGenerator), nil
}

// Close releases backend resources the factory initialized.
func (f *Factory) Close() error {
	f.mu.Lock()
	generator := f.generator
	f.generator = nil
	f.mu.Unlock()

	if closer, ok := generator.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func buildRegex(_ context.Context, _ *Factory, spec FieldSpec) (Strategy, error) {
	return NewRegexStrategy(spec)
}

func buildNER(_ context.Context, f *Factory, spec FieldSpec) (Strategy, error) {
	recognizer, err := f.sharedRecognizer()
	if err != nil {
		return nil, err
	}
	return NewNERStrategy(spec, recognizer), nil
}

func buildLLM(ctx context.Context, f *Factory, spec FieldSpec) (Strategy, error) {
	generator, err := f.sharedGenerator(ctx)
	if err != nil {
		return nil, err
	}
	return NewLLMStrategy(spec, generator), nil
}
