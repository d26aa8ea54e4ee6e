package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"voicebot/internal/domain"
	"voicebot/internal/domain/entities"
	"voicebot/internal/ports/output"
)

// DefaultMaxDepth caps composition nesting so a cyclic catalog that somehow
// dodged registration-time validation can never hang the process.
const DefaultMaxDepth = 5

// Engine wires store, selector and renderer into the full choose+render
// pipeline, including {include} composition.
type Engine struct {
	store    *Store
	selector *Selector
	renderer *Renderer
	maxDepth int
	log      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSessionHistory enables per-user recent-use exclusion.
func WithSessionHistory(h output.SessionHistory) EngineOption {
	return func(e *Engine) { e.selector.history = h }
}

// WithMaxCompositionDepth overrides DefaultMaxDepth.
func WithMaxCompositionDepth(depth int) EngineOption {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithRandomDraw replaces the selector's random source.
func WithRandomDraw(draw func() float64) EngineOption {
	return func(e *Engine) { e.selector.draw = draw }
}

// WithLogger sets the logger used for degraded-path diagnostics.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = log
		e.selector.log = log
	}
}

// NewEngine builds the pipeline over an immutable store.
func NewEngine(store *Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		selector: NewSelector(store),
		renderer: NewRenderer(),
		maxDepth: DefaultMaxDepth,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the engine's variant store.
func (e *Engine) Store() *Store { return e.store }

// Selector returns the engine's selector.
func (e *Engine) Selector() *Selector { return e.selector }

// Compose selects a variant for key and renders it against rc. A non-empty
// userID makes both the top-level selection and every included key
// history-aware for that user.
func (e *Engine) Compose(ctx context.Context, key, userID string, rc entities.RenderContext) (string, error) {
	if rc == nil {
		rc = entities.RenderContext{}
	}
	return e.renderKey(ctx, key, userID, rc, nil)
}

// renderKey runs choose+render for one key. path holds the include chain
// above this key, used for cycle and depth enforcement.
func (e *Engine) renderKey(ctx context.Context, key, userID string, rc entities.RenderContext, path []string) (string, error) {
	for _, seen := range path {
		if seen == key {
			return "", &domain.CompositionCycleError{Path: appendPath(path, key)}
		}
	}
	if len(path) >= e.maxDepth {
		return "", &domain.CompositionCycleError{Path: appendPath(path, key)}
	}

	chosen, err := e.selector.choose(ctx, key, rc, userID)
	if err != nil {
		return "", err
	}
	res := &engineResolver{engine: e, userID: userID, rc: rc, path: appendPath(path, key)}
	return e.renderer.renderNodes(ctx, key, chosen.nodes, rc, res)
}

func appendPath(path []string, key string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, key)
}

// engineResolver routes {include} back through the full pipeline with the
// same context and user.
type engineResolver struct {
	engine *Engine
	userID string
	rc     entities.RenderContext
	path   []string
}

func (r *engineResolver) RenderInclude(ctx context.Context, key string) (string, error) {
	return r.engine.renderKey(ctx, key, r.userID, r.rc, r.path)
}

// SelfCheck renders every registered variant against its message's sample
// context (empty context when none is declared) and reports every failure.
// Run it before the process accepts traffic so template and content bugs
// surface at startup instead of mid-conversation.
func (e *Engine) SelfCheck(ctx context.Context) error {
	var errs []error
	for _, key := range e.store.keys {
		msg := e.store.messages[key]
		rc := msg.sample
		if rc == nil {
			rc = entities.RenderContext{}
		}
		for _, v := range msg.variants {
			res := &engineResolver{engine: e, rc: rc, path: []string{key}}
			if _, err := e.renderer.renderNodes(ctx, key, v.nodes, rc, res); err != nil {
				errs = append(errs, fmt.Errorf("self-check %s#%s: %w", key, v.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}
