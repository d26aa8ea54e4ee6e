package application

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/expr-lang/expr"

	"voicebot/internal/domain"
	"voicebot/internal/domain/entities"
	"voicebot/internal/ports/output"
)

// Selector picks one variant for (key, context, user) using weighted random
// draw constrained by the user's recent-use history.
type Selector struct {
	store   *Store
	history output.SessionHistory // nil disables history exclusion
	draw    func() float64        // uniform in [0, 1)
	log     *slog.Logger
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithHistory attaches a session history for recent-use exclusion.
func WithHistory(h output.SessionHistory) SelectorOption {
	return func(s *Selector) { s.history = h }
}

// WithDraw replaces the random source; tests inject deterministic draws.
func WithDraw(draw func() float64) SelectorOption {
	return func(s *Selector) { s.draw = draw }
}

// WithSelectorLogger sets the logger for degraded-path diagnostics.
func WithSelectorLogger(log *slog.Logger) SelectorOption {
	return func(s *Selector) { s.log = log }
}

// NewSelector builds a Selector over an immutable store.
func NewSelector(store *Store, opts ...SelectorOption) *Selector {
	s := &Selector{
		store: store,
		draw:  rand.Float64,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Choose selects a variant for key:
//
//  1. filter variants to those whose condition holds for rc;
//  2. exclude variants the user saw recently, unless that would empty the
//     set — history starvation degrades to repeat-allowed, it never blocks
//     a message;
//  3. weighted draw by cumulative-weight inversion;
//  4. record the chosen id into the user's history.
//
// An empty userID disables steps 2 and 4. Safe for concurrent use.
func (s *Selector) Choose(ctx context.Context, key string, rc entities.RenderContext, userID string) (entities.Variant, error) {
	chosen, err := s.choose(ctx, key, rc, userID)
	if err != nil {
		return entities.Variant{}, err
	}
	return chosen.Variant, nil
}

// choose is the engine-facing variant of Choose that keeps the compiled
// template attached.
func (s *Selector) choose(ctx context.Context, key string, rc entities.RenderContext, userID string) (*compiledVariant, error) {
	msg, err := s.store.message(key)
	if err != nil {
		return nil, err
	}

	eligible := make([]*compiledVariant, 0, len(msg.variants))
	for _, v := range msg.variants {
		if s.eligible(v, rc) {
			eligible = append(eligible, v)
		}
	}
	if len(eligible) == 0 {
		return nil, &domain.NoEligibleVariantError{Key: key}
	}

	pool := eligible
	if userID != "" && s.history != nil {
		recent, err := s.history.RecentlyUsed(ctx, userID, key)
		if err != nil {
			// History is best-effort: selection proceeds without exclusion.
			s.log.Warn("session history lookup failed", "key", key, "error", err)
		} else if len(recent) > 0 {
			seen := make(map[string]bool, len(recent))
			for _, id := range recent {
				seen[id] = true
			}
			fresh := make([]*compiledVariant, 0, len(eligible))
			for _, v := range eligible {
				if !seen[v.ID] {
					fresh = append(fresh, v)
				}
			}
			if len(fresh) > 0 {
				pool = fresh
			}
		}
	}

	chosen := s.weightedDraw(pool)

	if userID != "" && s.history != nil {
		if err := s.history.Record(ctx, userID, key, chosen.ID); err != nil {
			s.log.Warn("session history record failed", "key", key, "error", err)
		}
	}
	return chosen, nil
}

// eligible reports whether the variant's condition holds against rc.
// Unconditional variants are always eligible; a condition that fails to
// evaluate counts as false.
func (s *Selector) eligible(v *compiledVariant, rc entities.RenderContext) bool {
	if v.cond == nil {
		return true
	}
	out, err := expr.Run(v.cond, map[string]any(rc))
	if err != nil {
		s.log.Warn("variant condition evaluation failed",
			"key", v.Key, "variant", v.ID, "condition", v.Condition, "error", err)
		return false
	}
	return entities.Truthy(out)
}

// weightedDraw inverts a uniform draw over cumulative weights. Equal weights
// tie-break uniformly, with no insertion-order bias.
func (s *Selector) weightedDraw(pool []*compiledVariant) *compiledVariant {
	if len(pool) == 1 {
		return pool[0]
	}
	total := 0.0
	for _, v := range pool {
		total += v.Weight
	}
	roll := s.draw() * total
	cumulative := 0.0
	for _, v := range pool {
		cumulative += v.Weight
		if roll < cumulative {
			return v
		}
	}
	return pool[len(pool)-1]
}
