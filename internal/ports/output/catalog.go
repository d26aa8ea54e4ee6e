package output

import (
	"context"

	"voicebot/internal/domain/entities"
)

// VariantSource yields the raw message definitions the variant store is
// built from. Sources are read exactly once, at process start; the store is
// immutable afterwards.
type VariantSource interface {
	Load(ctx context.Context) ([]entities.MessageDef, error)
}

// LintRuleSource yields the configured house-style rule set.
type LintRuleSource interface {
	Rules() ([]entities.LintRule, error)
}
