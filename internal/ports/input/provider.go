package input

import (
	"context"

	"voicebot/internal/domain/entities"
)

// Reply is what a provider hands back to the dispatch layer: the rendered
// text plus an opaque UI affordance (e.g. message components) passed through
// unchanged. Keyboard is nil when the caller supplied none.
type Reply struct {
	Text     string
	Keyboard any
}

// ComposeConfig collects the per-call options for one message.
type ComposeConfig struct {
	// UserID enables history-aware variation when non-empty.
	UserID   string
	Values   entities.RenderContext
	Keyboard any
}

// ComposeOption configures a single Compose call.
type ComposeOption func(*ComposeConfig)

// WithUser enables recent-use exclusion for the given user.
func WithUser(userID string) ComposeOption {
	return func(c *ComposeConfig) { c.UserID = userID }
}

// WithValue adds one named context value.
func WithValue(name string, v any) ComposeOption {
	return func(c *ComposeConfig) { c.Values[name] = v }
}

// WithValues merges a whole context map.
func WithValues(values entities.RenderContext) ComposeOption {
	return func(c *ComposeConfig) {
		for k, v := range values {
			c.Values[k] = v
		}
	}
}

// WithKeyboard attaches an opaque UI affordance that is returned unchanged.
func WithKeyboard(keyboard any) ComposeOption {
	return func(c *ComposeConfig) { c.Keyboard = keyboard }
}

// ApplyComposeOptions folds opts into a fresh config.
func ApplyComposeOptions(opts []ComposeOption) ComposeConfig {
	cfg := ComposeConfig{Values: entities.RenderContext{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Messenger is the provider contract consumed by the dispatch layer.
// Selector and renderer errors propagate unchanged.
type Messenger interface {
	Compose(ctx context.Context, key string, opts ...ComposeOption) (Reply, error)
	Surface(namespace string) Surface
	Keys() []string
}

// Surface is a namespace-scoped view of the same registry ("admin.vip",
// "user.start", ...). Grouping metadata only — no state of its own.
type Surface interface {
	Namespace() string
	Compose(ctx context.Context, key string, opts ...ComposeOption) (Reply, error)
	Keys() []string
}
