package application

import (
	"context"
	"strings"

	"voicebot/internal/ports/input"
)

// Ensure Provider implements the input.Messenger port.
var _ input.Messenger = (*Provider)(nil)

// Provider is the thin façade the dispatch layer talks to. It owns no state:
// it applies the call options, delegates to the engine and pairs the
// rendered text with the caller-supplied keyboard, untouched.
type Provider struct {
	engine *Engine
}

func NewProvider(engine *Engine) *Provider {
	return &Provider{engine: engine}
}

// Compose renders the message identified by key. Selector and renderer
// errors propagate unchanged.
func (p *Provider) Compose(ctx context.Context, key string, opts ...input.ComposeOption) (input.Reply, error) {
	cfg := input.ApplyComposeOptions(opts)
	text, err := p.engine.Compose(ctx, key, cfg.UserID, cfg.Values)
	if err != nil {
		return input.Reply{}, err
	}
	return input.Reply{Text: text, Keyboard: cfg.Keyboard}, nil
}

// Keys lists every registered message key.
func (p *Provider) Keys() []string {
	return p.engine.Store().Keys()
}

// Surface returns a namespace-scoped view, e.g. Surface("admin.vip").
// The registry stays flat; the surface only prefixes keys and filters
// listings.
func (p *Provider) Surface(namespace string) input.Surface {
	return &surface{provider: p, namespace: namespace}
}

type surface struct {
	provider  *Provider
	namespace string
}

func (s *surface) Namespace() string { return s.namespace }

func (s *surface) Compose(ctx context.Context, key string, opts ...input.ComposeOption) (input.Reply, error) {
	return s.provider.Compose(ctx, s.namespace+"."+key, opts...)
}

func (s *surface) Keys() []string {
	prefix := s.namespace + "."
	var out []string
	for _, key := range s.provider.Keys() {
		if strings.HasPrefix(key, prefix) {
			out = append(out, strings.TrimPrefix(key, prefix))
		}
	}
	return out
}
