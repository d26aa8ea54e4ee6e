package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicebot/internal/domain"
	"voicebot/internal/domain/entities"
)

func render(t *testing.T, text string, rc entities.RenderContext) string {
	t.Helper()
	out, err := NewRenderer().Render(context.Background(), entities.Variant{Key: "k", Text: text}, rc)
	require.NoError(t, err)
	return out
}

func TestRenderInterpolation(t *testing.T) {
	out := render(t, "hi {name}, you have {count} new items", entities.RenderContext{
		"name":  "ana",
		"count": 12500,
	})
	assert.Equal(t, "hi ana, you have 12,500 new items", out)
}

func TestRenderCaseModifiers(t *testing.T) {
	rc := entities.RenderContext{"name": "ana maria", "token": "abfx92"}
	assert.Equal(t, "Ana Maria", render(t, "{name:title}", rc))
	assert.Equal(t, "ABFX92", render(t, "{token:upper}", rc))
	assert.Equal(t, "ana maria", render(t, "{name:lower}", rc))
}

func TestRenderValueKinds(t *testing.T) {
	when := time.Date(2026, time.September, 15, 10, 0, 0, 0, time.UTC)
	rc := entities.RenderContext{
		"when": when,
		"one":  entities.Count{N: 1, Singular: "day", Plural: "days"},
		"many": entities.Count{N: 3, Singular: "day", Plural: "days"},
		"rate": 0.5,
		"ok":   true,
	}
	assert.Equal(t, "Sep 15, 2026 10:00", render(t, "{when}", rc))
	assert.Equal(t, "1 day", render(t, "{one}", rc))
	assert.Equal(t, "3 days", render(t, "{many}", rc))
	assert.Equal(t, "0.5", render(t, "{rate}", rc))
	assert.Equal(t, "true", render(t, "{ok}", rc))
}

func TestRenderMissingVariable(t *testing.T) {
	_, err := NewRenderer().Render(context.Background(), entities.Variant{Key: "k", Text: "hi {name}"}, entities.RenderContext{})
	var missing *domain.MissingVariableError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "name", missing.Name)
	assert.Equal(t, "k", missing.Key)
}

func TestRenderMalformedFailsSafely(t *testing.T) {
	_, err := NewRenderer().Render(context.Background(), entities.Variant{Key: "k", Text: "{if x}oops"}, nil)
	var malformed *domain.MalformedTemplateError
	require.ErrorAs(t, err, &malformed)
}

func TestRenderConditional(t *testing.T) {
	text := "{if active}on {plan}{else}no plan{end}"
	assert.Equal(t, "on Pro", render(t, text, entities.RenderContext{"active": true, "plan": "Pro"}))
	assert.Equal(t, "no plan", render(t, text, entities.RenderContext{"active": false}))
	// Absent flag is falsy.
	assert.Equal(t, "no plan", render(t, text, entities.RenderContext{}))
}

func TestRenderTruthinessRule(t *testing.T) {
	text := "{if v}yes{else}no{end}"
	assert.Equal(t, "yes", render(t, text, entities.RenderContext{"v": "non-empty"}))
	assert.Equal(t, "no", render(t, text, entities.RenderContext{"v": ""}))
	assert.Equal(t, "yes", render(t, text, entities.RenderContext{"v": 1}))
	assert.Equal(t, "no", render(t, text, entities.RenderContext{"v": 0}))
	assert.Equal(t, "yes", render(t, text, entities.RenderContext{"v": []string{"x"}}))
	assert.Equal(t, "no", render(t, text, entities.RenderContext{"v": []string{}}))
}

func TestRenderEachList(t *testing.T) {
	text := "{each x in items}{x}; {end}"
	assert.Equal(t, "", render(t, text, entities.RenderContext{"items": []string{}}))
	assert.Equal(t, "a; b; ", render(t, text, entities.RenderContext{"items": []string{"a", "b"}}))
}

func TestRenderEachShadowsContext(t *testing.T) {
	out := render(t, "{x}|{each x in items}{x}{end}|{x}", entities.RenderContext{
		"x":     "outer",
		"items": []string{"inner"},
	})
	assert.Equal(t, "outer|inner|outer", out)
}

func TestRenderEachMissingList(t *testing.T) {
	_, err := NewRenderer().Render(context.Background(), entities.Variant{Key: "k", Text: "{each x in items}{x}{end}"}, entities.RenderContext{})
	var missing *domain.MissingVariableError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "items", missing.Name)
}

func TestRenderEachNonList(t *testing.T) {
	_, err := NewRenderer().Render(context.Background(), entities.Variant{Key: "k", Text: "{each x in items}{x}{end}"},
		entities.RenderContext{"items": 42})
	require.ErrorContains(t, err, "not a list")
}

func TestRenderIdempotent(t *testing.T) {
	v := entities.Variant{Key: "k", Text: "hi {name}, {if vip}gold{end}"}
	rc := entities.RenderContext{"name": "ana", "vip": true}
	first, err := NewRenderer().Render(context.Background(), v, rc)
	require.NoError(t, err)
	second, err := NewRenderer().Render(context.Background(), v, rc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderIncludeNeedsEngine(t *testing.T) {
	_, err := NewRenderer().Render(context.Background(), entities.Variant{Key: "k", Text: "{include other}"}, nil)
	require.ErrorContains(t, err, "engine")
}

func TestEngineComposition(t *testing.T) {
	store := mustStore(t,
		def("outer", v("before [{include inner}] after")),
		def("inner", v("nested {name}")),
	)
	engine := NewEngine(store)
	out, err := engine.Compose(context.Background(), "outer", "", entities.RenderContext{"name": "ana"})
	require.NoError(t, err)
	assert.Equal(t, "before [nested ana] after", out)
}

func TestEngineCompositionSharesHistoryUser(t *testing.T) {
	store := mustStore(t,
		def("outer", v("{include inner}")),
		def("inner", v("a"), v("b")),
	)
	hist := newRecordingHistory()
	engine := NewEngine(store, WithSessionHistory(hist))

	_, err := engine.Compose(context.Background(), "outer", "alice", nil)
	require.NoError(t, err)
	// Both the outer and the included selection were recorded for alice.
	assert.Equal(t, []string{"outer", "inner"}, hist.recordedKeys)
}

func TestEngineCompositionDepthCap(t *testing.T) {
	store := mustStore(t,
		def("a", v("{include b}")),
		def("b", v("{include c}")),
		def("c", v("leaf")),
	)

	// Depth 3 allows the whole chain.
	engine := NewEngine(store, WithMaxCompositionDepth(3))
	out, err := engine.Compose(context.Background(), "a", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "leaf", out)

	// Depth 2 cuts it off with a typed error, not resource exhaustion.
	engine = NewEngine(store, WithMaxCompositionDepth(2))
	_, err = engine.Compose(context.Background(), "a", "", nil)
	var cycle *domain.CompositionCycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "c"}, cycle.Path)
}

func TestEngineSelfCheck(t *testing.T) {
	store := mustStore(t,
		entities.MessageDef{
			Key:      "greeting",
			Sample:   entities.RenderContext{"name": "ana"},
			Variants: []entities.VariantDef{{Text: "hi {name}"}, {Text: "yo {name}"}},
		},
	)
	require.NoError(t, NewEngine(store).SelfCheck(context.Background()))
}

func TestEngineSelfCheckReportsEveryFailure(t *testing.T) {
	store := mustStore(t,
		def("one", v("hi {name}")),
		def("two", v("bye {name}")),
	)
	err := NewEngine(store).SelfCheck(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "one#")
	assert.ErrorContains(t, err, "two#")
}
