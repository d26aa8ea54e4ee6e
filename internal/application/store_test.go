package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicebot/internal/domain"
	"voicebot/internal/domain/entities"
)

func def(key string, variants ...entities.VariantDef) entities.MessageDef {
	return entities.MessageDef{Key: key, Variants: variants}
}

func v(text string) entities.VariantDef {
	return entities.VariantDef{Text: text}
}

func mustStore(t *testing.T, defs ...entities.MessageDef) *Store {
	t.Helper()
	store, err := BuildStore(defs)
	require.NoError(t, err)
	return store
}

func TestBuildStoreAssignsStableIDs(t *testing.T) {
	store := mustStore(t, def("greeting", v("Hola {name}"), v("Buenas, {name}")))

	variants, err := store.Variants("greeting")
	require.NoError(t, err)
	require.Len(t, variants, 2)

	// Same text, same id, regardless of registration order.
	reordered := mustStore(t, def("greeting", v("Buenas, {name}"), v("Hola {name}")))
	again, err := reordered.Variants("greeting")
	require.NoError(t, err)
	assert.Equal(t, variants[0].ID, again[1].ID)
	assert.Equal(t, variants[1].ID, again[0].ID)
	assert.NotEqual(t, variants[0].ID, variants[1].ID)
}

func TestBuildStoreDefaultsWeight(t *testing.T) {
	store := mustStore(t, def("k", v("a")))
	variants, err := store.Variants("k")
	require.NoError(t, err)
	assert.Equal(t, 1.0, variants[0].Weight)
}

func TestBuildStoreRejectsEmptyKey(t *testing.T) {
	_, err := BuildStore([]entities.MessageDef{def("", v("a"))})
	require.Error(t, err)
}

func TestBuildStoreRejectsKeyWithoutVariants(t *testing.T) {
	_, err := BuildStore([]entities.MessageDef{{Key: "k"}})
	require.ErrorContains(t, err, "no variants")
}

func TestBuildStoreRejectsNegativeWeight(t *testing.T) {
	_, err := BuildStore([]entities.MessageDef{
		{Key: "k", Variants: []entities.VariantDef{{Text: "a", Weight: -1}}},
	})
	require.ErrorContains(t, err, "weight")
}

func TestBuildStoreRejectsDuplicateKey(t *testing.T) {
	_, err := BuildStore([]entities.MessageDef{def("k", v("a")), def("k", v("b"))})
	require.ErrorContains(t, err, "registered twice")
}

func TestBuildStoreRejectsDuplicateVariantText(t *testing.T) {
	_, err := BuildStore([]entities.MessageDef{def("k", v("same"), v("same"))})
	require.ErrorContains(t, err, "duplicate variant text")
}

func TestBuildStoreRejectsMalformedTemplate(t *testing.T) {
	_, err := BuildStore([]entities.MessageDef{def("k", v("{if x}open"))})
	var malformed *domain.MalformedTemplateError
	require.ErrorAs(t, err, &malformed)
}

func TestBuildStoreRejectsBadCondition(t *testing.T) {
	_, err := BuildStore([]entities.MessageDef{
		{Key: "k", Variants: []entities.VariantDef{{Text: "a", Condition: "1 +"}}},
	})
	require.ErrorContains(t, err, "condition")
}

func TestBuildStoreRejectsUnknownIncludeTarget(t *testing.T) {
	_, err := BuildStore([]entities.MessageDef{def("k", v("{include ghost}"))})
	require.ErrorContains(t, err, "unknown key")
}

func TestBuildStoreRejectsIncludeCycle(t *testing.T) {
	_, err := BuildStore([]entities.MessageDef{
		def("a", v("{include b}")),
		def("b", v("{include a}")),
	})
	var cycle *domain.CompositionCycleError
	require.ErrorAs(t, err, &cycle)
	assert.NotEmpty(t, cycle.Path)
}

func TestBuildStoreAcceptsDiamondIncludes(t *testing.T) {
	// a -> b, a -> c, b -> d, c -> d is a DAG, not a cycle.
	mustStore(t,
		def("a", v("{include b}{include c}")),
		def("b", v("{include d}")),
		def("c", v("{include d}")),
		def("d", v("leaf")),
	)
}

func TestStoreVariantsUnknownKey(t *testing.T) {
	store := mustStore(t, def("k", v("a")))
	_, err := store.Variants("ghost")
	var unknown *domain.UnknownKeyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ghost", unknown.Key)
}

func TestStoreKeysSorted(t *testing.T) {
	store := mustStore(t, def("b", v("x")), def("a", v("y")), def("c", v("z")))
	assert.Equal(t, []string{"a", "b", "c"}, store.Keys())
	assert.Equal(t, 3, store.Len())
}
