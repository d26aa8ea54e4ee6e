package domain

import (
	"fmt"
	"strings"
)

// Domain errors. All of them are deterministic for a given input, so none is
// worth retrying; callers fall back to a generic safe message instead of
// crashing the interaction.

// UnknownKeyError means the caller asked for a message key that was never
// registered. Programming error at the call site.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("message key %q is not registered", e.Key)
}

// NoEligibleVariantError means every variant of a condition-gated key
// evaluated false against the supplied context.
type NoEligibleVariantError struct {
	Key string
}

func (e *NoEligibleVariantError) Error() string {
	return fmt.Sprintf("no eligible variant for key %q: context under-specified", e.Key)
}

// MissingVariableError names the placeholder the context did not provide.
type MissingVariableError struct {
	Key  string
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("render %q: missing context variable %q", e.Key, e.Name)
}

// MalformedTemplateError reports unbalanced or unparseable template syntax.
// The store catches these at registration time; the renderer still fails
// safely if handed a raw variant.
type MalformedTemplateError struct {
	Key    string
	Detail string
	Pos    int
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("template %q: %s (at offset %d)", e.Key, e.Detail, e.Pos)
}

// CompositionCycleError reports a key that includes itself transitively, or
// a composition chain deeper than the configured maximum.
type CompositionCycleError struct {
	Path []string
}

func (e *CompositionCycleError) Error() string {
	return fmt.Sprintf("composition cycle or depth overflow: %s", strings.Join(e.Path, " -> "))
}
