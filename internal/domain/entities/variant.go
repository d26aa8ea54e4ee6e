package entities

// Variant is one phrasing for a message key. Variants are registered once at
// store build time and never mutated afterwards.
type Variant struct {
	// Key is the full message key this variant belongs to,
	// e.g. "admin.vip.token_generated".
	Key string
	// ID is a stable identifier derived from the template text; it survives
	// process restarts and catalog reordering, which is what makes
	// recent-use exclusion meaningful.
	ID string
	// Text is the raw template.
	Text string
	// Weight is the relative selection probability. Always > 0.
	Weight float64
	// Condition is an optional expression over the render context; an empty
	// string means the variant is always eligible.
	Condition string
}

// VariantDef is an unvalidated variant as it comes out of a catalog source.
type VariantDef struct {
	Text      string
	Weight    float64
	Condition string
}

// MessageDef is one message key as it comes out of a catalog source, before
// validation and compilation.
type MessageDef struct {
	Key string
	// Sample is a representative render context used by the startup
	// self-check to prove every variant actually renders.
	Sample   RenderContext
	Variants []VariantDef
}

// RenderContext carries the named values for a single render call:
// interpolation values, condition flags and list data. It is scoped to one
// call and never retained.
type RenderContext map[string]any

// Clone returns a shallow copy, so callers can layer per-call values on top
// of a shared base without mutating it.
func (rc RenderContext) Clone() RenderContext {
	out := make(RenderContext, len(rc))
	for k, v := range rc {
		out[k] = v
	}
	return out
}

// Count is a pluralizable quantity. It renders as "1 day" / "3 days"
// according to the fixed stringification rules.
type Count struct {
	N        int
	Singular string
	Plural   string
}
