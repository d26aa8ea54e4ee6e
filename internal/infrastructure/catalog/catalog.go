// Package catalog loads message variant definitions and the house-style lint
// rule set from TOML, with defaults embedded in the binary.
package catalog

import (
	"context"
	"embed"
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"voicebot/internal/domain/entities"
	"voicebot/internal/ports/output"
)

//go:embed voice.en.toml rules.toml
var builtinFS embed.FS

// Ensure the TOML loaders implement the catalog ports.
var (
	_ output.VariantSource  = (*Source)(nil)
	_ output.LintRuleSource = (*RuleSet)(nil)
)

type catalogFile struct {
	Messages map[string]messageDef `toml:"messages"`
}

type messageDef struct {
	Sample   map[string]any `toml:"sample"`
	Variants []variantDef   `toml:"variants"`
}

type variantDef struct {
	Text   string  `toml:"text"`
	Weight float64 `toml:"weight"`
	When   string  `toml:"when"`
}

// Source is a VariantSource backed by one TOML document.
type Source struct {
	data []byte
}

// NewEmbeddedSource returns the catalog compiled into the binary.
func NewEmbeddedSource() *Source {
	data, err := builtinFS.ReadFile("voice.en.toml")
	if err != nil {
		// The file is embedded; a read failure is a build defect.
		panic(fmt.Sprintf("catalog: embedded voice.en.toml: %v", err))
	}
	return &Source{data: data}
}

// NewSource returns a catalog over raw TOML, for tests and external files.
func NewSource(data []byte) *Source {
	return &Source{data: data}
}

// Load implements output.VariantSource. Keys come back sorted so store
// builds are deterministic.
func (s *Source) Load(ctx context.Context) ([]entities.MessageDef, error) {
	var file catalogFile
	if err := toml.Unmarshal(s.data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	keys := make([]string, 0, len(file.Messages))
	for key := range file.Messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	defs := make([]entities.MessageDef, 0, len(keys))
	for _, key := range keys {
		md := file.Messages[key]
		def := entities.MessageDef{Key: key, Sample: normalizeSample(md.Sample)}
		for _, vd := range md.Variants {
			def.Variants = append(def.Variants, entities.VariantDef{
				Text:      vd.Text,
				Weight:    vd.Weight,
				Condition: vd.When,
			})
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// normalizeSample converts TOML-shaped sample values into their engine
// types. An inline table {n, singular, plural} becomes an entities.Count;
// TOML arrays of tables and nested values pass through as decoded.
func normalizeSample(sample map[string]any) entities.RenderContext {
	if sample == nil {
		return nil
	}
	rc := make(entities.RenderContext, len(sample))
	for k, v := range sample {
		rc[k] = normalizeValue(v)
	}
	return rc
}

func normalizeValue(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if len(m) == 3 {
		n, nOK := m["n"].(int64)
		singular, sOK := m["singular"].(string)
		plural, pOK := m["plural"].(string)
		if nOK && sOK && pOK {
			return entities.Count{N: int(n), Singular: singular, Plural: plural}
		}
	}
	out := make(map[string]any, len(m))
	for k, inner := range m {
		out[k] = normalizeValue(inner)
	}
	return out
}

type rulesFile struct {
	Rules []ruleDef `toml:"rules"`
}

type ruleDef struct {
	Name     string `toml:"name"`
	Pattern  string `toml:"pattern"`
	Literal  bool   `toml:"literal"`
	Severity string `toml:"severity"`
	Message  string `toml:"message"`
}

// RuleSet is a LintRuleSource backed by one TOML document.
type RuleSet struct {
	data []byte
}

// NewEmbeddedRules returns the rule set compiled into the binary.
func NewEmbeddedRules() *RuleSet {
	data, err := builtinFS.ReadFile("rules.toml")
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded rules.toml: %v", err))
	}
	return &RuleSet{data: data}
}

// NewRuleSet returns a rule set over raw TOML.
func NewRuleSet(data []byte) *RuleSet {
	return &RuleSet{data: data}
}

// Rules implements output.LintRuleSource.
func (r *RuleSet) Rules() ([]entities.LintRule, error) {
	var file rulesFile
	if err := toml.Unmarshal(r.data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse rules: %w", err)
	}

	rules := make([]entities.LintRule, 0, len(file.Rules))
	for _, rd := range file.Rules {
		severity, err := entities.ParseSeverity(rd.Severity)
		if err != nil {
			return nil, fmt.Errorf("catalog: rule %q: %w", rd.Name, err)
		}
		rules = append(rules, entities.LintRule{
			Name:     rd.Name,
			Pattern:  rd.Pattern,
			Literal:  rd.Literal,
			Message:  rd.Message,
			Severity: severity,
		})
	}
	return rules, nil
}
