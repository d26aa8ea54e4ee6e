package application

import (
	"fmt"
	"regexp"

	"voicebot/internal/domain/entities"
)

// Linter statically scans every registered variant against the house-style
// rule set. Patterns are compiled once at construction; scanning is a linear
// pass per variant, fast enough to run synchronously before every commit.
type Linter struct {
	rules []compiledRule
}

type compiledRule struct {
	rule entities.LintRule
	re   *regexp.Regexp
}

// NewLinter compiles the rule set. Literal rules match their phrase
// case-insensitively on word boundaries; pattern rules are used as written.
func NewLinter(rules []entities.LintRule) (*Linter, error) {
	l := &Linter{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("lint rule with empty name")
		}
		pattern := r.Pattern
		if r.Literal {
			pattern = `(?i)\b` + regexp.QuoteMeta(r.Pattern) + `\b`
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("lint rule %q: %w", r.Name, err)
		}
		l.rules = append(l.rules, compiledRule{rule: r, re: re})
	}
	return l, nil
}

// Scan applies every rule to every variant in the store. Each
// non-overlapping match contributes one violation. Violations come back
// grouped by message key (keys sorted, variants in registration order), for
// reporting.
func (l *Linter) Scan(store *Store) []entities.LintViolation {
	var out []entities.LintViolation
	for _, key := range store.keys {
		msg := store.messages[key]
		for _, v := range msg.variants {
			for _, cr := range l.rules {
				for _, span := range cr.re.FindAllStringIndex(v.Text, -1) {
					out = append(out, entities.LintViolation{
						Key:       key,
						VariantID: v.ID,
						Rule:      cr.rule.Name,
						Severity:  cr.rule.Severity,
						Excerpt:   v.Text[span[0]:span[1]],
						Start:     span[0],
						End:       span[1],
					})
				}
			}
		}
	}
	return out
}

// MaxSeverity returns the highest severity among violations, and false when
// there are none.
func MaxSeverity(violations []entities.LintViolation) (entities.Severity, bool) {
	if len(violations) == 0 {
		return 0, false
	}
	max := violations[0].Severity
	for _, v := range violations[1:] {
		if v.Severity > max {
			max = v.Severity
		}
	}
	return max, true
}
