package entities

import "fmt"

// Severity classifies how bad a lint violation is.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity parses "info", "warning" or "error".
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// LintRule is one anti-pattern of the house style. Rules are static
// configuration, never derived from data.
type LintRule struct {
	Name string
	// Pattern is a literal phrase when Literal is set, otherwise a regular
	// expression. Literal patterns match case-insensitively on word
	// boundaries.
	Pattern string
	Literal bool
	// Message explains the rule to the author whose text got flagged.
	Message  string
	Severity Severity
}

// LintViolation is one rule match inside one variant. Pure output, never
// persisted.
type LintViolation struct {
	Key       string
	VariantID string
	Rule      string
	Severity  Severity
	// Excerpt is the matched text span, Start/End its byte offsets within
	// the variant text.
	Excerpt string
	Start   int
	End     int
}

func (v LintViolation) String() string {
	return fmt.Sprintf("%s %s#%s %s: %q", v.Severity, v.Key, v.VariantID, v.Rule, v.Excerpt)
}
