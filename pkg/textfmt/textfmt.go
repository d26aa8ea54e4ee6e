// Package textfmt implements the fixed stringification rules for context
// values and the explicit case modifiers applied to placeholders.
package textfmt

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"voicebot/internal/domain/entities"
)

// DateLayout is the single layout used when interpolating time values.
const DateLayout = "Jan 2, 2006 15:04"

var printer = message.NewPrinter(language.English)

// Stringify converts a context value to its user-facing form:
//
//   - strings render verbatim
//   - integers render with English digit grouping ("12,500")
//   - floats render in their shortest exact form
//   - booleans render as "true"/"false"
//   - time.Time renders with DateLayout
//   - entities.Count renders as "<n> <singular|plural>"
//   - fmt.Stringer values render via String()
//   - anything else falls back to fmt.Sprint
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return printer.Sprintf("%d", t)
	case int8:
		return printer.Sprintf("%d", t)
	case int16:
		return printer.Sprintf("%d", t)
	case int32:
		return printer.Sprintf("%d", t)
	case int64:
		return printer.Sprintf("%d", t)
	case uint:
		return printer.Sprintf("%d", t)
	case uint8:
		return printer.Sprintf("%d", t)
	case uint16:
		return printer.Sprintf("%d", t)
	case uint32:
		return printer.Sprintf("%d", t)
	case uint64:
		return printer.Sprintf("%d", t)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(DateLayout)
	case entities.Count:
		word := t.Plural
		if t.N == 1 {
			word = t.Singular
		}
		return printer.Sprintf("%d", t.N) + " " + word
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// ApplyCase applies a placeholder case modifier ("title", "upper", "lower")
// to s. Unknown modifiers report ok=false so the template layer can reject
// them at registration time.
//
// Casers are created per call: cases.Caser is not safe for concurrent use.
func ApplyCase(s, modifier string) (string, bool) {
	switch modifier {
	case "":
		return s, true
	case "title":
		return cases.Title(language.English).String(s), true
	case "upper":
		return cases.Upper(language.English).String(s), true
	case "lower":
		return cases.Lower(language.English).String(s), true
	}
	return s, false
}
