// internal/domain/checkin/parser.go
package checkin

import (
	"fmt"
	"regexp"
	"strconv"
)

// Result maps field names to extracted display values. Values persist across
// rounds: a later round only replaces a field it successfully re-extracts.
type Result map[string]string

// Field declares one result field and its default sentinel value.
type Field struct {
	Key     string
	Default string
}

// NewResult seeds a Result with every declared field at its default.
func NewResult(fields []Field) Result {
	r := make(Result, len(fields))
	for _, f := range fields {
		r[f.Key] = f.Default
	}
	return r
}

// Rule extracts one field from reply text. Either Pattern or Func is set:
// Pattern rules capture a submatch and optionally run it through Format,
// Func rules get the whole text. A rule that fails to match, or whose
// Format/Func reports !ok, leaves the field untouched.
type Rule struct {
	Field   string
	Pattern *regexp.Regexp
	Format  func(groups []string) (string, bool)
	Func    func(text string) (string, bool)
}

// Extract runs the rule set over text and merges successful extractions into
// a copy of existing. It never removes or regresses a field and never fails
// on malformed input.
func Extract(text string, rules []Rule, existing Result) Result {
	out := make(Result, len(existing))
	for k, v := range existing {
		out[k] = v
	}
	for _, rule := range rules {
		var value string
		var ok bool
		switch {
		case rule.Func != nil:
			value, ok = rule.Func(text)
		case rule.Pattern != nil:
			groups := rule.Pattern.FindStringSubmatch(text)
			if groups == nil {
				continue
			}
			if rule.Format != nil {
				value, ok = rule.Format(groups)
			} else {
				value, ok = groups[1], true
			}
		}
		if ok {
			out[rule.Field] = value
		}
	}
	return out
}

// suffixed renders capture group n with a fixed unit suffix.
func suffixed(n int, suffix string) func([]string) (string, bool) {
	return func(groups []string) (string, bool) {
		return groups[n] + suffix, true
	}
}

// intSuffixed coerces a float-looking capture to an integer display value.
// Coercion failures report !ok so the field keeps its prior value.
func intSuffixed(n int, suffix string) func([]string) (string, bool) {
	return func(groups []string) (string, bool) {
		f, err := strconv.ParseFloat(groups[n], 64)
		if err != nil {
			return "", false
		}
		return fmt.Sprintf("%d%s", int(f), suffix), true
	}
}
