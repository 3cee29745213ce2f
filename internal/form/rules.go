package form

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every binding; validator.Validate is safe for concurrent use.
var validate = validator.New()

type ruleKind int

const (
	ruleTag ruleKind = iota
	rulePattern
	ruleMatch
)

// Rule is one validation constraint attached to a field.
// Message is what the field shows when the rule fails.
type Rule struct {
	kind    ruleKind
	tag     string
	pattern *regexp.Regexp
	other   string
	Message string
}

// Required fails on empty text, an unchecked checkbox or an unset select.
func Required(message string) Rule {
	return Rule{kind: ruleTag, tag: "required", Message: message}
}

// Email fails on a non-empty value that is not an e-mail address.
func Email(message string) Rule {
	return Rule{kind: ruleTag, tag: "omitempty,email", Message: message}
}

// MinLength fails on a non-empty value shorter than n characters.
func MinLength(n int, message string) Rule {
	return Rule{kind: ruleTag, tag: fmt.Sprintf("omitempty,min=%d", n), Message: message}
}

// Pattern fails on a non-empty value that does not match expr.
// It panics if expr does not compile, like regexp.MustCompile.
func Pattern(expr string, message string) Rule {
	return Rule{kind: rulePattern, pattern: regexp.MustCompile(expr), Message: message}
}

// Matches fails when the value differs from the value of the named field.
func Matches(field string, message string) Rule {
	return Rule{kind: ruleMatch, other: field, Message: message}
}

// check reports whether value satisfies the rule given all current values.
func (r Rule) check(value any, values Values) bool {
	switch r.kind {
	case rulePattern:
		s := fmt.Sprint(value)
		if value == nil || s == "" {
			return true
		}
		return r.pattern.MatchString(s)
	case ruleMatch:
		return validate.VarWithValue(value, values[r.other], "eqcsfield") == nil
	default:
		return validate.Var(value, r.tag) == nil
	}
}

// Values maps field names to their current values.
// Text and select fields hold strings, checkboxes hold bools.
type Values map[string]any

// String returns the value of a text or select field, or "".
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Errors maps field names to the message of their first failing rule.
type Errors map[string]string

// Validate checks every field against its rules and returns the failures.
// The first failing rule of a field wins. An empty result means the values are valid.
func Validate(fields []Field, values Values) Errors {
	errs := Errors{}
	for _, f := range fields {
		value, ok := values[f.Name()]
		if !ok {
			value = f.Default()
		}
		for _, rule := range f.Rules() {
			if !rule.check(value, values) {
				errs[f.Name()] = rule.Message
				break
			}
		}
	}
	return errs
}
