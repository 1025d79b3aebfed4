package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formkit/pkg/schema"
)

const (
	MessageRequired        = "This field is required"
	MessageInvalidEmail    = "Invalid email format"
	MessagePasswordNumber  = "Password must contain a number"
	messageMinLength       = "Minimum length is %d"
	messageMaxLength       = "Maximum length is %d"
	messagePasswordTooWeak = "Password must be at least %d characters"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Evaluate applies a single rule to a value and returns the failure message,
// if any. It is total over every rule and value: rules that only make sense
// for strings let other kinds pass through.
func Evaluate(rule schema.ValidationRule, value schema.Value) (string, bool) {
	switch rule.Type {
	case schema.RuleNotEmpty:
		return notEmpty(value)
	case schema.RuleMinLength:
		s, ok := value.Str()
		if ok && utf8.RuneCountInString(s) < rule.Value {
			return fmt.Sprintf(messageMinLength, rule.Value), true
		}
	case schema.RuleMaxLength:
		s, ok := value.Str()
		if ok && utf8.RuneCountInString(s) > rule.Value {
			return fmt.Sprintf(messageMaxLength, rule.Value), true
		}
	case schema.RuleEmail:
		s, ok := value.Str()
		if ok && !emailPattern.MatchString(s) {
			return MessageInvalidEmail, true
		}
	case schema.RulePassword:
		return password(value, rule.MinLen, rule.RequireNumber)
	}
	return "", false
}

func notEmpty(value schema.Value) (string, bool) {
	if value.IsAbsent() {
		return MessageRequired, true
	}
	if s, ok := value.Str(); ok && strings.TrimSpace(s) == "" {
		return MessageRequired, true
	}
	return "", false
}

// password checks length before digits; the digit check only runs once the
// length requirement holds.
func password(value schema.Value, minLen int, requireNumber bool) (string, bool) {
	s, ok := value.Str()
	if !ok || utf8.RuneCountInString(s) < minLen {
		return fmt.Sprintf(messagePasswordTooWeak, minLen), true
	}
	if requireNumber && strings.IndexFunc(s, isDigit) < 0 {
		return MessagePasswordNumber, true
	}
	return "", false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Validate runs rules in declaration order and returns the first failure.
// Later rules are not evaluated once one fails.
func Validate(rules []schema.ValidationRule, value schema.Value) (string, bool) {
	for _, rule := range rules {
		if msg, failed := Evaluate(rule, value); failed {
			return msg, true
		}
	}
	return "", false
}
