package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RuleType tags a ValidationRule variant.
type RuleType string

const (
	RuleNotEmpty  RuleType = "notEmpty"
	RuleMinLength RuleType = "minLength"
	RuleMaxLength RuleType = "maxLength"
	RuleEmail     RuleType = "email"
	RulePassword  RuleType = "password"
)

// ValidRuleTypes lists the supported rule tags.
var ValidRuleTypes = map[RuleType]bool{
	RuleNotEmpty:  true,
	RuleMinLength: true,
	RuleMaxLength: true,
	RuleEmail:     true,
	RulePassword:  true,
}

// ValidationRule is a tagged variant. Only the parameters belonging to Type
// are meaningful: Value for minLength/maxLength, MinLen and RequireNumber for
// password. Use the constructors below instead of composite literals.
type ValidationRule struct {
	Type          RuleType `validate:"required,ruletype"`
	Value         int      `validate:"gte=0"`
	MinLen        int      `validate:"gte=0"`
	RequireNumber bool
}

func NotEmpty() ValidationRule { return ValidationRule{Type: RuleNotEmpty} }

func MinLength(n int) ValidationRule { return ValidationRule{Type: RuleMinLength, Value: n} }

func MaxLength(n int) ValidationRule { return ValidationRule{Type: RuleMaxLength, Value: n} }

func Email() ValidationRule { return ValidationRule{Type: RuleEmail} }

func Password(minLen int, requireNumber bool) ValidationRule {
	return ValidationRule{Type: RulePassword, MinLen: minLen, RequireNumber: requireNumber}
}

// ruleWire is the persisted shape of a rule: {"type": ..., <params>}.
type ruleWire struct {
	Type          RuleType `json:"type" yaml:"type"`
	Value         *int     `json:"value,omitempty" yaml:"value,omitempty"`
	MinLen        *int     `json:"minLen,omitempty" yaml:"minLen,omitempty"`
	RequireNumber *bool    `json:"requireNumber,omitempty" yaml:"requireNumber,omitempty"`
}

func (r ValidationRule) wire() ruleWire {
	out := ruleWire{Type: r.Type}
	switch r.Type {
	case RuleMinLength, RuleMaxLength:
		value := r.Value
		out.Value = &value
	case RulePassword:
		minLen := r.MinLen
		requireNumber := r.RequireNumber
		out.MinLen = &minLen
		out.RequireNumber = &requireNumber
	}
	return out
}

func (w ruleWire) rule() (ValidationRule, error) {
	switch w.Type {
	case RuleNotEmpty, RuleEmail:
		return ValidationRule{Type: w.Type}, nil
	case RuleMinLength, RuleMaxLength:
		if w.Value == nil {
			return ValidationRule{}, fmt.Errorf("%w: %s requires value", ErrInvalidRule, w.Type)
		}
		if *w.Value < 0 {
			return ValidationRule{}, fmt.Errorf("%w: %s value must be >= 0, got %d", ErrInvalidRule, w.Type, *w.Value)
		}
		return ValidationRule{Type: w.Type, Value: *w.Value}, nil
	case RulePassword:
		if w.MinLen == nil {
			return ValidationRule{}, fmt.Errorf("%w: password requires minLen", ErrInvalidRule)
		}
		if *w.MinLen < 0 {
			return ValidationRule{}, fmt.Errorf("%w: password minLen must be >= 0, got %d", ErrInvalidRule, *w.MinLen)
		}
		rule := ValidationRule{Type: RulePassword, MinLen: *w.MinLen}
		if w.RequireNumber != nil {
			rule.RequireNumber = *w.RequireNumber
		}
		return rule, nil
	case "":
		return ValidationRule{}, fmt.Errorf("%w: missing type", ErrInvalidRule)
	default:
		return ValidationRule{}, fmt.Errorf("%w: unknown type %q", ErrInvalidRule, w.Type)
	}
}

// MarshalJSON emits only the parameters of the rule's variant.
func (r ValidationRule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

// UnmarshalJSON rejects unknown tags, missing parameters and negative values.
func (r *ValidationRule) UnmarshalJSON(data []byte) error {
	var w ruleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := w.rule()
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

func (r ValidationRule) MarshalYAML() (any, error) {
	return r.wire(), nil
}

func (r *ValidationRule) UnmarshalYAML(node *yaml.Node) error {
	var w ruleWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	decoded, err := w.rule()
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

// String renders the rule compactly, e.g. "minLength(3)".
func (r ValidationRule) String() string {
	switch r.Type {
	case RuleMinLength, RuleMaxLength:
		return fmt.Sprintf("%s(%d)", r.Type, r.Value)
	case RulePassword:
		return fmt.Sprintf("password(minLen=%d, requireNumber=%t)", r.MinLen, r.RequireNumber)
	default:
		return string(r.Type)
	}
}

// HasRule reports whether rules contain a rule of the given type.
func HasRule(rules []ValidationRule, kind RuleType) bool {
	for _, rule := range rules {
		if rule.Type == kind {
			return true
		}
	}
	return false
}
