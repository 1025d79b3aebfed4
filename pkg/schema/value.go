package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind enumerates the closed set of value variants a field can hold.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "absent"
	}
}

// Value is a field value at the engine boundary. The zero Value is Absent.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Absent returns the empty value.
func Absent() Value { return Value{} }

// String wraps a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric value. Non-finite numbers collapse to Absent.
func Number(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: n}
}

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v holds no value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsZero lets encoding/json (omitzero) and yaml.v3 (omitempty) skip absent values.
func (v Value) IsZero() bool { return v.kind == KindAbsent }

// Str returns the string payload when v is a string.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Num returns the numeric payload when v is a number.
func (v Value) Num() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Boolean returns the boolean payload when v is a boolean.
func (v Value) Boolean() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Equal compares by value, never by identity.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	default:
		return true
	}
}

// String renders the value the way a concatenation would see it. Absent
// renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// GoString keeps test diffs readable.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("String(%q)", v.str)
	case KindNumber:
		return fmt.Sprintf("Number(%v)", v.num)
	case KindBool:
		return fmt.Sprintf("Bool(%v)", v.b)
	default:
		return "Absent()"
	}
}

// Interface returns the value as a plain Go scalar (nil for Absent).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// FromAny converts a decoded scalar into a Value.
func FromAny(raw any) (Value, error) {
	switch typed := raw.(type) {
	case nil:
		return Absent(), nil
	case Value:
		return typed, nil
	case string:
		return String(typed), nil
	case bool:
		return Bool(typed), nil
	case float64:
		return Number(typed), nil
	case float32:
		return Number(float64(typed)), nil
	case int:
		return Number(float64(typed)), nil
	case int8:
		return Number(float64(typed)), nil
	case int16:
		return Number(float64(typed)), nil
	case int32:
		return Number(float64(typed)), nil
	case int64:
		return Number(float64(typed)), nil
	case uint:
		return Number(float64(typed)), nil
	case uint8:
		return Number(float64(typed)), nil
	case uint16:
		return Number(float64(typed)), nil
	case uint32:
		return Number(float64(typed)), nil
	case uint64:
		return Number(float64(typed)), nil
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return Absent(), fmt.Errorf("schema: invalid number %q: %w", typed.String(), err)
		}
		return Number(f), nil
	default:
		return Absent(), fmt.Errorf("%w: %T", ErrUnsupportedValue, raw)
	}
}

// MustFromAny panics when raw cannot be converted. Useful for fixtures.
func MustFromAny(raw any) Value {
	v, err := FromAny(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// MarshalJSON encodes the value as a JSON scalar (null for Absent).
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a JSON scalar.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// MarshalYAML encodes the value as a YAML scalar.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

// UnmarshalYAML decodes a YAML scalar.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	decoded, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// ValueMap holds the live values of one form-instance session keyed by field
// id. Missing keys read as Absent.
type ValueMap map[string]Value

// Get returns the value for id, Absent when unset.
func (m ValueMap) Get(id string) Value {
	if m == nil {
		return Absent()
	}
	return m[id]
}

// Clone returns a shallow copy; values are immutable so this is a full copy.
func (m ValueMap) Clone() ValueMap {
	out := make(ValueMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Equal reports whether both maps hold equal values for the same keys. An
// explicit Absent entry equals a missing one.
func (m ValueMap) Equal(other ValueMap) bool {
	for k, v := range m {
		if !other.Get(k).Equal(v) {
			return false
		}
	}
	for k, v := range other {
		if !m.Get(k).Equal(v) {
			return false
		}
	}
	return true
}

// Plain converts the map into plain Go scalars, handy for JSON output.
func (m ValueMap) Plain() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}

// ValueMapFromAny converts a decoded JSON/YAML object into a ValueMap.
func ValueMapFromAny(raw map[string]any) (ValueMap, error) {
	out := make(ValueMap, len(raw))
	for k, item := range raw {
		v, err := FromAny(item)
		if err != nil {
			return nil, fmt.Errorf("schema: value %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// ErrorMap holds one validation message per failing field id.
type ErrorMap map[string]string

// Clone returns a copy of the map.
func (m ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Empty reports whether no field has an error.
func (m ErrorMap) Empty() bool {
	return len(m) == 0
}
