package schema

import "time"

// FieldType is the enum of supported input kinds.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeDate     FieldType = "date"
)

// ValidFieldTypes is the set of valid field types.
var ValidFieldTypes = map[FieldType]bool{
	FieldTypeText:     true,
	FieldTypeNumber:   true,
	FieldTypeTextarea: true,
	FieldTypeSelect:   true,
	FieldTypeRadio:    true,
	FieldTypeCheckbox: true,
	FieldTypeDate:     true,
}

// IsValidFieldType checks if a field type is valid.
func IsValidFieldType(t FieldType) bool {
	return ValidFieldTypes[t]
}

// UsesOptions reports whether the type renders a choice list.
func (t FieldType) UsesOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio
}

// Derivation computes a field value from other fields. ParentIDs mirrors the
// `${id}` markers in Formula; consumers re-derive it from the formula rather
// than trusting the stored copy.
type Derivation struct {
	ParentIDs []string `json:"parentIds" yaml:"parentIds"`
	Formula   string   `json:"formula" yaml:"formula" validate:"required"`
}

// Clone returns a deep copy.
func (d *Derivation) Clone() *Derivation {
	if d == nil {
		return nil
	}
	return &Derivation{
		ParentIDs: append([]string(nil), d.ParentIDs...),
		Formula:   d.Formula,
	}
}

// Field models one input inside a form schema. A field with Derived set is
// read-only to direct input; its value is always recomputed.
type Field struct {
	ID           string           `json:"id" yaml:"id" validate:"required"`
	Label        string           `json:"label" yaml:"label"`
	Type         FieldType        `json:"type" yaml:"type" validate:"required,fieldtype"`
	Required     bool             `json:"required" yaml:"required"`
	DefaultValue Value            `json:"defaultValue,omitzero" yaml:"defaultValue,omitempty"`
	Options      []string         `json:"options,omitempty" yaml:"options,omitempty"`
	Validations  []ValidationRule `json:"validations,omitempty" yaml:"validations,omitempty" validate:"dive"`
	Derived      *Derivation      `json:"derived,omitempty" yaml:"derived,omitempty"`
}

// IsDerived reports whether the field's value comes from a formula.
func (f Field) IsDerived() bool {
	return f.Derived != nil
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	if f.Options != nil {
		out.Options = append([]string(nil), f.Options...)
	}
	if f.Validations != nil {
		out.Validations = append([]ValidationRule(nil), f.Validations...)
	}
	out.Derived = f.Derived.Clone()
	return out
}

// FormSchema is a named, ordered list of fields. Field order is display and
// tab order. A saved schema is treated as an immutable snapshot: callers get
// clones and edit a separate in-progress copy.
type FormSchema struct {
	ID        string    `json:"id" yaml:"id" validate:"required"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Fields    []Field   `json:"fields" yaml:"fields" validate:"dive"`
}

// Clone returns a deep copy of the schema.
func (s FormSchema) Clone() FormSchema {
	out := s
	if s.Fields != nil {
		out.Fields = make([]Field, len(s.Fields))
		for i, f := range s.Fields {
			out.Fields[i] = f.Clone()
		}
	}
	return out
}

// Field returns the field with the given id.
func (s FormSchema) Field(id string) (Field, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// IndexOf returns the position of the field with the given id or -1.
func (s FormSchema) IndexOf(id string) int {
	for i, f := range s.Fields {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// DerivedFields returns the fields carrying a derivation, in schema order.
func (s FormSchema) DerivedFields() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.IsDerived() {
			out = append(out, f)
		}
	}
	return out
}

// DefaultValues seeds a fresh ValueMap from each field's default value.
// Fields without a default start Absent.
func DefaultValues(fields []Field) ValueMap {
	values := make(ValueMap, len(fields))
	for _, f := range fields {
		values[f.ID] = f.DefaultValue
	}
	return values
}
