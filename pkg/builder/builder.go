// Package builder edits an in-progress form schema. The draft is separate
// from saved snapshots: Finalize hands out an immutable copy and the draft
// stays editable.
package builder

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formkit/pkg/formula"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// DefaultFieldLabel is used when AddField receives a blank label.
const DefaultFieldLabel = "Untitled Field"

// Builder holds one draft schema.
type Builder struct {
	draft schema.FormSchema
	now   func() time.Time
	newID func() string
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the clock used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator overrides the generator used for schema and field ids.
func WithIDGenerator(fn func() string) Option {
	return func(b *Builder) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// New starts an empty draft with a fresh id.
func New(opts ...Option) *Builder {
	b := &Builder{
		now:   time.Now,
		newID: newUUID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.Reset()
	return b
}

// Edit starts a draft from a copy of an existing schema.
func Edit(s schema.FormSchema, opts ...Option) *Builder {
	b := New(opts...)
	b.draft = s.Clone()
	return b
}

func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Reset discards the draft and starts a new empty one.
func (b *Builder) Reset() {
	b.draft = schema.FormSchema{
		ID:        b.newID(),
		CreatedAt: b.now().UTC(),
		Fields:    []schema.Field{},
	}
}

// Schema returns a copy of the draft.
func (b *Builder) Schema() schema.FormSchema {
	return b.draft.Clone()
}

// SetName renames the draft.
func (b *Builder) SetName(name string) {
	b.draft.Name = name
}

// AddField appends a field of the given type. Text-like fields start with an
// empty string default, checkboxes with false and numbers with no default.
func (b *Builder) AddField(ft schema.FieldType, label string) (schema.Field, error) {
	if !schema.IsValidFieldType(ft) {
		return schema.Field{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, ft)
	}
	if strings.TrimSpace(label) == "" {
		label = DefaultFieldLabel
	}
	f := schema.Field{
		ID:           b.newID(),
		Label:        label,
		Type:         ft,
		DefaultValue: initialDefault(ft),
		Options:      []string{},
		Validations:  []schema.ValidationRule{},
	}
	b.draft.Fields = append(b.draft.Fields, f)
	return f.Clone(), nil
}

func initialDefault(ft schema.FieldType) schema.Value {
	switch ft {
	case schema.FieldTypeNumber:
		return schema.Absent()
	case schema.FieldTypeCheckbox:
		return schema.Bool(false)
	default:
		return schema.String("")
	}
}

// RemoveField deletes a field.
func (b *Builder) RemoveField(id string) error {
	idx := b.draft.IndexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	b.draft.Fields = slices.Delete(b.draft.Fields, idx, idx+1)
	return nil
}

// FieldUpdate is a partial edit. Nil members are left unchanged.
type FieldUpdate struct {
	Label        *string
	Type         *schema.FieldType
	Required     *bool
	DefaultValue *schema.Value
	Options      []string
	Validations  []schema.ValidationRule
	// Formula sets the derivation. An empty formula removes it. Parent ids
	// are always re-derived from the formula text.
	Formula *string
}

// UpdateField applies a partial edit to one field.
func (b *Builder) UpdateField(id string, upd FieldUpdate) (schema.Field, error) {
	idx := b.draft.IndexOf(id)
	if idx < 0 {
		return schema.Field{}, fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	f := b.draft.Fields[idx].Clone()

	if upd.Type != nil {
		if !schema.IsValidFieldType(*upd.Type) {
			return schema.Field{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, *upd.Type)
		}
		f.Type = *upd.Type
	}
	if upd.Label != nil {
		f.Label = *upd.Label
	}
	if upd.Required != nil {
		f.Required = *upd.Required
	}
	if upd.DefaultValue != nil {
		f.DefaultValue = *upd.DefaultValue
	}
	if upd.Options != nil {
		f.Options = append([]string{}, upd.Options...)
	}
	if upd.Validations != nil {
		f.Validations = append([]schema.ValidationRule{}, upd.Validations...)
	}
	if upd.Formula != nil {
		f.Derived = derivationFor(*upd.Formula)
	}

	b.draft.Fields[idx] = f
	return f.Clone(), nil
}

func derivationFor(text string) *schema.Derivation {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return &schema.Derivation{
		ParentIDs: formula.ExtractParentIDs(text),
		Formula:   text,
	}
}

// SetRule adds rule to a field, replacing any rule of the same type in place.
func (b *Builder) SetRule(id string, rule schema.ValidationRule) error {
	idx := b.draft.IndexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	f := &b.draft.Fields[idx]
	for i, existing := range f.Validations {
		if existing.Type == rule.Type {
			f.Validations[i] = rule
			return nil
		}
	}
	f.Validations = append(f.Validations, rule)
	return nil
}

// RemoveRule drops every rule of the given type from a field.
func (b *Builder) RemoveRule(id string, rt schema.RuleType) error {
	idx := b.draft.IndexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	f := &b.draft.Fields[idx]
	f.Validations = slices.DeleteFunc(f.Validations, func(r schema.ValidationRule) bool {
		return r.Type == rt
	})
	return nil
}

// MoveField moves the field at from to position to, shifting the fields in
// between. This is the drag-and-drop reorder.
func (b *Builder) MoveField(from, to int) error {
	n := len(b.draft.Fields)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d fields", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	f := b.draft.Fields[from]
	fields := slices.Delete(b.draft.Fields, from, from+1)
	b.draft.Fields = slices.Insert(fields, to, f)
	return nil
}

// SetFields replaces the field list with a copy of fields.
func (b *Builder) SetFields(fields []schema.Field) {
	out := make([]schema.Field, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}
	b.draft.Fields = out
}

// Finalize checks the draft and returns a sanitized snapshot ready to save.
// Stored parent ids are refreshed from each formula.
func (b *Builder) Finalize() (schema.FormSchema, error) {
	if strings.TrimSpace(b.draft.Name) == "" {
		return schema.FormSchema{}, ErrNameRequired
	}
	if len(b.draft.Fields) == 0 {
		return schema.FormSchema{}, ErrNoFields
	}
	out := b.draft.Sanitized()
	for i := range out.Fields {
		if d := out.Fields[i].Derived; d != nil {
			d.ParentIDs = formula.ExtractParentIDs(d.Formula)
		}
	}
	if err := schema.Check(out); err != nil {
		return schema.FormSchema{}, fmt.Errorf("builder: finalize: %w", err)
	}
	return out, nil
}
