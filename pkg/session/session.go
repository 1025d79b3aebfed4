// Package session holds the live state of one filled-in form: the current
// values, the current validation messages, and the derived values that follow
// every edit.
package session

import (
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/pkg/engine"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/validation"
)

// Session tracks values and errors for one form instance. A Session has a
// single owner and is not safe for concurrent use.
type Session struct {
	form        schema.FormSchema
	values      schema.ValueMap
	errors      schema.ErrorMap
	coordinator *engine.Coordinator
	logger      *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithCoordinator overrides the recomputation coordinator.
func WithCoordinator(c *engine.Coordinator) Option {
	return func(s *Session) {
		if c != nil {
			s.coordinator = c
		}
	}
}

// WithLogger sets the logger used for edit diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Update is the state after an edit.
type Update struct {
	Values schema.ValueMap
	Errors schema.ErrorMap
	// Changed lists derived ids whose value moved because of the edit.
	Changed []string
}

// New starts a session over a copy of form. Values are seeded from field
// defaults and derived fields are computed before New returns.
func New(form schema.FormSchema, opts ...Option) *Session {
	s := &Session{
		form:   form.Clone(),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.coordinator == nil {
		s.coordinator = engine.New(engine.WithLogger(s.logger))
	}
	s.Reset()
	return s
}

// Schema returns a copy of the schema the session was started with.
func (s *Session) Schema() schema.FormSchema {
	return s.form.Clone()
}

// Reset drops every edit and error and reseeds values from defaults.
func (s *Session) Reset() {
	s.values = s.coordinator.Recompute(s.form.Fields, schema.DefaultValues(s.form.Fields))
	s.errors = schema.ErrorMap{}
}

// Value returns the current value of one field.
func (s *Session) Value(id string) schema.Value {
	return s.values.Get(id)
}

// Values returns a copy of the current values.
func (s *Session) Values() schema.ValueMap {
	return s.values.Clone()
}

// Errors returns a copy of the current validation messages.
func (s *Session) Errors() schema.ErrorMap {
	return s.errors.Clone()
}

// Set records a user edit. The edited field is validated against its own
// rules, then every derived field is recomputed and each derived value that
// changed is validated again.
func (s *Session) Set(id string, value schema.Value) (Update, error) {
	field, err := s.editable(id)
	if err != nil {
		return Update{}, err
	}
	s.values[id] = value
	s.validate(field)

	res := s.coordinator.Run(s.form.Fields, s.values)
	s.values = res.Values
	s.revalidate(res.Changed)

	s.logger.Debug("field updated",
		"form", s.form.ID,
		"field", id,
		"valid", s.errors[id] == "",
		"derived_changed", len(res.Changed),
		"passes", res.Passes,
	)
	return s.update(res.Changed), nil
}

// SetInput converts raw text for the field's type and records it.
func (s *Session) SetInput(id, raw string) (Update, error) {
	field, err := s.editable(id)
	if err != nil {
		return Update{}, err
	}
	value, err := ParseInput(field, raw)
	if err != nil {
		return Update{}, err
	}
	return s.Set(id, value)
}

// Apply records several edits at once, validating each edited field and
// recomputing derived values a single time. No edit is applied when any id
// is unknown or derived.
func (s *Session) Apply(values schema.ValueMap) (Update, error) {
	fields := make([]schema.Field, 0, len(values))
	for _, f := range s.form.Fields {
		if _, ok := values[f.ID]; ok {
			fields = append(fields, f)
		}
	}
	for id := range values {
		if _, err := s.editable(id); err != nil {
			return Update{}, err
		}
	}
	for _, f := range fields {
		s.values[f.ID] = values[f.ID]
		s.validate(f)
	}
	res := s.coordinator.Run(s.form.Fields, s.values)
	s.values = res.Values
	s.revalidate(res.Changed)
	return s.update(res.Changed), nil
}

// ValidateAll checks every field against its rules, replacing the error map.
// It reports whether the form is valid.
func (s *Session) ValidateAll() (schema.ErrorMap, bool) {
	s.errors = validation.ValidateAll(s.form.Fields, s.values)
	return s.errors.Clone(), s.errors.Empty()
}

func (s *Session) editable(id string) (schema.Field, error) {
	field, ok := s.form.Field(id)
	if !ok {
		return schema.Field{}, fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	if field.IsDerived() {
		return schema.Field{}, fmt.Errorf("%w: %q", ErrDerivedField, id)
	}
	return field, nil
}

func (s *Session) validate(field schema.Field) {
	if msg, failed := validation.ValidateField(field, s.values); failed {
		s.errors[field.ID] = msg
		return
	}
	delete(s.errors, field.ID)
}

// revalidate checks derived fields whose value moved during recompute so
// their messages match the new values.
func (s *Session) revalidate(ids []string) {
	for _, id := range ids {
		if field, ok := s.form.Field(id); ok {
			s.validate(field)
		}
	}
}

func (s *Session) update(changed []string) Update {
	return Update{
		Values:  s.values.Clone(),
		Errors:  s.errors.Clone(),
		Changed: changed,
	}
}
