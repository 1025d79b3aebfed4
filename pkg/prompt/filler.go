// Package prompt fills a form interactively. Each editable field is asked for
// in schema order with a prompt matching its type; input that fails the
// field's rules is reported and asked for again.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/session"
)

// DefaultMaxAttempts bounds how often one field is asked for.
const DefaultMaxAttempts = 5

// Filler drives a session through a Driver.
type Filler struct {
	driver      Driver
	maxAttempts int
	logger      *slog.Logger
}

// Option configures a Filler.
type Option func(*Filler)

// WithMaxAttempts overrides DefaultMaxAttempts. Values below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(f *Filler) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFiller builds a Filler. A nil driver falls back to the survey driver.
func NewFiller(driver Driver, opts ...Option) *Filler {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	f := &Filler{
		driver:      driver,
		maxAttempts: DefaultMaxAttempts,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fill prompts for every editable field of s, then validates the whole form.
// It returns the submitted values, or the error map wrapped in an
// *InvalidFormError when the final check fails.
func (f *Filler) Fill(ctx context.Context, s *session.Session) (schema.ValueMap, error) {
	if ctx == nil {
		return nil, errors.New("prompt: context is required")
	}
	form := s.Schema()
	if form.Name != "" {
		if err := f.driver.Info(ctx, form.Name); err != nil {
			return nil, err
		}
	}

	for _, field := range form.Fields {
		if field.IsDerived() {
			continue
		}
		if err := f.fillField(ctx, s, field); err != nil {
			return nil, err
		}
	}

	errs, ok := s.ValidateAll()
	if !ok {
		return nil, &InvalidFormError{Errors: errs}
	}
	return s.Values(), nil
}

func (f *Filler) fillField(ctx context.Context, s *session.Session, field schema.Field) error {
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		value, err := f.ask(ctx, field, s.Value(field.ID))
		if err != nil {
			return err
		}

		upd, err := s.Set(field.ID, value)
		if err != nil {
			return err
		}
		if msg, failed := upd.Errors[field.ID]; failed {
			f.logger.Debug("field rejected", "field", field.ID, "attempt", attempt)
			if err := f.driver.Info(ctx, fmt.Sprintf("✗ %s: %s", labelOf(field), msg)); err != nil {
				return err
			}
			continue
		}

		for _, id := range upd.Changed {
			derived, _ := s.Schema().Field(id)
			line := fmt.Sprintf("= %s: %s", labelOf(derived), display(upd.Values.Get(id)))
			if err := f.driver.Info(ctx, line); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.ID)
}

// ask prompts once and converts the answer, re-asking on unparsable input.
func (f *Filler) ask(ctx context.Context, field schema.Field, current schema.Value) (schema.Value, error) {
	message := labelOf(field)
	if field.Required {
		message += " *"
	}
	help := describeRules(field)

	for {
		var raw string
		var err error

		switch {
		case field.Type == schema.FieldTypeCheckbox:
			def, _ := current.Boolean()
			answer, err := f.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def, Help: help})
			if err != nil {
				return schema.Absent(), err
			}
			return schema.Bool(answer), nil
		case field.Type.UsesOptions() && len(field.Options) > 0:
			idx, err := f.driver.Select(ctx, SelectConfig{
				Message:      message,
				Options:      field.Options,
				DefaultIndex: indexOf(field.Options, current.String()),
				Help:         help,
			})
			if err != nil {
				return schema.Absent(), err
			}
			if idx < 0 || idx >= len(field.Options) {
				return schema.Absent(), nil
			}
			return schema.String(field.Options[idx]), nil
		case field.Type == schema.FieldTypeTextarea:
			raw, err = f.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: current.String(), Help: help})
		case schema.HasRule(field.Validations, schema.RulePassword):
			raw, err = f.driver.Password(ctx, InputConfig{Message: message, Help: help})
		default:
			if field.Type == schema.FieldTypeDate && help == "" {
				help = "format " + session.DateLayout
			}
			raw, err = f.driver.Input(ctx, InputConfig{Message: message, Default: current.String(), Help: help})
		}
		if err != nil {
			return schema.Absent(), err
		}

		value, err := session.ParseInput(field, raw)
		if err != nil {
			if infoErr := f.driver.Info(ctx, fmt.Sprintf("✗ %s: %v", labelOf(field), err)); infoErr != nil {
				return schema.Absent(), infoErr
			}
			continue
		}
		return value, nil
	}
}

// InvalidFormError carries the messages of a form that failed submission.
type InvalidFormError struct {
	Errors schema.ErrorMap
}

func (e *InvalidFormError) Error() string {
	return fmt.Sprintf("prompt: form has %d invalid field(s)", len(e.Errors))
}

func labelOf(field schema.Field) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return field.ID
}

func display(v schema.Value) string {
	if v.IsAbsent() {
		return "(none)"
	}
	return v.String()
}

func describeRules(field schema.Field) string {
	if len(field.Validations) == 0 {
		return ""
	}
	parts := make([]string, len(field.Validations))
	for i, rule := range field.Validations {
		parts[i] = rule.String()
	}
	return "rules: " + strings.Join(parts, ", ")
}
