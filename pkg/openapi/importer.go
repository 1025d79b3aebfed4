package openapi

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/pkg/builder"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// Extension keys read from request body schemas.
const (
	ExtensionPrefix  = "x-formkit"
	ExtensionFormula = "x-formkit-formula"
	ExtensionType    = "x-formkit-type"
	ExtensionLabel   = "x-formkit-label"
	ExtensionOrder   = "x-formkit-order"
)

// DefaultPasswordLength is the minimum length given to password formatted
// strings.
const DefaultPasswordLength = 8

// Importer builds form schemas from operations.
type Importer struct {
	now    func() time.Time
	logger *slog.Logger
}

// ImportOption configures an Importer.
type ImportOption func(*Importer)

// WithClock overrides the clock used for createdAt.
func WithClock(now func() time.Time) ImportOption {
	return func(im *Importer) {
		if now != nil {
			im.now = now
		}
	}
}

// WithLogger sets the logger used to report skipped properties.
func WithLogger(logger *slog.Logger) ImportOption {
	return func(im *Importer) {
		if logger != nil {
			im.logger = logger
		}
	}
}

// NewImporter builds an Importer.
func NewImporter(opts ...ImportOption) *Importer {
	im := &Importer{now: time.Now, logger: logging.Discard()}
	for _, opt := range opts {
		if opt != nil {
			opt(im)
		}
	}
	return im
}

// Import converts the request body of op into a finalized form schema. The
// schema id is the operation id and its name the summary, falling back to
// the id. Properties become fields keyed by property name; nested objects,
// arrays and read-only properties are skipped.
func (im *Importer) Import(op Operation) (schema.FormSchema, error) {
	body := op.RequestBody
	if body.Type != "object" || len(body.Properties) == 0 {
		return schema.FormSchema{}, fmt.Errorf("%w: %s", ErrNoRequestBody, op.ID)
	}

	fields := make([]schema.Field, 0, len(body.Properties))
	for _, name := range body.PropertyNames() {
		prop := body.Properties[name]
		field, ok, err := im.field(name, prop, body.IsRequired(name))
		if err != nil {
			return schema.FormSchema{}, fmt.Errorf("openapi: property %q: %w", name, err)
		}
		if !ok {
			im.logger.Warn("property skipped", "operation", op.ID, "property", name, "type", prop.Type)
			continue
		}
		fields = append(fields, field)
	}

	name := strings.TrimSpace(op.Summary)
	if name == "" {
		name = op.ID
	}
	b := builder.Edit(schema.FormSchema{
		ID:        op.ID,
		Name:      name,
		CreatedAt: im.now().UTC(),
	}, builder.WithClock(im.now))
	b.SetFields(fields)

	form, err := b.Finalize()
	if err != nil {
		return schema.FormSchema{}, fmt.Errorf("openapi: import %s: %w", op.ID, err)
	}
	im.logger.Debug("operation imported", "operation", op.ID, "fields", len(form.Fields))
	return form, nil
}

func (im *Importer) field(name string, prop Schema, required bool) (schema.Field, bool, error) {
	if prop.ReadOnly {
		return schema.Field{}, false, nil
	}
	ft, rules, ok := fieldType(prop)
	if !ok {
		return schema.Field{}, false, nil
	}

	field := schema.Field{
		ID:       name,
		Label:    labelFor(name, prop),
		Type:     ft,
		Required: required,
	}
	if required {
		field.Validations = append(field.Validations, schema.NotEmpty())
	}
	field.Validations = append(field.Validations, rules...)
	if prop.Type == "string" {
		if prop.MinLength != nil && *prop.MinLength > 0 {
			field.Validations = append(field.Validations, schema.MinLength(*prop.MinLength))
		}
		if prop.MaxLength != nil {
			field.Validations = append(field.Validations, schema.MaxLength(*prop.MaxLength))
		}
	}
	for _, option := range prop.Enum {
		if option == nil {
			continue
		}
		field.Options = append(field.Options, fmt.Sprint(option))
	}

	switch {
	case prop.Default == nil:
	case ft.UsesOptions():
		field.DefaultValue = schema.String(fmt.Sprint(prop.Default))
	default:
		def, err := schema.FromAny(prop.Default)
		if err != nil {
			return schema.Field{}, false, err
		}
		field.DefaultValue = def
	}

	if text, ok := prop.Extensions[ExtensionFormula].(string); ok && strings.TrimSpace(text) != "" {
		field.Derived = &schema.Derivation{Formula: text}
	}
	return field, true, nil
}

// fieldType maps an OpenAPI type and format onto a field type plus any rules
// implied by the format. The x-formkit-type extension overrides the mapping.
func fieldType(prop Schema) (schema.FieldType, []schema.ValidationRule, bool) {
	var rules []schema.ValidationRule
	if prop.Type == "string" {
		switch prop.Format {
		case "email":
			rules = append(rules, schema.Email())
		case "password":
			rules = append(rules, schema.Password(DefaultPasswordLength, true))
		}
	}

	if override, ok := prop.Extensions[ExtensionType].(string); ok {
		ft := schema.FieldType(override)
		if !schema.IsValidFieldType(ft) {
			return "", nil, false
		}
		return ft, rules, true
	}

	switch prop.Type {
	case "string":
		switch {
		case len(prop.Enum) > 0:
			return schema.FieldTypeSelect, rules, true
		case prop.Format == "date":
			return schema.FieldTypeDate, rules, true
		default:
			return schema.FieldTypeText, rules, true
		}
	case "integer", "number":
		if len(prop.Enum) > 0 {
			return schema.FieldTypeSelect, rules, true
		}
		return schema.FieldTypeNumber, rules, true
	case "boolean":
		return schema.FieldTypeCheckbox, rules, true
	default:
		return "", nil, false
	}
}

func labelFor(name string, prop Schema) string {
	if label, ok := prop.Extensions[ExtensionLabel].(string); ok && strings.TrimSpace(label) != "" {
		return label
	}
	if strings.TrimSpace(prop.Title) != "" {
		return prop.Title
	}
	return humanize(name)
}

// humanize turns "first_name" and "firstName" into "First name".
func humanize(name string) string {
	var b strings.Builder
	prevLower := false
	for i, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(' ')
			prevLower = false
			continue
		case unicode.IsUpper(r) && prevLower:
			b.WriteRune(' ')
		}
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
