package session

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formkit/pkg/schema"
)

// DateLayout is the accepted layout for date fields.
const DateLayout = "2006-01-02"

// ParseInput converts text typed by a user into a value for field.
//
// Number fields parse as floats and blank input is absent. Checkbox fields
// accept the usual yes/no spellings and blank input is false. Select and radio
// input must match one of the options. Date input must use DateLayout. Every
// other type keeps the text as is.
func ParseInput(field schema.Field, raw string) (schema.Value, error) {
	trimmed := strings.TrimSpace(raw)
	switch field.Type {
	case schema.FieldTypeNumber:
		if trimmed == "" {
			return schema.Absent(), nil
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return schema.Absent(), fmt.Errorf("%w: %q is not a number", ErrInvalidInput, raw)
		}
		return schema.Number(n), nil
	case schema.FieldTypeCheckbox:
		switch strings.ToLower(trimmed) {
		case "", "false", "no", "n", "0", "off":
			return schema.Bool(false), nil
		case "true", "yes", "y", "1", "on":
			return schema.Bool(true), nil
		default:
			return schema.Absent(), fmt.Errorf("%w: %q is not yes or no", ErrInvalidInput, raw)
		}
	case schema.FieldTypeSelect, schema.FieldTypeRadio:
		if trimmed == "" || len(field.Options) == 0 {
			return schema.String(trimmed), nil
		}
		if !slices.Contains(field.Options, trimmed) {
			return schema.Absent(), fmt.Errorf("%w: %q is not one of %s", ErrInvalidInput, raw, strings.Join(field.Options, ", "))
		}
		return schema.String(trimmed), nil
	case schema.FieldTypeDate:
		if trimmed == "" {
			return schema.String(""), nil
		}
		if _, err := time.Parse(DateLayout, trimmed); err != nil {
			return schema.Absent(), fmt.Errorf("%w: %q is not a %s date", ErrInvalidInput, raw, DateLayout)
		}
		return schema.String(trimmed), nil
	default:
		return schema.String(raw), nil
	}
}
