package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	checkOnce     sync.Once
	checkValidate *validator.Validate
)

func structValidator() *validator.Validate {
	checkOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("fieldtype", func(fl validator.FieldLevel) bool {
			return IsValidFieldType(FieldType(fl.Field().String()))
		})
		_ = v.RegisterValidation("ruletype", func(fl validator.FieldLevel) bool {
			return ValidRuleTypes[RuleType(fl.Field().String())]
		})
		checkValidate = v
	})
	return checkValidate
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		runes := []rune(fld.Name)
		runes[0] = unicode.ToLower(runes[0])
		name = string(runes)
	}
	return name
}

// Check runs structural validation over a schema: required ids, known field
// and rule types, non-negative rule parameters, unique field ids and
// non-empty formulas. It returns ValidationErrors listing every issue.
func Check(s FormSchema) error {
	var issues ValidationErrors
	if err := structValidator().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("schema: check: %w", err)
		}
		for _, fe := range verrs {
			issues = append(issues, Issue{
				Path:    issuePath(fe.Namespace()),
				Message: issueMessage(fe),
			})
		}
	}
	if dups := duplicateIDs(s.Fields); len(dups) > 0 {
		issues = append(issues, Issue{
			Path:    "fields",
			Message: fmt.Sprintf("field ids must be unique (repeated: %s)", strings.Join(dups, ", ")),
		})
	}
	if len(issues) == 0 {
		return nil
	}
	return issues
}

// duplicateIDs lists each non-empty id used by more than one field, in
// first-seen order. Empty ids are reported as missing instead.
func duplicateIDs(fields []Field) []string {
	seen := make(map[string]int, len(fields))
	var out []string
	for _, f := range fields {
		if f.ID == "" {
			continue
		}
		seen[f.ID]++
		if seen[f.ID] == 2 {
			out = append(out, f.ID)
		}
	}
	return out
}

func issuePath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "fieldtype":
		return fmt.Sprintf("unknown field type %q", fe.Value())
	case "ruletype":
		return fmt.Sprintf("unknown rule type %q", fe.Value())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q", fe.Tag())
	}
}
