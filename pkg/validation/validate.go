package validation

import "github.com/goliatone/go-formkit/pkg/schema"

// ValidateField runs the field's rule chain against its current value.
func ValidateField(field schema.Field, values schema.ValueMap) (string, bool) {
	return Validate(field.Validations, values.Get(field.ID))
}

// ValidateAll checks every field and collects all failures. The returned map
// reflects values at the moment of the call and is never partially filled.
func ValidateAll(fields []schema.Field, values schema.ValueMap) schema.ErrorMap {
	errs := make(schema.ErrorMap)
	for _, field := range fields {
		if msg, failed := ValidateField(field, values); failed {
			errs[field.ID] = msg
		}
	}
	return errs
}
