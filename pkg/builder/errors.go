package builder

import "errors"

var (
	// ErrNameRequired is returned by Finalize when the schema has no name.
	ErrNameRequired = errors.New("builder: form name is required")
	// ErrNoFields is returned by Finalize when the schema has no fields.
	ErrNoFields = errors.New("builder: at least one field is required")
	// ErrFieldNotFound reports an id the schema does not contain.
	ErrFieldNotFound = errors.New("builder: field not found")
	// ErrUnknownFieldType reports a field type outside schema.ValidFieldTypes.
	ErrUnknownFieldType = errors.New("builder: unknown field type")
	// ErrIndexOutOfRange reports a move outside the field list.
	ErrIndexOutOfRange = errors.New("builder: index out of range")
)
