package session

import "errors"

var (
	// ErrUnknownField is returned when a value targets an id the schema does
	// not declare.
	ErrUnknownField = errors.New("session: unknown field")
	// ErrDerivedField is returned when a value targets a derived field. Those
	// are read-only to direct input.
	ErrDerivedField = errors.New("session: derived field is read-only")
	// ErrInvalidInput reports text input that cannot be converted for the
	// field's type.
	ErrInvalidInput = errors.New("session: invalid input")
)
