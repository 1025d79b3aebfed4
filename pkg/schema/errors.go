package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRule reports a malformed validation rule payload.
	ErrInvalidRule = errors.New("schema: invalid validation rule")
	// ErrUnsupportedValue reports a value that is not a string, number,
	// boolean or null.
	ErrUnsupportedValue = errors.New("schema: unsupported value type")
	// ErrEmptyDocument is returned when decoding an empty payload.
	ErrEmptyDocument = errors.New("schema: document is empty")
)

// Issue is a single structural problem found by Check.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// ValidationErrors aggregates every structural issue of a schema.
type ValidationErrors []Issue

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "schema: invalid"
	}
	parts := make([]string, len(v))
	for i, issue := range v {
		parts[i] = issue.String()
	}
	return "schema: invalid: " + strings.Join(parts, "; ")
}
