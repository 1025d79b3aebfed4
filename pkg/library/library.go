// Package library manages the list of saved form schemas. Every operation is
// pure: it returns the updated list and leaves persistence to the caller.
// Newest forms come first.
package library

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formkit/pkg/schema"
)

// ErrNotFound reports a form id missing from the list.
var ErrNotFound = errors.New("library: form not found")

// Add puts a copy of form at the front of forms. A saved form with the same
// id is replaced.
func Add(forms []schema.FormSchema, form schema.FormSchema) []schema.FormSchema {
	out := make([]schema.FormSchema, 0, len(forms)+1)
	out = append(out, form.Clone())
	for _, f := range forms {
		if f.ID == form.ID {
			continue
		}
		out = append(out, f.Clone())
	}
	return out
}

// Remove drops the form with the given id. Removing an unknown id returns an
// unchanged copy.
func Remove(forms []schema.FormSchema, id string) []schema.FormSchema {
	out := make([]schema.FormSchema, 0, len(forms))
	for _, f := range forms {
		if f.ID != id {
			out = append(out, f.Clone())
		}
	}
	return out
}

// Set replaces the whole list with a copy of forms.
func Set(forms []schema.FormSchema) []schema.FormSchema {
	out := make([]schema.FormSchema, len(forms))
	for i, f := range forms {
		out[i] = f.Clone()
	}
	return out
}

// Find returns a copy of the form with the given id.
func Find(forms []schema.FormSchema, id string) (schema.FormSchema, error) {
	for _, f := range forms {
		if f.ID == id {
			return f.Clone(), nil
		}
	}
	return schema.FormSchema{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// Lookup finds a form by id, falling back to an exact name match.
func Lookup(forms []schema.FormSchema, key string) (schema.FormSchema, error) {
	if f, err := Find(forms, key); err == nil {
		return f, nil
	}
	for _, f := range forms {
		if f.Name == key {
			return f.Clone(), nil
		}
	}
	return schema.FormSchema{}, fmt.Errorf("%w: %q", ErrNotFound, key)
}
