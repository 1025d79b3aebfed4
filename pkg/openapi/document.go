package openapi

import (
	"errors"
	"slices"
	"sort"

	"github.com/goliatone/go-formkit/pkg/schema"
)

// Document wraps a raw OpenAPI payload and its origin.
type Document struct {
	source schema.Source
	raw    []byte
}

// NewDocument validates the inputs and copies raw.
func NewDocument(src schema.Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("openapi: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// Source returns the origin metadata for the document.
func (d Document) Source() schema.Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Operation is the subset of an OpenAPI operation needed to build a form.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	RequestBody Schema
}

// Schema is a simplified OpenAPI schema node.
type Schema struct {
	Ref         string
	Type        string
	Format      string
	Title       string
	Description string
	Required    []string
	Properties  map[string]Schema
	Items       *Schema
	Enum        []any
	Default     any
	MinLength   *int
	MaxLength   *int
	ReadOnly    bool
	Extensions  map[string]any
}

// IsRequired reports whether name is listed as required.
func (s Schema) IsRequired(name string) bool {
	return slices.Contains(s.Required, name)
}

// PropertyNames returns the property names in form order: the names listed
// in the x-formkit-order extension first, then the rest sorted.
func (s Schema) PropertyNames() []string {
	seen := make(map[string]bool, len(s.Properties))
	names := make([]string, 0, len(s.Properties))
	for _, name := range stringList(s.Extensions[ExtensionOrder]) {
		if _, ok := s.Properties[name]; ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	rest := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func stringList(raw any) []string {
	switch list := raw.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
