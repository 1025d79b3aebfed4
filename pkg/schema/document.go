package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names a serialization of a schema document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// IsSchemaFile reports whether path has a JSON or YAML extension.
func IsSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Document wraps a raw schema payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, fmt.Errorf("%w: %s", ErrEmptyDocument, src.Location())
	}
	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source { return d.source }

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Raw returns a defensive copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Schema decodes the payload as a single FormSchema.
func (d Document) Schema() (FormSchema, error) {
	var out FormSchema
	if err := decode(d.raw, d.Location(), &out); err != nil {
		return FormSchema{}, err
	}
	return out, nil
}

// Schemas decodes the payload as a list of FormSchema values.
func (d Document) Schemas() ([]FormSchema, error) {
	var out []FormSchema
	if err := decode(d.raw, d.Location(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decode tries JSON first, then YAML. JSON errors are reported when the
// payload looks like JSON so messages point at the real problem.
func decode(data []byte, location string, out any) error {
	jsonErr := json.Unmarshal(data, out)
	if jsonErr == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return fmt.Errorf("schema: parse %s: %w", location, jsonErr)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("schema: parse %s: %w", location, err)
	}
	return nil
}

// Decode parses a JSON or YAML payload into a FormSchema.
func Decode(data []byte) (FormSchema, error) {
	doc, err := NewDocument(SourceInline("inline"), data)
	if err != nil {
		return FormSchema{}, err
	}
	return doc.Schema()
}

// DecodeList parses a JSON or YAML array of schemas.
func DecodeList(data []byte) ([]FormSchema, error) {
	doc, err := NewDocument(SourceInline("inline"), data)
	if err != nil {
		return nil, err
	}
	return doc.Schemas()
}

// Encode serializes a schema in the requested format.
func Encode(s FormSchema, format Format) ([]byte, error) {
	return encode(s, format)
}

// EncodeList serializes a list of schemas in the requested format.
func EncodeList(list []FormSchema, format Format) ([]byte, error) {
	if list == nil {
		list = []FormSchema{}
	}
	return encode(list, format)
}

func encode(value any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return nil, fmt.Errorf("schema: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("schema: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		out, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("schema: encode json: %w", err)
		}
		return append(out, '\n'), nil
	}
}

// LoadFile reads and decodes a single schema file.
func LoadFile(path string) (FormSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FormSchema{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	doc, err := NewDocument(SourceFromFile(path), data)
	if err != nil {
		return FormSchema{}, err
	}
	return doc.Schema()
}

// LoadFS walks fsys and decodes every JSON/YAML file as one schema. Results
// follow the lexical walk order.
func LoadFS(fsys fs.FS) ([]FormSchema, error) {
	if fsys == nil {
		return nil, nil
	}
	var out []FormSchema
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !IsSchemaFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}
		doc, err := NewDocument(SourceFromFS(path), data)
		if err != nil {
			return err
		}
		s, err := doc.Schema()
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
