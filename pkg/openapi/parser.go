package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ParserOptions toggles document handling.
type ParserOptions struct {
	// ResolveReferences validates the document and resolves local $ref
	// pointers. Defaults to true.
	ResolveReferences bool

	// AllowPartialDocuments accepts documents without paths.
	AllowPartialDocuments bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithReferenceResolution toggles eager reference resolution.
func WithReferenceResolution(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ResolveReferences = enabled
	}
}

// WithPartialDocuments toggles support for documents without paths.
func WithPartialDocuments(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowPartialDocuments = enabled
	}
}

// Parser extracts operations from documents using kin-openapi.
type Parser struct {
	options ParserOptions
}

// NewParser builds a Parser.
func NewParser(opts ...ParserOption) *Parser {
	cfg := ParserOptions{ResolveReferences: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Parser{options: cfg}
}

// Operations converts a Document into a map keyed by operationId. Operations
// without an id are keyed "<method>:<path>".
func (p *Parser) Operations(ctx context.Context, doc Document) (map[string]Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}

	if spec.Paths == nil || spec.Paths.Len() == 0 {
		if !p.options.AllowPartialDocuments {
			return nil, errors.New("openapi parser: document does not contain any paths")
		}
	}

	if p.options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	operations := make(map[string]Operation)
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			for method, operation := range item.Operations() {
				collectOperation(operations, method, path, operation)
			}
		}
	}

	if len(operations) == 0 && !p.options.AllowPartialDocuments {
		return nil, errors.New("openapi parser: no operations extracted")
	}
	return operations, nil
}

// Operation returns the operation with id.
func (p *Parser) Operation(ctx context.Context, doc Document, id string) (Operation, error) {
	operations, err := p.Operations(ctx, doc)
	if err != nil {
		return Operation{}, err
	}
	op, ok := operations[id]
	if !ok {
		return Operation{}, fmt.Errorf("%w: %q (available: %s)", ErrOperationNotFound, id, strings.Join(sortedKeys(operations), ", "))
	}
	return op, nil
}

func sortedKeys(operations map[string]Operation) []string {
	keys := make([]string, 0, len(operations))
	for k := range operations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func collectOperation(target map[string]Operation, method, path string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	target[id] = Operation{
		ID:          id,
		Method:      strings.ToUpper(method),
		Path:        path,
		Summary:     operation.Summary,
		Description: operation.Description,
		RequestBody: extractRequestSchema(operation.RequestBody),
	}
}

func extractRequestSchema(requestBody *openapi3.RequestBodyRef) Schema {
	if requestBody == nil {
		return Schema{}
	}
	if requestBody.Value == nil {
		return Schema{Ref: requestBody.Ref}
	}
	content := requestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok {
			return convertSchema(mt.Schema, 0)
		}
	}
	for _, mt := range content {
		return convertSchema(mt.Schema, 0)
	}
	return Schema{}
}

// maxDepth stops conversion of recursive component references.
const maxDepth = 8

func convertSchema(ref *openapi3.SchemaRef, depth int) Schema {
	if ref == nil {
		return Schema{}
	}
	if ref.Value == nil || depth > maxDepth {
		return Schema{Ref: ref.Ref}
	}
	src := ref.Value
	out := Schema{
		Ref:         ref.Ref,
		Type:        firstSchemaType(src.Type),
		Format:      src.Format,
		Title:       src.Title,
		Description: src.Description,
		Default:     src.Default,
		ReadOnly:    src.ReadOnly,
		Extensions:  extractExtensions(src.Extensions),
	}
	if len(src.Required) > 0 {
		out.Required = append([]string(nil), src.Required...)
	}
	if len(src.Enum) > 0 {
		out.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Properties) > 0 {
		out.Properties = make(map[string]Schema, len(src.Properties))
		for name, property := range src.Properties {
			out.Properties[name] = convertSchema(property, depth+1)
		}
	}
	if src.Items != nil {
		items := convertSchema(src.Items, depth+1)
		out.Items = &items
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		out.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		out.MaxLength = &value
	}
	for _, part := range src.AllOf {
		mergeAllOf(&out, convertSchema(part, depth+1))
	}
	return out
}

// mergeAllOf folds one allOf member into target. Properties and required
// names accumulate; scalar attributes already set on target win.
func mergeAllOf(target *Schema, part Schema) {
	if target.Type == "" {
		target.Type = part.Type
	}
	if len(part.Properties) > 0 {
		if target.Properties == nil {
			target.Properties = make(map[string]Schema, len(part.Properties))
		}
		for name, prop := range part.Properties {
			if _, exists := target.Properties[name]; !exists {
				target.Properties[name] = prop
			}
		}
	}
	for _, name := range part.Required {
		if !target.IsRequired(name) {
			target.Required = append(target.Required, name)
		}
	}
	for key, value := range part.Extensions {
		if target.Extensions == nil {
			target.Extensions = make(map[string]any, len(part.Extensions))
		}
		if _, exists := target.Extensions[key]; !exists {
			target.Extensions[key] = value
		}
	}
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, t := range types.Slice() {
		if t != "null" {
			return t
		}
	}
	return ""
}

func extractExtensions(raw map[string]any) map[string]any {
	result := make(map[string]any)
	for key, value := range raw {
		if strings.HasPrefix(key, ExtensionPrefix) {
			result[key] = value
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
