// Package testsupport holds fixtures and golden helpers shared by package
// tests.
package testsupport

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/schema"
)

//go:embed testdata
var fixtures embed.FS

// Fixture names.
const (
	OrderFixture  = "order.yaml"
	SignupFixture = "signup.json"
	CycleFixture  = "cycle.yaml"
)

// LoadFixture decodes one of the bundled schema fixtures.
func LoadFixture(name string) (schema.FormSchema, error) {
	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		return schema.FormSchema{}, fmt.Errorf("testsupport: read fixture: %w", err)
	}
	doc, err := schema.NewDocument(schema.SourceFromFS(name), data)
	if err != nil {
		return schema.FormSchema{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return doc.Schema()
}

// MustLoadFixture is LoadFixture for tests.
func MustLoadFixture(t testing.TB, name string) schema.FormSchema {
	t.Helper()

	form, err := LoadFixture(name)
	if err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
	return form
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t testing.TB, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
