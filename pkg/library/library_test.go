package library

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/schema"
)

func ids(forms []schema.FormSchema) []string {
	out := make([]string, len(forms))
	for i, f := range forms {
		out[i] = f.ID
	}
	return out
}

func form(id, name string) schema.FormSchema {
	return schema.FormSchema{
		ID:     id,
		Name:   name,
		Fields: []schema.Field{{ID: "f", Label: "F", Type: schema.FieldTypeText}},
	}
}

func TestAddPutsNewestFirst(t *testing.T) {
	t.Parallel()

	var forms []schema.FormSchema
	forms = Add(forms, form("a", "A"))
	forms = Add(forms, form("b", "B"))
	forms = Add(forms, form("c", "C"))
	if diff := cmp.Diff([]string{"c", "b", "a"}, ids(forms)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	forms = Add(forms, form("a", "A v2"))
	if diff := cmp.Diff([]string{"a", "c", "b"}, ids(forms)); diff != "" {
		t.Fatalf("re-adding should replace and move to front (-want +got):\n%s", diff)
	}
	if forms[0].Name != "A v2" {
		t.Fatalf("expected replaced form, got %q", forms[0].Name)
	}
}

func TestOperationsDoNotAlias(t *testing.T) {
	t.Parallel()

	original := []schema.FormSchema{form("a", "A")}
	updated := Add(original, form("b", "B"))
	updated[1].Fields[0].Label = "changed"
	if original[0].Fields[0].Label != "F" {
		t.Fatal("Add must return copies")
	}

	got, err := Find(original, "a")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	got.Name = "mutated"
	if original[0].Name != "A" {
		t.Fatal("Find must return a copy")
	}
}

func TestRemoveAndSet(t *testing.T) {
	t.Parallel()

	forms := Set([]schema.FormSchema{form("a", "A"), form("b", "B"), form("c", "C")})
	forms = Remove(forms, "b")
	if diff := cmp.Diff([]string{"a", "c"}, ids(forms)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	forms = Remove(forms, "missing")
	if len(forms) != 2 {
		t.Fatalf("removing an unknown id changes nothing, got %v", ids(forms))
	}
}

func TestFindAndLookup(t *testing.T) {
	t.Parallel()

	forms := []schema.FormSchema{form("a", "Alpha"), form("b", "Beta")}
	if _, err := Find(forms, "Beta"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find matches ids only, got %v", err)
	}
	got, err := Lookup(forms, "Beta")
	if err != nil || got.ID != "b" {
		t.Fatalf("Lookup by name = %v, %v", got.ID, err)
	}
	if _, err := Lookup(forms, "Gamma"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
