package lint

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/testsupport"
)

func derived(id, f string, parents ...string) schema.Field {
	return schema.Field{
		ID:      id,
		Label:   id,
		Type:    schema.FieldTypeNumber,
		Derived: &schema.Derivation{ParentIDs: parents, Formula: f},
	}
}

func input(id string) schema.Field {
	return schema.Field{ID: id, Label: id, Type: schema.FieldTypeNumber}
}

func codes(r Report) []string {
	out := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		out = append(out, d.Code+":"+d.Field)
	}
	return out
}

func TestLintCleanSchema(t *testing.T) {
	t.Parallel()

	form := schema.FormSchema{
		ID: "order",
		Fields: []schema.Field{
			input("qty"),
			input("price"),
			derived("total", "${qty} * ${price}", "qty", "price"),
		},
	}
	report := Lint(form)
	if len(report.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", report.Diagnostics)
	}
	if report.HasErrors() {
		t.Fatal("clean schema must not have errors")
	}
}

func TestLintStructuralProblems(t *testing.T) {
	t.Parallel()

	form := schema.FormSchema{
		ID: "bad",
		Fields: []schema.Field{
			{ID: "a", Type: "slider"},
			{ID: "b", Type: schema.FieldTypeText},
			{ID: "b", Type: schema.FieldTypeText},
			{ID: "pick", Type: schema.FieldTypeSelect},
		},
	}
	report := Lint(form)

	want := []string{
		"unknown-type:a",
		"duplicate-id:b",
		"missing-options:pick",
	}
	got := codes(report)
	for _, w := range want {
		if !contains(got, w) {
			t.Errorf("missing %s in %v", w, got)
		}
	}
	if !report.HasErrors() {
		t.Fatal("expected errors")
	}
	if report.Count(SeverityWarning) != 1 {
		t.Fatalf("expected one warning, got %d", report.Count(SeverityWarning))
	}
}

func TestLintFormulaProblems(t *testing.T) {
	t.Parallel()

	form := schema.FormSchema{
		ID: "formulas",
		Fields: []schema.Field{
			input("x"),
			derived("broken", "${x} +", "x"),
			derived("ghost", "${nope} * 2", "nope"),
			derived("self", "${self} + 1", "self"),
			derived("stale", "${x} * 3", "y"),
		},
	}
	report := Lint(form)

	want := []string{
		"formula-syntax:broken",
		"unknown-reference:ghost",
		"self-reference:self",
		"stale-parents:stale",
	}
	if diff := cmp.Diff(want, codes(report)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestLintDetectsCycles(t *testing.T) {
	t.Parallel()

	form := schema.FormSchema{
		ID: "loop",
		Fields: []schema.Field{
			derived("a", "${b} + 1", "b"),
			derived("b", "${c} + 1", "c"),
			derived("c", "${a} + 1", "a"),
			derived("d", "${a} * 2", "a"),
		},
	}
	cycles := Lint(form).Filter(CodeCycle)
	if len(cycles) != 1 {
		t.Fatalf("expected one cycle, got %v", cycles)
	}
	if cycles[0].Message != "derived fields depend on each other (a -> b -> c -> a); values will not settle" {
		t.Fatalf("unexpected message %q", cycles[0].Message)
	}
}

func TestLintRequiredWithoutNotEmpty(t *testing.T) {
	t.Parallel()

	form := schema.FormSchema{
		ID: "req",
		Fields: []schema.Field{
			{ID: "name", Type: schema.FieldTypeText, Required: true},
			{ID: "email", Type: schema.FieldTypeText, Required: true,
				Validations: []schema.ValidationRule{schema.NotEmpty()}},
		},
	}
	report := Lint(form)
	if diff := cmp.Diff([]string{"required-without-not-empty:name"}, codes(report)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if report.HasErrors() {
		t.Fatal("info diagnostics are not errors")
	}
	if got := report.Diagnostics[0].String(); got != "info [required-without-not-empty] name: required is a display marker; add a notEmpty rule to reject blank input" {
		t.Fatalf("String() = %q", got)
	}
}

func TestLintFixtures(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		testsupport.OrderFixture:  {},
		testsupport.SignupFixture: {"required-without-not-empty:password"},
		testsupport.CycleFixture:  {"cycle:a"},
	}
	for name, want := range cases {
		report := Lint(testsupport.MustLoadFixture(t, name))
		if diff := cmp.Diff(want, codes(report)); diff != "" {
			t.Errorf("%s codes mismatch (-want +got):\n%s", name, diff)
		}
		if report.HasErrors() {
			t.Errorf("%s: fixture should lint without errors", name)
		}
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
