package formula

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/schema"
)

func TestExtractParentIDs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		formula string
		want    []string
	}{
		{"${a} + ${b} - ${a}", []string{"a", "b", "a"}},
		{"no markers here", []string{}},
		{"", []string{}},
		{"${first name} + ${x-1}", []string{"first name", "x-1"}},
		{"${a", []string{}},
		{"${a{b}} + ${c}", []string{"c"}},
		{"$a + {b} + ${}", []string{""}},
	}
	for _, tc := range cases {
		got := ExtractParentIDs(tc.formula)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("ExtractParentIDs(%q) mismatch (-want +got):\n%s", tc.formula, diff)
		}
	}
}

func TestUniqueParentIDs(t *testing.T) {
	t.Parallel()

	got := UniqueParentIDs("${b} * ${a} + ${b}")
	if diff := cmp.Diff([]string{"b", "a"}, got); diff != "" {
		t.Fatalf("UniqueParentIDs mismatch (-want +got):\n%s", diff)
	}
}

func derive(formula string) schema.Derivation {
	return schema.Derivation{ParentIDs: ExtractParentIDs(formula), Formula: formula}
}

func TestEvaluateAddsReferencedValues(t *testing.T) {
	t.Parallel()

	got := Evaluate(derive("${x} + ${y}"), schema.ValueMap{"x": schema.Number(2), "y": schema.Number(3)})
	if !got.Equal(schema.Number(5)) {
		t.Fatalf("expected 5, got %#v", got)
	}
}

func TestEvaluateMalformedFormulaIsAbsent(t *testing.T) {
	t.Parallel()

	values := []schema.ValueMap{
		nil,
		{"x": schema.Number(1)},
		{"x": schema.String("a")},
	}
	for _, v := range values {
		if got := Evaluate(derive("${x} +"), v); !got.IsAbsent() {
			t.Fatalf("expected absent for malformed formula, got %#v", got)
		}
	}
}

func TestEvaluateExpressions(t *testing.T) {
	t.Parallel()

	values := schema.ValueMap{
		"qty":   schema.Number(3),
		"price": schema.Number(2.5),
		"first": schema.String("Ada"),
		"last":  schema.String("Lovelace"),
		"flag":  schema.Bool(true),
		"zero":  schema.Number(0),
	}

	cases := []struct {
		formula string
		want    schema.Value
	}{
		{"${qty} * ${price}", schema.Number(7.5)},
		{"1 + 2 * 3", schema.Number(7)},
		{"(1 + 2) * 3", schema.Number(9)},
		{"10 - 4 - 3", schema.Number(3)},
		{"17 % 5", schema.Number(2)},
		{"-${qty} + +4", schema.Number(1)},
		{"--2", schema.Number(2)},
		{"1.5e2 / 3", schema.Number(50)},
		{".5 + .5", schema.Number(1)},
		{`${first} + " " + ${last}`, schema.String("Ada Lovelace")},
		{`'n=' + ${qty}`, schema.String("n=3")},
		{`${qty} + 'x'`, schema.String("3x")},
		{`"on: " + ${flag}`, schema.String("on: true")},
		{`'it\'s'`, schema.String("it's")},
		{"${flag}", schema.Bool(true)},
		{"${first}", schema.String("Ada")},
		{"true", schema.Bool(true)},
		{"null", schema.Absent()},
		{"${missing}", schema.Absent()},
	}
	for _, tc := range cases {
		d := derive(tc.formula)
		got := Evaluate(d, values)
		if !got.Equal(tc.want) {
			t.Errorf("Evaluate(%q) = %#v, want %#v", tc.formula, got, tc.want)
		}
	}
}

func TestEvalReportsFailureKinds(t *testing.T) {
	t.Parallel()

	scope := Scope{
		"n":    schema.Number(4),
		"s":    schema.String("x"),
		"b":    schema.Bool(false),
		"none": schema.Absent(),
		"zero": schema.Number(0),
	}

	cases := []struct {
		formula string
		want    error
	}{
		{"${n} +", ErrSyntax},
		{"", ErrSyntax},
		{"   ", ErrSyntax},
		{"(${n} + 1", ErrSyntax},
		{"${n} )", ErrSyntax},
		{"${n", ErrSyntax},
		{"'open", ErrSyntax},
		{"1.2.3", ErrSyntax},
		{"${n} ^ 2", ErrSyntax},
		{"$n", ErrSyntax},
		{"${n} ${n}", ErrSyntax},
		{"alert(1)", ErrUndeclared},
		{"Math", ErrUndeclared},
		{"${other}", ErrUndeclared},
		{"${s} - 1", ErrType},
		{"${b} * 2", ErrType},
		{"-${s}", ErrType},
		{"${none} + 1", ErrType},
		{"${s} + ${none}", ErrType},
		{"${n} / ${zero}", ErrArithmetic},
		{"${n} % 0", ErrArithmetic},
		{"1e308 * 10", ErrArithmetic},
	}
	for _, tc := range cases {
		got, err := Eval(tc.formula, scope)
		if !errors.Is(err, tc.want) {
			t.Errorf("Eval(%q) error = %v, want %v", tc.formula, err, tc.want)
		}
		if !got.IsAbsent() {
			t.Errorf("Eval(%q) value = %#v, want absent", tc.formula, got)
		}
	}
}

func TestEvaluateScopeIsRestrictedToParentIDs(t *testing.T) {
	t.Parallel()

	values := schema.ValueMap{"a": schema.Number(1), "b": schema.Number(2)}
	stale := schema.Derivation{ParentIDs: []string{"a"}, Formula: "${a} + ${b}"}
	if got := Evaluate(stale, values); !got.IsAbsent() {
		t.Fatalf("reference outside parentIds must fail, got %#v", got)
	}
	if got := Evaluate(derive(stale.Formula), values); !got.Equal(schema.Number(3)) {
		t.Fatalf("expected 3, got %#v", got)
	}
}

func TestCompileRefs(t *testing.T) {
	t.Parallel()

	expr, err := Compile("(${a} + ${b}) * ${a}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "a"}, expr.Refs()); diff != "" {
		t.Fatalf("Refs mismatch (-want +got):\n%s", diff)
	}
	if expr.Source() != "(${a} + ${b}) * ${a}" {
		t.Fatalf("Source = %q", expr.Source())
	}
	if err := Check("${a} * 2"); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestCompileRejectsDeepNesting(t *testing.T) {
	t.Parallel()

	deep := []string{
		strings.Repeat("(", 10000) + "1" + strings.Repeat(")", 10000),
		strings.Repeat("-", 10000) + "1",
		strings.Repeat("(", 100000),
	}
	for _, f := range deep {
		if _, err := Compile(f); !errors.Is(err, ErrSyntax) {
			t.Errorf("Compile(%.12q...) error = %v, want ErrSyntax", f, err)
		}
		if got := Evaluate(derive(f), nil); !got.IsAbsent() {
			t.Errorf("Evaluate(%.12q...) = %#v, want absent", f, got)
		}
	}

	nested := strings.Repeat("(", 20) + "${x} + 1" + strings.Repeat(")", 20)
	if got := Evaluate(derive(nested), schema.ValueMap{"x": schema.Number(1)}); !got.Equal(schema.Number(2)) {
		t.Fatalf("Evaluate(nested) = %#v, want 2", got)
	}
	if got := Evaluate(derive("--(-1)"), nil); !got.Equal(schema.Number(-1)) {
		t.Fatalf("Evaluate(--(-1)) = %#v, want -1", got)
	}
}
