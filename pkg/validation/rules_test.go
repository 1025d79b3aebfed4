package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/schema"
)

var everyKind = []schema.Value{
	schema.Absent(),
	schema.String(""),
	schema.String("   "),
	schema.String("hello"),
	schema.Number(0),
	schema.Number(42),
	schema.Bool(false),
	schema.Bool(true),
}

func TestValidateEmptyRuleListAlwaysPasses(t *testing.T) {
	t.Parallel()

	for _, v := range everyKind {
		if msg, failed := Validate(nil, v); failed {
			t.Errorf("Validate(nil, %#v) = %q", v, msg)
		}
		if msg, failed := Validate([]schema.ValidationRule{}, v); failed {
			t.Errorf("Validate([], %#v) = %q", v, msg)
		}
	}
}

func TestNotEmpty(t *testing.T) {
	t.Parallel()

	failing := []schema.Value{schema.Absent(), schema.String(""), schema.String(" \t\n")}
	for _, v := range failing {
		msg, failed := Evaluate(schema.NotEmpty(), v)
		if !failed || msg != MessageRequired {
			t.Errorf("notEmpty(%#v) = %q, %v; want required message", v, msg, failed)
		}
	}

	passing := []schema.Value{schema.String("x"), schema.Number(0), schema.Bool(false), schema.Bool(true)}
	for _, v := range passing {
		if msg, failed := Evaluate(schema.NotEmpty(), v); failed {
			t.Errorf("notEmpty(%#v) = %q; want pass", v, msg)
		}
	}
}

func TestLengthRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		rule   schema.ValidationRule
		value  schema.Value
		want   string
		failed bool
	}{
		{"min short", schema.MinLength(3), schema.String("ab"), "Minimum length is 3", true},
		{"min exact", schema.MinLength(3), schema.String("abc"), "", false},
		{"min counts runes", schema.MinLength(3), schema.String("héé"), "", false},
		{"min zero", schema.MinLength(0), schema.String(""), "", false},
		{"min number passes", schema.MinLength(3), schema.Number(1), "", false},
		{"min absent passes", schema.MinLength(3), schema.Absent(), "", false},
		{"max long", schema.MaxLength(2), schema.String("abc"), "Maximum length is 2", true},
		{"max exact", schema.MaxLength(3), schema.String("abc"), "", false},
		{"max bool passes", schema.MaxLength(0), schema.Bool(true), "", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, failed := Evaluate(tc.rule, tc.value)
			if failed != tc.failed || got != tc.want {
				t.Fatalf("Evaluate(%s, %#v) = %q, %v; want %q, %v", tc.rule, tc.value, got, failed, tc.want, tc.failed)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"a@b.co", "first.last@example.org", "x+y@sub.domain.io"}
	for _, s := range valid {
		if msg, failed := Evaluate(schema.Email(), schema.String(s)); failed {
			t.Errorf("email(%q) = %q; want pass", s, msg)
		}
	}

	invalid := []string{"", "plain", "a@b", "a b@c.d", "a@@b.c", "@b.c", "a@b.", "a@b c.d"}
	for _, s := range invalid {
		msg, failed := Evaluate(schema.Email(), schema.String(s))
		if !failed || msg != MessageInvalidEmail {
			t.Errorf("email(%q) = %q, %v; want invalid", s, msg, failed)
		}
	}

	if _, failed := Evaluate(schema.Email(), schema.Number(3)); failed {
		t.Error("email must pass non-string values")
	}
	if _, failed := Evaluate(schema.Email(), schema.Absent()); failed {
		t.Error("email must pass absent values")
	}
}

func TestPasswordOrdering(t *testing.T) {
	t.Parallel()

	rule := schema.Password(8, true)

	msg, failed := Evaluate(rule, schema.String("ab"))
	if !failed || msg != "Password must be at least 8 characters" {
		t.Fatalf("short password = %q, %v", msg, failed)
	}

	msg, failed = Evaluate(rule, schema.String("abcdefgh"))
	if !failed || msg != MessagePasswordNumber {
		t.Fatalf("digitless password = %q, %v", msg, failed)
	}

	if msg, failed := Evaluate(rule, schema.String("abcdefg1")); failed {
		t.Fatalf("strong password failed: %q", msg)
	}

	if msg, failed := Evaluate(schema.Password(4, false), schema.String("abcd")); failed {
		t.Fatalf("number not required but failed: %q", msg)
	}

	msg, failed = Evaluate(schema.Password(0, false), schema.Number(12345678))
	if !failed || msg != "Password must be at least 0 characters" {
		t.Fatalf("non-string password = %q, %v", msg, failed)
	}
}

func TestValidateShortCircuitsInOrder(t *testing.T) {
	t.Parallel()

	rules := []schema.ValidationRule{schema.NotEmpty(), schema.Email()}
	msg, failed := Validate(rules, schema.String(""))
	if !failed || msg != MessageRequired {
		t.Fatalf("Validate(notEmpty, email) = %q, %v", msg, failed)
	}

	msg, failed = Validate(rules, schema.String("nope"))
	if !failed || msg != MessageInvalidEmail {
		t.Fatalf("second rule should report once first passes, got %q", msg)
	}

	reversed := []schema.ValidationRule{schema.Email(), schema.MinLength(20)}
	msg, _ = Validate(reversed, schema.String("bad"))
	if msg != MessageInvalidEmail {
		t.Fatalf("first failing rule wins, got %q", msg)
	}
}

func TestValidateAllCollectsEveryFailure(t *testing.T) {
	t.Parallel()

	fields := []schema.Field{
		{ID: "name", Type: schema.FieldTypeText, Validations: []schema.ValidationRule{schema.NotEmpty()}},
		{ID: "email", Type: schema.FieldTypeText, Validations: []schema.ValidationRule{schema.NotEmpty(), schema.Email()}},
		{ID: "bio", Type: schema.FieldTypeTextarea, Validations: []schema.ValidationRule{schema.MaxLength(5)}},
		{ID: "age", Type: schema.FieldTypeNumber},
	}
	values := schema.ValueMap{
		"email": schema.String("not-an-email"),
		"bio":   schema.String("too long"),
		"age":   schema.Number(30),
	}

	got := ValidateAll(fields, values)
	want := schema.ErrorMap{
		"name":  MessageRequired,
		"email": MessageInvalidEmail,
		"bio":   "Maximum length is 5",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ValidateAll mismatch (-want +got):\n%s", diff)
	}
}
