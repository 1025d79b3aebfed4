package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formkit/pkg/prompt"
	"github.com/goliatone/go-formkit/pkg/schema"
)

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

func execute(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()

	if opts == nil {
		opts = &RootOptions{}
	}
	cmd := NewRootCommandWithOptions(opts)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeEnvelope(t *testing.T, out string) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env), "output: %s", out)
	return env
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func storeFlag(t *testing.T) string {
	return "--store=" + filepath.Join(t.TempDir(), "forms.json")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "formkit", cmd.Use)
	for _, name := range []string{"lint", "eval", "fill", "forms", "import", "builder"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	for _, flag := range []string{"config", "store", "store-driver", "log-level", "log-format", "format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRootCommandRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, nil, "lint", "testdata/invoice.yaml", "--format", "xml")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootCommandRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: floppy\n"), 0o644))

	_, err := execute(t, nil, "lint", "testdata/invoice.yaml", "--config", path)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	wrapped := WrapExitError(ExitCommandError, "open", io.EOF)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, io.EOF)
	assert.Equal(t, "open: EOF", wrapped.Error())
}

func TestLintText(t *testing.T) {
	out, err := execute(t, nil, "lint", "testdata/invoice.yaml", "testdata/broken.yaml")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	golden(t).Assert(t, "lint_text", []byte(out))
}

func TestLintCleanFileSucceeds(t *testing.T) {
	out, err := execute(t, nil, "lint", "testdata/invoice.yaml")

	require.NoError(t, err)
	assert.Equal(t, "✓ testdata/invoice.yaml\n1 file(s): 0 error(s), 0 warning(s), 0 info\n", out)
}

func TestLintJSON(t *testing.T) {
	out, err := execute(t, nil, "lint", "testdata/broken.yaml", "--format", "json")

	require.Error(t, err)
	env := decodeEnvelope(t, out)
	assert.Equal(t, "error", env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeLint, env.Error.Code)

	var results []LintResult
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 1)
	codes := make([]string, 0, len(results[0].Diagnostics))
	for _, d := range results[0].Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []string{"missing-options", "required-without-not-empty", "formula-syntax", "unknown-reference"}, codes)
}

func TestLintStrictFailsOnWarnings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loop.yaml")
	loop := `id: loop
name: Loop
fields:
  - id: a
    label: A
    type: number
    derived:
      parentIds: [b]
      formula: '${b} + 1'
  - id: b
    label: B
    type: number
    derived:
      parentIds: [a]
      formula: '${a} * 2'
`
	require.NoError(t, os.WriteFile(path, []byte(loop), 0o644))

	out, err := execute(t, nil, "lint", path)
	require.NoError(t, err)
	assert.Contains(t, out, "warning [cycle] a: derived fields depend on each other (a -> b -> a)")

	_, err = execute(t, nil, "lint", path, "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestEvalReportsInvalidFields(t *testing.T) {
	out, err := execute(t, nil, "eval", "testdata/invoice.yaml")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	golden(t).Assert(t, "eval_invalid", []byte(out))
}

func TestEvalAppliesValuesAndSets(t *testing.T) {
	out, err := execute(t, nil, "eval", "testdata/invoice.yaml",
		"--values", "testdata/values.json", "--set", "rate=45")

	require.NoError(t, err)
	golden(t).Assert(t, "eval_values", []byte(out))
}

func TestEvalJSON(t *testing.T) {
	out, err := execute(t, nil, "eval", "testdata/invoice.yaml",
		"--set", "customer=Acme", "--set", "hours=3", "--format", "json")

	require.NoError(t, err)
	env := decodeEnvelope(t, out)
	assert.Equal(t, "ok", env.Status)

	var result struct {
		Form   string            `json:"form"`
		Values map[string]any    `json:"values"`
		Errors map[string]string `json:"errors"`
		Valid  bool              `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "invoice", result.Form)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, map[string]any{
		"customer": "Acme",
		"hours":    float64(3),
		"rate":     float64(50),
		"amount":   float64(150),
		"paid":     false,
	}, result.Values)
}

func TestEvalRejectsBadInput(t *testing.T) {
	cases := map[string][]string{
		"missing equals": {"--set", "hours"},
		"derived field":  {"--set", "amount=3"},
		"unknown field":  {"--set", "nope=1"},
		"not a number":   {"--set", "hours=many"},
	}
	for name, extra := range cases {
		t.Run(name, func(t *testing.T) {
			args := append([]string{"eval", "testdata/invoice.yaml"}, extra...)
			out, err := execute(t, nil, args...)

			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.True(t, strings.HasPrefix(out, "Error [E002]: "), out)
		})
	}
}

func TestEvalUnknownReference(t *testing.T) {
	_, err := execute(t, nil, "eval", "no-such-form", storeFlag(t))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `no schema file or saved form "no-such-form"`)
}

func TestFormsLifecycle(t *testing.T) {
	store := storeFlag(t)

	out, err := execute(t, nil, "forms", "list", store)
	require.NoError(t, err)
	assert.Equal(t, "no saved forms\n", out)

	out, err = execute(t, nil, "forms", "add", "testdata/invoice.yaml", store)
	require.NoError(t, err)
	assert.Equal(t, "saved invoice\n", out)

	out, err = execute(t, nil, "forms", "list", store)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"ID", "NAME", "FIELDS", "CREATED"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"invoice", "Invoice", "5", "2025-04-01T10:00:00Z"}, strings.Fields(lines[1]))

	out, err = execute(t, nil, "forms", "show", "Invoice", store)
	require.NoError(t, err)
	shown, err := schema.Decode([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "invoice", shown.ID)
	assert.Len(t, shown.Fields, 5)

	out, err = execute(t, nil, "eval", "invoice", "--set", "customer=Initech", store)
	require.NoError(t, err)
	assert.Contains(t, out, "amount = 100 (derived)")

	out, err = execute(t, nil, "forms", "remove", "invoice", store)
	require.NoError(t, err)
	assert.Equal(t, "removed invoice\n", out)

	out, err = execute(t, nil, "forms", "remove", "invoice", store)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, strings.HasPrefix(out, "Error [E003]: "), out)
}

func TestFormsAddRefusesLintErrors(t *testing.T) {
	store := storeFlag(t)

	out, err := execute(t, nil, "forms", "add", "testdata/broken.yaml", store)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]: ")

	_, err = execute(t, nil, "forms", "add", "testdata/broken.yaml", "--force", store)
	require.NoError(t, err)

	out, err = execute(t, nil, "forms", "list", "--format", "json", store)
	require.NoError(t, err)
	var summaries []FormSummary
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, out).Data, &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "broken", summaries[0].ID)
}

func TestFormsWorkWithEveryStoreDriver(t *testing.T) {
	drivers := map[string]string{
		"file":   "forms.yaml",
		"sqlite": "forms.db",
		"badger": "forms.badger",
	}
	for driver, name := range drivers {
		t.Run(driver, func(t *testing.T) {
			flags := []string{"--store-driver", driver, "--store", filepath.Join(t.TempDir(), name)}

			_, err := execute(t, nil, append([]string{"forms", "add", "testdata/invoice.yaml"}, flags...)...)
			require.NoError(t, err)

			out, err := execute(t, nil, append([]string{"forms", "show", "invoice", "--format", "json"}, flags...)...)
			require.NoError(t, err)
			var form schema.FormSchema
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, out).Data, &form))
			assert.Equal(t, "Invoice", form.Name)
		})
	}
}

func TestImportOpenAPI(t *testing.T) {
	out, err := execute(t, nil, "import", "openapi", "testdata/billing.yaml",
		"--operation", "createInvoice", "--format", "json")

	require.NoError(t, err)
	var form schema.FormSchema
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, out).Data, &form))

	assert.Equal(t, "createInvoice", form.ID)
	assert.Equal(t, "New invoice", form.Name)
	ids := make([]string, 0, len(form.Fields))
	for _, f := range form.Fields {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"customer", "hours", "rate", "amount"}, ids)
	require.NotNil(t, form.Fields[3].Derived)
	assert.Equal(t, []string{"hours", "rate"}, form.Fields[3].Derived.ParentIDs)
	assert.True(t, form.Fields[0].Required)
}

func TestImportOpenAPISavesAndWrites(t *testing.T) {
	store := storeFlag(t)
	output := filepath.Join(t.TempDir(), "invoice.yaml")

	out, err := execute(t, nil, "import", "openapi", "testdata/billing.yaml",
		"--operation", "createInvoice", "--save", "--output", output, store)
	require.NoError(t, err)
	assert.Equal(t, "imported createInvoice (4 field(s))\n", out)

	written, err := schema.LoadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "createInvoice", written.ID)

	out, err = execute(t, nil, "eval", "createInvoice", "--set", "customer=Umbrella", store)
	require.NoError(t, err)
	assert.Contains(t, out, "amount = 80 (derived)")
}

func TestImportOpenAPIUnknownOperation(t *testing.T) {
	out, err := execute(t, nil, "import", "openapi", "testdata/billing.yaml",
		"--operation", "deleteInvoice", "--format", "json")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	env := decodeEnvelope(t, out)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeNotFound, env.Error.Code)
	assert.Contains(t, env.Error.Message, "createInvoice")
}

func TestBuilderNew(t *testing.T) {
	out, err := execute(t, nil, "builder", "new",
		"--id", "quote", "--name", "Quote",
		"--field", "qty:number:Quantity",
		"--field", "price:number:Price",
		"--field", "total:number:Total",
		"--field", "plan:select",
		"--derive", "total=${qty} * ${price}",
		"--options", "plan=basic, pro",
		"--required", "qty",
		"--format", "json",
	)

	require.NoError(t, err)
	var form schema.FormSchema
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, out).Data, &form))

	assert.Equal(t, "quote", form.ID)
	assert.Equal(t, "Quote", form.Name)
	require.Len(t, form.Fields, 4)
	assert.Equal(t, "qty", form.Fields[0].ID)
	assert.True(t, form.Fields[0].Required)
	assert.True(t, schema.HasRule(form.Fields[0].Validations, schema.RuleNotEmpty))
	require.NotNil(t, form.Fields[2].Derived)
	assert.Equal(t, []string{"qty", "price"}, form.Fields[2].Derived.ParentIDs)
	assert.Equal(t, "Untitled Field", form.Fields[3].Label)
	assert.Equal(t, []string{"basic", "pro"}, form.Fields[3].Options)
}

func TestBuilderNewWritesFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "contact.json")

	out, err := execute(t, nil, "builder", "new", "--name", "Contact",
		"--field", "email:text:Email", "--output", output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "built "), out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	form, err := schema.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "Contact", form.Name)
	assert.NotEmpty(t, form.ID)
}

func TestBuilderNewRejectsBadFlags(t *testing.T) {
	cases := map[string][]string{
		"no name":      {"--field", "a:text"},
		"no fields":    {"--name", "Empty"},
		"bad field":    {"--name", "X", "--field", "text"},
		"unknown type": {"--name", "X", "--field", "a:slider"},
		"unknown id":   {"--name", "X", "--field", "a:text", "--derive", "b=${a}"},
		"duplicate id": {"--name", "X", "--field", "a:text", "--field", "a:number"},
	}
	for name, extra := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, nil, append([]string{"builder", "new"}, extra...)...)

			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

type scriptedDriver struct {
	inputs  []string
	confirm []bool
	err     error
}

func (d *scriptedDriver) Input(context.Context, prompt.InputConfig) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Password(ctx context.Context, cfg prompt.InputConfig) (string, error) {
	return d.Input(ctx, cfg)
}

func (d *scriptedDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	if len(d.confirm) == 0 {
		return false, errors.New("no confirm scripted")
	}
	v := d.confirm[0]
	d.confirm = d.confirm[1:]
	return v, nil
}

func (d *scriptedDriver) Select(context.Context, prompt.SelectConfig) (int, error) {
	return -1, errors.New("no select scripted")
}

func (d *scriptedDriver) TextArea(ctx context.Context, cfg prompt.TextAreaConfig) (string, error) {
	return d.Input(ctx, prompt.InputConfig{Message: cfg.Message, Default: cfg.Default})
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func TestFillText(t *testing.T) {
	driver := &scriptedDriver{inputs: []string{"Acme", "3", "40"}, confirm: []bool{true}}

	out, err := execute(t, &RootOptions{Driver: driver}, "fill", "testdata/invoice.yaml")

	require.NoError(t, err)
	golden(t).Assert(t, "fill_text", []byte(out))
}

func TestFillWritesValues(t *testing.T) {
	driver := &scriptedDriver{inputs: []string{"Acme", "", ""}, confirm: []bool{false}}
	output := filepath.Join(t.TempDir(), "values.json")

	out, err := execute(t, &RootOptions{Driver: driver}, "fill", "testdata/invoice.yaml",
		"--output", output, "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "ok", decodeEnvelope(t, out).Status)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var values map[string]any
	require.NoError(t, json.Unmarshal(data, &values))
	assert.Equal(t, "Acme", values["customer"])
	assert.Nil(t, values["hours"])
	assert.Nil(t, values["amount"])
}

func TestFillAborted(t *testing.T) {
	driver := &scriptedDriver{err: prompt.ErrAborted}

	out, err := execute(t, &RootOptions{Driver: driver}, "fill", "testdata/invoice.yaml")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "Error [E001]: aborted\n", out)
}
