package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/session"
)

// EvalResult is the outcome of evaluating a form over a set of values.
type EvalResult struct {
	Form   string          `json:"form"`
	Values schema.ValueMap `json:"values"`
	Errors schema.ErrorMap `json:"errors"`
	Valid  bool            `json:"valid"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		valuesPath string
		sets       []string
	)

	cmd := &cobra.Command{
		Use:   "eval <schema-or-id>",
		Short: "Compute derived values and validate a form",
		Long: `Seed a form with its defaults, apply values from a file and --set
flags, recompute derived fields and validate every field.

--set takes id=value and converts value for the field's type, the same
way interactive input is converted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, cmd, args[0], valuesPath, sets)
		},
	}
	cmd.Flags().StringVar(&valuesPath, "values", "", "JSON or YAML file with field values")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as id=value (repeatable)")
	return cmd
}

func runEval(opts *RootOptions, cmd *cobra.Command, ref, valuesPath string, sets []string) error {
	out := opts.formatter(cmd)

	form, err := opts.loadSchema(cmd.Context(), ref)
	if err != nil {
		return err
	}
	sess := session.New(form,
		session.WithCoordinator(opts.coordinator()),
		session.WithLogger(opts.Logger()),
	)

	if valuesPath != "" {
		values, err := readValues(valuesPath)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil, nil)
		}
		if _, err := sess.Apply(values); err != nil {
			return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil, nil)
		}
	}
	for _, assignment := range sets {
		id, raw, ok := strings.Cut(assignment, "=")
		if !ok {
			return out.Fail(ExitCommandError, ErrCodeInvalid, fmt.Sprintf("--set %q: expected id=value", assignment), nil, nil)
		}
		if _, err := sess.SetInput(strings.TrimSpace(id), raw); err != nil {
			return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil, nil)
		}
	}

	errs, valid := sess.ValidateAll()
	result := EvalResult{Form: form.ID, Values: sess.Values(), Errors: errs, Valid: valid}

	if out.JSON() {
		if !valid {
			return out.Fail(ExitFailure, ErrCodeInvalid, fmt.Sprintf("%d invalid field(s)", len(errs)), result, nil)
		}
		return out.Success(result)
	}

	out.Printf("%s (%s)\n", displayName(form), form.ID)
	for _, field := range form.Fields {
		suffix := ""
		if field.IsDerived() {
			suffix = " (derived)"
		}
		out.Printf("  %s = %s%s\n", field.ID, formatValue(result.Values.Get(field.ID)), suffix)
		if msg, failed := errs[field.ID]; failed {
			out.Printf("    ✗ %s\n", msg)
		}
	}
	if !valid {
		out.Printf("invalid: %d field(s)\n", len(errs))
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid field(s)", len(errs)))
	}
	out.Printf("valid\n")
	return nil
}

func readValues(path string) (schema.ValueMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		if yerr := yaml.Unmarshal(data, &raw); yerr != nil {
			return nil, fmt.Errorf("values %s: invalid JSON or YAML", path)
		}
	}
	return schema.ValueMapFromAny(raw)
}

func formatValue(v schema.Value) string {
	switch v.Kind() {
	case schema.KindAbsent:
		return "null"
	case schema.KindString:
		return strconv.Quote(v.String())
	default:
		return v.String()
	}
}

func displayName(form schema.FormSchema) string {
	if strings.TrimSpace(form.Name) != "" {
		return form.Name
	}
	return form.ID
}
