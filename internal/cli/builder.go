package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/pkg/builder"
	"github.com/goliatone/go-formkit/pkg/library"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// NewBuilderCommand creates the builder command group.
func NewBuilderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "builder",
		Short: "Author form schemas from the command line",
	}
	cmd.AddCommand(newBuilderNewCommand(rootOpts))
	return cmd
}

type builderNewOptions struct {
	id         string
	name       string
	fields     []string
	options    []string
	derive     []string
	required   []string
	outputPath string
	save       bool
}

func newBuilderNewCommand(opts *RootOptions) *cobra.Command {
	var o builderNewOptions

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a schema from field flags",
		Long: `Create a schema from field flags.

Each --field is id:type[:label]. Types are text, number, textarea, select,
radio, checkbox and date. Options, formulas and the required marker refer
to fields by id:

  formkit builder new --name Order \
    --field qty:number:Quantity --field price:number \
    --field total:number:Total --derive 'total=${qty} * ${price}' \
    --field plan:select --options plan=basic,pro --required qty`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuilderNew(opts, cmd, o)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&o.id, "id", "", "schema id (generated when empty)")
	flags.StringVar(&o.name, "name", "", "schema name")
	flags.StringArrayVar(&o.fields, "field", nil, "field as id:type[:label] (repeatable)")
	flags.StringArrayVar(&o.options, "options", nil, "choices as id=a,b,c (repeatable)")
	flags.StringArrayVar(&o.derive, "derive", nil, "formula as id=formula (repeatable)")
	flags.StringSliceVar(&o.required, "required", nil, "ids of required fields")
	flags.StringVarP(&o.outputPath, "output", "o", "", "write the schema to this file (YAML for .yaml/.yml, JSON otherwise)")
	flags.BoolVar(&o.save, "save", false, "save the schema to the library")
	return cmd
}

type fieldSpec struct {
	id    string
	ftype schema.FieldType
	label string
}

func parseFieldSpec(raw string) (fieldSpec, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
		return fieldSpec{}, fmt.Errorf("--field %q: expected id:type[:label]", raw)
	}
	spec := fieldSpec{id: strings.TrimSpace(parts[0]), ftype: schema.FieldType(strings.TrimSpace(parts[1]))}
	if len(parts) == 3 {
		spec.label = strings.TrimSpace(parts[2])
	}
	return spec, nil
}

func parseAssignment(flag, raw string) (string, string, error) {
	id, value, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(id) == "" {
		return "", "", fmt.Errorf("--%s %q: expected id=value", flag, raw)
	}
	return strings.TrimSpace(id), value, nil
}

func runBuilderNew(opts *RootOptions, cmd *cobra.Command, o builderNewOptions) error {
	out := opts.formatter(cmd)
	fail := func(err error) error {
		return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil, nil)
	}

	specs := make([]fieldSpec, 0, len(o.fields))
	for _, raw := range o.fields {
		spec, err := parseFieldSpec(raw)
		if err != nil {
			return fail(err)
		}
		specs = append(specs, spec)
	}

	// The generator hands out the schema id first, then the requested field
	// ids in AddField order.
	formID := o.id
	if formID == "" {
		formID = uuid.NewString()
	}
	ids := []string{formID}
	for _, spec := range specs {
		ids = append(ids, spec.id)
	}
	next := func() string {
		if len(ids) == 0 {
			return uuid.NewString()
		}
		id := ids[0]
		ids = ids[1:]
		return id
	}

	b := builder.New(builder.WithIDGenerator(next))
	b.SetName(o.name)
	for _, spec := range specs {
		if _, err := b.AddField(spec.ftype, spec.label); err != nil {
			return fail(err)
		}
	}
	for _, raw := range o.options {
		id, list, err := parseAssignment("options", raw)
		if err != nil {
			return fail(err)
		}
		choices := strings.Split(list, ",")
		for i := range choices {
			choices[i] = strings.TrimSpace(choices[i])
		}
		if _, err := b.UpdateField(id, builder.FieldUpdate{Options: choices}); err != nil {
			return fail(err)
		}
	}
	for _, raw := range o.derive {
		id, text, err := parseAssignment("derive", raw)
		if err != nil {
			return fail(err)
		}
		if _, err := b.UpdateField(id, builder.FieldUpdate{Formula: &text}); err != nil {
			return fail(err)
		}
	}
	required := true
	for _, id := range o.required {
		if _, err := b.UpdateField(strings.TrimSpace(id), builder.FieldUpdate{Required: &required}); err != nil {
			return fail(err)
		}
		if err := b.SetRule(strings.TrimSpace(id), schema.NotEmpty()); err != nil {
			return fail(err)
		}
	}

	form, err := b.Finalize()
	if err != nil {
		return fail(err)
	}
	opts.Logger().Debug("schema built", "id", form.ID, "fields", len(form.Fields))

	if o.outputPath != "" {
		if err := writeSchema(o.outputPath, form); err != nil {
			return WrapExitError(ExitCommandError, "write schema", err)
		}
	}
	if o.save {
		err := opts.withForms(cmd.Context(), true, func(forms []schema.FormSchema) ([]schema.FormSchema, error) {
			return library.Add(forms, form), nil
		})
		if err != nil {
			return err
		}
	}

	if out.JSON() {
		return out.Success(form)
	}
	if o.outputPath != "" || o.save {
		out.Printf("built %s (%d field(s))\n", form.ID, len(form.Fields))
		return nil
	}
	data, err := schema.Encode(form, schema.FormatYAML)
	if err != nil {
		return err
	}
	_, err = out.Writer.Write(data)
	return err
}
