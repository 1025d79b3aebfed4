package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/pkg/library"
	"github.com/goliatone/go-formkit/pkg/lint"
	"github.com/goliatone/go-formkit/pkg/openapi"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// NewImportCommand creates the import command group.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create form schemas from other documents",
	}
	cmd.AddCommand(newImportOpenAPICommand(rootOpts))
	return cmd
}

func newImportOpenAPICommand(opts *RootOptions) *cobra.Command {
	var (
		operationID string
		outputPath  string
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "openapi <document>",
		Short: "Build a form from an operation's request body",
		Long: `Build a form from the JSON request body of an OpenAPI 3 operation.

Each top-level property becomes a field: enums become selects, booleans
checkboxes, numbers and integers number fields, and date formats date
fields. String limits, email and password formats become validation rules.
The x-formkit-formula, x-formkit-type, x-formkit-label and x-formkit-order
extensions refine the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportOpenAPI(opts, cmd, args[0], operationID, outputPath, save)
		},
	}
	cmd.Flags().StringVar(&operationID, "operation", "", "operation id, or method:path such as post:/orders")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the schema to this file (YAML for .yaml/.yml, JSON otherwise)")
	cmd.Flags().BoolVar(&save, "save", false, "save the schema to the library")
	_ = cmd.MarkFlagRequired("operation")
	return cmd
}

func runImportOpenAPI(opts *RootOptions, cmd *cobra.Command, path, operationID, outputPath string, save bool) error {
	out := opts.formatter(cmd)
	ctx := cmd.Context()

	doc, err := openapi.NewLoader().Load(ctx, schema.SourceFromFile(path))
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil, nil)
	}
	op, err := openapi.NewParser().Operation(ctx, doc, operationID)
	if err != nil {
		code := ErrCodeInvalid
		if errors.Is(err, openapi.ErrOperationNotFound) {
			code = ErrCodeNotFound
		}
		return out.Fail(ExitCommandError, code, err.Error(), nil, nil)
	}
	form, err := openapi.NewImporter(openapi.WithLogger(opts.Logger())).Import(op)
	if err != nil {
		return out.Fail(ExitFailure, ErrCodeInvalid, err.Error(), nil, nil)
	}

	for _, d := range lint.Lint(form).Diagnostics {
		opts.Logger().Warn("imported schema", "diagnostic", d.String())
	}

	if outputPath != "" {
		if err := writeSchema(outputPath, form); err != nil {
			return WrapExitError(ExitCommandError, "write schema", err)
		}
	}
	if save {
		err := opts.withForms(ctx, true, func(forms []schema.FormSchema) ([]schema.FormSchema, error) {
			return library.Add(forms, form), nil
		})
		if err != nil {
			return err
		}
	}

	if out.JSON() {
		return out.Success(form)
	}
	if outputPath != "" || save {
		out.Printf("imported %s (%d field(s))\n", form.ID, len(form.Fields))
		return nil
	}
	data, err := schema.Encode(form, schema.FormatYAML)
	if err != nil {
		return err
	}
	_, err = out.Writer.Write(data)
	return err
}

// writeSchema encodes form as YAML for .yaml and .yml paths, JSON otherwise.
func writeSchema(path string, form schema.FormSchema) error {
	data, err := schema.Encode(form, schema.FormatFromPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
