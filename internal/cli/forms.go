package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/pkg/library"
	"github.com/goliatone/go-formkit/pkg/lint"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// FormSummary is one line of the saved forms list.
type FormSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Fields    int       `json:"fields"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFormsCommand creates the forms command group.
func NewFormsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Manage saved forms",
	}
	cmd.AddCommand(newFormsListCommand(rootOpts))
	cmd.AddCommand(newFormsShowCommand(rootOpts))
	cmd.AddCommand(newFormsAddCommand(rootOpts))
	cmd.AddCommand(newFormsRemoveCommand(rootOpts))
	return cmd
}

func newFormsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved forms, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			var summaries []FormSummary
			err := opts.withForms(cmd.Context(), false, func(forms []schema.FormSchema) ([]schema.FormSchema, error) {
				summaries = make([]FormSummary, 0, len(forms))
				for _, f := range forms {
					summaries = append(summaries, FormSummary{ID: f.ID, Name: f.Name, Fields: len(f.Fields), CreatedAt: f.CreatedAt})
				}
				return forms, nil
			})
			if err != nil {
				return err
			}
			if out.JSON() {
				return out.Success(summaries)
			}
			if len(summaries) == 0 {
				out.Printf("no saved forms\n")
				return nil
			}
			tw := tabwriter.NewWriter(out.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tFIELDS\tCREATED")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Fields, s.CreatedAt.UTC().Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newFormsShowCommand(opts *RootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id-or-name>",
		Short: "Print a saved form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			var form schema.FormSchema
			err := opts.withForms(cmd.Context(), false, func(forms []schema.FormSchema) ([]schema.FormSchema, error) {
				found, err := library.Lookup(forms, args[0])
				if err != nil {
					return nil, out.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil, nil)
				}
				form = found
				return forms, nil
			})
			if err != nil {
				return err
			}
			if out.JSON() {
				return out.Success(form)
			}
			format := schema.FormatYAML
			if asJSON {
				format = schema.FormatJSON
			}
			data, err := schema.Encode(form, format)
			if err != nil {
				return err
			}
			_, err = out.Writer.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the schema document as JSON instead of YAML")
	return cmd
}

func newFormsAddCommand(opts *RootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "add <schema-file>",
		Short: "Save a schema file to the library",
		Long: `Save a schema file to the library. A saved form with the same id is
replaced. Schemas with lint errors are refused unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			form, err := schema.LoadFile(args[0])
			if err != nil {
				return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil, nil)
			}
			if report := lint.Lint(form); report.HasErrors() && !force {
				return out.Fail(ExitFailure, ErrCodeLint, fmt.Sprintf("%s has lint errors; run lint for details", args[0]), nil, report.Diagnostics)
			}
			err = opts.withForms(cmd.Context(), true, func(forms []schema.FormSchema) ([]schema.FormSchema, error) {
				return library.Add(forms, form.Sanitized()), nil
			})
			if err != nil {
				return err
			}
			opts.Logger().Debug("form saved", "id", form.ID)
			if out.JSON() {
				return out.Success(map[string]string{"id": form.ID})
			}
			out.Printf("saved %s\n", form.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "save even when lint reports errors")
	return cmd
}

func newFormsRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a saved form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			err := opts.withForms(cmd.Context(), true, func(forms []schema.FormSchema) ([]schema.FormSchema, error) {
				if _, err := library.Find(forms, args[0]); err != nil {
					return nil, out.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil, nil)
				}
				return library.Remove(forms, args[0]), nil
			})
			if err != nil {
				return err
			}
			if out.JSON() {
				return out.Success(map[string]string{"id": args[0]})
			}
			out.Printf("removed %s\n", args[0])
			return nil
		},
	}
}
