package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/pkg/lint"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// LintResult is the lint report of one schema file.
type LintResult struct {
	Path        string            `json:"path"`
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "lint <schema>...",
		Short: "Report authoring problems in schema files",
		Long: `Check schema files for unknown field types, duplicate ids, broken
formulas, references to missing fields, dependency cycles and rule
combinations that are easy to get wrong.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(rootOpts, cmd, args, strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as failures")
	return cmd
}

func runLint(opts *RootOptions, cmd *cobra.Command, paths []string, strict bool) error {
	out := opts.formatter(cmd)

	results := make([]LintResult, 0, len(paths))
	var errs, warns, infos int
	for _, path := range paths {
		form, err := schema.LoadFile(path)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeInvalid, err.Error(), nil, nil)
		}
		report := lint.Lint(form)
		opts.Logger().Debug("schema linted", "path", path, "diagnostics", len(report.Diagnostics))

		diagnostics := report.Diagnostics
		if diagnostics == nil {
			diagnostics = []lint.Diagnostic{}
		}
		results = append(results, LintResult{Path: path, Diagnostics: diagnostics})
		errs += report.Count(lint.SeverityError)
		warns += report.Count(lint.SeverityWarning)
		infos += report.Count(lint.SeverityInfo)

		if len(diagnostics) == 0 {
			out.Printf("✓ %s\n", path)
			continue
		}
		out.Printf("%s\n", path)
		for _, d := range diagnostics {
			out.Printf("  %s\n", d)
		}
	}
	out.Printf("%d file(s): %d error(s), %d warning(s), %d info\n", len(paths), errs, warns, infos)

	if errs > 0 || (strict && warns > 0) {
		msg := fmt.Sprintf("lint failed with %d error(s) and %d warning(s)", errs, warns)
		if out.JSON() {
			return out.Fail(ExitFailure, ErrCodeLint, msg, results, nil)
		}
		return NewExitError(ExitFailure, msg)
	}
	if out.JSON() {
		return out.Success(results)
	}
	return nil
}
