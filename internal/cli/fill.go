package cli

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/pkg/prompt"
	"github.com/goliatone/go-formkit/pkg/session"
)

// NewFillCommand creates the fill command.
func NewFillCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		outputPath  string
		maxAttempts int
	)

	cmd := &cobra.Command{
		Use:   "fill <schema-or-id>",
		Short: "Fill a form interactively",
		Long: `Prompt for every editable field in order. Input that fails the field's
rules is reported and asked for again; derived values are shown as they
change. The submitted values are printed, or written to --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFill(rootOpts, cmd, args[0], outputPath, maxAttempts)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write submitted values as JSON to this file")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", prompt.DefaultMaxAttempts, "attempts per field before giving up")
	return cmd
}

func runFill(opts *RootOptions, cmd *cobra.Command, ref, outputPath string, maxAttempts int) error {
	out := opts.formatter(cmd)

	form, err := opts.loadSchema(cmd.Context(), ref)
	if err != nil {
		return err
	}
	sess := session.New(form,
		session.WithCoordinator(opts.coordinator()),
		session.WithLogger(opts.Logger()),
	)

	filler := prompt.NewFiller(opts.Driver,
		prompt.WithMaxAttempts(maxAttempts),
		prompt.WithLogger(opts.Logger()),
	)
	values, err := filler.Fill(cmd.Context(), sess)
	if err != nil {
		var invalid *prompt.InvalidFormError
		switch {
		case errors.As(err, &invalid):
			return out.Fail(ExitFailure, ErrCodeInvalid, err.Error(), nil, invalid.Errors)
		case errors.Is(err, prompt.ErrAborted):
			return out.Fail(ExitCommandError, ErrCodeGeneric, "aborted", nil, nil)
		default:
			return out.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil, nil)
		}
	}

	if outputPath != "" {
		payload, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(outputPath, append(payload, '\n'), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "write values", err)
		}
		opts.Logger().Info("values written", "path", outputPath)
	}

	if out.JSON() {
		return out.Success(values)
	}
	out.Printf("submitted %s\n", displayName(form))
	for _, field := range form.Fields {
		out.Printf("  %s = %s\n", field.ID, formatValue(values.Get(field.ID)))
	}
	if outputPath != "" {
		out.Printf("values written to %s\n", outputPath)
	}
	return nil
}
