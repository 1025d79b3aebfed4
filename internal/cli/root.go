package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/pkg/config"
	"github.com/goliatone/go-formkit/pkg/prompt"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath  string
	StorePath   string
	StoreDriver string
	LogLevel    string
	LogFormat   string
	Format      string // "json" | "text"

	// Driver answers interactive prompts. Nil means the terminal.
	Driver prompt.Driver

	cfg    config.Config
	logger *slog.Logger
}

// Config returns the configuration resolved for the running command.
func (o *RootOptions) Config() config.Config { return o.cfg }

// Logger returns the command logger, never nil.
func (o *RootOptions) Logger() *slog.Logger { return logging.OrDiscard(o.logger) }

// NewRootCommand creates the root command for the formkit CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts so callers
// can inject a prompt driver.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formkit",
		Short: "formkit - form schema toolkit",
		Long: `Author, lint, evaluate and fill form schemas.

A form schema is an ordered list of fields with validation rules. Derived
fields carry a formula over other fields and are recomputed until values
settle.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "configuration file (JSON or YAML)")
	flags.StringVar(&opts.StorePath, "store", "", "saved forms location (overrides config)")
	flags.StringVar(&opts.StoreDriver, "store-driver", "", "saved forms backend: file, sqlite or badger (overrides config)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	flags.StringVar(&opts.LogFormat, "log-format", "", "log format: text or json (overrides config)")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewLintCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewFillCommand(opts))
	cmd.AddCommand(NewFormsCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewBuilderCommand(opts))

	return cmd
}

// resolve loads the configuration, applies flag overrides and builds the
// logger. Logs go to stderr so JSON output on stdout stays parseable.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load configuration", err)
	}
	if o.StorePath != "" {
		cfg.Store.Path = o.StorePath
	}
	if o.StoreDriver != "" {
		cfg.Store.Driver = o.StoreDriver
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Log.Format = o.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return WrapExitError(ExitCommandError, "configure logging", err)
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
