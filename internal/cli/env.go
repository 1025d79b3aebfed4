package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/pkg/engine"
	"github.com/goliatone/go-formkit/pkg/library"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/store"

	_ "github.com/goliatone/go-formkit/pkg/store/badgerstore"
	_ "github.com/goliatone/go-formkit/pkg/store/filestore"
	_ "github.com/goliatone/go-formkit/pkg/store/sqlitestore"
)

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

func (o *RootOptions) coordinator() *engine.Coordinator {
	return engine.New(
		engine.WithMaxPasses(o.cfg.Engine.MaxPasses),
		engine.WithLogger(o.Logger()),
	)
}

func (o *RootOptions) openStore(ctx context.Context) (store.Store, error) {
	s, err := store.Open(ctx, store.Config{
		Driver: o.cfg.Store.Driver,
		Path:   o.cfg.Store.Path,
		Logger: o.Logger(),
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}
	return s, nil
}

// withForms loads the saved list, hands it to fn and saves what fn returns
// when save is true.
func (o *RootOptions) withForms(ctx context.Context, save bool, fn func([]schema.FormSchema) ([]schema.FormSchema, error)) error {
	s, err := o.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	forms, err := s.Load(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "load saved forms", err)
	}
	updated, err := fn(forms)
	if err != nil {
		return err
	}
	if !save {
		return nil
	}
	if err := s.Save(ctx, updated); err != nil {
		return WrapExitError(ExitCommandError, "save forms", err)
	}
	return nil
}

// loadSchema reads ref as a schema file, or looks it up among the saved
// forms by id or name when no such file exists.
func (o *RootOptions) loadSchema(ctx context.Context, ref string) (schema.FormSchema, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		form, err := schema.LoadFile(ref)
		if err != nil {
			return schema.FormSchema{}, WrapExitError(ExitCommandError, "load schema", err)
		}
		return form, nil
	}

	var form schema.FormSchema
	err := o.withForms(ctx, false, func(forms []schema.FormSchema) ([]schema.FormSchema, error) {
		found, err := library.Lookup(forms, ref)
		if err != nil {
			return nil, err
		}
		form = found
		return forms, nil
	})
	if errors.Is(err, library.ErrNotFound) {
		return schema.FormSchema{}, WrapExitError(ExitCommandError, fmt.Sprintf("no schema file or saved form %q", ref), err)
	}
	return form, err
}
