package openapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-formkit/pkg/schema"
)

// Loader reads OpenAPI documents from disk or an fs.FS. Remote documents are
// not supported.
type Loader struct {
	fs fs.FS
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFileSystem injects an fs.FS used for fs sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = files
	}
}

// NewLoader builds a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load fetches the raw document behind src.
func (l *Loader) Load(ctx context.Context, src schema.Source) (Document, error) {
	if src == nil {
		return Document{}, errors.New("openapi loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case schema.SourceKindFS:
		if l.fs == nil {
			return Document{}, errors.New("openapi loader: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, src.Kind())
	}
	if err != nil {
		return Document{}, fmt.Errorf("openapi loader: read %s: %w", src.Location(), err)
	}
	return NewDocument(src, data)
}
