// Package store persists the saved forms list. Backends live in sub-packages
// and register themselves by driver name, the way database/sql drivers do;
// import them for side effects and call Open.
package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/goliatone/go-formkit/pkg/schema"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Store loads and saves the whole ordered list of saved forms. Save replaces
// what was stored. Implementations are safe for concurrent use.
type Store interface {
	Load(ctx context.Context) ([]schema.FormSchema, error)
	Save(ctx context.Context, forms []schema.FormSchema) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Driver names a registered backend: file, sqlite or badger.
	Driver string `json:"driver" yaml:"driver"`
	// Path is the file, database file or database directory.
	Path string `json:"path" yaml:"path"`
	// InMemory asks backends that support it to keep data in memory only.
	InMemory bool `json:"inMemory,omitempty" yaml:"inMemory,omitempty"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

// Opener builds a backend from a Config.
type Opener func(ctx context.Context, cfg Config) (Store, error)

// Open builds a Store using the default registry.
func Open(ctx context.Context, cfg Config) (Store, error) {
	return defaultRegistry.Open(ctx, cfg)
}
