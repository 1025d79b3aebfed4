// Package filestore keeps the saved forms list in one JSON or YAML file. The
// format follows the file extension; writes go through a temp file and a
// rename so readers never see a half-written list.
package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/store"
)

// Driver is the registry name of this backend.
const Driver = "file"

func init() {
	store.Default().MustRegister(Driver, func(_ context.Context, cfg store.Config) (store.Store, error) {
		return Open(cfg.Path, cfg.Logger)
	})
}

// Store is a file-backed store.
type Store struct {
	mu     sync.Mutex
	path   string
	format schema.Format
	logger *slog.Logger
	closed bool
}

// Open prepares a store at path. The file is created on the first Save.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("filestore: path is required")
	}
	return &Store{
		path:   path,
		format: schema.FormatFromPath(path),
		logger: logging.OrDiscard(logger),
	}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the saved list. A missing or empty file is an empty list.
func (s *Store) Load(ctx context.Context) ([]schema.FormSchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []schema.FormSchema{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []schema.FormSchema{}, nil
	}
	forms, err := schema.DecodeList(data)
	if err != nil {
		return nil, fmt.Errorf("filestore: %s: %w", s.path, err)
	}
	return forms, nil
}

// Save replaces the file contents with forms.
func (s *Store) Save(ctx context.Context, forms []schema.FormSchema) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}

	data, err := schema.EncodeList(forms, s.format)
	if err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("filestore: write %s: %w", s.path, err)
	}
	s.logger.Debug("forms saved", "path", s.path, "count", len(forms))
	return nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
