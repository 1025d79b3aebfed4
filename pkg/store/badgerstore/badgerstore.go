// Package badgerstore keeps saved forms in a Badger key-value database. Each
// form is stored under its own key and a separate order key holds the list
// order.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/store"
)

// Driver is the registry name of this backend.
const Driver = "badger"

var (
	formPrefix = []byte("form/")
	orderKey   = []byte("meta/order")
)

func init() {
	store.Default().MustRegister(Driver, func(_ context.Context, cfg store.Config) (store.Store, error) {
		return Open(Config{Path: cfg.Path, InMemory: cfg.InMemory, Logger: cfg.Logger})
	})
}

// Config configures the database.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	Logger     *slog.Logger
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a Badger-backed store.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	closed atomic.Bool
}

// Open opens or creates the database.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badgerstore: path is required for a persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("badgerstore: create directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open: %w", err)
	}
	return &Store{db: db, logger: logging.OrDiscard(cfg.Logger)}, nil
}

func formKey(id string) []byte {
	return append(append([]byte(nil), formPrefix...), id...)
}

// Load returns the saved forms in list order.
func (s *Store) Load(ctx context.Context) ([]schema.FormSchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, store.ErrClosed
	}
	forms := []schema.FormSchema{}
	err := s.db.View(func(txn *badger.Txn) error {
		ids, err := readOrder(txn)
		if err != nil {
			return err
		}
		for _, id := range ids {
			item, err := txn.Get(formKey(id))
			if err != nil {
				return fmt.Errorf("form %q: %w", id, err)
			}
			var form schema.FormSchema
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &form)
			}); err != nil {
				return fmt.Errorf("decode form %q: %w", id, err)
			}
			forms = append(forms, form)
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap("load", err)
	}
	return forms, nil
}

func readOrder(txn *badger.Txn) ([]string, error) {
	item, err := txn.Get(orderKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &ids)
	})
	return ids, err
}

// Save replaces the stored list with forms in one transaction.
func (s *Store) Save(ctx context.Context, forms []schema.FormSchema) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return store.ErrClosed
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		var stale [][]byte
		it := txn.NewIterator(badger.IteratorOptions{Prefix: formPrefix})
		for it.Rewind(); it.Valid(); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		ids := make([]string, 0, len(forms))
		for _, form := range forms {
			payload, err := json.Marshal(form)
			if err != nil {
				return fmt.Errorf("encode form %q: %w", form.ID, err)
			}
			if err := txn.Set(formKey(form.ID), payload); err != nil {
				return err
			}
			ids = append(ids, form.ID)
		}
		order, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		return txn.Set(orderKey, order)
	})
	if err != nil {
		return s.wrap("save", err)
	}
	s.logger.Debug("forms saved", "count", len(forms))
	return nil
}

// Close closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) wrap(op string, err error) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return fmt.Errorf("badgerstore: %s: %w", op, store.ErrClosed)
	}
	return fmt.Errorf("badgerstore: %s: %w", op, err)
}
