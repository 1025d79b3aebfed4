// Package sqlitestore keeps saved forms in a SQLite database, one row per
// form. Row position preserves list order; the payload column holds the JSON
// form document.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/store"
)

// Driver is the registry name of this backend.
const Driver = "sqlite"

//go:embed schema.sql
var schemaSQL string

func init() {
	store.Default().MustRegister(Driver, func(ctx context.Context, cfg store.Config) (store.Store, error) {
		path := cfg.Path
		if cfg.InMemory {
			path = ":memory:"
		}
		return Open(ctx, path, cfg.Logger)
	})
}

// Store is a SQLite-backed store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	closed atomic.Bool
}

// Open creates or opens the database at path and applies the schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlitestore: path is required")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps :memory:
	// databases alive between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: connect %s: %w", path, err)
	}
	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: apply schema: %w", err)
	}

	log := logging.OrDiscard(logger)
	log.Debug("sqlite store opened", "path", path)
	return &Store{db: db, logger: log}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("sqlitestore: %q: %w", pragma, err)
		}
	}
	return nil
}

// Load returns the saved forms in list order.
func (s *Store) Load(ctx context.Context) ([]schema.FormSchema, error) {
	if s.closed.Load() {
		return nil, store.ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM forms ORDER BY position`)
	if err != nil {
		return nil, s.wrap("load", err)
	}
	defer rows.Close()

	forms := []schema.FormSchema{}
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, s.wrap("scan", err)
		}
		var form schema.FormSchema
		if err := json.Unmarshal([]byte(payload), &form); err != nil {
			return nil, fmt.Errorf("sqlitestore: decode form %q: %w", id, err)
		}
		forms = append(forms, form)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("load", err)
	}
	return forms, nil
}

// Save replaces every stored row with forms in one transaction.
func (s *Store) Save(ctx context.Context, forms []schema.FormSchema) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap("begin", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM forms`); err != nil {
		return s.wrap("clear", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO forms (id, position, name, created_at, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return s.wrap("prepare", err)
	}
	defer stmt.Close()

	for i, form := range forms {
		payload, err := json.Marshal(form)
		if err != nil {
			return fmt.Errorf("sqlitestore: encode form %q: %w", form.ID, err)
		}
		createdAt := form.CreatedAt.UTC().Format(time.RFC3339Nano)
		if _, err := stmt.ExecContext(ctx, form.ID, i, form.Name, createdAt, string(payload)); err != nil {
			return fmt.Errorf("sqlitestore: insert form %q: %w", form.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return s.wrap("commit", err)
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
	return fmt.Errorf("sqlitestore: %s: %w", op, err)
}
