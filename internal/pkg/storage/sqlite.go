package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteOptions configures the SQLite backend.
type SQLiteOptions struct {
	// Path is the database file. ":memory:" is not supported; use a
	// "file:name?mode=memory&cache=shared" DSN through DSN instead.
	Path string
	// DSN overrides the DSN derived from Path when set.
	DSN string
	// BusyRetries is how many times a write hitting SQLITE_BUSY is retried.
	BusyRetries uint64
}

// SQLite implements Storage on a single kv table. The writer pool holds one
// connection so writes never interleave; readers use a separate small pool.
type SQLite struct {
	writer  *sql.DB
	reader  *sql.DB
	mu      sync.Mutex
	retries uint64
}

// NewSQLite opens the database, applies the embedded migrations and returns
// the store.
func NewSQLite(opts SQLiteOptions) (*SQLite, error) {
	dsn := strings.TrimSpace(opts.DSN)
	if dsn == "" {
		if strings.TrimSpace(opts.Path) == "" {
			return nil, errors.New("storage: sqlite path is required")
		}
		dsn = fmt.Sprintf(
			"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
			opts.Path,
		)
	}

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.Ping(); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("storage: ping writer: %w", err)
	}

	if err := runMigrations(writer); err != nil {
		_ = writer.Close()
		return nil, err
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("storage: open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	if err := reader.Ping(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, fmt.Errorf("storage: ping reader: %w", err)
	}

	retries := opts.BusyRetries
	if retries == 0 {
		retries = 3
	}

	return &SQLite{writer: writer, reader: reader, retries: retries}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("storage: create migration source: %w", err)
	}

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("storage: create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("storage: create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("storage: run migrations: %w", err)
	}

	return nil
}

// Get returns the value stored under key.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.reader.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return value, nil
}

// Put replaces the value under key inside a single transaction.
func (s *SQLite) Put(ctx context.Context, key string, value []byte) error {
	return s.write(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, time.Now().UnixMilli(),
		)
		return err
	})
}

// Delete removes key.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	return s.write(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
		return err
	})
}

func (s *SQLite) write(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := retry.WithMaxRetries(s.retries, retry.NewExponential(25*time.Millisecond))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := s.tx(ctx, fn)
		if isBusy(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *SQLite) tx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("storage: write: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}

	return nil
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// Close closes both connection pools and returns the first error.
func (s *SQLite) Close() error {
	var firstErr error

	if err := s.reader.Close(); err != nil {
		firstErr = fmt.Errorf("storage: close reader: %w", err)
	}

	if err := s.writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("storage: close writer: %w", err)
	}

	return firstErr
}
