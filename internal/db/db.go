package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// PingTimeout bounds how long New waits for the store to answer.
const PingTimeout = 5 * time.Second

// Querier is satisfied by *sql.DB and *sql.Tx so repository code can run
// either inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps the sql.DB for connection management. One DB is built at process
// start and handed to every repository.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
}

type options struct {
	maxOpenConns int
}

type Option func(*options)

// WithMaxOpenConns bounds the connection pool. Ignored for in-memory stores,
// which must stay on a single connection.
func WithMaxOpenConns(n int) Option {
	return func(o *options) { o.maxOpenConns = n }
}

// New opens and pings the store at dsn.
func New(ctx context.Context, dsn string, logger *slog.Logger, opts ...Option) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{maxOpenConns: 10}
	for _, fn := range opts {
		fn(&o)
	}
	if dsn == "" {
		return nil, errors.New("empty dsn")
	}

	conn, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if IsMemory(dsn) {
		// every connection to :memory: is a distinct database
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
	} else {
		conn.SetMaxOpenConns(o.maxOpenConns)
		conn.SetMaxIdleConns(o.maxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	logger.Debug("database opened", slog.String("dsn", dsn), slog.Bool("memory", IsMemory(dsn)))
	return &DB{conn: conn, logger: logger}, nil
}

// IsMemory reports whether dsn names an in-memory store.
func IsMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	p := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if !IsMemory(dsn) {
		p += "&_pragma=journal_mode(WAL)"
	}
	return dsn + sep + p
}

// Close closes the DB connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Exec executes a query
func (db *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, query, args...)
}

// QueryRow executes a query that is expected to return at most one row
func (db *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, query, args...)
}

// QueryRows executes a query returning rows. Callers must close the rows
// before issuing another statement against an in-memory store.
func (db *DB) QueryRows(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, query, args...)
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("rollback failed", slog.Any("err", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping checks the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// GetConn returns the underlying sql.DB
func (db *DB) GetConn() *sql.DB {
	return db.conn
}

// FromConn wraps an existing pool, used with sqlmock in tests.
func FromConn(conn *sql.DB, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{conn: conn, logger: logger}
}
