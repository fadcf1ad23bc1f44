// Package db provides the listing store backed by SQLite or PostgreSQL.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/jonathan/job-autopilot/migrations"
)

// timeLayout is how timestamps are stored in both backends.
const timeLayout = "2006-01-02T15:04:05Z"

// Dialect identifies the SQL backend behind a DB.
type Dialect string

// Supported backends.
const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DB wraps a database/sql handle for one of the supported backends.
// Queries are written once with ? placeholders and rebound per dialect.
type DB struct {
	conn    *sql.DB
	dialect Dialect
	now     func() time.Time
}

// ParseURL splits a DATABASE_URL into its dialect and driver DSN.
// sqlite://path, file:path and :memory: select SQLite; postgres:// and
// postgresql:// select PostgreSQL.
func ParseURL(databaseURL string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return Postgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		dsn := strings.TrimPrefix(databaseURL, "sqlite://")
		if dsn == "" {
			return "", "", fmt.Errorf("sqlite URL has no path: %q", databaseURL)
		}
		return SQLite, dsn, nil
	case strings.HasPrefix(databaseURL, "file:"), databaseURL == ":memory:":
		return SQLite, databaseURL, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL %q: expected sqlite:// or postgres://", databaseURL)
	}
}

// Connect opens the database named by databaseURL and applies pending migrations.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	dialect, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	var conn *sql.DB
	switch dialect {
	case SQLite:
		conn, err = openSQLite(dsn)
	case Postgres:
		conn, err = sql.Open("pgx", dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.Run(conn, migrationDialect(dialect)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &DB{conn: conn, dialect: dialect, now: time.Now}, nil
}

func openSQLite(dsn string) (*sql.DB, error) {
	if path := sqlitePath(dsn); path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection keeps :memory: databases shared and serializes writers.
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return conn, nil
}

// sqlitePath returns the on-disk file of a DSN, or "" for in-memory databases.
func sqlitePath(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}

func migrationDialect(d Dialect) string {
	if d == Postgres {
		return migrations.DialectPostgres
	}
	return migrations.DialectSQLite
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Dialect reports which backend the store is using.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Ping verifies that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (db *DB) rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, db.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, db.rebind(query), args...)
}

// timestamp returns the current time in the stored layout.
func (db *DB) timestamp() string {
	return db.now().UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// isNoRows reports whether err means the query matched nothing.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// GetUserData returns a stored key/value setting, or "" when unset.
func (db *DB) GetUserData(ctx context.Context, key string) (string, error) {
	var value string
	err := db.queryRow(ctx, `SELECT value FROM user_data WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if isNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get user data %s: %w", key, err)
	}
	return value, nil
}

// SetUserData stores a key/value setting, replacing any previous value.
func (db *DB) SetUserData(ctx context.Context, key, value string) error {
	_, err := db.exec(ctx,
		`INSERT INTO user_data (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, db.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("failed to set user data %s: %w", key, err)
	}
	return nil
}
