package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/inventaris/internal/config"
)

// DB wraps a database handle with the driver it was opened with, so store
// code can write one query for both SQLite and PostgreSQL.
type DB struct {
	*sql.DB
	driver string
}

// Tx is a transaction carrying the same driver information as DB.
type Tx struct {
	*sql.Tx
	driver string
}

// Open opens the database selected by cfg.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLite.Path)
	case config.DriverPostgres:
		return OpenPostgres(cfg.Postgres.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// OpenSQLite opens a SQLite database connection and configures pragmas.
func OpenSQLite(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection: SQLite has a single writer anyway, pragmas are
	// per-connection and ":memory:" databases are per-connection too.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	return &DB{DB: sqlDB, driver: config.DriverSQLite}, nil
}

// OpenPostgres opens a PostgreSQL connection pool through pgx.
func OpenPostgres(dsn string) (*DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return &DB{DB: sqlDB, driver: config.DriverPostgres}, nil
}

// Driver returns the driver name (config.DriverSQLite or config.DriverPostgres).
func (d *DB) Driver() string { return d.driver }

// Q rewrites ? placeholders for PostgreSQL and passes through for SQLite.
func (d *DB) Q(query string) string { return rebindFor(d.driver, query) }

// Q rewrites ? placeholders for PostgreSQL and passes through for SQLite.
func (t *Tx) Q(query string) string { return rebindFor(t.driver, query) }

// Time converts a timestamp into the representation stored by the driver.
// SQLite keeps fixed-width UTC text so that ordering by the column is
// chronological.
func (d *DB) Time(t time.Time) any { return timeFor(d.driver, t) }

// Time converts a timestamp into the representation stored by the driver.
func (t *Tx) Time(ts time.Time) any { return timeFor(t.driver, ts) }

// InTx runs fn inside a transaction, committing if fn returns nil.
func (d *DB) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{Tx: sqlTx, driver: d.driver}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique or primary key
// constraint failure from either driver.
func IsUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
		}
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timeFor(driver string, t time.Time) any {
	if driver == config.DriverPostgres {
		return t.UTC()
	}
	return t.UTC().Format(sqliteTimeLayout)
}

func rebindFor(driver, query string) string {
	if driver == config.DriverPostgres {
		return Rebind(query)
	}
	return query
}

// Rebind rewrites ? placeholders to $1, $2, ... for PostgreSQL.
func Rebind(query string) string {
	n := 0
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}

// ParseTime converts a scanned timestamp value to time.Time.
// SQLite returns text, PostgreSQL returns time.Time.
func ParseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case []byte:
		return ParseTime(string(t))
	case string:
		if t == "" {
			return time.Time{}
		}
		for _, layout := range []string{
			time.RFC3339Nano,
			"2006-01-02 15:04:05",
			"2006-01-02 15:04:05-07:00",
			"2006-01-02 15:04:05.999999999-07:00",
		} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
