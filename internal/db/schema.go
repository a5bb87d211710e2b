package db

import (
	"fmt"

	"github.com/erazemk/inventaris/internal/config"
)

// schemaSQLite is the full SQLite schema.
const schemaSQLite = `
CREATE TABLE IF NOT EXISTS items (
    id               TEXT PRIMARY KEY,
    seq              INTEGER NOT NULL UNIQUE CHECK (seq > 0),
    name             TEXT NOT NULL,
    brand            TEXT NOT NULL DEFAULT '',
    serial_number    TEXT NOT NULL DEFAULT '',
    location         TEXT NOT NULL DEFAULT '',
    condition_before TEXT NOT NULL DEFAULT '',
    checklist_flag   TEXT NOT NULL DEFAULT 'Tidak',
    condition_after  TEXT NOT NULL DEFAULT '',
    notes            TEXT NOT NULL DEFAULT '',
    date_received    TEXT NOT NULL DEFAULT '',
    date_checked     TEXT NOT NULL DEFAULT '',
    qr_image_ref     TEXT NOT NULL DEFAULT '',
    created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS history (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    action        TEXT NOT NULL CHECK (action IN ('CREATE', 'UPDATE', 'DELETE')),
    item_id       TEXT,
    item_name     TEXT,
    item_brand    TEXT,
    item_serial   TEXT,
    item_location TEXT,
    details       TEXT NOT NULL DEFAULT '',
    recorded_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_recorded_at ON history(recorded_at DESC);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TEXT NOT NULL
);
`

// schemaPostgres mirrors schemaSQLite for PostgreSQL.
const schemaPostgres = `
CREATE TABLE IF NOT EXISTS items (
    id               TEXT PRIMARY KEY,
    seq              BIGINT NOT NULL UNIQUE CHECK (seq > 0),
    name             TEXT NOT NULL,
    brand            TEXT NOT NULL DEFAULT '',
    serial_number    TEXT NOT NULL DEFAULT '',
    location         TEXT NOT NULL DEFAULT '',
    condition_before TEXT NOT NULL DEFAULT '',
    checklist_flag   TEXT NOT NULL DEFAULT 'Tidak',
    condition_after  TEXT NOT NULL DEFAULT '',
    notes            TEXT NOT NULL DEFAULT '',
    date_received    TEXT NOT NULL DEFAULT '',
    date_checked     TEXT NOT NULL DEFAULT '',
    qr_image_ref     TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS history (
    id            BIGSERIAL PRIMARY KEY,
    action        TEXT NOT NULL CHECK (action IN ('CREATE', 'UPDATE', 'DELETE')),
    item_id       TEXT,
    item_name     TEXT,
    item_brand    TEXT,
    item_serial   TEXT,
    item_location TEXT,
    details       TEXT NOT NULL DEFAULT '',
    recorded_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_recorded_at ON history(recorded_at DESC);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(d *DB) error {
	schema := schemaSQLite
	if d.driver == config.DriverPostgres {
		schema = schemaPostgres
	}
	if _, err := d.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
