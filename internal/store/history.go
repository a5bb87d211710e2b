package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/inventaris/internal/db"
	"github.com/erazemk/inventaris/internal/model"
)

// AppendHistory inserts one history entry and returns its ID. Empty snapshot
// fields are stored as NULL.
func AppendHistory(ctx context.Context, q Querier, action model.Action, snap model.Snapshot, details string, at time.Time) (int64, error) {
	if !action.Valid() {
		return 0, fmt.Errorf("invalid history action %q", action)
	}

	var id int64
	err := q.QueryRowContext(ctx, q.Q(
		`INSERT INTO history (action, item_id, item_name, item_brand, item_serial, item_location, details, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		string(action), nullString(snap.ItemID), nullString(snap.Name), nullString(snap.Brand),
		nullString(snap.Serial), nullString(snap.Location), details, q.Time(at),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("appending history: %w", err)
	}
	return id, nil
}

// ListHistory returns history entries, most recent first. Entries are
// ordered by insertion, not by recorded_at, so a clock step does not reorder
// them. A limit of zero or less returns everything.
func ListHistory(ctx context.Context, q Querier, limit int) ([]model.HistoryEntry, error) {
	query := `SELECT id, action, item_id, item_name, item_brand, item_serial, item_location, details, recorded_at
		 FROM history ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, q.Q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var action string
		var itemID, name, brand, serial, location sql.NullString
		var recordedAt any
		if err := rows.Scan(&e.ID, &action, &itemID, &name, &brand, &serial, &location, &e.Details, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.Action = model.Action(action)
		e.ItemID = stringPtr(itemID)
		e.ItemName = stringPtr(name)
		e.ItemBrand = stringPtr(brand)
		e.ItemSerial = stringPtr(serial)
		e.ItemLocation = stringPtr(location)
		e.Timestamp = db.ParseTime(recordedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountHistory returns the number of history entries.
func CountHistory(ctx context.Context, q Querier) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
