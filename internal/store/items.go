package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/inventaris/internal/db"
	"github.com/erazemk/inventaris/internal/model"
)

const itemColumns = `id, seq, name, brand, serial_number, location, condition_before,
	checklist_flag, condition_after, notes, date_received, date_checked, qr_image_ref, created_at`

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var createdAt any
	err := s.Scan(&item.ID, &item.SequenceNumber, &item.Name, &item.Brand, &item.SerialNumber,
		&item.Location, &item.ConditionBefore, &item.ChecklistFlag, &item.ConditionAfter,
		&item.Notes, &item.DateReceived, &item.DateChecked, &item.QRImageRef, &createdAt)
	if err != nil {
		return nil, err
	}
	item.CreatedAt = db.ParseTime(createdAt)
	return item, nil
}

// MaxSequence returns the highest sequence number in use, or 0 if there are
// no items.
func MaxSequence(ctx context.Context, q Querier) (int64, error) {
	var maxSeq int64
	err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM items`).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("reading max sequence: %w", err)
	}
	return maxSeq, nil
}

// InsertItem inserts a fully populated item.
func InsertItem(ctx context.Context, q Querier, item *model.Item) error {
	_, err := q.ExecContext(ctx, q.Q(
		`INSERT INTO items (`+itemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		item.ID, item.SequenceNumber, item.Name, item.Brand, item.SerialNumber,
		item.Location, item.ConditionBefore, item.ChecklistFlag, item.ConditionAfter,
		item.Notes, item.DateReceived, item.DateChecked, item.QRImageRef, q.Time(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, q Querier, id string) (*model.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx, q.Q(
		`SELECT `+itemColumns+` FROM items WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items ordered by sequence number.
func ListItems(ctx context.Context, q Querier) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem writes every editable field of item. ID, sequence number and
// creation time are never touched. Returns false if the item does not exist.
func UpdateItem(ctx context.Context, q Querier, item *model.Item) (bool, error) {
	result, err := q.ExecContext(ctx, q.Q(
		`UPDATE items SET name = ?, brand = ?, serial_number = ?, location = ?,
		        condition_before = ?, checklist_flag = ?, condition_after = ?, notes = ?,
		        date_received = ?, date_checked = ?, qr_image_ref = ?
		 WHERE id = ?`),
		item.Name, item.Brand, item.SerialNumber, item.Location,
		item.ConditionBefore, item.ChecklistFlag, item.ConditionAfter, item.Notes,
		item.DateReceived, item.DateChecked, item.QRImageRef, item.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking updated rows: %w", err)
	}
	return n > 0, nil
}

// SetQRImageRef stores the QR image reference for an item.
func SetQRImageRef(ctx context.Context, q Querier, id, ref string) error {
	_, err := q.ExecContext(ctx, q.Q(`UPDATE items SET qr_image_ref = ? WHERE id = ?`), ref, id)
	if err != nil {
		return fmt.Errorf("setting qr image: %w", err)
	}
	return nil
}

// DeleteItem removes an item. Returns false if it did not exist.
func DeleteItem(ctx context.Context, q Querier, id string) (bool, error) {
	result, err := q.ExecContext(ctx, q.Q(`DELETE FROM items WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deleted rows: %w", err)
	}
	return n > 0, nil
}

// ItemStats counts all items and items per lower-cased name.
func ItemStats(ctx context.Context, q Querier) (*model.Stats, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT LOWER(name), COUNT(*) FROM items GROUP BY LOWER(name) ORDER BY LOWER(name)`)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}
	defer rows.Close()

	stats := &model.Stats{ByName: map[string]int{}}
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scanning item count: %w", err)
		}
		stats.ByName[strings.TrimSpace(name)] += count
		stats.Total += count
	}
	return stats, rows.Err()
}
