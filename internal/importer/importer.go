// Package importer turns spreadsheet rows into inventory items.
package importer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/erazemk/inventaris/internal/dates"
	"github.com/erazemk/inventaris/internal/inventory"
	"github.com/erazemk/inventaris/internal/model"
)

var (
	// ErrNoRows is returned when the batch is empty.
	ErrNoRows = errors.New("no rows to import")
	// ErrNoValidRows is returned when no row carries an item name.
	ErrNoValidRows = errors.New("no valid rows found")
)

// ItemCreator persists one imported draft.
type ItemCreator interface {
	CreateImported(ctx context.Context, d model.Draft) (*model.Item, error)
}

// RowError describes a row that had a name but could not be stored. Reason
// is shown to clients, so only validation messages are passed through.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result summarizes an import.
type Result struct {
	ImportedCount int        `json:"importedCount"`
	Skipped       int        `json:"skipped"`
	Failed        []RowError `json:"failed"`
}

// Reconciler maps rows to drafts and creates them one at a time.
type Reconciler struct {
	Items  ItemCreator
	Dates  dates.Normalizer
	Logger *slog.Logger
}

// NewReconciler returns a Reconciler writing through items.
func NewReconciler(items ItemCreator, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{Items: items, Logger: logger}
}

// Import creates an item for every row that has a name. Rows are committed
// one by one, so a failed row leaves earlier rows in place. Row numbers in
// the result are 1-based positions in rows.
func (r *Reconciler) Import(ctx context.Context, rows []Row) (*Result, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res := &Result{Failed: []RowError{}}
	valid := 0
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		d, ok := r.Draft(row)
		if !ok {
			res.Skipped++
			continue
		}
		valid++

		item, err := r.Items.CreateImported(ctx, d)
		if err != nil {
			level := slog.LevelError
			var ve *inventory.ValidationError
			if errors.As(err, &ve) {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "import row failed", "row", i+1, "name", d.Name, "error", err)
			res.Failed = append(res.Failed, RowError{Row: i + 1, Reason: rowReason(err)})
			continue
		}
		logger.DebugContext(ctx, "imported row", "row", i+1, "item_id", item.ID)
		res.ImportedCount++
	}

	if valid == 0 {
		return nil, ErrNoValidRows
	}
	logger.InfoContext(ctx, "import finished",
		"imported", res.ImportedCount, "skipped", res.Skipped, "failed", len(res.Failed))
	return res, nil
}

func rowReason(err error) string {
	var ve *inventory.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return "internal error"
}

// Draft maps one row to a draft. It returns false when the row has no name.
func (r *Reconciler) Draft(row Row) (model.Draft, bool) {
	v := Resolve(row)
	if v[FieldName] == "" {
		return model.Draft{}, false
	}

	date := r.Dates.Normalize(v[FieldDate])
	received := date
	if v[FieldDateReceived] != "" {
		received = r.Dates.Normalize(v[FieldDateReceived])
	}

	return model.Draft{
		Name:            v[FieldName],
		Brand:           v[FieldBrand],
		SerialNumber:    v[FieldSerialNumber],
		Location:        v[FieldLocation],
		ConditionBefore: v[FieldConditionBefore],
		ChecklistFlag:   v[FieldChecklistFlag],
		ConditionAfter:  v[FieldConditionAfter],
		Notes:           v[FieldNotes],
		DateChecked:     date,
		DateReceived:    received,
	}, true
}
