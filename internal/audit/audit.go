// Package audit appends history entries for inventory mutations.
//
// A failed write never fails the mutation that triggered it. It is logged at
// ERROR level, which the server routes to stderr, and counted so that
// operators can see it through the health endpoint.
package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/erazemk/inventaris/internal/model"
	"github.com/erazemk/inventaris/internal/store"
)

// Recorder writes history entries to the database.
type Recorder struct {
	db       store.Querier
	logger   *slog.Logger
	now      func() time.Time
	failures atomic.Int64
}

// NewRecorder returns a Recorder writing to db. A nil logger uses slog's default.
func NewRecorder(db store.Querier, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{db: db, logger: logger, now: time.Now}
}

// Record appends one history entry synchronously. It does not return an
// error: a failure is reported to the log and the failure counter.
//
// The write is detached from ctx cancellation: once the mutation has been
// committed its history entry must still be written even if the client has
// gone away.
func (r *Recorder) Record(ctx context.Context, action model.Action, snap model.Snapshot, details string) {
	ctx = context.WithoutCancel(ctx)
	id, err := store.AppendHistory(ctx, r.db, action, snap, details, r.now())
	if err != nil {
		r.failures.Add(1)
		r.logger.ErrorContext(ctx, "audit log write failed",
			"action", string(action),
			"item_id", snap.ItemID,
			"details", details,
			"error", err,
		)
		return
	}
	r.logger.DebugContext(ctx, "audit entry recorded", "history_id", id, "action", string(action), "item_id", snap.ItemID)
}

// Failures returns the number of history writes that have failed since start.
func (r *Recorder) Failures() int64 {
	return r.failures.Load()
}

// List returns history entries, most recent first. A limit of zero or less
// returns everything.
func (r *Recorder) List(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	return store.ListHistory(ctx, r.db, limit)
}
