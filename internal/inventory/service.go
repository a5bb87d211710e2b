// Package inventory owns the item lifecycle: ID allocation, defaults, QR
// image externalization and the audit entry written for every mutation.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/inventaris/internal/dates"
	"github.com/erazemk/inventaris/internal/db"
	"github.com/erazemk/inventaris/internal/ident"
	"github.com/erazemk/inventaris/internal/imaging"
	"github.com/erazemk/inventaris/internal/model"
	"github.com/erazemk/inventaris/internal/store"
)

// maxAllocAttempts bounds retries when another process takes the same
// sequence number between our read and our insert.
const maxAllocAttempts = 5

// AuditLog records one history entry per mutation. Implementations must not
// let a failed write affect the caller.
type AuditLog interface {
	Record(ctx context.Context, action model.Action, snap model.Snapshot, details string)
}

// QRStore externalizes inline QR image payloads. A staged image is only
// visible under its reference once committed.
type QRStore interface {
	Stage(ctx context.Context, itemID, payload string) (*imaging.Staged, error)
	Discard(itemID string) error
}

// Service is the inventory store.
type Service struct {
	db     *db.DB
	audit  AuditLog
	qr     QRStore
	dates  dates.Normalizer
	now    func() time.Time
	logger *slog.Logger

	// allocMu serializes allocate-and-insert within this process. The UNIQUE
	// constraint on seq plus retry covers other processes.
	allocMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for creation times and date fallbacks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.dates = dates.Normalizer{Now: now}
	}
}

// WithLogger sets the logger used for non-fatal problems.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New returns a Service.
func New(database *db.DB, audit AuditLog, qr QRStore, opts ...Option) *Service {
	s := &Service{
		db:     database,
		audit:  audit,
		qr:     qr,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all items ordered by sequence number.
func (s *Service) List(ctx context.Context) ([]model.Item, error) {
	items, err := store.ListItems(ctx, s.db)
	if err != nil {
		return nil, classify("list", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id string) (*model.Item, error) {
	item, err := store.GetItem(ctx, s.db, id)
	if err != nil {
		return nil, classify("get", err)
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// Create allocates an ID, applies defaults, stores any inline QR image and
// persists the item.
func (s *Service) Create(ctx context.Context, d model.Draft) (*model.Item, error) {
	item, err := s.create(ctx, d)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, model.ActionCreate, item.Snapshot(),
		fmt.Sprintf("Menambahkan item baru: %s (%s)", item.Name, item.ID))
	return item, nil
}

// CreateImported creates an item from an import row. No QR image is
// stored; one is generated the next time the item is edited.
func (s *Service) CreateImported(ctx context.Context, d model.Draft) (*model.Item, error) {
	d.QRImageRef = ""
	item, err := s.create(ctx, d)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, model.ActionCreate, item.Snapshot(),
		fmt.Sprintf("Mengimpor item: %s (%s) - QR belum digenerate, please edit to generate", item.Name, item.ID))
	return item, nil
}

func (s *Service) create(ctx context.Context, d model.Draft) (*model.Item, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name required"}
	}

	item := &model.Item{
		Name:            d.Name,
		Brand:           d.Brand,
		SerialNumber:    d.SerialNumber,
		Location:        d.Location,
		ConditionBefore: d.ConditionBefore,
		ChecklistFlag:   orDefault(d.ChecklistFlag, model.ChecklistNo),
		ConditionAfter:  d.ConditionAfter,
		Notes:           d.Notes,
		DateChecked:     s.normalizeDate(d.DateChecked),
		DateReceived:    s.normalizeDate(d.DateReceived),
		CreatedAt:       s.now().UTC(),
	}
	if item.DateReceived == "" {
		item.DateReceived = item.DateChecked
	}

	inline := imaging.IsInline(d.QRImageRef)
	if !inline {
		item.QRImageRef = d.QRImageRef
	}

	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	var err error
	for attempt := 1; attempt <= maxAllocAttempts; attempt++ {
		var staged *imaging.Staged
		err = s.db.InTx(ctx, func(tx *db.Tx) error {
			current, err := store.MaxSequence(ctx, tx)
			if err != nil {
				return err
			}
			item.SequenceNumber, item.ID = ident.Next(current)
			if inline {
				item.QRImageRef = ""
			}
			if err := store.InsertItem(ctx, tx, item); err != nil {
				return err
			}
			if !inline {
				return nil
			}

			staged, err = s.stage(ctx, item.ID, d.QRImageRef)
			if err != nil {
				return err
			}
			item.QRImageRef = staged.Ref
			if err := store.SetQRImageRef(ctx, tx, item.ID, staged.Ref); err != nil {
				return err
			}
			return staged.Commit()
		})
		if err == nil {
			if staged != nil {
				staged.Release()
			}
			return item, nil
		}
		if staged != nil {
			staged.Revert()
		}
		if !db.IsUniqueViolation(err) {
			break
		}
		s.logger.WarnContext(ctx, "sequence number taken, retrying allocation",
			"item_id", item.ID, "attempt", attempt)
	}
	return nil, classify("create", err)
}

// Update merges p over the stored item. Empty strings in p keep the
// current value; fields named in p.Clear are blanked. ID and sequence
// number never change.
func (s *Service) Update(ctx context.Context, id string, p model.Patch) (*model.Item, error) {
	if err := validateClear(p); err != nil {
		return nil, err
	}

	var merged *model.Item
	var staged *imaging.Staged
	err := s.db.InTx(ctx, func(tx *db.Tx) error {
		current, err := store.GetItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNotFound
		}

		merged = s.merge(current, p)
		if imaging.IsInline(merged.QRImageRef) {
			staged, err = s.stage(ctx, id, merged.QRImageRef)
			if err != nil {
				return err
			}
			merged.QRImageRef = staged.Ref
		}

		ok, err := store.UpdateItem(ctx, tx, merged)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		if staged != nil {
			return staged.Commit()
		}
		return nil
	})
	if err != nil {
		if staged != nil {
			staged.Revert()
		}
		return nil, classify("update", err)
	}
	if staged != nil {
		staged.Release()
	}

	s.audit.Record(ctx, model.ActionUpdate, merged.Snapshot(),
		fmt.Sprintf("Memperbarui item: %s (%s)", merged.Name, merged.ID))
	return merged, nil
}

// Delete removes an item. The history entry carries the item as it was
// just before removal.
func (s *Service) Delete(ctx context.Context, id string) error {
	var snapshot *model.Item
	err := s.db.InTx(ctx, func(tx *db.Tx) error {
		current, err := store.GetItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNotFound
		}
		ok, err := store.DeleteItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		snapshot = current
		return nil
	})
	if err != nil {
		return classify("delete", err)
	}

	s.audit.Record(ctx, model.ActionDelete, snapshot.Snapshot(),
		fmt.Sprintf("Menghapus item: %s (%s)", snapshot.Name, snapshot.ID))
	if snapshot.QRImageRef != "" {
		s.discard(snapshot.ID)
	}
	return nil
}

// ListHistory returns history entries, most recent first. A limit of zero
// or less returns everything.
func (s *Service) ListHistory(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	entries, err := store.ListHistory(ctx, s.db, limit)
	if err != nil {
		return nil, classify("list history", err)
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	return entries, nil
}

// Stats counts items in total and per name.
func (s *Service) Stats(ctx context.Context) (*model.Stats, error) {
	stats, err := store.ItemStats(ctx, s.db)
	if err != nil {
		return nil, classify("stats", err)
	}
	return stats, nil
}

// QRPayload returns the JSON text to encode into the item's QR image.
func (s *Service) QRPayload(ctx context.Context, id string) (string, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(item.QRPayload())
	if err != nil {
		return "", fmt.Errorf("encoding qr payload: %w", err)
	}
	return string(data), nil
}

// Resolve finds the item for scanned QR text, which is either the JSON
// payload from QRPayload or a bare item ID.
func (s *Service) Resolve(ctx context.Context, code string) (*model.Item, error) {
	code = strings.TrimSpace(code)
	id := code
	if strings.HasPrefix(code, "{") {
		var payload model.QRPayload
		if err := json.Unmarshal([]byte(code), &payload); err != nil {
			return nil, &ValidationError{Field: "code", Message: "unreadable qr payload"}
		}
		id = payload.ID
	}
	id = strings.ToUpper(strings.TrimSpace(id))
	if _, err := ident.Parse(id); err != nil {
		return nil, &ValidationError{Field: "code", Message: "not an item id"}
	}
	return s.Get(ctx, id)
}

func (s *Service) stage(ctx context.Context, id, payload string) (*imaging.Staged, error) {
	staged, err := s.qr.Stage(ctx, id, payload)
	if errors.Is(err, imaging.ErrInvalidImage) {
		return nil, &ValidationError{Field: "qrImageRef", Message: err.Error()}
	}
	return staged, err
}

func (s *Service) discard(id string) {
	if err := s.qr.Discard(id); err != nil {
		s.logger.Warn("failed to remove qr image", "item_id", id, "error", err)
	}
}

func (s *Service) normalizeDate(v string) string {
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return s.dates.Normalize(v)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
