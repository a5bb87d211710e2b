package inventory

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/inventaris/internal/audit"
	"github.com/erazemk/inventaris/internal/db"
	"github.com/erazemk/inventaris/internal/imaging"
	"github.com/erazemk/inventaris/internal/model"
	"github.com/erazemk/inventaris/internal/store"
)

var fixedNow = time.Date(2026, 2, 13, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	db       *db.DB
	recorder *audit.Recorder
	qrDir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	recorder := audit.NewRecorder(database, nil)
	dir := t.TempDir()
	svc := New(database, recorder, imaging.NewFileStore(dir, "/barcode/"),
		WithClock(func() time.Time { return fixedNow }))
	return &fixture{svc: svc, db: database, recorder: recorder, qrDir: dir}
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func ptr(s string) *string { return &s }

func TestCreateAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var last *model.Item
	for range 7 {
		item, err := f.svc.Create(ctx, model.Draft{Name: "Kursi"})
		require.NoError(t, err)
		last = item
	}
	assert.Equal(t, "INV-007", last.ID)
	assert.Equal(t, int64(7), last.SequenceNumber)
}

func TestCreateWidensPastThreeDigits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, store.InsertItem(ctx, f.db, &model.Item{
		ID: "INV-1000", SequenceNumber: 1000, Name: "Meja", ChecklistFlag: model.ChecklistNo, CreatedAt: fixedNow,
	}))

	item, err := f.svc.Create(ctx, model.Draft{Name: "Lemari"})
	require.NoError(t, err)
	assert.Equal(t, "INV-1001", item.ID)
}

func TestCreateDoesNotReuseGaps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for range 3 {
		_, err := f.svc.Create(ctx, model.Draft{Name: "Printer"})
		require.NoError(t, err)
	}
	require.NoError(t, f.svc.Delete(ctx, "INV-002"))

	item, err := f.svc.Create(ctx, model.Draft{Name: "Scanner"})
	require.NoError(t, err)
	assert.Equal(t, "INV-004", item.ID)
}

func TestConcurrentCreatesGetDistinctIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 10
	ids := make([]int64, n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			item, err := f.svc.Create(ctx, model.Draft{Name: "Laptop"})
			if err != nil {
				return err
			}
			ids[i] = item.SequenceNumber
			return nil
		})
	}
	require.NoError(t, g.Wait())

	slices.Sort(ids)
	for i, seq := range ids {
		assert.Equal(t, int64(i+1), seq)
	}

	history, err := f.svc.ListHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, n)
}

func TestCreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)

	item, err := f.svc.Create(context.Background(), model.Draft{
		Name:        "Monitor",
		DateChecked: "5 Maret 2024",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ChecklistNo, item.ChecklistFlag)
	assert.Equal(t, "2024-03-05", item.DateChecked)
	assert.Equal(t, "2024-03-05", item.DateReceived)
	assert.Equal(t, fixedNow, item.CreatedAt)
}

func TestCreateRequiresName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), model.Draft{Name: "  "})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)

	items, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestCreateExternalizesInlineQR(t *testing.T) {
	f := newFixture(t)

	item, err := f.svc.Create(context.Background(), model.Draft{Name: "Proyektor", QRImageRef: pngDataURL(t)})
	require.NoError(t, err)
	assert.Equal(t, "/barcode/INV-001.png", item.QRImageRef)
	assert.FileExists(t, filepath.Join(f.qrDir, "INV-001.png"))

	stored, err := f.svc.Get(context.Background(), "INV-001")
	require.NoError(t, err)
	assert.Equal(t, item.QRImageRef, stored.QRImageRef)
}

func TestCreateRejectsBadQRWithoutSideEffects(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), model.Draft{
		Name:       "Proyektor",
		QRImageRef: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not an image")),
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "qrImageRef", ve.Field)

	items, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	history, err := f.svc.ListHistory(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestFailedUpdateKeepsPreviousQRImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	path := filepath.Join(f.qrDir, "INV-001.png")

	_, err := f.svc.Create(ctx, model.Draft{Name: "Proyektor", QRImageRef: pngDataURL(t)})
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = f.db.Exec(`CREATE TRIGGER items_readonly BEFORE UPDATE ON items
		BEGIN SELECT RAISE(ABORT, 'items are read-only'); END`)
	require.NoError(t, err)

	img := image.NewGray(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	replacement := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	_, err = f.svc.Update(ctx, "INV-001", model.Patch{Location: ptr("Aula"), QRImageRef: &replacement})
	var se *StorageError
	require.ErrorAs(t, err, &se)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(f.qrDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	history, err := f.svc.ListHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = f.db.Exec(`DROP TRIGGER items_readonly`)
	require.NoError(t, err)
	item, err := f.svc.Update(ctx, "INV-001", model.Patch{QRImageRef: &replacement})
	require.NoError(t, err)
	assert.Equal(t, "/barcode/INV-001.png", item.QRImageRef)

	after, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	entries, err = os.ReadDir(f.qrDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdateKeepsEmptyFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, model.Draft{Name: "Kamera", Brand: "Canon", Location: "Gudang"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, created.ID, model.Patch{
		Brand:    ptr(""),
		Location: ptr("Ruang Rapat"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Canon", updated.Brand)
	assert.Equal(t, "Ruang Rapat", updated.Location)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.SequenceNumber, updated.SequenceNumber)
}

func TestUpdateClearsFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, model.Draft{Name: "Kamera", Notes: "lensa retak"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, created.ID, model.Patch{Clear: []string{"notes"}})
	require.NoError(t, err)
	assert.Empty(t, updated.Notes)

	stored, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Notes)
}

func TestUpdateRejectsBadClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, model.Draft{Name: "Kamera"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		patch model.Patch
	}{
		{"name", model.Patch{Clear: []string{"name"}}},
		{"unknown", model.Patch{Clear: []string{"color"}}},
		{"set and cleared", model.Patch{Notes: ptr("x"), Clear: []string{"notes"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Update(ctx, created.ID, tt.patch)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestUpdateNormalizesDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, model.Draft{Name: "Router"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, created.ID, model.Patch{DateChecked: ptr("17 Agustus 2025")})
	require.NoError(t, err)
	assert.Equal(t, "2025-08-17", updated.DateChecked)
}

func TestMissingItemIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, model.Draft{Name: "Router"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, created.ID))

	_, err = f.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Update(ctx, created.ID, model.Patch{Name: ptr("Switch")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, created.ID), ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, "INV-999"), ErrNotFound)
}

func TestEveryMutationWritesOneHistoryEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, model.Draft{Name: "Laptop", Brand: "Lenovo", SerialNumber: "PF-1"})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, created.ID, model.Patch{Location: ptr("Lantai 2")})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, created.ID))

	// Failed operations add nothing.
	_, err = f.svc.Update(ctx, created.ID, model.Patch{Location: ptr("Lantai 3")})
	require.Error(t, err)

	history, err := f.svc.ListHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)

	actions := []model.Action{history[0].Action, history[1].Action, history[2].Action}
	assert.ElementsMatch(t, []model.Action{model.ActionCreate, model.ActionUpdate, model.ActionDelete}, actions)

	for _, e := range history {
		require.NotNil(t, e.ItemID)
		assert.Equal(t, "INV-001", *e.ItemID)
		if e.Action == model.ActionDelete {
			assert.Equal(t, "Menghapus item: Laptop (INV-001)", e.Details)
			require.NotNil(t, e.ItemLocation)
			assert.Equal(t, "Lantai 2", *e.ItemLocation)
		}
	}
}

func TestAuditFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.db.Exec(`DROP TABLE history`)
	require.NoError(t, err)

	item, err := f.svc.Create(ctx, model.Draft{Name: "Kipas"})
	require.NoError(t, err)
	assert.Equal(t, "INV-001", item.ID)
	assert.Equal(t, int64(1), f.recorder.Failures())
}

func TestCreateImportedSkipsQR(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.svc.CreateImported(ctx, model.Draft{Name: "AC", QRImageRef: pngDataURL(t)})
	require.NoError(t, err)
	assert.Empty(t, item.QRImageRef)

	entries, err := os.ReadDir(f.qrDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	history, err := f.svc.ListHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Details, "Mengimpor item: AC (INV-001)")
}

func TestDeleteRemovesQRFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, model.Draft{Name: "Proyektor", QRImageRef: pngDataURL(t)})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, item.ID))
	assert.NoFileExists(t, filepath.Join(f.qrDir, "INV-001.png"))
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, model.Draft{Name: "Tablet", Brand: "Samsung"})
	require.NoError(t, err)

	payload, err := f.svc.QRPayload(ctx, created.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"INV-001","name":"Tablet","merk":"Samsung","sn":"","lokasi":""}`, payload)

	for _, code := range []string{payload, "INV-001", " inv-001 "} {
		item, err := f.svc.Resolve(ctx, code)
		require.NoError(t, err, code)
		assert.Equal(t, created.ID, item.ID)
	}

	_, err = f.svc.Resolve(ctx, "hello")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = f.svc.Resolve(ctx, "INV-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Kursi", "kursi", "Meja"} {
		_, err := f.svc.Create(ctx, model.Draft{Name: name})
		require.NoError(t, err)
	}

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByName["kursi"])
	assert.Equal(t, 1, stats.ByName["meja"])
}
