package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventaris/internal/db"
	"github.com/erazemk/inventaris/internal/model"
)

func TestAppendAndListHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)

	snap := model.Snapshot{ItemID: "INV-001", Name: "Monitor", Brand: "Dell"}
	_, err := AppendHistory(ctx, database, model.ActionCreate, snap, "created", base)
	require.NoError(t, err)
	_, err = AppendHistory(ctx, database, model.ActionUpdate, snap, "updated", base.Add(time.Minute))
	require.NoError(t, err)
	_, err = AppendHistory(ctx, database, model.ActionDelete, snap, "deleted", base.Add(2*time.Minute))
	require.NoError(t, err)

	entries, err := ListHistory(ctx, database, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, model.ActionDelete, entries[0].Action)
	assert.Equal(t, model.ActionUpdate, entries[1].Action)
	assert.Equal(t, model.ActionCreate, entries[2].Action)

	require.NotNil(t, entries[0].ItemID)
	assert.Equal(t, "INV-001", *entries[0].ItemID)
	assert.Equal(t, "Dell", *entries[0].ItemBrand)
	// Empty snapshot fields are stored as NULL.
	assert.Nil(t, entries[0].ItemSerial)
	assert.Nil(t, entries[0].ItemLocation)
	assert.True(t, entries[0].Timestamp.Equal(base.Add(2*time.Minute)))

	limited, err := ListHistory(ctx, database, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	n, err := CountHistory(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestHistoryTiesOrderedByID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)

	first, err := AppendHistory(ctx, database, model.ActionCreate, model.Snapshot{}, "a", at)
	require.NoError(t, err)
	second, err := AppendHistory(ctx, database, model.ActionCreate, model.Snapshot{}, "b", at)
	require.NoError(t, err)

	entries, err := ListHistory(ctx, database, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second, entries[0].ID)
	assert.Equal(t, first, entries[1].ID)
}

func TestHistoryOrderIgnoresClockSteps(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)

	_, err := AppendHistory(ctx, database, model.ActionCreate, model.Snapshot{}, "created", at)
	require.NoError(t, err)
	_, err = AppendHistory(ctx, database, model.ActionUpdate, model.Snapshot{}, "updated", at.Add(-time.Hour))
	require.NoError(t, err)

	entries, err := ListHistory(ctx, database, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "updated", entries[0].Details)
	assert.Equal(t, "created", entries[1].Details)
}

func TestAppendHistoryRejectsUnknownAction(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := AppendHistory(context.Background(), database, "RESTORE", model.Snapshot{}, "", time.Now())
	assert.Error(t, err)
}
