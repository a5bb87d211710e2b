package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"SELECT * FROM items WHERE id = ?", "SELECT * FROM items WHERE id = $1"},
		{"INSERT INTO t (a, b, c) VALUES (?, ?, ?)", "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rebind(tt.in))
	}
}

func TestQueryRewriteFollowsDriver(t *testing.T) {
	database := NewTestDB(t)
	assert.Equal(t, "SELECT ?", database.Q("SELECT ?"))

	pg := &DB{driver: "postgres"}
	assert.Equal(t, "SELECT $1", pg.Q("SELECT ?"))
}

func TestTimeRoundTrip(t *testing.T) {
	database := NewTestDB(t)
	ts := time.Date(2026, 2, 13, 8, 30, 15, 120000000, time.UTC)

	stored := database.Time(ts)
	assert.Equal(t, "2026-02-13T08:30:15.120000000Z", stored)
	assert.True(t, ParseTime(stored).Equal(ts))
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 2, 13, 8, 30, 0, 0, time.UTC)
	assert.True(t, ParseTime(want).Equal(want))
	assert.True(t, ParseTime("2026-02-13 08:30:00").Equal(want))
	assert.True(t, ParseTime([]byte("2026-02-13T08:30:00Z")).Equal(want))
	assert.True(t, ParseTime("").IsZero())
	assert.True(t, ParseTime(42).IsZero())
}

func TestIsUniqueViolation(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	_, err := database.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ('k', 'v')`)
	require.NoError(t, err)

	_, err = database.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ('k', 'w')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	assert.False(t, IsUniqueViolation(errors.New("other")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestInTxRollsBackOnError(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := database.InTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Q(`INSERT INTO settings (key, value) VALUES (?, ?)`), "a", "b"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&count))
	assert.Equal(t, 0, count)
}
