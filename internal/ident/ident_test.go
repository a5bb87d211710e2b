package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		seq  int64
		want string
	}{
		{1, "INV-001"},
		{7, "INV-007"},
		{42, "INV-042"},
		{999, "INV-999"},
		{1000, "INV-1000"},
		{1001, "INV-1001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.seq), "Format(%d)", tt.seq)
	}
}

func TestNext(t *testing.T) {
	seq, id := Next(0)
	assert.Equal(t, int64(1), seq)
	assert.Equal(t, "INV-001", id)

	seq, id = Next(1000)
	assert.Equal(t, int64(1001), seq)
	assert.Equal(t, "INV-1001", id)
}

func TestNextIsMonotonic(t *testing.T) {
	var current int64
	for i := 1; i <= 1200; i++ {
		seq, id := Next(current)
		require.Equal(t, current+1, seq)
		got, err := Parse(id)
		require.NoError(t, err)
		require.Equal(t, seq, got)
		current = seq
	}
}

func TestParseRejects(t *testing.T) {
	for _, id := range []string{"", "INV-", "INV-1", "INV-01", "inv-001", "INV-00a", "INV-000", "INV-0001", "../INV-001", "INV-001/x"} {
		_, err := Parse(id)
		assert.Error(t, err, "Parse(%q)", id)
	}
}
