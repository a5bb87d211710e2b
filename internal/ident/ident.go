// Package ident formats and parses human-readable item identifiers of the
// form INV-NNN.
package ident

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefix starts every item identifier.
const Prefix = "INV-"

// Width is the minimum number of digits. Larger sequence numbers produce
// wider identifiers rather than being truncated.
const Width = 3

// Format returns the identifier for a sequence number.
func Format(seq int64) string {
	return fmt.Sprintf("%s%0*d", Prefix, Width, seq)
}

// Next returns the sequence number and identifier following currentMax.
// currentMax is 0 when no items exist.
//
// Next does no locking: callers must make the read of currentMax and the
// write of the result a single atomic step.
func Next(currentMax int64) (int64, string) {
	seq := currentMax + 1
	return seq, Format(seq)
}

// Parse returns the sequence number encoded in id.
func Parse(id string) (int64, error) {
	digits, ok := strings.CutPrefix(id, Prefix)
	if !ok || len(digits) < Width {
		return 0, fmt.Errorf("invalid item id %q", id)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid item id %q", id)
		}
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || seq < 1 {
		return 0, fmt.Errorf("invalid item id %q", id)
	}
	if Format(seq) != id {
		return 0, fmt.Errorf("invalid item id %q", id)
	}
	return seq, nil
}
