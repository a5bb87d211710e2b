// Package dates normalizes free-form dates, including Indonesian month
// names, to YYYY-MM-DD.
package dates

import (
	"regexp"
	"strings"
	"time"
)

// Layout is the canonical calendar date format.
const Layout = "2006-01-02"

// Months maps lower-cased Indonesian month names and abbreviations to
// two-digit month numbers. "mei" is both the full and the short form.
var Months = map[string]string{
	"januari": "01", "februari": "02", "maret": "03", "april": "04",
	"mei": "05", "juni": "06", "juli": "07", "agustus": "08",
	"september": "09", "oktober": "10", "november": "11", "desember": "12",

	"jan": "01", "feb": "02", "mar": "03", "apr": "04",
	"jun": "06", "jul": "07", "agu": "08", "agt": "08",
	"sep": "09", "okt": "10", "nov": "11", "des": "12",
}

var (
	canonical = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayRe     = regexp.MustCompile(`^\d{1,2}$`)
	yearRe    = regexp.MustCompile(`^\d{4}$`)
)

// Normalizer converts date strings to Layout. The zero value uses the
// wall clock.
type Normalizer struct {
	Now func() time.Time
}

// Today returns the current date in Layout.
func (n Normalizer) Today() string {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	return now().Format(Layout)
}

// Normalize returns s unchanged when it is already YYYY-MM-DD, converts
// "<day> <month> <year>" using Months, and falls back to today for anything
// else. A month that is not in the table becomes "01".
func (n Normalizer) Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return n.Today()
	}
	if canonical.MatchString(s) {
		return s
	}

	parts := strings.Fields(strings.ToLower(s))
	if len(parts) < 3 || !dayRe.MatchString(parts[0]) || !yearRe.MatchString(parts[2]) {
		return n.Today()
	}

	day := parts[0]
	if len(day) == 1 {
		day = "0" + day
	}
	month, ok := Months[parts[1]]
	if !ok {
		month = "01"
	}
	return parts[2] + "-" + month + "-" + day
}

// Normalize converts s using the wall clock for the fallback.
func Normalize(s string) string {
	return Normalizer{}.Normalize(s)
}
