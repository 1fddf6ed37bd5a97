// Package caldate compares the loosely formatted date and timestamp strings
// that spreadsheet rows carry.
package caldate

import (
	"strings"
	"time"
)

// DateLayout is the canonical calendar date format.
const DateLayout = "2006-01-02"

var layouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

// Calendar resolves strings to instants in a fixed location.
type Calendar struct {
	loc *time.Location
}

// New returns a Calendar for loc. A nil loc means UTC.
func New(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc}
}

// Location returns the configured location.
func (c *Calendar) Location() *time.Location { return c.loc }

// Parse resolves s to an instant in the calendar's location.
func (c *Calendar) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t.In(c.loc), true
		}
	}
	return time.Time{}, false
}

// Date resolves s to midnight of its calendar day.
func (c *Calendar) Date(s string) (time.Time, bool) {
	t, ok := c.Parse(s)
	if !ok {
		return time.Time{}, false
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc), true
}

// Format renders t as a calendar date in the calendar's location.
func (c *Calendar) Format(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// Canonical returns s as YYYY-MM-DD when it parses, else s trimmed.
func (c *Calendar) Canonical(s string) string {
	if d, ok := c.Date(s); ok {
		return d.Format(DateLayout)
	}
	return strings.TrimSpace(s)
}

// CompareDates orders a and b by calendar day. When either side does not
// parse the comparison is lexical on the trimmed strings.
func (c *Calendar) CompareDates(a, b string) int {
	da, okA := c.Date(a)
	db, okB := c.Date(b)
	if okA && okB {
		return da.Compare(db)
	}
	return strings.Compare(strings.TrimSpace(a), strings.TrimSpace(b))
}

// CompareTimestamps orders a and b at full precision. Unparseable values
// sort before parseable ones.
func (c *Calendar) CompareTimestamps(a, b string) int {
	ta, okA := c.Parse(a)
	tb, okB := c.Parse(b)
	switch {
	case okA && okB:
		return ta.Compare(tb)
	case okA:
		return 1
	case okB:
		return -1
	default:
		return strings.Compare(strings.TrimSpace(a), strings.TrimSpace(b))
	}
}

// InRange reports whether date lies in the inclusive range [from, to].
// Empty bounds are open.
func (c *Calendar) InRange(date, from, to string) bool {
	if strings.TrimSpace(from) != "" && c.CompareDates(date, from) < 0 {
		return false
	}
	if strings.TrimSpace(to) != "" && c.CompareDates(date, to) > 0 {
		return false
	}
	return true
}
