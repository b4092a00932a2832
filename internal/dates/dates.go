// Package dates normalizes calendar-day strings to timezone-independent
// instants. A day like "2025-03-10" is pinned to midnight UTC so that reading
// it back with UTC accessors yields the same year/month/day no matter which
// zone the server or client runs in. Every consumer of an event date must go
// through FormatDay (or otherwise use UTC accessors); mixing in local-time
// accessors reintroduces the off-by-one-day bug this package exists to kill.
package dates

import (
	"fmt"
	"time"
)

// DayLayout is the wire format for calendar days.
const DayLayout = "2006-01-02"

// Normalize parses a "YYYY-MM-DD" string into midnight UTC of that day.
// An empty string yields nil with no error, matching an absent field.
func Normalize(day string) (*time.Time, error) {
	if day == "" {
		return nil, nil
	}

	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return nil, fmt.Errorf("dates.Normalize: %w", err)
	}

	t = t.UTC()

	return &t, nil
}

// FormatDay renders the calendar day of t using UTC accessors. It is the
// read-side counterpart of Normalize.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// SameDay reports whether two instants fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
