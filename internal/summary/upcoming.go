package summary

import (
	"slices"
	"time"
)

// Upcoming returns the items dated today or later, earliest first, keeping
// at most limit entries. A limit of zero or less keeps everything.
//
// "Today" is the calendar day of now; the time of day is ignored on both
// sides so a deadline due today still shows up in the afternoon. Items with
// equal dates keep their input order. Zero dates are dropped.
func Upcoming[T any](items []T, limit int, now time.Time, include func(T) bool, dateOf func(T) time.Time) []T {
	today := dayNumber(now)

	type dated struct {
		item T
		day  int
	}
	kept := make([]dated, 0, len(items))
	for _, item := range items {
		if include != nil && !include(item) {
			continue
		}
		d := dateOf(item)
		if d.IsZero() {
			continue
		}
		if day := dayNumber(d); day >= today {
			kept = append(kept, dated{item: item, day: day})
		}
	}

	slices.SortStableFunc(kept, func(a, b dated) int {
		return a.day - b.day
	})

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}

	out := make([]T, len(kept))
	for i, k := range kept {
		out[i] = k.item
	}
	return out
}

// dayNumber orders calendar days using t's own wall-clock date.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// DueBetween reports whether t's calendar day lies in [from, from+days).
func DueBetween(t, from time.Time, days int) bool {
	if t.IsZero() {
		return false
	}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && day.Before(start.AddDate(0, 0, days))
}
