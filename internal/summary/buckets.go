// Package summary derives dashboard figures from flat record lists: monthly
// totals, upcoming deadlines, partition metrics and the calendar month grid.
//
// Every function is pure and takes the reference time explicitly, so the
// same input always yields the same output.
package summary

import (
	"time"

	"lexdash/internal/core"
	"lexdash/internal/locale"
)

// MonthBucket is the total of one calendar month.
type MonthBucket struct {
	Year  int
	Month time.Month
	Total core.Money
	Label string // "Agosto 2025"
}

// Key identifies the month in the form used by ISO dates, e.g. "2025-08".
func (b MonthBucket) Key() string {
	return time.Date(b.Year, b.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

type monthKey struct {
	year  int
	month time.Month
}

// MonthlyTotals sums amountOf over the last `months` calendar months ending
// with the month of ref, returning one bucket per month, newest first.
//
// Months without matching records are present with a zero total. Items for
// which include returns false, whose date is zero, or whose month falls
// outside the window contribute nothing.
func MonthlyTotals[T any](
	items []T,
	months int,
	ref time.Time,
	include func(T) bool,
	dateOf func(T) time.Time,
	amountOf func(T) int64,
) []MonthBucket {
	if months <= 0 {
		return []MonthBucket{}
	}

	buckets := make([]MonthBucket, months)
	index := make(map[monthKey]int, months)
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := range months {
		m := first.AddDate(0, -i, 0)
		buckets[i] = MonthBucket{
			Year:  m.Year(),
			Month: m.Month(),
			Label: locale.MonthLabel(m.Year(), m.Month()),
		}
		index[monthKey{m.Year(), m.Month()}] = i
	}

	for _, item := range items {
		if include != nil && !include(item) {
			continue
		}
		d := dateOf(item)
		if d.IsZero() {
			continue
		}
		if i, ok := index[monthKey{d.Year(), d.Month()}]; ok {
			buckets[i].Total.Cents += amountOf(item)
		}
	}

	return buckets
}

// InMonth reports whether t falls in the same calendar month as ref.
func InMonth(t, ref time.Time) bool {
	if t.IsZero() {
		return false
	}
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}
