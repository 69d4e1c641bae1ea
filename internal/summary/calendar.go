package summary

import (
	"time"

	"lexdash/internal/core"
	"lexdash/internal/locale"
)

// Cell is one square of the month grid. Blank cells have Day == 0.
type Cell struct {
	Day    int
	Date   core.Date
	Today  bool
	Events []core.CalendarEvent
}

func (c Cell) Blank() bool { return c.Day == 0 }

// MonthGrid is a Sunday-first month view.
type MonthGrid struct {
	Year    int
	Month   time.Month
	Label   string
	Leading int
	Cells   []Cell
}

// DaysIn returns the number of days of the month, leap years included.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildMonthGrid lays out year/month as leading blanks (the weekday of the
// 1st, Sunday = 0) followed by one cell per day. Each day cell holds the
// events falling on that calendar day. The cell for now's day is flagged
// only when the grid shows now's month.
func BuildMonthGrid(year int, month time.Month, events []core.CalendarEvent, now time.Time) MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Normalise out-of-range months such as 13 or 0.
	year, month = first.Year(), first.Month()

	leading := int(first.Weekday())
	days := DaysIn(year, month)

	grid := MonthGrid{
		Year:    year,
		Month:   month,
		Label:   locale.MonthLabel(year, month),
		Leading: leading,
		Cells:   make([]Cell, 0, leading+days),
	}

	for range leading {
		grid.Cells = append(grid.Cells, Cell{})
	}

	byDay := make(map[int][]core.CalendarEvent)
	for _, e := range events {
		d := e.Date()
		if d.IsZero() || d.Year() != year || d.Month() != month {
			continue
		}
		byDay[d.Day()] = append(byDay[d.Day()], e)
	}

	isCurrent := now.Year() == year && now.Month() == month
	for day := 1; day <= days; day++ {
		grid.Cells = append(grid.Cells, Cell{
			Day:    day,
			Date:   core.NewDate(year, int(month), day),
			Today:  isCurrent && now.Day() == day,
			Events: byDay[day],
		})
	}

	return grid
}

// DayCells returns only the non-blank cells.
func (g MonthGrid) DayCells() []Cell {
	return g.Cells[g.Leading:]
}

// EventCount is the number of events placed on the grid.
func (g MonthGrid) EventCount() int {
	n := 0
	for _, c := range g.Cells {
		n += len(c.Events)
	}
	return n
}

// Weeks splits the grid into rows of seven, padding the last row with
// blanks so templates can render a rectangular table.
func (g MonthGrid) Weeks() [][]Cell {
	var weeks [][]Cell
	for i := 0; i < len(g.Cells); i += 7 {
		end := min(i+7, len(g.Cells))
		week := make([]Cell, 7)
		copy(week, g.Cells[i:end])
		weeks = append(weeks, week)
	}
	return weeks
}
