// Package calendar builds the six-week month grid reservations are laid out on.
package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

const (
	DaysPerWeek = 7
	WeekRows    = 6
	GridDays    = DaysPerWeek * WeekRows
)

// Day is one cell of the grid.
type Day struct {
	Date           civil.Date `json:"date"`
	IsCurrentMonth bool       `json:"isCurrentMonth"`
	DayNumber      int        `json:"dayNumber"`
}

// Week is a grid row, Monday first.
type Week [DaysPerWeek]Day

// First returns the Monday of the row.
func (w Week) First() civil.Date { return w[0].Date }

// CurrentMonthBounds returns the first and last index of the row that belong to
// the grid's month. ok is false for rows made only of adjacent-month days.
func (w Week) CurrentMonthBounds() (lo, hi int, ok bool) {
	lo, hi = -1, -1
	for i, d := range w {
		if !d.IsCurrentMonth {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	return lo, hi, lo >= 0
}

// Month is the 42-day grid for the month containing Ref.
type Month struct {
	Ref   civil.Date     `json:"ref"`
	Weeks [WeekRows]Week `json:"weeks"`
}

// First is the first grid day (a Monday, possibly in the previous month).
func (m Month) First() civil.Date { return m.Weeks[0][0].Date }

// End is the day after the last grid day.
func (m Month) End() civil.Date { return m.First().AddDays(GridDays) }

// Days flattens the grid in row order.
func (m Month) Days() []Day {
	out := make([]Day, 0, GridDays)
	for _, w := range m.Weeks {
		out = append(out, w[:]...)
	}
	return out
}

// BuildMonth lays out the month containing ref. Leading days come from the
// previous month so the first row starts on Monday; trailing days from the next
// month fill the grid to 42 cells.
func BuildMonth(ref civil.Date) Month {
	first := civil.Date{Year: ref.Year, Month: ref.Month, Day: 1}
	lead := isoWeekday(first.Weekday()) - 1

	m := Month{Ref: ref}
	cur := first.AddDays(-lead)
	for i := 0; i < GridDays; i++ {
		m.Weeks[i/DaysPerWeek][i%DaysPerWeek] = Day{
			Date:           cur,
			IsCurrentMonth: cur.Year == first.Year && cur.Month == first.Month,
			DayNumber:      cur.Day,
		}
		cur = cur.AddDays(1)
	}
	return m
}

// isoWeekday maps Sunday to 7 and keeps Monday..Saturday as 1..6.
func isoWeekday(w time.Weekday) int {
	if w == time.Sunday {
		return 7
	}
	return int(w)
}

// ParseRef reads a month reference written as YYYY-MM or YYYY-MM-DD.
func ParseRef(s string) (civil.Date, error) {
	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("month %q: want YYYY-MM or YYYY-MM-DD", s)
	}
	return civil.DateOf(t), nil
}
