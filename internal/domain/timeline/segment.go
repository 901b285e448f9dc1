package timeline

import (
	"github.com/example/staycal/internal/domain/calendar"
	"github.com/example/staycal/internal/domain/reservation"
)

// Segment is the part of a reservation drawn on one week row.
type Segment struct {
	ReservationID string             `json:"reservationId"`
	Source        reservation.Source `json:"source"`
	WeekIndex     int                `json:"weekIndex"`
	StartDayIndex int                `json:"startDayIndex"`
	Span          int                `json:"span"`
	IsStart       bool               `json:"isStart"`
	IsEnd         bool               `json:"isEnd"`
	Layer         int                `json:"layer"`
	// GapOffsetPercent shifts the bar right by a share of a day cell. Rendering only.
	GapOffsetPercent int `json:"gapOffsetPercent"`
}

// EndDayIndex is one past the last day index the segment covers.
func (s Segment) EndDayIndex() int { return s.StartDayIndex + s.Span }

// Overlaps reports whether two segments of the same week cover a common day.
// Touching segments do not overlap.
func (s Segment) Overlaps(o Segment) bool {
	return s.StartDayIndex < o.EndDayIndex() && o.StartDayIndex < s.EndDayIndex()
}

// ResolveSpans cuts reservations into week segments. Malformed and duplicate
// reservations are skipped and reported.
func ResolveSpans(m calendar.Month, rs []reservation.Reservation) ([]Segment, []reservation.Skip) {
	entries, skipped := reservation.Prepare(rs)
	return resolve(m, entries), skipped
}

func resolve(m calendar.Month, entries []reservation.Entry) []Segment {
	var segs []Segment
	for _, e := range entries {
		if e.Period.Empty() {
			continue
		}
		for wi, w := range m.Weeks {
			if s, ok := clip(wi, w, e); ok {
				segs = append(segs, s)
			}
		}
	}
	return segs
}

// clip intersects the reservation with the current-month days of one row.
func clip(wi int, w calendar.Week, e reservation.Entry) (Segment, bool) {
	lo, hi, ok := w.CurrentMonthBounds()
	if !ok {
		return Segment{}, false
	}
	first := w.First()
	visFrom, visTo := first.AddDays(lo), first.AddDays(hi+1)

	from, to := e.Period.Start, e.Period.End
	if from.Before(visFrom) {
		from = visFrom
	}
	if to.After(visTo) {
		to = visTo
	}
	if !from.Before(to) {
		return Segment{}, false
	}

	return Segment{
		ReservationID: e.ID(),
		Source:        e.Source(),
		WeekIndex:     wi,
		StartDayIndex: from.DaysSince(first),
		Span:          to.DaysSince(from),
		IsStart:       from == e.Period.Start,
		IsEnd:         to == e.Period.End,
	}, true
}
