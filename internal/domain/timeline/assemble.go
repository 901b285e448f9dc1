package timeline

import (
	"sort"

	"cloud.google.com/go/civil"

	"github.com/example/staycal/internal/domain/calendar"
	"github.com/example/staycal/internal/domain/conflict"
	"github.com/example/staycal/internal/domain/reservation"
)

// Classifier picks the display token (colour, badge) for a reservation.
type Classifier interface {
	Classify(r reservation.Reservation, matched, conflicts conflict.IDSet) string
}

type ClassifierFunc func(r reservation.Reservation, matched, conflicts conflict.IDSet) string

func (f ClassifierFunc) Classify(r reservation.Reservation, matched, conflicts conflict.IDSet) string {
	return f(r, matched, conflicts)
}

// Entry is a placed segment ready to draw.
type Entry struct {
	Segment
	Display string `json:"display"`
}

type WeekLayout struct {
	Index   int        `json:"index"`
	First   civil.Date `json:"first"`
	Layers  int        `json:"layers"`
	Entries []Entry    `json:"entries"`
}

// Assemble groups placed segments per week, ordered by layer, start and id,
// and attaches the classifier's token. A nil classifier leaves Display empty.
func Assemble(m calendar.Month, segs []Segment, entries []reservation.Entry, matched, conflicts conflict.IDSet, c Classifier) [calendar.WeekRows]WeekLayout {
	byID := make(map[string]reservation.Reservation, len(entries))
	for _, e := range entries {
		byID[e.ID()] = e.Reservation
	}

	var weeks [calendar.WeekRows]WeekLayout
	for i := range weeks {
		weeks[i] = WeekLayout{Index: i, First: m.Weeks[i].First(), Entries: []Entry{}}
	}

	for _, s := range segs {
		e := Entry{Segment: s}
		if r, ok := byID[s.ReservationID]; ok && c != nil {
			e.Display = c.Classify(r, matched, conflicts)
		}
		w := &weeks[s.WeekIndex]
		w.Entries = append(w.Entries, e)
		if s.Layer+1 > w.Layers {
			w.Layers = s.Layer + 1
		}
	}

	for i := range weeks {
		es := weeks[i].Entries
		sort.SliceStable(es, func(a, b int) bool {
			switch {
			case es[a].Layer != es[b].Layer:
				return es[a].Layer < es[b].Layer
			case es[a].StartDayIndex != es[b].StartDayIndex:
				return es[a].StartDayIndex < es[b].StartDayIndex
			default:
				return es[a].ReservationID < es[b].ReservationID
			}
		})
	}
	return weeks
}

// Classify returns a copy of l with every entry's Display set by c. rs is the
// reservation set l was computed from; ids resolve the way Compute resolves
// them. l itself is not modified, so a shared or cached layout stays
// unclassified.
func Classify(l MonthLayout, rs []reservation.Reservation, c Classifier) MonthLayout {
	if c == nil {
		return l
	}
	entries, _ := reservation.Prepare(rs)
	byID := make(map[string]reservation.Reservation, len(entries))
	for _, e := range entries {
		byID[e.ID()] = e.Reservation
	}

	for i := range l.Weeks {
		src := l.Weeks[i].Entries
		out := make([]Entry, len(src))
		for j, e := range src {
			if r, ok := byID[e.ReservationID]; ok {
				e.Display = c.Classify(r, l.Matched, l.Conflicts)
			}
			out[j] = e
		}
		l.Weeks[i].Entries = out
	}
	return l
}
