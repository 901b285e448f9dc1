package timeline

import (
	"sort"

	"github.com/example/staycal/internal/domain/calendar"
)

const (
	// MaxLayer is the highest layer Place will use. Segments that find no room
	// below it are stacked there regardless and reported as an Overflow.
	MaxLayer = 15

	// GapOffsetPercent is applied to a bar that starts the day another bar on
	// its layer ends.
	GapOffsetPercent = 12
)

// Overflow is a segment forced onto MaxLayer on top of another segment.
type Overflow struct {
	WeekIndex     int    `json:"weekIndex"`
	ReservationID string `json:"reservationId"`
	Layer         int    `json:"layer"`
}

// Placement is the result of one layering phase for a single week. Segments
// are in the order they were placed.
type Placement struct {
	Segments  []Segment
	Overflows []Overflow
}

// Layers returns the number of layers in use.
func (p Placement) Layers() int {
	n := 0
	for _, s := range p.Segments {
		if s.Layer+1 > n {
			n = s.Layer + 1
		}
	}
	return n
}

// sortSegments orders a week for placement: earlier start, then longer span,
// then manual before external, then id.
func sortSegments(segs []Segment) {
	sort.SliceStable(segs, func(i, j int) bool {
		a, b := segs[i], segs[j]
		switch {
		case a.StartDayIndex != b.StartDayIndex:
			return a.StartDayIndex < b.StartDayIndex
		case a.Span != b.Span:
			return a.Span > b.Span
		case a.Source != b.Source:
			return a.Source < b.Source
		default:
			return a.ReservationID < b.ReservationID
		}
	})
}

// Place stacks one week's segments greedily, each on the lowest layer where it
// overlaps nothing already placed. The input is not modified.
func Place(week []Segment) Placement {
	segs := make([]Segment, len(week))
	copy(segs, week)
	sortSegments(segs)

	var (
		byLayer   [MaxLayer + 1][]Segment
		overflows []Overflow
	)
	for i := range segs {
		s := &segs[i]
		s.Layer = -1
		for l := 0; l <= MaxLayer; l++ {
			if fits(byLayer[l], *s) {
				s.Layer = l
				break
			}
		}
		if s.Layer < 0 {
			s.Layer = MaxLayer
			overflows = append(overflows, Overflow{WeekIndex: s.WeekIndex, ReservationID: s.ReservationID, Layer: MaxLayer})
		}
		s.GapOffsetPercent = 0
		byLayer[s.Layer] = append(byLayer[s.Layer], *s)
	}
	return Placement{Segments: segs, Overflows: overflows}
}

// Compact returns a new placement in which every segment above layer 0 has
// been moved to the lowest lower layer it fits on. Segments are visited by
// layer, then start, then id.
func Compact(p Placement) Placement {
	segs := make([]Segment, len(p.Segments))
	copy(segs, p.Segments)

	order := make([]int, len(segs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := segs[order[i]], segs[order[j]]
		switch {
		case a.Layer != b.Layer:
			return a.Layer < b.Layer
		case a.StartDayIndex != b.StartDayIndex:
			return a.StartDayIndex < b.StartDayIndex
		default:
			return a.ReservationID < b.ReservationID
		}
	})

	moved := make(map[string]bool)
	for _, i := range order {
		s := segs[i]
		for l := 0; l < s.Layer; l++ {
			if fitsExcept(segs, i, l) {
				segs[i].Layer = l
				moved[s.ReservationID] = true
				break
			}
		}
	}

	var overflows []Overflow
	for _, o := range p.Overflows {
		if !moved[o.ReservationID] {
			overflows = append(overflows, o)
		}
	}
	return Placement{Segments: segs, Overflows: overflows}
}

// withGapOffsets marks bars that start the day another bar on the same layer ends.
func withGapOffsets(p Placement) Placement {
	segs := make([]Segment, len(p.Segments))
	copy(segs, p.Segments)
	for i := range segs {
		segs[i].GapOffsetPercent = 0
		if !segs[i].IsStart {
			continue
		}
		for j, o := range segs {
			if j != i && o.Layer == segs[i].Layer && o.EndDayIndex() == segs[i].StartDayIndex {
				segs[i].GapOffsetPercent = GapOffsetPercent
				break
			}
		}
	}
	return Placement{Segments: segs, Overflows: p.Overflows}
}

// AssignLayers runs placement, compaction and gap offsets for every week.
// Segments come back grouped by week in placement order.
func AssignLayers(segs []Segment) ([]Segment, []Overflow) {
	var weeks [calendar.WeekRows][]Segment
	for _, s := range segs {
		weeks[s.WeekIndex] = append(weeks[s.WeekIndex], s)
	}

	var (
		out       = make([]Segment, 0, len(segs))
		overflows []Overflow
	)
	for _, w := range weeks {
		if len(w) == 0 {
			continue
		}
		p := withGapOffsets(Compact(Place(w)))
		out = append(out, p.Segments...)
		overflows = append(overflows, p.Overflows...)
	}
	return out, overflows
}

func fits(layer []Segment, s Segment) bool {
	for _, o := range layer {
		if o.Overlaps(s) {
			return false
		}
	}
	return true
}

func fitsExcept(segs []Segment, skip, layer int) bool {
	for j, o := range segs {
		if j != skip && o.Layer == layer && o.Overlaps(segs[skip]) {
			return false
		}
	}
	return true
}
