package reservation

import (
	"fmt"
	"sort"
	"strings"
)

// Source tells which collection a reservation came from. Manual sorts before External.
type Source int

const (
	SourceManual Source = iota
	SourceExternal
)

func (s Source) String() string {
	switch s {
	case SourceManual:
		return "manual"
	case SourceExternal:
		return "external"
	default:
		return "unknown"
	}
}

func (s Source) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Source) UnmarshalText(b []byte) error {
	v, ok := ParseSource(string(b))
	if !ok {
		return fmt.Errorf("unknown source %q", b)
	}
	*s = v
	return nil
}

// ParseSource accepts the names produced by String.
func ParseSource(s string) (Source, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual":
		return SourceManual, true
	case "external":
		return SourceExternal, true
	}
	return 0, false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusBlocked   Status = "blocked"
	StatusUnknown   Status = "unknown"
)

func ParseStatus(s string) Status {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusBlocked:
		return st
	}
	return StatusUnknown
}

// NoReference is what feeds and hosts write when a booking has no reference code.
const NoReference = "N/A"

// Record holds the fields both sources share. Start and End are kept as the
// text the source delivered; End is the departure day (exclusive).
type Record struct {
	ID            string
	Start         string
	End           string
	ReferenceCode string
	Validated     bool
	Status        Status
}

// Reference returns the trimmed reference code, or "" when the record has none.
func (r Record) Reference() string {
	ref := strings.TrimSpace(r.ReferenceCode)
	if ref == "" || strings.EqualFold(ref, NoReference) {
		return ""
	}
	return ref
}

// Period parses Start and End into calendar days.
func (r Record) Period() (Period, error) {
	start, err := ParseDay(r.Start)
	if err != nil {
		return Period{}, err
	}
	end, err := ParseDay(r.End)
	if err != nil {
		return Period{}, err
	}
	return Period{Start: start, End: end}, nil
}

// Reservation is either a Manual or an External booking.
type Reservation interface {
	Source() Source
	Details() Record
	sealed()
}

// Manual is a booking entered directly by the host.
type Manual struct {
	Record
	GuestName string
}

func (Manual) Source() Source    { return SourceManual }
func (m Manual) Details() Record { return m.Record }
func (Manual) sealed()           {}

// External is a booking ingested from an outside calendar feed.
type External struct {
	Record
	FeedName string
}

func (External) Source() Source    { return SourceExternal }
func (e External) Details() Record { return e.Record }
func (External) sealed()           {}

// Union returns both collections as one slice ordered by id, then source.
func Union(manual []Manual, external []External) []Reservation {
	out := make([]Reservation, 0, len(manual)+len(external))
	for _, m := range manual {
		out = append(out, m)
	}
	for _, e := range external {
		out = append(out, e)
	}
	Sort(out)
	return out
}

// Sort orders reservations by id, then source, so that callers never depend on
// the order the collections were delivered in.
func Sort(rs []Reservation) {
	sort.SliceStable(rs, func(i, j int) bool { return less(rs[i], rs[j]) })
}

// less breaks ties on every field so records sharing an id still sort the same
// way regardless of input order.
func less(x, y Reservation) bool {
	a, b := x.Details(), y.Details()
	switch {
	case a.ID != b.ID:
		return a.ID < b.ID
	case x.Source() != y.Source():
		return x.Source() < y.Source()
	case a.Start != b.Start:
		return a.Start < b.Start
	case a.End != b.End:
		return a.End < b.End
	case a.ReferenceCode != b.ReferenceCode:
		return a.ReferenceCode < b.ReferenceCode
	case a.Validated != b.Validated:
		return b.Validated
	default:
		return a.Status < b.Status
	}
}

// Skip reports a reservation left out of a computation.
type Skip struct {
	ID     string `json:"id"`
	Source Source `json:"source"`
	Reason string `json:"reason"`
}
