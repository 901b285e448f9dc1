package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

var ErrMalformedDate = errors.New("malformed date")

// dayLayouts are tried in order after the plain date form.
var dayLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseDay turns a date or timestamp into the calendar day it names as written.
// Time of day and zone offsets are dropped without converting, so
// "2024-06-06T23:30:00-05:00" is June 6th, not June 7th in UTC.
func ParseDay(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, fmt.Errorf("%w: empty", ErrMalformedDate)
	}
	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
}

// Period is the half-open day range [Start, End). End is the departure day.
type Period struct {
	Start civil.Date
	End   civil.Date
}

func (p Period) Empty() bool { return !p.Start.Before(p.End) }

func (p Period) Nights() int {
	if p.Empty() {
		return 0
	}
	return p.End.DaysSince(p.Start)
}

// LastNight is the last occupied day. Meaningless for an empty period.
func (p Period) LastNight() civil.Date { return p.End.AddDays(-1) }

// Overlaps reports whether both periods share at least one night. Periods that
// only touch (one departs the day the other arrives) do not overlap.
func (p Period) Overlaps(o Period) bool {
	if p.Empty() || o.Empty() {
		return false
	}
	return p.Start.Before(o.End) && o.Start.Before(p.End)
}

func (p Period) String() string {
	return p.Start.String() + ".." + p.End.String()
}
