// Package conflict finds reservations that are genuinely double-booked.
//
// Manual bookings and externally synced calendar entries often describe the
// same stay twice, at different points of its lifecycle. Detect first pairs
// those up (shared reference code, optionally identical dates) and only then
// looks for overlaps, and only between reservations that both passed
// validation.
package conflict

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/example/staycal/internal/domain/reservation"
)

// IDSet is a set of reservation ids.
type IDSet map[string]struct{}

func (s IDSet) Add(id string) { s[id] = struct{}{} }

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Len() int { return len(s) }

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array so output is stable.
func (s IDSet) MarshalJSON() ([]byte, error) { return json.Marshal(s.Sorted()) }

func (s *IDSet) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return nil
}

// Rule names why a manual and an external reservation were paired.
type Rule string

const (
	RuleReference Rule = "reference"
	RuleDates     Rule = "dates"
)

// Match pairs a manual reservation with the external entry describing the same stay.
type Match struct {
	ManualID   string `json:"manualId"`
	ExternalID string `json:"externalId"`
	Rule       Rule   `json:"rule"`
}

// Pair is a reported conflict. A sorts before B.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

type Options struct {
	// SuppressDateMatches also treats manual/external pairs with identical
	// dates as one booking. Reference matches are always suppressed.
	SuppressDateMatches bool
}

type Result struct {
	Conflicts IDSet              `json:"conflicts"`
	Pairs     []Pair             `json:"pairs"`
	Matches   []Match            `json:"matches"`
	Matched   IDSet              `json:"matched"`
	Skipped   []reservation.Skip `json:"-"`
}

// Detect runs over the union of both sources. It never fails: reservations with
// bad dates are reported in Result.Skipped and left out.
func Detect(manual []reservation.Manual, external []reservation.External, opts Options) Result {
	entries, skipped := reservation.Prepare(reservation.Union(manual, external))
	res := DetectPrepared(entries, opts)
	res.Skipped = skipped
	return res
}

// DetectPrepared is Detect for entries already returned by reservation.Prepare.
// Result.Skipped is left empty; the caller owns the Prepare diagnostics.
//
// Any two reservations sharing a reference code are the same booking and are
// never reported against each other, whatever their sources. Only manual and
// external pairs are recorded as Matches.
func DetectPrepared(entries []reservation.Entry, opts Options) Result {
	res := Result{
		Conflicts: IDSet{},
		Matched:   IDSet{},
		Pairs:     []Pair{},
		Matches:   []Match{},
	}

	same := make(map[Pair]struct{})
	for _, m := range entries {
		if m.Source() != reservation.SourceManual {
			continue
		}
		for _, e := range entries {
			if e.Source() != reservation.SourceExternal {
				continue
			}
			rule, ok := matchRule(m, e)
			if !ok {
				continue
			}
			res.Matches = append(res.Matches, Match{ManualID: m.ID(), ExternalID: e.ID(), Rule: rule})
			res.Matched.Add(m.ID())
			res.Matched.Add(e.ID())
			if rule == RuleReference || opts.SuppressDateMatches {
				same[pairOf(m.ID(), e.ID())] = struct{}{}
			}
		}
	}

	for i := 0; i < len(entries); i++ {
		a := entries[i]
		for j := i + 1; j < len(entries); j++ {
			b := entries[j]
			if !a.Period.Overlaps(b.Period) {
				continue
			}
			p := pairOf(a.ID(), b.ID())
			if _, dup := same[p]; dup {
				continue
			}
			if ReferencesMatch(a.Details().Reference(), b.Details().Reference()) {
				continue
			}
			if !a.Details().Validated || !b.Details().Validated {
				continue
			}
			res.Pairs = append(res.Pairs, p)
			res.Conflicts.Add(a.ID())
			res.Conflicts.Add(b.ID())
		}
	}

	sort.Slice(res.Matches, func(i, j int) bool {
		if res.Matches[i].ManualID != res.Matches[j].ManualID {
			return res.Matches[i].ManualID < res.Matches[j].ManualID
		}
		return res.Matches[i].ExternalID < res.Matches[j].ExternalID
	})
	return res
}

func matchRule(m, e reservation.Entry) (Rule, bool) {
	if ReferencesMatch(m.Details().Reference(), e.Details().Reference()) {
		return RuleReference, true
	}
	if !m.Period.Empty() && m.Period == e.Period {
		return RuleDates, true
	}
	return "", false
}

// ReferencesMatch reports whether two normalised reference codes name the same
// booking: equal, or one contained in the other (feeds add prefixes and
// suffixes to the host's code). Empty codes never match.
func ReferencesMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

func pairOf(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}
