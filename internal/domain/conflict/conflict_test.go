package conflict

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/example/staycal/internal/domain/reservation"
)

func manual(id, start, end, ref string, validated bool) reservation.Manual {
	return reservation.Manual{Record: reservation.Record{
		ID: id, Start: start, End: end, ReferenceCode: ref, Validated: validated, Status: reservation.StatusConfirmed,
	}}
}

func external(id, start, end, ref string, validated bool) reservation.External {
	return reservation.External{Record: reservation.Record{
		ID: id, Start: start, End: end, ReferenceCode: ref, Validated: validated, Status: reservation.StatusConfirmed,
	}}
}

func TestDetect_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		manual   []reservation.Manual
		external []reservation.External
		want     []string
	}{
		{
			name:     "back to back stays do not conflict",
			manual:   []reservation.Manual{manual("A", "2024-06-06", "2024-06-08", "X", true)},
			external: []reservation.External{external("B", "2024-06-08", "2024-06-10", "Y", true)},
			want:     []string{},
		},
		{
			name:     "validated overlap without shared reference conflicts",
			manual:   []reservation.Manual{manual("A", "2024-06-05", "2024-06-12", "", true)},
			external: []reservation.External{external("B", "2024-06-08", "2024-06-15", "", true)},
			want:     []string{"A", "B"},
		},
		{
			name:     "shared reference is the same booking",
			manual:   []reservation.Manual{manual("A", "2024-06-05", "2024-06-12", "HM123", true)},
			external: []reservation.External{external("B", "2024-06-08", "2024-06-15", "HM123", true)},
			want:     []string{},
		},
		{
			name:     "reference contained in feed code",
			manual:   []reservation.Manual{manual("A", "2024-06-05", "2024-06-12", "HM123", true)},
			external: []reservation.External{external("B", "2024-06-08", "2024-06-15", "AIRBNB-HM123-2", true)},
			want:     []string{},
		},
		{
			name:     "feed code contained in host reference",
			manual:   []reservation.Manual{manual("A", "2024-06-05", "2024-06-12", "BK-778812", true)},
			external: []reservation.External{external("B", "2024-06-08", "2024-06-15", "778812", true)},
			want:     []string{},
		},
		{
			name:     "sentinel references do not match",
			manual:   []reservation.Manual{manual("A", "2024-06-05", "2024-06-12", reservation.NoReference, true)},
			external: []reservation.External{external("B", "2024-06-08", "2024-06-15", reservation.NoReference, true)},
			want:     []string{"A", "B"},
		},
		{
			name:     "unvalidated side is ignored",
			manual:   []reservation.Manual{manual("A", "2024-06-05", "2024-06-12", "", true)},
			external: []reservation.External{external("B", "2024-06-08", "2024-06-15", "", false)},
			want:     []string{},
		},
		{
			name: "two manual bookings overlapping",
			manual: []reservation.Manual{
				manual("A", "2024-06-05", "2024-06-12", "R1", true),
				manual("C", "2024-06-10", "2024-06-11", "R2", true),
			},
			want: []string{"A", "C"},
		},
		{
			name: "two manual bookings sharing a reference",
			manual: []reservation.Manual{
				manual("A", "2024-06-05", "2024-06-12", "HM123", true),
				manual("B", "2024-06-08", "2024-06-15", "HM123", true),
			},
			want: []string{},
		},
		{
			name: "two feed entries sharing a reference",
			external: []reservation.External{
				external("C", "2024-06-05", "2024-06-12", "HM123", true),
				external("D", "2024-06-08", "2024-06-15", "airbnb-HM123", true),
			},
			want: []string{},
		},
		{
			name: "same source sentinel references still conflict",
			external: []reservation.External{
				external("C", "2024-06-05", "2024-06-12", reservation.NoReference, true),
				external("D", "2024-06-08", "2024-06-15", "n/a", true),
			},
			want: []string{"C", "D"},
		},
		{
			name: "id reported once across several conflicts",
			manual: []reservation.Manual{
				manual("A", "2024-06-01", "2024-06-20", "", true),
				manual("C", "2024-06-02", "2024-06-04", "", true),
			},
			external: []reservation.External{
				external("B", "2024-06-10", "2024-06-12", "", true),
				external("D", "2024-06-15", "2024-06-17", "", false),
			},
			want: []string{"A", "B", "C"},
		},
		{
			name: "empty input",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.manual, tt.external, Options{}).Conflicts.Sorted()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("conflicts = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetect_Matches(t *testing.T) {
	res := Detect(
		[]reservation.Manual{
			manual("m1", "2024-06-05", "2024-06-12", "HM123", false),
			manual("m2", "2024-06-20", "2024-06-22", "", true),
		},
		[]reservation.External{
			external("e1", "2024-06-05", "2024-06-12", "HM123", false),
			external("e2", "2024-06-20", "2024-06-22", "", true),
		},
		Options{},
	)

	want := []Match{
		{ManualID: "m1", ExternalID: "e1", Rule: RuleReference},
		{ManualID: "m2", ExternalID: "e2", Rule: RuleDates},
	}
	if !reflect.DeepEqual(res.Matches, want) {
		t.Errorf("matches = %+v, want %+v", res.Matches, want)
	}
	if got := res.Matched.Sorted(); !reflect.DeepEqual(got, []string{"e1", "e2", "m1", "m2"}) {
		t.Errorf("matched = %v", got)
	}
	// Identical dates only label the pair, they still conflict unless suppression is on.
	if got := res.Conflicts.Sorted(); !reflect.DeepEqual(got, []string{"e2", "m2"}) {
		t.Errorf("conflicts = %v, want [e2 m2]", got)
	}

	suppressed := Detect(
		[]reservation.Manual{manual("m2", "2024-06-20", "2024-06-22", "", true)},
		[]reservation.External{external("e2", "2024-06-20", "2024-06-22", "", true)},
		Options{SuppressDateMatches: true},
	)
	if suppressed.Conflicts.Len() != 0 {
		t.Errorf("conflicts with date suppression = %v, want none", suppressed.Conflicts.Sorted())
	}
}

func TestDetect_MalformedDatesAreSkipped(t *testing.T) {
	res := Detect(
		[]reservation.Manual{
			manual("A", "2024-06-05", "2024-06-12", "", true),
			manual("bad", "soon", "2024-06-12", "", true),
		},
		[]reservation.External{
			external("B", "2024-06-08T00:00:00Z", "2024-06-15T00:00:00Z", "", true),
		},
		Options{},
	)

	if len(res.Skipped) != 1 || res.Skipped[0].ID != "bad" {
		t.Fatalf("skipped = %+v, want one entry for bad", res.Skipped)
	}
	if got := res.Conflicts.Sorted(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("conflicts = %v, want [A B]", got)
	}
	if !reflect.DeepEqual(res.Pairs, []Pair{{A: "A", B: "B"}}) {
		t.Errorf("pairs = %+v", res.Pairs)
	}
}

func TestDetect_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	refs := []string{"", reservation.NoReference, "HM1", "HM2", "XHM1X"}

	for round := 0; round < 50; round++ {
		var ms []reservation.Manual
		var es []reservation.External
		for i := 0; i < 12; i++ {
			start := 1 + rng.Intn(25)
			end := start + 1 + rng.Intn(6)
			s := fmt.Sprintf("2024-06-%02d", start)
			e := fmt.Sprintf("2024-06-%02d", min(end, 30))
			ref := refs[rng.Intn(len(refs))]
			validated := rng.Intn(3) > 0
			if i%2 == 0 {
				ms = append(ms, manual(fmt.Sprintf("m%02d", i), s, e, ref, validated))
			} else {
				es = append(es, external(fmt.Sprintf("e%02d", i), s, e, ref, validated))
			}
		}

		res := Detect(ms, es, Options{})
		entries, _ := reservation.Prepare(reservation.Union(ms, es))

		for i := range entries {
			for j := i + 1; j < len(entries); j++ {
				a, b := entries[i], entries[j]
				sharedRef := ReferencesMatch(a.Details().Reference(), b.Details().Reference())
				if a.Details().Validated && b.Details().Validated && a.Period.Overlaps(b.Period) && !sharedRef {
					if !res.Conflicts.Has(a.ID()) || !res.Conflicts.Has(b.ID()) {
						t.Fatalf("round %d: validated overlap %s/%s missing from %v", round, a.ID(), b.ID(), res.Conflicts.Sorted())
					}
				}
			}
		}

		for _, p := range res.Pairs {
			var a, b reservation.Entry
			for _, e := range entries {
				if e.ID() == p.A {
					a = e
				}
				if e.ID() == p.B {
					b = e
				}
			}
			if !a.Details().Validated || !b.Details().Validated {
				t.Fatalf("round %d: pair %v involves an unvalidated reservation", round, p)
			}
			if ReferencesMatch(a.Details().Reference(), b.Details().Reference()) {
				t.Fatalf("round %d: pair %v shares a reference", round, p)
			}
		}

		again := Detect(ms, es, Options{})
		if !reflect.DeepEqual(res, again) {
			t.Fatalf("round %d: Detect is not deterministic", round)
		}
	}
}

func TestDetectPrepared_MatchesDetect(t *testing.T) {
	ms := []reservation.Manual{
		manual("A", "2024-06-05", "2024-06-12", "HM123", true),
		manual("C", "2024-06-09", "2024-06-11", "", true),
		manual("bad", "2024-06-40", "2024-06-12", "", true),
	}
	es := []reservation.External{
		external("B", "2024-06-08", "2024-06-15", "HM123", true),
		external("D", "2024-06-10", "2024-06-13", "", false),
	}

	full := Detect(ms, es, Options{})
	entries, skipped := reservation.Prepare(reservation.Union(ms, es))
	got := DetectPrepared(entries, Options{})

	if got.Skipped != nil {
		t.Errorf("DetectPrepared reported skips: %+v", got.Skipped)
	}
	got.Skipped = skipped
	if !reflect.DeepEqual(got, full) {
		t.Errorf("DetectPrepared = %+v\nDetect = %+v", got, full)
	}
}

func TestIDSet_JSON(t *testing.T) {
	s := IDSet{}
	s.Add("b")
	s.Add("a")
	s.Add("b")

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["a","b"]` {
		t.Errorf("json = %s", b)
	}

	var back IDSet
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Has("a") || !back.Has("b") || back.Len() != 2 {
		t.Errorf("round trip lost ids: %v", back.Sorted())
	}
}

func TestReferencesMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"HM123", "HM123", true},
		{"HM123", "HM123-A", true},
		{"xHM123", "HM123", true},
		{"HM123", "HM124", false},
		{"", "HM123", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			if got := ReferencesMatch(tt.a, tt.b); got != tt.want {
				t.Errorf("ReferencesMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
