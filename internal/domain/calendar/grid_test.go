package calendar

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func date(y int, m time.Month, d int) civil.Date { return civil.Date{Year: y, Month: m, Day: d} }

func TestBuildMonth_Shape(t *testing.T) {
	refs := []civil.Date{
		date(2024, time.June, 15),     // starts on Saturday
		date(2024, time.September, 1), // starts on Sunday
		date(2024, time.July, 31),     // starts on Monday
		date(2021, time.February, 10), // 28 days starting Monday
		date(2024, time.February, 29), // leap month
	}

	for _, ref := range refs {
		t.Run(ref.String(), func(t *testing.T) {
			m := BuildMonth(ref)
			days := m.Days()
			if len(days) != GridDays {
				t.Fatalf("grid has %d days, want %d", len(days), GridDays)
			}
			if m.First().Weekday() != time.Monday {
				t.Errorf("grid starts on %v, want Monday", m.First().Weekday())
			}
			for i := 1; i < len(days); i++ {
				if days[i].Date != days[i-1].Date.AddDays(1) {
					t.Fatalf("days %d and %d are not consecutive: %v, %v", i-1, i, days[i-1].Date, days[i].Date)
				}
			}

			inMonth := 0
			for _, d := range days {
				want := d.Date.Year == ref.Year && d.Date.Month == ref.Month
				if d.IsCurrentMonth != want {
					t.Errorf("%v IsCurrentMonth = %v, want %v", d.Date, d.IsCurrentMonth, want)
				}
				if d.DayNumber != d.Date.Day {
					t.Errorf("%v DayNumber = %d", d.Date, d.DayNumber)
				}
				if d.IsCurrentMonth {
					inMonth++
				}
			}
			monthLen := civil.Date{Year: ref.Year, Month: ref.Month + 1, Day: 1}.In(time.UTC).AddDate(0, 0, -1).Day()
			if inMonth != monthLen {
				t.Errorf("grid holds %d current-month days, want %d", inMonth, monthLen)
			}
			if m.End() != m.First().AddDays(GridDays) {
				t.Errorf("End() = %v", m.End())
			}
		})
	}
}

func TestBuildMonth_LeadingDays(t *testing.T) {
	tests := []struct {
		name  string
		ref   civil.Date
		first civil.Date
		lead  int
	}{
		{name: "saturday start backfills five days", ref: date(2024, time.June, 1), first: date(2024, time.May, 27), lead: 5},
		{name: "sunday start backfills six days", ref: date(2024, time.September, 30), first: date(2024, time.August, 26), lead: 6},
		{name: "monday start backfills nothing", ref: date(2024, time.July, 4), first: date(2024, time.July, 1), lead: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildMonth(tt.ref)
			if m.First() != tt.first {
				t.Errorf("First() = %v, want %v", m.First(), tt.first)
			}
			lo, _, ok := m.Weeks[0].CurrentMonthBounds()
			if !ok || lo != tt.lead {
				t.Errorf("first row current-month start = %d (ok=%v), want %d", lo, ok, tt.lead)
			}
		})
	}
}

func TestWeek_CurrentMonthBounds(t *testing.T) {
	// February 2021 starts on Monday and has 28 days, so rows 4 and 5 are all March.
	m := BuildMonth(date(2021, time.February, 1))

	lo, hi, ok := m.Weeks[3].CurrentMonthBounds()
	if !ok || lo != 0 || hi != 6 {
		t.Errorf("row 3 bounds = %d..%d ok=%v, want 0..6 true", lo, hi, ok)
	}
	for _, row := range []int{4, 5} {
		if _, _, ok := m.Weeks[row].CurrentMonthBounds(); ok {
			t.Errorf("row %d should have no current-month days", row)
		}
	}

	// June 2024 ends on Sunday the 30th, row 4 ends exactly there.
	june := BuildMonth(date(2024, time.June, 1))
	lo, hi, ok = june.Weeks[4].CurrentMonthBounds()
	if !ok || lo != 0 || hi != 6 {
		t.Errorf("june row 4 bounds = %d..%d ok=%v", lo, hi, ok)
	}
}

func TestBuildMonth_SameForAnyDayOfMonth(t *testing.T) {
	a := BuildMonth(date(2024, time.June, 1))
	b := BuildMonth(date(2024, time.June, 30))
	if a.Weeks != b.Weeks {
		t.Error("grids for the same month differ depending on reference day")
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in      string
		want    civil.Date
		wantErr bool
	}{
		{in: "2024-06", want: date(2024, time.June, 1)},
		{in: "2024-06-17", want: date(2024, time.June, 17)},
		{in: "2024-13", wantErr: true},
		{in: "June", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRef(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
