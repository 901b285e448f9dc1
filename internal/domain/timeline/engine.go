package timeline

import (
	"cloud.google.com/go/civil"

	"github.com/example/staycal/internal/domain/calendar"
	"github.com/example/staycal/internal/domain/conflict"
	"github.com/example/staycal/internal/domain/reservation"
)

type Input struct {
	// Ref is any day of the month to lay out.
	Ref        civil.Date
	Manual     []reservation.Manual
	External   []reservation.External
	Classifier Classifier
	Conflict   conflict.Options
}

// Diagnostics lists what was left out or degraded. Nothing in it is fatal.
type Diagnostics struct {
	Skipped   []reservation.Skip `json:"skipped"`
	Overflows []Overflow         `json:"overflows"`
}

func (d Diagnostics) Empty() bool { return len(d.Skipped) == 0 && len(d.Overflows) == 0 }

type MonthLayout struct {
	Month       calendar.Month                `json:"month"`
	Weeks       [calendar.WeekRows]WeekLayout `json:"weeks"`
	Conflicts   conflict.IDSet                `json:"conflicts"`
	Pairs       []conflict.Pair               `json:"pairs"`
	Matched     conflict.IDSet                `json:"matched"`
	Matches     []conflict.Match              `json:"matches"`
	Diagnostics Diagnostics                   `json:"diagnostics"`
}

// Compute lays out the month containing in.Ref and runs conflict detection over
// every reservation given, inside the grid or not.
func Compute(in Input) MonthLayout {
	m := calendar.BuildMonth(in.Ref)

	entries, skipped := reservation.Prepare(reservation.Union(in.Manual, in.External))
	det := conflict.DetectPrepared(entries, in.Conflict)

	placed, overflows := AssignLayers(resolve(m, entries))

	if skipped == nil {
		skipped = []reservation.Skip{}
	}
	if overflows == nil {
		overflows = []Overflow{}
	}
	return MonthLayout{
		Month:     m,
		Weeks:     Assemble(m, placed, entries, det.Matched, det.Conflicts, in.Classifier),
		Conflicts: det.Conflicts,
		Pairs:     det.Pairs,
		Matched:   det.Matched,
		Matches:   det.Matches,
		Diagnostics: Diagnostics{
			Skipped:   skipped,
			Overflows: overflows,
		},
	}
}
