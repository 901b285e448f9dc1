package usecases

import (
	"github.com/example/staycal/internal/domain/conflict"
	"github.com/example/staycal/internal/domain/reservation"
	"github.com/example/staycal/internal/domain/timeline"
)

// Display tokens produced by DefaultClassifier.
const (
	DisplayConflict  = "conflict"
	DisplayMatched   = "matched"
	DisplayCancelled = "cancelled"
	DisplayValidated = "validated"
	DisplayPending   = "pending"
	DisplayExternal  = "external"
)

// DefaultClassifier picks the first token that applies, in the order the
// constants are declared. Manual bookings never fall through to external.
var DefaultClassifier = timeline.ClassifierFunc(func(r reservation.Reservation, matched, conflicts conflict.IDSet) string {
	d := r.Details()
	switch {
	case conflicts.Has(d.ID):
		return DisplayConflict
	case matched.Has(d.ID):
		return DisplayMatched
	case d.Status == reservation.StatusCancelled:
		return DisplayCancelled
	case d.Validated:
		return DisplayValidated
	case d.Status == reservation.StatusPending, r.Source() == reservation.SourceManual:
		return DisplayPending
	default:
		return DisplayExternal
	}
})
