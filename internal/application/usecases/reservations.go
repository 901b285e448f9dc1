package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/example/staycal/internal/domain/reservation"
	"github.com/example/staycal/internal/internaltypes"
)

type ReservationStore interface {
	ReservationSource
	Upsert(ctx context.Context, propertyID string, r reservation.Reservation) error
	UpsertAll(ctx context.Context, propertyID string, rs []reservation.Reservation) error
	Delete(ctx context.Context, id string) error
}

// NewReservation is a host-entered booking or a single feed entry.
type NewReservation struct {
	ID         string // generated when empty
	PropertyID string
	Source     string
	Start      string
	End        string
	Reference  string
	Validated  bool
	Status     string
	Name       string // guest for manual, feed for external
}

type ReservationService struct {
	Store ReservationStore
}

// Add stores one reservation. Unlike feed imports, its dates must parse and
// cover at least one night.
func (s ReservationService) Add(ctx context.Context, in NewReservation) (reservation.Reservation, error) {
	r, err := build(in)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Upsert(ctx, strings.TrimSpace(in.PropertyID), r); err != nil {
		return nil, err
	}
	return r, nil
}

// Import stores a batch as delivered. Malformed dates are kept so the layout
// can report them.
func (s ReservationService) Import(ctx context.Context, propertyID string, rs []reservation.Reservation) (int, error) {
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return 0, fmt.Errorf("%w: property required", internaltypes.ErrInvalidInput)
	}
	for _, r := range rs {
		if strings.TrimSpace(r.Details().ID) == "" {
			return 0, fmt.Errorf("%w: reservation without id", internaltypes.ErrInvalidInput)
		}
	}
	if err := s.Store.UpsertAll(ctx, propertyID, rs); err != nil {
		return 0, err
	}
	return len(rs), nil
}

func (s ReservationService) List(ctx context.Context, propertyID string) ([]reservation.Reservation, error) {
	manual, external, err := s.Store.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return reservation.Union(manual, external), nil
}

func (s ReservationService) Remove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id required", internaltypes.ErrInvalidInput)
	}
	return s.Store.Delete(ctx, id)
}

func build(in NewReservation) (reservation.Reservation, error) {
	if strings.TrimSpace(in.PropertyID) == "" {
		return nil, fmt.Errorf("%w: property required", internaltypes.ErrInvalidInput)
	}
	src, ok := reservation.ParseSource(in.Source)
	if !ok {
		return nil, fmt.Errorf("%w: source must be manual or external, got %q", internaltypes.ErrInvalidInput, in.Source)
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.New().String()
	}
	rec := reservation.Record{
		ID:            id,
		Start:         strings.TrimSpace(in.Start),
		End:           strings.TrimSpace(in.End),
		ReferenceCode: strings.TrimSpace(in.Reference),
		Validated:     in.Validated,
		Status:        reservation.ParseStatus(in.Status),
	}
	if in.Status == "" {
		rec.Status = reservation.StatusPending
	}

	p, err := rec.Period()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internaltypes.ErrInvalidInput, err)
	}
	if p.Empty() {
		return nil, fmt.Errorf("%w: end %s must be after start %s", internaltypes.ErrInvalidInput, p.End, p.Start)
	}

	if src == reservation.SourceManual {
		return reservation.Manual{Record: rec, GuestName: in.Name}, nil
	}
	return reservation.External{Record: rec, FeedName: in.Name}, nil
}
