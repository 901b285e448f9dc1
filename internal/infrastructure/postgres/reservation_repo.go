package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/staycal/internal/db"
	"github.com/example/staycal/internal/domain/reservation"
	"github.com/example/staycal/internal/internaltypes"
)

type ReservationRepo struct {
	db  *db.DB
	log *zap.Logger
}

func NewReservationRepo(d *db.DB, log *zap.Logger) *ReservationRepo {
	return &ReservationRepo{db: d, log: log}
}

// row mirrors the reservations table.
type row struct {
	ID            string
	PropertyID    string
	Source        string
	StartsOn      string
	EndsOn        string
	ReferenceCode string
	Validated     bool
	Status        string
	GuestName     string
	FeedName      string
}

func (r row) reservation() (reservation.Reservation, error) {
	src, ok := reservation.ParseSource(r.Source)
	if !ok {
		return nil, fmt.Errorf("reservation %s: unknown source %q", r.ID, r.Source)
	}
	rec := reservation.Record{
		ID:            r.ID,
		Start:         r.StartsOn,
		End:           r.EndsOn,
		ReferenceCode: r.ReferenceCode,
		Validated:     r.Validated,
		Status:        reservation.ParseStatus(r.Status),
	}
	if src == reservation.SourceManual {
		return reservation.Manual{Record: rec, GuestName: r.GuestName}, nil
	}
	return reservation.External{Record: rec, FeedName: r.FeedName}, nil
}

func rowOf(propertyID string, res reservation.Reservation) row {
	d := res.Details()
	out := row{
		ID:            d.ID,
		PropertyID:    propertyID,
		Source:        res.Source().String(),
		StartsOn:      d.Start,
		EndsOn:        d.End,
		ReferenceCode: d.ReferenceCode,
		Validated:     d.Validated,
		Status:        string(d.Status),
	}
	switch v := res.(type) {
	case reservation.Manual:
		out.GuestName = v.GuestName
	case reservation.External:
		out.FeedName = v.FeedName
	}
	if out.Status == "" {
		out.Status = string(reservation.StatusPending)
	}
	return out
}

const selectReservations = `
SELECT id, property_id, source, starts_on, ends_on, reference_code, validated, status, guest_name, feed_name
FROM reservations`

// ListByProperty returns both collections for a property, ordered by id. Rows
// that do not decode are logged and left out.
func (r *ReservationRepo) ListByProperty(ctx context.Context, propertyID string) ([]reservation.Manual, []reservation.External, error) {
	rows, err := r.db.Query(ctx, selectReservations+` WHERE property_id=$1 ORDER BY id`, propertyID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var xs []row
	for rows.Next() {
		var x row
		if err := rows.Scan(&x.ID, &x.PropertyID, &x.Source, &x.StartsOn, &x.EndsOn, &x.ReferenceCode, &x.Validated, &x.Status, &x.GuestName, &x.FeedName); err != nil {
			return nil, nil, err
		}
		xs = append(xs, x)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	manual, external := split(xs, r.log)
	return manual, external, nil
}

func split(xs []row, log *zap.Logger) ([]reservation.Manual, []reservation.External) {
	var (
		manual   []reservation.Manual
		external []reservation.External
	)
	for _, x := range xs {
		res, err := x.reservation()
		if err != nil {
			log.Warn("reservation row skipped",
				zap.String("reservation_id", x.ID),
				zap.String("property", x.PropertyID),
				zap.Error(err))
			continue
		}
		switch v := res.(type) {
		case reservation.Manual:
			manual = append(manual, v)
		case reservation.External:
			external = append(external, v)
		}
	}
	return manual, external
}

func (r *ReservationRepo) Upsert(ctx context.Context, propertyID string, res reservation.Reservation) error {
	return upsert(ctx, r.db, rowOf(propertyID, res))
}

// UpsertAll stores a batch atomically.
func (r *ReservationRepo) UpsertAll(ctx context.Context, propertyID string, rs []reservation.Reservation) error {
	return r.db.InTx(ctx, func(q db.Querier) error {
		for _, res := range rs {
			if err := upsert(ctx, q, rowOf(propertyID, res)); err != nil {
				return fmt.Errorf("reservation %s: %w", res.Details().ID, err)
			}
		}
		return nil
	})
}

func upsert(ctx context.Context, q db.Querier, x row) error {
	_, err := q.Exec(ctx, `
INSERT INTO reservations(id, property_id, source, starts_on, ends_on, reference_code, validated, status, guest_name, feed_name)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
	property_id=EXCLUDED.property_id,
	source=EXCLUDED.source,
	starts_on=EXCLUDED.starts_on,
	ends_on=EXCLUDED.ends_on,
	reference_code=EXCLUDED.reference_code,
	validated=EXCLUDED.validated,
	status=EXCLUDED.status,
	guest_name=EXCLUDED.guest_name,
	feed_name=EXCLUDED.feed_name,
	updated_at=now()`,
		x.ID, x.PropertyID, x.Source, x.StartsOn, x.EndsOn, x.ReferenceCode, x.Validated, x.Status, x.GuestName, x.FeedName,
	)
	return err
}

func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	n, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("reservation %s: %w", id, internaltypes.ErrNotFound)
	}
	return nil
}
