package usecases

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/example/staycal/internal/domain/conflict"
	"github.com/example/staycal/internal/domain/reservation"
	"github.com/example/staycal/internal/domain/timeline"
	"github.com/example/staycal/internal/notify"
)

type ReservationSource interface {
	ListByProperty(ctx context.Context, propertyID string) ([]reservation.Manual, []reservation.External, error)
}

// LayoutCache memoizes layouts by input fingerprint.
type LayoutCache interface {
	Get(ctx context.Context, fingerprint string) (timeline.MonthLayout, bool, error)
	Set(ctx context.Context, fingerprint string, l timeline.MonthLayout) error
}

// MonthView loads a property's reservations and lays out one month. Warnings
// about skipped or overflowing reservations are logged once per MonthView.
type MonthView struct {
	Source     ReservationSource
	Cache      LayoutCache // optional
	Classifier timeline.Classifier
	Conflict   conflict.Options
	Log        *zap.Logger

	warned notify.Once
}

func NewMonthView(src ReservationSource, cache LayoutCache, opts conflict.Options, log *zap.Logger) *MonthView {
	return &MonthView{
		Source:     src,
		Cache:      cache,
		Classifier: DefaultClassifier,
		Conflict:   opts,
		Log:        log,
	}
}

func (v *MonthView) Get(ctx context.Context, propertyID string, ref civil.Date) (timeline.MonthLayout, error) {
	if !ref.IsValid() {
		return timeline.MonthLayout{}, fmt.Errorf("invalid reference date %v", ref)
	}
	manual, external, err := v.Source.ListByProperty(ctx, propertyID)
	if err != nil {
		return timeline.MonthLayout{}, fmt.Errorf("load reservations for %s: %w", propertyID, err)
	}

	// Cached layouts carry no display tokens; v.Classifier is applied per call.
	in := timeline.Input{
		Ref:      ref,
		Manual:   manual,
		External: external,
		Conflict: v.Conflict,
	}
	all := reservation.Union(manual, external)
	fp := Fingerprint(propertyID, in)
	log := v.Log.With(zap.String("property", propertyID), zap.String("month", monthOf(ref)))

	if v.Cache != nil {
		l, ok, err := v.Cache.Get(ctx, fp)
		switch {
		case err != nil:
			log.Warn("layout cache read failed", zap.Error(err))
		case ok:
			log.Debug("layout cache hit", zap.String("fingerprint", fp))
			return timeline.Classify(l, all, v.Classifier), nil
		}
	}

	l := timeline.Compute(in)
	v.report(log, l.Diagnostics)

	if v.Cache != nil {
		if err := v.Cache.Set(ctx, fp, l); err != nil {
			log.Warn("layout cache write failed", zap.Error(err))
		}
	}
	return timeline.Classify(l, all, v.Classifier), nil
}

func (v *MonthView) report(log *zap.Logger, d timeline.Diagnostics) {
	for _, s := range d.Skipped {
		if !v.warned.First("skip:" + s.ID + ":" + s.Reason) {
			continue
		}
		log.Warn("reservation skipped",
			zap.String("reservation_id", s.ID),
			zap.Stringer("source", s.Source),
			zap.String("reason", s.Reason))
	}
	for _, o := range d.Overflows {
		if !v.warned.First("overflow:" + o.ReservationID) {
			continue
		}
		log.Warn("too many concurrent reservations, bars stacked",
			zap.String("reservation_id", o.ReservationID),
			zap.Int("week", o.WeekIndex),
			zap.Int("layer", o.Layer))
	}
}

// Fingerprint hashes everything Compute depends on. The classifier is left out:
// cached layouts carry no display tokens. Reservations are hashed in canonical
// order so delivery order does not matter.
func Fingerprint(propertyID string, in timeline.Input) string {
	h, _ := blake2b.New256(nil)
	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = h.Write([]byte(p))
			_, _ = h.Write([]byte{0})
		}
	}

	write("v1", propertyID, monthOf(in.Ref), strconv.FormatBool(in.Conflict.SuppressDateMatches))
	for _, r := range reservation.Union(in.Manual, in.External) {
		d := r.Details()
		write(r.Source().String(), d.ID, d.Start, d.End, d.ReferenceCode, strconv.FormatBool(d.Validated), string(d.Status))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func monthOf(d civil.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}
