package postgres

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/staycal/internal/domain/reservation"
)

func TestRowRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   reservation.Reservation
	}{
		{
			name: "manual",
			in: reservation.Manual{
				Record:    reservation.Record{ID: "m1", Start: "2024-06-01", End: "2024-06-04", ReferenceCode: "HM1", Validated: true, Status: reservation.StatusConfirmed},
				GuestName: "Ana",
			},
		},
		{
			name: "external keeps raw dates",
			in: reservation.External{
				Record:   reservation.Record{ID: "e1", Start: "2024-06-01T15:00:00Z", End: "not a date", Status: reservation.StatusBlocked},
				FeedName: "airbnb",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := rowOf("villa", tt.in)
			if x.PropertyID != "villa" || x.Source != tt.in.Source().String() {
				t.Errorf("row = %+v", x)
			}
			got, err := x.reservation()
			if err != nil {
				t.Fatalf("reservation: %v", err)
			}
			if got != tt.in {
				t.Errorf("got %+v, want %+v", got, tt.in)
			}
		})
	}
}

func TestRowDefaultsStatus(t *testing.T) {
	x := rowOf("p", reservation.Manual{Record: reservation.Record{ID: "m"}})
	if x.Status != string(reservation.StatusPending) {
		t.Errorf("status = %q, want pending", x.Status)
	}
}

func TestRowUnknownSource(t *testing.T) {
	if _, err := (row{ID: "x", Source: "fax"}).reservation(); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestSplit_SkipsUndecodableRows(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	xs := []row{
		{ID: "a", PropertyID: "villa", Source: "manual", StartsOn: "2024-06-01", EndsOn: "2024-06-03", Status: "confirmed"},
		{ID: "b", PropertyID: "villa", Source: "fax", StartsOn: "2024-06-02", EndsOn: "2024-06-04"},
		{ID: "c", PropertyID: "villa", Source: "external", StartsOn: "2024-06-05", EndsOn: "2024-06-07", FeedName: "airbnb"},
	}

	manual, external := split(xs, zap.New(core))

	if len(manual) != 1 || manual[0].ID != "a" {
		t.Errorf("manual = %+v", manual)
	}
	if len(external) != 1 || external[0].ID != "c" || external[0].FeedName != "airbnb" {
		t.Errorf("external = %+v", external)
	}
	skipped := logs.FilterMessage("reservation row skipped").All()
	if len(skipped) != 1 || skipped[0].ContextMap()["reservation_id"] != "b" {
		t.Errorf("warnings = %+v", logs.All())
	}
}
