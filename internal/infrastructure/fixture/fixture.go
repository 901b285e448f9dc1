// Package fixture reads reservation sets from YAML files, for offline layout
// runs and bulk import.
package fixture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/staycal/internal/domain/reservation"
	"github.com/example/staycal/internal/internaltypes"
)

type Item struct {
	ID        string `yaml:"id"`
	Start     string `yaml:"start"`
	End       string `yaml:"end"`
	Reference string `yaml:"reference"`
	Validated bool   `yaml:"validated"`
	Status    string `yaml:"status"`
	Guest     string `yaml:"guest"` // manual only
	Feed      string `yaml:"feed"`  // external only
}

func (i Item) record() reservation.Record {
	return reservation.Record{
		ID:            strings.TrimSpace(i.ID),
		Start:         i.Start,
		End:           i.End,
		ReferenceCode: i.Reference,
		Validated:     i.Validated,
		Status:        reservation.ParseStatus(i.Status),
	}
}

type File struct {
	Property string `yaml:"property"`
	Manual   []Item `yaml:"manual"`
	External []Item `yaml:"external"`
}

// Set is a decoded file.
type Set struct {
	Property string
	Manual   []reservation.Manual
	External []reservation.External
}

// Reservations returns both collections in deterministic order.
func (s Set) Reservations() []reservation.Reservation {
	return reservation.Union(s.Manual, s.External)
}

// ListByProperty lets a file stand in for the database. A file holds one
// property; other ids get an empty result.
func (s Set) ListByProperty(_ context.Context, propertyID string) ([]reservation.Manual, []reservation.External, error) {
	if s.Property != "" && propertyID != "" && propertyID != s.Property {
		return nil, nil, nil
	}
	return s.Manual, s.External, nil
}

func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, err
	}
	s, err := Parse(data)
	if err != nil {
		return Set{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a fixture. Dates are kept as written; unknown keys are rejected.
func Parse(data []byte) (Set, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Set{}, fmt.Errorf("%w: %v", internaltypes.ErrInvalidInput, err)
	}

	s := Set{Property: strings.TrimSpace(f.Property)}
	for n, it := range f.Manual {
		if strings.TrimSpace(it.ID) == "" {
			return Set{}, fmt.Errorf("%w: manual entry %d has no id", internaltypes.ErrInvalidInput, n)
		}
		s.Manual = append(s.Manual, reservation.Manual{Record: it.record(), GuestName: it.Guest})
	}
	for n, it := range f.External {
		if strings.TrimSpace(it.ID) == "" {
			return Set{}, fmt.Errorf("%w: external entry %d has no id", internaltypes.ErrInvalidInput, n)
		}
		s.External = append(s.External, reservation.External{Record: it.record(), FeedName: it.Feed})
	}
	return s, nil
}
