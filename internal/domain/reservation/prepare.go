package reservation

// Entry is a reservation whose dates parsed cleanly.
type Entry struct {
	Reservation
	Period Period
}

func (e Entry) ID() string { return e.Details().ID }

// Prepare parses every reservation in deterministic order. Reservations with
// unparseable dates are skipped, as are repeats of an id already seen (the
// first one in Sort order wins). Nothing here fails the whole batch.
func Prepare(rs []Reservation) ([]Entry, []Skip) {
	sorted := make([]Reservation, len(rs))
	copy(sorted, rs)
	Sort(sorted)

	var (
		entries = make([]Entry, 0, len(sorted))
		skipped []Skip
		seen    = make(map[string]struct{}, len(sorted))
	)
	for _, r := range sorted {
		d := r.Details()
		if _, dup := seen[d.ID]; dup {
			skipped = append(skipped, Skip{ID: d.ID, Source: r.Source(), Reason: "duplicate id"})
			continue
		}
		p, err := d.Period()
		if err != nil {
			skipped = append(skipped, Skip{ID: d.ID, Source: r.Source(), Reason: err.Error()})
			continue
		}
		seen[d.ID] = struct{}{}
		entries = append(entries, Entry{Reservation: r, Period: p})
	}
	return entries, skipped
}
