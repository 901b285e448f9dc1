package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/staycal/internal/application/usecases"
	"github.com/example/staycal/internal/domain/calendar"
	"github.com/example/staycal/internal/domain/conflict"
	"github.com/example/staycal/internal/domain/timeline"
	"github.com/example/staycal/internal/infrastructure/cache"
	"github.com/example/staycal/internal/infrastructure/fixture"
	"github.com/example/staycal/internal/infrastructure/postgres"
)

type monthFlags struct {
	month    string
	file     string
	property string
	asJSON   bool
}

func (f *monthFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.month, "month", "", "month to lay out, YYYY-MM or any YYYY-MM-DD inside it")
	c.Flags().StringVar(&f.file, "file", "", "read reservations from a YAML file instead of the database")
	c.Flags().StringVar(&f.property, "property", "", "property id")
	c.Flags().BoolVar(&f.asJSON, "json", false, "print JSON")
	_ = c.MarkFlagRequired("month")
	c.MarkFlagsOneRequired("file", "property")
}

// compute runs the month view against the file or the database.
func (f *monthFlags) compute(ctx context.Context) (timeline.MonthLayout, error) {
	ref, err := calendar.ParseRef(f.month)
	if err != nil {
		return timeline.MonthLayout{}, err
	}
	e, err := loadEnv()
	if err != nil {
		return timeline.MonthLayout{}, err
	}
	defer e.Close()
	opts := conflict.Options{SuppressDateMatches: e.cfg.MatchByDates}

	if f.file != "" {
		set, err := fixture.Load(f.file)
		if err != nil {
			return timeline.MonthLayout{}, err
		}
		return usecases.NewMonthView(set, nil, opts, e.log).Get(ctx, f.property, ref)
	}

	if err := e.openDB(ctx, false); err != nil {
		return timeline.MonthLayout{}, err
	}
	lc, closeCache := e.layoutCache(ctx)
	defer closeCache()
	return usecases.NewMonthView(postgres.NewReservationRepo(e.db, e.log), lc, opts, e.log).Get(ctx, f.property, ref)
}

// layoutCache returns nil when no Redis is configured or it cannot be reached;
// the view then computes every time.
func (e *env) layoutCache(ctx context.Context) (usecases.LayoutCache, func()) {
	if e.cfg.RedisAddr == "" {
		return nil, func() {}
	}
	c, err := cache.Dial(ctx, cache.Options{
		Addr:     e.cfg.RedisAddr,
		Password: e.cfg.RedisPassword,
		DB:       e.cfg.RedisDB,
		TTL:      e.cfg.LayoutCacheTTL,
	})
	if err != nil {
		e.log.Warn("layout cache disabled", zap.Error(err))
		return nil, func() {}
	}
	return c, func() { _ = c.Close() }
}

func newLayoutCmd() *cobra.Command {
	var f monthFlags

	c := &cobra.Command{
		Use:   "layout",
		Short: "Lay out a month: week rows, stacking layers and conflicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := f.compute(cmd.Context())
			if err != nil {
				return err
			}
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), l)
			}
			return renderLayout(cmd.OutOrStdout(), l)
		},
	}
	f.register(c)
	return c
}

func newConflictsCmd() *cobra.Command {
	var f monthFlags

	c := &cobra.Command{
		Use:   "conflicts",
		Short: "Show double-bookings and cross-source matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := f.compute(cmd.Context())
			if err != nil {
				return err
			}
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"conflicts": l.Conflicts,
					"pairs":     l.Pairs,
					"matches":   l.Matches,
				})
			}
			return renderConflicts(cmd.OutOrStdout(), l)
		},
	}
	f.register(c)
	return c
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderLayout(w io.Writer, l timeline.MonthLayout) error {
	fmt.Fprintf(w, "%s %d\n", l.Month.Ref.Month, l.Month.Ref.Year)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for wi, week := range l.Weeks {
		if len(week.Entries) == 0 {
			continue
		}
		days := l.Month.Weeks[wi]
		fmt.Fprintf(tw, "week %d\t%s..%s\t%d layers\t\t\n", wi, days[0].Date, days[calendar.DaysPerWeek-1].Date, week.Layers)
		for _, e := range week.Entries {
			from := days[e.StartDayIndex].Date
			to := days[e.EndDayIndex()-1].Date
			fmt.Fprintf(tw, "  L%d\t%s..%s\t%s\t%s\t%s\n", e.Layer, from, to, e.ReservationID, e.Display, segmentNotes(e.Segment))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return renderConflicts(w, l)
}

func segmentNotes(s timeline.Segment) string {
	var out []string
	if !s.IsStart {
		out = append(out, "continued")
	}
	if !s.IsEnd {
		out = append(out, "continues")
	}
	if s.GapOffsetPercent > 0 {
		out = append(out, fmt.Sprintf("gap %d%%", s.GapOffsetPercent))
	}
	return strings.Join(out, ", ")
}

func renderConflicts(w io.Writer, l timeline.MonthLayout) error {
	fmt.Fprintf(w, "conflicts: %s\n", listOrNone(l.Conflicts.Sorted()))
	for _, p := range l.Pairs {
		fmt.Fprintf(w, "  %s overlaps %s\n", p.A, p.B)
	}
	for _, m := range l.Matches {
		fmt.Fprintf(w, "match: %s = %s (%s)\n", m.ManualID, m.ExternalID, m.Rule)
	}
	for _, s := range l.Diagnostics.Skipped {
		fmt.Fprintf(w, "skipped: %s (%s): %s\n", s.ID, s.Source, s.Reason)
	}
	for _, o := range l.Diagnostics.Overflows {
		fmt.Fprintf(w, "overflow: %s in week %d stacked on layer %d\n", o.ReservationID, o.WeekIndex, o.Layer)
	}
	return nil
}

func listOrNone(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}
