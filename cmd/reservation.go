package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/staycal/internal/application/usecases"
	"github.com/example/staycal/internal/infrastructure/fixture"
	"github.com/example/staycal/internal/infrastructure/postgres"
)

func newReservationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reservation",
		Aliases: []string{"res"},
		Short:   "Manage stored reservations",
	}
	cmd.AddCommand(newReservationAddCmd())
	cmd.AddCommand(newReservationImportCmd())
	cmd.AddCommand(newReservationListCmd())
	cmd.AddCommand(newReservationRmCmd())
	return cmd
}

func reservationService(cmd *cobra.Command) (usecases.ReservationService, *env, error) {
	e, err := loadEnv()
	if err != nil {
		return usecases.ReservationService{}, nil, err
	}
	if err := e.openDB(cmd.Context(), true); err != nil {
		e.Close()
		return usecases.ReservationService{}, nil, err
	}
	return usecases.ReservationService{Store: postgres.NewReservationRepo(e.db, e.log)}, e, nil
}

func newReservationAddCmd() *cobra.Command {
	var in usecases.NewReservation

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a reservation (dates as YYYY-MM-DD, end is the departure day)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, e, err := reservationService(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			r, err := svc.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s reservation %s\n", r.Source(), r.Details().ID)
			return nil
		},
	}

	c.Flags().StringVar(&in.ID, "id", "", "reservation id (generated when empty)")
	c.Flags().StringVar(&in.PropertyID, "property", "", "property id")
	c.Flags().StringVar(&in.Source, "source", "manual", "manual or external")
	c.Flags().StringVar(&in.Start, "start", "", "arrival day")
	c.Flags().StringVar(&in.End, "end", "", "departure day")
	c.Flags().StringVar(&in.Reference, "ref", "", "booking reference code")
	c.Flags().BoolVar(&in.Validated, "validated", false, "guest identity and documents are complete")
	c.Flags().StringVar(&in.Status, "status", "", "pending, confirmed, cancelled or blocked")
	c.Flags().StringVar(&in.Name, "name", "", "guest name (manual) or feed name (external)")
	_ = c.MarkFlagRequired("property")
	_ = c.MarkFlagRequired("start")
	_ = c.MarkFlagRequired("end")
	return c
}

func newReservationImportCmd() *cobra.Command {
	var property, file string

	c := &cobra.Command{
		Use:   "import",
		Short: "Import reservations from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := fixture.Load(file)
			if err != nil {
				return err
			}
			if property == "" {
				property = set.Property
			}

			svc, e, err := reservationService(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := svc.Import(cmd.Context(), property, set.Reservations())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d reservations into %s\n", n, property)
			return nil
		},
	}

	c.Flags().StringVar(&property, "property", "", "property id (defaults to the file's property)")
	c.Flags().StringVar(&file, "file", "", "YAML file")
	_ = c.MarkFlagRequired("file")
	return c
}

func newReservationListCmd() *cobra.Command {
	var property string

	c := &cobra.Command{
		Use:   "list",
		Short: "List a property's reservations",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, e, err := reservationService(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			rs, err := svc.List(cmd.Context(), property)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSOURCE\tSTART\tEND\tREF\tVALIDATED\tSTATUS")
			for _, r := range rs {
				d := r.Details()
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n", d.ID, r.Source(), d.Start, d.End, d.ReferenceCode, d.Validated, d.Status)
			}
			return tw.Flush()
		},
	}

	c.Flags().StringVar(&property, "property", "", "property id")
	_ = c.MarkFlagRequired("property")
	return c
}

func newReservationRmCmd() *cobra.Command {
	var id string

	c := &cobra.Command{
		Use:   "rm",
		Short: "Delete a reservation",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, e, err := reservationService(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := svc.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}

	c.Flags().StringVar(&id, "id", "", "reservation id")
	_ = c.MarkFlagRequired("id")
	return c
}
