package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/staycal/internal/application/usecases"
	"github.com/example/staycal/internal/auth"
	"github.com/example/staycal/internal/domain/conflict"
	"github.com/example/staycal/internal/infrastructure/postgres"
	"github.com/example/staycal/internal/interfaces/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.cfg.RequireCookieKeys(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := e.openDB(ctx, migrateUp); err != nil {
				return err
			}
			lc, closeCache := e.layoutCache(ctx)
			defer closeCache()

			months := usecases.NewMonthView(
				postgres.NewReservationRepo(e.db, e.log),
				lc,
				conflict.Options{SuppressDateMatches: e.cfg.MatchByDates},
				e.log,
			)
			ws := &web.Server{
				Auth:   auth.NewStore(postgres.NewUserRepo(e.db), e.cfg.CookieHashKey, e.cfg.CookieBlockKey),
				Months: months,
				Log:    e.log,
			}
			return web.Start(ctx, e.cfg.ListenAddr, ws.Routes(), e.log)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
