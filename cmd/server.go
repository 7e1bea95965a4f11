package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/salon-agenda/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServerCmd() *cobra.Command {
	var (
		migrateUp bool
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the agenda web UI and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			e, err := openEnv(ctx, migrateUp)
			if err != nil {
				return err
			}
			defer e.Close()

			sessions := web.NewSessions(e.cfg.CookieHashKey, e.cfg.CookieBlockKey)
			if len(e.cfg.CookieHashKey) == 0 {
				e.log.Warn("no cookie keys configured; open booking forms are lost on restart (see `salonagenda keys`)")
			}

			ws, err := web.New(e.store, sessions, e.log, e.cfg.Title, e.cfg.WorkingHours, e.cfg.Stylists, e.cfg.Services)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = e.cfg.ListenAddr
			}
			e.log.Info("starting",
				zap.String("base_url", e.cfg.BaseURL),
				zap.String("data_url", e.cfg.DataURL),
				zap.Strings("stylists", e.cfg.Stylists),
				zap.Int("slots", len(ws.Slots())))
			return web.Start(ctx, addr, ws.Routes(), e.log)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup (postgres DATA_URL only)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to LISTEN_ADDR)")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
