package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/example/salon-agenda/internal/config"
	"github.com/example/salon-agenda/internal/logging"
	"github.com/example/salon-agenda/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "salonagenda",
		Short:         "Day agenda and booking form for a single salon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newServerCmd())
	root.AddCommand(newSlotsCmd())
	root.AddCommand(newAgendaCmd())
	root.AddCommand(newBookCmd())
	root.AddCommand(newMigrateCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every data-touching command needs: config, a logger and a
// loaded store.
type env struct {
	cfg    config.Config
	log    *zap.Logger
	store  *store.Store
	closer io.Closer
}

func (e *env) Close() {
	_ = e.closer.Close()
	_ = e.log.Sync()
}

func openEnv(ctx context.Context, migrateUp bool) (*env, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	res, closer, err := store.Open(ctx, cfg.DataURL, store.Options{
		DocumentName: cfg.DocumentName,
		RedisKey:     cfg.RedisKey,
		Migrate:      migrateUp,
	})
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	st := store.New(res, log)
	st.Load(ctx)
	log.Debug("store ready", zap.Stringer("resource", res), zap.Int("appointments", st.Len()))

	return &env{cfg: cfg, log: log, store: st, closer: closer}, nil
}
