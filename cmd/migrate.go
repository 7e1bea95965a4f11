package cmd

import (
	"fmt"
	"strings"

	"github.com/example/salon-agenda/internal/config"
	"github.com/example/salon-agenda/internal/db"
	"github.com/example/salon-agenda/internal/migrate"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var list bool

	c := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the postgres document backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				files, err := migrate.Files()
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintln(out, f)
				}
				return nil
			}

			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			dsn := migrationDSN(cfg)
			if dsn == "" {
				return fmt.Errorf("no postgres URL: set DATABASE_URL or a postgres:// DATA_URL")
			}

			ctx := cmd.Context()
			d, err := db.Open(ctx, dsn)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}
			if err := migrate.Up(ctx, d); err != nil {
				return err
			}
			fmt.Fprintln(out, "migrations applied")
			return nil
		},
	}
	c.Flags().BoolVar(&list, "list", false, "list embedded migrations and exit")
	return c
}

// migrationDSN prefers DATABASE_URL and falls back to a postgres DATA_URL.
func migrationDSN(cfg config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	lower := strings.ToLower(cfg.DataURL)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return cfg.DataURL
	}
	return ""
}
