package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SscSPs/twoline_ledger/internal/repositories/database/pgsql"
)

func migrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("PGSQL_URL is required for migrations")
			}
			direction := pgsql.Up
			if down {
				direction = pgsql.Down
			}
			return pgsql.RunMigrations(cfg.DatabaseURL, direction)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "revert every migration instead")
	return cmd
}
