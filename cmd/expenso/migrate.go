package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expenso-app/expenso/internal/migrations"
	"github.com/expenso-app/expenso/pkg/config"
	"github.com/expenso-app/expenso/pkg/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			pool, err := db.Connect(cmd.Context(), cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer pool.Close()

			if err := migrations.Up(cmd.Context(), pool); err != nil {
				return fmt.Errorf("applying migrations: %w", err)
			}

			fmt.Println("Migrations applied")
			return nil
		},
	}
}
