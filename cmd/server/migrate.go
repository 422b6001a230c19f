package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"go-shop-api/internal/config"
	"go-shop-api/internal/database"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all up migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := database.MigrateUp(config.DatabaseURL()); err != nil {
					return err
				}
				slog.Info("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := database.MigrateDown(config.DatabaseURL()); err != nil {
					return err
				}
				slog.Info("migrations rolled back")
				return nil
			},
		},
	)

	return migrateCmd
}
