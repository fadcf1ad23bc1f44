package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-autopilot/internal/config"
	"github.com/jonathan/job-autopilot/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long:  `Open DATABASE_URL and apply any pending migrations for its dialect (SQLite or Postgres).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		store, err := db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		fmt.Fprintf(cmd.OutOrStdout(), "Database is up to date (%s)\n", store.Dialect())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
