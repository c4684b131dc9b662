package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobcraft/internal/config"
	"github.com/jonathan/jobcraft/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if cfg.DatabaseURL == "" {
		return &config.ConfigError{Field: "database_url", Message: "DATABASE_URL environment variable or --db-url flag is required"}
	}
	ctx := commandContext(cmd)

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	applied, err := database.Migrate(ctx)
	for _, v := range applied {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", v)
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
	}
	return nil
}
