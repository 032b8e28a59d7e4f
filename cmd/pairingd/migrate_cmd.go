package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/pairing-core/internal/infrastructure/database"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect and apply database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRawDB(func(db *database.DB) error {
				if err := db.Migrate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migration (development only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRawDB(func(db *database.DB) error {
				if err := db.MigrateDown(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Most recent migration reverted.")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRawDB(func(db *database.DB) error {
				applied, pending, err := db.MigrationStatus(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, r := range applied {
					fmt.Fprintf(out, "applied  %s  %s\n", r.Version, r.AppliedAt.Format(time.RFC3339))
				}
				for _, m := range pending {
					fmt.Fprintf(out, "pending  %s  %s\n", m.Version, m.Name)
				}
				return nil
			})
		},
	})

	return cmd
}

// withRawDB opens the database without migrating it.
func withRawDB(fn func(*database.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // CLI exit

	return fn(db)
}
