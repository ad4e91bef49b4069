package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Neuro316/Neuro-progeny-university/database"
)

func migrateCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations",
		Long: `Apply the embedded SQL migrations to the configured database.

Examples:
  enrollment-service migrate
  enrollment-service migrate --steps -1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			if !cfg.DatabaseConfigured() {
				return errors.New("migrate: DATABASE_URL or POSTGRES_* must be set")
			}
			return database.Migrate(cfg.MigrationURL(), steps, log)
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps to apply (negative rolls back); 0 applies all")
	return cmd
}
