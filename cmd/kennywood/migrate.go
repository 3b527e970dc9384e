package main

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/kennywood-api/internal/config"
	"github.com/deppfellow/kennywood-api/internal/database"
	"github.com/deppfellow/kennywood-api/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	var to int32

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			log := logger.NewLogger(cfg.Observability)

			return database.MigrateTo(cmd.Context(), &log, database.DSN(cfg.Database), to)
		},
	}

	cmd.Flags().Int32Var(&to, "to", database.Latest, "target schema version, 0 rolls everything back")

	return cmd
}
