package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"devevents/config"
	"devevents/internal/repository/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations (postgres) or create indexes (mongo)",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := config.NewLoggerTo(cmd.ErrOrStderr())
		if cfg.DBDriver == config.DriverMemory {
			logger.Info("nothing to migrate", "driver", cfg.DBDriver)
			return nil
		}
		// openStore prepares the schema before handing back repositories.
		st, err := openStore(cmd.Context(), cfg, logger, true)
		if err != nil {
			return err
		}
		defer st.Close()
		logger.Info("schema up to date", "driver", cfg.DBDriver)
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration (postgres only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := config.NewLoggerTo(cmd.ErrOrStderr())
		if cfg.DBDriver != config.DriverPostgres {
			return fmt.Errorf("migrate down is only supported for %s", config.DriverPostgres)
		}
		st, err := openStore(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := postgres.MigrateDown(st.db); err != nil {
			return err
		}
		logger.Info("migrations rolled back")
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}
