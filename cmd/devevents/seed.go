package main

import (
	"errors"

	"github.com/spf13/cobra"

	"devevents/config"
	"devevents/internal/seed"
	"devevents/internal/services"
)

var seedFile string

var errMemorySeed = errors.New("seed needs a persistent DB_DRIVER; the memory store loads the built-in catalogue on serve")

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the event catalogue",
	Long: `Insert events from a TOML catalogue. Without --file the built-in
catalogue is used. Events whose slug already exists are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := config.NewLoggerTo(cmd.ErrOrStderr())
		if cfg.DBDriver == config.DriverMemory {
			return errMemorySeed
		}

		var (
			catalogue *seed.Catalogue
			err       error
		)
		if seedFile != "" {
			catalogue, err = seed.LoadFile(seedFile)
		} else {
			catalogue, err = seed.Default()
		}
		if err != nil {
			return err
		}

		st, err := openStore(cmd.Context(), cfg, logger, true)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := services.NewEventService(st.events, cfg.QueryTimeout)
		res, err := seed.Run(cmd.Context(), svc, catalogue, logger)
		logger.Info("seed finished", "created", res.Created, "skipped", res.Skipped, "failed", res.Failed)
		return err
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "TOML catalogue to load instead of the built-in one")
}
