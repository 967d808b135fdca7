// @title DevEvents API
// @version 1.0
// @description Event listings and bookings for developer events.
// @BasePath /
package main

import (
	"os"

	"github.com/spf13/cobra"

	"devevents/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "devevents",
	Short:         "Developer event listings and bookings",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(bookingsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
