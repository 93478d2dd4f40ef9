package main

import (
	"github.com/spf13/cobra"
	"github.com/xavierca1/dealer-leads/internal/config"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the lead schema in the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := commonRun(cfg.Debug)

			store, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer store.close()

			if err := store.migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Info("schema up to date", "store", cfg.Store)
			return nil
		},
	}
}
