package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mockmate/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables (postgres, sqlite) or indexes (mongo) and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), startupTimeout)
			defer cancel()

			store, err := openStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())
			fmt.Fprintf(cmd.OutOrStdout(), "%s store is up to date\n", cfg.Store.Driver)
			return nil
		},
	}
}
