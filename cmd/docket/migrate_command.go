package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docket/internal/audit"
	"docket/internal/auditlock"
	"docket/internal/config"
	"docket/internal/logging"
	"docket/internal/migrate"
)

func newMigrateCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [database-path]",
		Short: "Import records from a legacy SQLite queue",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			dbPath := cfg.LegacyDatabasePath()
			if len(args) == 1 {
				dbPath, err = config.ExpandPath(args[0])
				if err != nil {
					return err
				}
			}

			return cctx.withStore(cmd.Context(), func(ctx context.Context, store *audit.Store, _ *auditlock.Lock) error {
				logger, err := logging.New(logging.Options{
					Level:  "info",
					Format: "console",
					Output: os.Stderr,
				})
				if err != nil {
					return err
				}
				migrated, err := migrate.FromSQLite(ctx, store, dbPath, logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records from %s\n", migrated, dbPath)
				return nil
			})
		},
	}
}
