package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docket/internal/audit"
	"docket/internal/auditlock"
)

func newLockCommand(ctx *commandContext) *cobra.Command {
	lockCmd := &cobra.Command{
		Use:   "lock",
		Short: "Inspect and manage review locks",
	}

	lockCmd.AddCommand(newLockStatusCommand(ctx))
	lockCmd.AddCommand(newLockReleaseCommand(ctx))
	lockCmd.AddCommand(newLockReapCommand(ctx))

	return lockCmd
}

func newLockStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <name>",
		Short: "Report whether a lock is held",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(ctx context.Context, _ *audit.Store, locks *auditlock.Lock) error {
				if locks.IsLocked(ctx, args[0]) {
					fmt.Fprintf(cmd.OutOrStdout(), "Lock %s is held\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Lock %s is free\n", args[0])
				}
				return nil
			})
		},
	}
}

func newLockReleaseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "release <name>",
		Short: "Forcefully release a lock regardless of owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(ctx context.Context, _ *audit.Store, locks *auditlock.Lock) error {
				if !locks.ForceRelease(ctx, args[0]) {
					fmt.Fprintf(cmd.OutOrStdout(), "Lock %s was not held\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Released lock %s\n", args[0])
				return nil
			})
		},
	}
}

func newLockReapCommand(cctx *commandContext) *cobra.Command {
	var maxAgeSeconds int

	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Clean up abandoned locks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withStore(cmd.Context(), func(ctx context.Context, _ *audit.Store, locks *auditlock.Lock) error {
				maxAge := time.Duration(maxAgeSeconds) * time.Second
				if maxAgeSeconds <= 0 {
					cfg, err := cctx.ensureConfig()
					if err != nil {
						return err
					}
					maxAge = cfg.LockReapMaxAge()
				}
				cleaned := locks.CleanupExpired(ctx, maxAge)
				fmt.Fprintf(cmd.OutOrStdout(), "Cleaned up %d locks\n", cleaned)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&maxAgeSeconds, "max-age", 0, "Maximum lock age in seconds (defaults to the configured value)")
	return cmd
}
