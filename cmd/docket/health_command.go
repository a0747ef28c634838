package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"docket/internal/audit"
	"docket/internal/auditlock"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to the backing store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(ctx context.Context, store *audit.Store, _ *auditlock.Lock) error {
				info := store.ConnectionInfo(ctx)
				if jsonOut {
					return emitJSON(cmd.OutOrStdout(), info)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Redis", colorize) {
					fmt.Fprintln(out, line)
				}
				if !info.Connected {
					fmt.Fprintln(out, renderStatusLine("Connection", statusError, info.Error, colorize))
					return fmt.Errorf("redis unreachable at %s", info.Addr)
				}
				fmt.Fprintln(out, renderStatusLine("Connection", statusOK, info.Addr, colorize))
				fmt.Fprintln(out, renderStatusLine("Version", statusInfo, info.RedisVersion, colorize))
				fmt.Fprintln(out, renderStatusLine("Clients", statusInfo, fmt.Sprintf("%d", info.ConnectedClients), colorize))
				if info.UsedMemory != "" {
					fmt.Fprintln(out, renderStatusLine("Memory", statusInfo, info.UsedMemory, colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Uptime", statusInfo, fmt.Sprintf("%d days", info.UptimeDays), colorize))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}
