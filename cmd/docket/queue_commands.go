package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docket/internal/audit"
	"docket/internal/auditlock"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		memoryID   string
		userQuery  string
		response   string
		reason     string
		confidence float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Queue a memory for human review",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub := audit.Submission{
				MemoryID:      memoryID,
				UserQuery:     userQuery,
				AgentResponse: response,
			}
			if cmd.Flags().Changed("reason") {
				sub.AuditReason = &reason
			}
			if cmd.Flags().Changed("confidence") {
				sub.AuditConfidence = &confidence
			}

			return ctx.withStore(cmd.Context(), func(ctx context.Context, store *audit.Store, _ *auditlock.Lock) error {
				added, err := store.Add(ctx, sub)
				if err != nil {
					return err
				}
				if !added {
					fmt.Fprintf(cmd.OutOrStdout(), "Memory %s is already queued\n", memoryID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued memory %s for review\n", memoryID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&memoryID, "id", "", "Memory identifier")
	cmd.Flags().StringVar(&userQuery, "query", "", "User query that produced the memory")
	cmd.Flags().StringVar(&response, "response", "", "Agent response under review")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the memory was flagged")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Flagging confidence score")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("response")
	return cmd
}

func newPendingCommand(cctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List records awaiting review, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				cfg, err := cctx.ensureConfig()
				if err != nil {
					return err
				}
				limit = cfg.Audit.PendingLimit
			}
			return cctx.withStore(cmd.Context(), func(ctx context.Context, store *audit.Store, _ *auditlock.Lock) error {
				records, err := store.Pending(ctx, limit)
				if err != nil {
					return err
				}
				if jsonOut {
					return emitJSON(cmd.OutOrStdout(), records)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No records awaiting review")
					return nil
				}
				renderRecordTable(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", audit.DefaultPendingLimit, "Maximum records to return")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string
	var search string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List review records",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := strings.ToLower(strings.TrimSpace(statusFilter))
			var status audit.Status
			if filter != "" && filter != "all" {
				parsed, ok := audit.ParseStatus(filter)
				if !ok {
					return fmt.Errorf("unknown status %q (expected pending, approved, rejected, or all)", statusFilter)
				}
				status = parsed
			}

			return ctx.withStore(cmd.Context(), func(ctx context.Context, store *audit.Store, _ *auditlock.Lock) error {
				var records []*audit.Record
				var err error
				if status == "" {
					records, err = store.All(ctx)
				} else {
					records, err = store.ByStatus(ctx, status)
				}
				if err != nil {
					return err
				}
				records = filterRecords(records, search)

				if jsonOut {
					return emitJSON(cmd.OutOrStdout(), records)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matching records")
					return nil
				}
				renderRecordTable(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "all", "Filter by status (pending, approved, rejected, all)")
	cmd.Flags().StringVar(&search, "search", "", "Match text in the query or response")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

// filterRecords keeps records whose query or response contains the search
// text, case-insensitively. An empty search keeps everything.
func filterRecords(records []*audit.Record, search string) []*audit.Record {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return records
	}
	matched := make([]*audit.Record, 0, len(records))
	for _, record := range records {
		if strings.Contains(strings.ToLower(record.UserQuery), search) ||
			strings.Contains(strings.ToLower(record.AgentResponse), search) {
			matched = append(matched, record)
		}
	}
	return matched
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <memory-id>",
		Short: "Show a single review record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(ctx context.Context, store *audit.Store, locks *auditlock.Lock) error {
				record, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("memory %s not found", args[0])
				}
				if jsonOut {
					return emitJSON(cmd.OutOrStdout(), record)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Memory ID:  %s\n", record.MemoryID)
				fmt.Fprintf(out, "Status:     %s\n", record.Status)
				fmt.Fprintf(out, "Created:    %s\n", record.CreatedAt.Format(time.RFC3339))
				if record.ReviewedAt != nil {
					fmt.Fprintf(out, "Reviewed:   %s\n", record.ReviewedAt.Format(time.RFC3339))
				}
				if record.AuditReason != nil {
					fmt.Fprintf(out, "Reason:     %s\n", *record.AuditReason)
				}
				if record.AuditConfidence != nil {
					fmt.Fprintf(out, "Confidence: %.2f\n", *record.AuditConfidence)
				}
				fmt.Fprintf(out, "Query:      %s\n", record.UserQuery)
				fmt.Fprintf(out, "Response:   %s\n", record.AgentResponse)
				if locks.IsLocked(ctx, "memory:"+record.MemoryID) {
					fmt.Fprintln(out, "Locked:     yes (under review elsewhere)")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

func newApproveCommand(ctx *commandContext) *cobra.Command {
	return newReviewCommand(ctx, "approve", audit.StatusApproved)
}

func newRejectCommand(ctx *commandContext) *cobra.Command {
	return newReviewCommand(ctx, "reject", audit.StatusRejected)
}

// newReviewCommand builds approve/reject; both take the per-memory lock so
// concurrent reviewers of the same record are serialized.
func newReviewCommand(cctx *commandContext, verb string, status audit.Status) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <memory-id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a flagged memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memoryID := args[0]
			return cctx.withStore(cmd.Context(), func(ctx context.Context, store *audit.Store, locks *auditlock.Lock) error {
				cfg, err := cctx.ensureConfig()
				if err != nil {
					return err
				}
				err = locks.With(ctx, "memory:"+memoryID, cfg.LockTTL(), func(ctx context.Context) error {
					updated, err := store.UpdateStatus(ctx, memoryID, status)
					if err != nil {
						return err
					}
					if !updated {
						return fmt.Errorf("memory %s not found", memoryID)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Memory %s %s\n", memoryID, status)
					return nil
				})
				if errors.Is(err, auditlock.ErrNotAcquired) {
					return fmt.Errorf("memory %s is being reviewed elsewhere; try again shortly", memoryID)
				}
				return err
			})
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <memory-id>",
		Short: "Remove a record from the review queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(ctx context.Context, store *audit.Store, _ *auditlock.Lock) error {
				deleted, err := store.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("memory %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted memory %s\n", args[0])
				return nil
			})
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show queue totals by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(ctx context.Context, store *audit.Store, _ *auditlock.Lock) error {
				metrics, err := store.Metrics(ctx)
				if err != nil {
					return err
				}
				length, err := store.QueueLength(ctx)
				if err != nil {
					return err
				}

				if jsonOut {
					return emitJSON(cmd.OutOrStdout(), struct {
						audit.Metrics
						QueueLength int64 `json:"queue_length"`
					}{metrics, length})
				}

				out := cmd.OutOrStdout()
				renderMetricsTable(out, metrics)
				fmt.Fprintf(out, "Queue list length: %d\n", length)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newLengthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "length",
		Short: "Show the raw queue list length",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(ctx context.Context, store *audit.Store, _ *auditlock.Lock) error {
				length, err := store.QueueLength(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), length)
				return nil
			})
		},
	}
}

func newCleanupCommand(cctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Purge reviewed records older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withStore(cmd.Context(), func(ctx context.Context, store *audit.Store, _ *auditlock.Lock) error {
				retention := time.Duration(days) * 24 * time.Hour
				if days <= 0 {
					cfg, err := cctx.ensureConfig()
					if err != nil {
						return err
					}
					retention = cfg.Retention()
				}
				removed, err := store.CleanupProcessed(ctx, retention)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d reviewed records\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention in days (defaults to the configured value)")
	return cmd
}
