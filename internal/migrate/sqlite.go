package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"

	"docket/internal/audit"
	"docket/internal/logging"
)

// FromSQLite replays every row of the legacy audit_queue table into store.
// Rows already reviewed in SQLite land in Redis with their final status.
// A missing database file is treated as "nothing to migrate". Returns how
// many records were imported.
func FromSQLite(ctx context.Context, store *audit.Store, dbPath string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.FieldComponent, "migrate")

	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		logger.Info("no legacy database found", "path", dbPath)
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("stat legacy database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open legacy database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT memory_id, user_query, agent_response,
		       ia_audit_reason, ia_audit_confidence, status
		FROM audit_queue`)
	if err != nil {
		return 0, fmt.Errorf("read legacy records: %w", err)
	}
	defer rows.Close()

	migrated := 0
	skipped := 0
	for rows.Next() {
		var (
			memoryID   string
			userQuery  string
			response   string
			reason     sql.NullString
			confidence sql.NullFloat64
			rawStatus  string
		)
		if err := rows.Scan(&memoryID, &userQuery, &response, &reason, &confidence, &rawStatus); err != nil {
			return migrated, fmt.Errorf("scan legacy record: %w", err)
		}

		submission := audit.Submission{
			MemoryID:      memoryID,
			UserQuery:     userQuery,
			AgentResponse: response,
		}
		if reason.Valid {
			submission.AuditReason = &reason.String
		}
		if confidence.Valid {
			submission.AuditConfidence = &confidence.Float64
		}

		added, err := store.Add(ctx, submission)
		if err != nil {
			return migrated, fmt.Errorf("import record %s: %w", memoryID, err)
		}
		if !added {
			skipped++
			logger.Debug("record already present, skipping", logging.FieldMemoryID, memoryID)
			continue
		}

		if status, ok := audit.ParseStatus(rawStatus); ok && status.IsTerminal() {
			if _, err := store.UpdateStatus(ctx, memoryID, status); err != nil {
				return migrated, fmt.Errorf("restore status for %s: %w", memoryID, err)
			}
		}
		migrated++
	}
	if err := rows.Err(); err != nil {
		return migrated, fmt.Errorf("read legacy records: %w", err)
	}

	logger.Info("migration complete", "migrated", migrated, "skipped", skipped)
	return migrated, nil
}
