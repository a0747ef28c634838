package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"docket/internal/logging"
)

// DefaultPendingLimit bounds the pending window when the caller does not
// supply a limit.
const DefaultPendingLimit = 50

// Options describes store construction parameters.
type Options struct {
	// Prefix namespaces every key the store touches. Defaults to "docket".
	Prefix string
	// Addr is reported by ConnectionInfo; informational only.
	Addr string
	// Logger receives structured operation logs. Defaults to a no-op logger.
	Logger *slog.Logger
}

// Store manages the review worklist and its dispositions in Redis. Memory ids
// are whitespace-trimmed at every entry point, so " m1 " and "m1" address the
// same record.
type Store struct {
	cmd    redis.Cmdable
	prefix string
	addr   string
	logger *slog.Logger
}

// New constructs a store over the provided Redis client.
func New(cmd redis.Cmdable, opts Options) *Store {
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = "docket"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		cmd:    cmd,
		prefix: prefix,
		addr:   opts.Addr,
		logger: logger.With(logging.FieldComponent, "audit"),
	}
}

func (s *Store) queueKey() string  { return s.prefix + ":audit_queue" }
func (s *Store) statusKey() string { return s.prefix + ":audit_status" }
func (s *Store) dataKey() string   { return s.prefix + ":audit_data" }

// Add enqueues a memory for review. It returns false without mutating
// anything when the id is already tracked.
func (s *Store) Add(ctx context.Context, sub Submission) (bool, error) {
	id := strings.TrimSpace(sub.MemoryID)
	if id == "" {
		return false, ErrEmptyMemoryID
	}

	record := Record{
		MemoryID:        id,
		UserQuery:       sub.UserQuery,
		AgentResponse:   sub.AgentResponse,
		AuditReason:     sub.AuditReason,
		AuditConfidence: sub.AuditConfidence,
		Status:          StatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	added, err := addScript.Run(ctx, s.cmd,
		[]string{s.queueKey(), s.statusKey(), s.dataKey()},
		id, string(StatusPending), string(payload),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("add record: %w", err)
	}
	if added == 0 {
		s.logger.Warn("memory already tracked, skipping", logging.FieldMemoryID, id)
		return false, nil
	}

	s.logger.Info("added memory to review queue", logging.FieldMemoryID, id)
	return true, nil
}

// Get returns the stored record for an id, or nil when absent.
func (s *Store) Get(ctx context.Context, memoryID string) (*Record, error) {
	memoryID = strings.TrimSpace(memoryID)
	payload, err := s.cmd.HGet(ctx, s.dataKey(), memoryID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	record, err := decodeRecord(payload)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Pending returns up to limit records still pending, in queue order (newest
// first). The scan covers only the first limit positions of the id list, so
// the result may undercount when reviewed ids still occupy the window.
func (s *Store) Pending(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultPendingLimit
	}

	ids, err := s.cmd.LRange(ctx, s.queueKey(), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("scan queue window: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	statuses, err := s.cmd.HMGet(ctx, s.statusKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read statuses: %w", err)
	}

	pendingIDs := make([]string, 0, len(ids))
	for i, raw := range statuses {
		value, ok := raw.(string)
		if !ok {
			continue
		}
		if Status(value) == StatusPending {
			pendingIDs = append(pendingIDs, ids[i])
		}
	}
	if len(pendingIDs) == 0 {
		return nil, nil
	}

	return s.fetchRecords(ctx, pendingIDs)
}

// UpdateStatus records a review disposition for a tracked memory. Statuses
// outside the accepted dispositions are rejected with ErrInvalidStatus; a
// missing id returns false without error.
func (s *Store) UpdateStatus(ctx context.Context, memoryID string, status Status) (bool, error) {
	memoryID = strings.TrimSpace(memoryID)
	if memoryID == "" {
		return false, ErrEmptyMemoryID
	}
	if !status.IsTerminal() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	// Merge the disposition and review timestamp into the stored record.
	// The script re-checks existence so the status and data writes stay one
	// atomic unit; a concurrent reviewer simply wins with the later write.
	payload := ""
	record, err := s.Get(ctx, memoryID)
	if err != nil {
		return false, err
	}
	if record != nil {
		now := time.Now().UTC()
		record.Status = status
		record.ReviewedAt = &now
		encoded, err := json.Marshal(record)
		if err != nil {
			return false, fmt.Errorf("marshal record: %w", err)
		}
		payload = string(encoded)
	}

	updated, err := reviewScript.Run(ctx, s.cmd,
		[]string{s.statusKey(), s.dataKey()},
		memoryID, string(status), payload,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("update status: %w", err)
	}
	if updated == 0 {
		s.logger.Warn("memory not tracked", logging.FieldMemoryID, memoryID)
		return false, nil
	}

	s.logger.Info("updated memory status",
		logging.FieldMemoryID, memoryID,
		logging.FieldStatus, string(status))
	return true, nil
}

// IsApproved reports whether the memory's current status is exactly approved.
// Absent records report false.
func (s *Store) IsApproved(ctx context.Context, memoryID string) (bool, error) {
	memoryID = strings.TrimSpace(memoryID)
	value, err := s.cmd.HGet(ctx, s.statusKey(), memoryID).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("read status: %w", err)
	}
	return Status(value) == StatusApproved, nil
}

// Delete removes a record from the queue list, status hash, and data hash.
// It returns false when the id is not tracked.
func (s *Store) Delete(ctx context.Context, memoryID string) (bool, error) {
	memoryID = strings.TrimSpace(memoryID)
	if memoryID == "" {
		return false, ErrEmptyMemoryID
	}

	removed, err := deleteScript.Run(ctx, s.cmd,
		[]string{s.queueKey(), s.statusKey(), s.dataKey()},
		memoryID,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	if removed == 0 {
		s.logger.Warn("memory not tracked", logging.FieldMemoryID, memoryID)
		return false, nil
	}

	s.logger.Info("deleted memory from review queue", logging.FieldMemoryID, memoryID)
	return true, nil
}

// QueueLength returns the raw id-list length. Entries whose status has moved
// past pending still count until they are deleted.
func (s *Store) QueueLength(ctx context.Context) (int64, error) {
	length, err := s.cmd.LLen(ctx, s.queueKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return length, nil
}

// All returns every tracked record. Full scan; keep off latency-sensitive paths.
func (s *Store) All(ctx context.Context) ([]*Record, error) {
	statuses, err := s.cmd.HGetAll(ctx, s.statusKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("scan statuses: %w", err)
	}
	if len(statuses) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	return s.fetchRecords(ctx, ids)
}

// ByStatus returns every record currently carrying the given status. Full scan.
func (s *Store) ByStatus(ctx context.Context, status Status) ([]*Record, error) {
	statuses, err := s.cmd.HGetAll(ctx, s.statusKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("scan statuses: %w", err)
	}

	ids := make([]string, 0, len(statuses))
	for id, value := range statuses {
		if Status(value) == status {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.fetchRecords(ctx, ids)
}

// Metrics returns the total tracked count plus a breakdown across the known
// statuses. Ids carrying an unrecognized status count toward Total only.
func (s *Store) Metrics(ctx context.Context) (Metrics, error) {
	statuses, err := s.cmd.HGetAll(ctx, s.statusKey()).Result()
	if err != nil {
		return Metrics{}, fmt.Errorf("scan statuses: %w", err)
	}

	metrics := Metrics{Total: len(statuses)}
	for _, value := range statuses {
		switch Status(value) {
		case StatusPending:
			metrics.Pending++
		case StatusApproved:
			metrics.Approved++
		case StatusRejected:
			metrics.Rejected++
		}
	}
	return metrics, nil
}

// CleanupProcessed deletes reviewed records whose review timestamp is older
// than the retention window. O(n) over every tracked id; run it from the
// janitor, not a request path. Returns how many records were removed.
func (s *Store) CleanupProcessed(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	statuses, err := s.cmd.HGetAll(ctx, s.statusKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("scan statuses: %w", err)
	}

	cleaned := 0
	for id, value := range statuses {
		if !Status(value).IsTerminal() {
			continue
		}
		record, err := s.Get(ctx, id)
		if err != nil {
			return cleaned, err
		}
		if record == nil || record.ReviewedAt == nil {
			continue
		}
		if record.ReviewedAt.Before(cutoff) {
			removed, err := s.Delete(ctx, id)
			if err != nil {
				return cleaned, err
			}
			if removed {
				cleaned++
			}
		}
	}

	s.logger.Info("cleaned up processed audits", logging.FieldCount, cleaned)
	return cleaned, nil
}

func (s *Store) fetchRecords(ctx context.Context, ids []string) ([]*Record, error) {
	payloads, err := s.cmd.HMGet(ctx, s.dataKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	records := make([]*Record, 0, len(payloads))
	for _, raw := range payloads {
		payload, ok := raw.(string)
		if !ok {
			continue
		}
		record, err := decodeRecord(payload)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeRecord(payload string) (*Record, error) {
	var record Record
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &record, nil
}
