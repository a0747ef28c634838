package audit

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an audit record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var allStatuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status is a review disposition. Only terminal
// statuses are accepted by UpdateStatus; a record never returns to pending.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Submission carries the caller-supplied fields of a memory entering review.
// The optional fields come from an automated pre-screening pass.
type Submission struct {
	MemoryID        string
	UserQuery       string
	AgentResponse   string
	AuditReason     *string
	AuditConfidence *float64
}

// Record is the full audit record persisted in the data hash. The JSON field
// names are the wire contract shared with other consumers of the keyspace.
type Record struct {
	MemoryID        string     `json:"memory_id"`
	UserQuery       string     `json:"user_query"`
	AgentResponse   string     `json:"agent_response"`
	AuditReason     *string    `json:"ia_audit_reason"`
	AuditConfidence *float64   `json:"ia_audit_confidence"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

// Metrics aggregates queue counts. Total counts every tracked record; ids
// carrying a status outside the known set contribute to Total only.
type Metrics struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
