package audit_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"docket/internal/audit"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  audit.Status
		ok    bool
	}{
		{"pending", audit.StatusPending, true},
		{"APPROVED", audit.StatusApproved, true},
		{"  rejected  ", audit.StatusRejected, true},
		{"", "", false},
		{"escalated", "", false},
	}
	for _, tc := range cases {
		got, ok := audit.ParseStatus(tc.input)
		require.Equal(t, tc.ok, ok, "input %q", tc.input)
		if ok {
			require.Equal(t, tc.want, got)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	require.True(t, audit.StatusApproved.IsTerminal())
	require.True(t, audit.StatusRejected.IsTerminal())
	require.False(t, audit.StatusPending.IsTerminal())
	require.False(t, audit.Status("escalated").IsTerminal())
}

func TestRecordWireShape(t *testing.T) {
	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	record := audit.Record{
		MemoryID:      "m1",
		UserQuery:     "q",
		AgentResponse: "a",
		Status:        audit.StatusPending,
		CreatedAt:     created,
	}

	payload, err := json.Marshal(record)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))
	require.Equal(t, "m1", fields["memory_id"])
	require.Equal(t, "q", fields["user_query"])
	require.Equal(t, "a", fields["agent_response"])
	require.Equal(t, "pending", fields["status"])
	// Optional annotations serialize as explicit nulls.
	require.Contains(t, fields, "ia_audit_reason")
	require.Nil(t, fields["ia_audit_reason"])
	require.Contains(t, fields, "ia_audit_confidence")
	require.Nil(t, fields["ia_audit_confidence"])
	// reviewed_at only appears post-review.
	require.NotContains(t, fields, "reviewed_at")
}
