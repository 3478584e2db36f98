package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeverityFor(t *testing.T) {
	t.Parallel()

	for _, et := range AllEventTypes() {
		_, ok := severityMap[et]
		assert.True(t, ok, "event %s has no severity", et)
	}
	assert.Equal(t, SeverityWarning, SeverityFor(EventAccessDenied))
	assert.Equal(t, SeverityInfo, SeverityFor(EventAccessGranted))
	assert.Equal(t, SeverityWarning, SeverityFor("made.up"), "unknown types fail secure")
}

func TestSeverityString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "INFO", SeverityInfo.String())
	assert.Equal(t, "EMERGENCY", SeverityEmergency.String())
	assert.Equal(t, "UNKNOWN", Severity(12).String())
	assert.Equal(t, "UNKNOWN", Severity(-1).String())
}

func TestEventFromEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		decision string
		want     EventType
	}{
		{OutcomeAllow, EventAccessGranted},
		{OutcomeDeny, EventAccessDenied},
		{OutcomeVerify, EventVerificationRequired},
		{"", EventAccessDenied},
	}
	for _, tt := range tests {
		e := sampleEntry(tt.decision == OutcomeAllow)
		e.Decision = tt.decision
		e.IP = "10.0.0.1"
		e.Verifications = []string{"A", "B"}

		ev := EventFromEntry(e)
		assert.Equal(t, tt.want, ev.Type, tt.decision)
		assert.Equal(t, "alice", ev.ActorID)
		assert.Equal(t, "10.0.0.1", ev.IP)
		assert.Equal(t, "req-1", ev.RequestID)
		assert.Equal(t, "A,B", ev.Details["verifications"])
		assert.NotEmpty(t, ev.ID)
	}
}

func TestConstructors(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	revoked := NewSessionRevoked(at, "carol", "s-1", "denied")
	assert.Equal(t, EventSessionRevoked, revoked.Type)
	assert.Equal(t, SeverityWarning, revoked.Severity)
	assert.Equal(t, "s-1", revoked.Details["session_id"])
	assert.Equal(t, at, revoked.Timestamp)

	run := NewVerificationRun(at, 5, 3, 2)
	assert.Equal(t, "system", run.ActorID)
	assert.Equal(t, map[string]string{"checked": "5", "reverified": "3", "revoked": "2"}, run.Details)

	assert.Less(t, revoked.ID, run.ID, "ids are sortable")
}
