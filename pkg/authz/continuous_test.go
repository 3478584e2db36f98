package authz

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laughtale01/Scratch-sub001/pkg/audit"
	"github.com/laughtale01/Scratch-sub001/pkg/policy"
)

func TestContinuousVerification_RevokesDeniedSession(t *testing.T) {
	t.Parallel()

	rec := &audit.Recorder{}
	m := newCountingMetrics()
	az, _, pe := fullAuthorizer(t, businessHours, rec, WithMetrics(m))

	require.True(t, az.Authorize(context.Background(), benignRequest("alice", "s-1")).Allowed())
	require.True(t, az.IsSessionActive("s-1"))

	t.Log("An administrator locks the platform down")
	require.NoError(t, pe.AddPolicy(policy.Policy{
		Name:      "lockdown",
		Condition: policy.Always(),
		Decision:  policy.Deny,
		Reason:    "Platform locked down",
		Priority:  policy.HardDenyPriority,
	}))

	report := az.PerformContinuousVerification(context.Background())

	t.Logf("report=%+v", report)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 0, report.Reverified)
	assert.Equal(t, []string{"s-1"}, report.Revoked)
	assert.False(t, az.IsSessionActive("s-1"))
	assert.Equal(t, 1, m.revoked)

	revoked := rec.EventsOfType(audit.EventSessionRevoked)
	require.Len(t, revoked, 1)
	assert.Equal(t, "alice", revoked[0].ActorID)
	assert.Equal(t, "Platform locked down", revoked[0].Details["reason"])

	runs := rec.EventsOfType(audit.EventVerificationRun)
	require.Len(t, runs, 1)
	assert.Equal(t, "1", runs[0].Details["revoked"])

	t.Log("Lifting the lockdown does not resurrect the session")
	pe.RemovePolicy("lockdown")
	res := az.Authorize(context.Background(), benignRequest("alice", "s-1"))
	assert.Equal(t, ErrCodeSessionRevoked, res.Code)
	assert.ErrorIs(t, res.Err(), ErrSessionRevoked)
	assert.True(t, az.Authorize(context.Background(), benignRequest("alice", "s-5")).Allowed())
}

func TestContinuousVerification_KeepsHealthySessions(t *testing.T) {
	t.Parallel()

	rec := &audit.Recorder{}
	az, _, _ := fullAuthorizer(t, businessHours, rec)
	require.True(t, az.Authorize(context.Background(), benignRequest("bob", "s-1")).Allowed())
	require.True(t, az.Authorize(context.Background(), benignRequest("bob", "s-2")).Allowed())

	report := az.PerformContinuousVerification(context.Background())

	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 2, report.Reverified)
	assert.Empty(t, report.Revoked)
	assert.True(t, az.IsSessionActive("s-1"))
	assert.Empty(t, rec.EventsOfType(audit.EventSessionRevoked))
	assert.Len(t, rec.EventsOfType(audit.EventVerificationRun), 1)
}

func TestContinuousVerification_SkipsYoungSessions(t *testing.T) {
	t.Parallel()

	az, _, _ := fullAuthorizer(t, businessHours, &audit.Recorder{}, WithMaxSessionAge(time.Hour))
	require.True(t, az.Authorize(context.Background(), benignRequest("carol", "s-1")).Allowed())

	report := az.PerformContinuousVerification(context.Background())
	assert.Zero(t, report.Checked, "session is 30 minutes old")
}

func TestRevokeSession(t *testing.T) {
	t.Parallel()

	rec := &audit.Recorder{}
	az, _, _ := fullAuthorizer(t, businessHours, rec)
	require.True(t, az.Authorize(context.Background(), benignRequest("dave", "s-1")).Allowed())

	assert.True(t, az.RevokeSession("s-1", "device reported stolen"))
	assert.False(t, az.RevokeSession("s-1", "again"), "already revoked")
	assert.Len(t, rec.EventsOfType(audit.EventSessionRevoked), 1)

	t.Log("Revoking an unseen session blocks it pre-emptively")
	assert.False(t, az.RevokeSession("s-9", "leaked token"))
	res := az.Authorize(context.Background(), benignRequest("dave", "s-9"))
	assert.Equal(t, ErrCodeSessionRevoked, res.Code)
}

func TestRunContinuousVerification_StopsOnCancel(t *testing.T) {
	t.Parallel()

	rec := &audit.Recorder{}
	az, _, _ := fullAuthorizer(t, businessHours, rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		az.RunContinuousVerification(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(rec.EventsOfType(audit.EventVerificationRun)) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunContinuousVerification did not return after cancel")
	}
}

func TestRevokeSession_NotLostToConcurrentGrant(t *testing.T) {
	t.Parallel()

	az, _, _ := fullAuthorizer(t, businessHours, &audit.Recorder{})

	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("s-%d", i)
		require.True(t, az.Authorize(context.Background(), benignRequest("alice", id)).Allowed())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			az.Authorize(context.Background(), benignRequest("alice", id))
		}()
		go func() {
			defer wg.Done()
			az.RevokeSession(id, "teacher ended the class")
		}()
		wg.Wait()

		require.False(t, az.IsSessionActive(id), "session %s survived revocation", id)
		assert.Equal(t, StatusDenied, az.Authorize(context.Background(), benignRequest("alice", id)).Status)
	}
}
