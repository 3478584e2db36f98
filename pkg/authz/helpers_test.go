package authz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/audit"
	"github.com/laughtale01/Scratch-sub001/pkg/policy"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

var (
	businessHours = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	night         = time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fullAuthorizer wires risk and policy engines with the default policy set.
func fullAuthorizer(t *testing.T, at time.Time, rec *audit.Recorder, opts ...Option) (*Authorizer, *risk.Engine, *policy.Engine) {
	t.Helper()
	re, err := risk.NewEngine(risk.WithTrustedDevices("lab-01"), risk.WithClock(fixedClock(at)))
	require.NoError(t, err)
	pe := policy.NewEngine()
	require.NoError(t, pe.AddPolicies(policy.DefaultPolicies()...))

	base := []Option{
		WithRiskEngine(re),
		WithPolicyEngine(pe),
		WithAuditLogger(rec),
		WithEventEmitter(rec),
		WithClock(fixedClock(at)),
	}
	return NewAuthorizer(append(base, opts...)...), re, pe
}

// benignRequest is a student looking around a world from the lab.
func benignRequest(username, sessionID string) Request {
	return Request{
		User:      access.NewUser(username, access.RoleStudent, businessHours),
		Operation: access.NewOperation("look", access.CategoryBasic, access.RoleStudent),
		Resource:  access.NewResource("lobby", "world", access.RoleStudent),
		Network:   &access.NetworkContext{IP: "192.168.1.20", ClientID: "c-1", Internal: true, Encrypted: true},
		Session:   &access.SessionContext{SessionID: sessionID, SessionStart: businessHours.Add(-30 * time.Minute)},
		Device:    &access.DeviceContext{DeviceID: "lab-01", DeviceType: access.DeviceChromebook},
	}
}

type panicLogger struct{}

func (panicLogger) LogAccessAttempt(context.Context, audit.Entry) error { panic("sink exploded") }

type failingLogger struct{}

func (failingLogger) LogAccessAttempt(context.Context, audit.Entry) error {
	return errors.New("disk full")
}

type countingMetrics struct {
	decisions map[Status]int
	risks     int
	revoked   int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{decisions: map[Status]int{}}
}

func (m *countingMetrics) ObserveDecision(s Status, _ time.Duration) { m.decisions[s]++ }
func (m *countingMetrics) ObserveRisk(float64, risk.Level)           { m.risks++ }
func (m *countingMetrics) SessionRevoked()                           { m.revoked++ }
