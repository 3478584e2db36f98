package authz

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/audit"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

// ReasonSessionRevoked is the denial reason for requests on a revoked session.
const ReasonSessionRevoked = "Session has been revoked"

// trackedSession is the last granted request on a session.
type trackedSession struct {
	req     Request
	revoked atomic.Bool
}

// VerificationReport summarizes one continuous-verification pass.
type VerificationReport struct {
	Checked    int       `json:"checked" yaml:"checked"`
	Reverified int       `json:"reverified" yaml:"reverified"`
	Revoked    []string  `json:"revoked,omitempty" yaml:"revoked,omitempty"`
	RanAt      time.Time `json:"ran_at" yaml:"ran_at"`
}

func (a *Authorizer) trackSession(req Request, actx *access.Context) {
	s := actx.Session()
	u, op, res := *req.User, *req.Operation, *req.Resource
	req.User, req.Operation, req.Resource = &u, &op, &res
	req.Session = &s
	next := &trackedSession{req: req}

	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	if prev, ok := a.sessions.Load(s.SessionID); ok && prev.(*trackedSession).revoked.Load() {
		return
	}
	a.sessions.Store(s.SessionID, next)
}

// IsSessionActive reports whether id is tracked and not revoked.
func (a *Authorizer) IsSessionActive(id string) bool {
	v, ok := a.sessions.Load(id)
	return ok && !v.(*trackedSession).revoked.Load()
}

// RevokeSession marks a session revoked. Later requests on it are denied.
// It reports whether the session was active.
func (a *Authorizer) RevokeSession(id, reason string) bool {
	a.verifyMu.Lock()
	defer a.verifyMu.Unlock()
	return a.revokeLocked(id, reason)
}

func (a *Authorizer) revokeLocked(id, reason string) bool {
	tomb := &trackedSession{}
	tomb.revoked.Store(true)

	a.sessionMu.Lock()
	v, loaded := a.sessions.LoadOrStore(id, tomb)
	ts := v.(*trackedSession)
	flipped := loaded && ts.revoked.CompareAndSwap(false, true)
	a.sessionMu.Unlock()
	if !flipped {
		return false
	}

	var username string
	if ts.req.User != nil {
		username = ts.req.User.Username
	}
	a.metrics.SessionRevoked()
	a.logger.Warn("session revoked", "session_id", id, "principal", username, "reason", reason)
	a.emit(audit.NewSessionRevoked(a.now(), username, id, reason))
	return true
}

func (a *Authorizer) sessionRevoked(id string) bool {
	if id == "" {
		return false
	}
	v, ok := a.sessions.Load(id)
	return ok && v.(*trackedSession).revoked.Load()
}

// PerformContinuousVerification re-assesses every active session older than
// the configured maximum age and revokes those that would now be denied or
// whose risk is CRITICAL. One verification.run event is emitted per call.
// Concurrent calls are serialized.
func (a *Authorizer) PerformContinuousVerification(ctx context.Context) VerificationReport {
	a.verifyMu.Lock()
	defer a.verifyMu.Unlock()

	now := a.now()
	report := VerificationReport{RanAt: now}

	var ids []string
	a.sessions.Range(func(k, v any) bool {
		ts := v.(*trackedSession)
		if !ts.revoked.Load() && ts.req.Session != nil && ts.req.Session.Duration(now) >= a.maxSessionAge {
			ids = append(ids, k.(string))
		}
		return true
	})
	slices.Sort(ids)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		v, _ := a.sessions.Load(id)
		ts := v.(*trackedSession)
		report.Checked++

		if reason, ok := a.reverify(ts.req); ok {
			report.Reverified++
		} else {
			a.revokeLocked(id, reason)
			report.Revoked = append(report.Revoked, id)
		}
	}

	a.logger.Info("continuous verification completed",
		"checked", report.Checked,
		"reverified", report.Reverified,
		"revoked", len(report.Revoked),
	)
	a.emit(audit.NewVerificationRun(now, report.Checked, report.Reverified, len(report.Revoked)))
	return report
}

// reverify re-runs the pipeline for a tracked request. It returns the
// revocation reason when the session should not survive.
func (a *Authorizer) reverify(req Request) (string, bool) {
	res, _ := a.decide(req)
	switch {
	case res.Status == StatusDenied:
		return res.Reason, false
	case res.Assessment != nil && res.Assessment.Level == risk.LevelCritical:
		return fmt.Sprintf("Risk level %s on re-assessment", res.Assessment.Level), false
	}
	return "", true
}

// RunContinuousVerification calls PerformContinuousVerification every
// interval until ctx is done.
func (a *Authorizer) RunContinuousVerification(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.PerformContinuousVerification(ctx)
		}
	}
}

func (a *Authorizer) emit(ev audit.Event) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("audit emit failed", "event", string(ev.Type), "panic", r)
		}
	}()
	if err := a.events.Emit(ev); err != nil {
		a.logger.Error("audit emit failed", "event", string(ev.Type), "error", err)
	}
}
