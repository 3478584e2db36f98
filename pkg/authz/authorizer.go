package authz

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/audit"
	"github.com/laughtale01/Scratch-sub001/pkg/policy"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

// Metrics observes authorization outcomes. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ObserveDecision(status Status, duration time.Duration)
	ObserveRisk(score float64, level risk.Level)
	SessionRevoked()
}

type nopMetrics struct{}

func (nopMetrics) ObserveDecision(Status, time.Duration) {}
func (nopMetrics) ObserveRisk(float64, risk.Level)       {}
func (nopMetrics) SessionRevoked()                       {}

// Authorizer is the orchestrator. All collaborators are injected through
// options; the zero configuration performs role and resource-policy checks
// only.
type Authorizer struct {
	risk     *risk.Engine
	policies *policy.Engine
	audit    audit.AccessLogger
	events   audit.EventEmitter
	logger   *slog.Logger
	metrics  Metrics
	now      func() time.Time

	resourcePolicies sync.Map // "type:name" -> ResourcePolicy

	sessions      sync.Map   // session id -> *trackedSession
	sessionMu     sync.Mutex // orders session tracking against revocation
	maxSessionAge time.Duration
	verifyMu      sync.Mutex // serializes verification passes
}

// Option configures an Authorizer.
type Option func(*Authorizer)

// WithRiskEngine enables risk assessment.
func WithRiskEngine(e *risk.Engine) Option {
	return func(a *Authorizer) { a.risk = e }
}

// WithPolicyEngine enables policy evaluation.
func WithPolicyEngine(e *policy.Engine) Option {
	return func(a *Authorizer) { a.policies = e }
}

// WithAuditLogger sets the access-decision audit sink.
func WithAuditLogger(l audit.AccessLogger) Option {
	return func(a *Authorizer) {
		if l != nil {
			a.audit = l
		}
	}
}

// WithEventEmitter sets the sink for continuous-verification events.
func WithEventEmitter(e audit.EventEmitter) Option {
	return func(a *Authorizer) {
		if e != nil {
			a.events = e
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Authorizer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(a *Authorizer) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithClock sets the time source used to stamp requests.
func WithClock(now func() time.Time) Option {
	return func(a *Authorizer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithMaxSessionAge sets how old a session must be before continuous
// verification re-assesses it. Zero re-assesses every tracked session.
func WithMaxSessionAge(d time.Duration) Option {
	return func(a *Authorizer) { a.maxSessionAge = d }
}

// NewAuthorizer returns an Authorizer.
func NewAuthorizer(opts ...Option) *Authorizer {
	a := &Authorizer{
		audit:   audit.Nop{},
		events:  audit.Nop{},
		logger:  slog.Default(),
		metrics: nopMetrics{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetResourcePolicy registers p, replacing any policy for the same resource.
func (a *Authorizer) SetResourcePolicy(p ResourcePolicy) {
	a.resourcePolicies.Store(p.Key(), p)
}

// RemoveResourcePolicy deregisters the policy for a resource.
func (a *Authorizer) RemoveResourcePolicy(t access.ResourceType, name string) {
	a.resourcePolicies.Delete(access.ResourceKey(t, name))
}

// ResourcePolicyFor returns the policy registered for res.
func (a *Authorizer) ResourcePolicyFor(res *access.Resource) (ResourcePolicy, bool) {
	v, ok := a.resourcePolicies.Load(res.Key())
	if !ok {
		return ResourcePolicy{}, false
	}
	return v.(ResourcePolicy), true
}

// AuthorizeOperation decides whether user may perform op on res with default
// network, session and device contexts.
func (a *Authorizer) AuthorizeOperation(ctx context.Context, user *access.User, op *access.Operation, res *access.Resource) Result {
	return a.Authorize(ctx, Request{User: user, Operation: op, Resource: res})
}

// Authorize runs the full decision pipeline. It never returns an error;
// failures are expressed as denied results.
func (a *Authorizer) Authorize(ctx context.Context, req Request) Result {
	start := time.Now()
	ctx, requestID := EnsureRequestID(ctx)

	var (
		res  Result
		actx *access.Context
	)
	if req.Session != nil && a.sessionRevoked(req.Session.SessionID) {
		res = Denied(ErrCodeSessionRevoked, ReasonSessionRevoked)
	} else {
		res, actx = a.decide(req)
	}
	res.RequestID = requestID
	res.Duration = time.Since(start)

	if res.Status == StatusAuthorized && actx != nil && req.Session != nil && req.Session.SessionID != "" {
		a.trackSession(req, actx)
	}

	a.metrics.ObserveDecision(res.Status, res.Duration)
	if res.Assessment != nil {
		a.metrics.ObserveRisk(res.Assessment.Score, res.Assessment.Level)
	}
	a.logDecision(req, res)
	a.record(ctx, req, res)
	return res
}

// decide runs the checks in order. The access context is returned when one
// was built.
func (a *Authorizer) decide(req Request) (Result, *access.Context) {
	if req.User == nil || req.Operation == nil || req.Resource == nil {
		return Denied(ErrCodeInvalidParameters, ReasonInvalidParameters), nil
	}
	user, op, res := req.User, req.Operation, req.Resource
	if !user.Role.Valid() || !op.RequiredRole.Valid() || !res.MinimumAccessRole.Valid() {
		return Denied(ErrCodeInvalidParameters, ReasonInvalidParameters), nil
	}

	if user.Role.Rank() < op.RequiredRole.Rank() {
		return Denied(ErrCodeInsufficientRole, fmt.Sprintf(
			"Insufficient role: operation %s requires %s, user %s has %s",
			op.Name, op.RequiredRole, user.Username, user.Role)), nil
	}
	if user.Role.Rank() < res.MinimumAccessRole.Rank() {
		return Denied(ErrCodeInsufficientRole, fmt.Sprintf(
			"Insufficient role: resource %s requires %s, user %s has %s",
			res.Key(), res.MinimumAccessRole, user.Username, user.Role)), nil
	}
	if rp, ok := a.ResourcePolicyFor(res); ok && !rp.IsAllowed(user.Role) {
		return Denied(ErrCodeResourcePolicy, fmt.Sprintf(
			"Resource policy for %s does not allow role %s", res.Key(), user.Role)), nil
	}

	if a.risk == nil && a.policies == nil {
		return Authorized(""), nil
	}

	actx, err := a.buildContext(req, a.now())
	if err != nil {
		return Denied(ErrCodeInvalidParameters, ReasonInvalidParameters), nil
	}
	return a.evaluate(actx), actx
}

// evaluate applies risk assessment and policy evaluation to a built context.
func (a *Authorizer) evaluate(actx *access.Context) Result {
	var assessment risk.Assessment
	if a.risk != nil {
		assessment = a.risk.Assess(actx)
	}

	var decision *policy.PolicyDecision
	if a.policies != nil {
		d := a.policies.Evaluate(actx, assessment)
		decision = &d
	}

	var res Result
	switch {
	case decision != nil && decision.Decision != policy.Allow:
		res = Denied(ErrCodePolicyDenied, decision.Reason)
	case assessment.RequiresVerification():
		res = RequiresAdditionalVerification(assessment.Verifications)
	case decision != nil:
		res = Authorized(decision.Reason)
	default:
		res = Authorized("")
	}

	if a.risk != nil {
		res.Assessment = &assessment
	}
	res.Decision = decision
	return res
}

func (a *Authorizer) buildContext(req Request, now time.Time) (*access.Context, error) {
	b := access.NewContextBuilder().
		User(req.User).
		Operation(req.Operation).
		Resource(req.Resource).
		Time(access.NewTimeContext(now))
	if req.Network != nil {
		b.Network(*req.Network)
	}
	if req.Session != nil {
		b.Session(*req.Session)
	}
	if req.Device != nil {
		b.Device(*req.Device)
	}
	for k, v := range req.Attributes {
		b.Attribute(k, v)
	}
	return b.Build()
}

func (a *Authorizer) logDecision(req Request, res Result) {
	attrs := []any{
		"request_id", res.RequestID,
		"decision", string(res.Status),
		"reason", res.Reason,
		"duration_us", res.Duration.Microseconds(),
	}
	if req.User != nil {
		attrs = append(attrs, "principal", req.User.Username, "role", string(req.User.Role))
	}
	if req.Operation != nil {
		attrs = append(attrs, "operation", req.Operation.Name, "category", string(req.Operation.Category))
	}
	if req.Resource != nil {
		attrs = append(attrs, "resource", req.Resource.Key())
	}
	if res.Assessment != nil {
		attrs = append(attrs, "risk_score", res.Assessment.Score, "risk_level", res.Assessment.Level.String())
	}
	if res.Decision != nil {
		attrs = append(attrs, "policy", res.Decision.PolicyName())
	}
	a.logger.Info("authorization decision", attrs...)

	if res.Status == StatusVerificationRequired {
		a.logger.Warn("additional verification required",
			"request_id", res.RequestID,
			"verifications", res.Verifications,
		)
	}
}

// record writes exactly one audit entry. Sink errors and panics are logged
// and never reach the caller.
func (a *Authorizer) record(ctx context.Context, req Request, res Result) {
	entry := auditEntry(req, res, a.now())
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("audit emit failed", "request_id", res.RequestID, "panic", r)
		}
	}()
	if err := a.audit.LogAccessAttempt(ctx, entry); err != nil {
		a.logger.Error("audit emit failed", "request_id", res.RequestID, "error", err)
	}
}

func auditEntry(req Request, res Result, now time.Time) audit.Entry {
	e := audit.Entry{
		Timestamp:  now,
		RequestID:  res.RequestID,
		Granted:    res.Allowed(),
		Reason:     res.Reason,
		DurationUS: res.Duration.Microseconds(),
	}
	switch res.Status {
	case StatusAuthorized:
		e.Decision = audit.OutcomeAllow
	case StatusVerificationRequired:
		e.Decision = audit.OutcomeVerify
	default:
		e.Decision = audit.OutcomeDeny
	}
	if req.User != nil {
		e.Principal = req.User.Username
		e.Role = string(req.User.Role)
	}
	if req.Operation != nil {
		e.Operation = req.Operation.Name
		e.Category = string(req.Operation.Category)
	}
	if req.Resource != nil {
		e.Resource = req.Resource.Key()
		e.ResourceType = string(req.Resource.Type)
	}
	if req.Network != nil {
		e.IP = req.Network.IP
	}
	if req.Session != nil {
		e.SessionID = req.Session.SessionID
	}
	if res.Assessment != nil {
		e.RiskScore = res.Assessment.Score
		e.RiskLevel = res.Assessment.Level.String()
	}
	if res.Decision != nil {
		e.Policy = res.Decision.PolicyName()
	}
	for _, v := range res.Verifications {
		e.Verifications = append(e.Verifications, string(v))
	}
	return e
}
