// Package authz is the authorization orchestrator for classroom operations.
//
// Every sensitive operation goes through Authorizer.Authorize (or the
// shorthand AuthorizeOperation). Checks run in order and the first failure
// wins:
//
//  1. user, operation and resource must be present and carry known roles
//  2. the user's role rank must reach the operation's required role
//  3. the user's role rank must reach the resource's minimum access role
//  4. a resource policy registered for "type:name" must allow the role
//  5. with a risk engine configured, the request is risk-assessed
//  6. with a policy engine configured, the combined policy decision must
//     not be DENY
//
// A request that passes is Authorized, or RequiresAdditionalVerification when
// the risk assessment demands extra steps. Without risk and policy engines
// only steps 1-4 apply.
//
// # Usage
//
//	engine, _ := risk.NewEngine()
//	policies := policy.NewEngine()
//	_ = policies.AddPolicies(policy.DefaultPolicies()...)
//
//	az := authz.NewAuthorizer(
//		authz.WithRiskEngine(engine),
//		authz.WithPolicyEngine(policies),
//		authz.WithAuditLogger(audit.NewSlogLogger(logger)),
//	)
//
//	res := az.AuthorizeOperation(ctx, user, op, resource)
//	if !res.Allowed() {
//		return res.Err()
//	}
//
// # Auditing
//
// Each call produces exactly one AccessLogger entry and one "authorization
// decision" log line. Audit failures and panics are logged and swallowed.
//
// # Continuous Verification
//
// Granted requests that carry a session id are remembered. A periodic call to
// PerformContinuousVerification (or RunContinuousVerification on a ticker)
// re-runs the pipeline for sessions older than WithMaxSessionAge and revokes
// those now denied or at CRITICAL risk. Requests on a revoked session are
// denied with ErrCodeSessionRevoked.
//
// # Thread Safety
//
// Authorizer is safe for concurrent use.
package authz
