package authz

import (
	"time"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/policy"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

// Status is the outcome of an authorization call.
type Status string

const (
	StatusAuthorized           Status = "AUTHORIZED"
	StatusDenied               Status = "DENIED"
	StatusVerificationRequired Status = "VERIFICATION_REQUIRED"
)

// Reasons used by the orchestrator.
const (
	ReasonInvalidParameters = "Invalid parameters"
	ReasonAuthorized        = "All authorization checks passed"
	ReasonVerification      = "Additional verification required"
)

// Result is the outcome of Authorize. Build one with Authorized, Denied or
// RequiresAdditionalVerification.
type Result struct {
	Status        Status                 `json:"status" yaml:"status"`
	Reason        string                 `json:"reason" yaml:"reason"`
	Code          string                 `json:"code,omitempty" yaml:"code,omitempty"`
	Verifications []risk.Verification    `json:"verifications,omitempty" yaml:"verifications,omitempty"`
	Assessment    *risk.Assessment       `json:"assessment,omitempty" yaml:"assessment,omitempty"`
	Decision      *policy.PolicyDecision `json:"policy_decision,omitempty" yaml:"policy_decision,omitempty"`
	RequestID     string                 `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Duration      time.Duration          `json:"duration" yaml:"duration"`
}

// Authorized returns a granted result.
func Authorized(reason string) Result {
	if reason == "" {
		reason = ReasonAuthorized
	}
	return Result{Status: StatusAuthorized, Reason: reason}
}

// Denied returns a refused result with an error code.
func Denied(code, reason string) Result {
	return Result{Status: StatusDenied, Reason: reason, Code: code}
}

// RequiresAdditionalVerification returns a result that is not granted until
// the listed verifications succeed.
func RequiresAdditionalVerification(verifications []risk.Verification) Result {
	return Result{
		Status:        StatusVerificationRequired,
		Reason:        ReasonVerification,
		Code:          ErrCodeVerificationRequired,
		Verifications: append([]risk.Verification(nil), verifications...),
	}
}

// Allowed reports whether access was granted outright.
func (r Result) Allowed() bool { return r.Status == StatusAuthorized }

// Err returns nil for a granted result and an *AuthzError otherwise.
func (r Result) Err() error {
	if r.Allowed() {
		return nil
	}
	e := &AuthzError{Code: r.Code, Message: r.Reason}
	for _, v := range r.Verifications {
		e.Verifications = append(e.Verifications, string(v))
	}
	return e
}

// Request carries everything about one authorization call. User, Operation
// and Resource are required; the rest default as in access.ContextBuilder.
type Request struct {
	User       *access.User
	Operation  *access.Operation
	Resource   *access.Resource
	Network    *access.NetworkContext
	Session    *access.SessionContext
	Device     *access.DeviceContext
	Attributes map[string]any
}
