package authz

import (
	"errors"
	"fmt"
)

// Authorization error codes.
const (
	ErrCodeInvalidParameters    = "authz.invalid_parameters"    // a required argument was missing
	ErrCodeInsufficientRole     = "authz.insufficient_role"     // role rank below requirement
	ErrCodeResourcePolicy       = "authz.resource_policy"       // resource policy rejected the role
	ErrCodePolicyDenied         = "authz.policy_denied"         // policy engine returned DENY
	ErrCodeVerificationRequired = "authz.verification_required" // extra verification needed
	ErrCodeSessionRevoked       = "authz.session_revoked"       // session revoked by continuous verification
)

// AuthzError is a non-granted result expressed as an error.
type AuthzError struct {
	Code          string   // One of the ErrCode* constants
	Message       string   // Human-readable reason
	Verifications []string // Set for ErrCodeVerificationRequired
}

// Error implements the error interface.
func (e *AuthzError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches another AuthzError with the same code.
func (e *AuthzError) Is(target error) bool {
	t, ok := target.(*AuthzError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrInvalidParameters    = &AuthzError{Code: ErrCodeInvalidParameters}
	ErrInsufficientRole     = &AuthzError{Code: ErrCodeInsufficientRole}
	ErrResourcePolicy       = &AuthzError{Code: ErrCodeResourcePolicy}
	ErrPolicyDenied         = &AuthzError{Code: ErrCodePolicyDenied}
	ErrVerificationRequired = &AuthzError{Code: ErrCodeVerificationRequired}
	ErrSessionRevoked       = &AuthzError{Code: ErrCodeSessionRevoked}
)

// ErrorCode extracts the authz code from err, or "" if err is not an
// AuthzError.
func ErrorCode(err error) string {
	var ae *AuthzError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// IsAuthzError reports whether err is or wraps an AuthzError.
func IsAuthzError(err error) bool {
	var ae *AuthzError
	return errors.As(err, &ae)
}
