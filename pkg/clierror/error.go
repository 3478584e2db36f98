package clierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Exit codes for ztctl.
const (
	ExitSuccess              = 0 // Operation completed successfully
	ExitGeneral              = 1 // Unknown/unhandled error
	ExitUsage                = 2 // Bad flags, arguments or input files
	ExitDenied               = 3 // Authorization decision was DENIED
	ExitVerificationRequired = 4 // Authorization needs additional verification
)

// Error codes (strings) for programmatic error handling
const (
	CodeInvalidArgument      = "INVALID_ARGUMENT"
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodePolicyInvalid        = "POLICY_INVALID"
	CodeFileNotFound         = "FILE_NOT_FOUND"
	CodeAccessDenied         = "ACCESS_DENIED"
	CodeVerificationRequired = "VERIFICATION_REQUIRED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// CLIError represents a structured error for CLI output.
type CLIError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Hint     string `json:"hint,omitempty"`
	ExitCode int    `json:"-"` // Not serialized, used for os.Exit
	cause    error
}

// New returns a CLIError wrapping cause.
func New(exitCode int, code, message string, cause error) *CLIError {
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return &CLIError{Code: code, Message: message, ExitCode: exitCode, cause: cause}
}

// WithHint sets the remediation hint.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *CLIError) Unwrap() error {
	return e.cause
}

// InvalidArgument creates an error for a malformed flag or argument.
func InvalidArgument(what string, err error) *CLIError {
	return New(ExitUsage, CodeInvalidArgument, fmt.Sprintf("invalid %s", what), err).
		WithHint("Run with --help to see accepted values")
}

// ConfigInvalid creates an error for an unreadable or invalid config file.
func ConfigInvalid(path string, err error) *CLIError {
	return New(ExitUsage, CodeConfigInvalid, fmt.Sprintf("config '%s' is invalid", path), err).
		WithHint("Check the file against the documented config layout")
}

// PolicyInvalid creates an error for a policy file that fails validation.
func PolicyInvalid(path string, err error) *CLIError {
	return New(ExitUsage, CodePolicyInvalid, fmt.Sprintf("policy file '%s' is invalid", path), err).
		WithHint("Run 'ztctl policy validate' for details")
}

// FileNotFound creates an error when an input file doesn't exist.
func FileNotFound(path string) *CLIError {
	return &CLIError{
		Code:     CodeFileNotFound,
		Message:  fmt.Sprintf("file '%s' not found", path),
		Hint:     "Check the path and working directory",
		ExitCode: ExitUsage,
	}
}

// AccessDenied creates an error for a DENIED authorization result.
func AccessDenied(reason string) *CLIError {
	return &CLIError{
		Code:     CodeAccessDenied,
		Message:  fmt.Sprintf("access denied: %s", reason),
		ExitCode: ExitDenied,
	}
}

// VerificationRequired creates an error for a result that needs extra
// verification steps.
func VerificationRequired(steps []string) *CLIError {
	return &CLIError{
		Code:     CodeVerificationRequired,
		Message:  "additional verification required",
		Hint:     "Complete: " + strings.Join(steps, ", "),
		ExitCode: ExitVerificationRequired,
	}
}

// InternalError creates an error for unexpected internal errors.
func InternalError(err error) *CLIError {
	msg := "an unexpected internal error occurred"
	if err != nil {
		msg = fmt.Sprintf("internal error: %s", err.Error())
	}
	return &CLIError{
		Code:     CodeInternalError,
		Message:  msg,
		ExitCode: ExitGeneral,
		cause:    err,
	}
}

// From converts any error into a CLIError, keeping an existing one intact.
func From(err error) *CLIError {
	var ce *CLIError
	if errors.As(err, &ce) {
		return ce
	}
	return InternalError(err)
}

// ExitCode returns the process exit code for err; nil maps to ExitSuccess.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return From(err).ExitCode
}

// FormatError returns the error formatted for the given output format.
// Supported formats: "json" for JSON output, anything else for human-readable table format.
func FormatError(err *CLIError, outputFormat string) string {
	if outputFormat == "json" {
		data, jsonErr := json.MarshalIndent(err, "", "  ")
		if jsonErr != nil {
			return fmt.Sprintf(`{"code":"%s","message":"%s"}`, err.Code, err.Message)
		}
		return string(data)
	}

	output := fmt.Sprintf("Error [%s]: %s", err.Code, err.Message)
	if err.Hint != "" {
		output += fmt.Sprintf("\nHint: %s", err.Hint)
	}
	return output
}

// PrintError prints the error to w (stderr when nil) in the appropriate
// format.
func PrintError(w io.Writer, err *CLIError, outputFormat string) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintln(w, FormatError(err, outputFormat))
}
