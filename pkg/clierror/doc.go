// Package clierror provides structured error handling for CLI commands.
//
// CLI errors include an exit code, user-facing message, and optional
// troubleshooting hints. This separates internal error details from
// what gets displayed to operators.
//
// # Usage
//
//	if err != nil {
//	    return clierror.New(clierror.ExitUsage, clierror.CodeInvalidArgument, "unknown role", err).
//	        WithHint("Valid roles are STUDENT, TEACHER and ADMIN")
//	}
package clierror
