// Package cli provides test helpers for the ztctl cobra commands.
//
// Commands must write through cmd.OutOrStdout and cmd.ErrOrStderr so output
// can be captured:
//
//	result := cli.Run(cmd.NewRootCmd(), "authorize", "-u", "alice", ...)
//	result.AssertExitCode(t, clierror.ExitDenied)
//	result.AssertContains(t, "Insufficient role")
//
// WriteFile creates fixture files (configs, policy documents, request files)
// in a per-test temporary directory:
//
//	path := cli.WriteFile(t, "policies.yaml", doc)
package cli
