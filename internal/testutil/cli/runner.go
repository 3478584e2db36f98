package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/laughtale01/Scratch-sub001/pkg/clierror"
)

// CommandResult is the captured outcome of one command execution.
type CommandResult struct {
	Stdout string
	Stderr string
	Err    error
}

// Run executes cmd with args, capturing both output streams.
func Run(cmd *cobra.Command, args ...string) *CommandResult {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return &CommandResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// ExitCode is the process status the error maps to.
func (r *CommandResult) ExitCode() int {
	return clierror.ExitCode(r.Err)
}

// ErrorCode is the CLI error code, or "" on success.
func (r *CommandResult) ErrorCode() string {
	if r.Err == nil {
		return ""
	}
	return clierror.From(r.Err).Code
}

// AssertSuccess fails the test unless the command exited cleanly.
func (r *CommandResult) AssertSuccess(t *testing.T) {
	t.Helper()
	if r.Err != nil {
		t.Fatalf("command failed: %v\nstdout:\n%s\nstderr:\n%s", r.Err, r.Stdout, r.Stderr)
	}
}

// AssertError fails the test if the command succeeded.
func (r *CommandResult) AssertError(t *testing.T) {
	t.Helper()
	if r.Err == nil {
		t.Fatalf("command succeeded, want failure\nstdout:\n%s", r.Stdout)
	}
}

// AssertExitCode fails the test unless the command maps to exit status want.
func (r *CommandResult) AssertExitCode(t *testing.T, want int) {
	t.Helper()
	if got := r.ExitCode(); got != want {
		t.Errorf("exit code = %d, want %d (err: %v)", got, want, r.Err)
	}
}

// AssertErrorCode fails the test unless the command failed with CLI error
// code want.
func (r *CommandResult) AssertErrorCode(t *testing.T, want string) {
	t.Helper()
	if got := r.ErrorCode(); got != want {
		t.Errorf("error code = %q, want %q (err: %v)", got, want, r.Err)
	}
}

// AssertContains fails the test unless stdout contains want.
func (r *CommandResult) AssertContains(t *testing.T, want string) {
	t.Helper()
	if !strings.Contains(r.Stdout, want) {
		t.Errorf("stdout missing %q:\n%s", want, r.Stdout)
	}
}

// AssertNotContains fails the test if stdout contains unwanted.
func (r *CommandResult) AssertNotContains(t *testing.T, unwanted string) {
	t.Helper()
	if strings.Contains(r.Stdout, unwanted) {
		t.Errorf("stdout unexpectedly contains %q:\n%s", unwanted, r.Stdout)
	}
}

// AssertStderrContains fails the test unless stderr contains want.
func (r *CommandResult) AssertStderrContains(t *testing.T, want string) {
	t.Helper()
	if !strings.Contains(r.Stderr, want) {
		t.Errorf("stderr missing %q:\n%s", want, r.Stderr)
	}
}

// DecodeJSON unmarshals stdout into v, failing the test on malformed output.
func (r *CommandResult) DecodeJSON(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(r.Stdout), v); err != nil {
		t.Fatalf("stdout is not valid JSON: %v\n%s", err, r.Stdout)
	}
}

// WriteFile writes content to name inside a fresh temp directory and returns
// the full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
