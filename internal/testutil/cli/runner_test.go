package cli

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/spf13/cobra"

	"github.com/laughtale01/Scratch-sub001/pkg/clierror"
)

func echoCmd() *cobra.Command {
	return &cobra.Command{
		Use: "echo",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && args[0] == "fail" {
				fmt.Fprintln(cmd.ErrOrStderr(), "about to fail")
				return errors.New("failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), args)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func TestRun_CapturesStdout(t *testing.T) {
	t.Parallel()
	t.Log("Running a command that prints its arguments")

	result := Run(echoCmd(), "a", "b")
	result.AssertSuccess(t)
	result.AssertContains(t, "[a b]")
	result.AssertNotContains(t, "fail")
}

func TestRun_CapturesError(t *testing.T) {
	t.Parallel()

	result := Run(echoCmd(), "fail")
	result.AssertError(t)
	result.AssertStderrContains(t, "about to fail")
	if result.Err.Error() != "failed" {
		t.Errorf("Err = %v", result.Err)
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := WriteFile(t, "x.yaml", "k: v\n")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "k: v\n" {
		t.Errorf("content = %q", data)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	t.Parallel()

	ok := Run(echoCmd(), "x")
	ok.AssertExitCode(t, clierror.ExitSuccess)
	ok.AssertErrorCode(t, "")

	t.Log("Plain errors map to the general failure status")
	failed := Run(echoCmd(), "fail")
	failed.AssertExitCode(t, clierror.ExitGeneral)
	failed.AssertErrorCode(t, clierror.CodeInternalError)

	denied := &CommandResult{Err: clierror.AccessDenied("no")}
	denied.AssertExitCode(t, clierror.ExitDenied)
	denied.AssertErrorCode(t, clierror.CodeAccessDenied)
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	r := &CommandResult{Stdout: `{"status":"AUTHORIZED"}`}
	var out struct {
		Status string `json:"status"`
	}
	r.DecodeJSON(t, &out)
	if out.Status != "AUTHORIZED" {
		t.Errorf("status = %q", out.Status)
	}
}
