package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/laughtale01/Scratch-sub001/pkg/authz"
	"github.com/laughtale01/Scratch-sub001/pkg/clierror"
)

func newAuthorizeCmd(opts *rootOptions) *cobra.Command {
	spec := defaultRequestSpec()
	var at string

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Run the full authorization pipeline for one request",
		Long: `Run role checks, resource policies, risk assessment and policy
evaluation for a single request and print the result.

Exit status is 0 when authorized, 3 when denied and 4 when additional
verification is required.`,
		Example: `  ztctl authorize -u alice --operation look --resource lobby --resource-type world \
    --ip 192.168.1.20 --internal --encrypted --session-age 30m --device-type chromebook`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clock, now, err := parseAt(at)
			if err != nil {
				return err
			}
			req, err := spec.build(now)
			if err != nil {
				return err
			}
			rt, err := opts.newRuntime(cmd, clock)
			if err != nil {
				return err
			}
			defer rt.close(opts.metricsFile)

			for i := 0; i < spec.FailedAttempts; i++ {
				rt.risk.RecordAuthenticationFailure(spec.User)
			}
			res := rt.authz.Authorize(cmd.Context(), req)

			if err := opts.render(cmd, res, func(w io.Writer) { writeResult(w, res) }); err != nil {
				return err
			}
			return resultError(res)
		},
	}
	spec.addFlags(cmd)
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this RFC 3339 instant instead of now")
	return cmd
}

// resultError maps a non-granted result onto its exit status.
func resultError(res authz.Result) error {
	switch res.Status {
	case authz.StatusAuthorized:
		return nil
	case authz.StatusVerificationRequired:
		steps := make([]string, len(res.Verifications))
		for i, v := range res.Verifications {
			steps[i] = string(v)
		}
		return clierror.VerificationRequired(steps)
	default:
		return clierror.AccessDenied(res.Reason)
	}
}
