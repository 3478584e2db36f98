package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/clierror"
	"github.com/laughtale01/Scratch-sub001/pkg/policy"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

// assessOutput is the json/yaml shape of the assess command.
type assessOutput struct {
	Assessment risk.Assessment       `json:"assessment" yaml:"assessment"`
	Weights    risk.Weights          `json:"weights" yaml:"weights"`
	Policy     policy.PolicyDecision `json:"policy_decision" yaml:"policy_decision"`
}

func newAssessCmd(opts *rootOptions) *cobra.Command {
	spec := defaultRequestSpec()
	var at string

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Show the risk breakdown and policy decision for one request",
		Long: `Compute the six risk factors, the weighted score and tier, the
required verifications and the combined policy decision for a request.
Role checks and resource policies are not applied.`,
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

			b := access.NewContextBuilder().
				User(req.User).
				Operation(req.Operation).
				Resource(req.Resource).
				Network(*req.Network).
				Time(access.NewTimeContext(now))
			if req.Session != nil {
				b.Session(*req.Session)
			}
			if req.Device != nil {
				b.Device(*req.Device)
			}
			actx, err := b.Build()
			if err != nil {
				return clierror.InvalidArgument("request", err)
			}

			for i := 0; i < spec.FailedAttempts; i++ {
				rt.risk.RecordAuthenticationFailure(spec.User)
			}
			out := assessOutput{Weights: rt.risk.Weights()}
			out.Assessment = rt.risk.Assess(actx)
			out.Policy = rt.policies.Evaluate(actx, out.Assessment)

			return opts.render(cmd, out, func(w io.Writer) {
				writeAssessment(w, out.Assessment, out.Weights)
				writePolicyDecision(w, out.Policy)
			})
		},
	}
	spec.addFlags(cmd)
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this RFC 3339 instant instead of now")
	return cmd
}
