package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/laughtale01/Scratch-sub001/pkg/authz"
	"github.com/laughtale01/Scratch-sub001/pkg/clierror"
	"github.com/laughtale01/Scratch-sub001/pkg/timeutil"
)

// simulationFile is a list of requests replayed in order.
type simulationFile struct {
	Requests []requestSpec `yaml:"requests"`
}

// simulationOutput is the json/yaml shape of the simulate command.
type simulationOutput struct {
	Results      []authz.Result           `json:"results" yaml:"results"`
	Verification authz.VerificationReport `json:"verification" yaml:"verification"`
}

func loadSimulation(path string) ([]requestSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fileError(path, err, clierror.ConfigInvalid)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var sim simulationFile
	if err := dec.Decode(&sim); err != nil && !errors.Is(err, io.EOF) {
		return nil, clierror.InvalidArgument("request file", err)
	}
	specs := make([]requestSpec, len(sim.Requests))
	for i, r := range sim.Requests {
		spec := defaultRequestSpec()
		overlay(&spec, r)
		specs[i] = spec
	}
	return specs, nil
}

// overlay copies the non-zero fields of r onto spec.
func overlay(spec *requestSpec, r requestSpec) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&spec.User, r.User)
	set(&spec.Role, r.Role)
	set(&spec.Operation, r.Operation)
	set(&spec.Category, r.Category)
	set(&spec.RequiredRole, r.RequiredRole)
	set(&spec.Resource, r.Resource)
	set(&spec.ResourceType, r.ResourceType)
	set(&spec.MinRole, r.MinRole)
	set(&spec.IP, r.IP)
	set(&spec.ClientID, r.ClientID)
	set(&spec.SessionID, r.SessionID)
	set(&spec.DeviceID, r.DeviceID)
	set(&spec.DeviceType, r.DeviceType)
	spec.Internal = r.Internal
	spec.Encrypted = r.Encrypted
	spec.SessionAge = r.SessionAge
	spec.FailedAttempts = r.FailedAttempts
}

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	var (
		at    string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "simulate <requests.yaml>",
		Short: "Replay a request file through one authorizer",
		Long: `Replay every request in the file through a single authorizer so
behaviour profiles and sessions accumulate, then run one continuous
verification pass over the granted sessions.

With --watch, verification keeps running every verification.interval until
interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clock, now, err := parseAt(at)
			if err != nil {
				return err
			}
			specs, err := loadSimulation(args[0])
			if err != nil {
				return err
			}
			requests := make([]authz.Request, len(specs))
			for i, s := range specs {
				if requests[i], err = s.build(now); err != nil {
					return fmt.Errorf("request #%d: %w", i+1, err)
				}
			}

			rt, err := opts.newRuntime(cmd, clock)
			if err != nil {
				return err
			}
			defer rt.close(opts.metricsFile)

			var out simulationOutput
			for i, req := range requests {
				for n := 0; n < specs[i].FailedAttempts; n++ {
					rt.risk.RecordAuthenticationFailure(specs[i].User)
				}
				out.Results = append(out.Results, rt.authz.Authorize(cmd.Context(), req))
			}
			out.Verification = rt.authz.PerformContinuousVerification(cmd.Context())

			if err := opts.render(cmd, out, func(w io.Writer) { writeSimulation(w, specs, out) }); err != nil {
				return err
			}

			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				rt.logger.Info("watching sessions", "interval", rt.cfg.Verification.Interval)
				rt.authz.RunContinuousVerification(ctx, rt.cfg.Verification.Interval)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this RFC 3339 instant instead of now")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running continuous verification until interrupted")
	return cmd
}

func writeSimulation(w io.Writer, specs []requestSpec, out simulationOutput) {
	fmt.Fprintln(w, "#\tUSER\tOPERATION\tRESOURCE\tSESSION\tSTATUS\tRISK\tREASON")
	for i, res := range out.Results {
		riskText := dimFmt("-")
		if res.Assessment != nil {
			riskText = fmt.Sprintf("%.2f %s", res.Assessment.Score, levelText(res.Assessment.Level))
		}
		session := dimFmt("-")
		if specs[i].SessionID != "" || specs[i].SessionAge > 0 {
			session = timeutil.Age(specs[i].SessionAge)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s:%s\t%s\t%s\t%s\t%s\n",
			i+1, specs[i].User, specs[i].Operation, specs[i].ResourceType, specs[i].Resource,
			session, statusText(res.Status), riskText, res.Reason)
	}
	fmt.Fprintln(w)
	v := out.Verification
	fmt.Fprintf(w, "VERIFIED\t%d checked, %d reverified, %d revoked\n", v.Checked, v.Reverified, len(v.Revoked))
	if len(v.Revoked) > 0 {
		fmt.Fprintf(w, "REVOKED\t%s\n", listOrDash(v.Revoked))
	}
}
