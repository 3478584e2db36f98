package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/laughtale01/Scratch-sub001/pkg/clierror"
	"github.com/laughtale01/Scratch-sub001/pkg/codec"
	"github.com/laughtale01/Scratch-sub001/pkg/policy"
	"github.com/laughtale01/Scratch-sub001/pkg/timeutil"
)

func newPolicyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "List, validate, bundle and inspect access policies",
	}
	cmd.AddCommand(
		newPolicyListCmd(opts),
		newPolicyValidateCmd(opts),
		newPolicyBundleCmd(opts),
		newPolicyInspectCmd(opts),
	)
	return cmd
}

func newPolicyListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the effective policy set in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			policies, err := effectivePolicies(cfg)
			if err != nil {
				return err
			}
			engine := policy.NewEngine()
			if err := engine.AddPolicies(policies...); err != nil {
				return clierror.PolicyInvalid(cfg.Policies.File, err)
			}
			ordered := engine.Policies()
			return opts.render(cmd, ordered, func(w io.Writer) { writePolicies(w, ordered) })
		},
	}
}

func newPolicyValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a YAML policy document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policies, err := policy.LoadFile(args[0])
			if err != nil {
				return fileError(args[0], err, clierror.PolicyInvalid)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d policies valid\n", args[0], len(policies))
			return nil
		},
	}
}

// bundleSummary describes a written or inspected bundle.
type bundleSummary struct {
	Path      string          `json:"path" yaml:"path"`
	Revision  string          `json:"revision" yaml:"revision"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	Digest    string          `json:"sha256" yaml:"sha256"`
	Size      int             `json:"size" yaml:"size"`
	Policies  []policy.Policy `json:"policies" yaml:"policies"`
}

func summarize(path string, b policy.Bundle, data []byte) bundleSummary {
	created, _ := b.CreatedAt()
	return bundleSummary{
		Path:      path,
		Revision:  b.Revision,
		CreatedAt: created.UTC(),
		Digest:    policy.Digest(data),
		Size:      len(data),
		Policies:  b.Policies,
	}
}

func writeBundleSummary(w io.Writer, s bundleSummary) {
	fmt.Fprintf(w, "BUNDLE\t%s\n", s.Path)
	fmt.Fprintf(w, "REVISION\t%s\n", s.Revision)
	fmt.Fprintf(w, "CREATED\t%s (%s)\n", s.CreatedAt.Format(time.RFC3339), timeutil.Relative(s.CreatedAt, time.Now()))
	fmt.Fprintf(w, "SHA256\t%s\n", s.Digest)
	fmt.Fprintf(w, "SIZE\t%d bytes\n", s.Size)
	fmt.Fprintf(w, "POLICIES\t%d\n", len(s.Policies))
}

func newPolicyBundleCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "bundle [file]",
		Short: "Encode policies as a deterministic CBOR bundle",
		Long: `Encode a policy document (or, without an argument, the effective
policy set from config) as a versioned CBOR bundle for distribution.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var policies []policy.Policy
			if len(args) == 1 {
				ps, err := policy.LoadFile(args[0])
				if err != nil {
					return fileError(args[0], err, clierror.PolicyInvalid)
				}
				policies = ps
			} else {
				cfg, err := opts.loadConfig()
				if err != nil {
					return err
				}
				if policies, err = effectivePolicies(cfg); err != nil {
					return err
				}
			}

			b := policy.NewBundle(policies, time.Now())
			data, err := policy.EncodeBundle(b)
			if err != nil {
				return clierror.InternalError(err)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return clierror.InternalError(err)
			}
			s := summarize(out, b, data)
			return opts.render(cmd, s, func(w io.Writer) { writeBundleSummary(w, s) })
		},
	}
	cmd.Flags().StringVar(&out, "out", "policies.cbor", "Bundle output path")
	return cmd
}

func newPolicyInspectCmd(opts *rootOptions) *cobra.Command {
	var diag bool
	cmd := &cobra.Command{
		Use:   "inspect <bundle>",
		Short: "Decode and verify a policy bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fileError(args[0], err, clierror.PolicyInvalid)
			}
			if diag {
				text, err := codec.Diagnose(data)
				if err != nil {
					return clierror.PolicyInvalid(args[0], err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			b, err := policy.DecodeBundle(data)
			if err != nil {
				return clierror.PolicyInvalid(args[0], err)
			}
			s := summarize(args[0], b, data)
			return opts.render(cmd, s, func(w io.Writer) {
				writeBundleSummary(w, s)
				fmt.Fprintln(w)
				writePolicies(w, s.Policies)
			})
		},
	}
	cmd.Flags().BoolVar(&diag, "diag", false, "Print CBOR diagnostic notation instead")
	return cmd
}
