// Package cmd implements the ztctl CLI commands.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/laughtale01/Scratch-sub001/internal/version"
	"github.com/laughtale01/Scratch-sub001/pkg/clierror"
)

// rootOptions holds the global flags.
type rootOptions struct {
	configPath  string
	output      string
	metricsFile string
	noColor     bool
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "ztctl",
		Short: "Zero-trust authorization console for classroom operations",
		Long: `ztctl runs the classroom authorization pipeline from the command line.

It evaluates single requests (authorize, assess), replays request files
(simulate) and validates, bundles and inspects policy documents (policy).`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case "table", "json", "yaml":
			default:
				return clierror.InvalidArgument("output format",
					fmt.Errorf("%q is not one of table, json, yaml", opts.output))
			}
			if opts.noColor {
				color.NoColor = true
			}
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierror.InvalidArgument("flag", err)
	})

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: $ZTCTL_CONFIG, else built-in defaults)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format: table, json, yaml")
	root.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable coloured output")

	root.AddCommand(
		newAuthorizeCmd(opts),
		newAssessCmd(opts),
		newSimulateCmd(opts),
		newPolicyCmd(opts),
		newVersionCmd(opts),
		newCompletionCmd(root),
	)
	return root
}

// Execute runs ztctl and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		return clierror.ExitSuccess
	}
	ce := clierror.From(err)
	format, _ := root.PersistentFlags().GetString("output")
	clierror.PrintError(root.ErrOrStderr(), ce, format)
	return ce.ExitCode
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for ztctl.

Bash:
  source <(ztctl completion bash)

Zsh:
  ztctl completion zsh > "${fpath[1]}/_ztctl"

Fish:
  ztctl completion fish > ~/.config/fish/completions/ztctl.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// render writes data as JSON or YAML, or calls table for the table format.
func (o *rootOptions) render(cmd *cobra.Command, data any, table func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	switch o.output {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		table(w)
		return w.Flush()
	}
}

// fileError maps a file load failure onto a CLI error.
func fileError(path string, err error, wrap func(string, error) *clierror.CLIError) error {
	if errors.Is(err, fs.ErrNotExist) {
		return clierror.FileNotFound(path)
	}
	return wrap(path, err)
}
