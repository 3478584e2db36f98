package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/laughtale01/Scratch-sub001/internal/version"
)

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the ztctl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			return opts.render(cmd, info, func(w io.Writer) {
				fmt.Fprintf(w, "ztctl\t%s\n", info.Version)
				if info.Revision != "" {
					fmt.Fprintf(w, "revision\t%s\n", info.Revision)
				}
				fmt.Fprintf(w, "go\t%s\n", info.GoVersion)
			})
		},
	}
}
