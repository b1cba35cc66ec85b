package cmd

import (
	"fmt"

	"github.com/bnema/amxbpm-admin-cli/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var detail bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the amxctl release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text := version.Version
			if detail {
				text = version.Detail()
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().BoolVar(&detail, "detail", false, "add the Go toolchain and source revision")

	return cmd
}
