package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nicklasfrahm/shex/pkg/ops"
)

var copyCmd = &cobra.Command{
	Use:   "copy src dst",
	Short: "Copy a file from or to a remote host",
	Long: `Copy a file between the local machine and a remote
host. The remote side is written as "host:path", like
scp. Copying between two remote hosts is not possible.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ops.Copy(cmd.Context(), args[0], args[1], opsOptions(cmd)...)
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)
}
