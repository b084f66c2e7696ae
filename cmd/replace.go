package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nicklasfrahm/shex/pkg/ops"
)

var replaceSuffix string

var replaceCmd = &cobra.Command{
	Use:   "replace [flags] src dst",
	Short: "Replace a directory with another one",
	Long: `Move the directory src to dst on the target host. An
existing directory at dst is removed first. Use with
caution as the removal cannot be undone and is not
rolled back if the move fails.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := targetParams()
		params.Suffix = replaceSuffix

		return ops.Replace(cmd.Context(), args[0], args[1], params, opsOptions(cmd)...)
	},
}

func init() {
	replaceCmd.Flags().StringVarP(&replaceSuffix, "suffix", "S", "", "suffix passed on to mv for backups")

	rootCmd.AddCommand(replaceCmd)
}
