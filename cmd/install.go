package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nicklasfrahm/shex/pkg/ops"
)

var (
	installMode   string
	installOwner  string
	installGroup  string
	installSuffix string
)

var installCmd = &cobra.Command{
	Use:   "install [flags] src dst",
	Short: "Install a local file on the target host",
	Long: `Install a local file at the destination path on the
target host with install(1). The file is staged in a
temporary file on remote hosts first.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := targetParams()
		params.Permissions = installMode
		params.Owner = installOwner
		params.Group = installGroup
		params.Suffix = installSuffix

		return ops.Install(cmd.Context(), args[0], args[1], params, opsOptions(cmd)...)
	},
}

func init() {
	flags := installCmd.Flags()
	flags.StringVarP(&installMode, "mode", "m", "", "permission bits of the installed file")
	flags.StringVarP(&installOwner, "owner", "o", "", "owner of the installed file")
	flags.StringVarP(&installGroup, "group", "g", "", "group of the installed file")
	flags.StringVarP(&installSuffix, "suffix", "S", "", "back up an existing file with this suffix")

	rootCmd.AddCommand(installCmd)
}
