package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nicklasfrahm/shex/pkg/ops"
)

var testDir bool

var testCmd = &cobra.Command{
	Use:   "test [flags] path",
	Short: "Check whether a path exists",
	Long: `Check whether a path exists on the target host, or
whether it is a directory if --dir is given. Exits
with status 0 if it does and 1 if it does not.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := targetParams()
		params.Dir = testDir

		ok, err := ops.Test(cmd.Context(), args[0], params, opsOptions(cmd)...)
		if err != nil {
			return err
		}
		if !ok {
			return NewExitCodeError(1)
		}

		return nil
	},
}

func init() {
	testCmd.Flags().BoolVarP(&testDir, "dir", "d", false, "require the path to be a directory")

	rootCmd.AddCommand(testCmd)
}
