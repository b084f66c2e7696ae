package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicklasfrahm/shex/pkg/ops"
)

var (
	runStdin   string
	runCheck   bool
	runDryRun  bool
	runMessage string
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- command [args...]",
	Short: "Run a shell command",
	Long: `Run a shell command on the target host as the target
user. The arguments are joined with spaces and passed
to the shell, so they may use pipes and redirections.

The output of the command is printed and its exit
status becomes the exit status of shex. A host that
cannot be reached exits with status 255, like ssh.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		command := strings.Join(args, " ")
		params := targetParams()
		params.Message = runMessage

		if runDryRun {
			line, err := ops.Command(command, params, opsOptions(cmd)...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		}

		if runStdin != "" {
			input, err := readInput(cmd, runStdin)
			if err != nil {
				return err
			}
			params.Stdin = input
		}

		run := ops.Run
		if runCheck || runMessage != "" {
			run = ops.MustRun
		}

		result, err := run(cmd.Context(), command, params, opsOptions(cmd)...)
		if result != nil {
			io.WriteString(cmd.OutOrStdout(), result.Stdout)
			if err == nil {
				io.WriteString(cmd.ErrOrStderr(), result.Stderr)
			}
		}
		if err != nil {
			return err
		}

		if !result.Okay {
			return NewExitCodeError(result.Status)
		}

		return nil
	},
}

// readInput reads the input for a command from a file, or from the
// standard input of shex if path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		input, err := io.ReadAll(cmd.InOrStdin())
		return string(input), err
	}

	input, err := os.ReadFile(path)
	return string(input), err
}

func init() {
	runCmd.Flags().StringVar(&runStdin, "stdin", "", `file to feed to the command, "-" for standard input`)
	runCmd.Flags().BoolVar(&runCheck, "check", false, "fail with a description if the command exits non-zero")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the command line instead of running it")
	runCmd.Flags().StringVarP(&runMessage, "message", "m", "", "error message to print if the command fails, implies --check")

	rootCmd.AddCommand(runCmd)
}
