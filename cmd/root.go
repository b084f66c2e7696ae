// Package cmd implements the command line interface of shex.
package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nicklasfrahm/shex/pkg/ops"
	"github.com/nicklasfrahm/shex/pkg/rexec"
)

var version = "dev"
var help bool

var (
	configPath string
	host       string
	user       string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "shex",
	Short: "Run shell commands locally or on remote hosts",
	Long: `      _
  ___| |__   _____  __
 / __| '_ \ / _ \ \/ /
 \__ \ | | |  __/>  <
 |___/_| |_|\___/_/\_\

Run shell commands, probe hosts and transfer files
through one interface, no matter whether the target
is the local machine or a remote host reached via
SSH. Commands may be run as another user with sudo.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if help {
			cmd.Help()
			os.Exit(0)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(0)
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&help, "help", "h", false, "display help for command")
	flags.StringVarP(&configPath, "config", "c", ops.DefaultConfigPath, "path to the configuration file")
	flags.StringVarP(&host, "host", "H", "", "host to run on, the local machine if empty")
	flags.StringVarP(&user, "user", "u", "", "user to run as, the current user if empty")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every executed command")
}

// newLogger creates the logger for the command line interface.
func newLogger(cmd *cobra.Command) *zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := log.Output(zerolog.ConsoleWriter{
		Out:        cmd.ErrOrStderr(),
		TimeFormat: time.RFC3339,
	}).Level(level)

	return &logger
}

// opsOptions returns the options shared by all operations.
func opsOptions(cmd *cobra.Command) []ops.Option {
	return []ops.Option{
		ops.WithLogger(newLogger(cmd)),
		ops.WithConfigPath(configPath),
	}
}

// targetParams returns the parameters selected by the global flags.
func targetParams() rexec.Params {
	return rexec.Params{
		Host: host,
		User: user,
	}
}

// Execute starts the invocation of the command line interface. The
// error is printed before it is returned, unless it only carries an
// exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !isExitCode(err) {
		rootCmd.PrintErrln("Error:", err)
	}
	return err
}
