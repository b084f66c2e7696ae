package ops

import (
	"context"

	"github.com/nicklasfrahm/shex/pkg/config"
	"github.com/nicklasfrahm/shex/pkg/rexec"
)

// Run executes a command and returns its outcome. A non-zero exit status
// is not an error.
func Run(ctx context.Context, command string, params rexec.Params, options ...Option) (*rexec.Result, error) {
	var result *rexec.Result

	err := withEngine(options, func(eng *rexec.Engine, _ *config.Config) error {
		var err error
		result, err = eng.Run(ctx, command, params)
		return err
	})

	return result, err
}

// MustRun executes a command and fails if it exits non-zero. The outcome
// is returned together with the error if the command ran.
func MustRun(ctx context.Context, command string, params rexec.Params, options ...Option) (*rexec.Result, error) {
	var result *rexec.Result

	err := withEngine(options, func(eng *rexec.Engine, _ *config.Config) error {
		var err error
		result, err = eng.MustRun(ctx, command, params)
		return err
	})

	return result, err
}

// Command returns the command line that Run would execute.
func Command(command string, params rexec.Params, options ...Option) (string, error) {
	var line string

	err := withEngine(options, func(eng *rexec.Engine, _ *config.Config) error {
		line = eng.Command(command, params)
		return nil
	})

	return line, err
}
