package rexec

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
)

// Captured is the value returned by a unit of work together with what it
// wrote to its standard output and error.
type Captured[T any] struct {
	Value  T
	Stdout string
	Stderr string
}

// Redirect runs unit with standard streams backed by temporary files and
// returns what was written to them. The unit attaches the streams to the
// processes it spawns, the streams of the current process are left alone.
//
// If params.Stdin is non-empty it is written to a file that becomes the
// unit's standard input, otherwise Streams.Stdin is nil. All temporary
// files are removed before Redirect returns. An error returned by unit is
// passed through unchanged after the stderr captured so far is logged.
func Redirect[T any](ctx context.Context, params Params, unit func(Streams) (T, error)) (*Captured[T], error) {
	var captured *Captured[T]

	err := withStdin(params.Stdin, func(stdin *os.File) error {
		return withLocalTemporary(false, func(stdoutPath string) error {
			return withLocalTemporary(false, func(stderrPath string) error {
				var err error
				captured, err = redirect(ctx, stdin, stdoutPath, stderrPath, unit)
				return err
			})
		})
	})
	if err != nil {
		return nil, err
	}

	return captured, nil
}

func redirect[T any](ctx context.Context, stdin *os.File, stdoutPath, stderrPath string, unit func(Streams) (T, error)) (*Captured[T], error) {
	stdout, err := os.OpenFile(stdoutPath, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return nil, err
	}
	defer stdout.Close()

	stderr, err := os.OpenFile(stderrPath, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return nil, err
	}
	defer stderr.Close()

	value, unitErr := unit(Streams{Stdin: stdin, Stdout: stdout, Stderr: stderr})

	// Flush what the unit wrote through our handles before reading back.
	syncErr := errors.Join(stdout.Sync(), stderr.Sync())

	errOutput, readErr := os.ReadFile(stderrPath)
	if unitErr != nil {
		zerolog.Ctx(ctx).Error().Err(unitErr).Str("stderr", string(errOutput)).Msg("Unit of work failed")
		return nil, unitErr
	}
	if syncErr != nil {
		return nil, syncErr
	}
	if readErr != nil {
		return nil, readErr
	}

	output, err := os.ReadFile(stdoutPath)
	if err != nil {
		return nil, err
	}

	return &Captured[T]{
		Value:  value,
		Stdout: string(output),
		Stderr: string(errOutput),
	}, nil
}

// withStdin calls fn with an open file holding input, or with nil when
// there is no input.
func withStdin(input string, fn func(*os.File) error) error {
	if input == "" {
		return fn(nil)
	}

	return withLocalTemporary(false, func(path string) error {
		if err := os.WriteFile(path, []byte(input), 0o600); err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		return fn(f)
	})
}
