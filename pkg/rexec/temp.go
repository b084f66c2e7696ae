package rexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nicklasfrahm/shex/pkg/shell"
)

const tempPattern = "shex."

// WithTemporary creates a temporary file, or a directory if params.Dir is
// set, on params.Host and calls fn with its path. The path is removed when
// fn returns, whether or not it failed. Local paths are created with the
// operating system's temporary directory, remote paths with mktemp(1) as
// params.User.
//
// Errors from fn and from the removal are both returned. The removal of a
// remote path is attempted even if fn failed and may itself fail with a
// connection error.
func (e *Engine) WithTemporary(ctx context.Context, params Params, fn func(path string) error) (err error) {
	if fn == nil {
		return usageErrorf("missing temporary resource callback")
	}

	if e.IsLocal(params.Host) {
		return withLocalTemporary(params.Dir, fn)
	}

	create := "mktemp"
	if params.Dir {
		create = "mktemp -d"
	}

	result, err := e.MustRun(ctx, create, params)
	if err != nil {
		return err
	}

	path := strings.TrimSpace(result.Stdout)
	if path == "" {
		return fmt.Errorf("mktemp on %s returned no path", params.Host)
	}

	defer func() {
		_, rmErr := e.MustRun(context.WithoutCancel(ctx), shell.Join("rm", "-rf", path), params)
		err = joinCleanup(err, rmErr)
	}()

	return fn(path)
}

func withLocalTemporary(dir bool, fn func(path string) error) (err error) {
	var path string
	if dir {
		if path, err = os.MkdirTemp("", tempPattern); err != nil {
			return err
		}
	} else {
		f, err := os.CreateTemp("", tempPattern)
		if err != nil {
			return err
		}
		path = f.Name()
		if err := f.Close(); err != nil {
			os.Remove(path)
			return err
		}
	}

	defer func() {
		if _, statErr := os.Lstat(path); statErr == nil {
			err = joinCleanup(err, os.RemoveAll(path))
		}
	}()

	return fn(path)
}

// joinCleanup returns err unchanged unless cleanup failed as well.
func joinCleanup(err, cleanupErr error) error {
	if cleanupErr == nil {
		return err
	}
	if err == nil {
		return cleanupErr
	}
	return errors.Join(err, cleanupErr)
}
