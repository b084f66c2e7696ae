package ops

import (
	"context"

	"github.com/nicklasfrahm/shex/pkg/config"
	"github.com/nicklasfrahm/shex/pkg/rexec"
)

// Test reports whether path exists on the host, or whether it is a
// directory if params.Dir is set.
func Test(ctx context.Context, path string, params rexec.Params, options ...Option) (bool, error) {
	var ok bool

	err := withEngine(options, func(eng *rexec.Engine, _ *config.Config) error {
		var err error
		if params.Dir {
			ok, err = eng.IsDirectory(ctx, path, params)
		} else {
			ok, err = eng.Exists(ctx, path, params)
		}
		return err
	})

	return ok, err
}

// Copy transfers a file between the local machine and a remote host.
func Copy(ctx context.Context, src, dst string, options ...Option) error {
	return withEngine(options, func(eng *rexec.Engine, _ *config.Config) error {
		return eng.Copy(ctx, src, dst, rexec.Params{})
	})
}

// Install installs a local file on the host.
func Install(ctx context.Context, src, dst string, params rexec.Params, options ...Option) error {
	return withEngine(options, func(eng *rexec.Engine, _ *config.Config) error {
		return eng.Install(ctx, src, dst, params)
	})
}

// Replace replaces the directory dst with src on the host.
func Replace(ctx context.Context, src, dst string, params rexec.Params, options ...Option) error {
	return withEngine(options, func(eng *rexec.Engine, _ *config.Config) error {
		return eng.ReplaceDirectory(ctx, src, dst, params)
	})
}
