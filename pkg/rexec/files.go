package rexec

import (
	"context"
	"os"

	"github.com/nicklasfrahm/shex/pkg/shell"
)

// Exists reports whether path exists on params.Host.
func (e *Engine) Exists(ctx context.Context, path string, params Params) (bool, error) {
	return e.testPath(ctx, "-e", path, params)
}

// IsDirectory reports whether path is a directory on params.Host.
func (e *Engine) IsDirectory(ctx context.Context, path string, params Params) (bool, error) {
	return e.testPath(ctx, "-d", path, params)
}

func (e *Engine) testPath(ctx context.Context, flag, path string, params Params) (bool, error) {
	command := shell.Join("test", flag, path)

	result, err := e.Run(ctx, command, params)
	if err != nil {
		return false, err
	}

	switch {
	case result.Status == 0:
		return true, nil
	case result.Status == 1:
		return false, nil
	case result.Status == 255 && !e.IsLocal(params.Host):
		return false, connectionError(params.Host, command, result)
	}

	return false, &Error{
		Kind:    KindUnexpectedStatus,
		Host:    params.Host,
		Command: command,
		Status:  result.Status,
		Stderr:  result.Stderr,
	}
}

// Copy transfers a file between the local machine and a remote host.
// Either location may use the "host:path" form, but not both. The remote
// host must answer a probe before anything is transferred.
func (e *Engine) Copy(ctx context.Context, src, dst string, params Params) error {
	from, to := ParseEndpoint(src), ParseEndpoint(dst)
	if from.IsRemote() && to.IsRemote() {
		return usageErrorf("cannot copy between two remote hosts: %s to %s", src, dst)
	}

	host := from.Host
	if to.IsRemote() {
		host = to.Host
	}

	if host != "" {
		ok, err := e.Probe(ctx, host, false)
		if err != nil {
			return err
		}
		if !ok {
			return connectionError(host, shell.Join("scp", src, dst), nil)
		}
	}

	if copier, ok := e.transport.(Copier); ok && host != "" && !e.IsLocal(host) {
		e.Logger.Debug().Str("src", src).Str("dst", dst).Msg("Copying file")
		return copier.Copy(ctx, from, to)
	}

	command := shell.Join(shell.SCPArgs(e.rewriter.ConnectTimeout)...) + " " + quoteEndpoint(from) + " " + quoteEndpoint(to)
	_, err := e.MustRun(ctx, command, Params{Message: params.Message, Kind: params.Kind})
	return err
}

// quoteEndpoint quotes the host and the path of an endpoint separately,
// keeping the colon between them intact.
func quoteEndpoint(ep Endpoint) string {
	if !ep.IsRemote() {
		return shell.Quote(ep.Path)
	}
	return shell.Quote(ep.Host) + ":" + shell.Quote(ep.Path)
}

// Install places the local file src at dst on params.Host with install(1),
// applying the permissions, owner, group and backup suffix in params. For
// remote hosts the file is staged in a temporary file first.
func (e *Engine) Install(ctx context.Context, src, dst string, params Params) error {
	if _, err := os.Stat(src); err != nil {
		return usageErrorf("missing source file: %s", src)
	}

	install := func(source string) error {
		args := []string{"install"}
		if params.Suffix != "" {
			args = append(args, "-S", "."+params.Suffix)
		}
		if params.Permissions != "" {
			args = append(args, "-m", params.Permissions)
		}
		if params.Owner != "" {
			args = append(args, "-o", params.Owner)
		}
		if params.Group != "" {
			args = append(args, "-g", params.Group)
		}
		args = append(args, source, dst)

		_, err := e.MustRun(ctx, shell.Join(args...), params)
		return err
	}

	if e.IsLocal(params.Host) {
		return install(src)
	}

	// The staging file belongs to the connecting user, so that scp can
	// write to it.
	staging := params
	staging.User = ""
	staging.Dir = false

	return e.WithTemporary(ctx, staging, func(temp string) error {
		if err := e.Copy(ctx, src, params.Host+":"+temp, Params{}); err != nil {
			return err
		}
		return install(temp)
	})
}

// ReplaceDirectory moves the directory src to dst on params.Host, removing
// an existing directory at dst first. The replacement is not atomic.
func (e *Engine) ReplaceDirectory(ctx context.Context, src, dst string, params Params) error {
	ok, err := e.IsDirectory(ctx, src, params)
	if err != nil {
		return err
	}
	if !ok {
		return usageErrorf("missing %s:%s", params.Host, src)
	}

	ok, err = e.IsDirectory(ctx, dst, params)
	if err != nil {
		return err
	}
	if ok {
		if _, err := e.MustRun(ctx, shell.Join("rm", "-rf", dst), params); err != nil {
			return err
		}
	}

	args := []string{"mv"}
	if params.Suffix != "" {
		args = append(args, "-S", "."+params.Suffix)
	}
	args = append(args, src, dst)

	_, err = e.MustRun(ctx, shell.Join(args...), params)
	return err
}
