package rexec

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/nicklasfrahm/shex/pkg/shell"
)

// Engine runs commands on the local machine or on remote hosts. Commands
// are rewritten for the requested user and host, executed by a Transport
// and their output is captured. An Engine is safe for concurrent use.
type Engine struct {
	Logger *zerolog.Logger

	rewriter  *shell.Rewriter
	transport Transport
	cache     *Cache
	probes    singleflight.Group
}

// New creates a new Engine.
func New(options ...Option) (*Engine, error) {
	opts, err := GetDefaultOptions().Apply(options...)
	if err != nil {
		return nil, err
	}

	if opts.Transport == nil {
		opts.Transport = NewShell()
	}
	if opts.Cache == nil {
		opts.Cache = NewCache()
	}

	return &Engine{
		Logger: opts.Logger,
		rewriter: &shell.Rewriter{
			Hostname:       opts.Hostname,
			Login:          opts.Login,
			ConnectTimeout: opts.ConnectTimeout,
		},
		transport: opts.Transport,
		cache:     opts.Cache,
	}, nil
}

// Cache returns the connection cache of the engine.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// IsLocal reports whether host refers to the local machine.
func (e *Engine) IsLocal(host string) bool {
	return e.rewriter.IsLocal(host)
}

// Command returns the command line that runs command as params.User on
// params.Host. Nothing is executed.
func (e *Engine) Command(command string, params Params) string {
	return e.rewriter.Rewrite(command, params.User, params.Host)
}

// Run executes command and returns its outcome. A command that exits
// non-zero, including a remote host that cannot be reached, is not an
// error. Errors are only returned if the command could not be executed.
func (e *Engine) Run(ctx context.Context, command string, params Params) (*Result, error) {
	inv := Invocation{
		Command: e.rewriter.ChangeUser(command, params.User),
		Line:    e.Command(command, params),
	}
	if !e.IsLocal(params.Host) {
		inv.Host = params.Host
	}

	logger := e.Logger.With().Str("host", inv.Host).Str("user", params.User).Logger()
	ctx = logger.WithContext(ctx)

	captured, err := Redirect(ctx, params, func(streams Streams) (int, error) {
		return e.transport.Exec(ctx, inv, streams)
	})
	if err != nil {
		return nil, fmt.Errorf("execute %q: %w", command, err)
	}

	logger.Debug().Str("cmd", inv.Line).Int("status", captured.Value).Msg("Executed command")

	return newResult(captured.Value, captured.Stdout, captured.Stderr), nil
}

// MustRun executes command like Run, but fails if it exits non-zero. Exit
// status 255 from a remote host is reported as a connection error, which
// takes precedence over other failures. The outcome is returned with the
// error so that callers can inspect it.
func (e *Engine) MustRun(ctx context.Context, command string, params Params) (*Result, error) {
	result, err := e.Run(ctx, command, params)
	if err != nil {
		return nil, err
	}

	if result.Status == 255 && !e.IsLocal(params.Host) {
		return result, connectionError(params.Host, command, result)
	}

	if !result.Okay {
		return result, &Error{
			Kind:    params.Kind,
			Host:    params.Host,
			Command: command,
			Status:  result.Status,
			Stderr:  result.Stderr,
			Message: params.Message,
		}
	}

	return result, nil
}

// MaybeRun executes command like Run if params.Host is known to be
// reachable and fails with a connection error without running it otherwise.
func (e *Engine) MaybeRun(ctx context.Context, command string, params Params) (*Result, error) {
	ok, err := e.Probe(ctx, params.Host, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, connectionError(params.Host, command, nil)
	}

	return e.Run(ctx, command, params)
}

// Close releases the connections held by the transport.
func (e *Engine) Close() error {
	return e.transport.Close()
}
