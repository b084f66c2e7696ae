// Package rexec provides APIs to execute commands on local and remote
// machines through one interface.
package rexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Invocation is a command that is ready to be spawned.
type Invocation struct {
	// Host is the target host, empty for the local machine.
	Host string
	// Command has been rewritten for the target user but not for the host.
	Command string
	// Line is the fully rewritten command line for the local shell,
	// which wraps Command in an ssh invocation for remote hosts.
	Line string
}

// Streams are the standard streams attached to a spawned command.
type Streams struct {
	// Stdin is nil when the command gets no input.
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// Transport spawns commands. This can be for example the local shell, or
// an SSH session opened by the process itself.
type Transport interface {
	// Exec runs the invocation to completion and returns its exit
	// status. Following ssh(1), a host that cannot be reached is
	// reported as status 255 rather than as an error. Errors are
	// reserved for commands that could not be spawned at all.
	Exec(ctx context.Context, inv Invocation, streams Streams) (int, error)
	// Close releases connections held by the transport.
	Close() error
}

// Copier is implemented by transports that transfer files themselves
// instead of through scp(1).
type Copier interface {
	Copy(ctx context.Context, src, dst Endpoint) error
}

// Endpoint is one side of a file transfer.
type Endpoint struct {
	// Host is empty for local paths.
	Host string
	Path string
}

// ParseEndpoint splits a scp style "host:path" location. Locations
// without a colon, or with a slash before the first colon, are local.
func ParseEndpoint(location string) Endpoint {
	host, path, found := strings.Cut(location, ":")
	if !found || host == "" || strings.Contains(host, "/") {
		return Endpoint{Path: location}
	}
	return Endpoint{Host: host, Path: path}
}

// IsRemote reports whether the endpoint names a host.
func (e Endpoint) IsRemote() bool {
	return e.Host != ""
}

func (e Endpoint) String() string {
	if e.Host == "" {
		return e.Path
	}
	return e.Host + ":" + e.Path
}

// Shell is a transport that spawns the command line with the local shell.
// Remote hosts are reached by the ssh(1) invocation that is already part
// of the line.
type Shell struct {
	// Path is the shell binary, "/bin/sh" if empty.
	Path string
}

// NewShell returns a transport that uses /bin/sh.
func NewShell() *Shell {
	return &Shell{Path: "/bin/sh"}
}

// Exec implements Transport.
func (s *Shell) Exec(ctx context.Context, inv Invocation, streams Streams) (int, error) {
	path := s.Path
	if path == "" {
		path = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, path, "-c", inv.Line)
	// Assigning a nil *os.File would hand os/exec a non-nil interface.
	if streams.Stdin != nil {
		cmd.Stdin = streams.Stdin
	}
	if streams.Stdout != nil {
		cmd.Stdout = streams.Stdout
	}
	if streams.Stderr != nil {
		cmd.Stderr = streams.Stderr
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return exitErr.ExitCode(), nil
	}
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}

	return -1, fmt.Errorf("spawn %s: %w", path, err)
}

// Close implements Transport.
func (s *Shell) Close() error {
	return nil
}
