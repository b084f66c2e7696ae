package rexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nicklasfrahm/shex/pkg/sshx"
)

// HostConfigFunc returns the connection settings for a host name as it
// appears in Params.Host.
type HostConfigFunc func(host string) sshx.Config

// SSH is a transport that executes commands on remote hosts through SSH
// connections opened by the process itself instead of the ssh binary.
// Connections are kept open and reused until Close is called. Local
// commands are passed on to the shell.
type SSH struct {
	Logger  *zerolog.Logger
	Proxy   *sshx.Config
	Timeout time.Duration

	lookup HostConfigFunc
	local  *Shell

	mu      sync.Mutex
	proxy   *sshx.Client
	clients map[string]*sshx.Client
}

// NewSSH returns a new SSH transport. The lookup function resolves host
// names to connection settings, if it is nil the host name is dialed as
// root with no credentials.
func NewSSH(lookup HostConfigFunc, options ...Option) (*SSH, error) {
	opts, err := GetDefaultOptions().Apply(options...)
	if err != nil {
		return nil, err
	}

	if lookup == nil {
		lookup = func(host string) sshx.Config {
			return sshx.Config{Host: host}
		}
	}

	return &SSH{
		Logger:  opts.Logger,
		Proxy:   opts.SSHProxy,
		Timeout: opts.ConnectTimeout,
		lookup:  lookup,
		local:   NewShell(),
		clients: make(map[string]*sshx.Client),
	}, nil
}

// Exec implements Transport. Like ssh(1), a host that cannot be reached
// results in exit status 255 with the reason written to standard error.
func (s *SSH) Exec(ctx context.Context, inv Invocation, streams Streams) (int, error) {
	if inv.Host == "" {
		return s.local.Exec(ctx, inv, streams)
	}

	client, err := s.connect(inv.Host)
	if err != nil {
		fmt.Fprintf(streams.Stderr, "%s: %v\n", inv.Host, err)
		return 255, nil
	}

	cmd := &sshx.Cmd{
		Cmd:    inv.Command,
		Stdout: streams.Stdout,
		Stderr: streams.Stderr,
	}
	if streams.Stdin != nil {
		cmd.Stdin = streams.Stdin
	}

	status, err := client.Run(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}

		// The connection broke, dial again on the next invocation.
		s.forget(inv.Host, client)
		fmt.Fprintf(streams.Stderr, "%s: %v\n", inv.Host, err)
		return 255, nil
	}

	return status, nil
}

// Copy implements Copier with SFTP. Exactly one endpoint must be remote.
func (s *SSH) Copy(ctx context.Context, src, dst Endpoint) error {
	if src.IsRemote() == dst.IsRemote() {
		return usageErrorf("exactly one side of a copy must be remote: %s to %s", src, dst)
	}

	host := src.Host
	if dst.IsRemote() {
		host = dst.Host
	}
	command := fmt.Sprintf("sftp %s %s", src, dst)

	client, err := s.connect(host)
	if err != nil {
		return &Error{Kind: KindConnection, Host: host, Command: command, Status: 255, Stderr: err.Error()}
	}

	sc, err := client.SFTP()
	if err != nil {
		s.forget(host, client)
		return &Error{Kind: KindConnection, Host: host, Command: command, Status: 255, Stderr: err.Error()}
	}
	defer sc.Close()

	if err := ctx.Err(); err != nil {
		return err
	}

	if dst.IsRemote() {
		err = sshx.Upload(sc, src.Path, dst.Path)
	} else {
		err = sshx.Download(sc, src.Path, dst.Path)
	}
	if err != nil {
		return &Error{Kind: KindCommand, Host: host, Command: command, Status: 1, Stderr: err.Error()}
	}

	return nil
}

// Close disconnects all pooled connections, the proxy last.
func (s *SSH) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for host, client := range s.clients {
		if err := client.Close(); err != nil && !errors.Is(err, io.EOF) {
			errs = append(errs, fmt.Errorf("close connection to %s: %w", host, err))
		}
		delete(s.clients, host)
	}

	if s.proxy != nil {
		if err := s.proxy.Close(); err != nil && !errors.Is(err, io.EOF) {
			errs = append(errs, fmt.Errorf("close proxy connection: %w", err))
		}
		s.proxy = nil
	}

	return errors.Join(errs...)
}

// connect returns the pooled connection to host, dialing it if needed.
func (s *SSH) connect(host string) (*sshx.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client, ok := s.clients[host]; ok {
		return client, nil
	}

	options := []sshx.Option{
		sshx.WithLogger(s.Logger),
		sshx.WithTimeout(s.Timeout),
	}

	if s.Proxy != nil {
		if s.proxy == nil {
			proxy, err := sshx.NewClient(s.Proxy, options...)
			if err != nil {
				return nil, fmt.Errorf("connect to proxy: %w", err)
			}
			s.proxy = proxy
		}
		options = append(options, sshx.WithProxy(s.proxy))
	}

	config := s.lookup(host)
	if config.Host == "" {
		config.Host = host
	}

	client, err := sshx.NewClient(&config, options...)
	if err != nil {
		return nil, err
	}
	s.clients[host] = client

	return client, nil
}

func (s *SSH) forget(host string, client *sshx.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clients[host] == client {
		delete(s.clients, host)
		client.Close()
	}
}
