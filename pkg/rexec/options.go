package rexec

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nicklasfrahm/shex/pkg/shell"
	"github.com/nicklasfrahm/shex/pkg/sshx"
)

// Options contains the configuration for an engine.
type Options struct {
	Logger         *zerolog.Logger
	Transport      Transport
	Cache          *Cache
	ConnectTimeout time.Duration
	Hostname       string
	Login          string
	SSHProxy       *sshx.Config
}

// Option applies a configuration option
// for the execution of an operation.
type Option func(options *Options) error

// Apply applies the option functions to the current set of options.
func (o *Options) Apply(options ...Option) (*Options, error) {
	for _, option := range options {
		if err := option(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// GetDefaultOptions returns the default options
// for all operations of this library.
func GetDefaultOptions() *Options {
	logger := log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(zerolog.InfoLevel)

	return &Options{
		Logger:         &logger,
		ConnectTimeout: shell.DefaultConnectTimeout,
		Hostname:       shell.Hostname(),
		Login:          shell.Login(),
	}
}

// WithLogger allows to use a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(options *Options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		options.Logger = logger
		return nil
	}
}

// WithTransport replaces the transport that spawns commands.
// The default transport runs commands with the local shell.
func WithTransport(transport Transport) Option {
	return func(options *Options) error {
		if transport == nil {
			return errors.New("transport must not be nil")
		}
		options.Transport = transport
		return nil
	}
}

// WithCache shares a connection cache between engines.
func WithCache(cache *Cache) Option {
	return func(options *Options) error {
		if cache == nil {
			return errors.New("cache must not be nil")
		}
		options.Cache = cache
		return nil
	}
}

// WithConnectTimeout sets the connection timeout of the ssh and scp
// transports. It does not limit how long a command may run.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(options *Options) error {
		if timeout < time.Second {
			return fmt.Errorf("connect timeout must be at least one second: %s", timeout)
		}
		options.ConnectTimeout = timeout
		return nil
	}
}

// WithHostname overrides the short host name of the local machine.
func WithHostname(hostname string) Option {
	return func(options *Options) error {
		options.Hostname = hostname
		return nil
	}
}

// WithLogin overrides the login name of the current user.
func WithLogin(login string) Option {
	return func(options *Options) error {
		options.Login = login
		return nil
	}
}

// WithSSHProxy configures an SSH bastion host for the native SSH transport.
func WithSSHProxy(sshProxy *sshx.Config) Option {
	return func(options *Options) error {
		options.SSHProxy = sshProxy
		return nil
	}
}
