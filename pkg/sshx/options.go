package sshx

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds the TCP dial and the SSH handshake.
const DefaultTimeout = 5 * time.Second

// Options configure how a Client connects.
type Options struct {
	Logger *zerolog.Logger
	// Proxy is an established connection that new connections are
	// tunneled through.
	Proxy   *Client
	Timeout time.Duration
}

// Option modifies the Options of a Client.
type Option func(options *Options) error

// Apply applies the options in order and stops at the first error.
func (o *Options) Apply(options ...Option) (*Options, error) {
	for _, option := range options {
		if err := option(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// GetDefaultOptions returns options that dial directly and discard logs.
func GetDefaultOptions() *Options {
	logger := zerolog.Nop()

	return &Options{
		Logger:  &logger,
		Timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger. A nil logger keeps the current one.
func WithLogger(logger *zerolog.Logger) Option {
	return func(options *Options) error {
		if logger != nil {
			options.Logger = logger
		}
		return nil
	}
}

// WithProxy tunnels the connection through proxy, which is usually
// called a bastion host or jumpbox.
func WithProxy(proxy *Client) Option {
	return func(options *Options) error {
		options.Proxy = proxy
		return nil
	}
}

// WithTimeout sets the timeout for establishing the connection.
func WithTimeout(timeout time.Duration) Option {
	return func(options *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("invalid timeout: %s", timeout)
		}
		options.Timeout = timeout
		return nil
	}
}
