package ops

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/nicklasfrahm/shex/pkg/config"
	"github.com/nicklasfrahm/shex/pkg/rexec"
)

// loadConfig loads and verifies the configuration file. A missing file at
// the default path yields the default configuration.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if errors.Is(err, fs.ErrNotExist) && opts.ConfigPath == DefaultConfigPath {
		opts.Logger.Debug().Str("path", opts.ConfigPath).Msg("No configuration file, using defaults")
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if err := cfg.Verify(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", opts.ConfigPath, err)
	}

	return cfg, nil
}

// newEngine creates an engine with the transport selected by the
// configuration.
func newEngine(opts *Options, cfg *config.Config) (*rexec.Engine, error) {
	engineOptions := []rexec.Option{
		rexec.WithLogger(opts.Logger),
		rexec.WithConnectTimeout(cfg.ConnectTimeout),
	}

	if cfg.Transport == config.TransportNative {
		transport, err := rexec.NewSSH(cfg.SSHConfig,
			rexec.WithLogger(opts.Logger),
			rexec.WithConnectTimeout(cfg.ConnectTimeout),
			rexec.WithSSHProxy(cfg.ProxyConfig()),
		)
		if err != nil {
			return nil, err
		}
		engineOptions = append(engineOptions, rexec.WithTransport(transport))
	}

	return rexec.New(engineOptions...)
}

// withEngine calls fn with an engine for the configuration and closes
// the engine afterwards.
func withEngine(options []Option, fn func(*rexec.Engine, *config.Config) error) (err error) {
	// Fetch the options for this operation.
	opts, err := GetDefaultOptions().Apply(options...)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	eng, err := newEngine(opts, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := eng.Close(); closeErr != nil {
			opts.Logger.Warn().Err(closeErr).Msg("Failed to close connections")
		}
	}()

	return fn(eng, cfg)
}
