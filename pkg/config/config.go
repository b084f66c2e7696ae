// Package config loads the configuration file of the shex CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/nicklasfrahm/shex/pkg/shell"
	"github.com/nicklasfrahm/shex/pkg/sshx"
)

const (
	// TransportShell runs commands through the ssh and scp binaries.
	TransportShell = "shell"
	// TransportNative runs commands through SSH connections opened by
	// the process itself and transfers files with SFTP.
	TransportNative = "native"
)

// Transports is a list of the available transports.
var Transports = []string{TransportShell, TransportNative}

// SSH describes how remote hosts are reached.
type SSH struct {
	// Defaults are applied to every host for the settings it leaves empty.
	Defaults sshx.Config `yaml:"defaults"`

	// Proxy describes the SSH connection configuration for an SSH
	// proxy, often also referred to as bastion host or jumpbox. It is
	// only used by the native transport.
	Proxy sshx.Config `yaml:"proxy"`

	// Hosts maps the host names used on the command line to connection
	// settings. Hosts that are not listed are dialed by name.
	Hosts map[string]sshx.Config `yaml:"hosts"`
}

// Config describes the configuration file.
type Config struct {
	// Transport selects how commands reach remote hosts.
	Transport string `yaml:"transport"`

	// ConnectTimeout bounds how long establishing a connection may take.
	ConnectTimeout time.Duration `yaml:"connect-timeout"`

	SSH SSH `yaml:"ssh"`
}

// Default returns the configuration that is used without a file.
func Default() *Config {
	return &Config{
		Transport:      TransportShell,
		ConnectTimeout: shell.DefaultConnectTimeout,
	}
}

// Load reads and parses the configuration file. Settings that are not in
// the file keep their default value.
func Load(path string) (*Config, error) {
	configBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(configBytes, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return config, nil
}

// Verify verifies the configuration file.
func (c *Config) Verify() error {
	if c == nil {
		return errors.New("configuration empty")
	}

	var errs []error

	switch c.Transport {
	case TransportShell, TransportNative:
	default:
		errs = append(errs, fmt.Errorf("unsupported transport %q, must be one of: %v", c.Transport, Transports))
	}

	if c.ConnectTimeout < time.Second {
		errs = append(errs, fmt.Errorf("connect-timeout must be at least 1s: %s", c.ConnectTimeout))
	}

	if err := verifyPort("ssh.defaults", c.SSH.Defaults); err != nil {
		errs = append(errs, err)
	}
	if err := verifyPort("ssh.proxy", c.SSH.Proxy); err != nil {
		errs = append(errs, err)
	}
	for _, name := range c.HostNames() {
		if err := verifyPort("ssh.hosts."+name, c.SSH.Hosts[name]); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func verifyPort(field string, config sshx.Config) error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("%s: invalid port: %d", field, config.Port)
	}
	return nil
}

// HostNames returns the names of the configured hosts in lexical order.
func (c *Config) HostNames() []string {
	names := make([]string, 0, len(c.SSH.Hosts))
	for name := range c.SSH.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// SSHConfig returns the connection settings for a host. The host entry
// is completed with the defaults and the host name is dialed if the entry
// does not name an address.
func (c *Config) SSHConfig(host string) sshx.Config {
	config := c.SSH.Hosts[host]

	// Merging two values of the same struct type cannot fail.
	_ = mergo.Merge(&config, c.SSH.Defaults)

	if config.Host == "" {
		config.Host = host
	}

	return config
}

// ProxyConfig returns the connection settings for the SSH proxy, or nil
// if no proxy is configured. The proxy is completed with the defaults.
func (c *Config) ProxyConfig() *sshx.Config {
	if c.SSH.Proxy.Host == "" {
		return nil
	}

	proxy := c.SSH.Proxy
	_ = mergo.Merge(&proxy, c.SSH.Defaults)

	return &proxy
}
