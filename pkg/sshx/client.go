package sshx

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Config is a flat configuration for an SSH connection.
type Config struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	KeyFile     string `yaml:"key-file"`
	Key         string `yaml:"key"`
	Passphrase  string `yaml:"passphrase"`
	Fingerprint string `yaml:"fingerprint"`
}

// Address returns the host and port to dial.
func (c *Config) Address() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// Client is an SSH connection to a single host, optionally tunneled
// through a proxy connection.
type Client struct {
	*Options
	*ssh.Client
}

// NewClient connects to the host described by config. A config without a
// user logs in as root.
func NewClient(config *Config, options ...Option) (*Client, error) {
	opts, err := GetDefaultOptions().Apply(options...)
	if err != nil {
		return nil, err
	}

	client := &Client{Options: opts}

	user := config.User
	if user == "" {
		user = "root"
	}

	auth, err := client.authMethod(config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.Host, err)
	}

	clientConfig := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: client.hostKeyCallback(config),
		Timeout:         opts.Timeout,
	}

	address := config.Address()
	if client.Client, err = client.dial(address, clientConfig); err != nil {
		return nil, err
	}

	client.Logger.Debug().Str("address", address).Str("user", user).Bool("proxy", opts.Proxy != nil).Msg("Connected")

	return client, nil
}

// dial opens the connection, through the proxy if one is configured.
func (client *Client) dial(address string, config *ssh.ClientConfig) (*ssh.Client, error) {
	if client.Proxy == nil {
		conn, err := ssh.Dial("tcp", address, config)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", address, err)
		}
		return conn, nil
	}

	netConn, err := client.Proxy.Client.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s via proxy: %w", address, err)
	}

	conn, channels, requests, err := ssh.NewClientConn(netConn, address, config)
	if err != nil {
		netConn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", address, err)
	}

	return ssh.NewClient(conn, channels, requests), nil
}

// SFTP opens an SFTP session on top of the existing connection. The caller
// is responsible for closing it, which leaves the SSH connection open.
func (client *Client) SFTP() (*sftp.Client, error) {
	sc, err := sftp.NewClient(client.Client)
	if err != nil {
		return nil, fmt.Errorf("open sftp subsystem: %w", err)
	}
	return sc, nil
}

// authMethod picks the authentication method. A private key takes
// precedence over a password.
func (client *Client) authMethod(config *Config) (ssh.AuthMethod, error) {
	key, err := loadKey(config)
	if err != nil {
		return nil, err
	}

	switch {
	case key != nil:
		var signer ssh.Signer
		if config.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(config.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(key)
		}
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		return ssh.PublicKeys(signer), nil

	case config.Password != "":
		client.Logger.Warn().Str("host", config.Host).Msg("Using password authentication is insecure!")
		client.Logger.Warn().Msg("Please consider using public key authentication!")
		return ssh.Password(config.Password), nil
	}

	return nil, errors.New("no authentication method specified")
}

// hostKeyCallback pins the host key to the configured fingerprint. Without
// a fingerprint every host key is accepted, like ssh -o
// StrictHostKeyChecking=no does for unknown hosts.
func (client *Client) hostKeyCallback(config *Config) ssh.HostKeyCallback {
	if config.Fingerprint == "" {
		client.Logger.Debug().Str("host", config.Host).Msg("Skipping host key verification")
		return ssh.InsecureIgnoreHostKey()
	}

	want := config.Fingerprint
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		if got := ssh.FingerprintSHA256(key); got != want {
			return fmt.Errorf("fingerprint mismatch: server fingerprint: %s", got)
		}
		return nil
	}
}

// loadKey returns the private key of the config, nil if there is none. A
// key that is specified directly takes precedence over a key file.
func loadKey(config *Config) ([]byte, error) {
	if config.Key != "" {
		return []byte(config.Key), nil
	}
	if config.KeyFile == "" {
		return nil, nil
	}

	path, err := expandHome(config.KeyFile)
	if err != nil {
		return nil, err
	}

	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return key, nil
}

// expandHome replaces a leading "~" with the home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
