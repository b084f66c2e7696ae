package shell

import (
	"fmt"
	"os"
	"os/user"
	"strings"
	"sync"
	"time"
)

const (
	// Localhost is the host name that always refers to the local machine.
	Localhost = "localhost"
	// Root is the user that is elevated to without a login shell.
	Root = "root"
	// DefaultConnectTimeout bounds the connection setup of the ssh and scp
	// transports. It does not bound the runtime of the command itself.
	DefaultConnectTimeout = 3 * time.Second
)

// hostname is resolved once per process.
var hostname = sync.OnceValue(func() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	short, _, _ := strings.Cut(name, ".")
	return short
})

// Hostname returns the short host name of the local machine, which is the
// part of the host name before the first dot.
func Hostname() string {
	return hostname()
}

// Login returns the login name of the current user. The LOGNAME
// environment variable takes precedence over the user database.
func Login() string {
	if name := os.Getenv("LOGNAME"); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}

// Rewriter wraps commands so they run as a different user and on a
// different host. The zero value treats only "" and "localhost" as local
// and never skips elevation, use NewRewriter to pick up the environment.
type Rewriter struct {
	// Hostname is the short host name of the local machine.
	Hostname string
	// Login is the name of the user running the process. Commands
	// requested for this user are not elevated.
	Login string
	// ConnectTimeout is passed to the ssh transport.
	ConnectTimeout time.Duration
}

// NewRewriter returns a rewriter for the local machine and current user.
func NewRewriter() *Rewriter {
	return &Rewriter{
		Hostname:       Hostname(),
		Login:          Login(),
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// IsLocal reports whether host refers to the local machine.
func (r *Rewriter) IsLocal(host string) bool {
	switch host {
	case "", Localhost:
		return true
	}
	return r.Hostname != "" && host == r.Hostname
}

// ChangeUser wraps command so that it runs as user. Root is elevated to
// non-interactively, other users are switched to with a login environment.
func (r *Rewriter) ChangeUser(command, user string) string {
	switch {
	case user == "" || user == r.Login:
		return command
	case user == Root:
		return "sudo -n " + command
	default:
		return "sudo -inu " + user + " " + command
	}
}

// ChangeHost wraps command in a non-interactive ssh invocation for host.
// Commands for the local machine are returned unchanged.
func (r *Rewriter) ChangeHost(command, host string) string {
	if r.IsLocal(host) {
		return command
	}

	args := append(SSHArgs(r.ConnectTimeout), host, command)
	return Join(args...)
}

// Rewrite changes the user first and the host second, so that elevation
// happens on the target host.
func (r *Rewriter) Rewrite(command, user, host string) string {
	return r.ChangeHost(r.ChangeUser(command, user), host)
}

// SSHArgs returns the ssh invocation without a destination. Pseudo
// terminals, password prompts and host key prompts are disabled so that
// the transport never blocks on user input.
func SSHArgs(timeout time.Duration) []string {
	return []string{
		"ssh", "-T", "-q",
		"-o", "PasswordAuthentication=no",
		"-o", "StrictHostKeyChecking=no",
		"-o", connectTimeout(timeout),
	}
}

// SCPArgs returns the scp invocation without source and destination.
func SCPArgs(timeout time.Duration) []string {
	return []string{
		"scp", "-B", "-q",
		"-o", "StrictHostKeyChecking=no",
		"-o", connectTimeout(timeout),
	}
}

func connectTimeout(timeout time.Duration) string {
	seconds := int(timeout.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("ConnectTimeout=%d", seconds)
}

var defaultRewriter = sync.OnceValue(NewRewriter)

// IsLocalhost reports whether host refers to the local machine.
func IsLocalhost(host string) bool {
	return defaultRewriter().IsLocal(host)
}

// ChangeUser wraps command so that it runs as user on the local machine's
// terms, see Rewriter.ChangeUser.
func ChangeUser(command, user string) string {
	return defaultRewriter().ChangeUser(command, user)
}

// ChangeHost wraps command for remote execution on host, see
// Rewriter.ChangeHost.
func ChangeHost(command, host string) string {
	return defaultRewriter().ChangeHost(command, host)
}
