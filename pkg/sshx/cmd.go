package sshx

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/ssh"
)

// Cmd describes a command to be executed on the remote host.
type Cmd struct {
	Cmd    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the command in a new session and waits for it to exit. A
// command that ran and exited is not an error, its exit status is
// returned instead. Errors are reserved for failures of the session itself.
// Cancelling the context kills the remote command.
func (client *Client) Run(ctx context.Context, cmd *Cmd) (int, error) {
	session, err := client.NewSession()
	if err != nil {
		return -1, fmt.Errorf("open ssh session: %w", err)
	}
	defer session.Close()

	session.Stdin = cmd.Stdin
	session.Stdout = cmd.Stdout
	session.Stderr = cmd.Stderr

	if err := session.Start(cmd.Cmd); err != nil {
		return -1, fmt.Errorf("start command: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		if killErr := session.Signal(ssh.SIGKILL); killErr != nil {
			client.Logger.Debug().Err(killErr).Msg("Failed to signal remote command")
		}
		return -1, ctx.Err()
	}

	if err == nil {
		return 0, nil
	}

	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus(), nil
	}

	return -1, fmt.Errorf("wait for command: %w", err)
}
