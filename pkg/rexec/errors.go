package rexec

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why an execution failed.
type Kind int

const (
	// KindCommand is a command that ran to completion with a non-zero
	// exit status.
	KindCommand Kind = iota
	// KindUsage is a malformed call that was rejected before anything
	// was executed.
	KindUsage
	// KindConnection is a remote host that could not be reached or
	// authenticated to. Retrying or picking another host may help.
	KindConnection
	// KindUnexpectedStatus is a probe that exited with a status outside
	// of its documented range.
	KindUnexpectedStatus
)

var (
	// ErrCommand matches errors of KindCommand.
	ErrCommand = errors.New("command failed")
	// ErrUsage matches errors of KindUsage.
	ErrUsage = errors.New("invalid usage")
	// ErrConnection matches errors of KindConnection.
	ErrConnection = errors.New("connection failed")
	// ErrUnexpectedStatus matches errors of KindUnexpectedStatus.
	ErrUnexpectedStatus = errors.New("unexpected exit status")
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindUsage:
		return "usage"
	case KindConnection:
		return "connection"
	case KindUnexpectedStatus:
		return "unexpected-status"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindUsage:
		return ErrUsage
	case KindConnection:
		return ErrConnection
	case KindUnexpectedStatus:
		return ErrUnexpectedStatus
	}
	return ErrCommand
}

// Error is a classified execution failure. Use errors.Is with one of the
// sentinel errors to test the kind and errors.As to inspect the details.
type Error struct {
	Kind    Kind
	Host    string
	Command string
	Status  int
	Stderr  string
	// Message replaces the default description when set.
	Message string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		switch e.Kind {
		case KindConnection:
			msg = fmt.Sprintf("cannot connect to %s: %s", e.Host, e.Command)
		case KindUnexpectedStatus:
			msg = fmt.Sprintf("unexpected status %d: %s", e.Status, e.Command)
		default:
			msg = fmt.Sprintf("error %d: %s", e.Status, e.Command)
		}
	}

	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\n" + stderr
	}

	return msg
}

// Unwrap returns the sentinel error of the kind.
func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

func usageErrorf(format string, args ...any) error {
	return &Error{Kind: KindUsage, Message: fmt.Sprintf(format, args...)}
}

func connectionError(host, command string, result *Result) error {
	err := &Error{Kind: KindConnection, Host: host, Command: command, Status: -1}
	if result != nil {
		err.Status = result.Status
		err.Stderr = result.Stderr
	}
	return err
}
