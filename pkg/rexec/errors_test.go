package rexec

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		message  string
		sentinel error
	}{
		{
			name:     "command",
			err:      &Error{Command: "false", Status: 1},
			message:  "error 1: false",
			sentinel: ErrCommand,
		},
		{
			name:     "command with stderr",
			err:      &Error{Command: "ls /x", Status: 2, Stderr: "ls: /x: No such file\n\n"},
			message:  "error 2: ls /x\nls: /x: No such file",
			sentinel: ErrCommand,
		},
		{
			name:     "connection",
			err:      &Error{Kind: KindConnection, Host: "web1", Command: "true", Status: 255},
			message:  "cannot connect to web1: true",
			sentinel: ErrConnection,
		},
		{
			name:     "unexpected status",
			err:      &Error{Kind: KindUnexpectedStatus, Command: "test -e /x", Status: 2},
			message:  "unexpected status 2: test -e /x",
			sentinel: ErrUnexpectedStatus,
		},
		{
			name:     "message override",
			err:      &Error{Kind: KindUsage, Message: "bad call", Stderr: "details"},
			message:  "bad call\ndetails",
			sentinel: ErrUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			assert.ErrorIs(t, tt.err, tt.sentinel)

			wrapped := fmt.Errorf("deploy: %w", tt.err)
			var execErr *Error
			assert.True(t, errors.As(wrapped, &execErr))
			assert.Equal(t, tt.err.Kind, execErr.Kind)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "command", KindCommand.String())
	assert.Equal(t, "usage", KindUsage.String())
	assert.Equal(t, "connection", KindConnection.String())
	assert.Equal(t, "unexpected-status", KindUnexpectedStatus.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}

func TestJoinCleanup(t *testing.T) {
	first, second := errors.New("first"), errors.New("second")

	assert.Nil(t, joinCleanup(nil, nil))
	assert.Same(t, first, joinCleanup(first, nil))
	assert.Same(t, second, joinCleanup(nil, second))

	joined := joinCleanup(first, second)
	assert.ErrorIs(t, joined, first)
	assert.ErrorIs(t, joined, second)
}
