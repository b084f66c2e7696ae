package cmd

import (
	"errors"
	"fmt"
)

// ExitCodeError makes the process exit with Code without printing
// anything, for example to pass on the exit status of a command.
type ExitCodeError struct {
	Code int
}

// NewExitCodeError returns an error that carries an exit code.
func NewExitCodeError(code int) *ExitCodeError {
	return &ExitCodeError{Code: code}
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

func isExitCode(err error) bool {
	var exitErr *ExitCodeError
	return errors.As(err, &exitErr)
}
