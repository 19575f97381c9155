package apps

import (
	"errors"
	"fmt"
)

// Sentinel errors for application construction and startup
var (
	ErrNilConfig       = errors.New("app config cannot be nil")
	ErrUnknownAppType  = errors.New("unknown app type")
	ErrExpandCommand   = errors.New("failed to expand app command")
	ErrEmptyCommand    = errors.New("app command is empty")
	ErrCommandNotFound = errors.New("app command not found")
	ErrStartFailed     = errors.New("failed to start app")
	ErrAlreadyRunning  = errors.New("app is already running")
)

// ExitError reports that the application terminated with a non-zero exit code.
type ExitError struct {
	Code int
}

// Error implements the error interface
func (e *ExitError) Error() string {
	return fmt.Sprintf("app exited with code %d", e.Code)
}

// ExitCode returns the exit code of the application
func (e *ExitError) ExitCode() int {
	return e.Code
}
