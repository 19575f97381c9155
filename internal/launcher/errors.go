package launcher

import "errors"

var (
	ErrNilConfig       = errors.New("launcher config cannot be nil")
	ErrInvalidConfig   = errors.New("invalid launcher config")
	ErrAlreadyLaunched = errors.New("launcher has already been used")
	ErrConfigureEnv    = errors.New("failed to configure environment")
	ErrWorkDir         = errors.New("failed to establish working directory")
	ErrLaunch          = errors.New("failed to launch application")
	ErrShutdownTimeout = errors.New("application did not return before the shutdown timeout")
)
