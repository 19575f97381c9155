package config

import "errors"

var (
	ErrFailedToLoadConfig     = errors.New("failed to load config")
	ErrFailedToValidateConfig = errors.New("failed to validate config")
	ErrParseToml              = errors.New("failed to parse TOML")
	ErrInvalidDuration        = errors.New("invalid duration")

	ErrUnknownAppType  = errors.New("unknown app type")
	ErrMissingCommand  = errors.New("app command is required")
	ErrMissingListen   = errors.New("app listen address is required")
	ErrNegativeTimeout = errors.New("stop timeout cannot be negative")
	ErrInvalidEnvKey   = errors.New("invalid environment key")
	ErrAllowedHosts    = errors.New("invalid allowed hosts")
)
