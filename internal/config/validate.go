package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/atlanticdynamic/cartlaunch/internal/hostguard"
	"github.com/atlanticdynamic/cartlaunch/internal/logging"
)

// Validate checks the configuration and returns every problem found, joined.
func (c *Config) Validate() error {
	errz := []error{}

	if _, err := hostguard.New(c.AllowedHosts); err != nil {
		errz = append(errz, fmt.Errorf("%w: %w", ErrAllowedHosts, err))
	}

	for key := range c.Env.Defaults {
		if key == "" || strings.ContainsAny(key, "=\x00") {
			errz = append(errz, fmt.Errorf("%w in env.defaults: %q", ErrInvalidEnvKey, key))
		}
	}

	if !logging.ValidLevel(c.Log.Level) {
		errz = append(errz, fmt.Errorf("%w: %q", logging.ErrUnknownLevel, c.Log.Level))
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		errz = append(errz, err)
	}

	errz = append(errz, c.App.validate())

	return errors.Join(errz...)
}

func (a *App) validate() error {
	errz := []error{}

	if !slices.Contains(AppTypes, a.Type) {
		errz = append(errz, fmt.Errorf("%w: %q", ErrUnknownAppType, a.Type))
	}

	switch a.Type {
	case AppTypeExec, AppTypeProcess:
		if strings.TrimSpace(a.Command) == "" {
			errz = append(errz, fmt.Errorf("%w for type %s", ErrMissingCommand, a.Type))
		}
	case AppTypeEcho:
		if a.Listen == "" {
			errz = append(errz, ErrMissingListen)
		}
	}

	if a.StopTimeout < 0 {
		errz = append(errz, fmt.Errorf("%w: %s", ErrNegativeTimeout, a.StopTimeout))
	}

	for key := range a.Env {
		if key == "" || strings.ContainsAny(key, "=\x00") {
			errz = append(errz, fmt.Errorf("%w in app.env: %q", ErrInvalidEnvKey, key))
		}
	}

	return errors.Join(errz...)
}
