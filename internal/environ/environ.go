// Package environ prepares the process environment before the launcher hands off to the
// target application. Every mutation here is set-if-absent: a value that the caller already
// exported, even an empty one, is never replaced.
package environ

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/joho/godotenv"
)

// AllowedHostsKey is read by the downstream web framework's host validation middleware.
const AllowedHostsKey = "STARLETTE_ALLOWED_HOSTS"

// AllowedHostsDefault disables host validation when the caller has not configured it.
const AllowedHostsDefault = "*"

var (
	ErrEmptyKey       = errors.New("environment key cannot be empty")
	ErrSetEnv         = errors.New("failed to set environment variable")
	ErrReadDotEnvFile = errors.New("failed to read dotenv file")
)

// SetDefault sets key to value only when key is absent from the environment. It reports
// whether the value was applied.
func SetDefault(key, value string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	if _, exists := os.LookupEnv(key); exists {
		return false, nil
	}

	if err := os.Setenv(key, value); err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrSetEnv, key, err)
	}
	return true, nil
}

// ApplyDefaults runs SetDefault for every entry, in key order so that results are stable.
// It returns the keys that were applied. Keys that fail are collected and reported together.
func ApplyDefaults(defaults map[string]string) ([]string, error) {
	var applied []string
	var errs []error

	for _, key := range slices.Sorted(maps.Keys(defaults)) {
		ok, err := SetDefault(key, defaults[key])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			applied = append(applied, key)
		}
	}

	return applied, errors.Join(errs...)
}

// LoadDotEnv reads a dotenv file and applies its entries with set-if-absent semantics.
// A missing file is an error; callers skip this step when no file is configured.
func LoadDotEnv(path string) ([]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrReadDotEnvFile, path, err)
	}
	return ApplyDefaults(values)
}

// Merge returns base with overrides appended in KEY=value form, sorted by key. The result is
// meant for a child process: later entries win when the OS resolves duplicates.
func Merge(base []string, overrides map[string]string) []string {
	out := slices.Clone(base)
	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		out = append(out, key+"="+overrides[key])
	}
	return out
}
