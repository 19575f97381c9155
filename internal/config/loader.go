package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// NewConfig loads configuration from a TOML file on top of Default and validates it.
func NewConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	cfg, err := NewConfigFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return cfg, nil
}

// NewConfigFromBytes loads configuration from TOML bytes on top of Default and validates it.
func NewConfigFromBytes(data []byte) (*Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToValidateConfig, err)
	}
	return cfg, nil
}

// decode unmarshals data over the defaults. Unknown keys are rejected so that typos in a
// deployment file surface at startup instead of being ignored.
func decode(data []byte) (*Config, error) {
	cfg := Default()

	// A file that names its own command must not inherit the default python entry point.
	var presence struct {
		App struct {
			Command *string   `toml:"command"`
			Args    *[]string `toml:"args"`
		} `toml:"app"`
	}
	if err := toml.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseToml, err)
	}
	if presence.App.Command != nil && presence.App.Args == nil {
		cfg.App.Args = nil
	}

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseToml, err)
	}

	return cfg, nil
}
