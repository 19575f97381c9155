// Package config holds the launcher configuration. A Config is resolved exactly once at
// startup (defaults, then an optional TOML file, then CLI flags) and is read-only afterwards.
package config

import (
	"maps"
	"slices"
	"time"

	"github.com/atlanticdynamic/cartlaunch/internal/environ"
)

// AppType names an application entry point the launcher can hand off to.
type AppType string

const (
	// AppTypeExec replaces the launcher process with the target command.
	AppTypeExec AppType = "exec"
	// AppTypeProcess runs the target command as a supervised child process.
	AppTypeProcess AppType = "process"
	// AppTypeEcho serves a fixed HTTP response in-process, behind the host guard.
	AppTypeEcho AppType = "echo"
)

// AppTypes lists every supported AppType.
var AppTypes = []AppType{AppTypeExec, AppTypeProcess, AppTypeEcho}

const (
	DefaultCommand     = "python3"
	DefaultEntryPoint  = "shopping_cart_python/main.py"
	DefaultListen      = ":8080"
	DefaultResponse    = "ok"
	DefaultStopTimeout = 10 * time.Second
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config is the fully resolved launcher configuration.
type Config struct {
	// AllowedHosts is the default for STARLETTE_ALLOWED_HOSTS, applied only when the variable
	// is absent from the environment.
	AllowedHosts string `toml:"allowed_hosts"`

	// WorkDir is the directory to run the application in. Empty means the launcher's own
	// directory; relative paths are resolved against it.
	WorkDir string `toml:"workdir"`

	Env Env     `toml:"env"`
	Log Logging `toml:"log"`
	App App     `toml:"app"`
}

// Env describes additional set-if-absent environment defaults.
type Env struct {
	// File is an optional dotenv file, relative to the working directory.
	File     string            `toml:"file"`
	Defaults map[string]string `toml:"defaults"`
}

// Logging configures the launcher's own log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// App describes the application entry point.
type App struct {
	Type AppType `toml:"type"`

	// Command and Args start the target for exec and process types. Both support
	// ${VAR} and ${VAR:default} placeholders, expanded after the environment is configured.
	Command string            `toml:"command"`
	Args    []string          `toml:"args"`
	Env     map[string]string `toml:"env"`

	// StopTimeout is how long a process target gets between SIGTERM and SIGKILL.
	StopTimeout Duration `toml:"stop_timeout"`

	// Listen and Response configure the echo type.
	Listen   string `toml:"listen"`
	Response string `toml:"response"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		AllowedHosts: environ.AllowedHostsDefault,
		Log: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		App: App{
			Type:        AppTypeExec,
			Command:     DefaultCommand,
			Args:        []string{DefaultEntryPoint},
			StopTimeout: FromDuration(DefaultStopTimeout),
			Listen:      DefaultListen,
			Response:    DefaultResponse,
		},
	}
}

// EnvDefaults returns every set-if-absent default the launcher applies, including
// STARLETTE_ALLOWED_HOSTS.
func (c *Config) EnvDefaults() map[string]string {
	out := make(map[string]string, len(c.Env.Defaults)+1)
	maps.Copy(out, c.Env.Defaults)
	out[environ.AllowedHostsKey] = c.AllowedHosts
	return out
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Env.Defaults = maps.Clone(c.Env.Defaults)
	clone.App.Args = slices.Clone(c.App.Args)
	clone.App.Env = maps.Clone(c.App.Env)
	return &clone
}
