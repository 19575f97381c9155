package main

import (
	"fmt"
	"strings"

	"github.com/atlanticdynamic/cartlaunch/internal/apps"
	"github.com/atlanticdynamic/cartlaunch/internal/config"
	"github.com/urfave/cli/v3"
)

// launchFlags returns a fresh set of the flags shared by the root command, run, and show.
// Flags carry parsed state, so each command gets its own instances.
func launchFlags() []cli.Flag {
	appTypes := make([]string, 0, len(apps.Types()))
	for _, t := range apps.Types() {
		appTypes = append(appTypes, string(t))
	}

	return []cli.Flag{
		&cli.StringFlag{
			Name:      "config",
			Aliases:   []string{"c"},
			Usage:     "Path to TOML configuration file",
			TakesFile: true,
			Local:     true,
			Sources:   cli.EnvVars("CARTLAUNCH_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "workdir",
			Aliases: []string{"w"},
			Usage:   "Working directory for the application, relative to the launcher's directory",
			Local:   true,
			Sources: cli.EnvVars("CARTLAUNCH_WORKDIR"),
		},
		&cli.StringFlag{
			Name:  "allowed-hosts",
			Usage: "Default for STARLETTE_ALLOWED_HOSTS when it is not already set",
			Local: true,
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (trace, debug, info, warn, error)",
			Local:   true,
			Sources: cli.EnvVars("CARTLAUNCH_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format (text, json)",
			Local: true,
		},
		&cli.StringFlag{
			Name:  "log-output",
			Usage: "Log destination (stderr, stdout, or a file path)",
			Local: true,
		},
		&cli.StringFlag{
			Name:  "app",
			Usage: fmt.Sprintf("Application type (%s)", strings.Join(appTypes, ", ")),
			Local: true,
		},
	}
}

// loadConfig resolves the launcher configuration: defaults, then the config file, then flags.
// Positional arguments replace the application command line.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		loaded, err := config.NewConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.IsSet("workdir") {
		cfg.WorkDir = cmd.String("workdir")
	}
	if cmd.IsSet("allowed-hosts") {
		cfg.AllowedHosts = cmd.String("allowed-hosts")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Log.Format = cmd.String("log-format")
	}
	if cmd.IsSet("log-output") {
		cfg.Log.Output = cmd.String("log-output")
	}
	if cmd.IsSet("app") {
		cfg.App.Type = config.AppType(cmd.String("app"))
	}
	if args := cmd.Args().Slice(); len(args) > 0 {
		cfg.App.Command = args[0]
		cfg.App.Args = args[1:]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
