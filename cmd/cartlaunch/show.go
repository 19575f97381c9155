package main

import (
	"context"
	"fmt"
	"os"

	"github.com/atlanticdynamic/cartlaunch/internal/environ"
	"github.com/atlanticdynamic/cartlaunch/internal/fancy"
	"github.com/atlanticdynamic/cartlaunch/internal/launcher"
	"github.com/urfave/cli/v3"
)

func newShowCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the resolved configuration without launching anything",
		ArgsUsage: "[-- command args...]",
		Flags:     launchFlags(),
		Action:    showAction,
	}
}

func showAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	l, err := launcher.New(cfg)
	if err != nil {
		return cli.Exit(err, 1)
	}
	dir, err := l.ResolveWorkingDirectory()
	if err != nil {
		return cli.Exit(err, 1)
	}

	current, set := os.LookupEnv(environ.AllowedHostsKey)
	allowed := fmt.Sprintf("%s (unset, will default)", cfg.AllowedHosts)
	if set {
		allowed = fmt.Sprintf("%q (already set, kept)", current)
	}

	out := cmd.Root().Writer
	_, _ = fmt.Fprintln(out, cfg)
	_, _ = fmt.Fprintf(out, "\nResolved working directory: %s\n", fancy.PathText(dir))
	_, _ = fmt.Fprintf(out, "%s: %s\n", fancy.EnvText(environ.AllowedHostsKey), allowed)
	return nil
}
