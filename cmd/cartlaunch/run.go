package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/atlanticdynamic/cartlaunch/internal/apps"
	"github.com/atlanticdynamic/cartlaunch/internal/launcher"
	"github.com/atlanticdynamic/cartlaunch/internal/logging"
	"github.com/urfave/cli/v3"
)

func newRunCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Configure the environment and start the application (default)",
		ArgsUsage: "[-- command args...]",
		Flags:     launchFlags(),
		Action:    runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	// Nothing is known about log level or output until the config is loaded.
	buffer := logging.NewBuffer()
	bootLogger := slog.New(buffer.Handler())
	bootLogger.Debug("Loading launcher configuration", "config", cmd.String("config"), "args", cmd.Args().Slice())

	cfg, err := loadConfig(cmd)
	if err != nil {
		// boot records are all debug level; show them so the failure has context
		_ = buffer.Replay(logging.SetupHandlerText("debug", errWriter(cmd)))
		return cli.Exit(err, 1)
	}
	bootLogger.Debug("Configuration loaded", "app", cfg.App.Type, "command", cfg.App.Command)

	handler, closeLog, err := setupLogger(cfg.Log, buffer)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer func() { _ = closeLog() }()

	l, err := launcher.New(cfg, launcher.WithLogHandler(handler))
	if err != nil {
		return cli.Exit(err, 1)
	}

	if err := l.Launch(ctx); err != nil {
		return exitError(err)
	}
	return nil
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// exitError converts a launch failure into a cli exit error. The application's own exit code
// is kept when it reported one.
func exitError(err error) error {
	var coder apps.ExitCoder
	if errors.As(err, &coder) {
		return cli.Exit(err, coder.ExitCode())
	}
	return cli.Exit(err, 1)
}
