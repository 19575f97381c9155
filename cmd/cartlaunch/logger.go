package main

import (
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/cartlaunch/internal/config"
	"github.com/atlanticdynamic/cartlaunch/internal/logging"
	"github.com/atlanticdynamic/cartlaunch/internal/logging/writers"
)

// setupLogger builds the handler described by cfg and installs it as the slog default.
// Records captured in buffer before the config was known are replayed into it.
func setupLogger(cfg config.Logging, buffer *logging.Buffer) (slog.Handler, func() error, error) {
	w, closer, err := writers.CreateWriter(cfg.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log output: %w", err)
	}

	handler, err := logging.NewHandler(cfg.Level, cfg.Format, w)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	slog.SetDefault(slog.New(handler))

	if buffer != nil && buffer.Len() > 0 {
		if err := buffer.Replay(handler); err != nil {
			slog.Warn("Failed to replay bootstrap logs", "error", err)
		}
	}
	return handler, closer, nil
}
