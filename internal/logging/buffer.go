package logging

import (
	"log/slog"

	"github.com/robbyt/go-loglater"
)

// Buffer collects log records emitted before the final handler is known (the log level and
// format come from a config file that has not been read yet). Replay forwards them once the
// real handler exists.
type Buffer struct {
	collector *loglater.LogCollector
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{collector: loglater.NewLogCollector(nil)}
}

// Handler returns the slog handler that records into the buffer.
func (b *Buffer) Handler() slog.Handler {
	return b.collector
}

// Len returns the number of buffered records.
func (b *Buffer) Len() int {
	return len(b.collector.GetLogs())
}

// Replay sends every buffered record to handler, oldest first.
func (b *Buffer) Replay(handler slog.Handler) error {
	return b.collector.PlayLogs(handler)
}
