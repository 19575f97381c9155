// Package writers opens the destination for the launcher's own logs. Stdout normally belongs
// to the launched application, so the default is stderr.
package writers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriterType is the kind of log destination
type WriterType string

const (
	WriterTypeStdout  WriterType = "stdout"
	WriterTypeStderr  WriterType = "stderr"
	WriterTypeFile    WriterType = "file"
	WriterTypeUnknown WriterType = "unknown"
)

const filePrefix = "file://"

var ErrUnsupportedOutput = errors.New("unsupported log output")

// ParseWriterType classifies an output string. Anything with a scheme other than file:// is
// unknown; anything else that is not a stream name is a file path.
func ParseWriterType(output string) WriterType {
	switch {
	case output == "" || output == "stderr":
		return WriterTypeStderr
	case output == "stdout":
		return WriterTypeStdout
	case strings.HasPrefix(output, filePrefix):
		return WriterTypeFile
	case strings.Contains(output, "://"):
		return WriterTypeUnknown
	case strings.ContainsAny(output, `/\`) || strings.HasSuffix(output, ".log"):
		return WriterTypeFile
	}
	return WriterTypeUnknown
}

// CreateWriter opens the destination described by output and returns it with a close
// function. Closing a standard stream is a no-op.
func CreateWriter(output string) (io.Writer, func() error, error) {
	switch ParseWriterType(output) {
	case WriterTypeStderr:
		return os.Stderr, nopCloser, nil
	case WriterTypeStdout:
		return os.Stdout, nopCloser, nil
	case WriterTypeFile:
		return openLogFile(strings.TrimPrefix(output, filePrefix))
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedOutput, output)
}

func nopCloser() error { return nil }

// openLogFile appends to path, creating it and its parent directories.
func openLogFile(path string) (io.Writer, func() error, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file, file.Close, nil
}
