package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// New creates a logger writing to w. An unknown level falls back to info;
// format "text" uses the human readable console writer, anything else JSON lines.
func New(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}

	var output io.Writer = w
	if format == FormatText {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	return zerolog.New(output).Level(logLevel).With().Timestamp().Logger()
}

// NewWithFile is New plus a JSON copy of every entry appended to path.
// The returned closer closes the log file.
func NewWithFile(level, format string, w io.Writer, path string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		return New(level, format, w), io.NopCloser(nil), nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}

	if w == nil {
		w = os.Stderr
	}
	var console io.Writer = w
	if format == FormatText {
		console = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	base := New(level, FormatJSON, io.Discard)
	logger := base.Output(zerolog.MultiLevelWriter(console, f))
	return logger, f, nil
}
