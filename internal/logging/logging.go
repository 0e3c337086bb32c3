// Package logging builds the process logger: readable text on stderr and
// JSON lines in the log file under the data directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel accepts debug, info, warn and error; "" means info.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// Setup returns the logger and a cleanup closing the log file. If the file
// cannot be opened, it logs to stderr only.
func Setup(stderr io.Writer, logFile string, level slog.Level) (*slog.Logger, func() error) {
	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})

	if logFile == "" {
		return slog.New(textHandler), func() error { return nil }
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		l := slog.New(textHandler)
		l.Error("create log dir, using stderr only", "err", err, "file", logFile)
		return l, func() error { return nil }
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		l := slog.New(textHandler)
		l.Error("open log file, using stderr only", "err", err, "file", logFile)
		return l, func() error { return nil }
	}

	logger := slog.New(slogmulti.Fanout(
		textHandler,
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}),
	))
	return logger, file.Close
}

// WithWriters is Setup over arbitrary writers.
func WithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slogmulti.Fanout(
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}),
	))
}
