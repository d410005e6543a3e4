// Package logging builds the structured loggers used across cleandoc.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures a logger.
type Options struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer
	// Prefix is the component name prefix
	Prefix string
	// TimeFormat is the time format string (default: RFC3339)
	TimeFormat string
	// ReportCaller adds file:line to log entries
	ReportCaller bool
	// ReportTimestamp adds timestamps to log entries
	ReportTimestamp bool
	// JSON switches to JSON lines output
	JSON bool
}

// DefaultOptions returns the options used by the server.
func DefaultOptions() Options {
	return Options{
		Level:           "info",
		Output:          os.Stderr,
		Prefix:          "cleandoc",
		TimeFormat:      time.RFC3339,
		ReportTimestamp: true,
	}
}

// ParseLevel converts a level name to log.Level. Unknown names map to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal", "critical":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// New creates a logger with the given options.
func New(opts Options) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger := log.NewWithOptions(out, log.Options{
		Level:           ParseLevel(opts.Level),
		Prefix:          opts.Prefix,
		TimeFormat:      opts.TimeFormat,
		ReportCaller:    opts.ReportCaller,
		ReportTimestamp: opts.ReportTimestamp,
	})
	if opts.JSON {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger
}

// NewWithFile creates a logger that writes to opts.Output and appends to
// the file at path. The returned closer closes the file. An empty path
// behaves like New with a no-op closer.
func NewWithFile(path string, opts Options) (*log.Logger, io.Closer, error) {
	if path == "" {
		return New(opts), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil, nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	opts.Output = io.MultiWriter(out, f)
	return New(opts), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
