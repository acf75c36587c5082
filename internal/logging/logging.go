package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
	slogmulti "github.com/samber/slog-multi"
)

type Options struct {
	Level string
	File  string
}

// Preinit installs a debug console logger so anything logged before the
// config is read still reaches stderr.
func Preinit() {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	})))
}

// Init installs the default logger. The returned closer releases the log
// file, if one was opened.
func Init(opts Options) (io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var file *os.File
	if opts.File != "" {
		file, err = os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
	}

	slog.SetDefault(slog.New(NewHandler(os.Stderr, file, level)))

	if file == nil {
		return nopCloser{}, nil
	}
	return file, nil
}

// NewHandler builds the console handler for w, fanned out to a JSON handler
// on file when file is non-nil.
func NewHandler(w io.Writer, file io.Writer, level slog.Level) slog.Handler {
	handler := slog.Handler(console.NewHandler(w, &console.HandlerOptions{
		AddSource: level == slog.LevelDebug,
		Level:     level,
	}))
	if file == nil {
		return handler
	}
	return slogmulti.Fanout(handler, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
