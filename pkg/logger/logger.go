package logger

import (
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init installs the process logger. Production always logs JSON; level and format
// fall back to env defaults when empty.
func Init(env string, opts ...Option) {
	o := options{level: "", format: ""}
	for _, fn := range opts {
		fn(&o)
	}

	level := slog.LevelDebug
	if env == "production" {
		level = slog.LevelInfo
	}
	if o.level != "" {
		level = ParseLevel(o.level)
	}

	var handler slog.Handler
	if env == "production" || o.format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

type options struct {
	level  string
	format string
}

type Option func(*options)

func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

func WithFormat(format string) Option {
	return func(o *options) { o.format = format }
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}
