package config

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON at info level in production,
// human-readable debug text elsewhere, with source locations in development.
func (c *Config) NewLogger() *slog.Logger {
	return c.newLogger(os.Stdout)
}

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: c.IsDevelopment(),
		Level:     slog.LevelDebug,
	}

	var handler slog.Handler
	if c.IsProduction() {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", "iris"))
}
