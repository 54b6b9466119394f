package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	BackendSlog    = "slog"
	BackendZerolog = "zerolog"
)

// New builds a Logger writing to w at the given level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info and unknown backends
// fall back to slog.
func New(backend, level string, w io.Writer) Logger {
	switch strings.ToLower(backend) {
	case BackendZerolog:
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil || lvl == zerolog.NoLevel {
			lvl = zerolog.InfoLevel
		}
		zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
		return NewZerologLogger(zl)
	default:
		lvl := new(slog.LevelVar)
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			lvl.Set(slog.LevelInfo)
		}
		h := slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: lvl,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
				}
				return a
			},
		})
		return NewSlogLogger(slog.New(h))
	}
}

// Discard returns a logger that drops all output. Useful for tests.
func Discard() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})))
}
