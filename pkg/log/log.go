// Package log configures the process-wide slog logger.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(logLevel string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
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

// New returns a text logger writing to w at logLevel.
func New(w io.Writer, logLevel string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(logLevel),
	}))
}

// Setup installs a stderr text logger as the slog default.
func Setup(logLevel string) {
	slog.SetDefault(New(os.Stderr, logLevel))
}

// WithModule returns a logger tagged with module. It writes through the slog
// default current at each call, so a logger built before Setup still follows
// the configured level and output.
func WithModule(module string) *slog.Logger {
	return slog.New(defaultHandler{derive: func(h slog.Handler) slog.Handler { return h }}).With("module", module)
}

type defaultHandler struct {
	derive func(slog.Handler) slog.Handler
}

func (h defaultHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slog.Default().Handler().Enabled(ctx, level)
}

func (h defaultHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.derive(slog.Default().Handler()).Handle(ctx, record)
}

func (h defaultHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return defaultHandler{derive: func(base slog.Handler) slog.Handler {
		return h.derive(base).WithAttrs(attrs)
	}}
}

func (h defaultHandler) WithGroup(name string) slog.Handler {
	return defaultHandler{derive: func(base slog.Handler) slog.Handler {
		return h.derive(base).WithGroup(name)
	}}
}
