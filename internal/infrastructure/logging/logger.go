package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/pairing-core/internal/infrastructure/config"
)

// serviceName tags every entry written by pairingd.
const serviceName = "pairing-core"

// componentKey names the attribute set by Logger.Component.
const componentKey = "component"

// Logger is the structured logger handed to every pairingd component: the
// pairing issuer, the HTTP API, the account service, the mailer and the
// event sink. Entries carry service and version, plus component once a
// subsystem has taken its own child logger.
//
// A Logger is safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds the service logger from the logging section of the config.
// cfg.Output selects stderr; anything else writes to stdout.
func New(cfg config.LoggingConfig, version string) *Logger {
	out := io.Writer(os.Stdout)
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	return NewWithWriter(cfg, version, out)
}

// NewWithWriter is New writing to w. cfg.Output is ignored.
func NewWithWriter(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	h := newHandler(cfg.Format, w, parseLevel(cfg.Level)).WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})
	return &Logger{Logger: slog.New(h)}
}

// newHandler returns a text handler for format "text" and a JSON handler
// otherwise.
func newHandler(format string, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// parseLevel maps the configured level name to a slog.Level. "warning" is
// accepted for warn; unknown or empty names log at info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// With returns a child Logger that adds args to every entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component returns a child Logger tagged with component=name, e.g. "api"
// or "pairing".
func (l *Logger) Component(name string) *Logger {
	return l.With(componentKey, name)
}

// Default is the bootstrap logger used by pairingd until its config has been
// read: JSON on stdout at info, version "dev".
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}

// Discard returns a Logger that writes nowhere.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
