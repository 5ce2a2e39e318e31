package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EMPTY   = ""
	DEBUG   = "debug"
	INFO    = "info"
	WARN    = "warn"
	ERROR   = "error"
	JSON    = "json"
	TEXT    = "text"
	SERVICE = "service"

	// PhoneKey is the attribute name whose values are masked when MaskPhones is set.
	PhoneKey = "phone"
)

type Logger struct {
	*slog.Logger
}

type Config struct {
	Level      string
	Format     string
	Output     io.Writer
	AddSource  bool
	Service    string
	MaskPhones bool
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}
	if cfg.MaskPhones {
		opts.ReplaceAttr = maskPhoneAttr
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case TEXT:
		handler = slog.NewTextHandler(cfg.Output, opts)
	default:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	if cfg.Service != EMPTY {
		handler = handler.WithAttrs([]slog.Attr{slog.String(SERVICE, cfg.Service)})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return New(Config{Output: io.Discard, Level: ERROR})
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// With returns a child logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Fatal logs a critical error and exits the application with status code 1.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

func maskPhoneAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == PhoneKey && a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, MaskPhone(a.Value.String()))
	}
	return a
}

// MaskPhone keeps the first three and the last three characters and stars
// out the rest, preserving length: +34600111222 becomes +34******222.
func MaskPhone(phone string) string {
	const keepHead, keepTail = 3, 3
	if len(phone) <= keepHead+keepTail {
		return phone
	}
	return phone[:keepHead] + strings.Repeat("*", len(phone)-keepHead-keepTail) + phone[len(phone)-keepTail:]
}
