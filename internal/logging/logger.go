// Package logging provides the leveled logger used by cerebunit and the
// adapters that turn validation verdicts into log records or plain text.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cerebunit/internal/validation"
)

// LevelTrace is a custom level below Debug.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps "info", "debug", "trace", "warn" and "error" to a slog
// level. Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled text logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// VerdictLogger logs each verdict at info level, or warn when the model
// failed.
func VerdictLogger(logger *slog.Logger) validation.VerdictHook {
	return func(v validation.Verdict) {
		if logger == nil {
			return
		}
		level := slog.LevelInfo
		if !v.Passed {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, "verdict",
			"test", v.Test,
			"model", v.Model,
			"passed", v.Passed,
			"prediction", v.Prediction.String(),
			"observation", v.Observation.String(),
		)
	}
}

// VerdictPrinter writes each verdict sentence on its own line.
func VerdictPrinter(w io.Writer) validation.VerdictHook {
	return func(v validation.Verdict) {
		fmt.Fprintln(w, v.Sentence)
	}
}

// Verdicts fans a verdict out to several hooks in order.
func Verdicts(hooks ...validation.VerdictHook) validation.VerdictHook {
	return func(v validation.Verdict) {
		for _, h := range hooks {
			if h != nil {
				h(v)
			}
		}
	}
}
