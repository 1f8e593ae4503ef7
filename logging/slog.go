package logging

import (
	"context"
	"log/slog"

	"github.com/CK6170/densevec-go/models"
)

// SlogLogger forwards records to a *slog.Logger as structured attributes.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlog wraps l. A nil l yields a logger that reports IO_ERROR.
func NewSlog(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// Log implements Logger. SEVERE maps to Error, WARNING to Warn and INFO to Info.
func (s *SlogLogger) Log(code models.ErrorCode, level models.Level, loc *Location) models.ErrorCode {
	if s == nil || s.l == nil {
		return models.IO_ERROR
	}
	attrs := []slog.Attr{slog.String("code", code.String())}
	if loc != nil {
		if loc.File != "" {
			attrs = append(attrs, slog.String("file", loc.File))
		}
		if loc.Function != "" {
			attrs = append(attrs, slog.String("function", loc.Function))
		}
		if loc.Line >= 1 {
			attrs = append(attrs, slog.Int("line", loc.Line))
		}
	}
	s.l.LogAttrs(context.Background(), slogLevel(level), "vector operation", attrs...)
	return models.SUCCESS
}

func slogLevel(level models.Level) slog.Level {
	switch level {
	case models.SEVERE:
		return slog.LevelError
	case models.WARNING:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
