// Package logging is the collaborator the vector engine reports outcomes to.
//
// The engine never formats or stores log records itself: it hands every
// ErrorCode, its severity and the call site to a Logger. Implementations in
// this package write formatted lines to a stream or file, forward records to
// log/slog, or drop them (Nop). A missing logger is never an error for the
// engine; it simply means nothing is recorded.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/CK6170/densevec-go/file"
	"github.com/CK6170/densevec-go/models"
	"github.com/CK6170/densevec-go/ui"
)

// Location identifies the call site that produced a record. Empty fields and a
// Line below 1 are treated as unknown.
type Location struct {
	File     string `json:"file,omitempty"`
	Function string `json:"function,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// Logger records one outcome. The returned code describes the logging attempt
// itself (IO_ERROR when there is nowhere to write), never the logged outcome.
type Logger interface {
	Log(code models.ErrorCode, level models.Level, loc *Location) models.ErrorCode
}

// Func adapts an ordinary function to Logger.
type Func func(code models.ErrorCode, level models.Level, loc *Location) models.ErrorCode

// Log calls f.
func (f Func) Log(code models.ErrorCode, level models.Level, loc *Location) models.ErrorCode {
	return f(code, level, loc)
}

type nop struct{}

func (nop) Log(models.ErrorCode, models.Level, *Location) models.ErrorCode { return models.SUCCESS }

// Nop returns a Logger that accepts and discards every record.
func Nop() Logger { return nop{} }

// StreamLogger writes one formatted line per record to an io.Writer:
//
//	LEVEL CODE: file function line;
//
// Writes are serialized so a single StreamLogger can be shared.
type StreamLogger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// New returns a StreamLogger writing to stdout.
func New() *StreamLogger {
	return &StreamLogger{w: os.Stdout}
}

// NewConsole returns a StreamLogger writing level-coloured lines to stderr.
func NewConsole() *StreamLogger {
	return &StreamLogger{w: ui.NewLevelWriter(os.Stderr)}
}

// NewWithWriter returns a StreamLogger writing to w. If w is also an io.Closer
// it is closed by Close.
func NewWithWriter(w io.Writer) *StreamLogger {
	l := &StreamLogger{w: w}
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// Open returns a StreamLogger appending to (or, with overwrite, truncating)
// filename. On failure it returns a nil logger and the open error; callers
// must check before use.
func Open(filename string, overwrite bool) (*StreamLogger, error) {
	f, err := file.OpenLog(filename, overwrite)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", filename, err)
	}
	return NewWithWriter(f), nil
}

// Log implements Logger.
func (l *StreamLogger) Log(code models.ErrorCode, level models.Level, loc *Location) models.ErrorCode {
	if l == nil {
		return models.IO_ERROR
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return models.IO_ERROR
	}
	if _, err := io.WriteString(l.w, Format(code, level, loc)); err != nil {
		return models.IO_ERROR
	}
	return models.SUCCESS
}

// Close releases the underlying sink when the logger owns one. The logger
// reports IO_ERROR for every record afterwards.
func (l *StreamLogger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w = nil
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// Format renders a record the way StreamLogger writes it, newline included.
func Format(code models.ErrorCode, level models.Level, loc *Location) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "%s %s", level, code)
	if loc != nil {
		// The first present segment is introduced by a colon.
		sep := ":"
		if loc.File != "" {
			fmt.Fprintf(sb, "%s %s", sep, loc.File)
			sep = ""
		}
		if loc.Function != "" {
			fmt.Fprintf(sb, "%s %s", sep, loc.Function)
			sep = ""
		}
		if loc.Line >= 1 {
			fmt.Fprintf(sb, "%s %d", sep, loc.Line)
		}
	}
	sb.WriteString(";\n")
	return sb.String()
}

// Multi fans a record out to every non-nil logger. It returns the first
// non-SUCCESS result, after all loggers have been called.
func Multi(loggers ...Logger) Logger {
	out := make([]Logger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			out = append(out, l)
		}
	}
	return Func(func(code models.ErrorCode, level models.Level, loc *Location) models.ErrorCode {
		res := models.SUCCESS
		for _, l := range out {
			if rc := l.Log(code, level, loc); rc != models.SUCCESS && res == models.SUCCESS {
				res = rc
			}
		}
		return res
	})
}
