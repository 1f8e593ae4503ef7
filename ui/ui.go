package ui

import (
	"bytes"
	"fmt"
	"io"
)

// RedWriter wraps an io.Writer and emits red-colored output. Defined at package scope
// because methods cannot be declared inside functions.
type RedWriter struct{ w io.Writer }

func (r RedWriter) Write(p []byte) (int, error) {
	out := append([]byte("\033[31m"), p...)
	out = append(out, []byte("\033[0m")...)
	if _, err := r.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// NewRedWriter returns a RedWriter wrapping the provided io.Writer.
func NewRedWriter(w io.Writer) RedWriter { return RedWriter{w: w} }

// LevelWriter colours each written line by the severity word it starts with:
// SEVERE red, WARNING bright yellow, INFO light green. Other lines pass through.
type LevelWriter struct{ w io.Writer }

// NewLevelWriter returns a LevelWriter wrapping w.
func NewLevelWriter(w io.Writer) LevelWriter { return LevelWriter{w: w} }

func (l LevelWriter) Write(p []byte) (int, error) {
	color := levelColor(p)
	if color == "" {
		return l.w.Write(p)
	}
	out := make([]byte, 0, len(p)+len(color)+4)
	out = append(out, color...)
	out = append(out, bytes.TrimRight(p, "\n")...)
	out = append(out, "\033[0m"...)
	if bytes.HasSuffix(p, []byte("\n")) {
		out = append(out, '\n')
	}
	if _, err := l.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

func levelColor(p []byte) string {
	switch {
	case bytes.HasPrefix(p, []byte("SEVERE")):
		return "\033[31m"
	case bytes.HasPrefix(p, []byte("WARNING")):
		return "\033[93m"
	case bytes.HasPrefix(p, []byte("INFO")):
		return "\033[92m"
	default:
		return ""
	}
}

// Debugf prints a yellow debug message when enabled is true.
func Debugf(enabled bool, format string, a ...interface{}) {
	if enabled {
		fmt.Print("\033[33m")
		fmt.Printf("[DEBUG] "+format, a...)
		fmt.Print("\033[0m")
	}
}

// Greenf prints a light green message.
func Greenf(format string, a ...interface{}) {
	fmt.Print("\033[92m")
	fmt.Printf(format, a...)
	fmt.Print("\033[0m")
}

// Warningf prints a bright yellow/orange warning.
func Warningf(format string, a ...interface{}) {
	fmt.Print("\033[93m")
	fmt.Printf(format, a...)
	fmt.Print("\033[0m")
}

// ClearScreen clears the terminal screen.
func ClearScreen() {
	fmt.Print("\033[2J\033[1;1H")
}
