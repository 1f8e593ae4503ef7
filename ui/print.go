package ui

import (
	"fmt"
	"io"
	"strings"
)

// MaxPrintedElements caps how many elements FormatVector shows before eliding.
const MaxPrintedElements = 24

// Line is the separator printed around vector dumps.
const Line = "------------------------------------------------------------------"

// FormatVector renders a trimmed, indexed view of values: at most
// MaxPrintedElements rows, then "..." when more remain.
func FormatVector(title string, values []float64) string {
	sb := &strings.Builder{}
	writeVector(sb, title, values)
	return sb.String()
}

func writeVector(w io.Writer, title string, values []float64) {
	fmt.Fprintln(w, Line)
	fmt.Fprintln(w, title, " (", len(values), ")")
	max := len(values)
	if max > MaxPrintedElements {
		max = MaxPrintedElements
	}
	for i := 0; i < max; i++ {
		fmt.Fprintf(w, "[%03d] % .12g\n", i, values[i])
	}
	if len(values) > max {
		fmt.Fprintln(w, "...")
	}
	fmt.Fprintln(w, Line)
}
