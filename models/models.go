// Package models defines the enumerations and JSON-serialized structures shared
// between the vector engine, its loggers, and the command-line/web front ends.
//
// ErrorCode is the only failure channel of the engine: every fallible operation
// returns one instead of panicking, and loggers turn it into text with String.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorCode identifies the outcome of an engine operation.
type ErrorCode int

const (
	SUCCESS ErrorCode = iota
	INVALID_ARGUMENT
	MISMATCHING_DIMENSIONS
	INDEX_OUT_OF_BOUND
	INFINITY_OVERFLOW
	NOT_NUMBER
	ALLOCATION_ERROR
	NULLPTR_ERROR
	FILE_NOT_FOUND
	VECTOR_NOT_FOUND
	IO_ERROR
	MEMORY_INTERSECTION
	// AMOUNT reports that a destination has too little capacity for a copy.
	AMOUNT
	UNKNOWN
)

var codeNames = [...]string{
	SUCCESS:                "SUCCESS",
	INVALID_ARGUMENT:       "INVALID_ARGUMENT",
	MISMATCHING_DIMENSIONS: "MISMATCHING_DIMENSIONS",
	INDEX_OUT_OF_BOUND:     "INDEX_OUT_OF_BOUND",
	INFINITY_OVERFLOW:      "INFINITY_OVERFLOW",
	NOT_NUMBER:             "NOT_NUMBER",
	ALLOCATION_ERROR:       "ALLOCATION_ERROR",
	NULLPTR_ERROR:          "NULLPTR_ERROR",
	FILE_NOT_FOUND:         "FILE_NOT_FOUND",
	VECTOR_NOT_FOUND:       "VECTOR_NOT_FOUND",
	IO_ERROR:               "IO_ERROR",
	MEMORY_INTERSECTION:    "MEMORY_INTERSECTION",
	AMOUNT:                 "AMOUNT",
	UNKNOWN:                "UNKNOWN",
}

// String implements fmt.Stringer.
func (c ErrorCode) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Error implements error so a code can travel through error-returning APIs and
// be matched with errors.Is.
func (c ErrorCode) Error() string { return c.String() }

// OK reports whether c is SUCCESS.
func (c ErrorCode) OK() bool { return c == SUCCESS }

// Err returns nil for SUCCESS and c otherwise.
func (c ErrorCode) Err() error {
	if c == SUCCESS {
		return nil
	}
	return c
}

// ParseErrorCode is the inverse of String. Unknown names yield UNKNOWN and false.
func ParseErrorCode(s string) (ErrorCode, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range codeNames {
		if name == s {
			return ErrorCode(i), true
		}
	}
	return UNKNOWN, false
}

// MarshalJSON encodes the code by name.
func (c ErrorCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the name produced by MarshalJSON.
func (c *ErrorCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	code, ok := ParseErrorCode(s)
	if !ok {
		return fmt.Errorf("unknown error code %q", s)
	}
	*c = code
	return nil
}

// Level is the severity attached to a log record.
type Level int

const (
	SEVERE Level = iota
	WARNING
	INFO
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case SEVERE:
		return "SEVERE"
	case WARNING:
		return "WARNING"
	case INFO:
		return "INFO"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// MarshalJSON encodes the level by name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// ParseLevel is the inverse of Level.String.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SEVERE":
		return SEVERE, true
	case "WARNING":
		return WARNING, true
	case "INFO":
		return INFO, true
	default:
		return INFO, false
	}
}

// UnmarshalJSON accepts the name produced by MarshalJSON.
func (l *Level) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	level, ok := ParseLevel(s)
	if !ok {
		return fmt.Errorf("unknown level %q", s)
	}
	*l = level
	return nil
}

// Norm selects how a vector's magnitude is measured.
type Norm int

const (
	// CHEBYSHEV is the largest absolute element.
	CHEBYSHEV Norm = iota
	// FIRST is the sum of absolute elements.
	FIRST
	// SECOND is the Euclidean length.
	SECOND
	// NORM_AMOUNT is the number of valid kinds; as a kind it is invalid and
	// every norm computed with it is NaN.
	NORM_AMOUNT
)

// String implements fmt.Stringer.
func (n Norm) String() string {
	switch n {
	case CHEBYSHEV:
		return "CHEBYSHEV"
	case FIRST:
		return "FIRST"
	case SECOND:
		return "SECOND"
	default:
		return fmt.Sprintf("Norm(%d)", int(n))
	}
}

// ParseNorm maps user input (names or the usual l1/l2/inf aliases) to a Norm.
func ParseNorm(s string) (Norm, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chebyshev", "inf", "max", "linf":
		return CHEBYSHEV, true
	case "first", "l1", "1":
		return FIRST, true
	case "second", "l2", "2", "euclidean":
		return SECOND, true
	default:
		return NORM_AMOUNT, false
	}
}

// VectorFile is the on-disk shape of a named vector set (the typical
// `vectors.json`).
type VectorFile struct {
	// TOLERANCE is an optional default for equality checks.
	TOLERANCE float64              `json:"TOLERANCE,omitempty"`
	VECTORS   map[string][]float64 `json:"VECTORS"`
}
