package matrix

import (
	"fmt"
	"math"
	"strings"

	"github.com/CK6170/densevec-go/models"
)

const (
	ieeeExponentMask = 0x7FF0000000000000
	ieeeFractionMask = 0x000FFFFFFFFFFFFF
)

// ToIEEE754 returns the IEEE-754 binary64 encoding of f.
func ToIEEE754(f float64) uint64 {
	return math.Float64bits(f)
}

// checkElement classifies x by its encoding: an all-ones exponent is ±Inf
// when the fraction is zero and NaN otherwise.
func checkElement(x float64) models.ErrorCode {
	bits := ToIEEE754(x)
	if bits&ieeeExponentMask != ieeeExponentMask {
		return models.SUCCESS
	}
	if bits&ieeeFractionMask == 0 {
		return models.INFINITY_OVERFLOW
	}
	return models.NOT_NUMBER
}

// Classify reports whether x may be stored in a vector: SUCCESS for finite
// values, INFINITY_OVERFLOW for ±Inf and NOT_NUMBER for NaN.
func Classify(x float64) models.ErrorCode {
	return checkElement(x)
}

// FormatIEEE renders values as indexed decimal + hex-encoding rows.
func FormatIEEE(title string, values []float64) string {
	sb := &strings.Builder{}
	sb.WriteString(Line + "\n")
	sb.WriteString(title + " (IEEE754)\n")
	for i, val := range values {
		// Space flag keeps the decimal column aligned regardless of sign.
		fmt.Fprintf(sb, "[%03d]  % .12e  %016X\n", i, val, ToIEEE754(val))
	}
	sb.WriteString(Line)
	return sb.String()
}
