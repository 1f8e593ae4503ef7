package matrix

import (
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"github.com/CK6170/densevec-go/logging"
	"github.com/CK6170/densevec-go/models"
)

// reporter sends outcomes to an optional logger, tagging each record with the
// exported operation that produced it.
type reporter struct {
	l logging.Logger
}

func (r reporter) info(code models.ErrorCode)    { r.log(code, models.INFO) }
func (r reporter) warning(code models.ErrorCode) { r.log(code, models.WARNING) }
func (r reporter) severe(code models.ErrorCode)  { r.log(code, models.SEVERE) }

// check validates x and reports a non-finite value as SEVERE.
func (r reporter) check(x float64) models.ErrorCode {
	code := checkElement(x)
	if code != models.SUCCESS {
		r.severe(code)
	}
	return code
}

// checkAll validates values in index order; the first offending element
// decides the code.
func (r reporter) checkAll(values []float64) models.ErrorCode {
	for _, x := range values {
		if code := r.check(x); code != models.SUCCESS {
			return code
		}
	}
	return models.SUCCESS
}

func (r reporter) log(code models.ErrorCode, level models.Level) {
	if r.l == nil {
		return
	}
	// The logged outcome never depends on whether logging worked.
	_ = r.l.Log(code, level, callSite())
}

// callSite returns the innermost exported frame outside reporter, so records
// name the operation a caller invoked rather than an internal helper. The
// innermost unexported frame is used when no exported one is found.
func callSite() *logging.Location {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var fallback *logging.Location
	for {
		f, more := frames.Next()
		if f.Function != "" && !strings.Contains(f.Function, ".reporter.") {
			name := shortFuncName(f.Function)
			loc := &logging.Location{File: filepath.Base(f.File), Function: name, Line: f.Line}
			if isExported(name) {
				return loc
			}
			if fallback == nil {
				fallback = loc
			}
		}
		if !more {
			return fallback
		}
	}
}

func isExported(name string) bool {
	last := name[strings.LastIndex(name, ".")+1:]
	return last != "" && unicode.IsUpper(rune(last[0]))
}

var receiverCleaner = strings.NewReplacer("(*", "", ")", "")

// shortFuncName turns "github.com/x/matrix.(*Vector).Scale" into "Vector.Scale".
func shortFuncName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return receiverCleaner.Replace(name)
}
