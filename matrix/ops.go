package matrix

import (
	"math"

	"github.com/CK6170/densevec-go/logging"
	"github.com/CK6170/densevec-go/models"
)

// loggerOf picks the logger for an operation spanning several vectors: the
// first operand that carries one wins.
func loggerOf(vs ...*Vector) logging.Logger {
	for _, v := range vs {
		if v != nil && v.opts.logger != nil {
			return v.opts.logger
		}
	}
	return nil
}

// overlaps reports whether the blocks of a and b share any byte.
func overlaps(a, b *Vector) bool {
	aStart, aEnd := a.span()
	bStart, bEnd := b.span()
	return aStart < bEnd && bStart < aEnd
}

// Copy writes src's dimension and elements into dest's existing block.
//
// dest must be at least as large as src (AMOUNT otherwise) and the two blocks
// must not overlap (MEMORY_INTERSECTION). When src is smaller, dest shrinks to
// src's dimension; its block is never reallocated or grown.
func Copy(dest, src *Vector) models.ErrorCode {
	r := reporter{loggerOf(dest, src)}
	if !dest.alive() || !src.alive() {
		r.warning(models.NULLPTR_ERROR)
		return models.NULLPTR_ERROR
	}
	if dest.size() < src.size() {
		r.warning(models.AMOUNT)
		return models.AMOUNT
	}
	if overlaps(dest, src) {
		r.warning(models.MEMORY_INTERSECTION)
		return models.MEMORY_INTERSECTION
	}
	dim := src.dim()
	dest.block = dest.block[:1+dim]
	dest.block[0] = uint64(dim)
	copy(dest.payload(), src.payload())
	r.info(models.SUCCESS)
	return models.SUCCESS
}

// Move copies *src into dest, then releases *src and clears the caller's
// handle. When the copy fails nothing is released and *src is kept.
func Move(dest *Vector, src **Vector) models.ErrorCode {
	if src == nil {
		reporter{loggerOf(dest)}.warning(models.NULLPTR_ERROR)
		return models.NULLPTR_ERROR
	}
	if code := Copy(dest, *src); code != models.SUCCESS {
		return code
	}
	r := reporter{loggerOf(dest, *src)}
	(*src).release()
	*src = nil
	r.info(models.SUCCESS)
	return models.SUCCESS
}

// Clone returns an independent copy of v, or nil when v is nil or released.
func Clone(v *Vector) *Vector {
	if !v.alive() {
		v.rep().warning(models.NULLPTR_ERROR)
		return nil
	}
	return v.Clone()
}

// Add returns a + b as a new vector, or nil on failure. The failure code is
// logged, not returned; use Increment on a clone to observe it.
func Add(a, b *Vector) *Vector {
	return combine(a, b, false)
}

// Sub returns a - b as a new vector, or nil on failure. See Add.
func Sub(a, b *Vector) *Vector {
	return combine(a, b, true)
}

func combine(a, b *Vector, minus bool) *Vector {
	r := reporter{loggerOf(a, b)}
	if !a.alive() || !b.alive() {
		r.warning(models.NULLPTR_ERROR)
		return nil
	}
	if a.dim() != b.dim() {
		r.warning(models.MISMATCHING_DIMENSIONS)
		return nil
	}
	out, code := Create(a.dim(), a.payload(), inherit(a.opts))
	if code != models.SUCCESS {
		return nil
	}
	if minus {
		code = out.Decrement(b)
	} else {
		code = out.Increment(b)
	}
	if code != models.SUCCESS {
		r.warning(code)
		out.release()
		return nil
	}
	r.info(models.SUCCESS)
	return out
}

// Dot returns the sum of element-wise products of a and b, accumulated in
// index order. It returns NaN when an operand is missing or the dimensions
// differ.
func Dot(a, b *Vector) float64 {
	r := reporter{loggerOf(a, b)}
	if !a.alive() || !b.alive() {
		r.warning(models.NULLPTR_ERROR)
		return math.NaN()
	}
	if a.dim() != b.dim() {
		r.warning(models.MISMATCHING_DIMENSIONS)
		return math.NaN()
	}
	x, y := a.payload(), b.payload()
	var res float64
	for i := range x {
		res += x[i] * y[i]
	}
	r.info(models.SUCCESS)
	return res
}

// Equals reports whether the kind-norm of a - b is within tol.
//
// A failed subtraction (missing operand, dimension mismatch, overflow) also
// yields false; callers that need to tell the cases apart should use Sub.
func Equals(a, b *Vector, kind models.Norm, tol float64) bool {
	diff := Sub(a, b)
	if diff == nil {
		return false
	}
	n := diff.Norm(kind)
	diff.release()
	reporter{loggerOf(a, b)}.info(models.SUCCESS)
	return n <= tol
}
