// Package matrix implements fixed-dimension vectors of float64 and the
// arithmetic, norms and copy rules between them.
//
// A Vector owns one allocation: a header word holding the dimension followed
// directly by the elements. Every element a caller can observe is finite;
// values are validated before they are written, and a failing mutation leaves
// the vector exactly as it was (see ApplyFunction for the one exception).
// Operations report outcomes as models.ErrorCode and, when a logger was
// injected with WithLogger, log every outcome with its call site.
//
// A Vector has one owner and is not safe for concurrent use.
package matrix

import (
	"fmt"
	"math"
	"strings"
	"unsafe"

	"gonum.org/v1/gonum/floats"

	"github.com/CK6170/densevec-go/models"
)

const (
	// HeaderSize is the size in bytes of the dimension header.
	HeaderSize = 8
	// ElementSize is the size in bytes of one element.
	ElementSize = 8
)

// Line is the separator used by the text renderings.
const Line = "------------------------------------------------------------------"

// Vector is a dense vector of finite float64 values with a fixed dimension.
//
// The zero value and released vectors hold no storage; their fallible
// operations fail with NULLPTR_ERROR.
type Vector struct {
	// block[0] is the dimension, block[1:] the element bits.
	// len(block) == 1+dim at all times.
	block []uint64
	opts  options
}

// Create allocates a vector of dimension dim holding a copy of data.
//
// dim must be at least 1 and data must hold exactly dim finite values. Elements
// are checked in order before anything is allocated; the first non-finite one
// decides between INFINITY_OVERFLOW and NOT_NUMBER. On failure the returned
// vector is nil.
func Create(dim int, data []float64, opts ...Option) (*Vector, models.ErrorCode) {
	o := newOptions(opts)
	r := reporter{o.logger}
	if dim == 0 || data == nil {
		r.severe(models.NULLPTR_ERROR)
		return nil, models.NULLPTR_ERROR
	}
	if dim < 0 || len(data) != dim {
		r.severe(models.INVALID_ARGUMENT)
		return nil, models.INVALID_ARGUMENT
	}
	if code := r.checkAll(data); code != models.SUCCESS {
		return nil, code
	}
	if dim > o.maxDim {
		r.severe(models.ALLOCATION_ERROR)
		return nil, models.ALLOCATION_ERROR
	}
	block, ok := allocBlock(dim)
	if !ok {
		r.severe(models.ALLOCATION_ERROR)
		return nil, models.ALLOCATION_ERROR
	}
	v := &Vector{block: block, opts: o}
	copy(v.payload(), data)
	r.info(models.SUCCESS)
	return v, models.SUCCESS
}

// allocBlock allocates header + dim elements in one slice. A failing
// allocation is reported instead of crashing the caller.
func allocBlock(dim int) (block []uint64, ok bool) {
	defer func() {
		if recover() != nil {
			block, ok = nil, false
		}
	}()
	block = make([]uint64, 1+dim)
	block[0] = uint64(dim)
	return block, true
}

func (v *Vector) alive() bool {
	return v != nil && len(v.block) > 1
}

func (v *Vector) rep() reporter {
	if v == nil {
		return reporter{}
	}
	return reporter{v.opts.logger}
}

func (v *Vector) dim() int {
	if !v.alive() {
		return 0
	}
	return int(v.block[0])
}

// payload views the elements of the block as float64 without copying.
func (v *Vector) payload() []float64 {
	if !v.alive() {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&v.block[1])), len(v.block)-1)
}

func (v *Vector) size() int {
	if !v.alive() {
		return 0
	}
	return HeaderSize + v.dim()*ElementSize
}

// span returns the byte range [start, end) of the vector's block.
func (v *Vector) span() (start, end uintptr) {
	start = uintptr(unsafe.Pointer(&v.block[0]))
	return start, start + uintptr(v.size())
}

// Dim returns the number of elements. Released vectors report 0.
func (v *Vector) Dim() int {
	if !v.alive() {
		v.rep().warning(models.NULLPTR_ERROR)
		return 0
	}
	v.rep().info(models.SUCCESS)
	return v.dim()
}

// AllocatedSize returns HeaderSize + Dim()*ElementSize, the size of the block
// backing v. Released vectors report 0.
func (v *Vector) AllocatedSize() int {
	if !v.alive() {
		v.rep().warning(models.NULLPTR_ERROR)
		return 0
	}
	v.rep().info(models.SUCCESS)
	return v.size()
}

// Data returns a copy of the elements.
func (v *Vector) Data() []float64 {
	if !v.alive() {
		v.rep().warning(models.NULLPTR_ERROR)
		return nil
	}
	out := make([]float64, v.dim())
	copy(out, v.payload())
	v.rep().info(models.SUCCESS)
	return out
}

// Element returns the element at index.
func (v *Vector) Element(index int) (float64, models.ErrorCode) {
	r := v.rep()
	if !v.alive() {
		r.warning(models.NULLPTR_ERROR)
		return math.NaN(), models.NULLPTR_ERROR
	}
	if index < 0 || index >= v.dim() {
		r.warning(models.INDEX_OUT_OF_BOUND)
		return math.NaN(), models.INDEX_OUT_OF_BOUND
	}
	val := v.payload()[index]
	r.info(models.SUCCESS)
	return val, models.SUCCESS
}

// SetElement replaces the element at index with a finite value.
func (v *Vector) SetElement(index int, val float64) models.ErrorCode {
	r := v.rep()
	if !v.alive() {
		r.warning(models.NULLPTR_ERROR)
		return models.NULLPTR_ERROR
	}
	if index < 0 || index >= v.dim() {
		r.warning(models.INDEX_OUT_OF_BOUND)
		return models.INDEX_OUT_OF_BOUND
	}
	if code := r.check(val); code != models.SUCCESS {
		r.warning(code)
		return code
	}
	v.payload()[index] = val
	r.info(models.SUCCESS)
	return models.SUCCESS
}

// Scale multiplies every element by multiplier.
//
// Overflow is predicted from the largest-magnitude element only. For a uniform
// scale that element overflows first, so the prediction is exact. With
// WithStrictChecks every product is validated instead.
func (v *Vector) Scale(multiplier float64) models.ErrorCode {
	r := v.rep()
	if !v.alive() {
		r.warning(models.NULLPTR_ERROR)
		return models.NULLPTR_ERROR
	}
	if code := r.check(multiplier); code != models.SUCCESS {
		r.warning(code)
		return code
	}
	data := v.payload()
	if v.opts.strict {
		tmp := make([]float64, len(data))
		copy(tmp, data)
		floats.Scale(multiplier, tmp)
		if code := r.checkAll(tmp); code != models.SUCCESS {
			r.warning(code)
			return code
		}
		copy(data, tmp)
		r.info(models.SUCCESS)
		return models.SUCCESS
	}
	if code := r.check(data[maxAbsIndex(data)] * multiplier); code != models.SUCCESS {
		r.warning(code)
		return code
	}
	floats.Scale(multiplier, data)
	r.info(models.SUCCESS)
	return models.SUCCESS
}

// maxAbsIndex returns the index of the first element of largest magnitude.
func maxAbsIndex(data []float64) int {
	idx := 0
	for i := 1; i < len(data); i++ {
		if math.Abs(data[i]) > math.Abs(data[idx]) {
			idx = i
		}
	}
	return idx
}

// Increment adds other to v element-wise.
//
// The sum is built in a scratch buffer and validated in full before it
// replaces v's elements, so on any failure v is unchanged.
func (v *Vector) Increment(other *Vector) models.ErrorCode {
	return v.accumulate(other, false)
}

// Decrement subtracts other from v element-wise, with the same all-or-nothing
// guarantee as Increment.
func (v *Vector) Decrement(other *Vector) models.ErrorCode {
	return v.accumulate(other, true)
}

func (v *Vector) accumulate(other *Vector, minus bool) models.ErrorCode {
	r := v.rep()
	if !v.alive() || !other.alive() {
		r.warning(models.NULLPTR_ERROR)
		return models.NULLPTR_ERROR
	}
	if other.dim() != v.dim() {
		r.warning(models.MISMATCHING_DIMENSIONS)
		return models.MISMATCHING_DIMENSIONS
	}
	data := v.payload()
	tmp := make([]float64, len(data))
	if minus {
		floats.SubTo(tmp, data, other.payload())
	} else {
		floats.AddTo(tmp, data, other.payload())
	}
	if code := r.checkAll(tmp); code != models.SUCCESS {
		r.warning(code)
		return code
	}
	copy(data, tmp)
	r.info(models.SUCCESS)
	return models.SUCCESS
}

// Norm returns the magnitude of v under kind. An invalid kind or a released
// vector yields NaN.
func (v *Vector) Norm(kind models.Norm) float64 {
	r := v.rep()
	if !v.alive() {
		r.warning(models.NULLPTR_ERROR)
		return math.NaN()
	}
	data := v.payload()
	var res float64
	switch kind {
	case models.CHEBYSHEV:
		res = floats.Norm(data, math.Inf(1))
	case models.FIRST:
		res = floats.Norm(data, 1)
	case models.SECOND:
		res = floats.Norm(data, 2)
	default:
		r.warning(models.INVALID_ARGUMENT)
		return math.NaN()
	}
	r.info(models.SUCCESS)
	return res
}

// ApplyFunction replaces every element x with fn(x), in index order.
//
// Results are not validated: fn can leave NaN or ±Inf behind. With
// WithStrictChecks the mapped values are validated first and v is left
// unchanged when one is not finite.
func (v *Vector) ApplyFunction(fn func(float64) float64) models.ErrorCode {
	r := v.rep()
	if !v.alive() || fn == nil {
		r.warning(models.NULLPTR_ERROR)
		return models.NULLPTR_ERROR
	}
	data := v.payload()
	if v.opts.strict {
		tmp := make([]float64, len(data))
		for i, x := range data {
			tmp[i] = fn(x)
		}
		if code := r.checkAll(tmp); code != models.SUCCESS {
			r.warning(code)
			return code
		}
		copy(data, tmp)
	} else {
		for i, x := range data {
			data[i] = fn(x)
		}
	}
	r.info(models.SUCCESS)
	return models.SUCCESS
}

// ForEach calls fn once per element, in index order.
func (v *Vector) ForEach(fn func(float64)) models.ErrorCode {
	r := v.rep()
	if !v.alive() || fn == nil {
		r.warning(models.NULLPTR_ERROR)
		return models.NULLPTR_ERROR
	}
	for _, x := range v.payload() {
		fn(x)
	}
	r.info(models.SUCCESS)
	return models.SUCCESS
}

// SetData re-seeds every element from data.
//
// dim must equal Dim() and data must hold exactly dim finite values; nothing
// is written unless all of them pass.
func (v *Vector) SetData(dim int, data []float64) models.ErrorCode {
	r := v.rep()
	if !v.alive() {
		r.warning(models.NULLPTR_ERROR)
		return models.NULLPTR_ERROR
	}
	if dim != v.dim() {
		r.warning(models.MISMATCHING_DIMENSIONS)
		return models.MISMATCHING_DIMENSIONS
	}
	if data == nil {
		r.warning(models.NULLPTR_ERROR)
		return models.NULLPTR_ERROR
	}
	if len(data) != dim {
		r.warning(models.INVALID_ARGUMENT)
		return models.INVALID_ARGUMENT
	}
	if code := r.checkAll(data); code != models.SUCCESS {
		r.warning(code)
		return code
	}
	copy(v.payload(), data)
	r.info(models.SUCCESS)
	return models.SUCCESS
}

// Clone returns a new vector with v's elements and options. It returns nil for
// a released vector.
func (v *Vector) Clone() *Vector {
	r := v.rep()
	if !v.alive() {
		r.warning(models.NULLPTR_ERROR)
		return nil
	}
	out, code := Create(v.dim(), v.payload(), inherit(v.opts))
	if code != models.SUCCESS {
		return nil
	}
	r.info(models.SUCCESS)
	return out
}

// Release frees v's storage. Every later fallible operation on v fails with
// NULLPTR_ERROR.
func (v *Vector) Release() {
	if !v.alive() {
		return
	}
	v.release()
	v.rep().info(models.SUCCESS)
}

func (v *Vector) release() {
	v.block = nil
}

// String renders v as "[x0 x1 ...]".
func (v *Vector) String() string {
	if !v.alive() {
		return "<released>"
	}
	return fmt.Sprint(v.payload())
}

// ToStrings formats the vector for display/logging.
//
// format is a fmt verb applied to each element (default "%10.4f"). The second
// string is a comma-separated rendering suitable for appending to CSV logs.
func (v *Vector) ToStrings(title, format string) (string, string) {
	sb := &strings.Builder{}
	sb.WriteString(Line + "\n")
	sb.WriteString(title + "\n")
	fmtStr := "%10.4f"
	if format != "" {
		fmtStr = format
	}
	data := v.payload()
	csv := make([]string, len(data))
	for i, val := range data {
		fmt.Fprintf(sb, fmtStr+"\n", val)
		csv[i] = fmt.Sprint(val)
	}
	sb.WriteString(Line)
	return sb.String(), strings.Join(csv, ",")
}
