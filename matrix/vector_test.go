package matrix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CK6170/densevec-go/logging"
	"github.com/CK6170/densevec-go/models"
)

type record struct {
	code  models.ErrorCode
	level models.Level
	loc   logging.Location
}

// recorder is a Logger that keeps every record in memory.
type recorder struct {
	records []record
}

func (r *recorder) Log(code models.ErrorCode, level models.Level, loc *logging.Location) models.ErrorCode {
	rec := record{code: code, level: level}
	if loc != nil {
		rec.loc = *loc
	}
	r.records = append(r.records, rec)
	return models.SUCCESS
}

func (r *recorder) has(code models.ErrorCode, level models.Level, function string) bool {
	for _, rec := range r.records {
		if rec.code == code && rec.level == level && rec.loc.Function == function {
			return true
		}
	}
	return false
}

func mustCreate(t *testing.T, data []float64, opts ...Option) *Vector {
	t.Helper()
	v, code := Create(len(data), data, opts...)
	require.Equal(t, models.SUCCESS, code)
	require.NotNil(t, v)
	return v
}

func TestCreateRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []float64
	}{
		{"Single", []float64{42}},
		{"Simple", []float64{1, 2, 3}},
		{"Mixed", []float64{-1.5, 0, 2.25, -0, math.MaxFloat64, -math.SmallestNonzeroFloat64}},
		{"Large", make([]float64, 1024)},
	}
	for i := range tests[3].data {
		tests[3].data[i] = float64(i) * 0.5
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustCreate(t, tt.data)
			assert.Equal(t, len(tt.data), v.Dim())
			for i, want := range tt.data {
				got, code := v.Element(i)
				require.Equal(t, models.SUCCESS, code)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestCreateCopiesSource(t *testing.T) {
	data := []float64{1, 2, 3}
	v := mustCreate(t, data)
	data[0] = -2
	got, _ := v.Element(0)
	assert.Equal(t, 1.0, got)
}

func TestCreateFailures(t *testing.T) {
	tests := []struct {
		name string
		dim  int
		data []float64
		want models.ErrorCode
	}{
		{"ZeroDim", 0, []float64{}, models.NULLPTR_ERROR},
		{"NilData", 3, nil, models.NULLPTR_ERROR},
		{"NegativeDim", -1, []float64{1}, models.INVALID_ARGUMENT},
		{"ShortData", 3, []float64{1, 2}, models.INVALID_ARGUMENT},
		{"NaNFirstWins", 3, []float64{math.NaN(), math.Inf(1), 0}, models.NOT_NUMBER},
		{"InfFirstWins", 3, []float64{0, math.Inf(-1), math.NaN()}, models.INFINITY_OVERFLOW},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, code := Create(tt.dim, tt.data)
			assert.Equal(t, tt.want, code)
			assert.Nil(t, v)
		})
	}
}

func TestCreateRejectsNonFiniteAtEveryPosition(t *testing.T) {
	bad := []struct {
		val  float64
		want models.ErrorCode
	}{
		{math.NaN(), models.NOT_NUMBER},
		{math.Inf(1), models.INFINITY_OVERFLOW},
		{math.Inf(-1), models.INFINITY_OVERFLOW},
	}
	const dim = 5
	for _, b := range bad {
		for pos := 0; pos < dim; pos++ {
			data := []float64{1, 2, 3, 4, 5}
			data[pos] = b.val
			v, code := Create(dim, data)
			assert.Equal(t, b.want, code, "value %v at %d", b.val, pos)
			assert.Nil(t, v)
		}
	}
}

func TestCreateMaxDimension(t *testing.T) {
	rec := &recorder{}
	v, code := Create(4, []float64{1, 2, 3, 4}, WithMaxDimension(3), WithLogger(rec))
	assert.Equal(t, models.ALLOCATION_ERROR, code)
	assert.Nil(t, v)
	assert.True(t, rec.has(models.ALLOCATION_ERROR, models.SEVERE, "Create"))
}

func TestAllocatedSize(t *testing.T) {
	for _, dim := range []int{1, 3, 17} {
		v := mustCreate(t, make([]float64, dim))
		assert.Equal(t, HeaderSize+dim*ElementSize, v.AllocatedSize())
		assert.Len(t, v.block, 1+dim)
	}
}

func TestElementBounds(t *testing.T) {
	v := mustCreate(t, []float64{1, 2, 3})

	for _, idx := range []int{-1, 3, 100} {
		got, code := v.Element(idx)
		assert.Equal(t, models.INDEX_OUT_OF_BOUND, code)
		assert.True(t, math.IsNaN(got))
		assert.Equal(t, models.INDEX_OUT_OF_BOUND, v.SetElement(idx, 1))
	}
}

func TestSetElement(t *testing.T) {
	v := mustCreate(t, []float64{1, 2, 3})

	require.Equal(t, models.SUCCESS, v.SetElement(1, 15.5))
	got, _ := v.Element(1)
	assert.Equal(t, 15.5, got)

	assert.Equal(t, models.NOT_NUMBER, v.SetElement(1, math.NaN()))
	assert.Equal(t, models.INFINITY_OVERFLOW, v.SetElement(1, math.Inf(1)))
	got, _ = v.Element(1)
	assert.Equal(t, 15.5, got)
}

func TestScale(t *testing.T) {
	t.Run("Zero", func(t *testing.T) {
		v := mustCreate(t, []float64{1, -2, 3.5})
		require.Equal(t, models.SUCCESS, v.Scale(0))
		assert.Equal(t, 3, v.Dim())
		for _, x := range v.Data() {
			assert.Zero(t, x)
		}
		assert.Zero(t, v.Norm(models.CHEBYSHEV))
	})

	t.Run("Simple", func(t *testing.T) {
		v := mustCreate(t, []float64{1, -2, 3})
		require.Equal(t, models.SUCCESS, v.Scale(-2))
		assert.Equal(t, []float64{-2, 4, -6}, v.Data())
	})

	t.Run("InvalidMultiplier", func(t *testing.T) {
		v := mustCreate(t, []float64{1, 2})
		assert.Equal(t, models.NOT_NUMBER, v.Scale(math.NaN()))
		assert.Equal(t, models.INFINITY_OVERFLOW, v.Scale(math.Inf(-1)))
		assert.Equal(t, []float64{1, 2}, v.Data())
	})

	t.Run("Overflow", func(t *testing.T) {
		for _, strict := range []bool{false, true} {
			var opts []Option
			if strict {
				opts = append(opts, WithStrictChecks())
			}
			v := mustCreate(t, []float64{1, -math.MaxFloat64 / 2, 3}, opts...)
			assert.Equal(t, models.INFINITY_OVERFLOW, v.Scale(4), "strict=%v", strict)
			assert.Equal(t, []float64{1, -math.MaxFloat64 / 2, 3}, v.Data())
		}
	})
}

func TestIncrementDecrement(t *testing.T) {
	a := mustCreate(t, []float64{1, 2, 3})
	b := mustCreate(t, []float64{10, 20, 30})

	require.Equal(t, models.SUCCESS, a.Increment(b))
	assert.Equal(t, []float64{11, 22, 33}, a.Data())

	require.Equal(t, models.SUCCESS, a.Decrement(b))
	assert.Equal(t, []float64{1, 2, 3}, a.Data())

	// Self-aliasing doubles the vector.
	require.Equal(t, models.SUCCESS, a.Increment(a))
	assert.Equal(t, []float64{2, 4, 6}, a.Data())
}

func TestIncrementIsAtomic(t *testing.T) {
	// Only index 1 overflows; index 0 stays finite.
	before := []float64{math.MaxFloat64, math.MaxFloat64, -5}
	a := mustCreate(t, before)
	b := mustCreate(t, []float64{-1, math.MaxFloat64, 7})

	assert.Equal(t, models.INFINITY_OVERFLOW, a.Increment(b))
	assert.Equal(t, before, a.Data())

	c := mustCreate(t, []float64{0, -math.MaxFloat64, 0})
	assert.Equal(t, models.INFINITY_OVERFLOW, a.Decrement(c))
	assert.Equal(t, before, a.Data())
}

func TestIncrementFailures(t *testing.T) {
	a := mustCreate(t, []float64{1, 2, 3})
	b := mustCreate(t, []float64{1, 2, 3, 4})

	assert.Equal(t, models.MISMATCHING_DIMENSIONS, a.Increment(b))
	assert.Equal(t, models.MISMATCHING_DIMENSIONS, a.Decrement(b))
	assert.Equal(t, models.NULLPTR_ERROR, a.Increment(nil))
	assert.Equal(t, models.NULLPTR_ERROR, a.Decrement(nil))
	assert.Equal(t, []float64{1, 2, 3}, a.Data())
}

func TestNorm(t *testing.T) {
	a := mustCreate(t, []float64{1, 2, 3})

	assert.InDelta(t, 3.7416573867739413, a.Norm(models.SECOND), 1e-12)
	assert.Equal(t, 6.0, a.Norm(models.FIRST))
	assert.Equal(t, 3.0, a.Norm(models.CHEBYSHEV))
	assert.True(t, math.IsNaN(a.Norm(models.NORM_AMOUNT)))
	assert.True(t, math.IsNaN(a.Norm(models.Norm(-1))))

	neg := mustCreate(t, []float64{-7, 2, -3})
	assert.Equal(t, 7.0, neg.Norm(models.CHEBYSHEV))
	assert.Equal(t, 12.0, neg.Norm(models.FIRST))
}

func TestApplyFunction(t *testing.T) {
	v := mustCreate(t, []float64{1, 2, 3})
	require.Equal(t, models.SUCCESS, v.ApplyFunction(func(x float64) float64 { return x * x }))
	assert.Equal(t, []float64{1, 4, 9}, v.Data())
	assert.Equal(t, models.NULLPTR_ERROR, v.ApplyFunction(nil))

	// Without strict checks the result is not validated.
	require.Equal(t, models.SUCCESS, v.ApplyFunction(func(x float64) float64 { return math.Log(x - 4) }))
	got, _ := v.Element(0)
	assert.True(t, math.IsNaN(got))
}

func TestApplyFunctionStrict(t *testing.T) {
	v := mustCreate(t, []float64{4, 1, 9}, WithStrictChecks())
	assert.Equal(t, models.NOT_NUMBER, v.ApplyFunction(func(x float64) float64 { return math.Sqrt(x - 2) }))
	assert.Equal(t, []float64{4, 1, 9}, v.Data())

	require.Equal(t, models.SUCCESS, v.ApplyFunction(math.Sqrt))
	assert.Equal(t, []float64{2, 1, 3}, v.Data())
}

func TestForEach(t *testing.T) {
	v := mustCreate(t, []float64{3, 1, 2})
	var seen []float64
	require.Equal(t, models.SUCCESS, v.ForEach(func(x float64) { seen = append(seen, x) }))
	assert.Equal(t, []float64{3, 1, 2}, seen)
	assert.Equal(t, models.NULLPTR_ERROR, v.ForEach(nil))
}

func TestSetData(t *testing.T) {
	v := mustCreate(t, []float64{1, 2, 3})

	require.Equal(t, models.SUCCESS, v.SetData(3, []float64{-2, 2, 3}))
	assert.Equal(t, []float64{-2, 2, 3}, v.Data())

	assert.Equal(t, models.MISMATCHING_DIMENSIONS, v.SetData(2, []float64{1, 2}))
	assert.Equal(t, models.MISMATCHING_DIMENSIONS, v.SetData(4, []float64{1, 2, 3, 4}))
	assert.Equal(t, models.NULLPTR_ERROR, v.SetData(3, nil))
	assert.Equal(t, models.INVALID_ARGUMENT, v.SetData(3, []float64{1, 2}))
	assert.Equal(t, models.NOT_NUMBER, v.SetData(3, []float64{7, 8, math.NaN()}))
	assert.Equal(t, []float64{-2, 2, 3}, v.Data())
}

func TestDataIsACopy(t *testing.T) {
	v := mustCreate(t, []float64{1, 2, 3})
	d := v.Data()
	d[0] = 100
	got, _ := v.Element(0)
	assert.Equal(t, 1.0, got)
}

func TestRelease(t *testing.T) {
	rec := &recorder{}
	v := mustCreate(t, []float64{1, 2, 3}, WithLogger(rec))
	v.Release()

	assert.Zero(t, v.Dim())
	assert.Zero(t, v.AllocatedSize())
	assert.Nil(t, v.Data())
	assert.Nil(t, v.Clone())
	assert.True(t, math.IsNaN(v.Norm(models.SECOND)))
	assert.Equal(t, models.NULLPTR_ERROR, v.Scale(2))
	assert.Equal(t, models.NULLPTR_ERROR, v.SetElement(0, 1))
	assert.Equal(t, models.NULLPTR_ERROR, v.SetData(3, []float64{1, 2, 3}))
	assert.Equal(t, "<released>", v.String())
	assert.True(t, rec.has(models.NULLPTR_ERROR, models.WARNING, "Vector.Dim"))
	assert.True(t, rec.has(models.NULLPTR_ERROR, models.WARNING, "Vector.AllocatedSize"))

	var nilVec *Vector
	assert.Zero(t, nilVec.Dim())
	assert.Equal(t, models.NULLPTR_ERROR, nilVec.Increment(v))
	v.Release() // no-op
}

func TestLoggingRecordsCallSite(t *testing.T) {
	rec := &recorder{}
	v := mustCreate(t, []float64{1, 2, 3}, WithLogger(rec))
	assert.True(t, rec.has(models.SUCCESS, models.INFO, "Create"))

	require.Equal(t, models.SUCCESS, v.Scale(2))
	assert.True(t, rec.has(models.SUCCESS, models.INFO, "Vector.Scale"))

	assert.Equal(t, models.NOT_NUMBER, v.SetElement(0, math.NaN()))
	assert.True(t, rec.has(models.NOT_NUMBER, models.SEVERE, "Vector.SetElement"))
	assert.True(t, rec.has(models.NOT_NUMBER, models.WARNING, "Vector.SetElement"))

	other := mustCreate(t, []float64{1, 2})
	assert.Equal(t, models.MISMATCHING_DIMENSIONS, v.Increment(other))
	assert.True(t, rec.has(models.MISMATCHING_DIMENSIONS, models.WARNING, "Vector.Increment"))

	last := rec.records[len(rec.records)-1]
	assert.Equal(t, "vector.go", last.loc.File)
	assert.Greater(t, last.loc.Line, 0)
}

func TestCloneInheritsOptions(t *testing.T) {
	rec := &recorder{}
	v := mustCreate(t, []float64{1, 2, 3}, WithLogger(rec), WithStrictChecks())
	c := v.Clone()
	require.NotNil(t, c)

	require.Equal(t, models.SUCCESS, c.SetElement(0, 9))
	got, _ := v.Element(0)
	assert.Equal(t, 1.0, got)

	n := len(rec.records)
	assert.Equal(t, models.INFINITY_OVERFLOW, c.ApplyFunction(func(x float64) float64 { return x * math.Inf(1) }))
	assert.Greater(t, len(rec.records), n)
	assert.Equal(t, []float64{9, 2, 3}, c.Data())
}

func TestToStrings(t *testing.T) {
	v := mustCreate(t, []float64{1, 2.5})
	text, csv := v.ToStrings("a", "%4.1f")
	assert.Contains(t, text, "a\n")
	assert.Contains(t, text, " 2.5\n")
	assert.Equal(t, "1,2.5", csv)
	assert.Equal(t, "[1 2.5]", v.String())
}
