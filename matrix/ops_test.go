package matrix

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CK6170/densevec-go/models"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{10, 20, 30}, 140},
		{"Zero", []float64{0, 0, 0}, []float64{1, 2, 3}, 0},
		{"Mixed", []float64{1, -1, 2}, []float64{1, 1, -2}, -4},
		{"Single", []float64{2}, []float64{3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustCreate(t, tt.a)
			b := mustCreate(t, tt.b)
			assert.Equal(t, tt.expected, Dot(a, b))
		})
	}
}

func TestDotFailures(t *testing.T) {
	a := mustCreate(t, []float64{1, 2, 3})
	b := mustCreate(t, []float64{1, 2, 3, 4})
	assert.True(t, math.IsNaN(Dot(a, b)))
	assert.True(t, math.IsNaN(Dot(a, nil)))
	assert.True(t, math.IsNaN(Dot(nil, b)))
}

func TestAddSub(t *testing.T) {
	a := mustCreate(t, []float64{1, 2, 3})
	b := mustCreate(t, []float64{10, 20, 30})
	want := mustCreate(t, []float64{11, 22, 33})

	sum := Add(a, b)
	require.NotNil(t, sum)
	assert.True(t, Equals(sum, want, models.CHEBYSHEV, 1e-9))

	diff := Sub(b, a)
	require.NotNil(t, diff)
	assert.Equal(t, []float64{9, 18, 27}, diff.Data())

	// Operands are untouched.
	assert.Equal(t, []float64{1, 2, 3}, a.Data())
	assert.Equal(t, []float64{10, 20, 30}, b.Data())
}

func TestAddSubRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 50; iter++ {
		dim := 1 + rng.Intn(64)
		x := make([]float64, dim)
		y := make([]float64, dim)
		for i := range x {
			x[i] = rng.NormFloat64() * 100
			y[i] = rng.NormFloat64() * 100
		}
		a := mustCreate(t, x)
		b := mustCreate(t, y)

		sum := Add(a, b)
		require.NotNil(t, sum)
		back := Sub(sum, b)
		require.NotNil(t, back)
		assert.True(t, Equals(back, a, models.SECOND, 1e-9), "dim %d", dim)
	}
}

func TestAddSubFailures(t *testing.T) {
	rec := &recorder{}
	a := mustCreate(t, []float64{1, 2, 3}, WithLogger(rec))
	b := mustCreate(t, []float64{1, 2, 3, 4})

	assert.Nil(t, Add(a, b))
	assert.Nil(t, Sub(a, b))
	assert.True(t, rec.has(models.MISMATCHING_DIMENSIONS, models.WARNING, "Add"))
	assert.True(t, rec.has(models.MISMATCHING_DIMENSIONS, models.WARNING, "Sub"))

	assert.Nil(t, Add(nil, b))
	assert.Nil(t, Sub(a, nil))
	assert.True(t, rec.has(models.NULLPTR_ERROR, models.WARNING, "Sub"))

	big := mustCreate(t, []float64{math.MaxFloat64, 1, 1})
	// MaxFloat64 + 1 rounds back to MaxFloat64.
	assert.NotNil(t, Add(a, big))
	assert.Nil(t, Add(big, big))
	assert.Nil(t, Sub(mustCreate(t, []float64{-math.MaxFloat64, 0, 0}), big))
	assert.Equal(t, []float64{math.MaxFloat64, 1, 1}, big.Data())
}

func TestAddOverflowIsLogged(t *testing.T) {
	rec := &recorder{}
	a := mustCreate(t, []float64{math.MaxFloat64, 0}, WithLogger(rec))
	assert.Nil(t, Add(a, a))
	assert.True(t, rec.has(models.INFINITY_OVERFLOW, models.SEVERE, "Vector.Increment"))
	assert.True(t, rec.has(models.INFINITY_OVERFLOW, models.WARNING, "Add"))
}

func TestEquals(t *testing.T) {
	a := mustCreate(t, []float64{1, 2, 3})
	b := mustCreate(t, []float64{1, 2, 3.0001})
	c := mustCreate(t, []float64{1, 2, 3, 4})

	assert.True(t, Equals(a, a, models.SECOND, 0))
	assert.True(t, Equals(a, b, models.CHEBYSHEV, 1e-3))
	assert.False(t, Equals(a, b, models.CHEBYSHEV, 1e-5))
	assert.True(t, Equals(a, b, models.FIRST, 1e-3))
	// Failed subtraction and invalid norms compare unequal.
	assert.False(t, Equals(a, c, models.SECOND, 1e9))
	assert.False(t, Equals(a, nil, models.SECOND, 1e9))
	assert.False(t, Equals(a, a, models.NORM_AMOUNT, 1e9))
}

func TestClone(t *testing.T) {
	a := mustCreate(t, []float64{1, 2, 3})
	c := Clone(a)
	require.NotNil(t, c)
	assert.Equal(t, a.Data(), c.Data())
	assert.NotSame(t, &a.block[0], &c.block[0])

	require.Equal(t, models.SUCCESS, c.Scale(2))
	assert.Equal(t, []float64{1, 2, 3}, a.Data())

	a.Release()
	assert.Equal(t, []float64{2, 4, 6}, c.Data())
	assert.Nil(t, Clone(a))
	assert.Nil(t, Clone(nil))
}

func TestCopy(t *testing.T) {
	t.Run("SameSize", func(t *testing.T) {
		dest := mustCreate(t, []float64{0, 0, 0})
		src := mustCreate(t, []float64{1, 2, 3})
		start := &dest.block[0]

		require.Equal(t, models.SUCCESS, Copy(dest, src))
		assert.Equal(t, []float64{1, 2, 3}, dest.Data())
		assert.Same(t, start, &dest.block[0])
	})

	t.Run("Shrinks", func(t *testing.T) {
		dest := mustCreate(t, []float64{9, 9, 9, 9})
		src := mustCreate(t, []float64{1, 2})

		require.Equal(t, models.SUCCESS, Copy(dest, src))
		assert.Equal(t, 2, dest.Dim())
		assert.Equal(t, HeaderSize+2*ElementSize, dest.AllocatedSize())
		assert.Equal(t, []float64{1, 2}, dest.Data())
	})

	t.Run("Amount", func(t *testing.T) {
		dest := mustCreate(t, []float64{7, 8})
		src := mustCreate(t, []float64{1, 2, 3})

		assert.Equal(t, models.AMOUNT, Copy(dest, src))
		assert.Equal(t, []float64{7, 8}, dest.Data())
	})

	t.Run("Nil", func(t *testing.T) {
		v := mustCreate(t, []float64{1})
		assert.Equal(t, models.NULLPTR_ERROR, Copy(nil, v))
		assert.Equal(t, models.NULLPTR_ERROR, Copy(v, nil))
	})

	t.Run("Self", func(t *testing.T) {
		v := mustCreate(t, []float64{1, 2, 3})
		assert.Equal(t, models.MEMORY_INTERSECTION, Copy(v, v))
	})
}

func TestCopyOverlap(t *testing.T) {
	// Vectors carved out of one allocation, as an arena would hand them out.
	carve := func(shared []uint64, from, dim int) *Vector {
		v := &Vector{block: shared[from : from+1+dim], opts: newOptions(nil)}
		v.block[0] = uint64(dim)
		return v
	}

	t.Run("Overlapping", func(t *testing.T) {
		shared := make([]uint64, 8)
		dest := carve(shared, 0, 4) // bytes [0, 40)
		src := carve(shared, 3, 2)  // bytes [24, 48)
		assert.Equal(t, models.MEMORY_INTERSECTION, Copy(dest, src))
		assert.Equal(t, 4, dest.Dim())
	})

	t.Run("Adjacent", func(t *testing.T) {
		shared := make([]uint64, 8)
		dest := carve(shared, 0, 3) // bytes [0, 32)
		src := carve(shared, 4, 2)  // bytes [32, 56)
		require.NoError(t, src.SetData(2, []float64{5, 6}).Err())
		assert.Equal(t, models.SUCCESS, Copy(dest, src))
		assert.Equal(t, []float64{5, 6}, dest.Data())
	})

	t.Run("SmallerSourceBelowDest", func(t *testing.T) {
		// The ranges touch but do not intersect, although the distance between
		// starts is smaller than dest's size.
		shared := make([]uint64, 8)
		src := carve(shared, 0, 1)  // bytes [0, 16)
		dest := carve(shared, 2, 3) // bytes [16, 48)
		require.NoError(t, src.SetElement(0, 42).Err())
		assert.Equal(t, models.SUCCESS, Copy(dest, src))
		assert.Equal(t, []float64{42}, dest.Data())
	})
}

func TestMove(t *testing.T) {
	dest := mustCreate(t, []float64{0, 0, 0})
	src := mustCreate(t, []float64{1, 2, 3})
	released := src

	require.Equal(t, models.SUCCESS, Move(dest, &src))
	assert.Nil(t, src)
	assert.Equal(t, []float64{1, 2, 3}, dest.Data())
	assert.Equal(t, models.NULLPTR_ERROR, released.SetElement(0, 1))
}

func TestMoveFailureKeepsSource(t *testing.T) {
	dest := mustCreate(t, []float64{0})
	src := mustCreate(t, []float64{1, 2, 3})

	assert.Equal(t, models.AMOUNT, Move(dest, &src))
	require.NotNil(t, src)
	assert.Equal(t, []float64{1, 2, 3}, src.Data())

	assert.Equal(t, models.MEMORY_INTERSECTION, Move(src, &src))
	assert.NotNil(t, src)
	assert.Equal(t, models.NULLPTR_ERROR, Move(dest, nil))
}
