package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/CK6170/densevec-go/models"
)

// ToVecDense copies v into a gonum column vector, for callers that continue
// with gonum's linear algebra. It returns nil for a released vector.
func ToVecDense(v *Vector) *mat.VecDense {
	if !v.alive() {
		v.rep().warning(models.NULLPTR_ERROR)
		return nil
	}
	data := make([]float64, v.dim())
	copy(data, v.payload())
	v.rep().info(models.SUCCESS)
	return mat.NewVecDense(len(data), data)
}

// FromVecDense creates a vector from any gonum vector, validating its elements
// exactly like Create.
func FromVecDense(x mat.Vector, opts ...Option) (*Vector, models.ErrorCode) {
	if x == nil {
		reporter{newOptions(opts).logger}.severe(models.NULLPTR_ERROR)
		return nil, models.NULLPTR_ERROR
	}
	n := x.Len()
	data := make([]float64, n)
	for i := 0; i < n; i++ {
		data[i] = x.AtVec(i)
	}
	return Create(n, data, opts...)
}

// Format renders v as a column with gonum's matrix formatter; continuation
// lines start with prefix.
func Format(v *Vector, prefix string) string {
	d := ToVecDense(v)
	if d == nil {
		return "<released>"
	}
	return fmt.Sprintf("%v", mat.Formatted(d, mat.Prefix(prefix)))
}
