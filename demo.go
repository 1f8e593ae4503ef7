package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/CK6170/densevec-go/logging"
	"github.com/CK6170/densevec-go/matrix"
	"github.com/CK6170/densevec-go/models"
	"github.com/CK6170/densevec-go/ui"
)

var errStopped = errors.New("stopped by user")

// demo walks through the engine operations one step at a time.
type demo struct {
	out    io.Writer
	logger logging.Logger
	// wait is asked before every step after the first; false stops the demo.
	// nil runs straight through.
	wait func(prompt string) bool
	// ieee adds the IEEE-754 encoding of every printed vector.
	ieee bool
	// gonum prints vectors with gonum's matrix formatter instead of one line.
	gonum bool

	one, two, n *matrix.Vector
}

type step struct {
	title string
	run   func(d *demo) error
}

var steps = []step{
	{"create one = [1 2 3], two = clone(one), re-seed two", (*demo).create},
	{"one.SetElement(1, 15.5)", (*demo).setElement},
	{"two += one", (*demo).increment},
	{"n = two - two", (*demo).subSelf},
	{"two *= 0", (*demo).scaleZero},
	{"n = one + two", (*demo).add},
	{"dot(n, one), equals(n, one), equals(n, two)", (*demo).compare},
	{"n.ApplyFunction(x*x), n.ForEach(print)", (*demo).apply},
}

func (d *demo) run() error {
	defer d.release()
	for i, s := range steps {
		if i > 0 && d.wait != nil && !d.wait("\nPress 'C' to continue. Or <ESC> to exit.") {
			return errStopped
		}
		fmt.Fprintf(d.out, "%s\n%d. %s\n", ui.Line, i+1, s.title)
		if err := s.run(d); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, s.title, err)
		}
	}
	return nil
}

func (d *demo) release() {
	for _, v := range []*matrix.Vector{d.one, d.two, d.n} {
		v.Release()
	}
}

func (d *demo) show(title string, v *matrix.Vector) {
	if d.gonum {
		fmt.Fprintf(d.out, "%s =\n%s\n", title, matrix.Format(v, ""))
	} else {
		fmt.Fprintln(d.out, joinValues(v.Data()))
	}
	if d.ieee {
		fmt.Fprintln(d.out, matrix.FormatIEEE(title, v.Data()))
	}
}

func joinValues(values []float64) string {
	parts := make([]string, len(values))
	for i, x := range values {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func check(code models.ErrorCode) error {
	return code.Err()
}

func (d *demo) create() error {
	data := []float64{1, 2, 3}
	one, code := matrix.Create(len(data), data, matrix.WithLogger(d.logger))
	if err := check(code); err != nil {
		return err
	}
	d.one = one
	d.two = one.Clone()
	// one holds its own copy, so this only affects two.
	data[0] = -2
	if err := check(d.two.SetData(len(data), data)); err != nil {
		return err
	}
	for i := 0; i < d.one.Dim(); i++ {
		x, code := d.one.Element(i)
		if err := check(code); err != nil {
			return err
		}
		fmt.Fprintf(d.out, "%s ", strconv.FormatFloat(x, 'g', -1, 64))
	}
	fmt.Fprintln(d.out)
	d.show("two", d.two)
	return nil
}

func (d *demo) setElement() error {
	if err := check(d.one.SetElement(1, 15.5)); err != nil {
		return err
	}
	d.show("one", d.one)
	return nil
}

func (d *demo) increment() error {
	if err := check(d.two.Increment(d.one)); err != nil {
		return err
	}
	d.show("two", d.two)
	return nil
}

func (d *demo) subSelf() error {
	if d.n = matrix.Sub(d.two, d.two); d.n == nil {
		return models.UNKNOWN
	}
	d.show("n", d.n)
	return nil
}

func (d *demo) scaleZero() error {
	if err := check(d.two.Scale(0)); err != nil {
		return err
	}
	d.show("two", d.two)
	return nil
}

func (d *demo) add() error {
	d.n.Release()
	if d.n = matrix.Add(d.one, d.two); d.n == nil {
		return models.UNKNOWN
	}
	d.show("n", d.n)
	return nil
}

func (d *demo) compare() error {
	fmt.Fprintln(d.out, strconv.FormatFloat(matrix.Dot(d.n, d.one), 'g', -1, 64))
	fmt.Fprintln(d.out,
		matrix.Equals(d.n, d.one, models.CHEBYSHEV, 0.001),
		matrix.Equals(d.n, d.two, models.CHEBYSHEV, 0.001))
	if d.gonum {
		// Cross-check against gonum's own dot product.
		fmt.Fprintf(d.out, "gonum: %g\n", mat.Dot(matrix.ToVecDense(d.n), matrix.ToVecDense(d.one)))
	}
	return nil
}

func (d *demo) apply() error {
	if err := check(d.n.ApplyFunction(func(x float64) float64 { return x * x })); err != nil {
		return err
	}
	d.show("n", d.n)
	return check(d.n.ForEach(func(x float64) {
		fmt.Fprintf(d.out, "[%s]\n", strconv.FormatFloat(x, 'g', -1, 64))
	}))
}
