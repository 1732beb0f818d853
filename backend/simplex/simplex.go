/*
Copyright © 2015-2022 Leo Antunes <leo@costela.net>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package simplex solves continuous problems in process with the simplex
// implementation of gonum. It is meant for tests and small models when no
// solver executable is installed; it reports neither duals nor reduced
// costs.
package simplex

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/costela/lpmodel"
)

// DefaultTolerance is the reduced cost below which a vertex is optimal.
const DefaultTolerance = 1e-10

type Solver struct {
	tol    float64
	logger lpmodel.Logger
}

type Option func(*Solver) error

func WithTolerance(tol float64) Option {
	return func(s *Solver) error {
		if tol <= 0 || math.IsNaN(tol) {
			return fmt.Errorf("invalid tolerance %g", tol)
		}
		s.tol = tol

		return nil
	}
}

func WithLogger(logger lpmodel.Logger) Option {
	return func(s *Solver) error {
		s.logger = logger

		return nil
	}
}

func New(opts ...Option) (*Solver, error) {
	s := &Solver{
		tol:    DefaultTolerance,
		logger: lpmodel.NoopLogger(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, errors.Wrap(err, "applying simplex option")
		}
	}
	return s, nil
}

// feasTol bounds the residual of rows left without free columns and of
// equality rows found to be linear combinations of others.
const feasTol = 1e-9

// errInconsistent marks rows that contradict each other once pinned
// columns are substituted.
var errInconsistent = errors.New("inconsistent rows")

// general is a problem in the form
//
//	minimize cᵀx  s.t.  Gx <= h, Ax = b
//
// with x free. Only the columns not pinned by their bounds take part; cols
// maps them back to the problem's columns.
type general struct {
	c []float64
	g []float64
	h []float64
	a []float64
	b []float64

	cols []int
}

func (gf *general) addIneq(row []float64, rhs float64) {
	gf.g = append(gf.g, row...)
	gf.h = append(gf.h, rhs)
}

func (gf *general) addEq(row []float64, rhs float64) {
	gf.a = append(gf.a, row...)
	gf.b = append(gf.b, rhs)
}

// Solve implements lpmodel.Solver. Integral columns are rejected with
// lpmodel.ErrUnsupported unless their bounds pin them to a single value.
func (s *Solver) Solve(ctx context.Context, prob *lpmodel.Problem) (*lpmodel.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sol := &lpmodel.Solution{RunID: uuid.NewString()}

	for _, c := range prob.Columns {
		if c.Kind != lpmodel.ColContinuous && c.Lower != c.Upper {
			return nil, errors.Wrapf(lpmodel.ErrUnsupported, "simplex: %s column %s", c.Kind, c.Label)
		}
	}
	if prob.Suffixes.Has(lpmodel.Dual) || prob.Suffixes.Has(lpmodel.ReducedCost) {
		s.logger.Print("simplex: duals and reduced costs are not available")
	}

	if col, ok := unconstrained(prob); ok {
		sol.Status = lpmodel.SolutionUnbounded
		sol.Message = fmt.Sprintf("column %s only appears in the objective", prob.Columns[col].Label)
		return sol, nil
	}

	gf, err := newGeneral(prob)
	if errors.Cause(err) == errInconsistent {
		sol.Status = lpmodel.SolutionInfeasible
		sol.Message = err.Error()
		return sol, nil
	}
	if err != nil {
		return nil, err
	}

	// pinned columns keep their value
	sol.Values = make([]float64, len(prob.Columns))
	for i, c := range prob.Columns {
		sol.Values[i] = c.Lower
	}
	n := len(gf.cols)
	if n == 0 {
		sol.Status = lpmodel.SolutionOptimal
		return sol, nil
	}

	type outcome struct {
		x   []float64
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		var g, a mat.Matrix
		if len(gf.h) > 0 {
			g = mat.NewDense(len(gf.h), n, gf.g)
		}
		if len(gf.b) > 0 {
			a = mat.NewDense(len(gf.b), n, gf.a)
		}
		c, std, b := lp.Convert(gf.c, g, gf.h, a, gf.b)
		_, x, err := lp.Simplex(c, std, b, s.tol, nil)
		done <- outcome{x, err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out = <-done:
	}

	switch {
	case out.err == nil:
		sol.Status = lpmodel.SolutionOptimal
	case errors.Is(out.err, lp.ErrInfeasible):
		sol.Status = lpmodel.SolutionInfeasible
		sol.Message = out.err.Error()
		sol.Values = nil
		return sol, nil
	case errors.Is(out.err, lp.ErrUnbounded):
		sol.Status = lpmodel.SolutionUnbounded
		sol.Message = out.err.Error()
		sol.Values = nil
		return sol, nil
	default:
		sol.Status = lpmodel.SolutionError
		sol.Message = out.err.Error()
		sol.Values = nil
		return sol, nil
	}

	// x = xp - xn; the slacks follow
	free := make([]float64, n)
	floats.SubTo(free, out.x[:n], out.x[n:2*n])
	for j, i := range gf.cols {
		c := prob.Columns[i]
		// pivoting leaves round-off at the bounds
		sol.Values[i] = math.Max(c.Lower, math.Min(c.Upper, free[j]))
	}

	s.logger.Print(fmt.Sprintf("simplex: optimal after solving %d x %d standard form", len(gf.h)+len(gf.b), 2*n+len(gf.h)))
	return sol, nil
}

// newGeneral substitutes the columns pinned by their bounds and turns rows
// and the remaining bounds into general form. Rows left without free
// columns are checked and dropped, as are redundant equality rows.
func newGeneral(prob *lpmodel.Problem) (*general, error) {
	gf := &general{}
	pos := make([]int, len(prob.Columns))
	for i, c := range prob.Columns {
		if c.Lower == c.Upper {
			pos[i] = -1
			continue
		}
		pos[i] = len(gf.cols)
		gf.cols = append(gf.cols, i)
		gf.c = append(gf.c, c.Obj)
	}
	n := len(gf.cols)
	if prob.Sense == lpmodel.Maximize {
		floats.Scale(-1, gf.c)
	}

	for _, r := range prob.Rows {
		row := make([]float64, n)
		shift := 0.0
		for _, c := range r.Coefs {
			if p := pos[c.Col]; p >= 0 {
				row[p] += c.Value
			} else {
				shift += c.Value * prob.Columns[c.Col].Lower
			}
		}
		lower, upper := r.Lower-shift, r.Upper-shift

		if allZero(row) {
			if lower > feasTol || upper < -feasTol {
				return nil, errors.Wrapf(errInconsistent, "row %s: %g <= 0 <= %g", r.Label, lower, upper)
			}
			continue
		}

		switch {
		case lower == upper:
			gf.addEq(row, upper)
		default:
			if !math.IsInf(upper, 1) {
				gf.addIneq(row, upper)
			}
			if !math.IsInf(lower, -1) {
				neg := make([]float64, n)
				floats.ScaleTo(neg, -1, row)
				gf.addIneq(neg, -lower)
			}
		}
	}

	for j, i := range gf.cols {
		c := prob.Columns[i]
		if !math.IsInf(c.Upper, 1) {
			unit := make([]float64, n)
			unit[j] = 1
			gf.addIneq(unit, c.Upper)
		}
		if !math.IsInf(c.Lower, -1) {
			neg := make([]float64, n)
			neg[j] = -1
			gf.addIneq(neg, -c.Lower)
		}
	}

	if err := gf.reduceEqualities(); err != nil {
		return nil, err
	}
	return gf, nil
}

// reduceEqualities drops equality rows that are linear combinations of the
// rows before them, leaving A with full row rank. A combination whose
// right-hand side disagrees makes the problem infeasible.
func (gf *general) reduceEqualities() error {
	n := len(gf.cols)

	var (
		basis  [][]float64 // reduced rows with the rhs appended, 1 at their pivot
		pivots []int
		a, b   []float64
	)
	for i, rhs := range gf.b {
		orig := gf.a[i*n : (i+1)*n]
		r := make([]float64, n+1)
		copy(r, orig)
		r[n] = rhs

		for k, e := range basis {
			if f := r[pivots[k]]; f != 0 {
				floats.AddScaled(r, -f, e)
			}
		}

		scale := math.Max(1, floats.Norm(orig, math.Inf(1)))
		p := absMaxIdx(r[:n])
		if math.Abs(r[p]) <= feasTol*scale {
			if math.Abs(r[n]) > feasTol*scale {
				return errors.Wrapf(errInconsistent, "equality rows contradict each other (residual %g)", r[n])
			}
			continue
		}
		floats.Scale(1/r[p], r)
		basis = append(basis, r)
		pivots = append(pivots, p)
		a = append(a, orig...)
		b = append(b, rhs)
	}

	gf.a, gf.b = a, b
	return nil
}

func allZero(s []float64) bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

func absMaxIdx(s []float64) int {
	idx := 0
	for i, v := range s {
		if math.Abs(v) > math.Abs(s[idx]) {
			idx = i
		}
	}
	return idx
}

// unconstrained finds a free column appearing in no row. Compiled problems
// only carry referenced columns, so such a column has a non-zero objective
// coefficient and the problem is unbounded.
func unconstrained(prob *lpmodel.Problem) (int, bool) {
	inRow := make([]bool, len(prob.Columns))
	for _, r := range prob.Rows {
		for _, c := range r.Coefs {
			inRow[c.Col] = true
		}
	}
	for i, c := range prob.Columns {
		if !inRow[i] && math.IsInf(c.Lower, -1) && math.IsInf(c.Upper, 1) && c.Obj != 0 {
			return i, true
		}
	}
	return 0, false
}
