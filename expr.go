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

package lpmodel

import (
	"math"
	"strconv"
	"strings"
)

// Term is a variable with its coefficient.
type Term struct {
	Var  *Variable
	Coef float64
}

// Expr is a linear expression: a sum of terms plus a constant. The zero
// value is the empty expression. Builder methods modify the receiver and
// return it for chaining.
type Expr struct {
	terms    []Term
	constant float64
}

func NewExpr() *Expr { return &Expr{} }

// Const returns the constant expression c.
func Const(c float64) *Expr { return &Expr{constant: c} }

// Sum adds up exprs into a new expression. Nil entries count as zero.
func Sum(exprs ...*Expr) *Expr {
	e := NewExpr()
	for _, o := range exprs {
		e.AddExpr(1, o)
	}
	return e
}

// Add adds coef*v.
func (e *Expr) Add(coef float64, v *Variable) *Expr {
	e.terms = append(e.terms, Term{Var: v, Coef: coef})
	return e
}

// AddConst adds the constant c.
func (e *Expr) AddConst(c float64) *Expr {
	e.constant += c
	return e
}

// AddExpr adds coef*o.
func (e *Expr) AddExpr(coef float64, o *Expr) *Expr {
	if o == nil {
		return e
	}
	for _, t := range o.terms {
		e.terms = append(e.terms, Term{Var: t.Var, Coef: coef * t.Coef})
	}
	e.constant += coef * o.constant
	return e
}

// Scale multiplies every coefficient and the constant by f.
func (e *Expr) Scale(f float64) *Expr {
	for i := range e.terms {
		e.terms[i].Coef *= f
	}
	e.constant *= f
	return e
}

func (e *Expr) Clone() *Expr {
	if e == nil {
		return NewExpr()
	}
	return &Expr{terms: append([]Term(nil), e.terms...), constant: e.constant}
}

// Terms returns the normalized terms: one per variable, in order of first
// appearance, without zero coefficients.
func (e *Expr) Terms() []Term {
	if e == nil {
		return nil
	}
	pos := make(map[*Variable]int, len(e.terms))
	var out []Term
	for _, t := range e.terms {
		if i, ok := pos[t.Var]; ok {
			out[i].Coef += t.Coef
			continue
		}
		pos[t.Var] = len(out)
		out = append(out, t)
	}

	n := 0
	for _, t := range out {
		if t.Coef != 0 {
			out[n] = t
			n++
		}
	}
	return out[:n]
}

func (e *Expr) Constant() float64 {
	if e == nil {
		return 0
	}
	return e.constant
}

// IsConstant reports whether no variable has a non-zero coefficient.
func (e *Expr) IsConstant() bool {
	return len(e.Terms()) == 0
}

// Eval evaluates the expression with the variables' current values.
func (e *Expr) Eval() float64 {
	if e == nil {
		return 0
	}
	sum := e.constant
	for _, t := range e.terms {
		sum += t.Coef * t.Var.Value()
	}
	return sum
}

func (e *Expr) evalLocked() float64 {
	sum := e.constant
	for _, t := range e.terms {
		sum += t.Coef * t.Var.value
	}
	return sum
}

// LessEq, GreaterEq and Equal are shorthands for Le, Ge and Eq with e as
// the left-hand side.
func (e *Expr) LessEq(rhs *Expr) Relation { return Le(e, rhs) }

func (e *Expr) GreaterEq(rhs *Expr) Relation { return Ge(e, rhs) }

func (e *Expr) Equal(rhs *Expr) Relation { return Eq(e, rhs) }

func (e *Expr) String() string {
	var b strings.Builder
	for i, t := range e.Terms() {
		switch {
		case i == 0 && t.Coef < 0:
			b.WriteByte('-')
		case t.Coef < 0:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		if c := math.Abs(t.Coef); c != 1 {
			b.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
			b.WriteByte('*')
		}
		b.WriteString(t.Var.label)
	}
	switch c := e.Constant(); {
	case b.Len() == 0:
		b.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
	case c > 0:
		b.WriteString(" + " + strconv.FormatFloat(c, 'g', -1, 64))
	case c < 0:
		b.WriteString(" - " + strconv.FormatFloat(-c, 'g', -1, 64))
	}
	return strings.TrimSpace(b.String())
}

/* Relations */

// Relation is the linear constraint Lower <= Expr <= Upper. Infinite bounds
// leave a side open. Expr carries no constant.
type Relation struct {
	Lower float64
	Expr  *Expr
	Upper float64
}

func relation(lower float64, e *Expr, upper float64) Relation {
	e = e.Clone()
	c := e.constant
	e.constant = 0
	return Relation{Lower: lower - c, Expr: e, Upper: upper - c}
}

// Le builds lhs <= rhs. A nil side is zero.
func Le(lhs, rhs *Expr) Relation {
	return relation(math.Inf(-1), lhs.Clone().AddExpr(-1, rhs), 0)
}

// Ge builds lhs >= rhs. A nil side is zero.
func Ge(lhs, rhs *Expr) Relation {
	return relation(0, lhs.Clone().AddExpr(-1, rhs), math.Inf(1))
}

// Eq builds lhs == rhs. A nil side is zero.
func Eq(lhs, rhs *Expr) Relation {
	return relation(0, lhs.Clone().AddExpr(-1, rhs), 0)
}

// Between builds the ranged relation lower <= e <= upper.
func Between(lower float64, e *Expr, upper float64) Relation {
	return relation(lower, e, upper)
}

func (r Relation) String() string {
	switch {
	case r.Lower == r.Upper:
		return r.Expr.String() + " == " + strconv.FormatFloat(r.Upper, 'g', -1, 64)
	case math.IsInf(r.Lower, -1):
		return r.Expr.String() + " <= " + strconv.FormatFloat(r.Upper, 'g', -1, 64)
	case math.IsInf(r.Upper, 1):
		return r.Expr.String() + " >= " + strconv.FormatFloat(r.Lower, 'g', -1, 64)
	default:
		return strconv.FormatFloat(r.Lower, 'g', -1, 64) + " <= " + r.Expr.String() + " <= " + strconv.FormatFloat(r.Upper, 'g', -1, 64)
	}
}

// Rule produces the relation of one constraint instance. Returning false
// omits the instance; Include and Skip spell out both results.
type Rule func(t Tuple) (Relation, bool)

// Include keeps the instance with relation r.
func Include(r Relation) (Relation, bool) { return r, true }

// Skip omits the instance.
func Skip() (Relation, bool) { return Relation{}, false }
