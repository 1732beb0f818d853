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

import "math"

// feasTol is the tolerance used to decide whether a row left without
// variables is satisfied.
const feasTol = 1e-9

/* Types */

// ColumnKind is the integrality of a problem column.
type ColumnKind int

const (
	ColContinuous ColumnKind = iota
	ColInteger
	ColBinary
)

func (k ColumnKind) String() string {
	switch k {
	case ColInteger:
		return "integer"
	case ColBinary:
		return "binary"
	default:
		return "continuous"
	}
}

// Column is one variable of a compiled problem.
type Column struct {
	Label        string
	Lower, Upper float64
	Kind         ColumnKind
	Obj          float64

	// Initial is the warm-start value; only set when HasInitial.
	Initial    float64
	HasInitial bool
}

// Coef is a non-zero entry of a row.
type Coef struct {
	Col   int
	Value float64
}

// Row is one constraint instance of a compiled problem: Lower <= sum of
// Coefs <= Upper.
type Row struct {
	Label        string
	Lower, Upper float64
	Coefs        []Coef
}

// Problem is the solver-facing snapshot of a model: its active objective,
// active constraint instances and the columns they reference. Fixed
// variables are folded into row bounds and the objective offset.
type Problem struct {
	Name            string
	Objective       string
	Sense           Direction
	ObjectiveOffset float64
	Columns         []Column
	Rows            []Row

	Suffixes  Suffix
	WarmStart bool

	vars []*Variable
	rows []*instance
}

// IsMIP reports whether any column is integral.
func (prob *Problem) IsMIP() bool {
	for _, c := range prob.Columns {
		if c.Kind != ColContinuous {
			return true
		}
	}
	return false
}

// Activity returns the value of row i at x.
func (prob *Problem) Activity(i int, x []float64) float64 {
	sum := 0.0
	for _, c := range prob.Rows[i].Coefs {
		sum += c.Value * x[c.Col]
	}
	return sum
}

// ObjectiveAt returns the objective value at x, offset included.
func (prob *Problem) ObjectiveAt(x []float64) float64 {
	sum := prob.ObjectiveOffset
	for i, c := range prob.Columns {
		sum += c.Obj * x[i]
	}
	return sum
}

/* Compilation */

// Compile snapshots the model's current activation and fix state into a
// Problem.
func (model *Model) Compile() (*Problem, error) {
	model.mu.RLock()
	suffixes := model.suffixes
	model.mu.RUnlock()

	return model.compile(solveSettings{suffixes: suffixes})
}

func (model *Model) compile(settings solveSettings) (*Problem, error) {
	model.mu.RLock()
	defer model.mu.RUnlock()

	obj, err := model.activeObjective()
	if err != nil {
		return nil, err
	}

	prob := &Problem{
		Name:            model.name,
		Objective:       obj.name,
		Sense:           obj.sense,
		ObjectiveOffset: obj.expr.Constant(),
		Suffixes:        settings.suffixes,
		WarmStart:       settings.warmStart,
	}

	objTerms := obj.expr.Terms()
	used := make(map[*Variable]bool)
	mark := func(terms []Term) {
		for _, t := range terms {
			if !t.Var.fixed {
				used[t.Var] = true
			}
		}
	}
	mark(objTerms)

	type activeRow struct {
		inst  *instance
		terms []Term
	}
	var active []activeRow
	for _, c := range model.constraintOrder {
		if !c.active {
			continue
		}
		for _, inst := range c.instances {
			terms := inst.rel.Expr.Terms()
			mark(terms)
			active = append(active, activeRow{inst, terms})
		}
	}

	col := make(map[*Variable]int, len(used))
	for _, v := range model.vars {
		if !used[v] {
			continue
		}
		col[v] = len(prob.Columns)
		c := Column{
			Label: v.label,
			Lower: v.lower,
			Upper: v.upper,
			Kind:  columnKind(v),
		}
		if settings.warmStart && v.hasValue {
			c.Initial, c.HasInitial = v.value, true
		}
		prob.Columns = append(prob.Columns, c)
		prob.vars = append(prob.vars, v)
	}

	for _, t := range objTerms {
		if t.Var.fixed {
			prob.ObjectiveOffset += t.Coef * t.Var.value
			continue
		}
		prob.Columns[col[t.Var]].Obj += t.Coef
	}

	for _, ar := range active {
		lower, upper := ar.inst.rel.Lower, ar.inst.rel.Upper
		if math.IsInf(lower, -1) && math.IsInf(upper, 1) {
			continue
		}

		shift := 0.0
		var coefs []Coef
		for _, t := range ar.terms {
			if t.Var.fixed {
				shift += t.Coef * t.Var.value
				continue
			}
			coefs = append(coefs, Coef{Col: col[t.Var], Value: t.Coef})
		}
		lower, upper = lower-shift, upper-shift

		if len(coefs) == 0 {
			if lower > feasTol || upper < -feasTol {
				return nil, definitionErrorf(ar.inst.constraint.name, "instance %s is infeasible without variables: %g <= 0 <= %g", ar.inst.tuple, lower, upper)
			}
			continue
		}

		prob.Rows = append(prob.Rows, Row{
			Label: ar.inst.label,
			Lower: lower,
			Upper: upper,
			Coefs: coefs,
		})
		prob.rows = append(prob.rows, ar.inst)
	}

	return prob, nil
}

func columnKind(v *Variable) ColumnKind {
	switch v.group.domain {
	case Binary:
		if v.lower == 0 && v.upper == 1 {
			return ColBinary
		}
		return ColInteger
	case Integers, NonNegativeIntegers:
		return ColInteger
	default:
		return ColContinuous
	}
}
