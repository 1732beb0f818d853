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
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

const (
	// OneVarConstant is the column carrying the objective's constant term.
	// It is fixed to 1.
	OneVarConstant = "ONE_VAR_CONSTANT"

	// the file format needs at least one row
	dummyRow = "c_e_ONE_VAR_CONSTANT"

	// ranged rows are written as two rows with these prefixes
	rangedLowerPrefix = "r_l_"
	rangedUpperPrefix = "r_u_"
)

// Layout records where the problem's columns and rows ended up in a written
// LP file, so solution files referring to labels or ordinals can be mapped
// back.
type Layout struct {
	// Columns and Rows list the labels in order of first appearance in the
	// file. Ordinal-based solution formats count from 1 in this order.
	Columns []string
	Rows    []string

	colIndex map[string]int
	rowIndex map[string]int
}

func newLayout() *Layout {
	return &Layout{
		colIndex: make(map[string]int),
		rowIndex: make(map[string]int),
	}
}

func (l *Layout) addColumn(label string, col int) {
	if _, ok := l.colIndex[label]; ok {
		return
	}
	l.colIndex[label] = col
	l.Columns = append(l.Columns, label)
}

func (l *Layout) addRow(label string, row int) {
	l.rowIndex[label] = row
	l.Rows = append(l.Rows, label)
}

// Column maps a written column label to the problem column. Auxiliary
// columns map to -1.
func (l *Layout) Column(label string) (int, bool) {
	i, ok := l.colIndex[label]
	return i, ok
}

// Row maps a written row label to the problem row. Both halves of a ranged
// row map to the same problem row; auxiliary rows map to -1.
func (l *Layout) Row(label string) (int, bool) {
	i, ok := l.rowIndex[label]
	return i, ok
}

// ColumnAt maps a 1-based column ordinal to the problem column.
func (l *Layout) ColumnAt(ordinal int) (int, bool) {
	if ordinal < 1 || ordinal > len(l.Columns) {
		return 0, false
	}
	return l.Column(l.Columns[ordinal-1])
}

// RowAt maps a 1-based row ordinal to the problem row.
func (l *Layout) RowAt(ordinal int) (int, bool) {
	if ordinal < 1 || ordinal > len(l.Rows) {
		return 0, false
	}
	return l.Row(l.Rows[ordinal-1])
}

// WriteLP compiles the model and writes it in CPLEX LP format.
func (model *Model) WriteLP(w io.Writer) (*Layout, error) {
	prob, err := model.Compile()
	if err != nil {
		return nil, err
	}
	return prob.WriteLP(w)
}

// WriteLP writes the problem in CPLEX LP format, one term per line. Every
// column gets an explicit bounds line. Ranged rows are split in two.
func (prob *Problem) WriteLP(w io.Writer) (*Layout, error) {
	bw := bufio.NewWriter(w)
	l := newLayout()

	hasObjTerms := false
	for _, c := range prob.Columns {
		if c.Obj != 0 {
			hasObjTerms = true
			break
		}
	}
	useConst := prob.ObjectiveOffset != 0 || !hasObjTerms || len(prob.Rows) == 0

	fmt.Fprintf(bw, "\\* Problem: %s *\\\n\n", prob.Name)
	if prob.Sense == Maximize {
		bw.WriteString("max\n")
	} else {
		bw.WriteString("min\n")
	}
	fmt.Fprintf(bw, "%s:\n", prob.Objective)
	for i, c := range prob.Columns {
		if c.Obj == 0 {
			continue
		}
		writeTerm(bw, c.Obj, c.Label)
		l.addColumn(c.Label, i)
	}
	if prob.ObjectiveOffset != 0 || !hasObjTerms {
		writeTerm(bw, prob.ObjectiveOffset, OneVarConstant)
		l.addColumn(OneVarConstant, -1)
	}

	bw.WriteString("\ns.t.\n\n")
	for i, row := range prob.Rows {
		ranged := row.Lower != row.Upper && !math.IsInf(row.Lower, -1) && !math.IsInf(row.Upper, 1)
		switch {
		case ranged:
			writeRow(bw, l, prob, rangedLowerPrefix+row.Label, i, row.Coefs, ">=", row.Lower)
			writeRow(bw, l, prob, rangedUpperPrefix+row.Label, i, row.Coefs, "<=", row.Upper)
		case row.Lower == row.Upper:
			writeRow(bw, l, prob, row.Label, i, row.Coefs, "=", row.Upper)
		case math.IsInf(row.Lower, -1):
			writeRow(bw, l, prob, row.Label, i, row.Coefs, "<=", row.Upper)
		default:
			writeRow(bw, l, prob, row.Label, i, row.Coefs, ">=", row.Lower)
		}
	}
	if len(prob.Rows) == 0 {
		fmt.Fprintf(bw, "%s:\n", dummyRow)
		writeTerm(bw, 1, OneVarConstant)
		l.addColumn(OneVarConstant, -1)
		bw.WriteString("= 1\n\n")
		l.addRow(dummyRow, -1)
	}

	bw.WriteString("bounds\n")
	for i, c := range prob.Columns {
		if c.Lower == c.Upper {
			fmt.Fprintf(bw, " %s = %s\n", c.Label, formatBound(c.Lower))
		} else {
			fmt.Fprintf(bw, " %s <= %s <= %s\n", formatBound(c.Lower), c.Label, formatBound(c.Upper))
		}
		l.addColumn(c.Label, i)
	}
	if useConst {
		fmt.Fprintf(bw, " %s = 1\n", OneVarConstant)
	}

	writeSection(bw, "general", prob.Columns, ColInteger)
	writeSection(bw, "binary", prob.Columns, ColBinary)

	bw.WriteString("\nend\n")

	if err := bw.Flush(); err != nil {
		return nil, errors.Wrap(err, "writing LP file")
	}
	return l, nil
}

func writeRow(w *bufio.Writer, l *Layout, prob *Problem, label string, row int, coefs []Coef, op string, rhs float64) {
	fmt.Fprintf(w, "%s:\n", label)
	for _, c := range coefs {
		col := prob.Columns[c.Col].Label
		writeTerm(w, c.Value, col)
		l.addColumn(col, c.Col)
	}
	fmt.Fprintf(w, "%s %s\n\n", op, strconv.FormatFloat(rhs, 'g', -1, 64))
	l.addRow(label, row)
}

func writeTerm(w *bufio.Writer, coef float64, label string) {
	fmt.Fprintf(w, "%s %s\n", formatCoef(coef), label)
}

func writeSection(w *bufio.Writer, name string, cols []Column, kind ColumnKind) {
	header := false
	for _, c := range cols {
		if c.Kind != kind {
			continue
		}
		if !header {
			fmt.Fprintf(w, "\n%s\n", name)
			header = true
		}
		fmt.Fprintf(w, " %s\n", c.Label)
	}
}

func formatCoef(v float64) string {
	if v == 0 {
		return "+0"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if v > 0 {
		return "+" + s
	}
	return s
}

func formatBound(v float64) string {
	switch {
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsInf(v, 1):
		return "+inf"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}
