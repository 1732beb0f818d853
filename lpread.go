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
	"strings"

	"github.com/pkg/errors"
)

type lpSection int

const (
	secNone lpSection = iota
	secObjective
	secRows
	secBounds
	secGeneral
	secBinary
	secEnd
)

type lpTerm struct {
	label string
	coef  float64
	line  int
}

type lpRow struct {
	label        string
	terms        []lpTerm
	lower, upper float64
	done         bool
}

type lpBound struct {
	label        string
	lower, upper float64
}

// ReadLP parses a problem in the subset of the CPLEX LP format written by
// WriteLP: one term per line, explicit bounds for every column. Columns are
// numbered in the order of the bounds section; split ranged rows are merged
// back and the ONE_VAR_CONSTANT column becomes the objective offset.
//
// Problems read back carry no link to a model and cannot be mapped to
// variables.
func ReadLP(r io.Reader) (*Problem, error) {
	var (
		prob     = &Problem{}
		section  = secNone
		objTerms []lpTerm
		rows     []*lpRow
		cur      *lpRow
		bounds   []lpBound
		kinds    = make(map[string]ColumnKind)
		lineNo   int
	)

	fail := func(format string, args ...interface{}) error {
		return &ParseError{Line: lineNo, Msg: fmt.Sprintf(format, args...)}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, `\`) {
			if name := strings.TrimPrefix(line, `\* Problem: `); name != line {
				prob.Name = strings.TrimSuffix(name, ` *\`)
			}
			continue
		}

		switch strings.ToLower(line) {
		case "min", "minimize", "minimum":
			prob.Sense, section = Minimize, secObjective
			continue
		case "max", "maximize", "maximum":
			prob.Sense, section = Maximize, secObjective
			continue
		case "s.t.", "st", "subject to", "such that":
			section = secRows
			continue
		case "bounds", "bound":
			if cur != nil && !cur.done {
				return nil, fail("row %s has no relation", cur.label)
			}
			section = secBounds
			continue
		case "general", "generals", "gen", "integer", "integers":
			section = secGeneral
			continue
		case "binary", "binaries", "bin":
			section = secBinary
			continue
		case "end":
			section = secEnd
			continue
		}

		fields := strings.Fields(line)
		switch section {
		case secObjective:
			if strings.HasSuffix(line, ":") && len(fields) == 1 {
				prob.Objective = strings.TrimSuffix(line, ":")
				continue
			}
			t, err := parseTerm(fields, lineNo)
			if err != nil {
				return nil, err
			}
			objTerms = append(objTerms, t)

		case secRows:
			switch {
			case strings.HasSuffix(line, ":") && len(fields) == 1:
				if cur != nil && !cur.done {
					return nil, fail("row %s has no relation", cur.label)
				}
				cur = &lpRow{label: strings.TrimSuffix(line, ":"), lower: math.Inf(-1), upper: math.Inf(1)}
				rows = append(rows, cur)
			case cur == nil || cur.done:
				return nil, fail("term outside of a row")
			case isRelation(fields[0]):
				if len(fields) != 2 {
					return nil, fail("malformed relation %q", line)
				}
				rhs, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					return nil, fail("bad right-hand side %q", fields[1])
				}
				switch fields[0] {
				case "<=", "=<", "<":
					cur.upper = rhs
				case ">=", "=>", ">":
					cur.lower = rhs
				default:
					cur.lower, cur.upper = rhs, rhs
				}
				cur.done = true
			default:
				t, err := parseTerm(fields, lineNo)
				if err != nil {
					return nil, err
				}
				cur.terms = append(cur.terms, t)
			}

		case secBounds:
			b, err := parseBound(fields)
			if err != nil {
				return nil, fail("%s", err)
			}
			bounds = append(bounds, b)

		case secGeneral, secBinary:
			for _, f := range fields {
				if section == secBinary {
					kinds[f] = ColBinary
				} else {
					kinds[f] = ColInteger
				}
			}

		case secEnd:
			return nil, fail("content after end")

		default:
			return nil, fail("content before the objective")
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading LP file")
	}
	if section != secEnd {
		return nil, &ParseError{Line: lineNo, Msg: "missing end"}
	}

	col := make(map[string]int, len(bounds))
	for _, b := range bounds {
		if b.label == OneVarConstant {
			continue
		}
		if _, dup := col[b.label]; dup {
			return nil, &ParseError{Msg: fmt.Sprintf("column %s bounded twice", b.label)}
		}
		col[b.label] = len(prob.Columns)
		prob.Columns = append(prob.Columns, Column{
			Label: b.label,
			Lower: b.lower,
			Upper: b.upper,
			Kind:  kinds[b.label],
		})
	}

	for _, t := range objTerms {
		if t.label == OneVarConstant {
			prob.ObjectiveOffset += t.coef
			continue
		}
		i, ok := col[t.label]
		if !ok {
			return nil, &ParseError{Line: t.line, Msg: fmt.Sprintf("column %s has no bounds", t.label)}
		}
		prob.Columns[i].Obj += t.coef
	}

	merged := make(map[string]int)
	for _, r := range rows {
		label, lower, upper := r.label, r.lower, r.upper
		switch {
		case label == dummyRow:
			continue
		case strings.HasPrefix(label, rangedUpperPrefix):
			base := strings.TrimPrefix(label, rangedUpperPrefix)
			if i, ok := merged[base]; ok {
				prob.Rows[i].Upper = upper
				continue
			}
			label = base
		case strings.HasPrefix(label, rangedLowerPrefix):
			label = strings.TrimPrefix(label, rangedLowerPrefix)
			merged[label] = len(prob.Rows)
		}

		row := Row{Label: label, Lower: lower, Upper: upper}
		for _, t := range r.terms {
			i, ok := col[t.label]
			if !ok {
				return nil, &ParseError{Line: t.line, Msg: fmt.Sprintf("column %s has no bounds", t.label)}
			}
			row.Coefs = append(row.Coefs, Coef{Col: i, Value: t.coef})
		}
		prob.Rows = append(prob.Rows, row)
	}

	return prob, nil
}

func isRelation(s string) bool {
	switch s {
	case "<=", "=<", "<", ">=", "=>", ">", "=":
		return true
	}
	return false
}

func parseTerm(fields []string, line int) (lpTerm, error) {
	if len(fields) != 2 {
		return lpTerm{}, &ParseError{Line: line, Msg: fmt.Sprintf("malformed term %q", strings.Join(fields, " "))}
	}
	coef, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return lpTerm{}, &ParseError{Line: line, Msg: fmt.Sprintf("bad coefficient %q", fields[0])}
	}
	return lpTerm{label: fields[1], coef: coef, line: line}, nil
}

func parseBound(fields []string) (lpBound, error) {
	switch {
	case len(fields) == 5 && fields[1] == "<=" && fields[3] == "<=":
		lo, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return lpBound{}, errors.Errorf("bad lower bound %q", fields[0])
		}
		hi, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return lpBound{}, errors.Errorf("bad upper bound %q", fields[4])
		}
		return lpBound{label: fields[2], lower: lo, upper: hi}, nil
	case len(fields) == 3 && fields[1] == "=":
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return lpBound{}, errors.Errorf("bad fixed bound %q", fields[2])
		}
		return lpBound{label: fields[0], lower: v, upper: v}, nil
	case len(fields) == 2 && strings.EqualFold(fields[1], "free"):
		return lpBound{label: fields[0], lower: math.Inf(-1), upper: math.Inf(1)}, nil
	default:
		return lpBound{}, errors.Errorf("unsupported bound %q", strings.Join(fields, " "))
	}
}
