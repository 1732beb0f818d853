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

package glpk

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/costela/lpmodel"
	"github.com/costela/lpmodel/internal/run"
)

/* Types */

// Solution status letters of the "s" line.
const (
	statusUndefined  = "u"
	statusFeasible   = "f"
	statusInfeasible = "i"
	statusNoFeasible = "n"
	statusOptimal    = "o"
)

// glpsol messages used when the solution file leaves the status undefined,
// e.g. when the presolver detected infeasibility.
const (
	msgNoPrimal = "PROBLEM HAS NO PRIMAL FEASIBLE SOLUTION"
	msgNoDual   = "PROBLEM HAS NO DUAL FEASIBLE SOLUTION"
	msgNoInt    = "PROBLEM HAS NO INTEGER FEASIBLE SOLUTION"
)

type solKind string

const (
	kindBasic     solKind = "bas"
	kindInterior  solKind = "ipt"
	kindBranchCut solKind = "mip"
)

// ParseSolution reads a solution file written by glpsol -w. Rows and
// columns are numbered in the order of first appearance in the LP file, as
// recorded in layout. out is the solver's console output, consulted when
// the file leaves the status undefined; it may be nil.
func ParseSolution(r io.Reader, prob *lpmodel.Problem, layout *lpmodel.Layout, out *run.Output) (*lpmodel.Solution, error) {
	var (
		kind   solKind
		status lpmodel.SolveStatus
		values bool
		sol    = &lpmodel.Solution{}
		x      = make([]float64, len(prob.Columns))
		rc     = make([]float64, len(prob.Columns))
		duals  = make([]float64, len(prob.Rows))
		ended  bool
	)

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		fail := func(format string, args ...interface{}) error {
			return &lpmodel.ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
		}

		switch fields[0] {
		case "c":
			continue

		case "s":
			if len(fields) < 5 {
				return nil, fail("malformed status line")
			}
			kind = solKind(fields[1])
			m, errM := strconv.Atoi(fields[2])
			n, errN := strconv.Atoi(fields[3])
			if errM != nil || errN != nil || m != len(layout.Rows) || n != len(layout.Columns) {
				return nil, fail("solution is for %s x %s, problem file has %d x %d", fields[2], fields[3], len(layout.Rows), len(layout.Columns))
			}
			switch kind {
			case kindBasic:
				if len(fields) != 7 {
					return nil, fail("malformed status line")
				}
				status, values = basicStatus(fields[4], fields[5], out)
				sol.Message = fmt.Sprintf("primal %s, dual %s", fields[4], fields[5])
			case kindInterior:
				if len(fields) != 6 {
					return nil, fail("malformed status line")
				}
				status, values = interiorStatus(fields[4], out)
				sol.Message = "interior point " + fields[4]
			case kindBranchCut:
				if len(fields) != 6 {
					return nil, fail("malformed status line")
				}
				status, values = branchCutStatus(fields[4], out)
				sol.Message = "integer " + fields[4]
			default:
				return nil, fail("unknown solution kind %q", fields[1])
			}

		case "i", "j":
			if kind == "" {
				return nil, fail("%s line before status line", fields[0])
			}
			ord, val, dual, err := parseEntry(kind, fields)
			if err != nil {
				return nil, fail("%s", err)
			}
			if fields[0] == "i" {
				row, ok := layout.RowAt(ord)
				if !ok {
					return nil, fail("row %d out of range", ord)
				}
				if row >= 0 {
					duals[row] += dual
				}
				continue
			}
			col, ok := layout.ColumnAt(ord)
			if !ok {
				return nil, fail("column %d out of range", ord)
			}
			if col >= 0 {
				x[col], rc[col] = val, dual
			}

		case "e":
			ended = true

		default:
			return nil, fail("unexpected line %q", sc.Text())
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading glpk solution")
	}
	if kind == "" {
		return nil, &lpmodel.ParseError{Msg: "no status line"}
	}
	if !ended {
		return nil, &lpmodel.ParseError{Msg: "truncated solution file"}
	}

	sol.Status = status
	if !values {
		return sol, nil
	}
	sol.Values = x
	if kind != kindBranchCut {
		sol.ReducedCosts, sol.Duals = rc, duals
	}
	return sol, nil
}

// parseEntry parses the i and j lines: "i ord st prim dual" for basic
// solutions, "i ord prim dual" for interior point and "i ord val" for
// branch-and-cut.
func parseEntry(kind solKind, fields []string) (ord int, val, dual float64, err error) {
	var nums []string
	switch kind {
	case kindBasic:
		if len(fields) != 5 {
			return 0, 0, 0, errors.Errorf("malformed %s line", fields[0])
		}
		nums = []string{fields[3], fields[4]}
	case kindInterior:
		if len(fields) != 4 {
			return 0, 0, 0, errors.Errorf("malformed %s line", fields[0])
		}
		nums = fields[2:4]
	default:
		if len(fields) != 3 {
			return 0, 0, 0, errors.Errorf("malformed %s line", fields[0])
		}
		nums = fields[2:3]
	}

	if ord, err = strconv.Atoi(fields[1]); err != nil {
		return 0, 0, 0, errors.Errorf("bad ordinal %q", fields[1])
	}
	if val, err = strconv.ParseFloat(nums[0], 64); err != nil {
		return 0, 0, 0, errors.Errorf("bad value %q", nums[0])
	}
	if len(nums) > 1 {
		if dual, err = strconv.ParseFloat(nums[1], 64); err != nil {
			return 0, 0, 0, errors.Errorf("bad dual value %q", nums[1])
		}
	}
	return ord, val, dual, nil
}

func basicStatus(primal, dual string, out *run.Output) (lpmodel.SolveStatus, bool) {
	switch {
	case primal == statusFeasible && dual == statusFeasible:
		return lpmodel.SolutionOptimal, true
	case primal == statusNoFeasible:
		return lpmodel.SolutionInfeasible, false
	case primal == statusFeasible && dual == statusNoFeasible:
		return lpmodel.SolutionUnbounded, false
	case dual == statusNoFeasible:
		return lpmodel.SolutionInfeasibleOrUnbounded, false
	case primal == statusFeasible:
		return lpmodel.SolutionLimitReached, true
	case primal == statusInfeasible:
		return lpmodel.SolutionLimitReached, false
	}
	return fromOutput(out), false
}

func interiorStatus(st string, out *run.Output) (lpmodel.SolveStatus, bool) {
	switch st {
	case statusOptimal:
		return lpmodel.SolutionOptimal, true
	case statusInfeasible, statusNoFeasible:
		return lpmodel.SolutionInfeasible, false
	}
	return fromOutput(out), false
}

func branchCutStatus(st string, out *run.Output) (lpmodel.SolveStatus, bool) {
	switch st {
	case statusOptimal:
		return lpmodel.SolutionOptimal, true
	case statusFeasible:
		return lpmodel.SolutionSuboptimal, true
	case statusNoFeasible:
		return lpmodel.SolutionInfeasible, false
	}
	return fromOutput(out), false
}

func fromOutput(out *run.Output) lpmodel.SolveStatus {
	switch {
	case out == nil:
		return lpmodel.SolutionUnknown
	case out.Contains(msgNoPrimal), out.Contains(msgNoInt):
		return lpmodel.SolutionInfeasible
	case out.Contains(msgNoDual):
		return lpmodel.SolutionUnbounded
	default:
		return lpmodel.SolutionUnknown
	}
}
