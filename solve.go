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
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Suffix selects sensitivity information to collect alongside the primal
// solution.
type Suffix uint8

const (
	Dual Suffix = 1 << iota
	ReducedCost
	Slack
)

// Has reports whether every suffix in o is requested in s.
func (s Suffix) Has(o Suffix) bool { return s&o == o }

func (s Suffix) String() string {
	var names []string
	if s.Has(Dual) {
		names = append(names, "dual")
	}
	if s.Has(ReducedCost) {
		names = append(names, "rc")
	}
	if s.Has(Slack) {
		names = append(names, "slack")
	}
	return strings.Join(names, ",")
}

// Solver runs a compiled problem through a solver.
//
// Solve returns an error only for failures to run the solver or to
// understand its answer. Infeasible, unbounded and limit outcomes are
// reported through Solution.Status.
type Solver interface {
	Solve(ctx context.Context, prob *Problem) (*Solution, error)
}

// Solution is a solver's answer, indexed like the problem's columns and
// rows. Values is nil when the solver produced no solution. ReducedCosts
// and Duals are nil when not reported.
type Solution struct {
	Status  SolveStatus
	Message string
	RunID   string

	Values       []float64
	ReducedCosts []float64
	Duals        []float64
}

func (sol *Solution) check(prob *Problem) error {
	switch {
	case sol.Values == nil && (sol.Status == SolutionOptimal || sol.Status == SolutionSuboptimal):
		return &ParseError{Msg: fmt.Sprintf("solver reported %s without values", sol.Status)}
	case sol.Values != nil && len(sol.Values) != len(prob.Columns):
		return &ParseError{Msg: fmt.Sprintf("got %d values for %d columns", len(sol.Values), len(prob.Columns))}
	case sol.ReducedCosts != nil && len(sol.ReducedCosts) != len(prob.Columns):
		return &ParseError{Msg: fmt.Sprintf("got %d reduced costs for %d columns", len(sol.ReducedCosts), len(prob.Columns))}
	case sol.Duals != nil && len(sol.Duals) != len(prob.Rows):
		return &ParseError{Msg: fmt.Sprintf("got %d duals for %d rows", len(sol.Duals), len(prob.Rows))}
	}
	return nil
}

type solveSettings struct {
	warmStart bool
	suffixes  Suffix
}

// SolveOption customizes a single solve.
type SolveOption func(*solveSettings)

// WithWarmStart passes the variables' current values to the solver as a
// starting point. Their feasibility is not checked.
func WithWarmStart() SolveOption {
	return func(s *solveSettings) {
		s.warmStart = true
	}
}

// WithSuffixes requests sensitivity information for this solve, in addition
// to the suffixes requested on the model.
func WithSuffixes(suffixes Suffix) SolveOption {
	return func(s *solveSettings) {
		s.suffixes |= suffixes
	}
}

// Solve compiles the model in its current state, runs it through solver and
// stores the returned values in the variables.
// Information about the solution can be queried from the returned
// SolveResult value.
func (model *Model) Solve(ctx context.Context, solver Solver, opts ...SolveOption) (*SolveResult, error) {
	model.mu.RLock()
	settings := solveSettings{suffixes: model.suffixes}
	model.mu.RUnlock()

	for _, opt := range opts {
		opt(&settings)
	}

	prob, err := model.compile(settings)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling model %s", model.name)
	}
	model.logger.Print(fmt.Sprintf("solving %s (objective %s, %d columns, %d rows)", model.name, prob.Objective, len(prob.Columns), len(prob.Rows)))

	start := time.Now()
	sol, err := solver.Solve(ctx, prob)
	if err != nil {
		return nil, errors.Wrapf(err, "solving model %s", model.name)
	}
	if err := sol.check(prob); err != nil {
		return nil, err
	}

	res := model.collect(prob, sol, settings)
	res.duration = time.Since(start)

	model.logger.Print(fmt.Sprintf("solved %s: %s, objective %g", model.name, res.status, res.objective))
	return res, nil
}

func (model *Model) collect(prob *Problem, sol *Solution, settings solveSettings) *SolveResult {
	model.mu.Lock()
	defer model.mu.Unlock()

	res := &SolveResult{
		model:     model,
		status:    sol.Status,
		message:   sol.Message,
		runID:     sol.RunID,
		objective: math.NaN(),
		values:    make(map[*Variable]float64),
		rc:        make(map[*Variable]float64),
		duals:     make(map[*instance]float64),
		slacks:    make(map[*instance]float64),
	}

	if sol.Values == nil {
		return res
	}
	res.hasValues = true

	inProblem := make(map[*Variable]bool, len(prob.vars))
	for i, v := range prob.vars {
		v.value, v.hasValue = sol.Values[i], true
		inProblem[v] = true
	}
	for _, v := range model.vars {
		if !v.fixed && !inProblem[v] {
			// unreferenced: any value within bounds is optimal
			v.value, v.hasValue = math.Min(math.Max(0, v.lower), v.upper), true
		}
		res.values[v] = v.value
	}
	res.objective = prob.ObjectiveAt(sol.Values)

	if settings.suffixes.Has(ReducedCost) {
		if sol.ReducedCosts == nil {
			model.logger.Print("solver reported no reduced costs")
		}
		for i, rc := range sol.ReducedCosts {
			res.rc[prob.vars[i]] = rc
		}
	}
	if settings.suffixes.Has(Dual) {
		if sol.Duals == nil {
			model.logger.Print("solver reported no duals")
		}
		for i, d := range sol.Duals {
			res.duals[prob.rows[i]] = d
		}
	}
	if settings.suffixes.Has(Slack) {
		for i, row := range prob.Rows {
			res.slacks[prob.rows[i]] = slack(row, prob.Activity(i, sol.Values))
		}
	}

	return res
}

// slack is the distance of the activity to the row's binding bound.
func slack(row Row, activity float64) float64 {
	switch {
	case row.Lower == row.Upper:
		return 0
	case math.IsInf(row.Lower, -1):
		return row.Upper - activity
	case math.IsInf(row.Upper, 1):
		return activity - row.Lower
	default:
		return math.Min(row.Upper-activity, activity-row.Lower)
	}
}
