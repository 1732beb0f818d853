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

import "time"

/* Types */

type SolveResult struct {
	model     *Model
	status    SolveStatus
	message   string
	runID     string
	duration  time.Duration
	objective float64
	hasValues bool

	values map[*Variable]float64
	rc     map[*Variable]float64
	duals  map[*instance]float64
	slacks map[*instance]float64
}

// SolveStatus is the outcome reported by the solver. None of the statuses
// is an error: an infeasible model is a valid answer.
type SolveStatus int

const (
	SolutionUnknown SolveStatus = iota
	SolutionOptimal
	SolutionSuboptimal
	SolutionInfeasible
	SolutionUnbounded
	SolutionInfeasibleOrUnbounded
	SolutionLimitReached
	SolutionError
)

func (s SolveStatus) String() string {
	switch s {
	case SolutionOptimal:
		return "optimal"
	case SolutionSuboptimal:
		return "feasible"
	case SolutionInfeasible:
		return "infeasible"
	case SolutionUnbounded:
		return "unbounded"
	case SolutionInfeasibleOrUnbounded:
		return "infeasible or unbounded"
	case SolutionLimitReached:
		return "limit reached"
	case SolutionError:
		return "error"
	default:
		return "unknown"
	}
}

// Status reports the solver's verdict, e.g. SolutionOptimal or
// SolutionInfeasible.
func (res *SolveResult) Status() SolveStatus {
	return res.status
}

// Message returns the solver's own status text, if any.
func (res *SolveResult) Message() string {
	return res.message
}

// RunID identifies the solver run, e.g. in log lines and file names.
func (res *SolveResult) RunID() string {
	return res.runID
}

// Duration is the wall time spent in the solver backend.
func (res *SolveResult) Duration() time.Duration {
	return res.duration
}

// HasValues reports whether the solver returned variable values. It does
// not for infeasible or unbounded problems.
func (res *SolveResult) HasValues() bool {
	return res.hasValues
}

// ObjectiveValue returns the value of the objective function for
// this optimization result, computed from the returned values. It is NaN
// when there are none. This value is only optimal if Status
// also returns SolutionOptimal.
func (res *SolveResult) ObjectiveValue() float64 {
	return res.objective
}

// Value returns the computed value of the given variable for this
// optimization result.
// This is a shorthand for PrimalValue.
func (res *SolveResult) Value(v *Variable) float64 {
	return res.PrimalValue(v)
}

// PrimalValue returns the computed value of the given variable for
// this optimization result, or 0 if there is none.
func (res *SolveResult) PrimalValue(v *Variable) float64 {
	return res.values[v]
}

// Values returns the values of a whole group keyed by tuple.
func (res *SolveResult) Values(g *VarGroup) map[Key]float64 {
	out := make(map[Key]float64, len(g.vars))
	for _, v := range g.vars {
		if x, ok := res.values[v]; ok {
			out[v.tuple.Key()] = x
		}
	}
	return out
}

// ReducedCost returns the reduced cost of the variable. It is only
// available if requested with the ReducedCost suffix, reported by the
// solver, and the variable was not fixed.
func (res *SolveResult) ReducedCost(v *Variable) (float64, bool) {
	rc, ok := res.rc[v]
	return rc, ok
}

// Dual returns the dual value of a constraint instance, if requested with
// the Dual suffix and reported by the solver.
func (res *SolveResult) Dual(c *Constraint, labels ...string) (float64, bool) {
	inst, ok := c.index[K(labels...)]
	if !ok {
		return 0, false
	}
	d, ok := res.duals[inst]
	return d, ok
}

// Slack returns the slack of a constraint instance, if requested with the
// Slack suffix. Inactive constraints have none.
func (res *SolveResult) Slack(c *Constraint, labels ...string) (float64, bool) {
	inst, ok := c.index[K(labels...)]
	if !ok {
		return 0, false
	}
	s, ok := res.slacks[inst]
	return s, ok
}

// Model returns the model that was solved.
func (res *SolveResult) Model() *Model {
	return res.model
}
