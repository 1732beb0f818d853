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
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrExecutableNotFound is returned when the configured solver
	// executable cannot be found or is not executable.
	ErrExecutableNotFound = errors.New("solver executable not found or not executable")

	// ErrNoActiveObjective is returned when solving a model without an
	// active objective.
	ErrNoActiveObjective = errors.New("model has no active objective")

	// ErrMultipleObjectives is returned when solving a model with more
	// than one active objective.
	ErrMultipleObjectives = errors.New("model has more than one active objective")

	// ErrUnsupported is returned by solver backends for problems they
	// cannot handle (e.g. integer columns in a pure LP backend).
	ErrUnsupported = errors.New("not supported by solver backend")
)

// DefinitionError reports a mistake in the model itself: duplicate labels,
// tuples outside their index sets, missing parameter values, trivially
// infeasible rows. They are detected while building or compiling the model,
// never by the solver.
type DefinitionError struct {
	Component string
	Msg       string
}

func (e *DefinitionError) Error() string {
	if e.Component == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Msg)
}

func definitionErrorf(component, format string, args ...interface{}) *DefinitionError {
	return &DefinitionError{Component: component, Msg: fmt.Sprintf(format, args...)}
}

// catchDefinition converts a *DefinitionError panic raised by the At
// accessors inside rule functions into a regular error.
func catchDefinition(err *error) {
	if r := recover(); r != nil {
		de, ok := r.(*DefinitionError)
		if !ok {
			panic(r)
		}
		*err = de
	}
}

// ParseError reports malformed or truncated solver output.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("parsing %s:%d: %s", e.File, e.Line, e.Msg)
	case e.File != "":
		return fmt.Sprintf("parsing %s: %s", e.File, e.Msg)
	default:
		return "parsing solver output: " + e.Msg
	}
}

// SolveError reports a solver process that exited with a non-zero status.
type SolveError struct {
	Solver   string
	ExitCode int
	Output   string
}

func (e *SolveError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s exited with status %d", e.Solver, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Solver, e.ExitCode, e.Output)
}
