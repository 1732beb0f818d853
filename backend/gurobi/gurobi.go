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

// Package gurobi runs problems through the gurobi_cl command line tool. The
// problem is passed as an LP file and the solution is read back from a JSON
// result file.
package gurobi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/costela/lpmodel"
	"github.com/costela/lpmodel/internal/run"
)

const DefaultExecutable = "gurobi_cl"

// Gurobi optimization status codes.
const (
	statusLoaded        = 1
	statusOptimal       = 2
	statusInfeasible    = 3
	statusInfOrUnbd     = 4
	statusUnbounded     = 5
	statusCutoff        = 6
	statusIterLimit     = 7
	statusNodeLimit     = 8
	statusTimeLimit     = 9
	statusSolutionLimit = 10
	statusInterrupted   = 11
	statusNumeric       = 12
	statusSuboptimal    = 13
	statusInProgress    = 14
	statusUserObjLimit  = 15
	statusWorkLimit     = 16
	statusMemLimit      = 17
)

type Solver struct {
	run.Settings
}

type Option func(*Solver) error

func WithExecutable(path string) Option {
	return func(s *Solver) error {
		if path == "" {
			return errors.New("empty executable")
		}
		s.Executable = path

		return nil
	}
}

// WithOption passes the parameter name=value on the command line, e.g.
// MIPGap=0.05. Parameters are not validated.
func WithOption(name, value string) Option {
	return func(s *Solver) error {
		s.Options[name] = value

		return nil
	}
}

func WithOptions(opts map[string]string) Option {
	return func(s *Solver) error {
		for k, v := range opts {
			s.Options[k] = v
		}

		return nil
	}
}

func WithWorkDir(dir string) Option {
	return func(s *Solver) error {
		s.WorkDir = dir

		return nil
	}
}

func WithKeepFiles(keep bool) Option {
	return func(s *Solver) error {
		s.KeepFiles = keep

		return nil
	}
}

func WithLogger(logger lpmodel.Logger) Option {
	return func(s *Solver) error {
		s.Logger = logger

		return nil
	}
}

func New(opts ...Option) (*Solver, error) {
	s := &Solver{Settings: run.NewSettings(DefaultExecutable)}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, errors.Wrap(err, "applying gurobi option")
		}
	}
	return s, nil
}

// Solve implements lpmodel.Solver.
func (s *Solver) Solve(ctx context.Context, prob *lpmodel.Problem) (*lpmodel.Solution, error) {
	ws, err := run.NewWorkspace(s.WorkDir, s.KeepFiles)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			s.Logger.Print("gurobi: ", err)
		}
	}()

	f, err := ws.Create("problem", "lp")
	if err != nil {
		return nil, err
	}
	layout, err := prob.WriteLP(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, errors.Wrap(err, "writing problem file")
	}

	resultPath := ws.Path("solution", "json")
	args := []string{"ResultFile=" + resultPath, "JSONSolDetail=1"}

	if prob.WarmStart {
		start, err := writeStart(ws, prob)
		if err != nil {
			return nil, err
		}
		args = append(args, "InputFile="+start)
	}
	for _, name := range s.OptionNames() {
		args = append(args, name+"="+s.Options[name])
	}
	args = append(args, f.Name())

	out, err := run.Run(ctx, run.Command{
		Solver:     "gurobi",
		Executable: s.Executable,
		Args:       args,
		Dir:        ws.Dir(),
		Logger:     s.Logger,
	})
	if err != nil {
		return nil, err
	}

	res, err := os.Open(resultPath)
	if os.IsNotExist(err) {
		// no result file is written when there is no solution
		sol, ok := statusFromOutput(out)
		if !ok {
			return nil, &lpmodel.ParseError{File: resultPath, Msg: "gurobi wrote no result file"}
		}
		sol.RunID = ws.ID()
		return sol, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "opening gurobi result")
	}
	defer res.Close()

	sol, err := ParseResult(res, prob, layout)
	if err != nil {
		var pe *lpmodel.ParseError
		if errors.As(err, &pe) {
			pe.File = resultPath
		}
		return nil, err
	}
	sol.RunID = ws.ID()
	return sol, nil
}

func writeStart(ws *run.Workspace, prob *lpmodel.Problem) (string, error) {
	f, err := ws.Create("start", "mst")
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# MIP start")
	for _, c := range prob.Columns {
		if c.HasInitial {
			fmt.Fprintf(w, "%s %s\n", c.Label, strconv.FormatFloat(c.Initial, 'g', -1, 64))
		}
	}
	if err := w.Flush(); err != nil {
		return "", errors.Wrap(err, "writing warm start")
	}
	return f.Name(), f.Close()
}

type result struct {
	SolutionInfo struct {
		Status   int      `json:"Status"`
		ObjVal   *float64 `json:"ObjVal"`
		SolCount int      `json:"SolCount"`
	} `json:"SolutionInfo"`
	Vars []struct {
		VarName string   `json:"VarName"`
		X       float64  `json:"X"`
		RC      *float64 `json:"RC"`
	} `json:"Vars"`
	Constrs []struct {
		ConstrName string   `json:"ConstrName"`
		Slack      float64  `json:"Slack"`
		Pi         *float64 `json:"Pi"`
	} `json:"Constrs"`
}

// ParseResult reads a JSON result file written by gurobi_cl with
// JSONSolDetail=1.
func ParseResult(r io.Reader, prob *lpmodel.Problem, layout *lpmodel.Layout) (*lpmodel.Solution, error) {
	var res result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, &lpmodel.ParseError{Msg: err.Error()}
	}

	status := mapStatus(res.SolutionInfo.Status)
	sol := &lpmodel.Solution{Status: status, Message: fmt.Sprintf("gurobi status %d", res.SolutionInfo.Status)}
	if res.SolutionInfo.ObjVal != nil {
		sol.Message += fmt.Sprintf(", objective %g", *res.SolutionInfo.ObjVal)
	}
	if res.SolutionInfo.SolCount == 0 || (len(res.Vars) == 0 && len(prob.Columns) > 0) {
		if status == lpmodel.SolutionOptimal || status == lpmodel.SolutionSuboptimal {
			return nil, &lpmodel.ParseError{Msg: "result has no solution values"}
		}
		return sol, nil
	}

	values := make([]float64, len(prob.Columns))
	rc := make([]float64, len(prob.Columns))
	hasRC := true
	for _, v := range res.Vars {
		col, ok := layout.Column(v.VarName)
		if !ok {
			return nil, &lpmodel.ParseError{Msg: fmt.Sprintf("unknown variable %s", v.VarName)}
		}
		if col < 0 {
			continue
		}
		values[col] = v.X
		if v.RC == nil {
			hasRC = false
		} else {
			rc[col] = *v.RC
		}
	}
	sol.Values = values
	if hasRC && !prob.IsMIP() {
		sol.ReducedCosts = rc
	}

	duals := make([]float64, len(prob.Rows))
	hasPi := len(res.Constrs) > 0 || len(prob.Rows) == 0
	for _, c := range res.Constrs {
		row, ok := layout.Row(c.ConstrName)
		if !ok {
			return nil, &lpmodel.ParseError{Msg: fmt.Sprintf("unknown constraint %s", c.ConstrName)}
		}
		if row < 0 {
			continue
		}
		if c.Pi == nil {
			hasPi = false
			continue
		}
		duals[row] += *c.Pi
	}
	if hasPi && !prob.IsMIP() {
		sol.Duals = duals
	}

	return sol, nil
}

func mapStatus(code int) lpmodel.SolveStatus {
	switch code {
	case statusOptimal:
		return lpmodel.SolutionOptimal
	case statusSuboptimal:
		return lpmodel.SolutionSuboptimal
	case statusInfeasible:
		return lpmodel.SolutionInfeasible
	case statusUnbounded:
		return lpmodel.SolutionUnbounded
	case statusInfOrUnbd:
		return lpmodel.SolutionInfeasibleOrUnbounded
	case statusCutoff, statusIterLimit, statusNodeLimit, statusTimeLimit, statusSolutionLimit,
		statusInterrupted, statusUserObjLimit, statusWorkLimit, statusMemLimit:
		return lpmodel.SolutionLimitReached
	case statusNumeric:
		return lpmodel.SolutionError
	case statusLoaded, statusInProgress:
		return lpmodel.SolutionUnknown
	default:
		return lpmodel.SolutionUnknown
	}
}

func statusFromOutput(out *run.Output) (*lpmodel.Solution, bool) {
	switch {
	case out.Contains("Infeasible or unbounded model"), out.Contains("Model is infeasible or unbounded"):
		return &lpmodel.Solution{Status: lpmodel.SolutionInfeasibleOrUnbounded, Message: "infeasible or unbounded model"}, true
	case out.Contains("Infeasible model"), out.Contains("Model is infeasible"):
		return &lpmodel.Solution{Status: lpmodel.SolutionInfeasible, Message: "infeasible model"}, true
	case out.Contains("Unbounded model"), out.Contains("Model is unbounded"):
		return &lpmodel.Solution{Status: lpmodel.SolutionUnbounded, Message: "unbounded model"}, true
	case out.Contains("Time limit reached"), out.Contains("Solution limit reached"), out.Contains("Node limit reached"):
		return &lpmodel.Solution{Status: lpmodel.SolutionLimitReached, Message: out.Tail(1)}, true
	}
	return nil, false
}
