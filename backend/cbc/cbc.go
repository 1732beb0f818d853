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

// Package cbc runs problems through the COIN-OR CBC executable. The
// problem is passed as an LP file and the solution is read back from the
// file written by -solu.
package cbc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/costela/lpmodel"
	"github.com/costela/lpmodel/internal/run"
)

const DefaultExecutable = "cbc"

type Solver struct {
	run.Settings
}

type Option func(*Solver) error

// WithExecutable sets the CBC binary, looked up in PATH unless it is a
// path.
func WithExecutable(path string) Option {
	return func(s *Solver) error {
		if path == "" {
			return errors.New("empty executable")
		}
		s.Executable = path

		return nil
	}
}

// WithOption passes -name value on the command line. An empty value passes
// the flag alone. Options are not validated.
func WithOption(name, value string) Option {
	return func(s *Solver) error {
		s.Options[name] = value

		return nil
	}
}

// WithOptions passes every entry of opts like WithOption.
func WithOptions(opts map[string]string) Option {
	return func(s *Solver) error {
		for k, v := range opts {
			s.Options[k] = v
		}

		return nil
	}
}

// WithWorkDir places the exchanged files in dir instead of a temporary
// directory.
func WithWorkDir(dir string) Option {
	return func(s *Solver) error {
		s.WorkDir = dir

		return nil
	}
}

// WithKeepFiles leaves the exchanged files in place after solving.
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
			return nil, errors.Wrap(err, "applying cbc option")
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
			s.Logger.Print("cbc: ", err)
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

	args := []string{"-printingOptions", "all", "-import", f.Name()}

	if prob.WarmStart {
		if prob.IsMIP() {
			start, err := s.writeStart(ws, prob)
			if err != nil {
				return nil, err
			}
			args = append(args, "-mipstart", start)
		} else {
			s.Logger.Print("cbc: warm start ignored for continuous problems")
		}
	}

	for _, name := range s.OptionNames() {
		args = append(args, "-"+name)
		if v := s.Options[name]; v != "" {
			args = append(args, v)
		}
	}

	solnPath := ws.Path("solution", "soln")
	args = append(args, "-stat=1", "-solve", "-solu", solnPath)

	if _, err := run.Run(ctx, run.Command{
		Solver:     "cbc",
		Executable: s.Executable,
		Args:       args,
		Dir:        ws.Dir(),
		Logger:     s.Logger,
	}); err != nil {
		return nil, err
	}

	soln, err := os.Open(solnPath)
	if err != nil {
		return nil, &lpmodel.ParseError{File: solnPath, Msg: "cbc wrote no solution file"}
	}
	defer soln.Close()

	sol, err := ParseSolution(soln, prob, layout)
	if err != nil {
		var pe *lpmodel.ParseError
		if errors.As(err, &pe) {
			pe.File = solnPath
		}
		return nil, err
	}
	sol.RunID = ws.ID()
	return sol, nil
}

// writeStart writes the columns' initial values in the format read by
// -mipstart.
func (s *Solver) writeStart(ws *run.Workspace, prob *lpmodel.Problem) (string, error) {
	f, err := ws.Create("start", "soln")
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "Feasible - objective value 0.00000000")
	n := 0
	for _, c := range prob.Columns {
		if !c.HasInitial {
			continue
		}
		fmt.Fprintf(w, "%d %s %s\n", n, c.Label, strconv.FormatFloat(c.Initial, 'g', -1, 64))
		n++
	}
	if err := w.Flush(); err != nil {
		return "", errors.Wrap(err, "writing warm start")
	}
	return f.Name(), f.Close()
}

// ParseSolution reads a solution file written by cbc -printingOptions all
// -solu. Rows and columns are matched by label through layout. Values are
// only returned for optimal or limit-stopped runs with an incumbent;
// duals and reduced costs only for continuous problems.
func ParseSolution(r io.Reader, prob *lpmodel.Problem, layout *lpmodel.Layout) (*lpmodel.Solution, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "reading cbc solution")
		}
		return nil, &lpmodel.ParseError{Msg: "empty solution file"}
	}

	header := strings.TrimSpace(sc.Text())
	status, hasValues, ok := parseStatus(header)
	if !ok {
		return nil, &lpmodel.ParseError{Line: 1, Msg: fmt.Sprintf("unrecognized status %q", header)}
	}

	values := make([]float64, len(prob.Columns))
	rc := make([]float64, len(prob.Columns))
	duals := make([]float64, len(prob.Rows))

	for line := 2; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		// infeasibilities are flagged with **
		if fields[0] == "**" {
			fields = fields[1:]
		} else {
			fields[0] = strings.TrimPrefix(fields[0], "**")
		}
		if len(fields) < 4 {
			return nil, &lpmodel.ParseError{Line: line, Msg: fmt.Sprintf("malformed line %q", sc.Text())}
		}

		label := fields[1]
		val, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, &lpmodel.ParseError{Line: line, Msg: fmt.Sprintf("bad value %q", fields[2])}
		}
		dual, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, &lpmodel.ParseError{Line: line, Msg: fmt.Sprintf("bad dual %q", fields[3])}
		}

		if row, ok := layout.Row(label); ok {
			if row >= 0 {
				duals[row] += dual
			}
			continue
		}
		if col, ok := layout.Column(label); ok {
			if col >= 0 {
				values[col], rc[col] = val, dual
			}
			continue
		}
		return nil, &lpmodel.ParseError{Line: line, Msg: fmt.Sprintf("unknown label %s", label)}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading cbc solution")
	}

	sol := &lpmodel.Solution{Status: status, Message: header}
	if !hasValues {
		return sol, nil
	}
	sol.Values = values
	if !prob.IsMIP() {
		// cbc minimizes internally
		if prob.Sense == lpmodel.Maximize {
			for i := range duals {
				duals[i] = -duals[i]
			}
			for i := range rc {
				rc[i] = -rc[i]
			}
		}
		sol.Duals, sol.ReducedCosts = duals, rc
	}
	return sol, nil
}

func parseStatus(header string) (status lpmodel.SolveStatus, hasValues, ok bool) {
	switch {
	case strings.HasPrefix(header, "Optimal"):
		return lpmodel.SolutionOptimal, true, true
	case strings.HasPrefix(header, "Infeasible"),
		strings.HasPrefix(header, "Integer infeasible"),
		strings.HasPrefix(header, "Primal infeasible"):
		return lpmodel.SolutionInfeasible, false, true
	case strings.HasPrefix(header, "Unbounded"),
		strings.HasPrefix(header, "Dual infeasible"):
		return lpmodel.SolutionUnbounded, false, true
	case strings.HasPrefix(header, "Stopped on"):
		if strings.Contains(header, "no integer solution") {
			return lpmodel.SolutionLimitReached, false, true
		}
		return lpmodel.SolutionLimitReached, true, true
	default:
		return lpmodel.SolutionUnknown, false, false
	}
}
