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

// Package glpk runs problems through glpsol, the GLPK stand-alone solver.
// The problem is passed as an LP file and the solution is read back from
// the plain text file written by -w. Problems with integral columns are
// solved with branch-and-cut, the others with the simplex method.
package glpk

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/costela/lpmodel"
	"github.com/costela/lpmodel/internal/run"
)

const DefaultExecutable = "glpsol"

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

// WithOption passes --name value, or --name alone for an empty value, e.g.
// mipgap 0.05 or nopresol. Options are not validated.
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
			return nil, errors.Wrap(err, "applying glpk option")
		}
	}
	return s, nil
}

// Solve implements lpmodel.Solver. glpsol takes no starting solution, so
// warm starts are ignored.
func (s *Solver) Solve(ctx context.Context, prob *lpmodel.Problem) (*lpmodel.Solution, error) {
	ws, err := run.NewWorkspace(s.WorkDir, s.KeepFiles)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			s.Logger.Print("glpk: ", err)
		}
	}()

	if prob.WarmStart {
		s.Logger.Print("glpk: warm start not supported, ignored")
	}

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

	solPath := ws.Path("solution", "sol")
	args := []string{"--lp", f.Name(), "-w", solPath}
	for _, name := range s.OptionNames() {
		args = append(args, "--"+name)
		if v := s.Options[name]; v != "" {
			args = append(args, v)
		}
	}

	out, err := run.Run(ctx, run.Command{
		Solver:     "glpk",
		Executable: s.Executable,
		Args:       args,
		Dir:        ws.Dir(),
		Logger:     s.Logger,
	})
	if err != nil {
		return nil, err
	}

	sol, err := os.Open(solPath)
	if err != nil {
		return nil, &lpmodel.ParseError{File: solPath, Msg: "glpsol wrote no solution file"}
	}
	defer sol.Close()

	res, err := ParseSolution(sol, prob, layout, out)
	if err != nil {
		var pe *lpmodel.ParseError
		if errors.As(err, &pe) {
			pe.File = solPath
		}
		return nil, err
	}
	res.RunID = ws.ID()
	return res, nil
}
