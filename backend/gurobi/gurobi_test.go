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
package gurobi

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costela/lpmodel"
	"github.com/costela/lpmodel/internal/run"
)

const (
	delta = 0.0000001 // acceptable numerical deviation for test results
)

// testModel is max 3x + 2y s.t. c1: x + y <= 4, c2: x + 3y <= 6.
func testModel(t testing.TB, domain lpmodel.Domain) (*lpmodel.Model, *lpmodel.Variable, *lpmodel.Variable) {
	model, err := lpmodel.NewModel("gurobi test")
	require.NoError(t, err)

	x, err := model.AddVariable("x", domain)
	require.NoError(t, err)
	y, err := model.AddVariable("y", domain)
	require.NoError(t, err)

	_, err = model.AddObjective("obj", lpmodel.Maximize, lpmodel.NewExpr().Add(3, x).Add(2, y))
	require.NoError(t, err)
	_, err = model.AddConstraint("c1", lpmodel.Le(lpmodel.Sum(x.Expr(), y.Expr()), lpmodel.Const(4)))
	require.NoError(t, err)
	_, err = model.AddConstraint("c2", lpmodel.Le(lpmodel.NewExpr().Add(1, x).Add(3, y), lpmodel.Const(6)))
	require.NoError(t, err)

	return model, x, y
}

func compile(t testing.TB, model *lpmodel.Model) (*lpmodel.Problem, *lpmodel.Layout) {
	prob, err := model.Compile()
	require.NoError(t, err)
	layout, err := prob.WriteLP(io.Discard)
	require.NoError(t, err)
	return prob, layout
}

const optimalResult = `{
  "SolutionInfo": {"Status": 2, "ObjVal": 12, "SolCount": 1},
  "Vars": [
    {"VarName": "x", "X": 4, "RC": 0},
    {"VarName": "y", "X": 0, "RC": -1}
  ],
  "Constrs": [
    {"ConstrName": "c1", "Slack": 0, "Pi": 3},
    {"ConstrName": "c2", "Slack": 2, "Pi": 0}
  ]
}`

const mipResult = `{
  "SolutionInfo": {"Status": 13, "ObjVal": 12, "SolCount": 2},
  "Vars": [
    {"VarName": "x", "X": 4},
    {"VarName": "y", "X": 0}
  ]
}`

func TestParseResult(t *testing.T) {
	model, _, _ := testModel(t, lpmodel.NonNegativeReals)
	prob, layout := compile(t, model)

	sol, err := ParseResult(strings.NewReader(optimalResult), prob, layout)
	require.NoError(t, err)

	assert.Equal(t, lpmodel.SolutionOptimal, sol.Status)
	assert.Equal(t, "gurobi status 2, objective 12", sol.Message)
	assert.InDeltaSlice(t, []float64{4, 0}, sol.Values, delta)
	assert.InDeltaSlice(t, []float64{0, -1}, sol.ReducedCosts, delta)
	assert.InDeltaSlice(t, []float64{3, 0}, sol.Duals, delta)
}

func TestParseResultMIP(t *testing.T) {
	model, _, _ := testModel(t, lpmodel.NonNegativeIntegers)
	prob, layout := compile(t, model)

	sol, err := ParseResult(strings.NewReader(mipResult), prob, layout)
	require.NoError(t, err)

	assert.Equal(t, lpmodel.SolutionSuboptimal, sol.Status)
	assert.InDeltaSlice(t, []float64{4, 0}, sol.Values, delta)
	assert.Nil(t, sol.ReducedCosts)
	assert.Nil(t, sol.Duals)
}

func TestParseResultNoSolution(t *testing.T) {
	model, _, _ := testModel(t, lpmodel.NonNegativeReals)
	prob, layout := compile(t, model)

	sol, err := ParseResult(strings.NewReader(`{"SolutionInfo": {"Status": 9, "SolCount": 0}}`), prob, layout)
	require.NoError(t, err)
	assert.Equal(t, lpmodel.SolutionLimitReached, sol.Status)
	assert.Nil(t, sol.Values)
}

func TestParseResultErrors(t *testing.T) {
	model, _, _ := testModel(t, lpmodel.NonNegativeReals)
	prob, layout := compile(t, model)

	tests := map[string]string{
		"not json":           `SolutionInfo`,
		"optimal, no values": `{"SolutionInfo": {"Status": 2, "SolCount": 0}}`,
		"unknown variable":   `{"SolutionInfo": {"Status": 2, "SolCount": 1}, "Vars": [{"VarName": "z", "X": 1}]}`,
		"unknown constraint": `{"SolutionInfo": {"Status": 2, "SolCount": 1}, "Vars": [{"VarName": "x", "X": 1}], "Constrs": [{"ConstrName": "c9"}]}`,
	}

	for name, result := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResult(strings.NewReader(result), prob, layout)
			var pe *lpmodel.ParseError
			assert.True(t, errors.As(err, &pe), "got %T: %v", err, err)
		})
	}
}

func TestMapStatus(t *testing.T) {
	tests := map[int]lpmodel.SolveStatus{
		statusLoaded:      lpmodel.SolutionUnknown,
		statusOptimal:     lpmodel.SolutionOptimal,
		statusInfeasible:  lpmodel.SolutionInfeasible,
		statusInfOrUnbd:   lpmodel.SolutionInfeasibleOrUnbounded,
		statusUnbounded:   lpmodel.SolutionUnbounded,
		statusTimeLimit:   lpmodel.SolutionLimitReached,
		statusInterrupted: lpmodel.SolutionLimitReached,
		statusNumeric:     lpmodel.SolutionError,
		statusSuboptimal:  lpmodel.SolutionSuboptimal,
		statusMemLimit:    lpmodel.SolutionLimitReached,
		99:                lpmodel.SolutionUnknown,
	}
	for code, want := range tests {
		assert.Equal(t, want, mapStatus(code), "status %d", code)
	}
}

func TestStatusFromOutput(t *testing.T) {
	sol, ok := statusFromOutput(&run.Output{Lines: []string{"Optimize a model with 2 rows", "Infeasible model"}})
	require.True(t, ok)
	assert.Equal(t, lpmodel.SolutionInfeasible, sol.Status)

	sol, ok = statusFromOutput(&run.Output{Lines: []string{"Model is infeasible or unbounded"}})
	require.True(t, ok)
	assert.Equal(t, lpmodel.SolutionInfeasibleOrUnbounded, sol.Status)

	_, ok = statusFromOutput(&run.Output{Lines: []string{"Segmentation fault"}})
	assert.False(t, ok)
}

/* Fake executable */

// fakeGurobi writes a script acting as gurobi_cl: it prints its arguments,
// copies the start file to the output, prints output and, unless result is
// empty, writes it to the ResultFile.
func fakeGurobi(t *testing.T, result, output string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	dir := t.TempDir()
	resPath := filepath.Join(dir, "result.json")
	require.NoError(t, os.WriteFile(resPath, []byte(result), 0o644))

	script := `#!/bin/sh
echo "args: $*"
echo "` + output + `"
for a in "$@"; do
  case "$a" in
    ResultFile=*) out="${a#ResultFile=}" ;;
    InputFile=*) cat "${a#InputFile=}" ;;
  esac
done
if [ -s "` + resPath + `" ]; then cp "` + resPath + `" "$out"; fi
`
	exe := filepath.Join(dir, "gurobi_cl")
	require.NoError(t, os.WriteFile(exe, []byte(script), 0o755))
	return exe
}

func TestSolveFakeExecutable(t *testing.T) {
	var lines []string
	logger := lpmodel.LoggerFunc(func(v ...interface{}) {
		lines = append(lines, v[0].(string))
	})

	model, x, _ := testModel(t, lpmodel.NonNegativeIntegers)
	x.SetValue(3)

	solver, err := New(
		WithExecutable(fakeGurobi(t, mipResult, "Optimal solution found")),
		WithOption("MIPGap", "0.05"),
		WithOptions(map[string]string{"TimeLimit": "60"}),
		WithLogger(logger),
	)
	require.NoError(t, err)

	res, err := model.Solve(context.Background(), solver, lpmodel.WithWarmStart())
	require.NoError(t, err)
	assert.Equal(t, lpmodel.SolutionSuboptimal, res.Status())
	assert.InDelta(t, 12, res.ObjectiveValue(), delta)

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "JSONSolDetail=1 InputFile=")
	assert.Contains(t, joined, "MIPGap=0.05 TimeLimit=60 ")
	assert.Contains(t, joined, "gurobi: x 3")
}

func TestSolveInfeasibleWithoutResult(t *testing.T) {
	model, _, _ := testModel(t, lpmodel.NonNegativeReals)

	solver, err := New(WithExecutable(fakeGurobi(t, "", "Infeasible model")))
	require.NoError(t, err)

	res, err := model.Solve(context.Background(), solver)
	require.NoError(t, err)
	assert.Equal(t, lpmodel.SolutionInfeasible, res.Status())
	assert.False(t, res.HasValues())
	assert.NotEmpty(t, res.RunID())
}

func TestSolveNoResult(t *testing.T) {
	model, _, _ := testModel(t, lpmodel.NonNegativeReals)

	solver, err := New(WithExecutable(fakeGurobi(t, "", "something odd happened")))
	require.NoError(t, err)

	_, err = model.Solve(context.Background(), solver)
	var pe *lpmodel.ParseError
	assert.True(t, errors.As(err, &pe), "got %T: %v", err, err)
}

/* Real solver */

func TestGurobi(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}
	if _, err := exec.LookPath(DefaultExecutable); err != nil {
		t.Skip("gurobi_cl not installed")
	}

	model, x, _ := testModel(t, lpmodel.NonNegativeReals)
	solver, err := New()
	require.NoError(t, err)

	res, err := model.Solve(context.Background(), solver, lpmodel.WithSuffixes(lpmodel.Dual))
	require.NoError(t, err)
	require.Equal(t, lpmodel.SolutionOptimal, res.Status())
	assert.InDelta(t, 12, res.ObjectiveValue(), 1e-6)
	assert.InDelta(t, 4, res.Value(x), 1e-6)
}
