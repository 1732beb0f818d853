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
package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/costela/lpmodel"
	"github.com/costela/lpmodel/report"
)

type stubSolver struct {
	sol *lpmodel.Solution
}

func (s stubSolver) Solve(ctx context.Context, prob *lpmodel.Problem) (*lpmodel.Solution, error) {
	return s.sol, nil
}

// solved builds max 3 x(a) + 2 x(b) + 0 y s.t. cap: x(a) + x(b) <= 4 and
// answers it with x(a)=4, x(b)=0, y=0.
func solved(t *testing.T, status lpmodel.SolveStatus) (*lpmodel.Model, *lpmodel.SolveResult) {
	t.Helper()

	model, err := lpmodel.NewModel("report test")
	require.NoError(t, err)

	i, err := model.AddSet("i", "a", "b")
	require.NoError(t, err)
	x, err := model.AddIndexedVariable("x", []*lpmodel.IndexSet{i}, lpmodel.NonNegativeReals, lpmodel.WithBounds(0, 10), lpmodel.WithDoc("amount"))
	require.NoError(t, err)
	_, err = model.AddBinaryVariable("y")
	require.NoError(t, err)

	_, err = model.AddObjective("obj", lpmodel.Maximize, lpmodel.NewExpr().Add(3, x.At("a")).Add(2, x.At("b")))
	require.NoError(t, err)
	_, err = model.AddConstraint("cap", lpmodel.Le(x.Sum(), lpmodel.Const(4)))
	require.NoError(t, err)

	sol := &lpmodel.Solution{Status: status, Message: "stub", RunID: "run-42"}
	if status == lpmodel.SolutionOptimal {
		sol.Values = []float64{4, 0}
		sol.ReducedCosts = []float64{0, -1}
		sol.Duals = []float64{3}
	}
	res, err := model.Solve(context.Background(), stubSolver{sol}, lpmodel.WithSuffixes(lpmodel.Dual|lpmodel.ReducedCost|lpmodel.Slack))
	require.NoError(t, err)
	return model, res
}

func TestSummary(t *testing.T) {
	_, res := solved(t, lpmodel.SolutionOptimal)

	var buf bytes.Buffer
	require.NoError(t, report.Summary(&buf, res))

	out := buf.String()
	assert.Regexp(t, `model:\s+report test\n`, out)
	assert.Regexp(t, `status:\s+optimal \(stub\)\n`, out)
	assert.Regexp(t, `objective:\s+12\n`, out)
	assert.Regexp(t, `run:\s+run-42\n`, out)

	_, res = solved(t, lpmodel.SolutionInfeasible)
	buf.Reset()
	require.NoError(t, report.Summary(&buf, res))
	assert.Contains(t, buf.String(), "infeasible")
	assert.NotContains(t, buf.String(), "objective")
}

func TestVariables(t *testing.T) {
	model, res := solved(t, lpmodel.SolutionOptimal)

	var buf bytes.Buffer
	require.NoError(t, report.Variables(&buf, model.Group("x"), res))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "x : amount", lines[0])
	assert.Equal(t, "    Size=2 Index=i Domain=NonNegativeReals", lines[1])
	assert.Equal(t, []string{"Key", "Lower", "Value", "Upper", "Fixed"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"a", "0", "4", "10", "false"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"b", "0", "0", "10", "false"}, strings.Fields(lines[4]))

	buf.Reset()
	require.NoError(t, report.Variables(&buf, model.Group("x"), res, report.OnlyNonZero()))
	assert.Len(t, strings.Split(strings.TrimRight(buf.String(), "\n"), "\n"), 4)

	buf.Reset()
	require.NoError(t, report.Variables(&buf, model.Group("y"), res))
	lines = strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "y", lines[0])
	assert.Equal(t, "    Size=1 Index=None Domain=Binary", lines[1])
	assert.Equal(t, []string{"None", "0", "0", "1", "false"}, strings.Fields(lines[3]))
}

func TestVariablesWithoutResult(t *testing.T) {
	model, err := lpmodel.NewModel("unsolved")
	require.NoError(t, err)
	x, err := model.AddVariable("x", lpmodel.Reals)
	require.NoError(t, err)
	x.Fix(2)
	_, err = model.AddVariable("z", lpmodel.Reals)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Variables(&buf, model.Group("x"), nil))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{"None", "None", "2", "None", "true"}, strings.Fields(lines[3]))

	buf.Reset()
	require.NoError(t, report.Variables(&buf, model.Group("z"), nil))
	lines = strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{"None", "None", "None", "None", "false"}, strings.Fields(lines[3]))
}

func TestSuffixes(t *testing.T) {
	model, res := solved(t, lpmodel.SolutionOptimal)

	var buf bytes.Buffer
	require.NoError(t, report.Suffixes(&buf, model, res))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, []string{"row", "dual", "slack"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"cap", "3", "0"}, strings.Fields(lines[1]))
	assert.Equal(t, "", lines[2])
	assert.Equal(t, []string{"column", "reduced", "cost"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"x(a)", "0"}, strings.Fields(lines[4]))
	assert.Equal(t, []string{"x(b)", "-1"}, strings.Fields(lines[5]))
}

func TestWriteJSON(t *testing.T) {
	model, res := solved(t, lpmodel.SolutionOptimal)

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf, model, res))

	var doc struct {
		Model        string             `json:"model"`
		Status       string             `json:"status"`
		Objective    *float64           `json:"objective"`
		Message      string             `json:"message"`
		RunID        string             `json:"runId"`
		Values       map[string]float64 `json:"values"`
		ReducedCosts map[string]float64 `json:"reducedCosts"`
		Duals        map[string]float64 `json:"duals"`
		Slacks       map[string]float64 `json:"slacks"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "report test", doc.Model)
	assert.Equal(t, "optimal", doc.Status)
	require.NotNil(t, doc.Objective)
	assert.Equal(t, 12.0, *doc.Objective)
	assert.Equal(t, "stub", doc.Message)
	assert.Equal(t, "run-42", doc.RunID)
	assert.Equal(t, map[string]float64{"x(a)": 4, "x(b)": 0, "y": 0}, doc.Values)
	assert.Equal(t, map[string]float64{"x(a)": 0, "x(b)": -1}, doc.ReducedCosts)
	assert.Equal(t, map[string]float64{"cap": 3}, doc.Duals)
	assert.Equal(t, map[string]float64{"cap": 0}, doc.Slacks)
}

func TestWriteJSONWithoutValues(t *testing.T) {
	model, res := solved(t, lpmodel.SolutionInfeasible)

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf, model, res))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "infeasible", doc["status"])
	assert.Contains(t, doc, "objective")
	assert.Nil(t, doc["objective"], "NaN objectives are written as null")
	assert.NotContains(t, doc, "values")
}

/* Diagrams */

func testDiagram() *report.Diagram {
	return &report.Diagram{
		Title: "network",
		Nodes: []report.Node{
			{Name: "s", X: 0, Y: 0, Group: "supply", Label: true},
			{Name: "p", X: 1, Y: 1, Group: "pool", Size: 6},
			{Name: "d", X: 2, Y: 0, Group: "demand", Label: true},
		},
		Edges: []report.Edge{
			{From: "s", To: "p", Weight: 3, Arrow: true, Label: "3"},
			{From: "p", To: "d", Weight: -1, Dashed: true},
			{From: "s", To: "d", Weight: 0},
		},
		ColorByWeight: true,
	}
}

func TestDiagramPlot(t *testing.T) {
	p, err := testDiagram().Plot()
	require.NoError(t, err)
	assert.Equal(t, "network", p.Title.Text)

	d := testDiagram()
	d.Nodes = append(d.Nodes, report.Node{Name: "s"})
	_, err = d.Plot()
	assert.Error(t, err, "duplicate node")

	d = testDiagram()
	d.Edges = append(d.Edges, report.Edge{From: "s", To: "nowhere"})
	_, err = d.Plot()
	assert.Error(t, err, "unknown edge end")

	d = &report.Diagram{Nodes: []report.Node{{Name: "only"}}, ShowAxes: true}
	_, err = d.Plot()
	assert.NoError(t, err, "degenerate extent")
}

func TestDiagramSave(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}

	for _, ext := range []string{"png", "svg"} {
		path := filepath.Join(t.TempDir(), "network."+ext)
		require.NoError(t, testDiagram().Save(path, 4*vg.Inch, 4*vg.Inch))
		assert.FileExists(t, path)
	}

	err := testDiagram().Save(filepath.Join(t.TempDir(), "network.unknown"), 4*vg.Inch, 4*vg.Inch)
	assert.Error(t, err)
}
