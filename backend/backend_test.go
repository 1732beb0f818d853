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
package backend

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costela/lpmodel"
	"github.com/costela/lpmodel/backend/cbc"
	"github.com/costela/lpmodel/backend/glpk"
	"github.com/costela/lpmodel/backend/gurobi"
	"github.com/costela/lpmodel/backend/simplex"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(strings.ToUpper(string(k)))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("xpress")
	assert.Equal(t, lpmodel.ErrUnsupported, errors.Cause(err))

	_, err = ParseKind("cplex")
	assert.Error(t, err)
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
solver: CBC
executable: /opt/coin/bin/cbc
workdir: /tmp/lp
keepfiles: true
options:
  allowableGap: 0.05
  seconds: 60
  presolve: on
  log:
`))
	require.NoError(t, err)

	assert.Equal(t, CBC, cfg.Kind)
	assert.Equal(t, "/opt/coin/bin/cbc", cfg.Executable)
	assert.Equal(t, "/tmp/lp", cfg.WorkDir)
	assert.True(t, cfg.KeepFiles)
	assert.Equal(t, map[string]string{
		"allowableGap": "0.05",
		"seconds":      "60",
		"presolve":     "on",
		"log":          "",
	}, cfg.Options)
}

func TestParseConfigErrors(t *testing.T) {
	tests := map[string]string{
		"no solver":      "executable: cbc\n",
		"empty":          "",
		"unknown solver": "solver: cplex\n",
		"unknown field":  "solver: cbc\ntimeout: 3\n",
		"nested option":  "solver: cbc\noptions:\n  a:\n    b: 1\n",
		"malformed":      "solver: [cbc\n",
		"unsupported":    "solver: xpress\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("solver: gurobi\noptions:\n  MIPGap: 0.01\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Gurobi, cfg.Kind)
	assert.Equal(t, "0.01", cfg.Options["MIPGap"])

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	cfg := Config{Kind: CBC, Options: map[string]string{"sec": "10"}}

	merged := cfg.Merge(map[string]string{"sec": "60", "allowableGap": "0"})
	assert.Equal(t, map[string]string{"sec": "10", "allowableGap": "0"}, merged.Options)
	assert.Equal(t, map[string]string{"sec": "10"}, cfg.Options, "the receiver is not modified")

	merged = Config{Kind: GLPK}.Merge(nil)
	assert.Empty(t, merged.Options)
}

func TestNew(t *testing.T) {
	tests := []struct {
		cfg  Config
		want interface{}
	}{
		{Config{Kind: CBC, Options: map[string]string{"sec": "1"}}, &cbc.Solver{}},
		{Config{Kind: Gurobi, Executable: "/opt/gurobi/bin/gurobi_cl"}, &gurobi.Solver{}},
		{Config{Kind: GLPK, KeepFiles: true}, &glpk.Solver{}},
		{Config{Kind: Simplex, Options: map[string]string{"tol": "1e-9", "other": "x"}}, &simplex.Solver{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.cfg.Kind), func(t *testing.T) {
			solver, err := New(tt.cfg)
			require.NoError(t, err)
			assert.IsType(t, tt.want, solver)
		})
	}

	solver, err := New(Config{Kind: CBC, Executable: "/opt/cbc", Options: map[string]string{"sec": "1"}})
	require.NoError(t, err)
	s := solver.(*cbc.Solver)
	assert.Equal(t, "/opt/cbc", s.Executable)
	assert.Equal(t, "1", s.Options["sec"])

	_, err = New(Config{Kind: Simplex, Options: map[string]string{"tol": "small"}})
	assert.Error(t, err)
	_, err = New(Config{Kind: Simplex, Options: map[string]string{"tol": "-1"}})
	assert.Error(t, err)
	_, err = New(Config{Kind: XPRESS})
	assert.Equal(t, lpmodel.ErrUnsupported, errors.Cause(err))
}
