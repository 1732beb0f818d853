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
package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costela/lpmodel"
)

const costs = `# plant costs
plant, fixed, variable
A,     100,   2.5
B,     80,
C,     120,   1
`

const wide = `Point,L1,L2,L3
P1,1,,
P2,1,1,
P3,,1,1
`

const long = `Flight,Sequence,Value
F1,S1,1
F1,S2,1
F2,S2,1
F3,S3,
`

func read(t *testing.T, s string) *Table {
	t.Helper()

	tbl, err := Read(strings.NewReader(s))
	require.NoError(t, err)
	return tbl
}

func TestRead(t *testing.T) {
	tbl := read(t, costs)

	assert.Equal(t, []string{"plant", "fixed", "variable"}, tbl.Header())
	assert.Equal(t, []string{"fixed", "variable"}, tbl.Columns())
	assert.Equal(t, []string{"A", "B", "C"}, tbl.Index())
	assert.Equal(t, 3, tbl.Len())

	cell, err := tbl.Cell("B", "variable")
	require.NoError(t, err)
	assert.Equal(t, "", cell)

	v, err := tbl.Float("A", "variable")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	_, err = tbl.Float("B", "variable")
	assert.Error(t, err, "blank cell")
	_, err = tbl.Cell("D", "fixed")
	assert.Error(t, err)
	_, err = tbl.Cell("A", "nope")
	assert.Error(t, err)
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"empty":            "",
		"only comments":    "# nothing here\n",
		"duplicate column": "a,b,b\n1,2,3\n",
		"ragged row":       "a,b\n1,2,3\n",
	}

	for name, s := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(s))
			assert.Error(t, err)
		})
	}
}

func TestColumn(t *testing.T) {
	tbl := read(t, costs)

	fixed, err := tbl.Column("fixed")
	require.NoError(t, err)
	assert.Equal(t, map[lpmodel.Key]float64{lpmodel.K("A"): 100, lpmodel.K("B"): 80, lpmodel.K("C"): 120}, fixed)

	variable, err := tbl.Column("variable")
	require.NoError(t, err)
	assert.Len(t, variable, 2, "blank cells are left out")

	_, err = tbl.Column("nope")
	assert.Error(t, err)

	_, err = read(t, "k,v\na,x\n").Column("v")
	assert.Error(t, err, "not a number")
}

func TestStack(t *testing.T) {
	tbl := read(t, wide)

	stacked, err := tbl.Stack()
	require.NoError(t, err)
	assert.Equal(t, map[lpmodel.Key]float64{
		lpmodel.K("P1", "L1"): 1,
		lpmodel.K("P2", "L1"): 1,
		lpmodel.K("P2", "L2"): 1,
		lpmodel.K("P3", "L2"): 1,
		lpmodel.K("P3", "L3"): 1,
	}, stacked)
}

func TestLongFormat(t *testing.T) {
	tbl := read(t, long)

	assert.Equal(t, []string{"F1", "F1", "F2", "F3"}, tbl.Index())

	flights, err := tbl.Unique("Flight")
	require.NoError(t, err)
	assert.Equal(t, []string{"F1", "F2", "F3"}, flights)
	sequences, err := tbl.Unique("Sequence")
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2", "S3"}, sequences)

	keyed, err := tbl.Keyed([]string{"Flight", "Sequence"}, "Value")
	require.NoError(t, err)
	assert.Equal(t, map[lpmodel.Key]float64{
		lpmodel.K("F1", "S1"): 1,
		lpmodel.K("F1", "S2"): 1,
		lpmodel.K("F2", "S2"): 1,
	}, keyed)

	// repeated labels cannot be looked up
	_, err = tbl.Column("Value")
	assert.Error(t, err)
	_, err = tbl.Stack()
	assert.Error(t, err)
	_, err = tbl.Cell("F1", "Value")
	assert.Error(t, err)
	cell, err := tbl.Cell("F2", "Sequence")
	require.NoError(t, err)
	assert.Equal(t, "S2", cell)

	_, err = tbl.Keyed([]string{"Flight"}, "Value")
	assert.Error(t, err, "duplicate key")
	_, err = tbl.Keyed([]string{"Nope"}, "Value")
	assert.Error(t, err)
	_, err = tbl.Unique("Nope")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "costs.csv")
	require.NoError(t, os.WriteFile(path, []byte(costs), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
