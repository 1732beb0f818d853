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

// Package table reads the flat comma-separated files examples take their
// data from: a header row, then one row per index label with the label in
// the first column.
package table

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/costela/lpmodel"
)

type Table struct {
	header []string
	rows   [][]string
	index  map[string]int
	dups   map[string]bool
	cols   map[string]int
}

// Read parses CSV from r. Cells are trimmed; every row must have as many
// cells as the header. Index labels may repeat, as in long-format files,
// but then the rows cannot be looked up by label.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading table")
	}
	if len(records) == 0 {
		return nil, errors.New("table has no header")
	}

	t := &Table{
		header: trimAll(records[0]),
		index:  make(map[string]int),
		dups:   make(map[string]bool),
		cols:   make(map[string]int),
	}
	for i, h := range t.header {
		if _, dup := t.cols[h]; dup {
			return nil, errors.Errorf("duplicate column %q", h)
		}
		t.cols[h] = i
	}
	for _, rec := range records[1:] {
		rec = trimAll(rec)
		if _, dup := t.index[rec[0]]; dup {
			t.dups[rec[0]] = true
		} else {
			t.index[rec[0]] = len(t.rows)
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// Load reads the CSV file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening table")
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return t, nil
}

func trimAll(rec []string) []string {
	out := make([]string, len(rec))
	for i, s := range rec {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// Header returns the column names, the index column included.
func (t *Table) Header() []string { return append([]string(nil), t.header...) }

// Columns returns the names of the value columns.
func (t *Table) Columns() []string { return append([]string(nil), t.header[1:]...) }

func (t *Table) uniqueIndex() error {
	for _, r := range t.rows {
		if t.dups[r[0]] {
			return errors.Errorf("index %q is not unique", r[0])
		}
	}
	return nil
}

// Index returns the row labels in file order, repeats included.
func (t *Table) Index() []string {
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[0]
	}
	return out
}

func (t *Table) Len() int { return len(t.rows) }

// Cell returns the raw text of a cell.
func (t *Table) Cell(row, col string) (string, error) {
	r, ok := t.index[row]
	if !ok {
		return "", errors.Errorf("no row %q", row)
	}
	if t.dups[row] {
		return "", errors.Errorf("row %q is not unique", row)
	}
	c, ok := t.cols[col]
	if !ok {
		return "", errors.Errorf("no column %q", col)
	}
	return t.rows[r][c], nil
}

// Float returns a cell as a number.
func (t *Table) Float(row, col string) (float64, error) {
	s, err := t.Cell(row, col)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "cell %s/%s", row, col)
	}
	return v, nil
}

// Column returns a value column as a parameter map keyed by row label.
// Blank cells are left out, so they take the parameter's default.
func (t *Table) Column(col string) (map[lpmodel.Key]float64, error) {
	c, ok := t.cols[col]
	if !ok {
		return nil, errors.Errorf("no column %q", col)
	}
	if err := t.uniqueIndex(); err != nil {
		return nil, err
	}
	out := make(map[lpmodel.Key]float64, len(t.rows))
	for _, r := range t.rows {
		if r[c] == "" {
			continue
		}
		v, err := strconv.ParseFloat(r[c], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "cell %s/%s", r[0], col)
		}
		out[lpmodel.K(r[0])] = v
	}
	return out, nil
}

// Keyed treats the table as a long-format relation: the tuple formed by
// the keyCols cells of each row maps to its valueCol cell. The index column
// may be one of keyCols.
func (t *Table) Keyed(keyCols []string, valueCol string) (map[lpmodel.Key]float64, error) {
	idx := make([]int, len(keyCols))
	for i, k := range keyCols {
		c, ok := t.cols[k]
		if !ok {
			return nil, errors.Errorf("no column %q", k)
		}
		idx[i] = c
	}
	vc, ok := t.cols[valueCol]
	if !ok {
		return nil, errors.Errorf("no column %q", valueCol)
	}

	out := make(map[lpmodel.Key]float64, len(t.rows))
	for _, r := range t.rows {
		if r[vc] == "" {
			continue
		}
		labels := make([]string, len(idx))
		for i, c := range idx {
			labels[i] = r[c]
		}
		v, err := strconv.ParseFloat(r[vc], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "cell %s/%s", r[0], valueCol)
		}
		k := lpmodel.K(labels...)
		if _, dup := out[k]; dup {
			return nil, errors.Errorf("duplicate key %s", k)
		}
		out[k] = v
	}
	return out, nil
}

// Unique returns the distinct cells of a column in order of appearance.
func (t *Table) Unique(col string) ([]string, error) {
	c, ok := t.cols[col]
	if !ok {
		return nil, errors.Errorf("no column %q", col)
	}
	var out []string
	seen := make(map[string]bool)
	for _, r := range t.rows {
		if !seen[r[c]] {
			seen[r[c]] = true
			out = append(out, r[c])
		}
	}
	return out, nil
}

// Stack turns a wide matrix into a sparse two-dimensional parameter keyed
// by (row label, column name). Blank cells are left out.
func (t *Table) Stack() (map[lpmodel.Key]float64, error) {
	if err := t.uniqueIndex(); err != nil {
		return nil, err
	}
	out := make(map[lpmodel.Key]float64)
	for _, r := range t.rows {
		for c := 1; c < len(t.header); c++ {
			if r[c] == "" {
				continue
			}
			v, err := strconv.ParseFloat(r[c], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "cell %s/%s", r[0], t.header[c])
			}
			out[lpmodel.K(r[0], t.header[c])] = v
		}
	}
	return out, nil
}
