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
	"strconv"
	"strings"
)

/* Types */

// Tuple is a member of an index set: one label per dimension.
type Tuple []string

// Key is the comparable form of a Tuple, usable as a map key.
type Key string

const keySep = "\x1f"

// K builds the Key of the tuple formed by labels.
func K(labels ...string) Key {
	return Key(strings.Join(labels, keySep))
}

// Key returns the map key of t.
func (t Tuple) Key() Key {
	return K(t...)
}

// Tuple splits a key back into its labels.
func (k Key) Tuple() Tuple {
	if k == "" {
		return Tuple{}
	}
	return strings.Split(string(k), keySep)
}

func (k Key) String() string {
	return k.Tuple().String()
}

func (t Tuple) String() string {
	if len(t) == 1 {
		return t[0]
	}
	return "(" + strings.Join(t, ",") + ")"
}

// Int parses label i of the tuple as an integer. It panics with a
// *DefinitionError if the label is not numeric, like the At accessors.
func (t Tuple) Int(i int) int {
	n, err := strconv.Atoi(t[i])
	if err != nil {
		panic(definitionErrorf("", "label %q of %s is not an integer", t[i], t))
	}
	return n
}

// IndexSet is an ordered collection of unique tuples, all with the same
// dimension. Index sets are immutable once built.
type IndexSet struct {
	name    string
	dimen   int
	members []Tuple
	index   map[Key]int
}

// NewIndexSet builds a one-dimensional index set. Duplicate labels are a
// definition error.
func NewIndexSet(name string, labels ...string) (*IndexSet, error) {
	members := make([]Tuple, len(labels))
	for i, l := range labels {
		members[i] = Tuple{l}
	}
	return NewTupleSet(name, 1, members...)
}

// NewTupleSet builds an index set of tuples with the given dimension.
func NewTupleSet(name string, dimen int, members ...Tuple) (*IndexSet, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if dimen < 1 {
		return nil, definitionErrorf(name, "invalid dimension %d", dimen)
	}

	set := &IndexSet{
		name:    name,
		dimen:   dimen,
		members: make([]Tuple, 0, len(members)),
		index:   make(map[Key]int, len(members)),
	}
	for _, m := range members {
		if len(m) != dimen {
			return nil, definitionErrorf(name, "member %s has dimension %d, want %d", m, len(m), dimen)
		}
		for _, l := range m {
			if l == "" || strings.Contains(l, keySep) {
				return nil, definitionErrorf(name, "invalid label %q in member %s", l, m)
			}
		}
		k := m.Key()
		if _, dup := set.index[k]; dup {
			return nil, definitionErrorf(name, "duplicate member %s", m)
		}
		set.index[k] = len(set.members)
		set.members = append(set.members, append(Tuple(nil), m...))
	}

	return set, nil
}

// IntRange builds the set of integer labels from..to, both inclusive.
func IntRange(name string, from, to int) (*IndexSet, error) {
	labels := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		labels = append(labels, strconv.Itoa(i))
	}
	return NewIndexSet(name, labels...)
}

// ProductSet builds the cross product of sets as a new index set whose
// dimension is the sum of the factors' dimensions.
func ProductSet(name string, sets ...*IndexSet) (*IndexSet, error) {
	dimen := 0
	for _, s := range sets {
		dimen += s.dimen
	}
	return NewTupleSet(name, dimen, Product(sets...)...)
}

// Product enumerates the cross product of sets in lexicographic declaration
// order. The product of no sets is a single empty tuple.
func Product(sets ...*IndexSet) []Tuple {
	out := []Tuple{{}}
	for _, s := range sets {
		next := make([]Tuple, 0, len(out)*len(s.members))
		for _, prefix := range out {
			for _, m := range s.members {
				t := make(Tuple, 0, len(prefix)+len(m))
				t = append(t, prefix...)
				t = append(t, m...)
				next = append(next, t)
			}
		}
		out = next
	}
	return out
}

// Filter derives the subset of members satisfying pred, keeping their order.
func (s *IndexSet) Filter(name string, pred func(Tuple) bool) (*IndexSet, error) {
	var members []Tuple
	for _, m := range s.members {
		if pred(m) {
			members = append(members, m)
		}
	}
	return NewTupleSet(name, s.dimen, members...)
}

func (s *IndexSet) Name() string { return s.name }

func (s *IndexSet) Dimen() int { return s.dimen }

func (s *IndexSet) Len() int { return len(s.members) }

// Members returns a copy of the set's tuples in order.
func (s *IndexSet) Members() []Tuple {
	out := make([]Tuple, len(s.members))
	for i, m := range s.members {
		out[i] = append(Tuple(nil), m...)
	}
	return out
}

// Labels returns the members of a one-dimensional set as plain labels. For
// sets of higher dimension each member is rendered with Tuple.String.
func (s *IndexSet) Labels() []string {
	out := make([]string, len(s.members))
	for i, m := range s.members {
		if s.dimen == 1 {
			out[i] = m[0]
		} else {
			out[i] = m.String()
		}
	}
	return out
}

func (s *IndexSet) Contains(labels ...string) bool {
	_, ok := s.index[K(labels...)]
	return ok
}

// Position returns the 0-based position of the member, or -1.
func (s *IndexSet) Position(labels ...string) int {
	if i, ok := s.index[K(labels...)]; ok {
		return i
	}
	return -1
}

// At returns the member at position i.
func (s *IndexSet) At(i int) Tuple {
	return append(Tuple(nil), s.members[i]...)
}

// First and Last return the first and last members; both panic on an empty
// set.
func (s *IndexSet) First() Tuple { return s.At(0) }

func (s *IndexSet) Last() Tuple { return s.At(len(s.members) - 1) }

// NextW returns the member following labels, wrapping around to the first one.
func (s *IndexSet) NextW(labels ...string) Tuple {
	i := s.Position(labels...)
	if i < 0 {
		panic(definitionErrorf(s.name, "%s is not a member", Tuple(labels)))
	}
	return s.At((i + 1) % len(s.members))
}

/* Tuples of several sets */

func dimension(sets []*IndexSet) int {
	n := 0
	for _, s := range sets {
		n += s.dimen
	}
	return n
}

// inProduct reports whether t is a member of the cross product of sets.
func inProduct(sets []*IndexSet, t Tuple) bool {
	if len(t) != dimension(sets) {
		return false
	}
	off := 0
	for _, s := range sets {
		if !s.Contains(t[off : off+s.dimen]...) {
			return false
		}
		off += s.dimen
	}
	return true
}

func setNames(sets []*IndexSet) string {
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.name
	}
	return strings.Join(names, "*")
}
