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
	"math"
	"strings"
)

/* Types */

// Domain is the set of values a variable may take.
type Domain int

const (
	NonNegativeReals Domain = iota
	Reals
	Binary
	Integers
	NonNegativeIntegers
)

func (d Domain) String() string {
	switch d {
	case NonNegativeReals:
		return "NonNegativeReals"
	case Reals:
		return "Reals"
	case Binary:
		return "Binary"
	case Integers:
		return "Integers"
	case NonNegativeIntegers:
		return "NonNegativeIntegers"
	default:
		return "Domain(?)"
	}
}

// IsInteger reports whether the domain only contains integral values.
func (d Domain) IsInteger() bool {
	return d == Binary || d == Integers || d == NonNegativeIntegers
}

func (d Domain) bounds() (float64, float64) {
	switch d {
	case NonNegativeReals, NonNegativeIntegers:
		return 0, math.Inf(1)
	case Binary:
		return 0, 1
	default:
		return math.Inf(-1), math.Inf(1)
	}
}

func (d Domain) valid() bool {
	return d >= NonNegativeReals && d <= NonNegativeIntegers
}

// VarGroup is a named family of variables, one per tuple of its index sets.
// A scalar variable is a group without index sets.
type VarGroup struct {
	model  *Model
	name   string
	sets   []*IndexSet
	domain Domain
	doc    string
	vars   []*Variable
	index  map[Key]*Variable
}

// Variable is a single decision variable. Its value is set by the last
// successful solve, by fixing it or by a declared initial value.
type Variable struct {
	group *VarGroup
	tuple Tuple
	label string
	index int

	lower, upper float64
	fixed        bool
	value        float64
	hasValue     bool
}

/* Declaration */

// AddVariable declares a scalar variable.
func (model *Model) AddVariable(name string, domain Domain, opts ...DeclOption) (*Variable, error) {
	g, err := model.AddIndexedVariable(name, nil, domain, opts...)
	if err != nil {
		return nil, err
	}
	return g.vars[0], nil
}

// AddBinaryVariable is a convenience function for adding a single
// named binary variable to the model.
func (model *Model) AddBinaryVariable(name string, opts ...DeclOption) (*Variable, error) {
	return model.AddVariable(name, Binary, opts...)
}

// AddIndexedVariable declares one variable per tuple of the cross product
// of sets. Bounds given with WithBounds or WithBoundsFunc are intersected
// with the domain's own bounds.
func (model *Model) AddIndexedVariable(name string, sets []*IndexSet, domain Domain, opts ...DeclOption) (g *VarGroup, err error) {
	defer catchDefinition(&err)

	if !domain.valid() {
		return nil, definitionErrorf(name, "invalid domain %d", domain)
	}
	d := newDecl(opts)
	if err := d.check(name, fieldDoc|fieldBounds|fieldInitial); err != nil {
		return nil, err
	}

	g = &VarGroup{
		model:  model,
		name:   name,
		sets:   append([]*IndexSet(nil), sets...),
		domain: domain,
		doc:    d.doc,
		index:  make(map[Key]*Variable),
	}

	// bound and initial functions are user code and run without the lock
	for _, t := range Product(sets...) {
		lo, hi := d.bounds(t)
		dlo, dhi := domain.bounds()
		v := &Variable{
			group: g,
			tuple: t,
			label: varLabel(name, t),
			lower: math.Max(lo, dlo),
			upper: math.Min(hi, dhi),
		}
		if v.lower > v.upper {
			return nil, definitionErrorf(name, "empty bounds [%g, %g] for %s", v.lower, v.upper, t)
		}
		v.value, v.hasValue = d.initialValue(t)
		g.vars = append(g.vars, v)
		g.index[t.Key()] = v
	}

	if err := model.register(name, "variable", sets, func() error {
		seen := make(map[string]*Variable, len(g.vars))
		for _, v := range g.vars {
			other, dup := model.varLabels[v.label]
			if !dup {
				other, dup = seen[v.label]
			}
			if dup {
				return definitionErrorf(name, "label %s of %s is already used by %s", v.label, v.tuple, other.group.name)
			}
			seen[v.label] = v
		}
		for _, v := range g.vars {
			v.index = len(model.vars)
			model.vars = append(model.vars, v)
			model.varLabels[v.label] = v
		}
		model.groups[name] = g
		model.groupOrder = append(model.groupOrder, g)
		return nil
	}); err != nil {
		return nil, err
	}

	return g, nil
}

// varLabel builds the symbolic label used in problem files: the name alone
// for scalars, name(l1_l2) otherwise, with characters outside [A-Za-z0-9_]
// replaced by underscores.
func varLabel(name string, t Tuple) string {
	if len(t) == 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, l := range t {
		if i > 0 {
			b.WriteByte('_')
		}
		b.WriteString(sanitizeLabel(l))
	}
	b.WriteByte(')')
	return b.String()
}

func sanitizeLabel(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

/* Group functions */

func (g *VarGroup) Name() string { return g.name }

func (g *VarGroup) Doc() string { return g.doc }

func (g *VarGroup) Domain() Domain { return g.domain }

func (g *VarGroup) Sets() []*IndexSet { return append([]*IndexSet(nil), g.sets...) }

func (g *VarGroup) Len() int { return len(g.vars) }

// Vars returns the group's variables in index order.
func (g *VarGroup) Vars() []*Variable { return append([]*Variable(nil), g.vars...) }

// Get returns the variable for the tuple formed by labels.
func (g *VarGroup) Get(labels ...string) (*Variable, error) {
	v, ok := g.index[K(labels...)]
	if !ok {
		return nil, definitionErrorf(g.name, "%s is not a member of %s", Tuple(labels), setNames(g.sets))
	}
	return v, nil
}

// At is like Get but panics with the *DefinitionError. It is meant for rule
// functions.
func (g *VarGroup) At(labels ...string) *Variable {
	v, err := g.Get(labels...)
	if err != nil {
		panic(err)
	}
	return v
}

// AtT is At for a whole tuple.
func (g *VarGroup) AtT(t Tuple) *Variable {
	return g.At(t...)
}

// Fix fixes every variable of the group to value.
func (g *VarGroup) Fix(value float64) {
	g.model.mu.Lock()
	defer g.model.mu.Unlock()

	for _, v := range g.vars {
		v.fixed = true
		v.value, v.hasValue = value, true
	}
}

// Unfix releases every variable of the group, keeping their current values.
func (g *VarGroup) Unfix() {
	g.model.mu.Lock()
	defer g.model.mu.Unlock()

	for _, v := range g.vars {
		v.fixed = false
	}
}

// Sum returns the expression adding up every variable of the group.
func (g *VarGroup) Sum() *Expr {
	e := NewExpr()
	for _, v := range g.vars {
		e.Add(1, v)
	}
	return e
}

// Values returns the current values of the variables that have one.
func (g *VarGroup) Values() map[Key]float64 {
	g.model.mu.RLock()
	defer g.model.mu.RUnlock()

	out := make(map[Key]float64, len(g.vars))
	for _, v := range g.vars {
		if v.hasValue {
			out[v.tuple.Key()] = v.value
		}
	}
	return out
}

/* Variable functions */

func (v *Variable) Model() *Model { return v.group.model }

// Group returns the group the variable belongs to.
func (v *Variable) Group() *VarGroup { return v.group }

// Name returns the name of the variable's group.
func (v *Variable) Name() string { return v.group.name }

// Label returns the symbolic label used in problem files.
func (v *Variable) Label() string { return v.label }

func (v *Variable) Tuple() Tuple { return append(Tuple(nil), v.tuple...) }

func (v *Variable) Domain() Domain { return v.group.domain }

// Bounds returns the variable's current bounds.
func (v *Variable) Bounds() (lower, upper float64) {
	v.group.model.mu.RLock()
	defer v.group.model.mu.RUnlock()

	return v.lower, v.upper
}

// SetBounds changes the variable's bounds, intersected with its domain.
func (v *Variable) SetBounds(lower, upper float64) error {
	dlo, dhi := v.group.domain.bounds()
	lower, upper = math.Max(lower, dlo), math.Min(upper, dhi)
	if lower > upper {
		return definitionErrorf(v.label, "empty bounds [%g, %g]", lower, upper)
	}

	v.group.model.mu.Lock()
	defer v.group.model.mu.Unlock()

	v.lower, v.upper = lower, upper
	return nil
}

// Value returns the variable's current value, or 0 if it has none.
func (v *Variable) Value() float64 {
	v.group.model.mu.RLock()
	defer v.group.model.mu.RUnlock()

	return v.value
}

// HasValue reports whether the variable has a value.
func (v *Variable) HasValue() bool {
	v.group.model.mu.RLock()
	defer v.group.model.mu.RUnlock()

	return v.hasValue
}

// SetValue sets the variable's current value, e.g. to provide a warm start.
// Fixed variables keep their fixed value.
func (v *Variable) SetValue(value float64) {
	v.group.model.mu.Lock()
	defer v.group.model.mu.Unlock()

	if !v.fixed {
		v.value, v.hasValue = value, true
	}
}

// Fix pins the variable to value for the following solves, overriding its
// domain and bounds, until Unfix is called.
func (v *Variable) Fix(value float64) {
	v.group.model.mu.Lock()
	defer v.group.model.mu.Unlock()

	v.fixed = true
	v.value, v.hasValue = value, true
}

// Unfix releases a fixed variable. Its value is kept as a starting point.
func (v *Variable) Unfix() {
	v.group.model.mu.Lock()
	defer v.group.model.mu.Unlock()

	v.fixed = false
}

func (v *Variable) IsFixed() bool {
	v.group.model.mu.RLock()
	defer v.group.model.mu.RUnlock()

	return v.fixed
}

// Expr returns the expression 1*v.
func (v *Variable) Expr() *Expr {
	return NewExpr().Add(1, v)
}

func (v *Variable) String() string { return v.label }
