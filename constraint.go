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

import "math"

// Constraint is a named family of linear relations, one per tuple of its
// index sets for which the rule did not skip. A scalar constraint has a
// single instance with the empty tuple.
type Constraint struct {
	model     *Model
	name      string
	sets      []*IndexSet
	doc       string
	active    bool
	instances []*instance
	index     map[Key]*instance
}

type instance struct {
	constraint *Constraint
	tuple      Tuple
	label      string
	rel        Relation
}

// AddConstraint declares a scalar constraint.
func (model *Model) AddConstraint(name string, rel Relation, opts ...DeclOption) (*Constraint, error) {
	return model.AddIndexedConstraint(name, nil, func(Tuple) (Relation, bool) {
		return Include(rel)
	}, opts...)
}

// AddIndexedConstraint declares a constraint with one instance per tuple of
// the cross product of sets for which rule does not skip. Variables and
// parameters accessed with At inside the rule are checked; a tuple outside
// their index sets fails the declaration.
func (model *Model) AddIndexedConstraint(name string, sets []*IndexSet, rule Rule, opts ...DeclOption) (c *Constraint, err error) {
	defer catchDefinition(&err)

	d := newDecl(opts)
	if err := d.check(name, fieldDoc); err != nil {
		return nil, err
	}

	c = &Constraint{
		model:  model,
		name:   name,
		sets:   append([]*IndexSet(nil), sets...),
		doc:    d.doc,
		active: true,
		index:  make(map[Key]*instance),
	}

	for _, t := range Product(sets...) {
		rel, ok := rule(t)
		if !ok {
			continue
		}
		// hand-built relations may carry a constant and stay shared with
		// the caller
		rel = relation(rel.Lower, rel.Expr, rel.Upper)
		if math.IsNaN(rel.Lower) || math.IsNaN(rel.Upper) || rel.Lower > rel.Upper {
			return nil, definitionErrorf(name, "invalid bounds [%g, %g] for %s", rel.Lower, rel.Upper, t)
		}
		for _, term := range rel.Expr.terms {
			if term.Var == nil || term.Var.group.model != model {
				return nil, definitionErrorf(name, "instance %s references a variable of another model", t)
			}
		}
		inst := &instance{constraint: c, tuple: t, label: varLabel(name, t), rel: rel}
		c.instances = append(c.instances, inst)
		c.index[t.Key()] = inst
	}

	if err := model.register(name, "constraint", sets, func() error {
		seen := make(map[string]bool, len(c.instances))
		for _, inst := range c.instances {
			if model.rowLabels[inst.label] || seen[inst.label] {
				return definitionErrorf(name, "row label %s of %s is already used", inst.label, inst.tuple)
			}
			seen[inst.label] = true
		}
		for _, inst := range c.instances {
			model.rowLabels[inst.label] = true
		}
		model.constraints[name] = c
		model.constraintOrder = append(model.constraintOrder, c)
		return nil
	}); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Constraint) Name() string { return c.name }

func (c *Constraint) Doc() string { return c.doc }

// Len returns the number of instances, skipped tuples excluded.
func (c *Constraint) Len() int { return len(c.instances) }

// Tuples returns the tuples of the instances in order.
func (c *Constraint) Tuples() []Tuple {
	out := make([]Tuple, len(c.instances))
	for i, inst := range c.instances {
		out[i] = append(Tuple(nil), inst.tuple...)
	}
	return out
}

// Relation returns the relation of the instance for labels. The bool is
// false if the tuple was skipped or is not a member.
func (c *Constraint) Relation(labels ...string) (Relation, bool) {
	inst, ok := c.index[K(labels...)]
	if !ok {
		return Relation{}, false
	}
	return Relation{Lower: inst.rel.Lower, Expr: inst.rel.Expr.Clone(), Upper: inst.rel.Upper}, true
}

// Label returns the symbolic row label of the instance for labels.
func (c *Constraint) Label(labels ...string) string {
	return varLabel(c.name, labels)
}

func (c *Constraint) Active() bool {
	c.model.mu.RLock()
	defer c.model.mu.RUnlock()

	return c.active
}

// Activate includes the constraint in the following solves.
func (c *Constraint) Activate() {
	c.model.mu.Lock()
	defer c.model.mu.Unlock()

	c.active = true
}

// Deactivate excludes the constraint from the following solves without
// removing its definition.
func (c *Constraint) Deactivate() {
	c.model.mu.Lock()
	defer c.model.mu.Unlock()

	c.active = false
}
