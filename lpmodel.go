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

/*

Package lpmodel is a library for modelling linear and mixed integer
programs over named index sets and solving them with external solvers.

As an example of the API, the transportation problem

    Minimize:
      sum of cost(o,d) * x(o,d)
    Subject to:
      sum over d of x(o,d) <= capacity(o)   for every origin o
      sum over o of x(o,d) >= demand(d)     for every destination d

can be expressed like this:

	model, _ := lpmodel.NewModel("transport")
	origins, _ := model.AddSet("O", "Vigo", "Algeciras")
	dests, _ := model.AddSet("D", "Madrid", "Barcelona", "Valencia")
	x, _ := model.AddIndexedVariable("x", []*lpmodel.IndexSet{origins, dests}, lpmodel.NonNegativeReals)

	model.AddIndexedConstraint("capacity", []*lpmodel.IndexSet{origins}, func(t lpmodel.Tuple) (lpmodel.Relation, bool) {
		e := lpmodel.NewExpr()
		for _, d := range dests.Labels() {
			e.Add(1, x.At(t[0], d))
		}
		return lpmodel.Include(e.LessEq(lpmodel.Const(capacity.At(t[0]))))
	})
	// ⋮
	model.AddObjective("cost", lpmodel.Minimize, obj)

	res, _ := model.Solve(ctx, solver, lpmodel.WithSuffixes(lpmodel.Dual))
	fmt.Printf("solution optimal? %t\n", res.Status() == lpmodel.SolutionOptimal)
	fmt.Printf("z = %f\n", res.ObjectiveValue())

Solvers live in the backend packages; backend.New picks one from a
configuration.

*/
package lpmodel

import (
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

/* Types */

type Model struct {
	mu       sync.RWMutex
	name     string
	logger   Logger
	suffixes Suffix

	// component kind by name; all components share one namespace
	names map[string]string

	sets            map[string]*IndexSet
	setOrder        []*IndexSet
	params          map[string]*Param
	groups          map[string]*VarGroup
	groupOrder      []*VarGroup
	vars            []*Variable
	varLabels       map[string]*Variable
	constraints     map[string]*Constraint
	constraintOrder []*Constraint
	rowLabels       map[string]bool
	objectives      map[string]*Objective
	objectiveOrder  []*Objective
}

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// checkName rejects names that are not LP identifiers and names the LP
// writer uses for itself.
func checkName(name string) error {
	if !validName.MatchString(name) {
		return definitionErrorf(name, "invalid component name")
	}
	if name == OneVarConstant || name == dummyRow ||
		strings.HasPrefix(name, rangedLowerPrefix) || strings.HasPrefix(name, rangedUpperPrefix) {
		return definitionErrorf(name, "name is reserved for the LP file")
	}
	return nil
}

/* Model related functions */

// NewModel instantiates a new, empty model. The name is purely
// informational.
func NewModel(name string, opts ...Option) (*Model, error) {
	model := &Model{
		name:        name,
		logger:      noopLogger{},
		names:       make(map[string]string),
		sets:        make(map[string]*IndexSet),
		params:      make(map[string]*Param),
		groups:      make(map[string]*VarGroup),
		varLabels:   make(map[string]*Variable),
		constraints: make(map[string]*Constraint),
		rowLabels:   make(map[string]bool),
		objectives:  make(map[string]*Objective),
	}

	for _, opt := range opts {
		if err := opt(model); err != nil {
			return nil, errors.Wrap(err, "applying model option")
		}
	}

	return model, nil
}

// Name returns the name provided upon instantiation of a model
func (model *Model) Name() string {
	return model.name
}

// Logger returns the model's logger.
func (model *Model) Logger() Logger {
	return model.logger
}

// register claims name for a component of the given kind, registers its
// index sets and runs add under the write lock.
func (model *Model) register(name, kind string, sets []*IndexSet, add func() error) error {
	if err := checkName(name); err != nil {
		return err
	}

	model.mu.Lock()
	defer model.mu.Unlock()

	if other, taken := model.names[name]; taken {
		return definitionErrorf(name, "name already used by a %s", other)
	}
	for _, s := range sets {
		if s == nil {
			return definitionErrorf(name, "nil index set")
		}
		if existing, ok := model.sets[s.name]; ok && existing != s {
			return definitionErrorf(name, "index set %s differs from the declared set of the same name", s.name)
		}
		if other, taken := model.names[s.name]; taken && other != "set" {
			return definitionErrorf(name, "index set name %s already used by a %s", s.name, other)
		}
	}

	if err := add(); err != nil {
		return err
	}

	model.names[name] = kind
	for _, s := range sets {
		if _, ok := model.sets[s.name]; !ok {
			model.sets[s.name] = s
			model.setOrder = append(model.setOrder, s)
			model.names[s.name] = "set"
		}
	}
	return nil
}

// AddIndexSet registers an index set built with NewIndexSet or one of its
// siblings.
func (model *Model) AddIndexSet(s *IndexSet) error {
	if s == nil {
		return errors.New("nil index set")
	}
	if model.Set(s.name) == s {
		return nil
	}
	return model.register(s.name, "set", nil, func() error {
		model.sets[s.name] = s
		model.setOrder = append(model.setOrder, s)
		return nil
	})
}

// AddSet builds and registers a one-dimensional index set.
func (model *Model) AddSet(name string, labels ...string) (*IndexSet, error) {
	s, err := NewIndexSet(name, labels...)
	if err != nil {
		return nil, err
	}
	if err := model.AddIndexSet(s); err != nil {
		return nil, err
	}
	return s, nil
}

/* Lookups */

func (model *Model) Set(name string) *IndexSet {
	model.mu.RLock()
	defer model.mu.RUnlock()

	return model.sets[name]
}

func (model *Model) Param(name string) *Param {
	model.mu.RLock()
	defer model.mu.RUnlock()

	return model.params[name]
}

// Var returns the named scalar variable, or nil.
func (model *Model) Var(name string) *Variable {
	model.mu.RLock()
	defer model.mu.RUnlock()

	g, ok := model.groups[name]
	if !ok || len(g.sets) > 0 {
		return nil
	}
	return g.vars[0]
}

func (model *Model) Group(name string) *VarGroup {
	model.mu.RLock()
	defer model.mu.RUnlock()

	return model.groups[name]
}

func (model *Model) Constraint(name string) *Constraint {
	model.mu.RLock()
	defer model.mu.RUnlock()

	return model.constraints[name]
}

func (model *Model) Objective(name string) *Objective {
	model.mu.RLock()
	defer model.mu.RUnlock()

	return model.objectives[name]
}

// Groups returns the variable groups in declaration order.
func (model *Model) Groups() []*VarGroup {
	model.mu.RLock()
	defer model.mu.RUnlock()

	return append([]*VarGroup(nil), model.groupOrder...)
}

// Constraints returns the constraints in declaration order.
func (model *Model) Constraints() []*Constraint {
	model.mu.RLock()
	defer model.mu.RUnlock()

	return append([]*Constraint(nil), model.constraintOrder...)
}

// Objectives returns the objectives in declaration order.
func (model *Model) Objectives() []*Objective {
	model.mu.RLock()
	defer model.mu.RUnlock()

	return append([]*Objective(nil), model.objectiveOrder...)
}

// ActiveObjective returns the single active objective.
func (model *Model) ActiveObjective() (*Objective, error) {
	model.mu.RLock()
	defer model.mu.RUnlock()

	return model.activeObjective()
}

func (model *Model) activeObjective() (*Objective, error) {
	var active *Objective
	for _, obj := range model.objectiveOrder {
		if !obj.active {
			continue
		}
		if active != nil {
			return nil, errors.Wrapf(ErrMultipleObjectives, "%s and %s", active.name, obj.name)
		}
		active = obj
	}
	if active == nil {
		return nil, ErrNoActiveObjective
	}
	return active, nil
}

// VariableCount returns the number of individual variables in the model.
func (model *Model) VariableCount() int {
	model.mu.RLock()
	defer model.mu.RUnlock()

	return len(model.vars)
}

// ConstraintCount returns the number of individual constraint instances
// in the model, active or not.
func (model *Model) ConstraintCount() int {
	model.mu.RLock()
	defer model.mu.RUnlock()

	n := 0
	for _, c := range model.constraintOrder {
		n += len(c.instances)
	}
	return n
}

/* Scenario state */

// Activate includes the named constraint or objective in the following
// solves.
func (model *Model) Activate(name string) error {
	return model.setActive(name, true)
}

// Deactivate excludes the named constraint or objective from the following
// solves.
func (model *Model) Deactivate(name string) error {
	return model.setActive(name, false)
}

func (model *Model) setActive(name string, active bool) error {
	model.mu.Lock()
	defer model.mu.Unlock()

	if c, ok := model.constraints[name]; ok {
		c.active = active
		return nil
	}
	if obj, ok := model.objectives[name]; ok {
		obj.active = active
		return nil
	}
	return definitionErrorf(name, "no constraint or objective with this name")
}

// Fix pins the named scalar variable, or every variable of the named
// group, to value.
func (model *Model) Fix(name string, value float64) error {
	g := model.Group(name)
	if g == nil {
		return definitionErrorf(name, "no variable with this name")
	}
	g.Fix(value)
	return nil
}

// Unfix releases the named scalar variable or group.
func (model *Model) Unfix(name string) error {
	g := model.Group(name)
	if g == nil {
		return definitionErrorf(name, "no variable with this name")
	}
	g.Unfix()
	return nil
}

// RequestSuffix asks for sensitivity information in every following solve.
func (model *Model) RequestSuffix(s Suffix) {
	model.mu.Lock()
	defer model.mu.Unlock()

	model.suffixes |= s
}
