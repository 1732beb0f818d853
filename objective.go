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

// Direction is the sense of an objective.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Objective is a named linear expression to minimize or maximize. Several
// objectives may be declared; exactly one must be active when solving.
type Objective struct {
	model  *Model
	name   string
	sense  Direction
	expr   *Expr
	active bool
	doc    string
}

// AddObjective declares an objective. New objectives are active.
func (model *Model) AddObjective(name string, sense Direction, expr *Expr, opts ...DeclOption) (*Objective, error) {
	d := newDecl(opts)
	if err := d.check(name, fieldDoc); err != nil {
		return nil, err
	}
	if err := model.checkExpr(name, expr); err != nil {
		return nil, err
	}
	if sense != Minimize && sense != Maximize {
		return nil, definitionErrorf(name, "invalid direction %d", sense)
	}

	obj := &Objective{
		model:  model,
		name:   name,
		sense:  sense,
		expr:   expr.Clone(),
		active: true,
		doc:    d.doc,
	}

	if err := model.register(name, "objective", nil, func() error {
		model.objectives[name] = obj
		model.objectiveOrder = append(model.objectiveOrder, obj)
		return nil
	}); err != nil {
		return nil, err
	}

	return obj, nil
}

// SetObjective replaces the expression and sense of the named objective and
// activates it, declaring it first if needed. Other objectives keep their
// state.
func (model *Model) SetObjective(name string, sense Direction, expr *Expr) (*Objective, error) {
	model.mu.RLock()
	obj, ok := model.objectives[name]
	model.mu.RUnlock()

	if !ok {
		return model.AddObjective(name, sense, expr)
	}
	if err := model.checkExpr(name, expr); err != nil {
		return nil, err
	}

	model.mu.Lock()
	defer model.mu.Unlock()

	obj.sense = sense
	obj.expr = expr.Clone()
	obj.active = true
	return obj, nil
}

func (model *Model) checkExpr(name string, expr *Expr) error {
	if expr == nil {
		return nil
	}
	for _, t := range expr.terms {
		if t.Var == nil || t.Var.group.model != model {
			return definitionErrorf(name, "expression references a variable of another model")
		}
	}
	return nil
}

func (obj *Objective) Name() string { return obj.name }

func (obj *Objective) Doc() string { return obj.doc }

func (obj *Objective) Sense() Direction {
	obj.model.mu.RLock()
	defer obj.model.mu.RUnlock()

	return obj.sense
}

// Expr returns a copy of the objective's expression.
func (obj *Objective) Expr() *Expr {
	obj.model.mu.RLock()
	defer obj.model.mu.RUnlock()

	return obj.expr.Clone()
}

func (obj *Objective) Active() bool {
	obj.model.mu.RLock()
	defer obj.model.mu.RUnlock()

	return obj.active
}

func (obj *Objective) Activate() {
	obj.model.mu.Lock()
	defer obj.model.mu.Unlock()

	obj.active = true
}

func (obj *Objective) Deactivate() {
	obj.model.mu.Lock()
	defer obj.model.mu.Unlock()

	obj.active = false
}

// Value evaluates the objective with the variables' current values.
func (obj *Objective) Value() float64 {
	obj.model.mu.RLock()
	defer obj.model.mu.RUnlock()

	return obj.expr.evalLocked()
}
