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

import "sort"

// Param maps tuples of its index sets to numeric values. A parameter
// declared WithDefault is sparse: tuples without an explicit value take the
// default.
type Param struct {
	name       string
	sets       []*IndexSet
	values     map[Key]float64
	def        float64
	hasDefault bool
	doc        string
}

// AddParam declares a parameter over the cross product of sets. Every key
// of values must be a tuple of that product. A nil sets declares a scalar
// parameter whose only key is K().
func (model *Model) AddParam(name string, sets []*IndexSet, values map[Key]float64, opts ...DeclOption) (*Param, error) {
	d := newDecl(opts)
	if err := d.check(name, fieldDoc|fieldDefault); err != nil {
		return nil, err
	}

	p := &Param{
		name:       name,
		sets:       append([]*IndexSet(nil), sets...),
		values:     make(map[Key]float64, len(values)),
		def:        d.def,
		hasDefault: d.given&fieldDefault != 0,
		doc:        d.doc,
	}

	// sorted so the reported offender is deterministic
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		t := Key(k).Tuple()
		if !inProduct(p.sets, t) {
			return nil, definitionErrorf(name, "key %s is not a member of %s", t, setNames(p.sets))
		}
		p.values[Key(k)] = values[Key(k)]
	}

	if err := model.register(name, "parameter", sets, func() error {
		model.params[name] = p
		return nil
	}); err != nil {
		return nil, err
	}

	return p, nil
}

// AddScalarParam declares a parameter with a single value.
func (model *Model) AddScalarParam(name string, value float64, opts ...DeclOption) (*Param, error) {
	return model.AddParam(name, nil, map[Key]float64{K(): value}, opts...)
}

func (p *Param) Name() string { return p.name }

func (p *Param) Doc() string { return p.doc }

// Sets returns the index sets the parameter is declared over.
func (p *Param) Sets() []*IndexSet { return append([]*IndexSet(nil), p.sets...) }

// Default returns the default value and whether there is one.
func (p *Param) Default() (float64, bool) { return p.def, p.hasDefault }

// Has reports whether an explicit value was given for the tuple.
func (p *Param) Has(labels ...string) bool {
	_, ok := p.values[K(labels...)]
	return ok
}

// Value looks up the value for the tuple formed by labels, falling back to
// the default. Tuples outside the index sets, and missing values without a
// default, are definition errors.
func (p *Param) Value(labels ...string) (float64, error) {
	if !inProduct(p.sets, labels) {
		return 0, definitionErrorf(p.name, "%s is not a member of %s", Tuple(labels), setNames(p.sets))
	}
	if v, ok := p.values[K(labels...)]; ok {
		return v, nil
	}
	if p.hasDefault {
		return p.def, nil
	}
	return 0, definitionErrorf(p.name, "no value for %s and no default", Tuple(labels))
}

// At is like Value but panics with the *DefinitionError. It is meant for
// rule and bound functions, whose declaring call turns the panic back into
// an error.
func (p *Param) At(labels ...string) float64 {
	v, err := p.Value(labels...)
	if err != nil {
		panic(err)
	}
	return v
}

// AtT is At for a whole tuple.
func (p *Param) AtT(t Tuple) float64 {
	return p.At(t...)
}
