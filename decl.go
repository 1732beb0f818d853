package lpmodel

import "math"

// DeclOption customizes the declaration of a model component. Not every
// option applies to every component; passing one that does not is a
// definition error.
type DeclOption func(*decl)

type declField uint8

const (
	fieldDoc declField = 1 << iota
	fieldBounds
	fieldInitial
	fieldDefault
)

type decl struct {
	given declField

	doc       string
	lower     float64
	upper     float64
	boundsFn  func(Tuple) (float64, float64)
	initial   float64
	initialFn func(Tuple) float64
	def       float64
}

func newDecl(opts []DeclOption) *decl {
	d := &decl{lower: math.Inf(-1), upper: math.Inf(1)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *decl) check(component string, allowed declField) error {
	if extra := d.given &^ allowed; extra != 0 {
		names := map[declField]string{
			fieldDoc:     "WithDoc",
			fieldBounds:  "WithBounds",
			fieldInitial: "WithInitial",
			fieldDefault: "WithDefault",
		}
		for f, n := range names {
			if extra&f != 0 {
				return definitionErrorf(component, "option %s does not apply", n)
			}
		}
	}
	return nil
}

func (d *decl) bounds(t Tuple) (float64, float64) {
	if d.boundsFn != nil {
		return d.boundsFn(t)
	}
	return d.lower, d.upper
}

func (d *decl) initialValue(t Tuple) (float64, bool) {
	switch {
	case d.initialFn != nil:
		return d.initialFn(t), true
	case d.given&fieldInitial != 0:
		return d.initial, true
	}
	return 0, false
}

// WithDoc attaches a description to the component.
func WithDoc(doc string) DeclOption {
	return func(d *decl) {
		d.given |= fieldDoc
		d.doc = doc
	}
}

// WithBounds sets the bounds of every variable in the declaration. They are
// intersected with the bounds implied by the domain.
func WithBounds(lower, upper float64) DeclOption {
	return func(d *decl) {
		d.given |= fieldBounds
		d.lower, d.upper = lower, upper
	}
}

// WithBoundsFunc sets per-tuple variable bounds.
func WithBoundsFunc(fn func(Tuple) (lower, upper float64)) DeclOption {
	return func(d *decl) {
		d.given |= fieldBounds
		d.boundsFn = fn
	}
}

// WithInitial sets the starting value of variables, used for warm starts.
func WithInitial(v float64) DeclOption {
	return func(d *decl) {
		d.given |= fieldInitial
		d.initial = v
	}
}

// WithInitialFunc sets per-tuple starting values.
func WithInitialFunc(fn func(Tuple) float64) DeclOption {
	return func(d *decl) {
		d.given |= fieldInitial
		d.initialFn = fn
	}
}

// WithDefault makes a parameter sparse: tuples without an explicit value
// take v.
func WithDefault(v float64) DeclOption {
	return func(d *decl) {
		d.given |= fieldDefault
		d.def = v
	}
}
