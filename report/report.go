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

// Package report prints and plots solve results: a short summary, listings
// of variable groups and sensitivity suffixes, a JSON document for other
// tools, and 2-D diagrams for the examples that have a spatial layout.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/costela/lpmodel"
)

// zeroTol is the magnitude below which a value is listed as zero.
const zeroTol = 1e-9

type options struct {
	onlyNonZero bool
}

type Option func(*options)

// OnlyNonZero leaves out variables whose value is zero.
func OnlyNonZero() Option {
	return func(o *options) {
		o.onlyNonZero = true
	}
}

// Summary writes the status, objective value and solve time of res.
func Summary(w io.Writer, res *lpmodel.SolveResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "model:\t%s\n", res.Model().Name())
	status := res.Status().String()
	if msg := res.Message(); msg != "" {
		status += " (" + msg + ")"
	}
	fmt.Fprintf(tw, "status:\t%s\n", status)
	if res.HasValues() {
		fmt.Fprintf(tw, "objective:\t%s\n", formatValue(res.ObjectiveValue()))
	}
	fmt.Fprintf(tw, "solve time:\t%s\n", res.Duration())
	if id := res.RunID(); id != "" {
		fmt.Fprintf(tw, "run:\t%s\n", id)
	}
	return errors.Wrap(tw.Flush(), "writing summary")
}

// Variables lists a variable group in the shape of a model printout: one
// line per index with bounds, value, fixed flag and domain.
func Variables(w io.Writer, g *lpmodel.VarGroup, res *lpmodel.SolveResult, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	header := g.Name()
	if doc := g.Doc(); doc != "" {
		header += " : " + doc
	}
	fmt.Fprintln(w, header)
	fmt.Fprintf(w, "    Size=%d Index=%s Domain=%s\n", g.Len(), indexName(g.Sets()), g.Domain())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\tKey\tLower\tValue\tUpper\tFixed\t\n")
	for _, v := range g.Vars() {
		var value float64
		has := res != nil && res.HasValues()
		if has {
			value = res.Value(v)
		} else if v.HasValue() {
			value, has = v.Value(), true
		}
		if o.onlyNonZero && (!has || math.Abs(value) <= zeroTol) {
			continue
		}

		lo, hi := v.Bounds()
		shown := "None"
		if has {
			shown = formatValue(value)
		}
		key := "None"
		if t := v.Tuple(); len(t) > 0 {
			key = t.String()
		}
		fmt.Fprintf(tw, "\t%s\t%s\t%s\t%s\t%t\t\n", key, formatBound(lo), shown, formatBound(hi), v.IsFixed())
	}
	return errors.Wrapf(tw.Flush(), "listing %s", g.Name())
}

// Suffixes lists the duals and slacks of every constraint row and the
// reduced costs of every variable that res carries.
func Suffixes(w io.Writer, model *lpmodel.Model, res *lpmodel.SolveResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "row\tdual\tslack\n")
	for _, c := range model.Constraints() {
		for _, t := range c.Tuples() {
			dual, hasDual := res.Dual(c, t...)
			slack, hasSlack := res.Slack(c, t...)
			if !hasDual && !hasSlack {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Label(t...), optional(dual, hasDual), optional(slack, hasSlack))
		}
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "listing duals")
	}

	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "\ncolumn\treduced cost\n")
	for _, g := range model.Groups() {
		for _, v := range g.Vars() {
			if rc, ok := res.ReducedCost(v); ok {
				fmt.Fprintf(tw, "%s\t%s\n", v.Label(), formatValue(rc))
			}
		}
	}
	return errors.Wrap(tw.Flush(), "listing reduced costs")
}

// WriteJSON writes res as a single JSON object. Variables and suffixes
// are keyed by their LP labels; suffix sections are present only when the
// result carries them.
func WriteJSON(w io.Writer, model *lpmodel.Model, res *lpmodel.SolveResult) error {
	doc := map[string]interface{}{
		"model":           model.Name(),
		"status":          res.Status().String(),
		"durationSeconds": res.Duration().Seconds(),
		"objective":       jsonNumber(res.ObjectiveValue()),
	}
	if msg := res.Message(); msg != "" {
		doc["message"] = msg
	}
	if id := res.RunID(); id != "" {
		doc["runId"] = id
	}

	if res.HasValues() {
		values := make(map[string]interface{})
		rcs := make(map[string]interface{})
		for _, g := range model.Groups() {
			for _, v := range g.Vars() {
				values[v.Label()] = jsonNumber(res.Value(v))
				if rc, ok := res.ReducedCost(v); ok {
					rcs[v.Label()] = jsonNumber(rc)
				}
			}
		}
		doc["values"] = values
		if len(rcs) > 0 {
			doc["reducedCosts"] = rcs
		}

		duals := make(map[string]interface{})
		slacks := make(map[string]interface{})
		for _, c := range model.Constraints() {
			for _, t := range c.Tuples() {
				if d, ok := res.Dual(c, t...); ok {
					duals[c.Label(t...)] = jsonNumber(d)
				}
				if s, ok := res.Slack(c, t...); ok {
					slacks[c.Label(t...)] = jsonNumber(s)
				}
			}
		}
		if len(duals) > 0 {
			doc["duals"] = duals
		}
		if len(slacks) > 0 {
			doc["slacks"] = slacks
		}
	}

	s, err := structpb.NewStruct(doc)
	if err != nil {
		return errors.Wrap(err, "building result document")
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding result document")
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return errors.Wrap(err, "writing result document")
	}
	return nil
}

// jsonNumber maps values JSON cannot hold to null.
func jsonNumber(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func indexName(sets []*lpmodel.IndexSet) string {
	if len(sets) == 0 {
		return "None"
	}
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name()
	}
	return strings.Join(names, "*")
}

func optional(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return formatValue(v)
}

func formatValue(v float64) string {
	if math.Abs(v) <= zeroTol {
		v = 0
	}
	return fmt.Sprintf("%g", v)
}

func formatBound(v float64) string {
	if math.IsInf(v, 0) {
		return "None"
	}
	return formatValue(v)
}
