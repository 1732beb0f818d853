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

package report

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Node is a point of a diagram. Nodes of the same Group share color and
// shape and get one legend entry.
type Node struct {
	Name  string
	X, Y  float64
	Size  float64 // glyph radius in points; 0 means 3
	Group string
	Label bool // print Name next to the node
}

// Edge joins two nodes by name.
type Edge struct {
	From, To string
	Label    string
	Weight   float64
	Dashed   bool
	Arrow    bool
}

// Diagram is a 2-D picture of a solution: locations, boards and networks.
type Diagram struct {
	Title string
	Nodes []Node
	Edges []Edge

	// ColorByWeight colors edges on a diverging scale of their Weight.
	ColorByWeight bool
	ShowAxes      bool
}

const defaultNodeSize = 3

// Plot lays the diagram out on a new plot.
func (d *Diagram) Plot() (*plot.Plot, error) {
	nodes := make(map[string]Node, len(d.Nodes))
	for _, n := range d.Nodes {
		if _, dup := nodes[n.Name]; dup {
			return nil, errors.Errorf("duplicate node %q", n.Name)
		}
		nodes[n.Name] = n
	}

	p := plot.New()
	p.Title.Text = d.Title
	if !d.ShowAxes {
		p.HideAxes()
	}

	if err := d.addEdges(p, nodes); err != nil {
		return nil, err
	}
	if err := d.addNodes(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Save renders the diagram to path. The format follows the file
// extension (png, svg, pdf, ...).
func (d *Diagram) Save(path string, width, height vg.Length) error {
	p, err := d.Plot()
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Save(width, height, path), "saving diagram %s", path)
}

func (d *Diagram) addNodes(p *plot.Plot) error {
	var groups []string
	members := make(map[string][]Node)
	for _, n := range d.Nodes {
		if _, ok := members[n.Group]; !ok {
			groups = append(groups, n.Group)
		}
		members[n.Group] = append(members[n.Group], n)
	}

	var labels plotter.XYLabels
	for i, g := range groups {
		ns := members[g]
		xys := make(plotter.XYs, len(ns))
		for j, n := range ns {
			xys[j].X, xys[j].Y = n.X, n.Y
			if n.Label {
				labels.XYs = append(labels.XYs, plotter.XY{X: n.X, Y: n.Y})
				labels.Labels = append(labels.Labels, n.Name)
			}
		}

		s, err := plotter.NewScatter(xys)
		if err != nil {
			return errors.Wrapf(err, "plotting group %q", g)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		s.GlyphStyleFunc = func(j int) draw.GlyphStyle {
			style := s.GlyphStyle
			style.Radius = vg.Points(defaultNodeSize)
			if size := ns[j].Size; size > 0 {
				style.Radius = vg.Points(size)
			}
			return style
		}
		p.Add(s)
		if g != "" {
			p.Legend.Add(g, s)
		}
	}

	if len(labels.Labels) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return errors.Wrap(err, "plotting node labels")
		}
		l.Offset = vg.Point{X: vg.Points(4), Y: vg.Points(4)}
		p.Add(l)
	}
	return nil
}

func (d *Diagram) addEdges(p *plot.Plot, nodes map[string]Node) error {
	colorOf, err := d.edgeColors()
	if err != nil {
		return err
	}
	headLen := 0.03 * d.extent()

	var labels plotter.XYLabels
	for _, e := range d.Edges {
		from, ok := nodes[e.From]
		if !ok {
			return errors.Errorf("edge from unknown node %q", e.From)
		}
		to, ok := nodes[e.To]
		if !ok {
			return errors.Errorf("edge to unknown node %q", e.To)
		}

		segments := []plotter.XYs{{{X: from.X, Y: from.Y}, {X: to.X, Y: to.Y}}}
		if e.Arrow {
			segments = append(segments, arrowHead(from, to, headLen)...)
		}
		c, err := colorOf(e.Weight)
		if err != nil {
			return errors.Wrapf(err, "coloring edge %s-%s", e.From, e.To)
		}
		for _, seg := range segments {
			l, err := plotter.NewLine(seg)
			if err != nil {
				return errors.Wrapf(err, "plotting edge %s-%s", e.From, e.To)
			}
			l.LineStyle.Color = c
			l.LineStyle.Width = vg.Points(1)
			if e.Dashed {
				l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			}
			p.Add(l)
		}

		if e.Label != "" {
			labels.XYs = append(labels.XYs, plotter.XY{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2})
			labels.Labels = append(labels.Labels, e.Label)
		}
	}

	if len(labels.Labels) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return errors.Wrap(err, "plotting edge labels")
		}
		p.Add(l)
	}
	return nil
}

func (d *Diagram) edgeColors() (func(float64) (color.Color, error), error) {
	if !d.ColorByWeight || len(d.Edges) == 0 {
		return func(float64) (color.Color, error) { return color.Gray{Y: 96}, nil }, nil
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, e := range d.Edges {
		lo, hi = math.Min(lo, e.Weight), math.Max(hi, e.Weight)
	}
	if hi <= lo {
		hi = lo + 1
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(lo)
	cm.SetMax(hi)
	return cm.At, nil
}

// extent is the larger side of the nodes' bounding box.
func (d *Diagram) extent() float64 {
	if len(d.Nodes) == 0 {
		return 1
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, n := range d.Nodes {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	if ext := math.Max(maxX-minX, maxY-minY); ext > 0 {
		return ext
	}
	return 1
}

// arrowHead returns the two strokes of an arrow tip at to.
func arrowHead(from, to Node, length float64) []plotter.XYs {
	dx, dy := to.X-from.X, to.Y-from.Y
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		return nil
	}
	dx, dy = dx/norm, dy/norm

	const spread = math.Pi / 7
	var out []plotter.XYs
	for _, a := range []float64{spread, -spread} {
		sin, cos := math.Sincos(a)
		bx := -(dx*cos - dy*sin) * length
		by := -(dx*sin + dy*cos) * length
		out = append(out, plotter.XYs{{X: to.X, Y: to.Y}, {X: to.X + bx, Y: to.Y + by}})
	}
	return out
}
