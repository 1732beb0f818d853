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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 0.0000001 // acceptable numerical deviation for test results

func TestArrowHead(t *testing.T) {
	from, to := Node{X: 0, Y: 0}, Node{X: 2, Y: 0}

	head := arrowHead(from, to, 0.5)
	require.Len(t, head, 2)
	for _, stroke := range head {
		require.Len(t, stroke, 2)
		assert.Equal(t, 2.0, stroke[0].X)
		assert.Less(t, stroke[1].X, 2.0, "tip points back along the edge")
		dx, dy := stroke[1].X-stroke[0].X, stroke[1].Y-stroke[0].Y
		assert.InDelta(t, 0.25, dx*dx+dy*dy, delta)
	}
	assert.InDelta(t, -head[0][1].Y, head[1][1].Y, delta, "strokes are symmetric")

	assert.Nil(t, arrowHead(from, from, 0.5))
}

func TestExtent(t *testing.T) {
	assert.Equal(t, 1.0, (&Diagram{}).extent())
	assert.Equal(t, 1.0, (&Diagram{Nodes: []Node{{X: 3, Y: 3}}}).extent())
	assert.Equal(t, 5.0, (&Diagram{Nodes: []Node{{X: 0, Y: 1}, {X: 2, Y: 6}}}).extent())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0", formatValue(1e-12))
	assert.Equal(t, "0", formatValue(-1e-12))
	assert.Equal(t, "2.5", formatValue(2.5))
	assert.Equal(t, "None", formatBound(math.Inf(-1)))
	assert.Equal(t, "-", optional(3, false))
	assert.Equal(t, "None", indexName(nil))
}
