/*
Copyright © 2020 the geodata authors.
This file is part of geodata.

geodata is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

geodata is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with geodata.  If not, see <http://www.gnu.org/licenses/>.
*/

package geodata

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Bounds is a spatial subset given as four ordinates in the order
// North, West, South, East. A nil *Bounds means global (unbounded).
type Bounds struct {
	North float64
	West  float64
	South float64
	East  float64
}

// ParseBounds converts a caller-supplied ordinate list into Bounds.
// Exactly four ordinates, ordered North, West, South, East, are accepted.
func ParseBounds(vals []float64) (*Bounds, error) {
	if len(vals) != 4 {
		return nil, &ConfigurationError{
			Field:  "bounds",
			Reason: "bounds must hold exactly the four ordinates North, West, South, East",
		}
	}
	return &Bounds{North: vals[0], West: vals[1], South: vals[2], East: vals[3]}, nil
}

// globalBounds is the unbounded extent used when a tolerant variant is
// planned without bounds.
var globalBounds = Bounds{North: 90, West: -180, South: -90, East: 180}

// XSlice returns the east-west coordinate slice [west, east].
func (b *Bounds) XSlice() [2]float64 { return [2]float64{b.West, b.East} }

// YSlice returns the north-south coordinate slice [south, north]. The
// endpoint order is deliberate: the descent from north to south matches
// the native latitude ordering of the ERA5 files.
func (b *Bounds) YSlice() [2]float64 { return [2]float64{b.South, b.North} }

// Area returns the ordinates in the North, West, South, East order the
// CDS API expects for its "area" request field.
func (b *Bounds) Area() [4]float64 { return [4]float64{b.North, b.West, b.South, b.East} }

// gridShape counts the grid points spanning the bounds at the given
// resolution. The quotients are rounded rather than truncated so that an
// extent that is a whole number of cells in decimal stays whole despite
// binary rounding (0.35/0.05 evaluates to 6.999…).
func gridShape(b *Bounds, dx, dy float64) (nx, ny int) {
	nx = int(math.Round((b.East-b.West)/dx)) + 1
	ny = int(math.Round((b.North-b.South)/dy)) + 1
	return nx, ny
}

// GridCoordinates returns the cell-center coordinates of the module's
// native grid over the planned bounds as two dense arrays of shape
// (ny, nx): x (longitude) and y (latitude).
func (d *Dataset) GridCoordinates() (x, y *sparse.DenseArray) {
	b := d.Bounds
	if b == nil {
		b = &globalBounds
	}
	dx, dy := d.module.Dx, d.module.Dy
	nx, ny := gridShape(b, dx, dy)
	x = sparse.ZerosDense(ny, nx)
	y = sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			x.Set(b.West+float64(i)*dx, j, i)
			y.Set(b.South+float64(j)*dy, j, i)
		}
	}
	return x, y
}

// GridCells returns the module's native grid over the planned bounds as
// cell polygons, ordered row-major from the southwest corner. The cells
// feed downstream spatial indexing; no rasterization happens here.
func (d *Dataset) GridCells() []geom.Polygonal {
	b := d.Bounds
	if b == nil {
		b = &globalBounds
	}
	dx, dy := d.module.Dx, d.module.Dy
	nx, ny := gridShape(b, dx, dy)
	cells := make([]geom.Polygonal, 0, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			xc := b.West + float64(i)*dx
			yc := b.South + float64(j)*dy
			x0, x1 := xc-dx/2, xc+dx/2
			y0, y1 := yc-dy/2, yc+dy/2
			cells = append(cells, geom.Polygon{[]geom.Point{
				{X: x0, Y: y0},
				{X: x1, Y: y0},
				{X: x1, Y: y1},
				{X: x0, Y: y1},
				{X: x0, Y: y0},
			}})
		}
	}
	return cells
}
