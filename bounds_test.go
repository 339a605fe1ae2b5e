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
	"testing"

	"github.com/ctessum/geom"
)

func TestParseBounds(t *testing.T) {
	b, err := ParseBounds([]float64{50, -10, 40, 5})
	if err != nil {
		t.Fatal(err)
	}
	if b.North != 50 || b.West != -10 || b.South != 40 || b.East != 5 {
		t.Errorf("got %+v", b)
	}

	for _, bad := range [][]float64{{}, {50}, {50, -10, 40}, {50, -10, 40, 5, 0}} {
		if _, err := ParseBounds(bad); err == nil {
			t.Errorf("%v: expected error", bad)
		}
	}
}

func TestBoundsSlices(t *testing.T) {
	b := &Bounds{North: 50, West: -10, South: 40, East: 5}
	if got := b.XSlice(); got != [2]float64{-10, 5} {
		t.Errorf("XSlice: got %v", got)
	}
	if got := b.YSlice(); got != [2]float64{40, 50} {
		t.Errorf("YSlice: got %v", got)
	}
	if got := b.Area(); got != [4]float64{50, -10, 40, 5} {
		t.Errorf("Area: got %v", got)
	}
}

func TestGridCoordinates(t *testing.T) {
	cfg, cleanup := tempConfig(t)
	defer cleanup()

	d, err := NewDataset(cfg, DatasetOptions{
		Module: "era5",
		Config: "era5_monthly",
		Years:  &Range{Start: 2020, Stop: 2020},
		Months: &Range{Start: 1, Stop: 1},
		Bounds: []float64{41, -10, 40, -9}, // 1°x1° at 0.25° resolution
	})
	if err != nil {
		t.Fatal(err)
	}

	x, y := d.GridCoordinates()
	wantNy, wantNx := 5, 5
	if x.Shape[0] != wantNy || x.Shape[1] != wantNx {
		t.Fatalf("x shape %v, want [%d %d]", x.Shape, wantNy, wantNx)
	}
	if got := x.Get(0, 0); got != -10 {
		t.Errorf("x[0,0] = %g, want -10", got)
	}
	if got := x.Get(0, wantNx-1); got != -9 {
		t.Errorf("x[0,%d] = %g, want -9", wantNx-1, got)
	}
	if got := y.Get(0, 0); got != 40 {
		t.Errorf("y[0,0] = %g, want 40", got)
	}
	if got := y.Get(wantNy-1, 0); got != 41 {
		t.Errorf("y[%d,0] = %g, want 41", wantNy-1, got)
	}
}

func TestGridCoordinatesInexactExtent(t *testing.T) {
	cfg, cleanup := tempConfig(t)
	defer cleanup()

	// 0.35° at 0.05° resolution: the quotient evaluates to 6.999… in
	// floating point, so a truncating count would drop a row and column.
	d, err := NewDataset(cfg, DatasetOptions{
		Module: "modis",
		Config: "modis_land_cover",
		Years:  &Range{Start: 2019, Stop: 2019},
		Bounds: []float64{40.35, -10.35, 40, -10},
	})
	if err != nil {
		t.Fatal(err)
	}

	x, _ := d.GridCoordinates()
	if x.Shape[0] != 8 || x.Shape[1] != 8 {
		t.Fatalf("shape %v, want [8 8]", x.Shape)
	}
	if cells := d.GridCells(); len(cells) != 64 {
		t.Errorf("got %d cells, want 64", len(cells))
	}
}

func TestGridCells(t *testing.T) {
	cfg, cleanup := tempConfig(t)
	defer cleanup()

	d, err := NewDataset(cfg, DatasetOptions{
		Module: "era5",
		Config: "era5_monthly",
		Years:  &Range{Start: 2020, Stop: 2020},
		Months: &Range{Start: 1, Stop: 1},
		Bounds: []float64{41, -10, 40, -9},
	})
	if err != nil {
		t.Fatal(err)
	}

	cells := d.GridCells()
	if len(cells) != 25 {
		t.Fatalf("got %d cells, want 25", len(cells))
	}
	// The first cell is centered on the southwest corner.
	p, ok := cells[0].(geom.Polygon)
	if !ok {
		t.Fatalf("cell type %T", cells[0])
	}
	b := p.Bounds()
	if b.Min.X != -10.125 || b.Min.Y != 39.875 || b.Max.X != -9.875 || b.Max.Y != 40.125 {
		t.Errorf("first cell bounds %+v", b)
	}
}
