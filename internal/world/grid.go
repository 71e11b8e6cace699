package world

import (
	"math"
	"slices"

	"github.com/paulmach/orb"

	"github.com/udisondev/sarsim/internal/model"
)

// Grid buckets victims into square cells so range queries only touch nearby cells.
// Cell size should be at least the largest detection radius; a query then
// visits at most a 3×3 window.
type Grid struct {
	origin   orb.Point
	cellSize float64
	cols     int
	rows     int
	cells    [][]int // victim indices per cell, row-major
}

// NewGrid creates a grid covering bounds.
func NewGrid(bounds orb.Bound, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil((bounds.Max[0]-bounds.Min[0])/cellSize)) + 1
	rows := int(math.Ceil((bounds.Max[1]-bounds.Min[1])/cellSize)) + 1

	return &Grid{
		origin:   bounds.Min,
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([][]int, cols*rows),
	}
}

// CoordToCell converts a coordinate to a cell index pair, clamped into the grid.
func (g *Grid) CoordToCell(p model.Position) (cx, cy int) {
	cx = int(math.Floor((p.X - g.origin[0]) / g.cellSize))
	cy = int(math.Floor((p.Y - g.origin[1]) / g.cellSize))
	return clamp(cx, 0, g.cols-1), clamp(cy, 0, g.rows-1)
}

// Clear empties every cell, keeping allocations.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert places victim index idx at p.
func (g *Grid) Insert(idx int, p model.Position) {
	cx, cy := g.CoordToCell(p)
	i := cy*g.cols + cx
	g.cells[i] = append(g.cells[i], idx)
}

// Query returns candidate indices in cells overlapping the square around p,
// in ascending order. Callers still check the exact distance.
func (g *Grid) Query(p model.Position, radius float64) []int {
	minX, minY := g.CoordToCell(model.NewPosition(p.X-radius, p.Y-radius))
	maxX, maxY := g.CoordToCell(model.NewPosition(p.X+radius, p.Y+radius))

	var out []int
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			out = append(out, g.cells[cy*g.cols+cx]...)
		}
	}
	slices.Sort(out)
	return out
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
