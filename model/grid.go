package model

// QuadrantGrid partitions a square map into Cols x Rows equal cells. It backs
// both the hostile-presence flags of the state key and the scout targets.
type QuadrantGrid struct {
	Cols  int
	Rows  int
	CellW int // map cells per grid column
	CellH int // map cells per grid row
}

// NewQuadrantGrid splits a size x size map into cells x cells quadrants.
func NewQuadrantGrid(size, cells int) QuadrantGrid {
	if cells <= 0 {
		cells = 1
	}
	return QuadrantGrid{
		Cols:  cells,
		Rows:  cells,
		CellW: size / cells,
		CellH: size / cells,
	}
}

// Len is the number of quadrants.
func (g QuadrantGrid) Len() int { return g.Cols * g.Rows }

// Index maps a map coordinate to its row-major quadrant index. ok is false
// for out-of-bounds coordinates or a zero-sized grid.
func (g QuadrantGrid) Index(mapX, mapY int) (int, bool) {
	if g.CellW <= 0 || g.CellH <= 0 || mapX < 0 || mapY < 0 {
		return 0, false
	}
	col := mapX / g.CellW
	row := mapY / g.CellH
	if col >= g.Cols || row >= g.Rows {
		return 0, false
	}
	return row*g.Cols + col, true
}

// MapSize is the edge length of the map the grid covers.
func (g QuadrantGrid) MapSize() int { return g.Cols * g.CellW }
