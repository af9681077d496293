package models

// Grid is the used range of one decoded sheet. Cells are stored
// sparsely; reading an absent address yields an empty cell. Coordinates
// are 1-based and inclusive on both ends. A Grid is read-only once the
// decoder hands it to the conversion core.
type Grid struct {
	MinRow, MaxRow int
	MinCol, MaxCol int

	cells map[gridAddr]Cell
}

type gridAddr struct {
	row, col int
}

// NewGrid creates an empty grid spanning the given used range.
func NewGrid(minRow, minCol, maxRow, maxCol int) *Grid {
	return &Grid{
		MinRow: minRow,
		MaxRow: maxRow,
		MinCol: minCol,
		MaxCol: maxCol,
		cells:  make(map[gridAddr]Cell),
	}
}

// SetCell stores a cell. Addresses outside the declared range grow the
// range to include them.
func (g *Grid) SetCell(row, col int, c Cell) {
	if row < g.MinRow {
		g.MinRow = row
	}
	if row > g.MaxRow {
		g.MaxRow = row
	}
	if col < g.MinCol {
		g.MinCol = col
	}
	if col > g.MaxCol {
		g.MaxCol = col
	}
	g.cells[gridAddr{row, col}] = c
}

// Cell returns the cell at the address and whether it is present.
func (g *Grid) Cell(row, col int) (Cell, bool) {
	c, ok := g.cells[gridAddr{row, col}]
	return c, ok
}

// RowCount returns the number of rows in the used range.
func (g *Grid) RowCount() int {
	if g.MaxRow < g.MinRow {
		return 0
	}
	return g.MaxRow - g.MinRow + 1
}

// ColCount returns the number of columns in the used range.
func (g *Grid) ColCount() int {
	if g.MaxCol < g.MinCol {
		return 0
	}
	return g.MaxCol - g.MinCol + 1
}
