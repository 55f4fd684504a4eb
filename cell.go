package img2cell

// Cell is the rendering decision for one character position. The cell
// shows BG plus the glyph's coverage fraction of the way to FG. When
// Invert is set the glyph's ink is drawn in BG and the rest in FG.
type Cell struct {
	FG, BG uint8
	Glyph  rune
	Invert bool
}

// Colors returns the palette indices used for the glyph's ink and for
// the rest of the cell, after applying Invert.
func (c Cell) Colors() (ink, paper uint8) {
	if c.Invert {
		return c.BG, c.FG
	}
	return c.FG, c.BG
}

// Grid is a converted image: Columns x Rows cells in row-major order,
// indexing Palette. CellWidth and CellHeight record the pixel size of
// the cells the grid was matched for, when known.
type Grid struct {
	Columns, Rows         int
	CellWidth, CellHeight int
	Cells                 []Cell
	Palette               *Palette
}

// At returns the cell at column x, row y.
func (g *Grid) At(x, y int) Cell {
	return g.Cells[y*g.Columns+x]
}

// Row returns the cells of row y.
func (g *Grid) Row(y int) []Cell {
	return g.Cells[y*g.Columns : (y+1)*g.Columns]
}
