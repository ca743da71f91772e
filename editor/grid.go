package editor

// PixelGrid is the pixel color matrix for one layer in one frame, indexed
// [row][col] with row = y, col = x and origin at the top-left. Every row has
// exactly the owning project's width entries and there are exactly height
// rows for the lifetime of the project.
type PixelGrid [][]Color

// NewGrid returns a width x height grid with every cell set to Empty.
func NewGrid(width, height int) PixelGrid {
	g := make(PixelGrid, height)
	for y := range g {
		row := make([]Color, width)
		for x := range row {
			row[x] = Empty
		}
		g[y] = row
	}
	return g
}

// Width returns the number of columns. Zero for an empty grid.
func (g PixelGrid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Height returns the number of rows.
func (g PixelGrid) Height() int {
	return len(g)
}

// InBounds reports whether (x, y) addresses a cell of the grid.
func (g PixelGrid) InBounds(x, y int) bool {
	return y >= 0 && y < len(g) && x >= 0 && x < len(g[y])
}

// At returns the color at (x, y), or Empty when out of bounds. Missing cells
// read as transparent so callers never need their own bounds dance.
func (g PixelGrid) At(x, y int) Color {
	if !g.InBounds(x, y) {
		return Empty
	}
	return g[y][x]
}

// Clone returns a deep copy sharing no rows with the receiver.
func (g PixelGrid) Clone() PixelGrid {
	out := make(PixelGrid, len(g))
	for y, row := range g {
		out[y] = append([]Color(nil), row...)
	}
	return out
}

// withPixel returns a copy-on-write variant of the grid with (x, y) set to c.
// Only the touched row is reallocated; untouched rows are shared with the
// receiver. Consumers must treat grids as immutable, so sharing is safe.
func (g PixelGrid) withPixel(x, y int, c Color) PixelGrid {
	if !g.InBounds(x, y) {
		return g
	}
	out := append(PixelGrid(nil), g...)
	row := append([]Color(nil), g[y]...)
	row[x] = c
	out[y] = row
	return out
}
