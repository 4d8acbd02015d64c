package engine

import "fmt"

// Board is an N x N grid of cells. N never changes after creation.
type Board struct {
	size  int
	cells [][]Cell
}

// NewBoard creates a board of the given size seeded from layout.
// Coordinates missing from the layout default to Empty.
func NewBoard(size int, layout BoardLayout) (*Board, error) {
	if _, ok := DifficultyForSize(size); !ok {
		return nil, fmt.Errorf("%w: %d (want %d or %d)", ErrInvalidSize, size, EasySize, HardSize)
	}

	b := &Board{
		size:  size,
		cells: make([][]Cell, size),
	}
	for x := range b.cells {
		b.cells[x] = make([]Cell, size)
		for y := range b.cells[x] {
			b.cells[x][y] = Cell{
				Position:    Position{X: x, Y: y},
				Terrain:     Empty,
				Orientation: None,
			}
		}
	}

	for pos, tile := range layout {
		if !b.InBounds(pos) {
			return nil, fmt.Errorf("%w: layout entry (%d,%d) outside %dx%d board",
				ErrInvalidCoordinate, pos.X, pos.Y, size, size)
		}
		if !tile.Valid() {
			return nil, fmt.Errorf("%w: layout entry (%d,%d) is %s with orientation %s",
				ErrInvalidState, pos.X, pos.Y, tile.Terrain, tile.Orientation)
		}
		b.set(pos, tile)
	}

	return b, nil
}

// NewBoardForDifficulty creates a board sized by the difficulty
func NewBoardForDifficulty(d Difficulty, layout BoardLayout) (*Board, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidSize, d)
	}
	return NewBoard(d.Size(), layout)
}

// Size returns the edge length of the board
func (b *Board) Size() int {
	return b.size
}

// InBounds reports whether pos lies on the board
func (b *Board) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < b.size && pos.Y >= 0 && pos.Y < b.size
}

// IsCorner reports whether pos is one of the four board corners
func (b *Board) IsCorner(pos Position) bool {
	last := b.size - 1
	return (pos.X == 0 || pos.X == last) && (pos.Y == 0 || pos.Y == last)
}

// Cell returns the cell at pos
func (b *Board) Cell(pos Position) (Cell, error) {
	if !b.InBounds(pos) {
		return Cell{}, fmt.Errorf("%w: (%d,%d) outside %dx%d board", ErrInvalidCoordinate, pos.X, pos.Y, b.size, b.size)
	}
	return b.cells[pos.X][pos.Y], nil
}

// Neighbor returns the cell one step from pos in direction d.
// The boolean is false when that step leaves the board.
func (b *Board) Neighbor(pos Position, d Direction) (Cell, bool) {
	next := pos.Add(d)
	if !b.InBounds(next) {
		return Cell{}, false
	}
	return b.cells[next.X][next.Y], true
}

// Cells returns every cell in row-major order
func (b *Board) Cells() []Cell {
	out := make([]Cell, 0, b.size*b.size)
	for _, row := range b.cells {
		out = append(out, row...)
	}
	return out
}

// Rows returns a copy of the grid, indexed [x][y]
func (b *Board) Rows() [][]Cell {
	rows := make([][]Cell, b.size)
	for x, row := range b.cells {
		rows[x] = append([]Cell(nil), row...)
	}
	return rows
}

// Layout returns the board in BoardLayout form. Default (empty) cells are omitted,
// so NewBoard(b.Size(), b.Layout()) reproduces b cell for cell.
func (b *Board) Layout() BoardLayout {
	layout := make(BoardLayout)
	for _, row := range b.cells {
		for _, c := range row {
			if !c.Tile().IsDefault() {
				layout[c.Position] = c.Tile()
			}
		}
	}
	return layout
}

// Clone returns an independent copy of the board
func (b *Board) Clone() *Board {
	return &Board{size: b.size, cells: b.Rows()}
}

// Equal reports whether two boards hold identical cells
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.size != other.size {
		return false
	}
	for x := range b.cells {
		for y := range b.cells[x] {
			if b.cells[x][y] != other.cells[x][y] {
				return false
			}
		}
	}
	return true
}

func (b *Board) set(pos Position, t Tile) {
	c := &b.cells[pos.X][pos.Y]
	c.Terrain = t.Terrain
	c.Orientation = t.Orientation
}
