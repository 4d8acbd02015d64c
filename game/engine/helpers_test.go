package engine

import "testing"

// ringLayout builds a size x size board of oases with a closed loop of rails running
// one cell in from the border.
func ringLayout(size int) BoardLayout {
	layout := BoardLayout{}
	last := size - 2

	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			pos := Position{X: x, Y: y}
			onRing := ((x == 1 || x == last) && y >= 1 && y <= last) ||
				((y == 1 || y == last) && x >= 1 && x <= last)
			if !onRing {
				layout[pos] = Tile{Terrain: Oasis, Orientation: None}
				continue
			}

			switch {
			case x == 1 && y == 1:
				layout[pos] = Tile{Terrain: CurveRail, Orientation: Down}
			case x == 1 && y == last:
				layout[pos] = Tile{Terrain: CurveRail, Orientation: Left}
			case x == last && y == 1:
				layout[pos] = Tile{Terrain: CurveRail, Orientation: Right}
			case x == last && y == last:
				layout[pos] = Tile{Terrain: CurveRail, Orientation: Up}
			case x == 1 || x == last:
				layout[pos] = Tile{Terrain: StraightRail, Orientation: Horizontal}
			default:
				layout[pos] = Tile{Terrain: StraightRail, Orientation: None}
			}
		}
	}

	return layout
}

// ringMap is an easy puzzle shaped like ringLayout(5). The loop cells start as open
// ground except for a mountain in the top-left bend and a bridge on each side of it.
func ringMap() *MapDefinition {
	layout := BoardLayout{}
	for pos, tile := range ringLayout(EasySize) {
		if tile.Terrain == Oasis {
			layout[pos] = tile
		}
	}
	layout[Position{X: 1, Y: 1}] = Tile{Terrain: Mountain, Orientation: Down}
	layout[Position{X: 1, Y: 2}] = Tile{Terrain: Bridge, Orientation: Horizontal}
	layout[Position{X: 2, Y: 1}] = Tile{Terrain: Bridge, Orientation: None}

	return &MapDefinition{
		ID:         1,
		Name:       "Ring",
		Difficulty: Easy,
		Layout:     layout,
	}
}

func mustBoard(t *testing.T, size int, layout BoardLayout) *Board {
	t.Helper()
	b, err := NewBoard(size, layout)
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}
	return b
}

func mustSolved(t *testing.T, b *Board) bool {
	t.Helper()
	solved, err := IsSolved(b)
	if err != nil {
		t.Fatalf("IsSolved returned error: %v", err)
	}
	return solved
}

// ringSolution lists how many interactions each cell of ringMap needs
var ringSolution = []struct {
	pos  Position
	taps int
}{
	{Position{X: 1, Y: 1}, 1}, // mountain -> mountain rail down
	{Position{X: 1, Y: 2}, 1}, // bridge -> horizontal bridge rail
	{Position{X: 2, Y: 1}, 1}, // bridge -> vertical bridge rail
	{Position{X: 1, Y: 3}, 3}, // curve left
	{Position{X: 2, Y: 3}, 1}, // vertical straight
	{Position{X: 3, Y: 1}, 5}, // curve right
	{Position{X: 3, Y: 2}, 2}, // horizontal straight
	{Position{X: 3, Y: 3}, 4}, // curve up
}

// legalTiles enumerates every legal terrain/orientation pair
func legalTiles() []Tile {
	var tiles []Tile
	for _, terrain := range AllTerrains {
		for _, o := range terrain.Orientations() {
			tiles = append(tiles, Tile{Terrain: terrain, Orientation: o})
		}
	}
	return tiles
}
