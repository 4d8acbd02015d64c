package engine

import "fmt"

// curveCycle is the order a curve rotates through on repeated interaction
var curveCycle = map[Orientation]Orientation{
	Left:  Up,
	Up:    Right,
	Right: Down,
}

// NextTile computes the tile a cell turns into after one player interaction.
//
// Open ground cycles through six states: vertical straight, horizontal straight, then the
// curve bent left, up, right and down before returning to vertical straight. Mountains and
// bridges convert once into their rail counterpart keeping their orientation. Tiles with no
// valid placement options (oasis, mountain rail, bridge rail) are returned unchanged.
func NextTile(t Tile) (Tile, error) {
	if !t.Valid() {
		return t, fmt.Errorf("%w: %s with orientation %s", ErrInvalidState, t.Terrain, t.Orientation)
	}

	options := ValidOptions(t.Terrain)

	switch {
	case len(options) == 0:
		return t, nil

	case len(options) == 1:
		switch t.Terrain {
		case StraightRail:
			if t.Orientation == Horizontal {
				return Tile{Terrain: CurveRail, Orientation: Left}, nil
			}
			return Tile{Terrain: StraightRail, Orientation: Horizontal}, nil

		case CurveRail:
			if next, ok := curveCycle[t.Orientation]; ok {
				return Tile{Terrain: CurveRail, Orientation: next}, nil
			}
			return Tile{Terrain: StraightRail, Orientation: None}, nil

		case Mountain:
			return Tile{Terrain: MountainRail, Orientation: t.Orientation}, nil

		case Bridge:
			if t.Orientation == Horizontal {
				return Tile{Terrain: BridgeRail, Orientation: Horizontal}, nil
			}
			return Tile{Terrain: BridgeRail, Orientation: None}, nil
		}
		return t, nil

	default:
		// Only open ground admits more than one rail kind
		return Tile{Terrain: StraightRail, Orientation: None}, nil
	}
}

// Place applies one player interaction to the cell at pos and returns the cell
// before and after the transition. Exactly one cell is mutated.
func (b *Board) Place(pos Position) (before, after Cell, err error) {
	before, err = b.Cell(pos)
	if err != nil {
		return before, before, err
	}

	next, err := NextTile(before.Tile())
	if err != nil {
		return before, before, fmt.Errorf("cell (%d,%d): %w", pos.X, pos.Y, err)
	}

	b.set(pos, next)
	after, _ = b.Cell(pos)
	return before, after, nil
}
