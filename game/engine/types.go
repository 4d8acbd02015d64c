package engine

// TerrainKind represents what occupies a board cell
type TerrainKind string

const (
	Empty        TerrainKind = "empty"
	Oasis        TerrainKind = "oasis"
	Mountain     TerrainKind = "mountain"
	Bridge       TerrainKind = "bridge"
	MountainRail TerrainKind = "mountain_rail"
	BridgeRail   TerrainKind = "bridge_rail"
	StraightRail TerrainKind = "straight_rail"
	CurveRail    TerrainKind = "curve_rail"
)

// Orientation selects which pair of directions a tile connects.
// StraightRail, Bridge and BridgeRail use None (vertical) or Horizontal.
// CurveRail, Mountain and MountainRail use one of the four bends.
type Orientation string

const (
	None       Orientation = "none"
	Horizontal Orientation = "horizontal"
	Left       Orientation = "left"
	Up         Orientation = "up"
	Right      Orientation = "right"
	Down       Orientation = "down"
)

// Difficulty fixes the board size of a game
type Difficulty string

const (
	Easy Difficulty = "easy"
	Hard Difficulty = "hard"

	// Board sizes
	EasySize = 5
	HardSize = 7

	// DefaultTopEntries is the size of the completion top list
	DefaultTopEntries = 5
)

// AllTerrains lists every terrain kind in declaration order
var AllTerrains = []TerrainKind{
	Empty, Oasis, Mountain, Bridge, MountainRail, BridgeRail, StraightRail, CurveRail,
}

// AllOrientations lists every orientation in declaration order
var AllOrientations = []Orientation{None, Horizontal, Left, Up, Right, Down}

var (
	straightOrientations = []Orientation{None, Horizontal}
	bendOrientations     = []Orientation{Left, Up, Right, Down}
	noOrientation        = []Orientation{None}
)

// Orientations returns the orientations a terrain may legally carry
func (t TerrainKind) Orientations() []Orientation {
	switch t {
	case Empty, Oasis:
		return noOrientation
	case StraightRail, Bridge, BridgeRail:
		return straightOrientations
	case CurveRail, Mountain, MountainRail:
		return bendOrientations
	default:
		return nil
	}
}

// Allows reports whether o is a legal orientation for the terrain
func (t TerrainKind) Allows(o Orientation) bool {
	for _, legal := range t.Orientations() {
		if legal == o {
			return true
		}
	}
	return false
}

// IsValid reports whether t is one of the known terrain kinds
func (t TerrainKind) IsValid() bool {
	return t.Orientations() != nil
}

// IsRail reports whether t is a placed track segment
func (t TerrainKind) IsRail() bool {
	switch t {
	case StraightRail, CurveRail, MountainRail, BridgeRail:
		return true
	}
	return false
}

// IsUnconverted reports whether t still has to be turned into a rail
func (t TerrainKind) IsUnconverted() bool {
	return t == Empty || t == Mountain || t == Bridge
}

// IsValid reports whether o is one of the known orientations
func (o Orientation) IsValid() bool {
	switch o {
	case None, Horizontal, Left, Up, Right, Down:
		return true
	}
	return false
}

// Size returns the board edge length for the difficulty, or 0 if unknown
func (d Difficulty) Size() int {
	switch d {
	case Easy:
		return EasySize
	case Hard:
		return HardSize
	default:
		return 0
	}
}

// IsValid reports whether d is a known difficulty
func (d Difficulty) IsValid() bool {
	return d.Size() > 0
}

// DifficultyForSize maps a board size back to its difficulty
func DifficultyForSize(size int) (Difficulty, bool) {
	switch size {
	case EasySize:
		return Easy, true
	case HardSize:
		return Hard, true
	default:
		return "", false
	}
}

// Position addresses a cell. X is the row (0 at the top), Y is the column (0 at the left).
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position moved by one step in the given direction
func (p Position) Add(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Tile is the terrain/orientation pair of a cell
type Tile struct {
	Terrain     TerrainKind `json:"terrain"`
	Orientation Orientation `json:"orientation"`
}

// Valid reports whether the pair is one of the legal combinations
func (t Tile) Valid() bool {
	return t.Terrain.Allows(t.Orientation)
}

// IsDefault reports whether t equals the tile of an unspecified layout coordinate
func (t Tile) IsDefault() bool {
	return t.Terrain == Empty && t.Orientation == None
}

// Cell represents a single board cell
type Cell struct {
	Position    Position    `json:"position"`
	Terrain     TerrainKind `json:"terrain"`
	Orientation Orientation `json:"orientation"`
}

// Tile returns the terrain/orientation pair of the cell
func (c Cell) Tile() Tile {
	return Tile{Terrain: c.Terrain, Orientation: c.Orientation}
}

// IsHorizontal reports whether the cell carries the horizontal flag
func (c Cell) IsHorizontal() bool {
	return c.Orientation == Horizontal
}
