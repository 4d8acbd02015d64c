package engine

import "fmt"

// Direction is one of the four grid directions
type Direction int

const (
	North Direction = iota // up, (-1, 0)
	East                   // right, (0, 1)
	South                  // down, (1, 0)
	West                   // left, (0, -1)
)

// AllDirections returns all valid directions for iteration
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// String returns the string representation of a direction
func (d Direction) String() string {
	switch d {
	case North:
		return "up"
	case East:
		return "right"
	case South:
		return "down"
	case West:
		return "left"
	default:
		return "unknown"
	}
}

// IsValid returns true if the direction is a valid cardinal direction
func (d Direction) IsValid() bool {
	return d >= North && d <= West
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return d
	}
}

// Delta returns the row and column offsets for this direction
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return -1, 0
	case East:
		return 0, 1
	case South:
		return 1, 0
	case West:
		return 0, -1
	default:
		return 0, 0
	}
}

// DirectionFromDelta converts a unit vector back into a Direction
func DirectionFromDelta(dx, dy int) (Direction, bool) {
	for _, d := range AllDirections() {
		ddx, ddy := d.Delta()
		if ddx == dx && ddy == dy {
			return d, true
		}
	}
	return 0, false
}

// OpenDirections returns the two directions in which a tile presents a connectable end.
//
// Straight and bridge rails run vertically unless flagged Horizontal. Curves and mountain
// rails bend according to their orientation. Non-rail terrain reports the vertical pair;
// it never connects, the pair only exists so the function is total over legal tiles.
func OpenDirections(terrain TerrainKind, orientation Orientation) ([2]Direction, error) {
	if !terrain.Allows(orientation) {
		return [2]Direction{}, fmt.Errorf("%w: %s with orientation %s", ErrInvalidState, terrain, orientation)
	}

	switch terrain {
	case StraightRail, BridgeRail:
		if orientation == Horizontal {
			return [2]Direction{East, West}, nil
		}
		return [2]Direction{South, North}, nil
	case CurveRail, MountainRail:
		switch orientation {
		case Left:
			return [2]Direction{West, South}, nil
		case Up:
			return [2]Direction{West, North}, nil
		case Right:
			return [2]Direction{East, North}, nil
		case Down:
			return [2]Direction{East, South}, nil
		}
	}

	return [2]Direction{South, North}, nil
}

// OrientationFor is the inverse of OpenDirections for rail kinds: it returns the
// orientation whose open ends are exactly a and b, in either order.
func OrientationFor(terrain TerrainKind, a, b Direction) (Orientation, error) {
	for _, o := range terrain.Orientations() {
		dirs, err := OpenDirections(terrain, o)
		if err != nil {
			return "", err
		}
		if (dirs[0] == a && dirs[1] == b) || (dirs[0] == b && dirs[1] == a) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: %s cannot connect %s and %s", ErrInvalidState, terrain, a, b)
}
