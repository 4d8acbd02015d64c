package engine

import "fmt"

// IssueReason says why a cell is not satisfied
type IssueReason string

const (
	ReasonUnconverted     IssueReason = "unconverted_terrain"
	ReasonCorner          IssueReason = "corner"
	ReasonEdgeOrientation IssueReason = "edge_orientation"
	ReasonOffBoard        IssueReason = "off_board"
	ReasonDisconnected    IssueReason = "disconnected"
)

// CellIssue describes one unsatisfied cell
type CellIssue struct {
	Position  Position    `json:"position"`
	Reason    IssueReason `json:"reason"`
	Direction string      `json:"direction,omitempty"`
	Message   string      `json:"message"`
}

// CheckReport is the outcome of a full board check
type CheckReport struct {
	Solved bool        `json:"solved"`
	Issues []CellIssue `json:"issues,omitempty"`
}

// IsSolved reports whether every cell on the board is satisfied.
// It never mutates the board.
func IsSolved(b *Board) (bool, error) {
	report, err := Check(b)
	if err != nil {
		return false, err
	}
	return report.Solved, nil
}

// Check evaluates every cell and collects the unsatisfied ones. An illegal cell aborts
// the check with ErrInvalidState since its connections cannot be evaluated.
func Check(b *Board) (*CheckReport, error) {
	report := &CheckReport{}
	for _, row := range b.cells {
		for _, c := range row {
			issue, err := b.checkCell(c)
			if err != nil {
				return nil, err
			}
			if issue != nil {
				report.Issues = append(report.Issues, *issue)
			}
		}
	}
	report.Solved = len(report.Issues) == 0
	return report, nil
}

// CheckCell evaluates a single cell. A nil issue means the cell is satisfied.
func (b *Board) CheckCell(pos Position) (*CellIssue, error) {
	c, err := b.Cell(pos)
	if err != nil {
		return nil, err
	}
	return b.checkCell(c)
}

func (b *Board) checkCell(c Cell) (*CellIssue, error) {
	if !c.Tile().Valid() {
		return nil, fmt.Errorf("%w: cell (%d,%d) is %s with orientation %s",
			ErrInvalidState, c.Position.X, c.Position.Y, c.Terrain, c.Orientation)
	}

	if c.Terrain.IsUnconverted() {
		return &CellIssue{
			Position: c.Position,
			Reason:   ReasonUnconverted,
			Message:  fmt.Sprintf("%s has not been converted into a rail", c.Terrain),
		}, nil
	}
	if !c.Terrain.IsRail() {
		// Oases are fixed obstacles and never block completion
		return nil, nil
	}

	dirs, err := OpenDirections(c.Terrain, c.Orientation)
	if err != nil {
		return nil, err
	}

	if b.IsCorner(c.Position) {
		return &CellIssue{
			Position: c.Position,
			Reason:   ReasonCorner,
			Message:  "a rail in a board corner can never be connected",
		}, nil
	}

	if c.Terrain == StraightRail || c.Terrain == BridgeRail {
		if issue := b.checkEdgeOrientation(c); issue != nil {
			return issue, nil
		}
	}

	for _, d := range dirs {
		neighbor, ok := b.Neighbor(c.Position, d)
		if !ok {
			// Every open end must reach an in-bounds neighbour; a board edge never
			// stands in for a connection, including for bends on the border.
			return &CellIssue{
				Position:  c.Position,
				Reason:    ReasonOffBoard,
				Direction: d.String(),
				Message:   fmt.Sprintf("open end points %s off the board", d),
			}, nil
		}
		if !accepts(c, neighbor, d) {
			return &CellIssue{
				Position:  c.Position,
				Reason:    ReasonDisconnected,
				Direction: d.String(),
				Message: fmt.Sprintf("open end %s is not met by the %s at (%d,%d)",
					d, neighbor.Tile(), neighbor.Position.X, neighbor.Position.Y),
			}, nil
		}
	}

	return nil, nil
}

// checkEdgeOrientation enforces that straight pieces on the top and bottom rows run
// horizontally and straight pieces on the left and right columns run vertically.
func (b *Board) checkEdgeOrientation(c Cell) *CellIssue {
	last := b.size - 1
	onRowEdge := c.Position.X == 0 || c.Position.X == last
	onColumnEdge := c.Position.Y == 0 || c.Position.Y == last

	switch {
	case onRowEdge && !c.IsHorizontal():
		return &CellIssue{
			Position: c.Position,
			Reason:   ReasonEdgeOrientation,
			Message:  "straight pieces on the top or bottom edge must be horizontal",
		}
	case onColumnEdge && c.IsHorizontal():
		return &CellIssue{
			Position: c.Position,
			Reason:   ReasonEdgeOrientation,
			Message:  "straight pieces on the left or right edge must be vertical",
		}
	}
	return nil
}

// accepts reports whether neighbor, lying in direction d from source, presents an end
// back toward source. The four directions are separate rules and deliberately not
// mirrored: a bend looking down or up accepts any straight rail, a straight looking
// down or up accepts any bridge rail.
func accepts(source, neighbor Cell, d Direction) bool {
	bendSource := source.Terrain == CurveRail || source.Terrain == MountainRail

	switch d {
	case South:
		if bendSource {
			return neighbor.Terrain == StraightRail ||
				isBend(neighbor, Up, Right) ||
				neighbor.Terrain == BridgeRail
		}
		return (neighbor.Terrain == StraightRail && !neighbor.IsHorizontal()) ||
			isBend(neighbor, Up, Right) ||
			neighbor.Terrain == BridgeRail

	case North:
		if bendSource {
			return neighbor.Terrain == StraightRail ||
				isBend(neighbor, Left, Down) ||
				neighbor.Terrain == BridgeRail
		}
		return (neighbor.Terrain == StraightRail && !neighbor.IsHorizontal()) ||
			isBend(neighbor, Down, Left) ||
			neighbor.Terrain == BridgeRail

	case East:
		return isHorizontalStraight(neighbor) || isBend(neighbor, Left, Up)

	case West:
		return isHorizontalStraight(neighbor) || isBend(neighbor, Right, Down)
	}

	return false
}

func isBend(c Cell, orientations ...Orientation) bool {
	if c.Terrain != CurveRail && c.Terrain != MountainRail {
		return false
	}
	for _, o := range orientations {
		if c.Orientation == o {
			return true
		}
	}
	return false
}

func isHorizontalStraight(c Cell) bool {
	return (c.Terrain == StraightRail || c.Terrain == BridgeRail) && c.IsHorizontal()
}
