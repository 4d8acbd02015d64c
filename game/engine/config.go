package engine

import "fmt"

// MapDefinition is an authored puzzle layout from a map catalog
type MapDefinition struct {
	ID         int         `json:"id"`
	Name       string      `json:"name,omitempty"`
	Difficulty Difficulty  `json:"difficulty"`
	Layout     BoardLayout `json:"layout"`
}

// Size returns the board size the map is authored for
func (m *MapDefinition) Size() int {
	return m.Difficulty.Size()
}

// DisplayName returns the map name, falling back to its ID
func (m *MapDefinition) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("map %d", m.ID)
}

// ValidateMap validates a map definition for correctness
func ValidateMap(m *MapDefinition) error {
	if m == nil {
		return fmt.Errorf("map validation: definition is nil")
	}
	if m.ID < 0 {
		return fmt.Errorf("map validation: id must not be negative, got %d", m.ID)
	}
	if !m.Difficulty.IsValid() {
		return fmt.Errorf("map validation: difficulty must be %q or %q, got %q", Easy, Hard, m.Difficulty)
	}

	size := m.Size()
	for _, pos := range m.Layout.Positions() {
		tile := m.Layout[pos]
		if pos.X < 0 || pos.X >= size || pos.Y < 0 || pos.Y >= size {
			return fmt.Errorf("map validation: tile (%d,%d) outside %dx%d board: %w",
				pos.X, pos.Y, size, size, ErrInvalidCoordinate)
		}
		if !tile.Valid() {
			return fmt.Errorf("map validation: tile (%d,%d) is %s with orientation %s: %w",
				pos.X, pos.Y, tile.Terrain, tile.Orientation, ErrInvalidState)
		}
	}

	return nil
}

// NewBoardFromMap validates the map and builds its starting board
func NewBoardFromMap(m *MapDefinition) (*Board, error) {
	if err := ValidateMap(m); err != nil {
		return nil, err
	}
	return NewBoard(m.Size(), m.Layout)
}
