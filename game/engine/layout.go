package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// BoardLayout maps coordinates to their initial tile. It is seed data owned by the
// map loader; missing coordinates mean Empty.
//
// In JSON it is an object keyed "x,y" whose values are "terrain,orientation" strings,
// the same shape the map catalogs use for tiles.
type BoardLayout map[Position]Tile

// ParsePosition parses an "x,y" coordinate key
func ParsePosition(key string) (Position, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(key), ",")
	if !ok {
		return Position{}, fmt.Errorf("%w: malformed key %q", ErrInvalidCoordinate, key)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Position{}, fmt.Errorf("%w: malformed key %q", ErrInvalidCoordinate, key)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Position{}, fmt.Errorf("%w: malformed key %q", ErrInvalidCoordinate, key)
	}
	return Position{X: x, Y: y}, nil
}

// FormatPosition renders pos as an "x,y" key
func FormatPosition(pos Position) string {
	return strconv.Itoa(pos.X) + "," + strconv.Itoa(pos.Y)
}

// ParseTile parses a "terrain[,orientation]" tile description. A trailing ".png"
// on the terrain name is accepted and stripped. A missing orientation means None.
func ParseTile(s string) (Tile, error) {
	name, orient, _ := strings.Cut(strings.TrimSpace(s), ",")
	name = strings.TrimSuffix(strings.TrimSpace(name), ".png")

	t := Tile{Terrain: TerrainKind(name), Orientation: None}
	if orient = strings.TrimSpace(orient); orient != "" {
		t.Orientation = Orientation(orient)
	}

	if !t.Terrain.IsValid() {
		return t, fmt.Errorf("%w: unknown terrain %q", ErrInvalidState, name)
	}
	if !t.Orientation.IsValid() {
		return t, fmt.Errorf("%w: unknown orientation %q", ErrInvalidState, orient)
	}
	if !t.Valid() {
		return t, fmt.Errorf("%w: %s cannot have orientation %s", ErrInvalidState, t.Terrain, t.Orientation)
	}
	return t, nil
}

// String renders the tile as "terrain" or "terrain,orientation"
func (t Tile) String() string {
	if t.Orientation == None || t.Orientation == "" {
		return string(t.Terrain)
	}
	return string(t.Terrain) + "," + string(t.Orientation)
}

// ParseLayout builds a layout from "x,y" -> "terrain,orientation" entries
func ParseLayout(entries map[string]string) (BoardLayout, error) {
	layout := make(BoardLayout, len(entries))
	for key, value := range entries {
		pos, err := ParsePosition(key)
		if err != nil {
			return nil, err
		}
		tile, err := ParseTile(value)
		if err != nil {
			return nil, fmt.Errorf("tile %s: %w", key, err)
		}
		layout[pos] = tile
	}
	return layout, nil
}

// Entries renders the layout back into its string form
func (l BoardLayout) Entries() map[string]string {
	out := make(map[string]string, len(l))
	for pos, tile := range l {
		out[FormatPosition(pos)] = tile.String()
	}
	return out
}

// Positions returns the layout coordinates in row-major order
func (l BoardLayout) Positions() []Position {
	out := make([]Position, 0, len(l))
	for pos := range l {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// MarshalJSON implements json.Marshaler
func (l BoardLayout) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Entries())
}

// UnmarshalJSON implements json.Unmarshaler
func (l *BoardLayout) UnmarshalJSON(data []byte) error {
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	parsed, err := ParseLayout(entries)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
