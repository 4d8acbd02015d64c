// Package render draws boards as text for terminals and text-only clients.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
	"golang.org/x/term"
)

var glyphs = map[engine.Tile]string{
	{Terrain: engine.Empty, Orientation: engine.None}:              "·",
	{Terrain: engine.Oasis, Orientation: engine.None}:              "≈",
	{Terrain: engine.Bridge, Orientation: engine.None}:             "‖",
	{Terrain: engine.Bridge, Orientation: engine.Horizontal}:       "=",
	{Terrain: engine.StraightRail, Orientation: engine.None}:       "│",
	{Terrain: engine.StraightRail, Orientation: engine.Horizontal}: "─",
	{Terrain: engine.BridgeRail, Orientation: engine.None}:         "║",
	{Terrain: engine.BridgeRail, Orientation: engine.Horizontal}:   "═",
	{Terrain: engine.CurveRail, Orientation: engine.Left}:          "┐",
	{Terrain: engine.CurveRail, Orientation: engine.Up}:            "┘",
	{Terrain: engine.CurveRail, Orientation: engine.Right}:         "└",
	{Terrain: engine.CurveRail, Orientation: engine.Down}:          "┌",
	{Terrain: engine.MountainRail, Orientation: engine.Left}:       "╮",
	{Terrain: engine.MountainRail, Orientation: engine.Up}:         "╯",
	{Terrain: engine.MountainRail, Orientation: engine.Right}:      "╰",
	{Terrain: engine.MountainRail, Orientation: engine.Down}:       "╭",
}

// Glyph returns the single-column symbol for a tile. Mountains show as "▲"
// whatever bend they will become; illegal tiles show as "?".
func Glyph(t engine.Tile) string {
	if t.Terrain == engine.Mountain && t.Valid() {
		return "▲"
	}
	if g, ok := glyphs[t]; ok {
		return g
	}
	return "?"
}

// Renderer draws boards, optionally with ANSI colours
type Renderer struct {
	color bool

	colorEmpty        color.Style
	colorOasis        color.Style
	colorTerrain      color.Style
	colorRail         color.Style
	colorMountainRail color.Style
	colorBridgeRail   color.Style
	colorIssue        color.Style
	colorLabel        color.Style
}

// New creates a renderer. With useColor false the output is plain text.
func New(useColor bool) *Renderer {
	return &Renderer{
		color:             useColor,
		colorEmpty:        color.Style{color.FgGray},
		colorOasis:        color.Style{color.FgBlue},
		colorTerrain:      color.Style{color.FgYellow},
		colorRail:         color.Style{color.FgGreen, color.OpBold},
		colorMountainRail: color.Style{color.FgYellow, color.OpBold},
		colorBridgeRail:   color.Style{color.FgCyan, color.OpBold},
		colorIssue:        color.Style{color.FgRed, color.OpBold},
		colorLabel:        color.Style{color.FgGray, color.OpBold},
	}
}

// ForWriter creates a renderer that colours its output only when w is a terminal
func ForWriter(w io.Writer) *Renderer {
	f, ok := w.(*os.File)
	return New(ok && term.IsTerminal(int(f.Fd())))
}

// Colored reports whether the renderer emits ANSI colours
func (r *Renderer) Colored() bool {
	return r.color
}

// Board draws rows (indexed [x][y]) with column numbers on top and row numbers
// on the left. Cells listed in marked are highlighted as problems.
func (r *Renderer) Board(rows [][]engine.Cell, marked ...engine.Position) string {
	flagged := make(map[engine.Position]bool, len(marked))
	for _, pos := range marked {
		flagged[pos] = true
	}

	var sb strings.Builder
	sb.WriteString("   ")
	for y := range rows {
		sb.WriteString(r.paint(r.colorLabel, fmt.Sprintf(" %d", y)))
	}
	sb.WriteString("\n")

	for x, row := range rows {
		sb.WriteString(r.paint(r.colorLabel, fmt.Sprintf("%2d ", x)))
		for _, c := range row {
			sb.WriteString(" ")
			glyph := Glyph(c.Tile())
			if flagged[c.Position] {
				sb.WriteString(r.paint(r.colorIssue, glyph))
				continue
			}
			sb.WriteString(r.paint(r.styleFor(c.Terrain), glyph))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Legend explains the glyphs
func (r *Renderer) Legend() string {
	entries := []struct {
		tile  engine.Tile
		label string
	}{
		{engine.Tile{Terrain: engine.Empty, Orientation: engine.None}, "open ground"},
		{engine.Tile{Terrain: engine.Oasis, Orientation: engine.None}, "oasis"},
		{engine.Tile{Terrain: engine.Mountain, Orientation: engine.Down}, "mountain"},
		{engine.Tile{Terrain: engine.Bridge, Orientation: engine.Horizontal}, "bridge"},
		{engine.Tile{Terrain: engine.StraightRail, Orientation: engine.Horizontal}, "rail"},
		{engine.Tile{Terrain: engine.MountainRail, Orientation: engine.Down}, "mountain rail"},
		{engine.Tile{Terrain: engine.BridgeRail, Orientation: engine.Horizontal}, "bridge rail"},
	}

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, r.paint(r.styleFor(e.tile.Terrain), Glyph(e.tile))+" "+e.label)
	}
	return strings.Join(parts, "  ")
}

// Tile draws a single tile in its colour
func (r *Renderer) Tile(t engine.Tile) string {
	return r.paint(r.styleFor(t.Terrain), Glyph(t))
}

// Text draws a plain board without colours
func Text(rows [][]engine.Cell, marked ...engine.Position) string {
	return New(false).Board(rows, marked...)
}

// VisibleWidth returns the printed width of s, ignoring colour codes
func VisibleWidth(s string) int {
	return len([]rune(color.ClearCode(s)))
}

func (r *Renderer) styleFor(t engine.TerrainKind) color.Style {
	switch t {
	case engine.Oasis:
		return r.colorOasis
	case engine.Mountain, engine.Bridge:
		return r.colorTerrain
	case engine.StraightRail, engine.CurveRail:
		return r.colorRail
	case engine.MountainRail:
		return r.colorMountainRail
	case engine.BridgeRail:
		return r.colorBridgeRail
	default:
		return r.colorEmpty
	}
}

func (r *Renderer) paint(style color.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Sprint(s)
}
