// Command analyze prints quick, human-readable heuristics about the map catalogs in
// the maps directory. It summarizes terrain counts per map and highlights layouts
// that can never be solved: rails forced into corners, fixed pieces pointing off
// the board or along the wrong edge, cells with too few buildable neighbours and
// an odd number of track cells, which no closed loop can cover.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/wricardo/mcp-training/railpuzzle/game/config"
	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
)

// Analysis is the outcome for one map
type Analysis struct {
	Map        *engine.MapDefinition
	Histogram  map[engine.TerrainKind]int
	TrackCells int
	Warnings   []string
}

func main() {
	dir := "maps"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	maps, err := config.NewManager(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading maps: %v\n", err)
		os.Exit(1)
	}

	failed := false
	for _, difficulty := range []engine.Difficulty{engine.Easy, engine.Hard} {
		for _, def := range maps.MapsFor(difficulty) {
			a, err := analyzeMap(def)
			if err != nil {
				fmt.Printf("\n=== %s map %d ===\nError: %v\n", difficulty, def.ID, err)
				failed = true
				continue
			}
			printAnalysis(os.Stdout, a)
			failed = failed || len(a.Warnings) > 0
		}
	}

	if failed {
		os.Exit(1)
	}
}

// analyzeMap builds the starting board of def and looks for unsolvable spots
func analyzeMap(def *engine.MapDefinition) (*Analysis, error) {
	board, err := engine.NewBoardFromMap(def)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Map:       def,
		Histogram: engine.TerrainHistogram(def.Layout, def.Size()),
	}

	for _, c := range board.Cells() {
		if c.Terrain == engine.Oasis {
			continue
		}
		a.TrackCells++

		if board.IsCorner(c.Position) {
			a.warn(c, "sits in a corner, a rail there can never connect")
			continue
		}

		if c.Terrain == engine.Mountain || c.Terrain == engine.Bridge {
			a.checkFixedPiece(board, c)
		}

		if n := buildableNeighbors(board, c.Position); n < 2 {
			a.warn(c, fmt.Sprintf("has %d buildable neighbours, a rail needs 2", n))
		}
	}

	// A closed loop on a grid alternates colours, so it always has even length
	if a.TrackCells%2 != 0 {
		a.Warnings = append(a.Warnings, fmt.Sprintf("%d track cells, a single closed loop needs an even number", a.TrackCells))
	}
	return a, nil
}

// checkFixedPiece looks at the rail a mountain or bridge converts into
func (a *Analysis) checkFixedPiece(board *engine.Board, c engine.Cell) {
	rail, err := engine.NextTile(c.Tile())
	if err != nil {
		a.warn(c, err.Error())
		return
	}

	dirs, err := engine.OpenDirections(rail.Terrain, rail.Orientation)
	if err != nil {
		a.warn(c, err.Error())
		return
	}
	for _, d := range dirs {
		neighbor, ok := board.Neighbor(c.Position, d)
		if !ok {
			a.warn(c, fmt.Sprintf("converts to %s with an end pointing %s off the board", rail, d))
			continue
		}
		if neighbor.Terrain == engine.Oasis {
			a.warn(c, fmt.Sprintf("converts to %s with an end pointing %s into an oasis", rail, d))
		}
	}
}

func buildableNeighbors(board *engine.Board, pos engine.Position) int {
	n := 0
	for _, d := range engine.AllDirections() {
		if neighbor, ok := board.Neighbor(pos, d); ok && neighbor.Terrain != engine.Oasis {
			n++
		}
	}
	return n
}

func (a *Analysis) warn(c engine.Cell, msg string) {
	a.Warnings = append(a.Warnings, fmt.Sprintf("(%d,%d) %s %s", c.Position.X, c.Position.Y, c.Tile(), msg))
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "\n=== %s map %d: %s ===\n", a.Map.Difficulty, a.Map.ID, a.Map.DisplayName())
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Map.Size(), a.Map.Size())
	for _, terrain := range []engine.TerrainKind{engine.Empty, engine.Oasis, engine.Mountain, engine.Bridge} {
		fmt.Fprintf(w, "%-9s %d\n", terrain+":", a.Histogram[terrain])
	}
	fmt.Fprintf(w, "Track cells: %d\n", a.TrackCells)

	if len(a.Warnings) == 0 {
		fmt.Fprintln(w, "✅ No obvious dead ends")
		return
	}
	fmt.Fprintf(w, "⚠️  WARNING: %d problems found\n", len(a.Warnings))
	for _, warning := range a.Warnings {
		fmt.Fprintf(w, "   %s\n", warning)
	}
}
