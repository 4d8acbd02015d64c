package main

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
)

// ErrNoSolution is returned when no assignment of rails satisfies the board
var ErrNoSolution = errors.New("no solution")

// Tap is a number of interactions on one cell
type Tap struct {
	Position engine.Position
	Count    int
}

// choice is one reachable state of a cell and the taps that reach it
type choice struct {
	tile engine.Tile
	taps int
}

// Solver searches the tap plan that solves a board. Cells are decided in row-major
// order; a cell is checked as soon as all of its neighbours are decided, so dead
// branches are cut early.
type Solver struct {
	size    int
	choices map[engine.Position][]choice
	visited int
}

// NewSolver prepares the reachable states of every cell on b
func NewSolver(b *engine.Board) (*Solver, error) {
	s := &Solver{
		size:    b.Size(),
		choices: make(map[engine.Position][]choice),
	}
	for _, c := range b.Cells() {
		options, err := reachable(c.Tile())
		if err != nil {
			return nil, fmt.Errorf("cell (%d,%d): %w", c.Position.X, c.Position.Y, err)
		}
		s.choices[c.Position] = options
	}
	return s, nil
}

// reachable lists the states tapping can reach from t. Unconverted terrain must be
// tapped at least once since it never satisfies the checker.
func reachable(t engine.Tile) ([]choice, error) {
	var out []choice
	seen := map[engine.Tile]bool{}
	current := t
	for taps := 0; !seen[current]; taps++ {
		seen[current] = true
		if !current.Terrain.IsUnconverted() {
			out = append(out, choice{tile: current, taps: taps})
		}
		next, err := engine.NextTile(current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return out, nil
}

// Visited returns how many partial boards the last search looked at
func (s *Solver) Visited() int {
	return s.visited
}

// Solve returns the taps that turn b into a solved board. b is not modified.
func (s *Solver) Solve(b *engine.Board) ([]Tap, error) {
	s.visited = 0
	plan := make([]Tap, 0, s.size*s.size)
	found, err := s.search(b.Clone(), 0, &plan)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w after %d boards", ErrNoSolution, s.visited)
	}

	taps := plan[:0]
	for _, t := range plan {
		if t.Count > 0 {
			taps = append(taps, t)
		}
	}
	return taps, nil
}

func (s *Solver) search(b *engine.Board, index int, plan *[]Tap) (bool, error) {
	if index == s.size*s.size {
		return engine.IsSolved(b)
	}

	pos := engine.Position{X: index / s.size, Y: index % s.size}
	for _, ch := range s.choices[pos] {
		s.visited++
		next := b.Clone()
		for i := 0; i < ch.taps; i++ {
			if _, _, err := next.Place(pos); err != nil {
				return false, err
			}
		}

		ok, err := s.consistent(next, pos)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}

		*plan = append(*plan, Tap{Position: pos, Count: ch.taps})
		found, err := s.search(next, index+1, plan)
		if err != nil || found {
			return found, err
		}
		*plan = (*plan)[:len(*plan)-1]
	}
	return false, nil
}

// consistent checks the cells whose neighbourhood became fully decided with pos
func (s *Solver) consistent(b *engine.Board, pos engine.Position) (bool, error) {
	// Faults of pos itself that no neighbour can fix
	issue, err := b.CheckCell(pos)
	if err != nil {
		return false, err
	}
	if issue != nil {
		switch issue.Reason {
		case engine.ReasonCorner, engine.ReasonEdgeOrientation, engine.ReasonOffBoard:
			return false, nil
		}
	}

	decided := []engine.Position{{X: pos.X - 1, Y: pos.Y}}
	if pos.X == s.size-1 && pos.Y > 0 {
		decided = append(decided, engine.Position{X: pos.X, Y: pos.Y - 1})
	}
	for _, p := range decided {
		if !b.InBounds(p) {
			continue
		}
		issue, err := b.CheckCell(p)
		if err != nil {
			return false, err
		}
		if issue != nil {
			return false, nil
		}
	}
	return true, nil
}
