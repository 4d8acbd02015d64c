package engine

import "fmt"

// Engine provides the main interface for puzzle operations
type Engine interface {
	// Board state
	Board() *Board
	Size() int
	Layout() BoardLayout
	Reset()

	// Interaction
	Interact(pos Position) (*InteractResult, error)
	Interactions() int

	// Verdict
	IsSolved() (bool, error)
	Check() (*CheckReport, error)
}

// InteractResult reports the outcome of one player interaction
type InteractResult struct {
	Position Position `json:"position"`
	Before   Cell     `json:"before"`
	After    Cell     `json:"after"`
	Changed  bool     `json:"changed"`
	Solved   bool     `json:"solved"`
}

// GameEngine implements the Engine interface. It is not safe for concurrent use;
// callers sharing an engine must serialize access.
type GameEngine struct {
	board        *Board
	initial      BoardLayout
	interactions int
}

// NewEngine creates a new engine from a board size and starting layout
func NewEngine(size int, layout BoardLayout) (*GameEngine, error) {
	board, err := NewBoard(size, layout)
	if err != nil {
		return nil, err
	}

	return &GameEngine{
		board:   board,
		initial: board.Layout(),
	}, nil
}

// NewEngineFromMap creates a new engine for an authored map
func NewEngineFromMap(m *MapDefinition) (*GameEngine, error) {
	if err := ValidateMap(m); err != nil {
		return nil, err
	}
	return NewEngine(m.Size(), m.Layout)
}

// Board returns the live board
func (e *GameEngine) Board() *Board {
	return e.board
}

// Size returns the board edge length
func (e *GameEngine) Size() int {
	return e.board.Size()
}

// Layout returns the current board as a layout
func (e *GameEngine) Layout() BoardLayout {
	return e.board.Layout()
}

// Reset restores the starting layout
func (e *GameEngine) Reset() {
	// The initial layout was accepted once, rebuilding it cannot fail
	board, err := NewBoard(e.board.Size(), e.initial)
	if err != nil {
		panic(fmt.Sprintf("engine: rebuilding initial layout: %v", err))
	}
	e.board = board
	e.interactions = 0
}

// Interact applies one player interaction at pos and re-checks the whole board.
// Interactions on cells with no placement options leave the board unchanged but
// still report the current verdict.
func (e *GameEngine) Interact(pos Position) (*InteractResult, error) {
	before, after, err := e.board.Place(pos)
	if err != nil {
		return nil, err
	}
	e.interactions++

	solved, err := IsSolved(e.board)
	if err != nil {
		return nil, err
	}

	return &InteractResult{
		Position: pos,
		Before:   before,
		After:    after,
		Changed:  before != after,
		Solved:   solved,
	}, nil
}

// Interactions returns how many interactions were applied since the last reset
func (e *GameEngine) Interactions() int {
	return e.interactions
}

// IsSolved reports whether the board is solved
func (e *GameEngine) IsSolved() (bool, error) {
	return IsSolved(e.board)
}

// Check returns the per-cell diagnostics for the board
func (e *GameEngine) Check() (*CheckReport, error) {
	return Check(e.board)
}
