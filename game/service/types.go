package service

import (
	"time"

	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
	"github.com/wricardo/mcp-training/railpuzzle/game/leaderboard"
)

// CreateSessionRequest starts a new game. A nil MapID picks a random map of the difficulty.
type CreateSessionRequest struct {
	PlayerName string            `json:"player_name"`
	Difficulty engine.Difficulty `json:"difficulty"`
	MapID      *int              `json:"map_id,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	PlayerName     string             `json:"player_name"`
	Difficulty     engine.Difficulty  `json:"difficulty"`
	MapID          int                `json:"map_id"`
	MapName        string             `json:"map_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	FinishedAt     *time.Time         `json:"finished_at,omitempty"`
	Elapsed        string             `json:"elapsed"`
	ElapsedSeconds int                `json:"elapsed_seconds"`
	Solved         bool               `json:"solved"`
	Entry          *leaderboard.Entry `json:"leaderboard_entry,omitempty"`
	Board          *BoardState        `json:"board"`
}

// BoardState is a snapshot of a session's board
type BoardState struct {
	Size         int                `json:"size"`
	Difficulty   engine.Difficulty  `json:"difficulty"`
	Rows         [][]engine.Cell    `json:"rows"`
	Layout       engine.BoardLayout `json:"layout"`
	Solved       bool               `json:"solved"`
	Interactions int                `json:"interactions"`
	Remaining    int                `json:"remaining_convertible"`
}

// InteractResult contains the result of one interaction
type InteractResult struct {
	SessionID string             `json:"session_id"`
	Position  engine.Position    `json:"position"`
	Before    engine.Cell        `json:"before"`
	After     engine.Cell        `json:"after"`
	Changed   bool               `json:"changed"`
	Solved    bool               `json:"solved"`
	Message   string             `json:"message"`
	Elapsed   string             `json:"elapsed"`
	Entry     *leaderboard.Entry `json:"leaderboard_entry,omitempty"`
	Board     *BoardState        `json:"board"`
}

// CellInfo explains a single cell: what it is, what the next interaction turns it
// into and whether the checker is satisfied with it
type CellInfo struct {
	Cell           engine.Cell          `json:"cell"`
	Options        []engine.TerrainKind `json:"options"`
	Next           engine.Tile          `json:"next"`
	OpenDirections []string             `json:"open_directions,omitempty"`
	Issue          *engine.CellIssue    `json:"issue,omitempty"`
}

// MapInfo provides information about a catalog map
type MapInfo struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Difficulty engine.Difficulty `json:"difficulty"`
	Size       int               `json:"size"`
	File       string            `json:"file"`
	Mountains  int               `json:"mountains"`
	Bridges    int               `json:"bridges"`
	Oases      int               `json:"oases"`
	OpenCells  int               `json:"open_cells"`
}
