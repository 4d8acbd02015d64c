package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
	"github.com/wricardo/mcp-training/railpuzzle/game/leaderboard"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMapNotFound     = errors.New("map not found")
	ErrNoMaps          = errors.New("no maps available")
	ErrGameFinished    = errors.New("game already finished")
	ErrInvalidRequest  = errors.New("invalid request")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CleanupSessions(ctx context.Context, maxAge time.Duration) int

	// Game Operations
	Interact(ctx context.Context, sessionID string, pos engine.Position) (*InteractResult, error)
	Reset(ctx context.Context, sessionID string) (*SessionInfo, error)

	// Board State
	GetBoard(ctx context.Context, sessionID string) (*BoardState, error)
	CheckBoard(ctx context.Context, sessionID string) (*engine.CheckReport, error)
	DescribeCell(ctx context.Context, sessionID string, pos engine.Position) (*CellInfo, error)

	// Maps
	ListMaps(ctx context.Context) ([]*MapInfo, error)
	GetMap(ctx context.Context, difficulty engine.Difficulty, id int) (*engine.MapDefinition, error)

	// Leaderboard
	Leaderboard(ctx context.Context, difficulty engine.Difficulty, limit int) ([]leaderboard.Entry, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, playerName string, def *engine.MapDefinition) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	CleanupExpiredSessions(maxAge time.Duration) int
	Count() int
}

// MapCatalog provides the playable maps
type MapCatalog interface {
	LoadMap(difficulty engine.Difficulty, id int) (*engine.MapDefinition, error)
	RandomMap(difficulty engine.Difficulty) (*engine.MapDefinition, error)
	ListMaps() ([]*MapInfo, error)
}

// Session is one player's game on one map. It is the explicit home of everything
// a game needs: the board, the timer and the completion record.
type Session struct {
	ID             string
	PlayerName     string
	Map            *engine.MapDefinition
	Engine         *engine.GameEngine
	CreatedAt      time.Time
	LastAccessedAt time.Time
	StartedAt      time.Time
	FinishedAt     time.Time
	Elapsed        time.Duration
	Entry          *leaderboard.Entry
}

// Difficulty returns the difficulty of the session's map
func (s *Session) Difficulty() engine.Difficulty {
	return s.Map.Difficulty
}

// Finished reports whether the board has been solved
func (s *Session) Finished() bool {
	return !s.FinishedAt.IsZero()
}

// ElapsedAt returns the game time at now; it stops once the game is finished
func (s *Session) ElapsedAt(now time.Time) time.Duration {
	if s.Finished() {
		return s.Elapsed
	}
	return now.Sub(s.StartedAt)
}
