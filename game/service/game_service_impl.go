package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
	"github.com/wricardo/mcp-training/railpuzzle/game/leaderboard"
	"github.com/wricardo/mcp-training/railpuzzle/game/logging"
	"github.com/wricardo/mcp-training/railpuzzle/game/metrics"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	maps     MapCatalog
	scores   leaderboard.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
	mu       sync.Mutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLeaderboard records solved games in store
func WithLeaderboard(store leaderboard.Store) Option {
	return func(s *gameServiceImpl) {
		s.scores = store
	}
}

// WithMetrics records interactions and sessions in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *gameServiceImpl) {
		s.metrics = m
	}
}

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *gameServiceImpl) {
		s.logger = logger
	}
}

// WithClock replaces time.Now for the game timer
func WithClock(now func() time.Time) Option {
	return func(s *gameServiceImpl) {
		s.now = now
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, maps MapCatalog, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		maps:     maps,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession starts a new game for a player
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	player := strings.TrimSpace(req.PlayerName)
	difficulty := engine.Difficulty(strings.ToLower(string(req.Difficulty)))
	if player == "" || !difficulty.IsValid() {
		return nil, fmt.Errorf("%w: player name and difficulty (%s or %s) are required",
			ErrInvalidRequest, engine.Easy, engine.Hard)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		def *engine.MapDefinition
		err error
	)
	if req.MapID != nil {
		def, err = s.maps.LoadMap(difficulty, *req.MapID)
	} else {
		def, err = s.maps.RandomMap(difficulty)
	}
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", player, def)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.StartedAt = s.now()

	s.metrics.SessionCreated(string(difficulty))
	s.metrics.SetActiveSessions(s.sessions.Count())
	s.logger.Info("session created",
		"session", sess.ID, "player", player, "difficulty", difficulty, "map", def.ID)

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.metrics.SetActiveSessions(s.sessions.Count())
	s.logger.Info("session deleted", "session", sessionID)
	return nil
}

// CleanupSessions removes sessions idle for longer than maxAge
func (s *gameServiceImpl) CleanupSessions(ctx context.Context, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.sessions.CleanupExpiredSessions(maxAge)
	s.metrics.SetActiveSessions(s.sessions.Count())
	if removed > 0 {
		s.logger.Info("cleaned up expired sessions", "removed", removed)
	}
	return removed
}

// Interact applies one interaction to a session's board. The first solved verdict
// finishes the game, stops its timer and records a leaderboard entry.
func (s *gameServiceImpl) Interact(ctx context.Context, sessionID string, pos engine.Position) (*InteractResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	difficulty := string(sess.Difficulty())

	if sess.Finished() {
		s.metrics.Interaction(difficulty, metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: session %s was solved in %s", ErrGameFinished, sess.ID, leaderboard.FormatClock(sess.Elapsed))
	}

	res, err := sess.Engine.Interact(pos)
	if err != nil {
		s.metrics.Interaction(difficulty, metrics.OutcomeRejected)
		return nil, err
	}

	outcome := metrics.OutcomeUnchanged
	if res.Changed {
		outcome = metrics.OutcomeChanged
	}
	s.metrics.Interaction(difficulty, outcome)

	result := &InteractResult{
		SessionID: sess.ID,
		Position:  res.Position,
		Before:    res.Before,
		After:     res.After,
		Changed:   res.Changed,
		Solved:    res.Solved,
		Message:   interactMessage(res),
	}

	if res.Solved {
		s.finish(ctx, sess)
		result.Entry = sess.Entry
	}

	result.Elapsed = leaderboard.FormatClock(sess.ElapsedAt(s.now()))
	result.Board = boardState(sess)
	return result, nil
}

// finish stops the session timer and records the completion
func (s *gameServiceImpl) finish(ctx context.Context, sess *Session) {
	now := s.now()
	sess.FinishedAt = now
	sess.Elapsed = now.Sub(sess.StartedAt)

	s.metrics.Solved(string(sess.Difficulty()), sess.Elapsed)
	s.logger.Info("puzzle solved",
		"session", sess.ID, "player", sess.PlayerName, "map", sess.Map.ID,
		"time", leaderboard.FormatClock(sess.Elapsed), "interactions", sess.Engine.Interactions())

	if s.scores == nil {
		return
	}

	entry, err := s.scores.Add(ctx, leaderboard.Entry{
		Name:       sess.PlayerName,
		Difficulty: sess.Difficulty(),
		Seconds:    int(sess.Elapsed / time.Second),
		MapID:      sess.Map.ID,
		RecordedAt: now.UTC(),
	})
	if err != nil {
		// The game stays solved even if the score cannot be stored
		s.logger.Error("failed to record leaderboard entry", "session", sess.ID, "error", err)
		return
	}
	sess.Entry = &entry
}

// Reset restores the starting board of an unfinished game. The timer keeps running.
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Finished() {
		return nil, fmt.Errorf("%w: session %s cannot be reset", ErrGameFinished, sess.ID)
	}

	sess.Engine.Reset()
	s.logger.Debug("board reset", "session", sess.ID)
	return s.sessionInfo(sess), nil
}

// GetBoard returns the current board of a session
func (s *gameServiceImpl) GetBoard(ctx context.Context, sessionID string) (*BoardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return boardState(sess), nil
}

// CheckBoard returns per-cell diagnostics for a session's board
func (s *gameServiceImpl) CheckBoard(ctx context.Context, sessionID string) (*engine.CheckReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Check()
}

// DescribeCell explains one cell of a session's board
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, pos engine.Position) (*CellInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	board := sess.Engine.Board()
	cell, err := board.Cell(pos)
	if err != nil {
		return nil, err
	}

	next, err := engine.NextTile(cell.Tile())
	if err != nil {
		return nil, err
	}
	issue, err := board.CheckCell(pos)
	if err != nil {
		return nil, err
	}

	info := &CellInfo{
		Cell:    cell,
		Options: engine.ValidOptions(cell.Terrain),
		Next:    next,
		Issue:   issue,
	}
	if cell.Terrain.IsRail() {
		dirs, err := engine.OpenDirections(cell.Terrain, cell.Orientation)
		if err != nil {
			return nil, err
		}
		info.OpenDirections = []string{dirs[0].String(), dirs[1].String()}
	}
	return info, nil
}

// ListMaps returns all catalog maps
func (s *gameServiceImpl) ListMaps(ctx context.Context) ([]*MapInfo, error) {
	return s.maps.ListMaps()
}

// GetMap returns one catalog map
func (s *gameServiceImpl) GetMap(ctx context.Context, difficulty engine.Difficulty, id int) (*engine.MapDefinition, error) {
	return s.maps.LoadMap(difficulty, id)
}

// Leaderboard returns the fastest completions. An empty difficulty ranks both
// difficulties together; a limit of zero or less means the default top size.
func (s *gameServiceImpl) Leaderboard(ctx context.Context, difficulty engine.Difficulty, limit int) ([]leaderboard.Entry, error) {
	if difficulty != "" && !difficulty.IsValid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidRequest, difficulty)
	}
	if limit <= 0 {
		limit = engine.DefaultTopEntries
	}
	if s.scores == nil {
		return []leaderboard.Entry{}, nil
	}
	return s.scores.Top(ctx, difficulty, limit)
}

// session looks up a session and marks it accessed. Callers hold s.mu, which also
// guards every field of the sessions it returns.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sess.ID)
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	elapsed := sess.ElapsedAt(s.now())
	info := &SessionInfo{
		ID:             sess.ID,
		PlayerName:     sess.PlayerName,
		Difficulty:     sess.Difficulty(),
		MapID:          sess.Map.ID,
		MapName:        sess.Map.DisplayName(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Elapsed:        leaderboard.FormatClock(elapsed),
		ElapsedSeconds: int(elapsed / time.Second),
		Solved:         sess.Finished(),
		Entry:          sess.Entry,
		Board:          boardState(sess),
	}
	if sess.Finished() {
		finished := sess.FinishedAt
		info.FinishedAt = &finished
	}
	return info
}

func boardState(sess *Session) *BoardState {
	board := sess.Engine.Board()
	solved, err := sess.Engine.IsSolved()
	if err != nil {
		solved = false
	}
	return &BoardState{
		Size:         board.Size(),
		Difficulty:   sess.Difficulty(),
		Rows:         board.Rows(),
		Layout:       board.Layout(),
		Solved:       solved,
		Interactions: sess.Engine.Interactions(),
		Remaining:    engine.RemainingConvertible(board),
	}
}

func interactMessage(res *engine.InteractResult) string {
	switch {
	case res.Solved:
		return "Puzzle solved!"
	case !res.Changed:
		return fmt.Sprintf("%s at (%d,%d) cannot be changed", res.Before.Terrain, res.Position.X, res.Position.Y)
	default:
		return fmt.Sprintf("(%d,%d) is now %s", res.Position.X, res.Position.Y, res.After.Tile())
	}
}
