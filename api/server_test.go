package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/railpuzzle/game/config"
	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
	"github.com/wricardo/mcp-training/railpuzzle/game/leaderboard"
	"github.com/wricardo/mcp-training/railpuzzle/game/metrics"
	"github.com/wricardo/mcp-training/railpuzzle/game/service"
	"github.com/wricardo/mcp-training/railpuzzle/game/session"
	"github.com/wricardo/mcp-training/railpuzzle/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error
	CleanupFunc       func(ctx context.Context, maxAge time.Duration) int

	InteractFunc func(ctx context.Context, sessionID string, pos engine.Position) (*service.InteractResult, error)
	ResetFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)

	GetBoardFunc     func(ctx context.Context, sessionID string) (*service.BoardState, error)
	CheckBoardFunc   func(ctx context.Context, sessionID string) (*engine.CheckReport, error)
	DescribeCellFunc func(ctx context.Context, sessionID string, pos engine.Position) (*service.CellInfo, error)

	ListMapsFunc    func(ctx context.Context) ([]*service.MapInfo, error)
	GetMapFunc      func(ctx context.Context, difficulty engine.Difficulty, id int) (*engine.MapDefinition, error)
	LeaderboardFunc func(ctx context.Context, difficulty engine.Difficulty, limit int) ([]leaderboard.Entry, error)
}

func (m *MockGameService) CreateSession(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, req)
	}
	return &service.SessionInfo{ID: "ab12", PlayerName: req.PlayerName, Difficulty: req.Difficulty}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Interact(ctx context.Context, sessionID string, pos engine.Position) (*service.InteractResult, error) {
	if m.InteractFunc != nil {
		return m.InteractFunc(ctx, sessionID, pos)
	}
	return &service.InteractResult{SessionID: sessionID, Position: pos, Board: &service.BoardState{}}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, Board: &service.BoardState{}}, nil
}

func (m *MockGameService) GetBoard(ctx context.Context, sessionID string) (*service.BoardState, error) {
	if m.GetBoardFunc != nil {
		return m.GetBoardFunc(ctx, sessionID)
	}
	return &service.BoardState{Size: engine.EasySize}, nil
}

func (m *MockGameService) CheckBoard(ctx context.Context, sessionID string) (*engine.CheckReport, error) {
	if m.CheckBoardFunc != nil {
		return m.CheckBoardFunc(ctx, sessionID)
	}
	return &engine.CheckReport{Solved: true}, nil
}

func (m *MockGameService) DescribeCell(ctx context.Context, sessionID string, pos engine.Position) (*service.CellInfo, error) {
	if m.DescribeCellFunc != nil {
		return m.DescribeCellFunc(ctx, sessionID, pos)
	}
	return &service.CellInfo{Cell: engine.Cell{Position: pos, Terrain: engine.Empty, Orientation: engine.None}}, nil
}

func (m *MockGameService) CleanupSessions(ctx context.Context, maxAge time.Duration) int {
	if m.CleanupFunc != nil {
		return m.CleanupFunc(ctx, maxAge)
	}
	return 0
}

func (m *MockGameService) ListMaps(ctx context.Context) ([]*service.MapInfo, error) {
	if m.ListMapsFunc != nil {
		return m.ListMapsFunc(ctx)
	}
	return []*service.MapInfo{}, nil
}

func (m *MockGameService) GetMap(ctx context.Context, difficulty engine.Difficulty, id int) (*engine.MapDefinition, error) {
	if m.GetMapFunc != nil {
		return m.GetMapFunc(ctx, difficulty, id)
	}
	return &engine.MapDefinition{ID: id, Difficulty: difficulty}, nil
}

func (m *MockGameService) Leaderboard(ctx context.Context, difficulty engine.Difficulty, limit int) ([]leaderboard.Entry, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, difficulty, limit)
	}
	return []leaderboard.Entry{}, nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService *MockGameService) *Server {
	t.Helper()
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return NewServer(mockService, hub, WithMetrics(metrics.New()))
}

func makeRequest(method, path string, body any) *http.Request {
	var bodyBytes []byte
	switch b := body.(type) {
	case nil:
	case string:
		bodyBytes = []byte(b)
	default:
		bodyBytes, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", engine.ErrInvalidCoordinate), http.StatusBadRequest},
		{service.ErrInvalidRequest, http.StatusBadRequest},
		{leaderboard.ErrInvalidEntry, http.StatusBadRequest},
		{fmt.Errorf("session zz: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{service.ErrMapNotFound, http.StatusNotFound},
		{service.ErrNoMaps, http.StatusNotFound},
		{service.ErrGameFinished, http.StatusConflict},
		{engine.ErrInvalidState, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name: "valid request",
			body: map[string]any{"player_name": "Anna", "difficulty": "easy", "map_id": 2},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					if req.PlayerName != "Anna" || req.Difficulty != engine.Easy || req.MapID == nil || *req.MapID != 2 {
						t.Errorf("Unexpected request %+v", req)
					}
					return &service.SessionInfo{ID: "ab12"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed body",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing fields",
			body: map[string]any{"difficulty": "easy"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: player name is required", service.ErrInvalidRequest)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown map",
			body: map[string]any{"player_name": "Anna", "difficulty": "hard", "map_id": 9},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					return nil, service.ErrMapNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mock)
			}
			w := serve(setupTestServer(t, mock), makeRequest("POST", "/api/sessions", tt.body))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "aaaa", CreatedAt: base, LastAccessedAt: base.Add(3 * time.Minute)},
				{ID: "bbbb", CreatedAt: base.Add(time.Minute), LastAccessedAt: base.Add(time.Minute)},
				{ID: "cccc", CreatedAt: base.Add(2 * time.Minute), LastAccessedAt: base.Add(2 * time.Minute)},
			}, nil
		},
	}
	server := setupTestServer(t, mock)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"aaaa", "cccc", "bbbb"}},
		{"?sort=created&order=asc", []string{"aaaa", "bbbb", "cccc"}},
		{"?sort=created&limit=2", []string{"cccc", "bbbb"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if resp.Total != 3 || resp.Count != len(tt.want) {
				t.Errorf("Expected count %d of 3, got %d of %d", len(tt.want), resp.Count, resp.Total)
			}
			for i, id := range tt.want {
				if resp.Sessions[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestSessionNotFound(t *testing.T) {
	notFound := fmt.Errorf("%w: zzzz", service.ErrSessionNotFound)
	mock := &MockGameService{
		GetSessionFunc:    func(ctx context.Context, id string) (*service.SessionInfo, error) { return nil, notFound },
		DeleteSessionFunc: func(ctx context.Context, id string) error { return notFound },
		GetBoardFunc:      func(ctx context.Context, id string) (*service.BoardState, error) { return nil, notFound },
		CheckBoardFunc:    func(ctx context.Context, id string) (*engine.CheckReport, error) { return nil, notFound },
		ResetFunc:         func(ctx context.Context, id string) (*service.SessionInfo, error) { return nil, notFound },
	}
	server := setupTestServer(t, mock)

	for _, req := range []*http.Request{
		makeRequest("GET", "/api/sessions/zzzz", nil),
		makeRequest("DELETE", "/api/sessions/zzzz", nil),
		makeRequest("GET", "/api/sessions/zzzz/board", nil),
		makeRequest("GET", "/api/sessions/zzzz/check", nil),
		makeRequest("POST", "/api/sessions/zzzz/reset", nil),
		makeRequest("GET", "/ws?session=zzzz", nil),
	} {
		w := serve(server, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", req.Method, req.URL.Path, w.Code)
		}
		var resp map[string]any
		parseResponse(t, w, &resp)
		if resp["error"] == nil {
			t.Errorf("%s %s: expected error message", req.Method, req.URL.Path)
		}
	}
}

// Game Operation Tests

func TestInteract(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		err            error
		expectedStatus int
	}{
		{"valid", map[string]int{"x": 1, "y": 2}, nil, http.StatusOK},
		{"zero coordinates", map[string]int{"x": 0, "y": 0}, nil, http.StatusOK},
		{"missing y", map[string]int{"x": 1}, nil, http.StatusBadRequest},
		{"malformed", "[]", nil, http.StatusBadRequest},
		{"out of range", map[string]int{"x": 9, "y": 9}, engine.ErrInvalidCoordinate, http.StatusBadRequest},
		{"finished", map[string]int{"x": 1, "y": 1}, service.ErrGameFinished, http.StatusConflict},
		{"corrupt board", map[string]int{"x": 1, "y": 1}, engine.ErrInvalidState, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *engine.Position
			mock := &MockGameService{
				InteractFunc: func(ctx context.Context, id string, pos engine.Position) (*service.InteractResult, error) {
					got = &pos
					if tt.err != nil {
						return nil, tt.err
					}
					return &service.InteractResult{SessionID: id, Position: pos, Board: &service.BoardState{}}, nil
				},
			}
			w := serve(setupTestServer(t, mock), makeRequest("POST", "/api/sessions/ab12/interact", tt.body))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusOK {
				want := tt.body.(map[string]int)
				if got == nil || got.X != want["x"] || got.Y != want["y"] {
					t.Errorf("Expected interaction at %v, got %v", want, got)
				}
			}
		})
	}
}

func TestDescribeCell(t *testing.T) {
	mock := &MockGameService{}
	server := setupTestServer(t, mock)

	w := serve(server, makeRequest("GET", "/api/sessions/ab12/cells/2/3", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var cell service.CellInfo
	parseResponse(t, w, &cell)
	if cell.Cell.Position != (engine.Position{X: 2, Y: 3}) {
		t.Errorf("Expected position (2,3), got %+v", cell.Cell.Position)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/ab12/cells/a/3", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-numeric coordinate, got %d", w.Code)
	}
}

// Map and Leaderboard Tests

func TestGetMap(t *testing.T) {
	mock := &MockGameService{
		GetMapFunc: func(ctx context.Context, d engine.Difficulty, id int) (*engine.MapDefinition, error) {
			if d == engine.Hard && id == 2 {
				return &engine.MapDefinition{ID: 2, Name: "Long Haul", Difficulty: d}, nil
			}
			return nil, service.ErrMapNotFound
		},
	}
	server := setupTestServer(t, mock)

	w := serve(server, makeRequest("GET", "/api/maps/hard/2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var def engine.MapDefinition
	parseResponse(t, w, &def)
	if def.Name != "Long Haul" {
		t.Errorf("Expected Long Haul, got %s", def.Name)
	}

	if w := serve(server, makeRequest("GET", "/api/maps/easy/2", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestLeaderboardQuery(t *testing.T) {
	var gotDifficulty engine.Difficulty
	var gotLimit int
	mock := &MockGameService{
		LeaderboardFunc: func(ctx context.Context, d engine.Difficulty, limit int) ([]leaderboard.Entry, error) {
			gotDifficulty, gotLimit = d, limit
			if d != "" && !d.IsValid() {
				return nil, service.ErrInvalidRequest
			}
			return []leaderboard.Entry{{ID: 0, Name: "Anna", TimeToComplete: "00:40", Seconds: 40}}, nil
		},
	}
	server := setupTestServer(t, mock)

	w := serve(server, makeRequest("GET", "/api/leaderboard?difficulty=hard&limit=3", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotDifficulty != engine.Hard || gotLimit != 3 {
		t.Errorf("Expected hard/3, got %s/%d", gotDifficulty, gotLimit)
	}
	var resp struct {
		Entries []leaderboard.Entry `json:"entries"`
	}
	parseResponse(t, w, &resp)
	if len(resp.Entries) != 1 || resp.Entries[0].TimeToComplete != "00:40" {
		t.Errorf("Unexpected entries %+v", resp.Entries)
	}

	if w := serve(server, makeRequest("GET", "/api/leaderboard?limit=many", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad limit, got %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/api/leaderboard?difficulty=medium", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad difficulty, got %d", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})

	if w := serve(server, makeRequest("GET", "/healthz", nil)); w.Code != http.StatusOK {
		t.Errorf("Expected 200 from /healthz, got %d", w.Code)
	}
	w := serve(server, makeRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("Expected Go runtime metrics in /metrics output")
	}
}

// End-to-end test over the shipped maps

func TestPlayRingOverHTTP(t *testing.T) {
	maps, err := config.NewManager("../maps")
	if err != nil {
		t.Fatalf("Failed to load maps: %v", err)
	}
	m := metrics.New()
	svc := service.NewGameService(session.NewManager(), maps,
		service.WithLeaderboard(leaderboard.NewMemoryStore()),
		service.WithMetrics(m))
	ts := httptest.NewServer(NewServer(svc, nil, WithMetrics(m)))
	defer ts.Close()

	post := func(path string, body any) (*http.Response, []byte) {
		t.Helper()
		data, _ := json.Marshal(body)
		resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return resp, raw
	}

	resp, raw := post("/api/sessions", map[string]any{"player_name": "Anna", "difficulty": "easy", "map_id": 1})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.StatusCode, raw)
	}
	var info service.SessionInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		t.Fatalf("Failed to parse session: %v", err)
	}
	if info.MapName != "Ring" {
		t.Fatalf("Expected Ring, got %s", info.MapName)
	}

	taps := []struct{ x, y, n int }{
		{1, 1, 1}, {1, 2, 1}, {2, 1, 1}, {1, 3, 3}, {2, 3, 1}, {3, 1, 5}, {3, 2, 2}, {3, 3, 4},
	}
	var last service.InteractResult
	for _, tap := range taps {
		for i := 0; i < tap.n; i++ {
			resp, raw := post("/api/sessions/"+info.ID+"/interact", map[string]int{"x": tap.x, "y": tap.y})
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("interact (%d,%d): %d %s", tap.x, tap.y, resp.StatusCode, raw)
			}
			last = service.InteractResult{}
			if err := json.Unmarshal(raw, &last); err != nil {
				t.Fatalf("Failed to parse interaction: %v", err)
			}
		}
	}
	if !last.Solved || last.Entry == nil || last.Entry.Name != "Anna" {
		t.Fatalf("Expected solved board with leaderboard entry, got %+v", last)
	}

	if resp, _ := post("/api/sessions/"+info.ID+"/interact", map[string]int{"x": 1, "y": 1}); resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409 after finish, got %d", resp.StatusCode)
	}

	res, err := http.Get(ts.URL + "/api/leaderboard?difficulty=easy")
	if err != nil {
		t.Fatalf("GET leaderboard: %v", err)
	}
	defer res.Body.Close()
	var board struct {
		Entries []leaderboard.Entry `json:"entries"`
	}
	if err := json.NewDecoder(res.Body).Decode(&board); err != nil {
		t.Fatalf("Failed to parse leaderboard: %v", err)
	}
	if len(board.Entries) != 1 || board.Entries[0].MapID != 1 {
		t.Errorf("Unexpected leaderboard %+v", board.Entries)
	}

	res, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), "railpuzzle_puzzles_solved_total") {
		t.Error("Expected solved counter in /metrics output")
	}
}
