package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/railpuzzle/api"
	"github.com/wricardo/mcp-training/railpuzzle/game/config"
	"github.com/wricardo/mcp-training/railpuzzle/game/leaderboard"
	"github.com/wricardo/mcp-training/railpuzzle/game/service"
	"github.com/wricardo/mcp-training/railpuzzle/game/session"
)

// newTestClient runs the real REST API over the shipped maps
func newTestClient(t *testing.T) *Client {
	t.Helper()
	maps, err := config.NewManager("../../maps")
	require.NoError(t, err)

	svc := service.NewGameService(session.NewManager(), maps,
		service.WithLeaderboard(leaderboard.NewMemoryStore()))
	ts := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(ts.Close)

	return NewClient(ts.URL)
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text, result.IsError
}

func createSession(t *testing.T, c *Client) string {
	t.Helper()
	text, isErr := call(t, c.handleCreateSession, map[string]any{
		"player_name": "Anna",
		"difficulty":  "easy",
		"map_id":      float64(1),
	})
	require.False(t, isErr, text)

	first := strings.SplitN(text, "\n", 2)[0]
	id := strings.TrimPrefix(first, "Created session: ")
	require.Len(t, id, 4)
	return id
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.GetMCPServer())
}

func TestToolsAreRegistered(t *testing.T) {
	client := NewClient("http://localhost:8080")

	raw := client.GetMCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	for _, name := range []string{
		"create_session", "list_sessions", "get_session", "board_state", "interact", "reset_board",
		"check_board", "list_maps", "leaderboard", "game_instructions", "describe_cell",
	} {
		assert.Contains(t, string(data), `"name":"`+name+`"`)
	}
}

func TestAPICallErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json" {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"game already finished","code":409}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/json", nil, nil)
	assert.EqualError(t, err, "game already finished")

	err = client.apiCall(context.Background(), "GET", "/plain", nil, nil)
	assert.EqualError(t, err, "API error: 500")

	unreachable := NewClient("http://127.0.0.1:1")
	assert.Error(t, unreachable.apiCall(context.Background(), "GET", "/api", nil, nil))
}

func TestIntArg(t *testing.T) {
	args := map[string]any{"a": float64(3), "b": 2.5, "c": "7", "d": "x", "e": true}

	n, ok, err := intArg(args, "a")
	assert.Equal(t, 3, n)
	assert.True(t, ok)
	assert.NoError(t, err)

	_, _, err = intArg(args, "b")
	assert.Error(t, err)

	n, _, err = intArg(args, "c")
	assert.NoError(t, err)
	assert.Equal(t, 7, n)

	_, _, err = intArg(args, "d")
	assert.Error(t, err)
	_, _, err = intArg(args, "e")
	assert.Error(t, err)

	_, ok, err = intArg(args, "missing")
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestCreateSessionValidation(t *testing.T) {
	client := newTestClient(t)

	text, isErr := call(t, client.handleCreateSession, map[string]any{"difficulty": "easy"})
	assert.True(t, isErr)
	assert.Contains(t, text, "invalid request")

	text, isErr = call(t, client.handleCreateSession, map[string]any{"player_name": "Anna", "difficulty": "hard", "map_id": float64(42)})
	assert.True(t, isErr)
	assert.Contains(t, text, "map not found")
}

func TestSolveThroughTools(t *testing.T) {
	client := newTestClient(t)
	id := createSession(t, client)

	text, isErr := call(t, client.handleBoardState, map[string]any{"session_id": id})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Not solved, 8 cells need work")
	assert.Contains(t, text, "▲")

	text, isErr = call(t, client.handleDescribeCell, map[string]any{"session_id": id, "x": float64(1), "y": float64(1)})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Next tap: ╭ mountain_rail,down")
	assert.Contains(t, text, "unconverted_terrain")

	taps := []struct{ x, y, n int }{
		{1, 1, 1}, {1, 2, 1}, {2, 1, 1}, {1, 3, 3}, {2, 3, 1}, {3, 1, 5}, {3, 2, 2}, {3, 3, 4},
	}
	for _, tap := range taps {
		for i := 0; i < tap.n; i++ {
			text, isErr = call(t, client.handleInteract, map[string]any{
				"session_id": id, "x": float64(tap.x), "y": float64(tap.y), "intent": "close the loop",
			})
			require.False(t, isErr, text)
		}
	}
	assert.Contains(t, text, "SOLVED")
	assert.Contains(t, text, "Recorded on the easy leaderboard as #0")

	text, isErr = call(t, client.handleCheckBoard, map[string]any{"session_id": id})
	require.False(t, isErr)
	assert.Contains(t, text, "every cell is satisfied")

	text, isErr = call(t, client.handleInteract, map[string]any{"session_id": id, "x": float64(1), "y": float64(1)})
	assert.True(t, isErr)
	assert.Contains(t, text, "game already finished")

	text, isErr = call(t, client.handleReset, map[string]any{"session_id": id})
	assert.True(t, isErr)
	assert.Contains(t, text, "game already finished")

	text, isErr = call(t, client.handleLeaderboard, map[string]any{"difficulty": "easy", "limit": float64(3)})
	require.False(t, isErr, text)
	assert.Contains(t, text, "1. ")
	assert.Contains(t, text, "Anna")

	text, isErr = call(t, client.handleGetSession, map[string]any{"session_id": id})
	require.False(t, isErr)
	assert.Contains(t, text, "Status: SOLVED")
}

func TestSessionTools(t *testing.T) {
	client := newTestClient(t)
	id := createSession(t, client)

	text, isErr := call(t, client.handleListSessions, nil)
	require.False(t, isErr)
	assert.Contains(t, text, "Active Sessions (1)")
	assert.Contains(t, text, id)

	text, isErr = call(t, client.handleInteract, map[string]any{"session_id": id, "x": float64(2), "y": float64(3)})
	require.False(t, isErr, text)
	assert.Contains(t, text, "straight_rail")

	text, isErr = call(t, client.handleReset, map[string]any{"session_id": id})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Board reset successfully")
	assert.Contains(t, text, "Interactions: 0")

	text, isErr = call(t, client.handleGetSession, map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "session_id is required")

	text, isErr = call(t, client.handleGetSession, map[string]any{"session_id": "zzzz"})
	assert.True(t, isErr)
	assert.Contains(t, text, "session not found")

	text, isErr = call(t, client.handleInteract, map[string]any{"session_id": id, "x": float64(9), "y": float64(0)})
	assert.True(t, isErr)
	assert.Contains(t, text, "invalid coordinate")

	text, isErr = call(t, client.handleInteract, map[string]any{"session_id": id, "x": float64(1)})
	assert.True(t, isErr)
	assert.Contains(t, text, "x and y are required")
}

func TestCatalogTools(t *testing.T) {
	client := newTestClient(t)

	text, isErr := call(t, client.handleListMaps, nil)
	require.False(t, isErr)
	assert.Contains(t, text, "easy map 1: Ring")
	assert.Contains(t, text, "hard map 2: Long Haul")

	text, isErr = call(t, client.handleLeaderboard, nil)
	require.False(t, isErr)
	assert.Equal(t, "No completions yet.\n", text)

	text, isErr = call(t, client.handleGameInstructions, nil)
	require.False(t, isErr)
	assert.Contains(t, text, "No rail may sit in a board corner")
}
