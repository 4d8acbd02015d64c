package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
	"github.com/wricardo/mcp-training/railpuzzle/game/leaderboard"
	"github.com/wricardo/mcp-training/railpuzzle/game/render"
	"github.com/wricardo/mcp-training/railpuzzle/game/service"
)

const (
	serverName    = "Rail Puzzle"
	serverVersion = "1.0.0"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Rail Puzzle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Turn every open cell, mountain and bridge on a 5x5 (easy) or 7x7 (hard) board into rail
so that all rails form connected track. Each interaction on a cell places or rotates one
piece. The timer starts when the session is created.

AVAILABLE TOOLS:
- create_session: Start a game (player_name, difficulty, optional map_id)
- list_sessions / get_session: Inspect sessions
- board_state: Draw the board with problem cells marked
- interact: Tap one cell (x = row, y = column)
- reset_board: Restore the starting board (the timer keeps running)
- check_board: List every cell that is not yet satisfied
- describe_cell: Explain one cell and what the next tap turns it into
- list_maps / leaderboard: Catalog and fastest completions
- game_instructions: Full rules`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))

	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Start a new game for a player on a random or chosen map"),
		mcp.WithString("player_name", mcp.Required(), mcp.Description("Name recorded on the leaderboard")),
		mcp.WithString("difficulty", mcp.Required(), mcp.Description("easy (5x5) or hard (7x7)"), mcp.Enum("easy", "hard")),
		mcp.WithNumber("map_id", mcp.Description("Map ID within the difficulty (optional, random when omitted)")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active game sessions"),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get details of a specific session: player, map, timer and verdict"),
		sessionID,
	), c.handleGetSession)

	c.mcpServer.AddTool(mcp.NewTool("board_state",
		mcp.WithDescription("Draw the current board; cells that are not satisfied are listed below it"),
		sessionID,
	), c.handleBoardState)

	c.mcpServer.AddTool(mcp.NewTool("interact",
		mcp.WithDescription("Tap one cell: place a rail on open ground, rotate a placed rail, or convert a mountain or bridge"),
		sessionID,
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Row, 0 at the top")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Column, 0 at the left")),
		mcp.WithString("intent", mcp.Description("Why you are tapping this cell (optional)")),
	), c.handleInteract)

	c.mcpServer.AddTool(mcp.NewTool("reset_board",
		mcp.WithDescription("Restore the starting board; the timer keeps running"),
		sessionID,
	), c.handleReset)

	c.mcpServer.AddTool(mcp.NewTool("check_board",
		mcp.WithDescription("List every cell that keeps the board from being solved, with the reason"),
		sessionID,
	), c.handleCheckBoard)

	c.mcpServer.AddTool(mcp.NewTool("describe_cell",
		mcp.WithDescription("Explain one cell: terrain, orientation, open ends and what the next tap does"),
		sessionID,
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Row, 0 at the top")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Column, 0 at the left")),
	), c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.NewTool("list_maps",
		mcp.WithDescription("List the maps of the catalog"),
	), c.handleListMaps)

	c.mcpServer.AddTool(mcp.NewTool("leaderboard",
		mcp.WithDescription("Show the fastest completions"),
		mcp.WithString("difficulty", mcp.Description("easy or hard (optional, both when omitted)")),
		mcp.WithNumber("limit", mcp.Description("Number of entries (default 5)")),
	), c.handleLeaderboard)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Get the complete rules of the rail puzzle"),
	), c.handleGameInstructions)
}

// GetMCPServer returns the MCP server instance
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return map[string]any{}
	}
	return args
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// intArg reads a whole number; JSON numbers arrive as float64
func intArg(args map[string]any, key string) (int, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, true, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, true, fmt.Errorf("%s must be a whole number, got %q", key, v)
		}
		return n, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a whole number", key)
	}
}

func requiredSession(args map[string]any) (string, *mcp.CallToolResult) {
	id := stringArg(args, "session_id")
	if id == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return url.PathEscape(id), nil
}

func requiredPosition(args map[string]any) (engine.Position, *mcp.CallToolResult) {
	x, okX, errX := intArg(args, "x")
	y, okY, errY := intArg(args, "y")
	switch {
	case errX != nil:
		return engine.Position{}, mcp.NewToolResultError(errX.Error())
	case errY != nil:
		return engine.Position{}, mcp.NewToolResultError(errY.Error())
	case !okX || !okY:
		return engine.Position{}, mcp.NewToolResultError("x and y are required")
	}
	return engine.Position{X: x, Y: y}, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	req := service.CreateSessionRequest{
		PlayerName: stringArg(args, "player_name"),
		Difficulty: engine.Difficulty(stringArg(args, "difficulty")),
	}
	mapID, ok, err := intArg(args, "map_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		req.MapID = &mapID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", req, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created session: " + session.ID + "\n\n" + formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "playing"
		if s.Solved {
			status = "solved"
		}
		fmt.Fprintf(&sb, "- %s: %s on %s map %d (%s, %s, created %s)\n",
			s.ID, s.PlayerName, s.Difficulty, s.MapID, status, s.Elapsed, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requiredSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+id, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requiredSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var board service.BoardState
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+id+"/board", nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var report engine.CheckReport
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+id+"/check", nil, &report); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(&board, &report)), nil
}

func (c *Client) handleInteract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, errResult := requiredSession(args)
	if errResult != nil {
		return errResult, nil
	}
	pos, errResult := requiredPosition(args)
	if errResult != nil {
		return errResult, nil
	}

	// intent is rubber duck debugging for the caller; the API does not need it
	var result service.InteractResult
	body := map[string]int{"x": pos.X, "y": pos.Y}
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+id+"/interact", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatInteractResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requiredSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var response struct {
		Message string              `json:"message"`
		Session service.SessionInfo `json:"session"`
	}
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+id+"/reset", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message + "\n\n" + formatSessionInfo(&response.Session)), nil
}

func (c *Client) handleCheckBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requiredSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var report engine.CheckReport
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+id+"/check", nil, &report); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatReport(&report)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, errResult := requiredSession(args)
	if errResult != nil {
		return errResult, nil
	}
	pos, errResult := requiredPosition(args)
	if errResult != nil {
		return errResult, nil
	}

	var info service.CellInfo
	path := fmt.Sprintf("/api/sessions/%s/cells/%d/%d", id, pos.X, pos.Y)
	if err := c.apiCall(ctx, "GET", path, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCellInfo(&info)), nil
}

func (c *Client) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var maps []service.MapInfo
	if err := c.apiCall(ctx, "GET", "/api/maps", nil, &maps); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Available Maps:\n\n")
	for _, m := range maps {
		fmt.Fprintf(&sb, "• %s map %d: %s\n  Grid: %dx%d, mountains: %d, bridges: %d, oases: %d, open cells: %d\n\n",
			m.Difficulty, m.ID, m.Name, m.Size, m.Size, m.Mountains, m.Bridges, m.Oases, m.OpenCells)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	query := url.Values{}
	if d := stringArg(args, "difficulty"); d != "" {
		query.Set("difficulty", d)
	}
	limit, ok, err := intArg(args, "limit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		query.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/leaderboard"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var response struct {
		Entries []leaderboard.Entry `json:"entries"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatEntries(response.Entries)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Rail Puzzle - Complete Instructions

GAME OBJECTIVE:
Build one railway through every buildable cell of the board. The board is solved when
no open ground, mountain or bridge is left unconverted and every rail end meets a rail
that connects back.

COORDINATES:
• x is the row, 0 at the top; y is the column, 0 at the left
• Boards are 5x5 (easy) or 7x7 (hard)

TILES:
• ·  open ground: place rails here
• ≈  oasis: fixed obstacle, never changes and never needs a rail
• ▲  mountain: converts once into a mountain rail with a fixed bend
• ‖ =  bridge: converts once into a bridge rail with a fixed direction
• │ ─  straight rail (vertical, horizontal)
• ┐ ┘ └ ┌  curve rail (left, up, right, down)
• ╮ ╯ ╰ ╭  mountain rail
• ║ ═  bridge rail

INTERACTION:
Each tap changes one cell:
• Open ground becomes a vertical straight rail
• Straight and curve rails cycle: vertical → horizontal → left → up → right → down → vertical
• Mountains and bridges convert into their rail and keep their orientation
• Oases, mountain rails and bridge rails do not change

BEND NAMES:
• left connects west and south, up connects west and north
• right connects east and north, down connects east and south

RULES CHECKED:
• Every open cell, mountain and bridge must be converted
• No rail may sit in a board corner
• Straight and bridge rails on the top or bottom row must be horizontal; on the left or right column they must be vertical
• No rail end may point off the board
• Every rail end must meet a neighbour that connects back

TIMER AND LEADERBOARD:
• The clock starts when the session is created and stops on the first solved board
• Reset restores the starting board but keeps the clock running
• Solved games are ranked by completion time; a solved session accepts no more taps

TOOLS:
• board_state to see the board, check_board for what is still wrong
• describe_cell to learn what the next tap will do before you tap`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session: %s\nPlayer: %s\nMap: %s %d (%s)\nTime: %s\n",
		session.ID, session.PlayerName, session.Difficulty, session.MapID, session.MapName, session.Elapsed)
	if session.Solved {
		sb.WriteString("Status: SOLVED\n")
		if session.Entry != nil {
			fmt.Fprintf(&sb, "Leaderboard entry #%d: %s\n", session.Entry.ID, session.Entry.TimeToComplete)
		}
	} else {
		sb.WriteString("Status: in progress\n")
	}
	if session.Board != nil {
		sb.WriteString("\n")
		sb.WriteString(render.Text(session.Board.Rows))
		fmt.Fprintf(&sb, "Interactions: %d, cells left to convert: %d\n", session.Board.Interactions, session.Board.Remaining)
	}
	return sb.String()
}

func formatBoard(board *service.BoardState, report *engine.CheckReport) string {
	marked := make([]engine.Position, 0, len(report.Issues))
	for _, issue := range report.Issues {
		marked = append(marked, issue.Position)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Board %dx%d (%s), interactions: %d\n\n", board.Size, board.Size, board.Difficulty, board.Interactions)
	sb.WriteString(render.Text(board.Rows, marked...))
	sb.WriteString("\n")
	sb.WriteString(render.New(false).Legend())
	sb.WriteString("\n\n")
	sb.WriteString(formatReport(report))
	return sb.String()
}

func formatReport(report *engine.CheckReport) string {
	if report.Solved {
		return "🎉 SOLVED: every cell is satisfied.\n"
	}

	issues := append([]engine.CellIssue(nil), report.Issues...)
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Position.X != issues[j].Position.X {
			return issues[i].Position.X < issues[j].Position.X
		}
		return issues[i].Position.Y < issues[j].Position.Y
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "Not solved, %d cells need work:\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(&sb, "- (%d,%d) %s: %s\n", issue.Position.X, issue.Position.Y, issue.Reason, issue.Message)
	}
	return sb.String()
}

func formatInteractResult(result *service.InteractResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", result.Message)
	fmt.Fprintf(&sb, "(%d,%d): %s → %s\n", result.Position.X, result.Position.Y,
		result.Before.Tile(), result.After.Tile())
	fmt.Fprintf(&sb, "Time: %s\n", result.Elapsed)
	if result.Solved {
		sb.WriteString("🎉 SOLVED!\n")
		if result.Entry != nil {
			fmt.Fprintf(&sb, "Recorded on the %s leaderboard as #%d with %s\n",
				result.Entry.Difficulty, result.Entry.ID, result.Entry.TimeToComplete)
		}
	}
	if result.Board != nil {
		sb.WriteString("\n")
		sb.WriteString(render.Text(result.Board.Rows, result.Position))
	}
	return sb.String()
}

func formatCellInfo(info *service.CellInfo) string {
	var sb strings.Builder
	c := info.Cell
	fmt.Fprintf(&sb, "Cell (%d,%d): %s %s\n", c.Position.X, c.Position.Y, render.Glyph(c.Tile()), c.Tile())
	if len(info.OpenDirections) > 0 {
		fmt.Fprintf(&sb, "Open ends: %s\n", strings.Join(info.OpenDirections, ", "))
	}
	if info.Next == c.Tile() {
		sb.WriteString("Next tap: no change\n")
	} else {
		fmt.Fprintf(&sb, "Next tap: %s %s\n", render.Glyph(info.Next), info.Next)
	}
	if len(info.Options) > 0 {
		names := make([]string, len(info.Options))
		for i, o := range info.Options {
			names[i] = string(o)
		}
		fmt.Fprintf(&sb, "Rails allowed here: %s\n", strings.Join(names, ", "))
	}
	if info.Issue != nil {
		fmt.Fprintf(&sb, "Problem: %s (%s)\n", info.Issue.Message, info.Issue.Reason)
	} else {
		sb.WriteString("Status: satisfied\n")
	}
	return sb.String()
}

func formatEntries(entries []leaderboard.Entry) string {
	if len(entries) == 0 {
		return "No completions yet.\n"
	}
	var sb strings.Builder
	sb.WriteString("Leaderboard:\n")
	for i, e := range entries {
		fmt.Fprintf(&sb, "%d. %s  %s  (%s map %d)\n", i+1, e.TimeToComplete, e.Name, e.Difficulty, e.MapID)
	}
	return sb.String()
}
