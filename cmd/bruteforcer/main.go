// Command bruteforcer plays the rail puzzle against a running server. It creates or
// resumes a session over the REST API, searches a tap plan for the board with an
// exhaustive solver and replays it until the server reports the puzzle solved.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
	"github.com/wricardo/mcp-training/railpuzzle/game/logging"
	"github.com/wricardo/mcp-training/railpuzzle/game/service"
)

// Client talks to the REST API for one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client plays
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) CreateSession(ctx context.Context, player string, difficulty engine.Difficulty, mapID int) (*service.SessionInfo, error) {
	req := service.CreateSessionRequest{PlayerName: player, Difficulty: difficulty}
	if mapID > 0 {
		req.MapID = &mapID
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = session.ID
	return &session, nil
}

// Resume switches the client to an existing session
func (c *Client) Resume(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	c.sessionID = sessionID
	return c.GetSession(ctx)
}

func (c *Client) GetSession(ctx context.Context) (*service.SessionInfo, error) {
	var session service.SessionInfo
	if err := c.do(ctx, http.MethodGet, c.sessionPath(""), nil, &session); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

func (c *Client) Reset(ctx context.Context) (*service.SessionInfo, error) {
	var resp struct {
		Message string              `json:"message"`
		Session service.SessionInfo `json:"session"`
	}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return &resp.Session, nil
}

func (c *Client) Interact(ctx context.Context, pos engine.Position) (*service.InteractResult, error) {
	req := map[string]int{"x": pos.X, "y": pos.Y}

	var result service.InteractResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/interact"), req, &result); err != nil {
		return nil, fmt.Errorf("interact (%d,%d): %w", pos.X, pos.Y, err)
	}
	return &result, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s - %s", resp.Status, errResp.Error)
		}
		return fmt.Errorf("%s - %s", resp.Status, strings.TrimSpace(string(data)))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// boardFromState rebuilds an engine board from a REST board snapshot
func boardFromState(state *service.BoardState) (*engine.Board, error) {
	if state == nil {
		return nil, errors.New("session has no board")
	}
	layout := make(engine.BoardLayout)
	for _, row := range state.Rows {
		for _, c := range row {
			if !c.Tile().IsDefault() {
				layout[c.Position] = c.Tile()
			}
		}
	}
	return engine.NewBoard(state.Size, layout)
}

// Player drives one session to a solved board
type Player struct {
	client *Client
	logger *slog.Logger
	delay  time.Duration
}

// Play solves the session's current board and replays the plan. It returns the
// final interaction result, which carries the leaderboard entry.
func (p *Player) Play(ctx context.Context, session *service.SessionInfo) (*service.InteractResult, error) {
	board, err := boardFromState(session.Board)
	if err != nil {
		return nil, err
	}

	solver, err := NewSolver(board)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	plan, err := solver.Solve(board)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, t := range plan {
		total += t.Count
	}
	p.logger.Info("plan found",
		"cells", len(plan), "taps", total, "boards", solver.Visited(), "took", time.Since(start).Round(time.Millisecond))

	var last *service.InteractResult
	for _, t := range plan {
		for i := 0; i < t.Count; i++ {
			res, err := p.client.Interact(ctx, t.Position)
			if err != nil {
				return last, err
			}
			last = res
			p.logger.Debug("tap", "x", t.Position.X, "y", t.Position.Y, "after", res.After.Tile().String())

			if res.Solved {
				return res, nil
			}
			if p.delay > 0 {
				select {
				case <-ctx.Done():
					return last, ctx.Err()
				case <-time.After(p.delay):
				}
			}
		}
	}
	return last, fmt.Errorf("plan finished but the server did not report a solved board")
}

func main() {
	cmd := &cli.Command{
		Name:  "bruteforcer",
		Usage: "solve a rail puzzle session through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL", Sources: cli.EnvVars("RAILS_API_URL")},
			&cli.StringFlag{Name: "player", Value: "bruteforcer", Usage: "player name for new sessions"},
			&cli.StringFlag{Name: "difficulty", Value: string(engine.Easy), Usage: "easy or hard"},
			&cli.IntFlag{Name: "map", Usage: "map id, a random map when unset"},
			&cli.StringFlag{Name: "continue", Usage: "resume playing an existing session by ID"},
			&cli.IntFlag{Name: "delay", Usage: "delay between taps in milliseconds"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := "info"
	if cmd.Bool("v") {
		level = "debug"
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	logger := logging.New(lvl)

	client := NewClient(cmd.String("url"))
	logger.Info("connecting to game server", "url", cmd.String("url"))

	var session *service.SessionInfo
	if id := cmd.String("continue"); id != "" {
		session, err = client.Resume(ctx, id)
		if err != nil {
			return err
		}
		logger.Info("resuming session", "session", id)
		if session.Solved {
			logger.Info("session already solved", "time", session.Elapsed)
			return nil
		}
		// Solve from the starting board
		if session, err = client.Reset(ctx); err != nil {
			return err
		}
	} else {
		session, err = client.CreateSession(ctx, cmd.String("player"),
			engine.Difficulty(cmd.String("difficulty")), int(cmd.Int("map")))
		if err != nil {
			return err
		}
		logger.Info("session created", "session", session.ID, "map", session.MapName, "difficulty", session.Difficulty)
	}

	player := &Player{
		client: client,
		logger: logger,
		delay:  time.Duration(cmd.Int("delay")) * time.Millisecond,
	}
	result, err := player.Play(ctx, session)
	if err != nil {
		return fmt.Errorf("session %s: %w", client.SessionID(), err)
	}

	logger.Info("🎉 solved", "session", client.SessionID(), "time", result.Elapsed)
	if result.Entry != nil {
		logger.Info("leaderboard entry", "id", result.Entry.ID, "time", result.Entry.TimeToComplete)
	}
	return nil
}
