package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
	"github.com/wricardo/mcp-training/railpuzzle/game/i18n"
	"github.com/wricardo/mcp-training/railpuzzle/game/render"
	"github.com/wricardo/mcp-training/railpuzzle/game/service"
)

func playAction(ctx context.Context, cmd *cli.Command) error {
	// Keep the terminal free of routine service logs unless asked for
	level := cmd.String("log-level")
	if !cmd.IsSet("log-level") {
		level = "warn"
	}
	logger, err := buildLogger(level, cmd.String("log-format"), cmd.Root().ErrWriter)
	if err != nil {
		return err
	}

	text, err := i18n.Load(cmd.String("lang"))
	if err != nil {
		logger.Warn("falling back to the default language", "error", err)
		text = i18n.MustLoad(i18n.DefaultLanguage)
	}

	svc, err := initializeServices(ctx, cmd, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := cmd.Root().Writer
	renderer := render.ForWriter(out)
	if cmd.Bool("no-color") {
		renderer = render.New(false)
	}

	game := newTerminalGame(svc.game, text, renderer, os.Stdin, out, logger)
	var mapID *int
	if id := int(cmd.Int("map")); id > 0 {
		mapID = &id
	}
	return game.Run(ctx, mapID)
}

// terminalGame plays one puzzle over a line-based terminal
type terminalGame struct {
	svc    service.GameService
	text   *i18n.Catalog
	board  *render.Renderer
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger
}

func newTerminalGame(svc service.GameService, text *i18n.Catalog, board *render.Renderer, in io.Reader, out io.Writer, logger *slog.Logger) *terminalGame {
	return &terminalGame{
		svc:    svc,
		text:   text,
		board:  board,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

// Run asks for the player and difficulty, then reads taps until the puzzle is
// solved, the player quits or the input ends.
func (g *terminalGame) Run(ctx context.Context, mapID *int) error {
	g.say("WELCOME")

	info, err := g.start(ctx, mapID)
	if err != nil || info == nil {
		return err
	}

	g.say("MAP_TITLE", info.MapID, info.MapName, info.Difficulty)
	g.show(info.Board)

	for {
		line, ok := g.ask("PROMPT")
		if !ok {
			g.say("GOODBYE")
			return nil
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "q", "quit", "exit":
			g.say("GOODBYE")
			return nil
		case "h", "help", "?":
			g.say("HELP")
			fmt.Fprintln(g.out, g.board.Legend())
		case "check":
			if err := g.check(ctx, info.ID); err != nil {
				return err
			}
		case "reset":
			reset, err := g.svc.Reset(ctx, info.ID)
			if err != nil {
				return err
			}
			g.say("RESET_DONE")
			g.show(reset.Board)
		default:
			pos, err := parseCell(line)
			if err != nil {
				g.say("BAD_INPUT")
				continue
			}
			solved, err := g.tap(ctx, info, pos)
			if err != nil {
				return err
			}
			if solved {
				return nil
			}
		}
	}
}

// start creates the session, asking again while a field is missing
func (g *terminalGame) start(ctx context.Context, mapID *int) (*service.SessionInfo, error) {
	for {
		name, ok := g.ask("ENTER_NAME")
		if !ok {
			return nil, nil
		}
		difficulty, ok := g.ask("ENTER_DIFFICULTY")
		if !ok {
			return nil, nil
		}

		info, err := g.svc.CreateSession(ctx, service.CreateSessionRequest{
			PlayerName: name,
			Difficulty: engine.Difficulty(strings.ToLower(difficulty)),
			MapID:      mapID,
		})
		if errors.Is(err, service.ErrInvalidRequest) {
			g.say("MISSING_FIELDS")
			continue
		}
		return info, err
	}
}

func (g *terminalGame) tap(ctx context.Context, info *service.SessionInfo, pos engine.Position) (bool, error) {
	res, err := g.svc.Interact(ctx, info.ID, pos)
	if errors.Is(err, engine.ErrInvalidCoordinate) {
		g.say("OUT_OF_RANGE", pos.X, pos.Y)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if res.Changed {
		g.say("PLACED", pos.X, pos.Y, render.Glyph(res.After.Tile())+" "+res.After.Tile().String())
	} else {
		g.say("UNCHANGED", res.After.Tile().String())
	}
	g.show(res.Board, pos)

	if !res.Solved {
		g.say("ELAPSED", res.Elapsed)
		return false, nil
	}

	g.say("SOLVED", res.Elapsed)
	g.leaderboard(ctx, info.Difficulty)
	return true, nil
}

func (g *terminalGame) check(ctx context.Context, sessionID string) error {
	report, err := g.svc.CheckBoard(ctx, sessionID)
	if err != nil {
		return err
	}
	board, err := g.svc.GetBoard(ctx, sessionID)
	if err != nil {
		return err
	}

	issues := append([]engine.CellIssue(nil), report.Issues...)
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Position.X != issues[j].Position.X {
			return issues[i].Position.X < issues[j].Position.X
		}
		return issues[i].Position.Y < issues[j].Position.Y
	})

	marked := make([]engine.Position, len(issues))
	for i, issue := range issues {
		marked[i] = issue.Position
	}
	g.show(board, marked...)

	g.say("ISSUES", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(g.out, "  (%d,%d) %s\n", issue.Position.X, issue.Position.Y, issue.Message)
	}
	return nil
}

func (g *terminalGame) leaderboard(ctx context.Context, difficulty engine.Difficulty) {
	entries, err := g.svc.Leaderboard(ctx, difficulty, 5)
	if err != nil {
		g.logger.Warn("failed to load leaderboard", "error", err)
		return
	}

	g.say("LEADERBOARD_TITLE", difficulty)
	if len(entries) == 0 {
		g.say("LEADERBOARD_EMPTY")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(g.out, "%2d. %s  %s\n", i+1, e.TimeToComplete, e.Name)
	}
}

func (g *terminalGame) show(board *service.BoardState, marked ...engine.Position) {
	if board == nil {
		return
	}
	fmt.Fprintln(g.out)
	fmt.Fprint(g.out, g.board.Board(board.Rows, marked...))
	fmt.Fprintln(g.out)
}

func (g *terminalGame) say(key string, args ...any) {
	fmt.Fprintln(g.out, g.text.T(key, args...))
}

func (g *terminalGame) ask(key string) (string, bool) {
	fmt.Fprint(g.out, g.text.T(key))
	if !g.in.Scan() {
		fmt.Fprintln(g.out)
		return "", false
	}
	return strings.TrimSpace(g.in.Text()), true
}

// parseCell reads "row col", "row,col" or "row, col"
func parseCell(s string) (engine.Position, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) != 2 {
		return engine.Position{}, fmt.Errorf("expected two numbers, got %q", s)
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return engine.Position{}, fmt.Errorf("bad row %q", fields[0])
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return engine.Position{}, fmt.Errorf("bad column %q", fields[1])
	}
	return engine.Position{X: x, Y: y}, nil
}
