// Command railpuzzle runs the rail puzzle game.
//
// Commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket updates,
//     Prometheus metrics and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" plays a puzzle in the terminal
//  4. "validate" checks map catalogs
//  5. "leaderboard" prints the fastest completions
//
// Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/railpuzzle/game/config"
	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
	"github.com/wricardo/mcp-training/railpuzzle/game/leaderboard"
	"github.com/wricardo/mcp-training/railpuzzle/game/logging"
	"github.com/wricardo/mcp-training/railpuzzle/game/metrics"
	"github.com/wricardo/mcp-training/railpuzzle/game/service"
	"github.com/wricardo/mcp-training/railpuzzle/game/session"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Rail Puzzle Server"
)

const (
	sessionCleanupInterval = time.Hour
	sessionMaxAge          = 24 * time.Hour
)

func main() {
	// A missing .env file is fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Flags declared on the root are visible to every command.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "railpuzzle",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   "localhost:8080",
				Usage:   "HTTP listen address",
				Sources: cli.EnvVars("RAILS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "maps",
				Value:   "maps",
				Usage:   "directory containing map catalogs",
				Sources: cli.EnvVars("MAPS_DIR"),
			},
			&cli.StringFlag{
				Name:    "leaderboard-file",
				Usage:   "persist the leaderboard to this JSON file",
				Sources: cli.EnvVars("LEADERBOARD_FILE"),
			},
			&cli.StringFlag{
				Name:    "redis",
				Usage:   "keep the leaderboard in redis at this address (takes precedence over --leaderboard-file)",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "redis password",
				Sources: cli.EnvVars("REDIS_PASSWORD"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "text or json",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server with REST API, WebSocket and MCP endpoint",
				Flags:  ngrokFlags(),
				Action: serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run an MCP stdio server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api",
						Value:   "http://localhost:8080",
						Usage:   "REST API to reuse when it is reachable",
						Sources: cli.EnvVars("RAILS_API_URL"),
					},
				},
				Action: mcpAction,
			},
			{
				Name:  "play",
				Usage: "play a puzzle in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "lang",
						Usage:   "interface language (en, hu)",
						Sources: cli.EnvVars("RAILS_LANG", "LANG"),
					},
					&cli.IntFlag{
						Name:  "map",
						Usage: "map id, a random map when unset",
					},
					&cli.BoolFlag{
						Name:  "no-color",
						Usage: "disable coloured output",
					},
				},
				Action: playAction,
			},
			{
				Name:      "validate",
				Usage:     "validate map catalogs",
				ArgsUsage: "[file or directory]",
				Action:    validateAction,
			},
			{
				Name:  "leaderboard",
				Usage: "print the fastest completions",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "difficulty",
						Usage: "easy or hard, every difficulty when unset",
					},
					&cli.IntFlag{
						Name:  "limit",
						Value: 10,
						Usage: "number of entries",
					},
				},
				Action: leaderboardAction,
			},
		},
	}
}

func ngrokFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "expose the server through an ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "custom ngrok domain",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}
}

// services holds everything a command needs to run games
type services struct {
	logger   *slog.Logger
	maps     *config.Manager
	sessions *session.Manager
	scores   leaderboard.Store
	metrics  *metrics.Metrics
	game     service.GameService
	closers  []io.Closer
}

// newLogger builds the logger selected by --log-level and --log-format
func newLogger(cmd *cli.Command, w io.Writer) (*slog.Logger, error) {
	return buildLogger(cmd.String("log-level"), cmd.String("log-format"), w)
}

func buildLogger(levelName, formatName string, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(w, format, level), nil
}

// initializeServices wires the map catalog, sessions, leaderboard and game service
func initializeServices(ctx context.Context, cmd *cli.Command, logger *slog.Logger) (*services, error) {
	maps, err := config.NewManager(cmd.String("maps"), config.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create map catalog: %w", err)
	}

	s := &services{
		logger:   logger,
		maps:     maps,
		sessions: session.NewManager(),
		metrics:  metrics.New(),
	}

	scores, closer, err := openLeaderboard(ctx, cmd, logger)
	if err != nil {
		return nil, err
	}
	s.scores = scores
	if closer != nil {
		s.closers = append(s.closers, closer)
	}

	s.game = service.NewGameService(s.sessions, maps,
		service.WithLeaderboard(scores),
		service.WithMetrics(s.metrics),
		service.WithLogger(logger),
	)
	return s, nil
}

// openLeaderboard picks redis, a JSON file or memory, in that order
func openLeaderboard(ctx context.Context, cmd *cli.Command, logger *slog.Logger) (leaderboard.Store, io.Closer, error) {
	if addr := cmd.String("redis"); addr != "" {
		store := leaderboard.NewRedisStore(addr, cmd.String("redis-password"), 0)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
		}
		logger.Info("leaderboard stored in redis", "addr", addr)
		return store, store, nil
	}

	if path := cmd.String("leaderboard-file"); path != "" {
		store, err := leaderboard.NewFileStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open leaderboard file: %w", err)
		}
		logger.Info("leaderboard stored in file", "path", store.Path())
		return store, nil, nil
	}

	logger.Debug("leaderboard kept in memory")
	return leaderboard.NewMemoryStore(), nil, nil
}

// Close releases the leaderboard backend
func (s *services) Close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Warn("failed to close resource", "error", err)
		}
	}
}

// cleanupSessions periodically removes sessions that have not been accessed within maxAge
func (s *services) cleanupSessions(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.game.CleanupSessions(ctx, maxAge)
		}
	}
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		path = cmd.String("maps")
	}
	return runValidate(cmd.Root().Writer, path)
}

// runValidate prints one line per catalog and fails when any of them is invalid
func runValidate(w io.Writer, path string) error {
	results, err := config.ValidateCatalog(path)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no map catalogs found in %s", path)
	}

	invalid := 0
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(w, "✓ %s\n", r.File)
			for _, line := range r.Info {
				fmt.Fprintf(w, "    %s\n", line)
			}
			continue
		}
		invalid++
		fmt.Fprintf(w, "✗ %s\n", r.File)
		for _, line := range r.Errors {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d catalogs are invalid", invalid, len(results))
	}
	return nil
}

func leaderboardAction(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	scores, closer, err := openLeaderboard(ctx, cmd, logger)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	difficulty := engine.Difficulty(cmd.String("difficulty"))
	return printLeaderboard(ctx, cmd.Root().Writer, scores, difficulty, int(cmd.Int("limit")))
}

// printLeaderboard writes the ranked entries of one difficulty, or of all of them
func printLeaderboard(ctx context.Context, w io.Writer, scores leaderboard.Store, difficulty engine.Difficulty, limit int) error {
	if difficulty != "" && !difficulty.IsValid() {
		return fmt.Errorf("%w: unknown difficulty %q", service.ErrInvalidRequest, difficulty)
	}

	entries, err := scores.Top(ctx, difficulty, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No completions yet.")
		return nil
	}

	for i, e := range entries {
		fmt.Fprintf(w, "%2d. %s  %-20s %s map %d\n", i+1, e.TimeToComplete, e.Name, e.Difficulty, e.MapID)
	}
	return nil
}

