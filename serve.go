package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/railpuzzle/api"
	"github.com/wricardo/mcp-training/railpuzzle/transport/mcp"
	"github.com/wricardo/mcp-training/railpuzzle/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// serveAction runs the HTTP server with REST API, WebSocket hub and an /mcp endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	svc, err := initializeServices(ctx, cmd, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go svc.cleanupSessions(ctx, sessionCleanupInterval, sessionMaxAge)

	hub := websocket.NewHub(websocket.WithLogger(logger))
	go hub.Run(ctx)

	addr := cmd.String("addr")
	handler := newRouter(svc, hub, baseURL(addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("starting server", "app", AppName, "version", Version, "addr", addr)

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			"api", "http://"+addr+"/api",
			"websocket", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp",
			"metrics", "http://"+addr+"/metrics")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd, logger, handler)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errCh:
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("HTTP server shutdown error", "error", shutdownErr)
	}

	wg.Wait()
	logger.Info("server stopped")
	return err
}

// newRouter mounts the REST API at the root and the MCP bridge at /mcp
func newRouter(svc *services, hub *websocket.Hub, apiURL string) http.Handler {
	apiServer := api.NewServer(svc.game, hub,
		api.WithMetrics(svc.metrics),
		api.WithLogger(svc.logger),
	)
	mcpClient := mcp.NewClient(apiURL)

	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.Handle("/mcp", mcpHandler(mcpClient.GetMCPServer(), svc.logger))
	return router
}

// mcpHandler answers single JSON-RPC messages posted to /mcp
func mcpHandler(mcpServer *server.MCPServer, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		data, err := json.Marshal(response)
		if err != nil {
			logger.Error("failed to marshal MCP response", "error", err)
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// baseURL turns a listen address into a URL the MCP bridge can call back on
func baseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func runNgrok(ctx context.Context, cmd *cli.Command, logger *slog.Logger, handler http.Handler) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	logger.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", "error", err)
		}
	}()

	url := tun.URL()
	logger.Info("ngrok tunnel established",
		"url", url,
		"api", url+"/api",
		"websocket", url+"/ws?session=<session_id>",
		"mcp", url+"/mcp")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("ngrok server error", "error", err)
	}
	logger.Info("ngrok tunnel closed")
}

// mcpAction runs an MCP stdio server. It reuses the REST API given by --api when it
// answers; otherwise it starts an internal API on a random loopback port.
func mcpAction(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}

	apiURL := cmd.String("api")
	if apiReachable(apiURL) {
		logger.Info("external API server found, using it for MCP", "url", apiURL)
	} else {
		logger.Info("no external API server found, starting internal HTTP server")

		svc, err := initializeServices(ctx, cmd, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(websocket.WithLogger(logger))
		go hub.Run(ctx)

		internal := &http.Server{
			Handler: api.NewServer(svc.game, hub, api.WithMetrics(svc.metrics), api.WithLogger(logger)),
		}
		go func() {
			if err := internal.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", "error", err)
			}
		}()
		defer internal.Close()

		apiURL = "http://" + listener.Addr().String()
		logger.Info("internal HTTP server started", "url", apiURL)
	}

	mcpClient := mcp.NewClient(apiURL)
	logger.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func apiReachable(apiURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(apiURL + "/api")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}
