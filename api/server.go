package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
	"github.com/wricardo/mcp-training/railpuzzle/game/leaderboard"
	"github.com/wricardo/mcp-training/railpuzzle/game/logging"
	"github.com/wricardo/mcp-training/railpuzzle/game/metrics"
	"github.com/wricardo/mcp-training/railpuzzle/game/service"
	"github.com/wricardo/mcp-training/railpuzzle/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	metrics *metrics.Metrics
	logger  *slog.Logger
	router  *mux.Router
}

// Option configures the API server
type Option func(*Server)

// WithMetrics exposes m on /metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new API server. hub may be nil, in which case no live
// updates are pushed and /ws is not served.
func NewServer(gameService service.GameService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		logger:  logging.NewNop(),
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("", s.handleIndex).Methods("GET")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/board", s.handleGetBoard).Methods("GET")
	api.HandleFunc("/sessions/{id}/interact", s.handleInteract).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/check", s.handleCheck).Methods("GET")
	api.HandleFunc("/sessions/{id}/cells/{x}/{y}", s.handleDescribeCell).Methods("GET")

	// Maps and scores
	api.HandleFunc("/maps", s.handleListMaps).Methods("GET")
	api.HandleFunc("/maps/{difficulty}/{mapID:[0-9]+}", s.handleGetMap).Methods("GET")
	api.HandleFunc("/leaderboard", s.handleLeaderboard).Methods("GET")

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"error": message, "code": status})
}

// respondServiceError maps domain errors onto HTTP status codes
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	respondError(w, status, err.Error())
}

// StatusFor returns the HTTP status code for a service or engine error
func StatusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidCoordinate),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, leaderboard.ErrInvalidEntry):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrMapNotFound),
		errors.Is(err, service.ErrNoMaps):
		return http.StatusNotFound
	case errors.Is(err, service.ErrGameFinished):
		return http.StatusConflict
	default:
		// engine.ErrInvalidState included: an illegal cell is a server fault
		return http.StatusInternalServerError
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"name": "rail puzzle",
		"endpoints": []string{
			"POST /api/sessions",
			"GET /api/sessions",
			"GET /api/sessions/{id}",
			"DELETE /api/sessions/{id}",
			"GET /api/sessions/{id}/board",
			"POST /api/sessions/{id}/interact",
			"POST /api/sessions/{id}/reset",
			"GET /api/sessions/{id}/check",
			"GET /api/sessions/{id}/cells/{x}/{y}",
			"GET /api/maps",
			"GET /api/maps/{difficulty}/{id}",
			"GET /api/leaderboard",
		},
	})
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.service.CreateSession(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventSessionDeleted, nil)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.service.GetBoard(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, board)
}

func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		X *int `json:"x"`
		Y *int `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.X == nil || req.Y == nil {
		respondError(w, http.StatusBadRequest, "x and y are required")
		return
	}

	result, err := s.service.Interact(r.Context(), sessionID, engine.Position{X: *req.X, Y: *req.Y})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastInteraction(result)
	}

	s.logger.Info("interaction",
		"session", sessionID, "x", *req.X, "y", *req.Y,
		"tile", result.After.Tile().String(), "changed", result.Changed, "solved", result.Solved)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastBoard(sessionID, websocket.EventBoardReset, session.Board)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Board reset successfully",
		"session": session,
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.CheckBoard(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleDescribeCell(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	x, errX := strconv.Atoi(vars["x"])
	y, errY := strconv.Atoi(vars["y"])
	if errX != nil || errY != nil {
		respondError(w, http.StatusBadRequest, "x and y must be integers")
		return
	}

	cell, err := s.service.DescribeCell(r.Context(), vars["id"], engine.Position{X: x, Y: y})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cell)
}

// Map and Leaderboard Handlers

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	maps, err := s.service.ListMaps(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, maps)
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["mapID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "map id must be an integer")
		return
	}

	def, err := s.service.GetMap(r.Context(), engine.Difficulty(vars["difficulty"]), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, def)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = l
	}

	difficulty := engine.Difficulty(query.Get("difficulty"))
	entries, err := s.service.Leaderboard(r.Context(), difficulty, limit)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"difficulty": difficulty,
		"entries":    entries,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session parameter required")
		return
	}

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	// Canonical ID so broadcasts and watchers agree on the key
	s.hub.ServeWS(w, r, session.ID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
