package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wricardo/decodoku/game/config"
	"github.com/wricardo/decodoku/game/engine"
	"github.com/wricardo/decodoku/game/service"
	"github.com/wricardo/decodoku/game/session"
	"github.com/wricardo/decodoku/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. A non-nil hub receives every state
// change and feeds client input back into the service.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	if hub != nil {
		hub.SetInputHandler(s.handleClientInput)
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Puzzle input
	api.HandleFunc("/sessions/{id}/press", s.handlePress).Methods("POST")
	api.HandleFunc("/sessions/{id}/advance", s.handleAdvance).Methods("POST")
	api.HandleFunc("/sessions/{id}/step", s.handleStep).Methods("POST")
	api.HandleFunc("/sessions/{id}/new-episode", s.handleNewEpisode).Methods("POST")

	// Puzzle state
	api.HandleFunc("/sessions/{id}/state", s.handleGetPuzzleState).Methods("GET")
	api.HandleFunc("/sessions/{id}/graph", s.handleGetGraph).Methods("GET")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidConfig), errors.Is(err, config.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
		Seed       *int64 `json:"seed,omitempty"`
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	info, err := s.service.CreateSession(r.Context(), configID, req.Seed)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	log.Printf("Created session %s (config=%s)", info.ID, info.ConfigName)
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
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

	limit := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Puzzle Input Handlers

func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var pos engine.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Press(r.Context(), sessionID, pos)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.publish(sessionID, result)
	fmt.Printf("[PRESS] session=%s (%d,%d) moved=%t remaining=%d status=%q\n",
		sessionID, pos.X, pos.Y, result.Moved, result.Remaining, result.Message)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Advance(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.publish(sessionID, result)
	fmt.Printf("[ADVANCE] session=%s resolved=%t remaining=%d status=%q\n",
		sessionID, result.Resolved, result.Remaining, result.Message)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var input engine.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Step(r.Context(), sessionID, input)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.publish(sessionID, result)
	fmt.Printf("[STEP] session=%s held=%d advance=%t moved=%t remaining=%d\n",
		sessionID, len(input.Pressed), input.Advance, result.Moved, result.Remaining)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleNewEpisode(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.NewEpisode(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.publish(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

// publish pushes the new state and its events to WebSocket clients
func (s *Server) publish(sessionID string, result *service.StepResult) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToSession(sessionID, result.State)
	for _, ev := range result.Events {
		s.hub.BroadcastEvent(sessionID, ev.Type, ev)
	}
}

// handleClientInput runs input that arrived over a WebSocket connection
func (s *Server) handleClientInput(sessionID string, msg websocket.ClientMessage) {
	ctx := context.Background()

	var (
		result *service.StepResult
		err    error
	)
	switch msg.Action {
	case websocket.ActionPress:
		result, err = s.service.Press(ctx, sessionID, engine.Position{X: msg.X, Y: msg.Y})
	case websocket.ActionAdvance:
		result, err = s.service.Advance(ctx, sessionID)
	case websocket.ActionStep:
		result, err = s.service.Step(ctx, sessionID, engine.Input{Pressed: msg.Pressed, Advance: msg.Advance})
	case websocket.ActionNewEpisode:
		result, err = s.service.NewEpisode(ctx, sessionID)
	default:
		log.Printf("WebSocket session %s sent unknown action %q", sessionID, msg.Action)
		return
	}
	if err != nil {
		log.Printf("WebSocket %s for session %s failed: %v", msg.Action, sessionID, err)
		s.hub.BroadcastEvent(sessionID, "error", err.Error())
		return
	}

	s.publish(sessionID, result)
}

// Puzzle State Handlers

func (s *Server) handleGetPuzzleState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetPuzzleState(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	query := r.URL.Query()
	opts := service.GraphOptions{
		Original: boolParam(query.Get("original"), false),
		Clusters: boolParam(query.Get("clusters"), true),
	}

	view, err := s.service.RenderGraph(r.Context(), sessionID, opts)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// boolParam parses a query flag, falling back to def when it is missing or malformed
func boolParam(v string, def bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	cfg, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var puzzleConfig engine.PuzzleConfig
	if err := json.NewDecoder(r.Body).Decode(&puzzleConfig); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if puzzleConfig.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), puzzleConfig.Name, &puzzleConfig); err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": puzzleConfig.Name,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "WebSocket not available", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
