// Package server exposes the conversational backend over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"brother-yield/internal/logger"
	"brother-yield/internal/portfolio"
	"brother-yield/internal/yields"
)

// turnHandler runs one chat turn through the agent pipeline.
type turnHandler interface {
	HandleTurn(ctx context.Context, sessionID, userText string) (string, error)
}

// portfolioRecorder validates, fetches and records a wallet portfolio.
type portfolioRecorder interface {
	FetchAndRecord(ctx context.Context, sessionID, walletAddress string) (string, error)
}

// sessionStore is the conversation store surface the HTTP layer needs.
type sessionStore interface {
	CreateSession(sessionID string)
	DeleteSession(sessionID string)
}

// yieldsSource serves the cached yields snapshot.
type yieldsSource interface {
	Get() yields.Snapshot
}

// Server is the HTTP boundary. One instance per process.
type Server struct {
	pipeline  turnHandler
	portfolio portfolioRecorder
	sessions  sessionStore
	yields    yieldsSource
	server    *http.Server
	addr      string
	startTime time.Time
}

func New(addr string, pipeline turnHandler, p portfolioRecorder, sessions sessionStore, y yieldsSource) *Server {
	return &Server{
		pipeline:  pipeline,
		portfolio: p,
		sessions:  sessions,
		yields:    y,
		addr:      addr,
		startTime: time.Now(),
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
}

type portfolioRequest struct {
	SessionID     string `json:"session_id"`
	WalletAddress string `json:"wallet_address"`
}

type agentResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	AgentResponse string `json:"agent_response"`
}

type sessionResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/session", s.handleCreateSession)  // POST: open a conversation
	mux.HandleFunc("/api/session/", s.handleDeleteSession) // DELETE /api/session/{id}
	mux.HandleFunc("/api/chat", s.handleChat)              // POST: one agent turn
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)    // POST: record wallet holdings
	mux.HandleFunc("/api/yields", s.handleYields)          // GET: cached yields snapshot
	mux.HandleFunc("/api/status", s.handleStatus)          // Health check endpoint

	return mux
}

// Start blocks serving HTTP until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L().Infow("starting backend server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := uuid.NewString()
	s.sessions.CreateSession(sessionID)
	logger.L().Infow("session created", "session", sessionID)

	writeJSON(w, http.StatusOK, sessionResponse{
		Status:    "success",
		Message:   "Session created",
		SessionID: sessionID,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := strings.TrimPrefix(r.URL.Path, "/api/session/")
	if sessionID == "" {
		http.Error(w, "Session ID is required in path /api/session/{id}", http.StatusBadRequest)
		return
	}

	s.sessions.DeleteSession(sessionID)
	logger.L().Infow("session deleted", "session", sessionID)

	writeJSON(w, http.StatusOK, sessionResponse{
		Status:  "success",
		Message: "Session deleted",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, agentResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}
	if req.SessionID == "" || req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, agentResponse{
			Status:  "error",
			Message: "session_id and prompt are required",
		})
		return
	}

	reply, err := s.pipeline.HandleTurn(r.Context(), req.SessionID, req.Prompt)
	if err != nil {
		logger.L().Errorw("chat turn failed", "session", req.SessionID, "err", err)
		writeJSON(w, http.StatusInternalServerError, agentResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, agentResponse{
		Status:        "success",
		Message:       "Agent successfully processed prompt",
		AgentResponse: reply,
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, agentResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}

	ack, err := s.portfolio.FetchAndRecord(r.Context(), req.SessionID, req.WalletAddress)
	if err != nil {
		var vErr *portfolio.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, agentResponse{
				Status:  "error",
				Message: vErr.Error(),
			})
			return
		}
		logger.L().Errorw("portfolio fetch failed",
			"session", req.SessionID, "wallet", req.WalletAddress, "err", err)
		writeJSON(w, http.StatusInternalServerError, agentResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, agentResponse{
		Status:        "success",
		Message:       "Portfolio recorded",
		AgentResponse: ack,
	})
}

func (s *Server) handleYields(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.yields.Get()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"updated_at": snap.UpdatedAt,
		"yields":     snap.Yields,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Errorw("failed to encode response", "err", err)
	}
}
