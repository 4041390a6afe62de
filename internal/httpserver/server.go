package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"kinokod/internal/config"
	"kinokod/internal/gateway"
)

// Server is the HTTP server that exposes the gateway to the messaging
// front-end.
type Server struct {
	cfg        *config.Config
	gw         *gateway.Gateway
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates a new HTTP server around the given gateway.
func NewServer(cfg *config.Config, gw *gateway.Gateway, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		gw:     gw,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/command", s.handleCommand)
	mux.HandleFunc("POST /api/text", s.handleText)
	mux.HandleFunc("POST /api/category", s.handleCategory)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      withLogging(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type commandRequest struct {
	Name   string   `json:"name"`
	Args   []string `json:"args,omitempty"`
	UserID int64    `json:"user_id"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "name is required")
		return
	}

	reply, err := s.gw.OnCommand(r.Context(), req.Name, req.Args, req.UserID)
	if err != nil {
		s.logger.Error("command failed", "name", req.Name, "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "command failed")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

type textRequest struct {
	Text   string `json:"text"`
	UserID int64  `json:"user_id"`
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}

	reply, err := s.gw.OnFreeText(r.Context(), req.Text, req.UserID)
	if err != nil {
		s.logger.Error("free text failed", "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "message handling failed")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

type categoryRequest struct {
	Category string `json:"category"`
	UserID   int64  `json:"user_id"`
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "category is required")
		return
	}

	reply, err := s.gw.OnCategorySelect(r.Context(), req.Category, req.UserID)
	if err != nil {
		s.logger.Error("category select failed", "category", req.Category, "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "category selection failed")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "InvalidRequest", "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]string{
		"error":   errType,
		"message": message,
	})
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
