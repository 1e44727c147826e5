// Package server exposes the chat service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/hybridchat/hchat/chat"
	"github.com/ZanzyTHEbar/hybridchat/hchat/session"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 64 << 10

// ChatService is the application service behind the HTTP handlers.
type ChatService interface {
	Chat(ctx context.Context, req chat.Request) (*chat.Reply, error)
	History(ctx context.Context, sessionID string) ([]session.Turn, error)
}

// Config holds listener settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server serves the chat API.
type Server struct {
	cfg     Config
	svc     ChatService
	logger  zerolog.Logger
	handler http.Handler
}

// New creates a server and registers its routes.
func New(cfg Config, svc ChatService, logger zerolog.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:    cfg,
		svc:    svc,
		logger: logger.With().Str("component", "http").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /sessions/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.handler = s.logRequests(mux)
	return s
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address until ctx is canceled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

type chatRequest struct {
	SessionID     string  `json:"session_id"`
	Message       *string `json:"message"`
	TeachResponse string  `json:"teach_response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == nil {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.svc.Chat(r.Context(), chat.Request{
		SessionID:     req.SessionID,
		Message:       *req.Message,
		TeachResponse: req.TeachResponse,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("Chat request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

type historyResponse struct {
	SessionID string         `json:"session_id"`
	History   []session.Turn `json:"history"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	history, err := s.svc.History(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("History request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if history == nil {
		history = []session.Turn{}
	}

	writeJSON(w, http.StatusOK, historyResponse{SessionID: id, History: history})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}
