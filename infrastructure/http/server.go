// Package http exposes the collaboration core over REST plus Server-Sent
// Events for the live update stream.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"codraft/auth"
	"codraft/domain/search"
	codrafterrors "codraft/errors"
	"codraft/services"
	"codraft/sink"
)

var validate = validator.New()

type Server struct {
	collab         services.ICollabService
	authService    services.IAuthService
	tokens         *auth.TokenManager
	log            *slog.Logger
	httpServer     *http.Server
	sinkBufferSize int
}

func NewServer(addr string, collab services.ICollabService, authService services.IAuthService,
	tokens *auth.TokenManager, sinkBufferSize int, log *slog.Logger) *Server {
	s := &Server{
		collab:         collab,
		authService:    authService,
		tokens:         tokens,
		log:            log,
		sinkBufferSize: sinkBufferSize,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(s.tokens, s.log))

		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{sessionID}", s.handleGetSession)
		r.Post("/sessions/{sessionID}/join", s.handleJoin)
		r.Post("/sessions/{sessionID}/leave", s.handleLeave)
		r.Post("/sessions/{sessionID}/deactivate", s.handleDeactivate)
		r.Post("/sessions/{sessionID}/edit", s.handleEdit)
		r.Post("/sessions/{sessionID}/cursor", s.handleCursor)
		r.Post("/sessions/{sessionID}/ask", s.handleAsk)
		r.Get("/sessions/{sessionID}/events", s.handleEvents)

		r.Get("/documents/{documentID}", s.handleGetDocument)
		r.Get("/documents/{documentID}/history", s.handleGetHistory)
		r.Get("/search", s.handleSearch)
	})

	return r
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[auth.RegisterRequest](w, r)
	if !ok {
		return
	}
	token, err := s.authService.Register(req.Email, req.Password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[auth.LoginRequest](w, r)
	if !ok {
		return
	}
	token, err := s.authService.Login(req.Email, req.Password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[createSessionRequest](w, r)
	if !ok {
		return
	}
	view, err := s.collab.CreateSession(r.Context(), services.CreateSessionRequest{
		SessionID:      req.SessionID,
		DocumentID:     req.DocumentID,
		InitialContent: req.InitialContent,
		UserID:         AuthenticatedUser(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.collab.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[joinRequest](w, r)
	if !ok {
		return
	}
	view, err := s.collab.Join(r.Context(), chi.URLParam(r, "sessionID"),
		req.UserID, req.UserName, req.UserColor)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[leaveRequest](w, r)
	if !ok {
		return
	}
	if err := s.collab.Leave(r.Context(), chi.URLParam(r, "sessionID"), req.UserID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[leaveRequest](w, r)
	if !ok {
		return
	}
	if err := s.collab.Deactivate(r.Context(), chi.URLParam(r, "sessionID"), req.UserID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[editRequest](w, r)
	if !ok {
		return
	}
	if err := s.collab.Edit(r.Context(), chi.URLParam(r, "sessionID"), req.UserID, req.Content); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCursor(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[cursorRequest](w, r)
	if !ok {
		return
	}
	s.collab.CursorActivity(chi.URLParam(r, "sessionID"), req.UserID, req.Text, req.Cursor)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[askRequest](w, r)
	if !ok {
		return
	}
	s.collab.AskAgent(chi.URLParam(r, "sessionID"), req.UserID, req.Question)
	w.WriteHeader(http.StatusAccepted)
}

// handleEvents streams session events over SSE. The connection's sink is
// registered with the fanout for the lifetime of the request.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := s.collab.Session(sessionID); err != nil {
		s.writeDomainError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	connectionID := uuid.NewString()
	stream := sink.NewStreamSink(s.sinkBufferSize)
	s.collab.Subscribe(connectionID, sessionID, stream)
	defer s.collab.Unsubscribe(connectionID, sessionID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-stream.Events:
			wire, ok := toWireEvent(e)
			if !ok {
				continue
			}
			payload, err := json.Marshal(wire)
			if err != nil {
				s.log.Error("Failed to marshal event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", wire.Type, payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	view, err := s.collab.Document(chi.URLParam(r, "documentID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	changes, err := s.collab.History(chi.URLParam(r, "documentID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}

// handleSearch accepts inline flags in the q parameter
// (q=invoice --document notes --limit 5); the ?document= parameter wins
// when both are given.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := search.Parse(r.URL.Query().Get("q"))
	if !query.IsValid() {
		writeError(w, http.StatusBadRequest, "missing search terms in query parameter q")
		return
	}
	if doc := r.URL.Query().Get("document"); doc != "" {
		query.DocumentID = doc
	}

	hits, total, err := s.collab.Search(r.Context(), query.Terms, query.DocumentID, query.Limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "hits": hits})
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := codrafterrors.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
