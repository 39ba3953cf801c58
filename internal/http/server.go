// Package http is the thin transport around the ledger engine. It
// resolves the acting user, parses forms and upload files, and maps
// engine errors to status codes. No ledger logic lives here.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ledger/internal/core"
	"ledger/internal/engine"
	"ledger/internal/storage"
)

// Identity resolves request credentials to a user. The engine itself
// never sees handles or secrets, only user ids.
type Identity interface {
	GetUserByHandle(ctx context.Context, handle string) (core.User, error)
	CreateUser(ctx context.Context, handle, secret string) (core.User, error)
}

type Server struct {
	http.Server
	engine        *engine.Engine
	identity      Identity
	importMaxRows int
}

func NewServer(addr string, eng *engine.Engine, identity Identity, importMaxRows int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		engine:        eng,
		identity:      identity,
		importMaxRows: importMaxRows,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("POST /register", s.withMiddleware(s.handleRegister))

	mux.HandleFunc("GET /accounts", s.withMiddleware(s.withUser(s.handleListAccounts)))
	mux.HandleFunc("POST /accounts", s.withMiddleware(s.withUser(s.handleAddAccount)))
	mux.HandleFunc("GET /accounts/{id}", s.withMiddleware(s.withUser(s.handleViewAccount)))
	mux.HandleFunc("POST /accounts/{id}/rename", s.withMiddleware(s.withUser(s.handleRenameAccount)))
	mux.HandleFunc("DELETE /accounts/{id}", s.withMiddleware(s.withUser(s.handleDeleteAccount)))
	mux.HandleFunc("POST /accounts/{id}/transactions", s.withMiddleware(s.withUser(s.handleAddTransaction)))
	mux.HandleFunc("POST /accounts/{id}/clear", s.withMiddleware(s.withUser(s.handleClearTransactions)))
	mux.HandleFunc("POST /accounts/{id}/import", s.withMiddleware(s.withUser(s.handleImport)))
	mux.HandleFunc("GET /accounts/{id}/export", s.withMiddleware(s.withUser(s.handleExport)))

	return s
}

type userIDKey struct{}

// withMiddleware adds security headers, a request id and request
// logging to a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// withUser resolves the authenticated user for the request. The
// identity collaborator owns real authentication; this layer only
// translates its result (the X-Ledger-User header) into a user id.
func (s *Server) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := r.Header.Get("X-Ledger-User")
		if handle == "" {
			http.Error(w, "missing user", http.StatusUnauthorized)
			return
		}
		user, err := s.identity.GetUserByHandle(r.Context(), handle)
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "unknown user", http.StatusUnauthorized)
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Identity lookup failed", "error", err)
			http.Error(w, "identity lookup failed", http.StatusInternalServerError)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey{}, user.ID)
		next(w, r.WithContext(ctx))
	}
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey{}).(int64)
	return id
}

type requestIDKey struct{}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
