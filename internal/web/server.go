// MIT License
//
// Copyright (c) 2025 Terragon Labs
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/terragonlabs/gatewayz/internal/github"
	"github.com/terragonlabs/gatewayz/internal/githubapp"
	"github.com/terragonlabs/gatewayz/internal/tracker"
)

// Server serves the read-only GatewayZ HTTP API
type Server struct {
	Router *chi.Mux

	addr   string
	client github.Client
	app    *githubapp.App
	store  *tracker.Store
	server *http.Server
	logger *zap.Logger
}

// NewServer creates a new API server. The app may be nil when no GitHub App
// credentials are configured; installation endpoints then report 503.
func NewServer(addr string, client github.Client, app *githubapp.App, store *tracker.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		addr:   addr,
		client: client,
		app:    app,
		store:  store,
		logger: logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.healthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/prs", s.listTracked)
		r.Get("/prs/{owner}/{repo}/{number}", s.getPullRequest)
		r.Get("/prs/{owner}/{repo}/{number}/feedback", s.getFeedback)
		r.Get("/app/installed/{owner}/{repo}", s.getInstalled)
	})

	s.Router = r
}

// requestID tags each request with a UUID and logs its outcome
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("handled request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// Start starts the API server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Router,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "gatewayz-api",
		"timestamp": time.Now().UTC(),
	})
}

// listTracked returns every tracked pull request with its last known snapshot
func (s *Server) listTracked(w http.ResponseWriter, r *http.Request) {
	entries := s.store.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   entries,
		"count":  len(entries),
	})
}

// getPullRequest fetches the pull request on demand, polling until GitHub has
// computed its mergeable state
func (s *Server) getPullRequest(w http.ResponseWriter, r *http.Request) {
	owner, repo, number, ok := s.prParams(w, r)
	if !ok {
		return
	}

	pr, err := s.client.GetPullRequestWithMergeablePolling(r.Context(), owner, repo, number)
	if err != nil {
		s.prError(w, err, owner, repo, number)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   pr,
	})
}

// getFeedback returns aggregated reviews and comments for the pull request
func (s *Server) getFeedback(w http.ResponseWriter, r *http.Request) {
	owner, repo, number, ok := s.prParams(w, r)
	if !ok {
		return
	}

	feedback, err := s.client.GetPRFeedback(r.Context(), owner, repo, number)
	if err != nil {
		s.prError(w, err, owner, repo, number)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   feedback,
	})
}

// getInstalled reports whether the GitHub App is installed on the repository
func (s *Server) getInstalled(w http.ResponseWriter, r *http.Request) {
	if s.app == nil {
		writeError(w, http.StatusServiceUnavailable, "GitHub App not configured")
		return
	}

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	installed, err := s.app.IsInstalled(r.Context(), owner, repo)
	if err != nil {
		s.logger.Error("installation check failed",
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Error(err))
		writeError(w, http.StatusBadGateway, "installation check failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"installed": installed,
	})
}

// prParams extracts and validates path parameters, writing a 400 on failure
func (s *Server) prParams(w http.ResponseWriter, r *http.Request) (owner, repo string, number int, ok bool) {
	owner = chi.URLParam(r, "owner")
	repo = chi.URLParam(r, "repo")
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, "invalid pull request number")
		return "", "", 0, false
	}
	return owner, repo, number, true
}

func (s *Server) prError(w http.ResponseWriter, err error, owner, repo string, number int) {
	if github.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "pull request not found")
		return
	}
	s.logger.Error("GitHub request failed",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.Int("number", number),
		zap.Error(err))
	writeError(w, http.StatusBadGateway, "GitHub request failed")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"status": "error",
		"error":  msg,
	})
}
