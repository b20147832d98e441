// Package server provides the HTTP API for Shogo.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/shogo/internal/config"
	"github.com/hyperjump/shogo/internal/index"
	"github.com/hyperjump/shogo/internal/match"
	"github.com/hyperjump/shogo/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP server for the Shogo API.
type Server struct {
	mu      sync.RWMutex
	idx     *index.Index
	matcher *match.BatchMatcher

	store  storage.Store
	cfg    *config.Config
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies. The store may be
// nil when index caching is disabled.
func NewServer(
	idx *index.Index,
	matcher *match.BatchMatcher,
	store storage.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		idx:     idx,
		matcher: matcher,
		store:   store,
		cfg:     cfg,
		logger:  logger,
	}
}

// Swap replaces the served index. It is called by the bibliography watcher
// after a reload; in-flight requests finish against the old index.
func (s *Server) Swap(idx *index.Index) {
	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()
	s.logger.Info("index swapped", zap.Int("records", idx.Len()))
}

func (s *Server) current() *index.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/match", s.handleMatch)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
