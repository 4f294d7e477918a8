// Package server exposes the asset transfer indexing API over HTTP, forwarding
// requests to an upstream fetcher and caching the responses in memory.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jrh3k5/transfer-explorer/internal/orchestrator"
	"github.com/jrh3k5/transfer-explorer/internal/transaction"
)

// Config controls how the server listens, caches and answers cross-origin requests.
type Config struct {
	Listen          string
	UpstreamTimeout time.Duration
	CacheTTL        time.Duration
	CacheSize       int // zero or less disables the response cache
	AllowedOrigins  []string
	AllowedMethods  []string
	AllowedHeaders  []string
}

// Server represents the HTTP transfer proxy.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	fetcher    orchestrator.Fetcher
	cache      *expirable.LRU[string, *transaction.Page]
	config     Config
	listener   net.Listener
}

// New creates a server that answers transfer requests using the given fetcher.
func New(fetcher orchestrator.Fetcher, config Config) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:     mux,
		fetcher: fetcher,
		config:  config,
	}

	if config.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, *transaction.Page](config.CacheSize, nil, config.CacheTTL)
	}

	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:              config.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second, //nolint:mnd
		WriteTimeout:      60 * time.Second, //nolint:mnd
		IdleTimeout:       60 * time.Second, //nolint:mnd
	}

	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.handleMetrics())

	s.mux.HandleFunc("POST /transactions/{address}", s.instrument("transactions", s.handleTransfers))
	s.mux.HandleFunc("POST /get_transactions/{address}", s.instrument("get_transactions", s.handleTransfers))
}

// Handler returns the routes wrapped in the request id and CORS middleware.
func (s *Server) Handler() http.Handler {
	return withRequestID(withCORS(s.mux, s.config))
}

// Start binds the listen address and serves in the background.
// It returns once the listener is ready.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	s.listener = listener

	go func() {
		slog.Info(fmt.Sprintf("Transfer proxy listening on %s", listener.Addr()))

		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Transfer proxy stopped unexpectedly", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

// Shutdown gracefully shuts down the HTTP server.
// Waits for active connections to close or context to timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.InfoContext(ctx, "Transfer proxy shutting down")

	return s.httpServer.Shutdown(ctx)
}
