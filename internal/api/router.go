// Package api exposes the ranking engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/traslados/commute-ranker/pkg/logging"
	"github.com/traslados/commute-ranker/pkg/matrix"
	"github.com/traslados/commute-ranker/pkg/metrics"
	"github.com/traslados/commute-ranker/pkg/ranking"
)

// Ranker is the engine behind POST /rankings. *ranking.Ranker implements it.
type Ranker interface {
	FetchAndRank(ctx context.Context, q ranking.Query) (*ranking.Result, error)
}

// Options configures the HTTP handlers.
type Options struct {
	Ranker Ranker

	// APIKey is the Distance Matrix credential used for every run.
	APIKey string

	// Defaults applied when a request leaves the field empty.
	DefaultMode          matrix.Mode
	DefaultAddressSuffix string
	BatchSize            int

	// RequestTimeout bounds one ranking run. Zero means no extra bound.
	RequestTimeout time.Duration

	// Redis is pinged by /ready. Nil when cache and quota are disabled.
	Redis *redis.Client
}

// Server holds the handler dependencies.
type Server struct {
	opts   Options
	logger zerolog.Logger
}

// NewServer creates the API server.
func NewServer(opts Options) *Server {
	if opts.DefaultMode == "" {
		opts.DefaultMode = matrix.ModeDriving
	}
	return &Server{
		opts:   opts,
		logger: logging.NewLogger(logging.ComponentAPI),
	}
}

// Routes returns the HTTP handler with all routes and middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ready", s.readyHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /rankings", s.rankingsHandler)
	mux.HandleFunc("GET /regions", s.regionsHandler)

	var h http.Handler = mux
	h = recoveryMiddleware(s.logger)(h)
	h = loggingMiddleware(s.logger)(h)
	h = requestIDMiddleware(h)
	return h
}

// NewRouter wires handlers with their dependencies and returns an http.Handler.
func NewRouter(opts Options) http.Handler {
	return NewServer(opts).Routes()
}
