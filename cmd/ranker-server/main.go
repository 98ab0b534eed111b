package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/traslados/commute-ranker/internal/api"
	"github.com/traslados/commute-ranker/internal/config"
	"github.com/traslados/commute-ranker/pkg/cache"
	"github.com/traslados/commute-ranker/pkg/client"
	"github.com/traslados/commute-ranker/pkg/logging"
	"github.com/traslados/commute-ranker/pkg/matrix"
	"github.com/traslados/commute-ranker/pkg/ranking"
	"github.com/traslados/commute-ranker/pkg/ratelimit"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (overrides RANKER_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.Setup(logging.Config{
		Level:   logging.LogLevel(cfg.LogLevel),
		Pretty:  cfg.LogPretty,
		Output:  os.Stderr,
		Service: "ranker-server",
	})

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("user_agent", cfg.UserAgent).
			Str("default_mode", cfg.DefaultMode).
			Bool("cache", a.redis != nil).
			Float64("requests_per_second", cfg.RequestsPerSecond).
			Msg("Starting ranker server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info().Str("signal", sig.String()).Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logger.Info().Msg("Server stopped")
}

// app holds the wired service and the resources it owns.
type app struct {
	handler http.Handler
	redis   *redis.Client
}

// newApp wires the transport, ranker and HTTP handlers from cfg. Redis is
// connected only when cfg.RedisURL is set.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	clientCfg := client.DefaultConfig(cfg.UserAgent)
	clientCfg.Timeout = cfg.HTTPTimeout
	clientCfg.MaxAttempts = cfg.MaxAttempts
	clientCfg.InitialBackoff = cfg.InitialBackoff
	clientCfg.Pacer = ratelimit.NewPacer(cfg.RequestsPerSecond, 1)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}

		a.redis = rdb
		clientCfg.Cache = cache.NewManager(rdb, cfg.CacheTTL)
		clientCfg.Quota = ratelimit.NewTracker(rdb, logging.NewLogger(logging.ComponentQuota), cfg.QuotaCooldown)
	}

	matrixClient, err := client.New(clientCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create matrix client: %w", err)
	}

	ranker := ranking.New(matrixClient, matrix.Builder{
		BaseURL:  cfg.BaseURL,
		Language: cfg.Language,
	})

	a.handler = api.NewRouter(api.Options{
		Ranker:               ranker,
		APIKey:               cfg.APIKey,
		DefaultMode:          cfg.Mode(),
		DefaultAddressSuffix: cfg.DefaultAddressSuffix,
		BatchSize:            cfg.BatchSize,
		RequestTimeout:       cfg.RequestTimeout,
		Redis:                a.redis,
	})

	return a, nil
}

// Close releases the Redis connection, if any.
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
}
