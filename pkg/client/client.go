// Package client provides the Distance Matrix HTTP transport with quota
// gating, pacing, optional caching, and error classification.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/traslados/commute-ranker/pkg/cache"
	"github.com/traslados/commute-ranker/pkg/logging"
	"github.com/traslados/commute-ranker/pkg/matrix"
	"github.com/traslados/commute-ranker/pkg/ratelimit"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// Prometheus metrics for Distance Matrix client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matrix_requests_total",
		Help: "Total Distance Matrix requests by outcome status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matrix_request_duration_seconds",
		Help:    "Distance Matrix request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matrix_errors_total",
		Help: "Total Distance Matrix transport errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of transport errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Client is the Distance Matrix client.
type Client struct {
	httpClient *http.Client
	quota      *ratelimit.Tracker
	pacer      *ratelimit.Pacer
	cache      *cache.Manager
	config     Config
	retry      RetryConfig
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// Timeout bounds a single HTTP attempt
	Timeout time.Duration

	// Retry (MaxAttempts 1 disables retries)
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Optional collaborators, nil disables the feature
	Cache *cache.Manager
	Quota *ratelimit.Tracker
	Pacer *ratelimit.Pacer
}

// DefaultConfig returns a configuration with retries, caching, quota
// tracking and pacing disabled.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:      userAgent,
		Timeout:        30 * time.Second,
		MaxAttempts:    1,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

// New creates a new Distance Matrix client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %v)", cfg.Timeout)
	}

	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("max_attempts must be >= 1 (got %d)", cfg.MaxAttempts)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		quota:  cfg.Quota,
		pacer:  cfg.Pacer,
		cache:  cfg.Cache,
		config: cfg,
		retry:  retryConfigFor(cfg),
		logger: logging.NewLogger(logging.ComponentMatrixClient),
	}, nil
}

// Fetch performs one Distance Matrix call and decodes the response.
// A non-OK top-level status is not an error here; callers inspect
// Response.Status.
func (c *Client) Fetch(ctx context.Context, req matrix.Request) (*matrix.Response, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Check cache (hits are served even during a quota cooldown)
	var cacheKey cache.Key
	if c.cache != nil {
		cacheKey = cache.KeyFor(req)
		if resp := c.fromCache(ctx, cacheKey); resp != nil {
			requestsTotal.WithLabelValues("cache_hit").Inc()
			return resp, nil
		}
	}

	// Step 2: Check quota cooldown
	if c.quota != nil {
		allowed, err := c.quota.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Quota check failed")
			return nil, fmt.Errorf("quota check: %w", err)
		}
		if !allowed {
			requestsTotal.WithLabelValues("quota_blocked").Inc()
			return nil, ErrQuotaBlocked
		}
	}

	// Step 3: Pace
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	// Step 4: Execute HTTP request with retry logic
	c.logger.Debug().
		Str("url", req.Redacted()).
		Msg("Executing Distance Matrix request")

	var body []byte
	err := retryWithBackoff(ctx, c.retry, func() error {
		var attemptErr error
		body, attemptErr = c.do(ctx, req)
		return attemptErr
	}, func(err error) ErrorClass {
		var upErr *UpstreamError
		if errors.As(err, &upErr) {
			return upErr.Class
		}
		return ""
	})
	if err != nil {
		return nil, err
	}

	// Step 5: Decode
	resp, err := matrix.Decode(body)
	if err != nil {
		requestsTotal.WithLabelValues("malformed").Inc()
		c.logger.Error().
			Err(err).
			Str("url", req.Redacted()).
			Msg("Malformed Distance Matrix response")
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	requestsTotal.WithLabelValues(resp.Status).Inc()

	// Step 6: Record quota statuses
	if resp.QuotaExceeded() && c.quota != nil {
		if err := c.quota.RecordLimit(ctx, resp.Status); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to record quota status")
		}
	}

	// Step 7: Cache successful responses
	if resp.OK() && c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, cache.NewEntry(body, c.cache.TTL())); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Dur("ttl", c.cache.TTL()).
				Msg("Cached response")
		}
	}

	return resp, nil
}

// do executes a single HTTP attempt and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, req matrix.Request) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// A cancelled caller is not a network failure and is never retried
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error().Err(err).Msg("HTTP request failed")
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues("network_error").Inc()
		return nil, &UpstreamError{Class: ErrorClassNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Class: ErrorClassNetwork, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errClass := c.classifyError(resp, nil)
		errorsTotal.WithLabelValues(string(errClass)).Inc()
		requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Distance Matrix request error")

		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Class:      errClass,
			Body:       body,
			Err:        errors.New(resp.Status),
		}
	}

	return body, nil
}

// fromCache returns the cached response for key, or nil.
func (c *Client) fromCache(ctx context.Context, key cache.Key) *matrix.Response {
	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Msg("Cache get error")
		}
		return nil
	}

	resp, err := matrix.Decode(entry.Payload)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Discarding undecodable cache entry")
		_ = c.cache.Delete(ctx, key)
		return nil
	}

	c.logger.Debug().
		Dur("age", entry.Age()).
		Msg("Serving response from cache")
	return resp
}

// retryConfigFor starts from DefaultRetryConfig and applies the attempt and
// backoff settings of cfg. Zero backoffs keep the defaults.
func retryConfigFor(cfg Config) RetryConfig {
	rc := DefaultRetryConfig()
	rc.MaxAttempts = cfg.MaxAttempts
	if cfg.InitialBackoff > 0 {
		rc.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		rc.MaxBackoff = cfg.MaxBackoff
	}
	return rc
}

// classifyError categorizes an error for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
