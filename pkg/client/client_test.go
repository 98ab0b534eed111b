package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/traslados/commute-ranker/internal/testutil"
	"github.com/traslados/commute-ranker/pkg/cache"
	"github.com/traslados/commute-ranker/pkg/matrix"
	"github.com/traslados/commute-ranker/pkg/ratelimit"
)

const testUserAgent = "TestApp/1.0.0 (test@example.com)"

// setupTestRedis starts an in-memory Redis.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client
}

func newTestClient(t *testing.T, mutate func(cfg *Config)) *Client {
	t.Helper()

	cfg := DefaultConfig(testUserAgent)
	cfg.Timeout = 5 * time.Second
	cfg.InitialBackoff = 5 * time.Millisecond
	cfg.MaxBackoff = 20 * time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func buildRequest(mock *testutil.MockMatrix, destinations ...string) matrix.Request {
	b := matrix.Builder{BaseURL: mock.Endpoint(), Language: "es"}
	return b.Build("Origin", destinations, matrix.ModeDriving, "test-key")
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			config:      DefaultConfig(testUserAgent),
			expectError: false,
		},
		{
			name: "empty user agent",
			config: Config{
				Timeout:     time.Second,
				MaxAttempts: 1,
			},
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name: "zero timeout",
			config: Config{
				UserAgent:   testUserAgent,
				MaxAttempts: 1,
			},
			expectError: true,
			errorMsg:    "timeout must be > 0 (got 0s)",
		},
		{
			name: "zero attempts",
			config: Config{
				UserAgent: testUserAgent,
				Timeout:   time.Second,
			},
			expectError: true,
			errorMsg:    "max_attempts must be >= 1 (got 0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
					return
				}
				if client == nil {
					t.Error("Client is nil")
				}
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(testUserAgent)

	if cfg.UserAgent != testUserAgent {
		t.Errorf("UserAgent = %q, want %q", cfg.UserAgent, testUserAgent)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxAttempts != 1 {
		t.Errorf("MaxAttempts = %d, want 1 (retries disabled)", cfg.MaxAttempts)
	}
	if cfg.Cache != nil || cfg.Quota != nil || cfg.Pacer != nil {
		t.Error("optional collaborators should be nil by default")
	}
}

func TestClassifyError(t *testing.T) {
	client := &Client{logger: zerolog.Nop()}

	tests := []struct {
		name       string
		statusCode int
		err        error
		expected   ErrorClass
	}{
		{"network error", 0, errors.New("connection reset"), ErrorClassNetwork},
		{"client error 400", 400, nil, ErrorClassClient},
		{"client error 403", 403, nil, ErrorClassClient},
		{"rate limit 429", 429, nil, ErrorClassRateLimit},
		{"server error 500", 500, nil, ErrorClassServer},
		{"server error 503", 503, nil, ErrorClassServer},
		{"success 200", 200, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.statusCode > 0 {
				resp = &http.Response{StatusCode: tt.statusCode}
			}

			if result := client.classifyError(resp, tt.err); result != tt.expected {
				t.Errorf("classifyError() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestFetch_Success(t *testing.T) {
	mock := testutil.NewMockMatrix()
	defer mock.Close()
	mock.SetRoute("Lorca", testutil.Route{DurationSeconds: 1200, DistanceMeters: 15000})
	mock.SetRoute("Yecla", testutil.Route{DurationSeconds: 600, DistanceMeters: 8000})

	client := newTestClient(t, nil)

	resp, err := client.Fetch(context.Background(), buildRequest(mock, "Lorca", "Yecla"))
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	if !resp.OK() {
		t.Fatalf("Status = %q, want OK", resp.Status)
	}
	elems := resp.Rows[0].Elements
	if len(elems) != 2 {
		t.Fatalf("len(Elements) = %d, want 2", len(elems))
	}
	if elems[0].Duration.Value != 1200 || elems[1].Distance.Value != 8000 {
		t.Errorf("Elements = %+v", elems)
	}

	if mock.LastUserAgent != testUserAgent {
		t.Errorf("User-Agent = %q, want %q", mock.LastUserAgent, testUserAgent)
	}
	q := mock.GetRequest(0)
	if q.Get("destinations") != "Lorca|Yecla" {
		t.Errorf("destinations = %q", q.Get("destinations"))
	}
	if q.Get("key") != "test-key" {
		t.Errorf("key = %q", q.Get("key"))
	}
}

func TestFetch_TopLevelStatusIsNotAnError(t *testing.T) {
	mock := testutil.NewMockMatrix()
	defer mock.Close()
	mock.Enqueue(testutil.NewStatusResponse("REQUEST_DENIED", "The provided API key is invalid."))

	client := newTestClient(t, nil)

	resp, err := client.Fetch(context.Background(), buildRequest(mock, "X"))
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if resp.Status != "REQUEST_DENIED" {
		t.Errorf("Status = %q, want REQUEST_DENIED", resp.Status)
	}
	if resp.ErrorMessage == "" {
		t.Error("ErrorMessage should be decoded")
	}
	if len(resp.Raw) == 0 {
		t.Error("Raw payload should be kept")
	}
}

func TestFetch_HTTPErrors(t *testing.T) {
	tests := []struct {
		name          string
		response      testutil.MockResponse
		maxAttempts   int
		wantClass     ErrorClass
		wantRequests  int
		wantExhausted bool
	}{
		{
			name:         "server error without retries",
			response:     testutil.NewServerErrorResponse(),
			maxAttempts:  1,
			wantClass:    ErrorClassServer,
			wantRequests: 1,
		},
		{
			name:          "server error with retries",
			response:      testutil.NewServerErrorResponse(),
			maxAttempts:   3,
			wantClass:     ErrorClassServer,
			wantRequests:  3,
			wantExhausted: true,
		},
		{
			name:          "rate limited with retries",
			response:      testutil.NewRateLimitResponse(),
			maxAttempts:   2,
			wantClass:     ErrorClassRateLimit,
			wantRequests:  2,
			wantExhausted: true,
		},
		{
			name:         "client error is not retried",
			response:     testutil.MockResponse{StatusCode: http.StatusForbidden, Body: "forbidden"},
			maxAttempts:  3,
			wantClass:    ErrorClassClient,
			wantRequests: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockMatrix()
			defer mock.Close()
			for i := 0; i < tt.maxAttempts; i++ {
				mock.Enqueue(tt.response)
			}

			client := newTestClient(t, func(cfg *Config) { cfg.MaxAttempts = tt.maxAttempts })

			resp, err := client.Fetch(context.Background(), buildRequest(mock, "X"))
			if resp != nil {
				t.Error("response should be nil on HTTP error")
			}

			var upErr *UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("error = %v, want *UpstreamError", err)
			}
			if upErr.Class != tt.wantClass {
				t.Errorf("Class = %q, want %q", upErr.Class, tt.wantClass)
			}
			if upErr.StatusCode != tt.response.StatusCode {
				t.Errorf("StatusCode = %d, want %d", upErr.StatusCode, tt.response.StatusCode)
			}
			if string(upErr.Body) != tt.response.Body {
				t.Errorf("Body = %q, want %q", upErr.Body, tt.response.Body)
			}
			if errors.Is(err, ErrRetryExhausted) != tt.wantExhausted {
				t.Errorf("ErrRetryExhausted = %v, want %v", errors.Is(err, ErrRetryExhausted), tt.wantExhausted)
			}
			if got := mock.GetRequestCount(); got != tt.wantRequests {
				t.Errorf("requests = %d, want %d", got, tt.wantRequests)
			}
		})
	}
}

func TestFetch_RetryRecovers(t *testing.T) {
	mock := testutil.NewMockMatrix()
	defer mock.Close()
	mock.SetRoute("X", testutil.Route{DurationSeconds: 60, DistanceMeters: 500})
	mock.Enqueue(testutil.NewServerErrorResponse())

	client := newTestClient(t, func(cfg *Config) { cfg.MaxAttempts = 3 })

	resp, err := client.Fetch(context.Background(), buildRequest(mock, "X"))
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if !resp.OK() {
		t.Errorf("Status = %q, want OK", resp.Status)
	}
	if got := mock.GetRequestCount(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestFetch_Malformed(t *testing.T) {
	mock := testutil.NewMockMatrix()
	defer mock.Close()
	mock.Enqueue(testutil.NewMalformedResponse())

	client := newTestClient(t, nil)

	_, err := client.Fetch(context.Background(), buildRequest(mock, "X"))
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestFetch_NetworkError(t *testing.T) {
	mock := testutil.NewMockMatrix()
	req := buildRequest(mock, "X")
	mock.Close()

	client := newTestClient(t, nil)

	_, err := client.Fetch(context.Background(), req)
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if upErr.Class != ErrorClassNetwork {
		t.Errorf("Class = %q, want network", upErr.Class)
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	mock := testutil.NewMockMatrix()
	defer mock.Close()
	mock.Enqueue(testutil.MockResponse{StatusCode: http.StatusOK, Body: `{"status":"OK","rows":[]}`, Delay: 500 * time.Millisecond})

	client := newTestClient(t, func(cfg *Config) { cfg.MaxAttempts = 3 })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, buildRequest(mock, "X"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Error("cancelled request should not be retried")
	}
}

func TestFetch_CacheHit(t *testing.T) {
	mock := testutil.NewMockMatrix()
	defer mock.Close()
	mock.SetRoute("X", testutil.Route{DurationSeconds: 60, DistanceMeters: 500})

	redisClient := setupTestRedis(t)
	client := newTestClient(t, func(cfg *Config) {
		cfg.Cache = cache.NewManager(redisClient, time.Hour)
	})
	ctx := context.Background()

	first, err := client.Fetch(ctx, buildRequest(mock, "X"))
	if err != nil {
		t.Fatalf("first Fetch() failed: %v", err)
	}

	// A different credential shares the cached entry.
	b := matrix.Builder{BaseURL: mock.Endpoint(), Language: "es"}
	second, err := client.Fetch(ctx, b.Build("Origin", []string{"X"}, matrix.ModeDriving, "other-key"))
	if err != nil {
		t.Fatalf("second Fetch() failed: %v", err)
	}

	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("requests = %d, want 1 (second served from cache)", got)
	}
	if second.Rows[0].Elements[0] != first.Rows[0].Elements[0] {
		t.Errorf("cached element = %+v, want %+v", second.Rows[0].Elements[0], first.Rows[0].Elements[0])
	}
}

func TestFetch_ErrorStatusNotCached(t *testing.T) {
	mock := testutil.NewMockMatrix()
	defer mock.Close()
	mock.SetRoute("X", testutil.Route{DurationSeconds: 60, DistanceMeters: 500})
	mock.Enqueue(testutil.NewStatusResponse("UNKNOWN_ERROR", ""))

	redisClient := setupTestRedis(t)
	client := newTestClient(t, func(cfg *Config) {
		cfg.Cache = cache.NewManager(redisClient, time.Hour)
	})
	ctx := context.Background()

	first, err := client.Fetch(ctx, buildRequest(mock, "X"))
	if err != nil {
		t.Fatalf("first Fetch() failed: %v", err)
	}
	if first.OK() {
		t.Fatal("first response should carry UNKNOWN_ERROR")
	}

	second, err := client.Fetch(ctx, buildRequest(mock, "X"))
	if err != nil {
		t.Fatalf("second Fetch() failed: %v", err)
	}
	if !second.OK() {
		t.Errorf("second Status = %q, want OK from upstream", second.Status)
	}
	if got := mock.GetRequestCount(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestFetch_QuotaCooldown(t *testing.T) {
	mock := testutil.NewMockMatrix()
	defer mock.Close()
	mock.Enqueue(testutil.NewStatusResponse("OVER_QUERY_LIMIT", "You have exceeded your rate-limit for this API."))

	redisClient := setupTestRedis(t)
	client := newTestClient(t, func(cfg *Config) {
		cfg.Quota = ratelimit.NewTracker(redisClient, zerolog.Nop(), time.Minute)
	})
	ctx := context.Background()

	resp, err := client.Fetch(ctx, buildRequest(mock, "X"))
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if resp.Status != "OVER_QUERY_LIMIT" {
		t.Fatalf("Status = %q, want OVER_QUERY_LIMIT", resp.Status)
	}

	_, err = client.Fetch(ctx, buildRequest(mock, "X"))
	if !errors.Is(err, ErrQuotaBlocked) {
		t.Errorf("error = %v, want ErrQuotaBlocked", err)
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("requests = %d, want 1 (second blocked locally)", got)
	}
}

func TestFetch_CacheServedDuringCooldown(t *testing.T) {
	mock := testutil.NewMockMatrix()
	defer mock.Close()
	mock.SetRoute("X", testutil.Route{DurationSeconds: 60, DistanceMeters: 500})
	mock.SetRoute("Y", testutil.Route{DurationSeconds: 90, DistanceMeters: 700})

	redisClient := setupTestRedis(t)
	tracker := ratelimit.NewTracker(redisClient, zerolog.Nop(), time.Minute)
	client := newTestClient(t, func(cfg *Config) {
		cfg.Cache = cache.NewManager(redisClient, time.Hour)
		cfg.Quota = tracker
	})
	ctx := context.Background()

	if _, err := client.Fetch(ctx, buildRequest(mock, "X")); err != nil {
		t.Fatalf("first Fetch() failed: %v", err)
	}
	if err := tracker.RecordLimit(ctx, "OVER_QUERY_LIMIT"); err != nil {
		t.Fatalf("RecordLimit() failed: %v", err)
	}

	resp, err := client.Fetch(ctx, buildRequest(mock, "X"))
	if err != nil {
		t.Fatalf("cached Fetch() during cooldown failed: %v", err)
	}
	if !resp.OK() {
		t.Errorf("Status = %q, want OK", resp.Status)
	}

	_, err = client.Fetch(ctx, buildRequest(mock, "Y"))
	if !errors.Is(err, ErrQuotaBlocked) {
		t.Errorf("uncached Fetch() error = %v, want ErrQuotaBlocked", err)
	}

	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
}

func TestNew_RetryConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
		want   RetryConfig
	}{
		{
			name:   "config overrides attempts and backoffs",
			mutate: func(cfg *Config) { cfg.MaxAttempts = 4 },
			want: RetryConfig{
				MaxAttempts:       4,
				InitialBackoff:    5 * time.Millisecond,
				MaxBackoff:        20 * time.Millisecond,
				BackoffMultiplier: DefaultRetryConfig().BackoffMultiplier,
			},
		},
		{
			name: "zero backoffs keep defaults",
			mutate: func(cfg *Config) {
				cfg.InitialBackoff = 0
				cfg.MaxBackoff = 0
			},
			want: RetryConfig{
				MaxAttempts:       1,
				InitialBackoff:    DefaultRetryConfig().InitialBackoff,
				MaxBackoff:        DefaultRetryConfig().MaxBackoff,
				BackoffMultiplier: DefaultRetryConfig().BackoffMultiplier,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.mutate)
			if client.retry != tt.want {
				t.Errorf("retry = %+v, want %+v", client.retry, tt.want)
			}
		})
	}
}

func TestFetch_Paced(t *testing.T) {
	mock := testutil.NewMockMatrix()
	defer mock.Close()
	mock.SetRoute("X", testutil.Route{DurationSeconds: 60, DistanceMeters: 500})

	client := newTestClient(t, func(cfg *Config) {
		cfg.Pacer = ratelimit.NewPacer(20, 1)
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.Fetch(context.Background(), buildRequest(mock, "X")); err != nil {
			t.Fatalf("Fetch() failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("3 paced requests took %v, want >= ~100ms", elapsed)
	}
}

func TestSetHTTPClient(t *testing.T) {
	client := newTestClient(t, nil)
	custom := &http.Client{Timeout: time.Second}

	client.SetHTTPClient(custom)

	if client.httpClient != custom {
		t.Error("SetHTTPClient did not replace the HTTP client")
	}
}
