// Package testutil provides testing utilities for the Distance Matrix client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MatrixPath is the path the mock serves, mirroring the real API.
const MatrixPath = "/maps/api/distancematrix/json"

// Route is the travel result the mock returns for one destination.
type Route struct {
	DurationSeconds int
	DistanceMeters  int

	// Status overrides the element status when non-empty (e.g. "NOT_FOUND").
	Status string
}

// MockResponse is a scripted reply that bypasses route resolution.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockMatrix is a configurable mock Distance Matrix server for testing.
//
// By default it answers every request with one element per destination,
// resolving destinations through the configured routes. Unknown destinations
// get a NOT_FOUND element. Scripted responses queued with Enqueue are served
// first, in order.
type MockMatrix struct {
	server *httptest.Server
	mu     sync.RWMutex
	routes map[string]Route
	queue  []MockResponse

	// Tracking
	RequestCount  int
	Requests      []url.Values
	LastUserAgent string
}

// NewMockMatrix creates a new mock Distance Matrix server.
func NewMockMatrix() *MockMatrix {
	mock := &MockMatrix{
		routes: make(map[string]Route),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != MatrixPath {
			http.NotFound(w, r)
			return
		}

		mock.mu.Lock()
		mock.RequestCount++
		mock.Requests = append(mock.Requests, r.URL.Query())
		mock.LastUserAgent = r.Header.Get("User-Agent")

		var scripted *MockResponse
		if len(mock.queue) > 0 {
			scripted = &mock.queue[0]
			mock.queue = mock.queue[1:]
		}
		mock.mu.Unlock()

		if scripted != nil {
			writeScripted(w, *scripted)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockMatrix) URL() string {
	return m.server.URL
}

// Endpoint returns the full Distance Matrix endpoint of the mock, suitable
// for matrix.Builder.BaseURL.
func (m *MockMatrix) Endpoint() string {
	return m.server.URL + MatrixPath
}

// Close shuts down the mock server.
func (m *MockMatrix) Close() {
	m.server.Close()
}

// Reset clears all tracking counters and queued responses.
func (m *MockMatrix) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Requests = nil
	m.LastUserAgent = ""
	m.queue = nil
}

// SetRoute configures the result for a destination address.
func (m *MockMatrix) SetRoute(destination string, route Route) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[destination] = route
}

// Enqueue schedules scripted responses for the next requests.
func (m *MockMatrix) Enqueue(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, responses...)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockMatrix) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetRequest returns the query of the i-th request.
func (m *MockMatrix) GetRequest(i int) url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.Requests) {
		return nil
	}
	return m.Requests[i]
}

type element struct {
	Status   string `json:"status"`
	Duration *value `json:"duration,omitempty"`
	Distance *value `json:"distance,omitempty"`
}

type value struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

// defaultHandler builds a response from the configured routes.
func (m *MockMatrix) defaultHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("key") == "" {
		writeJSON(w, map[string]any{
			"status":        "REQUEST_DENIED",
			"error_message": "You must use an API key to authenticate each request.",
			"rows":          []any{},
		})
		return
	}

	destinations := strings.Split(q.Get("destinations"), "|")
	elements := make([]element, len(destinations))
	addresses := make([]string, len(destinations))

	m.mu.RLock()
	for i, d := range destinations {
		addresses[i] = d
		route, ok := m.routes[d]
		switch {
		case !ok:
			elements[i] = element{Status: "NOT_FOUND"}
		case route.Status != "" && route.Status != "OK":
			elements[i] = element{Status: route.Status}
		default:
			elements[i] = element{
				Status:   "OK",
				Duration: &value{Value: route.DurationSeconds, Text: fmt.Sprintf("%d min", route.DurationSeconds/60)},
				Distance: &value{Value: route.DistanceMeters, Text: fmt.Sprintf("%.1f km", float64(route.DistanceMeters)/1000)},
			}
		}
	}
	m.mu.RUnlock()

	writeJSON(w, map[string]any{
		"status":                "OK",
		"origin_addresses":      []string{q.Get("origins")},
		"destination_addresses": addresses,
		"rows":                  []any{map[string]any{"elements": elements}},
	})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

func writeScripted(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewStatusResponse creates a 200 OK response carrying a top-level status,
// the way the real API reports request-level failures.
func NewStatusResponse(status, message string) MockResponse {
	body, _ := json.Marshal(map[string]any{
		"status":        status,
		"error_message": message,
		"rows":          []any{},
	})
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json; charset=UTF-8"},
	}
}

// NewMisalignedResponse creates an OK response with n OK elements regardless
// of how many destinations were sent.
func NewMisalignedResponse(n int) MockResponse {
	elements := make([]element, n)
	for i := range elements {
		elements[i] = element{Status: "OK", Duration: &value{Value: 60, Text: "1 min"}, Distance: &value{Value: 1000, Text: "1.0 km"}}
	}
	body, _ := json.Marshal(map[string]any{
		"status": "OK",
		"rows":   []any{map[string]any{"elements": elements}},
	})
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json; charset=UTF-8"},
	}
}

// NewMalformedResponse creates a 200 OK response whose body is not JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       "<html>upstream proxy error</html>",
		Headers:    map[string]string{"Content-Type": "text/html"},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=UTF-8"},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=UTF-8"},
	}
}
