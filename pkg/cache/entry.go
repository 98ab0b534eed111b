package cache

import (
	"time"
)

// Entry represents a cached Distance Matrix payload.
type Entry struct {
	// Payload is the raw JSON response body
	Payload []byte `json:"payload"`

	// Expires is when the entry becomes stale
	Expires time.Time `json:"expires"`

	// CachedAt is when we cached this response
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry wraps payload in an entry that expires after ttl.
func NewEntry(payload []byte, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Payload:  payload,
		Expires:  now.Add(ttl),
		CachedAt: now,
	}
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Age returns how long ago the entry was cached.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CachedAt)
}
