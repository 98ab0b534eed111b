// Package ratelimit gates Distance Matrix requests.
//
// Two mechanisms are provided. The Tracker shares a quota cooldown through
// Redis: once any instance sees OVER_QUERY_LIMIT or OVER_DAILY_LIMIT, every
// instance stops calling the API until the cooldown ends. The Pacer is a local
// token bucket that spaces requests out before they are sent.
package ratelimit

import (
	"time"
)

// Redis keys for quota state storage.
const (
	RedisKeyStatus       = "matrix:quota:status"
	RedisKeyBlockedUntil = "matrix:quota:blocked_until"
	RedisKeyLastUpdate   = "matrix:quota:last_update"
)

// Cooldowns applied after a quota status is observed.
const (
	// DefaultCooldown blocks requests after OVER_QUERY_LIMIT.
	DefaultCooldown = 60 * time.Second

	// DailyLimitCooldown is the minimum block after OVER_DAILY_LIMIT.
	// The daily quota does not recover within a short cooldown.
	DailyLimitCooldown = time.Hour
)

// QuotaState represents the shared quota state.
// This state is shared across all client instances via Redis.
type QuotaState struct {
	// Status is the last quota status reported by the API, empty when healthy.
	Status string `json:"status"`

	// BlockedUntil is when requests may resume.
	BlockedUntil time.Time `json:"blocked_until"`

	// LastUpdate is when this state was last written.
	LastUpdate time.Time `json:"last_update"`
}

// IsBlocked returns true while the cooldown is active.
func (s *QuotaState) IsBlocked() bool {
	return s.Status != "" && time.Now().Before(s.BlockedUntil)
}

// TimeUntilReset returns the duration until requests may resume.
// Returns 0 if the block has already passed.
func (s *QuotaState) TimeUntilReset() time.Duration {
	duration := time.Until(s.BlockedUntil)
	if duration < 0 {
		return 0
	}
	return duration
}
