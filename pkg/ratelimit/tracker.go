package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Tracker records quota statuses and gates requests while a cooldown is
// active.
type Tracker struct {
	redis    *redis.Client
	logger   zerolog.Logger
	cooldown time.Duration
}

// NewTracker creates a new quota tracker.
// A non-positive cooldown means DefaultCooldown.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger, cooldown time.Duration) *Tracker {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Tracker{
		redis:    redisClient,
		logger:   logger,
		cooldown: cooldown,
	}
}

// GetState retrieves the current quota state from Redis.
// Returns a healthy state if no data exists in Redis.
func (t *Tracker) GetState(ctx context.Context) (*QuotaState, error) {
	vals, err := t.redis.MGet(ctx, RedisKeyStatus, RedisKeyBlockedUntil, RedisKeyLastUpdate).Result()
	if err != nil {
		return nil, fmt.Errorf("get quota state: %w", err)
	}

	status, _ := vals[0].(string)
	if status == "" {
		return &QuotaState{LastUpdate: time.Now()}, nil
	}

	state := &QuotaState{Status: status}
	if s, ok := vals[1].(string); ok {
		if state.BlockedUntil, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return nil, fmt.Errorf("parse blocked until: %w", err)
		}
	}
	if s, ok := vals[2].(string); ok {
		if state.LastUpdate, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return nil, fmt.Errorf("parse last update: %w", err)
		}
	}

	return state, nil
}

// RecordLimit stores a quota status reported by the API and starts a
// cooldown. Keys expire with the cooldown so the block lifts on its own.
func (t *Tracker) RecordLimit(ctx context.Context, status string) error {
	cooldown := t.cooldown
	if status == "OVER_DAILY_LIMIT" && cooldown < DailyLimitCooldown {
		cooldown = DailyLimitCooldown
	}

	now := time.Now()
	state := &QuotaState{
		Status:       status,
		BlockedUntil: now.Add(cooldown),
		LastUpdate:   now,
	}

	// Store in Redis atomically
	pipe := t.redis.TxPipeline()
	pipe.Set(ctx, RedisKeyStatus, state.Status, cooldown)
	pipe.Set(ctx, RedisKeyBlockedUntil, state.BlockedUntil.Format(time.RFC3339Nano), cooldown)
	pipe.Set(ctx, RedisKeyLastUpdate, state.LastUpdate.Format(time.RFC3339Nano), cooldown)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store quota state in redis: %w", err)
	}

	quotaLimitsTotal.WithLabelValues(status).Inc()
	quotaBlocked.Set(1)

	t.logger.Error().
		Str("status", status).
		Time("blocked_until", state.BlockedUntil).
		Msg("Distance Matrix quota exceeded - requests will be blocked")

	return nil
}

// ShouldAllowRequest checks if a request should be allowed based on the
// current quota state. Returns false while a cooldown is active.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get quota state: %w", err)
	}

	if state.IsBlocked() {
		t.logger.Warn().
			Str("status", state.Status).
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("Quota cooldown active - blocking request")

		quotaBlocksTotal.Inc()
		return false, nil
	}

	quotaBlocked.Set(0)
	return true, nil
}

// Reset clears the quota state.
func (t *Tracker) Reset(ctx context.Context) error {
	err := t.redis.Del(ctx, RedisKeyStatus, RedisKeyBlockedUntil, RedisKeyLastUpdate).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reset quota state: %w", err)
	}
	quotaBlocked.Set(0)
	return nil
}
