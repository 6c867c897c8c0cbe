package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/smart-student-hub-api/internal/observability"
)

const reviewerDashboardKey = "dashboard:reviewer"

func portfolioKey(userID string) string {
	return fmt.Sprintf("portfolio:user:%s", userID)
}

func studentDashboardKey(userID string) string {
	return fmt.Sprintf("dashboard:student:%s", userID)
}

// ViewCache stores derived read views in Redis. A nil client disables caching.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewViewCache constructs a cache for portfolio and dashboard views.
func NewViewCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *ViewCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ViewCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "view_cache").Logger(),
	}
}

func (c *ViewCache) load(ctx context.Context, view, key string, target interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to read view cache")
		}
		observability.CacheLookups().WithLabelValues(view, "miss").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable cache entry")
		observability.CacheLookups().WithLabelValues(view, "miss").Inc()
		return false
	}

	observability.CacheLookups().WithLabelValues(view, "hit").Inc()
	return true
}

func (c *ViewCache) store(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to store view cache")
	}
}

// InvalidateOwner drops every cached view that depends on the owner's activities.
func (c *ViewCache) InvalidateOwner(ctx context.Context, ownerID string) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, portfolioKey(ownerID), studentDashboardKey(ownerID), reviewerDashboardKey).Err(); err != nil {
		c.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("failed to invalidate view cache")
	}
}
