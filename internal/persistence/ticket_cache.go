package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketCache stores ticket listings in Redis with a short TTL. Cache
// failures are never surfaced to callers; the store remains the source
// of truth.
type TicketCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewTicketCache builds a cache backed by the shared Redis client.
func NewTicketCache(r *Redis, ttl time.Duration, logger *zap.Logger) *TicketCache {
	if r == nil || r.Client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &TicketCache{client: r.Client, ttl: ttl, logger: logger}
}

// Get returns the cached listing for key, if present.
func (c *TicketCache) Get(ctx context.Context, key string) ([]domain.Ticket, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("ticket cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		c.logger.Debug("ticket cache decode failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return tickets, true
}

// Set stores a listing under key.
func (c *TicketCache) Set(ctx context.Context, key string, tickets []domain.Ticket) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(tickets)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("ticket cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the cached listing for key.
func (c *TicketCache) Invalidate(ctx context.Context, key string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Debug("ticket cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
