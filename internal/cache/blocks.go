// Package cache provides Redis-backed read-through caches in front of the
// Postgres stores. All cache failures are handled fail-open: a Redis
// outage degrades to direct store reads, never to request failures.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultBlockTTL bounds staleness of cached block sets. A new block
// invalidates its key immediately; the TTL only covers writes made by
// other instances.
const DefaultBlockTTL = 5 * time.Minute

const blockKeyPrefix = "blocks:"

// BlockReader is the read side of block storage the cache fronts.
type BlockReader interface {
	BlockedBy(ctx context.Context, blockerID string) ([]string, error)
}

// BlockCache is a read-through cache for per-user block sets. The block
// gate runs on every feed request, so this is the hottest moderation read.
type BlockCache struct {
	inner  BlockReader
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewBlockCache creates a block cache over the given store and Redis client.
func NewBlockCache(inner BlockReader, client *redis.Client, logger *slog.Logger) *BlockCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlockCache{
		inner:  inner,
		client: client,
		logger: logger,
		ttl:    DefaultBlockTTL,
	}
}

// BlockedBy returns the set of user IDs blockerID has blocked, reading
// from Redis when possible. Empty block sets are not cached; they fall
// through to the store on every call.
func (c *BlockCache) BlockedBy(ctx context.Context, blockerID string) ([]string, error) {
	key := blockKeyPrefix + blockerID

	members, err := c.client.SMembers(ctx, key).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "block cache read failed, falling through to store",
			"error", err)
	} else if len(members) > 0 {
		return members, nil
	}

	blocked, err := c.inner.BlockedBy(ctx, blockerID)
	if err != nil {
		return nil, err
	}

	if len(blocked) > 0 {
		pipe := c.client.TxPipeline()
		pipe.SAdd(ctx, key, toAnySlice(blocked)...)
		pipe.Expire(ctx, key, c.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			c.logger.WarnContext(ctx, "block cache write failed", "error", err)
		}
	}
	return blocked, nil
}

// Invalidate drops the cached block set for blockerID. Called after a
// successful block write so the next feed request sees it.
func (c *BlockCache) Invalidate(ctx context.Context, blockerID string) {
	if err := c.client.Del(ctx, blockKeyPrefix+blockerID).Err(); err != nil {
		c.logger.WarnContext(ctx, "block cache invalidation failed",
			"blocker_id", blockerID,
			"error", err)
	}
}

func toAnySlice(values []string) []any {
	result := make([]any, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}
