package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type RedisBadgeCache struct {
	rdb *redis.Client
}

func NewRedisBadgeCache(rdb *redis.Client) *RedisBadgeCache {
	return &RedisBadgeCache{rdb: rdb}
}

func badgeKey(userID string) string {
	return "badges:" + userID
}

// SetCounts rewrites the whole hash in one pipeline. The cache is derived
// state: it is never patched, only replaced or invalidated.
func (c *RedisBadgeCache) SetCounts(ctx context.Context, userID string, counts map[string]int64) error {
	key := badgeKey(userID)
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(counts) > 0 {
		fields := make(map[string]interface{}, len(counts))
		for sender, n := range counts {
			fields[sender] = n
		}
		pipe.HSet(ctx, key, fields)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisBadgeCache) GetCounts(ctx context.Context, userID string) (map[string]int64, error) {
	raw, err := c.rdb.HGetAll(ctx, badgeKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(raw))
	for sender, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		counts[sender] = n
	}
	return counts, nil
}

func (c *RedisBadgeCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, badgeKey(userID)).Err()
}
