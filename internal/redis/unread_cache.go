package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// unreadCountTTL bounds staleness if an invalidation is ever missed; the
// database remains the source of truth.
const unreadCountTTL = time.Hour

// UnreadCountCache caches per-user unread message counts. The message
// service increments on send, invalidates on read, and falls back to the
// database on a miss.
type UnreadCountCache interface {
	// Get returns the cached count. found is false on a cache miss.
	Get(ctx context.Context, userID string) (count int64, found bool, err error)
	// Set stores the count with the cache TTL.
	Set(ctx context.Context, userID string, count int64) error
	// Increment bumps the count by one if the key is cached; a missing key
	// stays missing so the next read repopulates from the database.
	Increment(ctx context.Context, userID string) error
	// Invalidate drops the cached count.
	Invalidate(ctx context.Context, userID string) error
}

type redisUnreadCountCache struct {
	client *redis.Client
}

// NewRedisUnreadCountCache creates an UnreadCountCache backed by the given
// Redis client.
func NewRedisUnreadCountCache(client *redis.Client) UnreadCountCache {
	return &redisUnreadCountCache{client: client}
}

func unreadKey(userID string) string {
	return fmt.Sprintf("unread:count:%s", userID)
}

func (c *redisUnreadCountCache) Get(ctx context.Context, userID string) (int64, bool, error) {
	val, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Unparseable value; treat as a miss so the DB repopulates it.
		return 0, false, nil
	}
	// Refresh TTL on access since this user is active.
	_ = c.client.Expire(ctx, unreadKey(userID), unreadCountTTL).Err()
	return count, true, nil
}

func (c *redisUnreadCountCache) Set(ctx context.Context, userID string, count int64) error {
	return c.client.Set(ctx, unreadKey(userID), count, unreadCountTTL).Err()
}

func (c *redisUnreadCountCache) Increment(ctx context.Context, userID string) error {
	key := unreadKey(userID)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return err
	}
	if err := c.client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, unreadCountTTL).Err()
}

func (c *redisUnreadCountCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, unreadKey(userID)).Err()
}
