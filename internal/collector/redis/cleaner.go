package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cleaner prunes node index entries whose expiry score has passed. The node
// payloads expire on their own through their key TTL.
type Cleaner struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

func NewCleaner(client *redis.Client, keyPrefix string) *Cleaner {
	if keyPrefix == "" {
		keyPrefix = "nodes"
	}
	return &Cleaner{
		client:    client,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

func (c *Cleaner) indexKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	pattern := fmt.Sprintf("%s:idx:*", c.keyPrefix)
	for {
		batch, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// Cleanup returns the number of index members removed.
func (c *Cleaner) Cleanup(ctx context.Context) (int64, error) {
	keys, err := c.indexKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	upper := "(" + strconv.FormatInt(c.now().Unix(), 10)

	pipe := c.client.Pipeline()
	cmds := make([]*redis.IntCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.ZRemRangeByScore(ctx, key, "-inf", upper)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}

	var removed int64
	for _, cmd := range cmds {
		removed += cmd.Val()
	}
	return removed, nil
}
