package redis_test

import (
	"context"
	"testing"
	"time"

	collectorredis "github.com/JulianoL13/app-node-engine/internal/collector/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestCleaner_Cleanup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	redisContainer, err := redis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	defer redisContainer.Terminate(ctx)

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: endpoint})
	defer client.Close()

	past := float64(time.Now().Add(-time.Hour).Unix())
	future := float64(time.Now().Add(time.Hour).Unix())

	require.NoError(t, client.ZAdd(ctx, "test:idx:alive",
		goredis.Z{Score: past, Member: "expired"},
		goredis.Z{Score: future, Member: "fresh"},
	).Err())
	require.NoError(t, client.ZAdd(ctx, "test:idx:protocol:trojan",
		goredis.Z{Score: past, Member: "expired"},
	).Err())
	require.NoError(t, client.ZAdd(ctx, "other:idx:alive",
		goredis.Z{Score: past, Member: "untouched"},
	).Err())

	cleaner := collectorredis.NewCleaner(client, "test")

	removed, err := cleaner.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	members, err := client.ZRange(ctx, "test:idx:alive", 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, members)

	n, err := client.ZCard(ctx, "other:idx:alive").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	t.Run("no index keys", func(t *testing.T) {
		removed, err := collectorredis.NewCleaner(client, "empty").Cleanup(ctx)
		assert.NoError(t, err)
		assert.Zero(t, removed)
	})
}
