package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/node"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL = 30 * time.Minute
)

// Repository keeps one JSON record per node plus sorted-set indexes scored
// by the record's expiry time.
type Repository struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	now       func() time.Time
}

func NewRepository(client *redis.Client, keyPrefix string) *Repository {
	if keyPrefix == "" {
		keyPrefix = "nodes"
	}
	return &Repository{
		client:    client,
		ttl:       defaultTTL,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

func (r *Repository) WithTTL(ttl time.Duration) *Repository {
	if ttl > 0 {
		r.ttl = ttl
	}
	return r
}

func (r *Repository) dataKey(id string) string {
	return fmt.Sprintf("%s:data:%s", r.keyPrefix, id)
}

func (r *Repository) aliveSetKey() string {
	return fmt.Sprintf("%s:idx:alive", r.keyPrefix)
}

func (r *Repository) protocolSetKey(protocol string) string {
	return fmt.Sprintf("%s:idx:protocol:%s", r.keyPrefix, protocol)
}

func (r *Repository) indexKey(protocol string) string {
	if protocol != "" {
		return r.protocolSetKey(protocol)
	}
	return r.aliveSetKey()
}

// Save upserts n, keeping the first-seen time of an existing record and
// pushing its expiry forward.
func (r *Repository) Save(ctx context.Context, n *node.Node) error {
	id := n.ID()
	key := r.dataKey(id)

	prev, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var old node.Node
		if json.Unmarshal(prev, &old) == nil && !old.FirstSeenAt.IsZero() {
			n.FirstSeenAt = old.FirstSeenAt
		}
	case !errors.Is(err, redis.Nil):
		return fmt.Errorf("get node: %w", err)
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal node: %w", err)
	}

	expiry := float64(r.now().Add(r.ttl).UnixNano()) / 1e9

	pipe := r.client.Pipeline()

	pipe.Set(ctx, key, data, r.ttl)
	pipe.ZAdd(ctx, r.aliveSetKey(), redis.Z{Score: expiry, Member: id})
	pipe.ZAdd(ctx, r.protocolSetKey(string(n.Protocol)), redis.Z{Score: expiry, Member: id})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save node: %w", err)
	}

	return nil
}

func (r *Repository) nowBound() string {
	return "(" + strconv.FormatInt(r.now().Unix(), 10)
}

// GetAlive pages through unexpired nodes in expiry order. cursor is the score
// of the last node of the previous page; the returned cursor is zero on the
// last page. A limit of zero returns every node.
func (r *Repository) GetAlive(ctx context.Context, cursor float64, limit int, filter node.FilterOptions) ([]*node.Node, float64, int, error) {
	targetKey := r.indexKey(filter.Protocol)

	total, err := r.client.ZCount(ctx, targetKey, r.nowBound(), "+inf").Result()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("zcount: %w", err)
	}

	if total == 0 {
		return nil, 0, 0, nil
	}

	lower := r.nowBound()
	if cursor > float64(r.now().Unix()) {
		lower = "(" + strconv.FormatFloat(cursor, 'f', -1, 64)
	}

	rangeBy := &redis.ZRangeBy{Min: lower, Max: "+inf"}
	if limit > 0 {
		rangeBy.Count = int64(limit)
	}

	ids, err := r.client.ZRangeByScore(ctx, targetKey, rangeBy).Result()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("zrange: %w", err)
	}

	if len(ids) == 0 {
		return nil, 0, int(total), nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.dataKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("mget nodes: %w", err)
	}

	nodes := make([]*node.Node, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}

		var n node.Node
		if err := json.Unmarshal([]byte(str), &n); err != nil {
			continue
		}
		nodes = append(nodes, &n)
	}

	var nextCursor float64
	if limit > 0 && len(ids) == limit {
		if score, err := r.client.ZScore(ctx, targetKey, ids[len(ids)-1]).Result(); err == nil {
			nextCursor = score
		}
	}

	return nodes, nextCursor, int(total), nil
}

// Count returns the number of unexpired nodes, optionally for one protocol.
func (r *Repository) Count(ctx context.Context, protocol string) (int, error) {
	n, err := r.client.ZCount(ctx, r.indexKey(protocol), r.nowBound(), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("zcount: %w", err)
	}
	return int(n), nil
}
