package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisDurable keeps thread snapshots in redis as JSON values, with a
// per-user sorted set of thread ids ordered by last save.
type RedisDurable struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisDurable pings the server and returns a durable backend. A zero
// ttl keeps snapshots forever.
func NewRedisDurable(ctx context.Context, client *redis.Client, prefix string, ttl time.Duration) (*RedisDurable, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if prefix == "" {
		prefix = "campus"
	}
	return &RedisDurable{client: client, prefix: prefix, ttl: ttl}, nil
}

func (r *RedisDurable) threadKey(id Identity) string {
	return fmt.Sprintf("%s:thread:%s:%s", r.prefix, id.UserID, id.ThreadID)
}

func (r *RedisDurable) userThreadsKey(userID string) string {
	return fmt.Sprintf("%s:user_threads:%s", r.prefix, userID)
}

func (r *RedisDurable) SaveThread(ctx context.Context, id Identity, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal thread: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.threadKey(id), data, r.ttl)
	pipe.ZAdd(ctx, r.userThreadsKey(id.UserID), &redis.Z{
		Score:  float64(time.Now().UnixMicro()),
		Member: id.ThreadID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisDurable) LoadThread(ctx context.Context, id Identity) (*Snapshot, error) {
	data, err := r.client.Get(ctx, r.threadKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal thread: %w", err)
	}
	return &snap, nil
}

func (r *RedisDurable) DeleteThread(ctx context.Context, id Identity) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.threadKey(id))
	pipe.ZRem(ctx, r.userThreadsKey(id.UserID), id.ThreadID)
	_, err := pipe.Exec(ctx)
	return err
}

// ListThreads returns a user's persisted thread ids, most recent first.
func (r *RedisDurable) ListThreads(ctx context.Context, userID string) ([]string, error) {
	return r.client.ZRevRange(ctx, r.userThreadsKey(userID), 0, -1).Result()
}

var (
	_ Durable      = (*RedisDurable)(nil)
	_ ThreadLister = (*RedisDurable)(nil)
)
