package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// RedisStore keeps manifests in Redis: one JSON value per run plus a sorted
// set of run ids scored by finish time.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets the expiration of saved manifests. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore connects to the Redis server at addr.
func NewRedisStore(addr string, opts ...RedisOption) *RedisStore {
	return NewRedisStoreFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewRedisStoreFromClient creates a store from an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "gridwalk:manifest:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(runID string) string {
	return s.prefix + runID
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

// Save writes m and indexes it by finish time.
func (s *RedisStore) Save(ctx context.Context, m *Manifest) error {
	if m == nil || m.RunID == "" {
		return fmt.Errorf("manifest must have a run id")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(m.RunID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(m.FinishedAt.UnixNano()),
		Member: m.RunID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save manifest to redis: %w", err)
	}
	return nil
}

// Load reads the manifest for runID.
func (s *RedisStore) Load(ctx context.Context, runID string) (*Manifest, error) {
	val, err := s.client.Get(ctx, s.key(runID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, fmt.Errorf("failed to get manifest from redis: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(val, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &m, nil
}

// List returns run ids, most recently finished first. Ids whose manifest
// has expired are pruned from the index on the way.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}
	if s.ttl == 0 || len(ids) == 0 {
		return ids, nil
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := s.client.Exists(ctx, s.key(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check manifest %s: %w", id, err)
		}
		if n == 0 {
			if err := s.client.ZRem(ctx, s.indexKey(), id).Err(); err != nil {
				return nil, fmt.Errorf("failed to prune manifest %s: %w", id, err)
			}
			continue
		}
		live = append(live, id)
	}
	return live, nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
