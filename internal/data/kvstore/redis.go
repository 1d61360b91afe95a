package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

type RedisStore struct {
	rdb    *goredis.Client
	log    *logger.Logger
	prefix string
}

func NewRedisStore(baseLog *logger.Logger, rdb *goredis.Client, prefix string) (*RedisStore, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	if prefix == "" {
		prefix = "enrollment:kv:"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, log: baseLog.With("repo", "RedisKVStore"), prefix: prefix}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return raw, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close leaves the client open; it is shared with the realtime bus.
func (s *RedisStore) Close() error { return nil }
