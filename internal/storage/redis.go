package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisValues stores each session as a hash with a TTL
type RedisValues struct {
	client *redis.Client
	prefix string
}

// NewRedisValues connects to addr and verifies the connection
func NewRedisValues(ctx context.Context, addr, password string, db int) (*RedisValues, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisValues{client: client, prefix: "rental:session:"}, nil
}

func (s *RedisValues) key(sid string) string {
	return s.prefix + sid
}

func (s *RedisValues) Get(ctx context.Context, sid string) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, s.key(sid)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", sid, err)
	}
	return values, nil
}

func (s *RedisValues) Put(ctx context.Context, sid string, values map[string]string, ttl time.Duration) error {
	key := s.key(sid)
	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		fields[k] = v
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write session %s: %w", sid, err)
	}
	return nil
}

func (s *RedisValues) Delete(ctx context.Context, sid string) error {
	return s.client.Del(ctx, s.key(sid)).Err()
}

func (s *RedisValues) Close() error {
	return s.client.Close()
}
