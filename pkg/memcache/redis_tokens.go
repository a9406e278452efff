package mem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokens namespaces keys with a prefix so several stores can share one client:
// reset:{token}, webauthn:{session}, deny:{jti}.
type RedisTokens struct {
	client *redis.Client
	prefix string
}

func NewRedisTokens(client *redis.Client, prefix string) *RedisTokens {
	return &RedisTokens{client: client, prefix: prefix}
}

func (s *RedisTokens) key(token string) string {
	return fmt.Sprintf("%s:%s", s.prefix, token)
}

func (s *RedisTokens) Set(ctx context.Context, token string, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(token), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (s *RedisTokens) Consume(ctx context.Context, token string) (string, error) {
	value, err := s.client.GetDel(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume token: %w", err)
	}
	return value, nil
}

func (s *RedisTokens) Peek(ctx context.Context, token string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read token: %w", err)
	}
	return value, true, nil
}
