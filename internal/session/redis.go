package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one session's token under a fixed key.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore binds a slot to key.
func NewRedisStore(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("session: redis get: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

// RedisProvider resolves slots in Redis through an opaque session id cookie.
type RedisProvider struct {
	client *redis.Client
	prefix string
	ids    *idCookie
}

// NewRedisProvider builds a provider storing tokens under "<prefix>:<sid>:token".
func NewRedisProvider(client *redis.Client, prefix string, cfg CookieConfig) *RedisProvider {
	if prefix == "" {
		prefix = "dashboard:session"
	}
	return &RedisProvider{client: client, prefix: prefix, ids: newIDCookie(cfg)}
}

func (p *RedisProvider) StoreFor(c *fiber.Ctx) Store {
	sid := p.ids.ensure(c)
	return NewRedisStore(p.client, p.Key(sid), p.ids.cfg.TTL)
}

// Key returns the Redis key of a session's token slot.
func (p *RedisProvider) Key(sid string) string {
	return p.prefix + ":" + sid + ":token"
}
