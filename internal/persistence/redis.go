package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-dashboard/internal/config"
)

// Redis owns the client behind SESSION_BACKEND=redis. Each browser session keeps its
// token slot under "<prefix>:<sid>:token" (see session.RedisProvider), so the client is
// shared by every request and closed once on shutdown. The readiness probe pings it.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the session client. An unreachable server is only logged: requests
// then read as signed out until Redis answers again.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close releases the client's connection pool.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping lets the readiness probe report the session store.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
