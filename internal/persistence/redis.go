package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/config"
)

// ErrRedisDisabled is returned by a Redis handle built without an address.
var ErrRedisDisabled = errors.New("redis not configured")

// Redis wraps the go-redis client. A zero Redis (no address configured) is valid: every
// call reports ErrRedisDisabled.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration. An unreachable server is
// logged but not fatal: Redis only carries the real-time notification hook.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("redis disabled")
		return &Redis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

// Enabled reports whether a client was configured.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}

// Publish sends message on channel. It satisfies the realtime publisher contract.
func (r *Redis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	if !r.Enabled() {
		cmd := redis.NewIntCmd(ctx, "publish", channel, message)
		cmd.SetErr(ErrRedisDisabled)
		return cmd
	}
	return r.Client.Publish(ctx, channel, message)
}

// Close closes the client.
func (r *Redis) Close() {
	if r.Enabled() {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return ErrRedisDisabled
	}
	return r.Client.Ping(ctx).Err()
}
