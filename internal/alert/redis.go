package alert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/go-sod/rad/internal/run/model"
)

type redisClient interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Redis appends every report to a list and announces its run id on a
// channel.
type Redis struct {
	client  redisClient
	list    string
	channel string
}

func NewRedis(client redisClient, list, channel string) *Redis {
	return &Redis{client: client, list: list, channel: channel}
}

func NewRedisFromConfig(cfg RedisConfig) (*Redis, *redis.Client) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedis(client, cfg.List, cfg.Channel), client
}

func (r *Redis) Notify(ctx context.Context, report model.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("unable encode json data: %w", err)
	}
	if err := r.client.RPush(ctx, r.list, body).Err(); err != nil {
		return fmt.Errorf("redis rpush %s: %w", r.list, err)
	}
	if r.channel != "" {
		if err := r.client.Publish(ctx, r.channel, report.ID.String()).Err(); err != nil {
			return fmt.Errorf("redis publish %s: %w", r.channel, err)
		}
	}
	return nil
}
