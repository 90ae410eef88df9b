package state

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "stonktip:failed-urls:"

// RedisStore keeps one Redis list per channel.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects using a redis:// URL and checks the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func channelKey(channel string) string {
	return keyPrefix + channel
}

func (r *RedisStore) AppendFailed(ctx context.Context, channel string, urls ...string) error {
	if len(urls) == 0 {
		return nil
	}
	vals := make([]interface{}, len(urls))
	for i, u := range urls {
		vals[i] = u
	}
	if err := r.client.RPush(ctx, channelKey(channel), vals...).Err(); err != nil {
		return fmt.Errorf("append failed urls for %s: %w", channel, err)
	}
	return nil
}

func (r *RedisStore) DrainFailed(ctx context.Context, channel string) ([]string, error) {
	key := channelKey(channel)
	var rng *redis.StringSliceCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		rng = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("drain failed urls for %s: %w", channel, err)
	}
	return rng.Val(), nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
