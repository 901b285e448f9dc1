// Package cache stores computed month layouts in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/staycal/internal/domain/timeline"
)

const keyPrefix = "staycal:layout:"

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type RedisLayoutCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Dial connects and pings the server.
func Dial(ctx context.Context, o Options) (*RedisLayoutCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", o.Addr, err)
	}
	return New(client, o.TTL), nil
}

func New(client *redis.Client, ttl time.Duration) *RedisLayoutCache {
	return &RedisLayoutCache{client: client, ttl: ttl}
}

func Key(fingerprint string) string { return keyPrefix + fingerprint }

// Get returns ok=false on a miss.
func (c *RedisLayoutCache) Get(ctx context.Context, fingerprint string) (timeline.MonthLayout, bool, error) {
	val, err := c.client.Get(ctx, Key(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return timeline.MonthLayout{}, false, nil
	}
	if err != nil {
		return timeline.MonthLayout{}, false, err
	}
	var l timeline.MonthLayout
	if err := json.Unmarshal(val, &l); err != nil {
		// stale format; treat as a miss so it gets overwritten
		return timeline.MonthLayout{}, false, nil
	}
	return l, true, nil
}

func (c *RedisLayoutCache) Set(ctx context.Context, fingerprint string, l timeline.MonthLayout) error {
	data, err := json.Marshal(l)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(fingerprint), data, c.ttl).Err()
}

func (c *RedisLayoutCache) Close() error { return c.client.Close() }
