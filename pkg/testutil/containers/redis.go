//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer is the Redis instance behind the fee ledger stream and the
// platform client integration tests.
type RedisContainer struct {
	Container testcontainers.Container
	// URL is a redis:// URL accepted by config.RedisConfig.URL.
	URL    string
	Client *redis.Client
}

// NewRedisContainer starts Redis and returns a connected client. Suites
// should go through Manager.GetRedis so one container serves the whole run.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("redis connection string: %v", err)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("parse redis url %q: %v", url, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("ping redis: %v", err)
	}

	// No t.Cleanup: the container outlives this test and Ryuk reaps it.
	return &RedisContainer{Container: container, URL: url, Client: client}
}

// Reset drops every key, including ledger streams written by earlier tests.
func (r *RedisContainer) Reset(ctx context.Context) error {
	return r.Client.FlushDB(ctx).Err()
}

// StreamLen returns the number of entries in stream, zero if it does not
// exist.
func (r *RedisContainer) StreamLen(ctx context.Context, stream string) (int64, error) {
	return r.Client.XLen(ctx, stream).Result()
}
