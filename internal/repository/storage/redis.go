package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisStorage struct {
	Connection *redis.Client
}

// NewRedisStorage connects to addr and selects database db.
func NewRedisStorage(ctx context.Context, addr, password string, db int) (*RedisStorage, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &RedisStorage{Connection: conn}, nil
}
