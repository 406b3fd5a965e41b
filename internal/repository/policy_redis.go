package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/qtable"
)

type redisPolicy struct {
	client *redis.Client
	key    string
}

// NewRedisPolicyStore keeps the table in the hash policy:<name>, one field per
// state-action pair.
func NewRedisPolicyStore(client *redis.Client, name string) PolicyStore {
	return &redisPolicy{
		client: client,
		key:    "policy:" + name,
	}
}

func (that *redisPolicy) Save(ctx context.Context, table *qtable.Table) error {
	fields := make(map[string]any, table.Len())
	for _, e := range table.Entries() {
		fields[qtable.FormatEntry(e.State, e.Action)] = strconv.FormatFloat(e.Value, 'g', -1, 64)
	}

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, that.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, that.key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save policy %s: %w", that.key, err)
	}

	return nil
}

func (that *redisPolicy) Load(ctx context.Context, options ...qtable.Option) (*qtable.Table, error) {
	fields, err := that.client.HGetAll(ctx, that.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load policy %s: %w", that.key, err)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", apperror.ErrPolicyNotFound, that.key)
	}

	table := qtable.New(options...)
	for field, raw := range fields {
		state, action, err := qtable.ParseEntry(field)
		if err != nil {
			return nil, fmt.Errorf("failed to read policy %s: %w", that.key, err)
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %w", apperror.ErrMalformedPolicy, field, err)
		}

		if err = table.Set(state, action, value); err != nil {
			return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedPolicy, err)
		}
	}

	return table, nil
}

func (that *redisPolicy) Close() error {
	return that.client.Close()
}
