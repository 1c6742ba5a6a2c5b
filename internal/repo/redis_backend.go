package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

const (
	redisFieldVersion = "version"
	redisFieldBody    = "body"
)

type RedisBackend struct {
	client redis.UniversalClient
	log    *slog.Logger
	prefix string
}

func NewRedisBackend(client redis.UniversalClient, prefix string, log *slog.Logger) *RedisBackend {
	return &RedisBackend{
		client: client,
		log:    log,
		prefix: prefix,
	}
}

func (b *RedisBackend) key(name string) string {
	return b.prefix + name
}

func (b *RedisBackend) Read(ctx context.Context, name string) ([]byte, int64, error) {
	fields, err := b.client.HGetAll(ctx, b.key(name)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read document %s: %w", name, err)
	}
	if len(fields) == 0 {
		return nil, 0, nil
	}

	version, err := strconv.ParseInt(fields[redisFieldVersion], 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("corrupted version of document %s: %w", name, err)
	}
	return []byte(fields[redisFieldBody]), version, nil
}

func (b *RedisBackend) Write(ctx context.Context,
	name string, body []byte, version int64,
) (int64, error) {
	key := b.key(name)
	var newVersion int64

	txf := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, redisFieldVersion).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to read version of document %s: %w", name, err)
		}
		if current != version {
			return fmt.Errorf("document %s: stored v%d, loaded v%d: %w",
				name, current, version, serviceerrs.ErrVersionConflict)
		}

		newVersion = current + 1
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				redisFieldVersion, newVersion,
				redisFieldBody, body)
			return nil
		})
		return err //nolint: wrapcheck // checked by the caller
	}

	err := b.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return 0, fmt.Errorf("document %s: %w", name, serviceerrs.ErrVersionConflict)
	}
	if err != nil {
		if errors.Is(err, serviceerrs.ErrVersionConflict) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to write document %s: %w", name, err)
	}

	b.log.LogAttrs(ctx, slog.LevelDebug, "document written",
		slog.String("name", name),
		slog.Int64("version", newVersion))
	return newVersion, nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
