// Package rediscontainer runs a throwaway Redis in docker for integration
// tests.
package rediscontainer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/talx-hub/coinledger/internal/model"
)

const (
	redisPort = "6379/tcp"
	maxWait   = 30 * time.Second
)

type RedisContainer struct {
	log       *slog.Logger
	pool      *dockertest.Pool
	container *dockertest.Resource
	addr      string
}

func New(log *slog.Logger) *RedisContainer {
	return &RedisContainer{log: log}
}

func (c *RedisContainer) RunContainer() error {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return fmt.Errorf("failed to initialize a docker pool: %w", err)
	}
	if err = pool.Client.Ping(); err != nil {
		return fmt.Errorf("docker is unavailable: %w", err)
	}
	c.pool = pool

	c.container, err = pool.RunWithOptions(
		&dockertest.RunOptions{
			Repository:   "redis",
			Tag:          "7-alpine",
			ExposedPorts: []string{redisPort},
		},
		func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{Name: "no"}
		},
	)
	if err != nil {
		return fmt.Errorf("failed to run redis container: %w", err)
	}
	c.addr = c.container.GetHostPort(redisPort)

	pool.MaxWait = maxWait
	if err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: c.addr})
		defer client.Close()
		return client.Ping(context.Background()).Err() //nolint: wrapcheck // retried
	}); err != nil {
		return fmt.Errorf("redis container is not ready: %w", err)
	}
	return nil
}

func (c *RedisContainer) Addr() string {
	return c.addr
}

func (c *RedisContainer) Close() {
	if c.pool == nil || c.container == nil {
		return
	}
	if err := c.pool.Purge(c.container); err != nil {
		c.log.LogAttrs(context.Background(), slog.LevelError,
			"failed to purge the redis container",
			slog.Any(model.KeyLoggerError, err))
	}
}
