// Package pgcontainer runs a throwaway PostgreSQL in docker for
// integration tests.
package pgcontainer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/talx-hub/coinledger/internal/model"
)

const (
	pgPort       = "5432/tcp"
	defaultTag   = "17-alpine"
	userName     = "test"
	userPassword = "test"
	dbName       = "test"
	maxWait      = 30 * time.Second
)

type PGContainer struct {
	log       *slog.Logger
	pool      *dockertest.Pool
	container *dockertest.Resource
	hostPort  string
}

func New(log *slog.Logger) *PGContainer {
	return &PGContainer{log: log}
}

func imageTag() string {
	// .env is optional: CI sets POSTGRES_TAG directly.
	_ = godotenv.Load(".env")
	if tag := os.Getenv("POSTGRES_TAG"); tag != "" {
		return tag
	}
	return defaultTag
}

func (c *PGContainer) RunContainer() error {
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
			Repository: "postgres",
			Tag:        imageTag(),
			Env: []string{
				"POSTGRES_USER=" + userName,
				"POSTGRES_PASSWORD=" + userPassword,
				"POSTGRES_DB=" + dbName,
			},
			ExposedPorts: []string{pgPort},
		},
		func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{Name: "no"}
		},
	)
	if err != nil {
		return fmt.Errorf("failed to run postgres container: %w", err)
	}
	c.hostPort = c.container.GetHostPort(pgPort)

	pool.MaxWait = maxWait
	if err = pool.Retry(func() error {
		conn, err := pgx.Connect(context.Background(), c.GetDSN())
		if err != nil {
			return fmt.Errorf("failed to connect to the DB: %w", err)
		}
		return conn.Close(context.Background())
	}); err != nil {
		return fmt.Errorf("postgres container is not ready: %w", err)
	}

	c.log.LogAttrs(context.Background(), slog.LevelInfo,
		"postgres container started", slog.String("host_port", c.hostPort))
	return nil
}

func (c *PGContainer) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		userName, userPassword, c.hostPort, dbName)
}

func (c *PGContainer) Close() {
	if c.pool == nil || c.container == nil {
		return
	}
	if err := c.pool.Purge(c.container); err != nil {
		c.log.LogAttrs(context.Background(), slog.LevelError,
			"failed to purge the postgres container",
			slog.Any(model.KeyLoggerError, err))
	}
}
