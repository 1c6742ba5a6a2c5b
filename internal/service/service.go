package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talx-hub/coinledger/internal/api/handlers"
	"github.com/talx-hub/coinledger/internal/dbmanager"
	"github.com/talx-hub/coinledger/internal/metrics"
	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/repo"
	"github.com/talx-hub/coinledger/internal/router"
	"github.com/talx-hub/coinledger/internal/service/coins"
	"github.com/talx-hub/coinledger/internal/service/config"
	"github.com/talx-hub/coinledger/internal/service/dispatcher"
	"github.com/talx-hub/coinledger/internal/service/notifications"
	"github.com/talx-hub/coinledger/internal/utils/logger"
)

const (
	connectTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

type app struct {
	log        *slog.Logger
	server     *http.Server
	dispatcher *dispatcher.Dispatcher
	closers    []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg *config.Config, log *slog.Logger,
) (repo.Backend, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		log.LogAttrs(ctx, slog.LevelWarn, "memory storage is not persistent")
		return repo.NewMemoryBackend(), func() {}, nil

	case config.StorageFile:
		b, err := repo.NewFileBackend(cfg.DataDir, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open data dir: %w", err)
		}
		return b, func() {}, nil

	case config.StoragePostgres:
		dbManager := dbmanager.New(cfg.DatabaseURI, log).
			Connect(ctx).
			ApplyMigrations(ctx).
			Ping(ctx)
		if err := dbManager.Error(); err != nil {
			dbManager.Close()
			return nil, nil, fmt.Errorf("db connection error: %w", err)
		}
		pool, err := dbManager.GetPool(ctx)
		if err != nil {
			dbManager.Close()
			return nil, nil, fmt.Errorf("failed to get DB pool: %w", err)
		}
		return repo.NewPGBackend(pool, log), dbManager.Close, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		closeClient := func() {
			if err := client.Close(); err != nil {
				log.LogAttrs(context.Background(), slog.LevelError,
					"failed to close redis client",
					slog.Any(model.KeyLoggerError, err))
			}
		}
		b := repo.NewRedisBackend(client, cfg.RedisPrefix, log)
		if err := b.Ping(ctx); err != nil {
			closeClient()
			return nil, nil, fmt.Errorf("redis connection error: %w", err)
		}
		return b, closeClient, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

func initService(log *slog.Logger, cfg *config.Config) (*app, error) {
	a := &app{log: log}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	backend, closeBackend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeBackend)

	m := metrics.New()
	notificationService := notifications.New(repo.NewNotificationRepository(backend, log), log)

	sinks := []dispatcher.Sink{dispatcher.NewStoreSink(notificationService)}
	if cfg.NotifyWebhookURL != "" {
		sinks = append(sinks, dispatcher.NewWebhookSink(cfg.NotifyWebhookURL, log))
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := dispatcher.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		sinks = append(sinks, kafkaSink)
		a.closers = append(a.closers, func() {
			if err := kafkaSink.Close(); err != nil {
				log.LogAttrs(context.Background(), slog.LevelError,
					"failed to close kafka writer",
					slog.Any(model.KeyLoggerError, err))
			}
		})
	}
	a.dispatcher = dispatcher.New(dispatcher.Config{
		Workers:         cfg.NotifyWorkers,
		QueueSize:       cfg.NotifyQueueSize,
		MaxDeliveries:   cfg.NotifyMaxDeliveries,
		DeliveryTimeout: cfg.NotifyTimeout,
	}, log, sinks, dispatcher.WithObserver(m))

	coinService := coins.New(repo.NewLedgerRepository(backend, log), log,
		coins.WithNotifier(a.dispatcher),
		coins.WithObserver(m),
	)

	rr := router.New(cfg, log)
	rr.SetMetrics(m)
	rr.SetRouter(&struct {
		*handlers.CoinHandler
		*handlers.AdminHandler
		*handlers.NotificationHandler
		*handlers.HealthHandler
	}{
		CoinHandler: handlers.NewCoinHandler(coinService, log),
		AdminHandler: handlers.NewAdminHandler(coinService, log,
			cfg.SecretKey, cfg.AdminLogin, cfg.AdminPassword),
		NotificationHandler: handlers.NewNotificationHandler(notificationService, log),
		HealthHandler:       handlers.NewHealthHandler(backend, log),
	})

	a.server = &http.Server{
		Addr:              cfg.RunAddr,
		Handler:           rr.GetRouter(),
		ReadHeaderTimeout: connectTimeout,
	}
	return a, nil
}

func (a *app) run(ctx context.Context) error {
	deliveryCtx, stopDeliveries := context.WithCancel(context.Background())
	defer stopDeliveries()
	a.dispatcher.Start(deliveryCtx)

	serveErr := make(chan error, 1)
	go func() {
		a.log.LogAttrs(ctx, slog.LevelInfo, "server started",
			slog.String("address", a.server.Addr))
		serveErr <- a.server.ListenAndServe()
	}()

	var err error
	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		a.log.LogAttrs(context.Background(), slog.LevelInfo, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err = a.server.Shutdown(shutdownCtx)
		cancel()
	}

	// Gifts credited by in-flight requests are still queued at this point.
	a.dispatcher.Stop()
	return err
}

func RunServer() {
	cfg := config.NewBuilder(slog.Default()).
		FromDotEnv(".env").
		FromEnv().
		FromFlags().
		CheckAdminPassword().
		GetConfig()

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Default().LogAttrs(context.Background(), slog.LevelWarn,
			"unknown log level, using info",
			slog.Any(model.KeyLoggerError, err))
	}
	log := logger.New(level)
	slog.SetDefault(log)

	if err = cfg.Validate(); err != nil {
		log.LogAttrs(context.Background(), slog.LevelError,
			"invalid configuration",
			slog.Any(model.KeyLoggerError, err))
		os.Exit(1)
	}

	a, err := initService(log, cfg)
	if err != nil {
		log.LogAttrs(context.Background(), slog.LevelError,
			"failed to init service",
			slog.Any(model.KeyLoggerError, err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = a.run(ctx)
	stop()
	a.close()
	if err != nil {
		log.LogAttrs(context.Background(), slog.LevelError,
			"listen and serve error",
			slog.Any(model.KeyLoggerError, err))
		os.Exit(1)
	}
}
