package config

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	passwordvalidator "github.com/wagslane/go-password-validator"

	"github.com/talx-hub/coinledger/internal/model"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

const minAdminPasswordEntropy = 60

type Config struct {
	RunAddr          string   `env:"RUN_ADDRESS"        envDefault:"localhost:8080"`
	StorageBackend   string   `env:"STORAGE_BACKEND"    envDefault:"file"`
	DataDir          string   `env:"DATA_DIR"           envDefault:"./data"`
	DatabaseURI      string   `env:"DATABASE_URI"       envDefault:""`
	RedisAddr        string   `env:"REDIS_ADDR"         envDefault:"localhost:6379"`
	RedisPassword    string   `env:"REDIS_PASSWORD"     envDefault:""`
	RedisPrefix      string   `env:"REDIS_PREFIX"       envDefault:"coinledger:"`
	SecretKey        string   `env:"SECRET_KEY"         envDefault:""`
	AdminLogin       string   `env:"ADMIN_LOGIN"        envDefault:"admin"`
	AdminPassword    string   `env:"ADMIN_PASSWORD"     envDefault:""`
	LogLevel         string   `env:"LOG_LEVEL"          envDefault:"info"`
	NotifyWebhookURL string   `env:"NOTIFY_WEBHOOK_URL" envDefault:""`
	KafkaTopic       string   `env:"KAFKA_TOPIC"        envDefault:"coin-notifications"`
	KafkaBrokers     []string `env:"KAFKA_BROKERS"      envSeparator:","`
	CORSOrigins      []string `env:"CORS_ORIGINS"       envDefault:"*" envSeparator:","`
	RedisDB          int      `env:"REDIS_DB"           envDefault:"0"`
	NotifyWorkers    int      `env:"NOTIFY_WORKERS"     envDefault:"4"`
	NotifyQueueSize  int      `env:"NOTIFY_QUEUE_SIZE"  envDefault:"256"`

	// NotifyMaxDeliveries caps sink calls in flight across all workers.
	NotifyMaxDeliveries uint64        `env:"NOTIFY_MAX_DELIVERIES"   envDefault:"16"`
	NotifyTimeout       time.Duration `env:"NOTIFY_DELIVERY_TIMEOUT" envDefault:"500ms"`
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.StorageBackend {
	case StorageFile:
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required for file storage"))
		}
	case StoragePostgres:
		if c.DatabaseURI == "" {
			errs = append(errs, errors.New("DATABASE_URI is required for postgres storage"))
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for redis storage"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.NotifyWorkers <= 0 {
		errs = append(errs, fmt.Errorf("NOTIFY_WORKERS must be positive, got %d", c.NotifyWorkers))
	}
	if c.NotifyQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("NOTIFY_QUEUE_SIZE must be positive, got %d", c.NotifyQueueSize))
	}
	if c.NotifyMaxDeliveries == 0 {
		errs = append(errs, errors.New("NOTIFY_MAX_DELIVERIES must be positive"))
	}
	if c.NotifyTimeout <= 0 {
		errs = append(errs, fmt.Errorf("NOTIFY_DELIVERY_TIMEOUT must be positive, got %s", c.NotifyTimeout))
	}
	return errors.Join(errs...)
}

type Builder struct {
	cfg *Config
	log *slog.Logger
}

func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{
		cfg: &Config{},
		log: log,
	}
}

// FromDotEnv loads variables from the given files into the process
// environment. Variables that are already set win. Missing files are skipped.
func (b *Builder) FromDotEnv(files ...string) *Builder {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			b.log.LogAttrs(context.Background(),
				slog.LevelError, "Failed to load env file",
				slog.String("file", f),
				slog.Any(model.KeyLoggerError, err))
		}
	}
	return b
}

func (b *Builder) FromEnv() *Builder {
	if err := env.Parse(b.cfg); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse config", slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) FromFlags() *Builder {
	return b.FromArgs(flag.CommandLine, os.Args[1:])
}

func (b *Builder) FromArgs(fs *flag.FlagSet, args []string) *Builder {
	var kafkaBrokers, corsOrigins string

	fs.StringVar(&b.cfg.RunAddr, "a", b.cfg.RunAddr, "Run address")
	fs.StringVar(&b.cfg.StorageBackend, "s", b.cfg.StorageBackend,
		"Storage backend: file, postgres, redis or memory")
	fs.StringVar(&b.cfg.DataDir, "f", b.cfg.DataDir, "Data directory for file storage")
	fs.StringVar(&b.cfg.DatabaseURI, "d", b.cfg.DatabaseURI, "Database URI")
	fs.StringVar(&b.cfg.RedisAddr, "redis", b.cfg.RedisAddr, "Redis address")
	fs.StringVar(&b.cfg.SecretKey, "k", b.cfg.SecretKey, "Secret key")
	fs.StringVar(&b.cfg.LogLevel, "l", b.cfg.LogLevel, "Log level")
	fs.StringVar(&b.cfg.NotifyWebhookURL, "webhook", b.cfg.NotifyWebhookURL,
		"Notification webhook URL")
	fs.StringVar(&kafkaBrokers, "kafka", strings.Join(b.cfg.KafkaBrokers, ","),
		"Comma separated Kafka brokers")
	fs.StringVar(&b.cfg.KafkaTopic, "topic", b.cfg.KafkaTopic, "Kafka topic")
	fs.StringVar(&corsOrigins, "cors", strings.Join(b.cfg.CORSOrigins, ","),
		"Comma separated allowed CORS origins")
	fs.IntVar(&b.cfg.NotifyWorkers, "w", b.cfg.NotifyWorkers, "Notification workers")
	fs.IntVar(&b.cfg.NotifyQueueSize, "q", b.cfg.NotifyQueueSize, "Notification queue size")
	fs.Uint64Var(&b.cfg.NotifyMaxDeliveries, "deliveries", b.cfg.NotifyMaxDeliveries,
		"Maximum notification deliveries in flight")
	fs.DurationVar(&b.cfg.NotifyTimeout, "delivery-timeout", b.cfg.NotifyTimeout,
		"Timeout of a single notification delivery")

	if err := fs.Parse(args); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse flags", slog.Any(model.KeyLoggerError, err))
		return b
	}
	b.cfg.KafkaBrokers = splitList(kafkaBrokers)
	b.cfg.CORSOrigins = splitList(corsOrigins)
	return b
}

// CheckAdminPassword only warns: a weak demo password must not stop the service.
func (b *Builder) CheckAdminPassword() *Builder {
	if b.cfg.AdminPassword == "" {
		b.log.LogAttrs(context.Background(), slog.LevelWarn,
			"ADMIN_PASSWORD is empty, admin login is disabled")
		return b
	}
	err := passwordvalidator.Validate(b.cfg.AdminPassword, minAdminPasswordEntropy)
	if err != nil {
		b.log.LogAttrs(context.Background(), slog.LevelWarn,
			"admin password is weak",
			slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) GetConfig() *Config {
	return b.cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
