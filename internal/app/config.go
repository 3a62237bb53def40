package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

const envPrefix = "SUBS_"

// Драйверы хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска сервиса подписок. Значения по умолчанию
// задаёт DefaultConfig, переменные окружения SUBS_* их перекрывают.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR"`
	GRPCAddr    string `env:"GRPC_ADDR"`
	MetricsAddr string `env:"METRICS_ADDR"`

	StorageDriver       string `env:"STORAGE_DRIVER"`
	PostgresDSN         string `env:"POSTGRES_DSN"`
	PostgresAutoMigrate bool   `env:"POSTGRES_AUTO_MIGRATE"`
	PostgresMaxConns    int    `env:"POSTGRES_MAX_CONNS"`

	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaDLQTopic string   `env:"KAFKA_DLQ_TOPIC"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL"`

	// Пустой GatewayBaseURL включает MockGateway.
	GatewayBaseURL   string        `env:"GATEWAY_BASE_URL"`
	GatewaySecretKey string        `env:"GATEWAY_SECRET_KEY"`
	GatewayTimeout   time.Duration `env:"GATEWAY_TIMEOUT"`

	BoletoDays      int    `env:"BOLETO_DUE_DAYS"`
	CancelErrorCode int    `env:"CANCEL_ERROR_CODE"`
	Locale          string `env:"LOCALE"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE"`
	OutboxMaxAttempts  int           `env:"OUTBOX_MAX_ATTEMPTS"`
	OutboxRetryDelay   time.Duration `env:"OUTBOX_RETRY_DELAY"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`
}

// DefaultConfig возвращает настройки для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		PostgresMaxConns:    25,
		KafkaDLQTopic:       "subscriptions.dlq",
		CatalogCacheTTL:     10 * time.Minute,
		GatewayTimeout:      10 * time.Second,
		BoletoDays:          5,
		CancelErrorCode:     http.StatusOK,
		Locale:              "en",
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    50 * time.Millisecond,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// LoadConfig читает конфигурацию из окружения процесса.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{Prefix: envPrefix})
}

// LoadConfigFrom читает конфигурацию из переданного окружения. Ключи указываются с префиксом SUBS_.
func LoadConfigFrom(environment map[string]string) (Config, error) {
	return loadConfig(env.Options{Prefix: envPrefix, Environment: environment})
}

func loadConfig(opts env.Options) (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("config: %sPOSTGRES_DSN is required for postgres storage", envPrefix)
		}
	default:
		return fmt.Errorf("config: unsupported storage driver %q", c.StorageDriver)
	}
	if c.GatewayBaseURL != "" && c.GatewaySecretKey == "" {
		return fmt.Errorf("config: %sGATEWAY_SECRET_KEY is required with gateway base url", envPrefix)
	}
	if c.BoletoDays < 0 {
		return fmt.Errorf("config: boleto due days must not be negative")
	}
	if c.CancelErrorCode < 100 || c.CancelErrorCode > 599 {
		return fmt.Errorf("config: cancel error code %d is not an http status", c.CancelErrorCode)
	}
	return nil
}

// BoletoDueDays реализует domain.ConfigProvider.
func (c Config) BoletoDueDays() int {
	return c.BoletoDays
}

var _ domain.ConfigProvider = Config{}
