package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/subscriptions/internal/health"
	"github.com/vladislavdragonenkov/subscriptions/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/subscriptions/internal/platform"
	"github.com/vladislavdragonenkov/subscriptions/internal/service/gateway"
	"github.com/vladislavdragonenkov/subscriptions/internal/service/outbox"
	"github.com/vladislavdragonenkov/subscriptions/internal/storage/memory"
	"github.com/vladislavdragonenkov/subscriptions/internal/storage/postgres"
	"github.com/vladislavdragonenkov/subscriptions/internal/storage/rediscache"
)

// runtimeDependencies — инфраструктура, собранная по конфигурации.
type runtimeDependencies struct {
	orders        platform.Repository
	subscriptions domain.SubscriptionStore
	catalog       domain.RecurrenceCatalogStore
	outbox        domain.OutboxRepository
	publisher     domain.OutboxPublisher
	dlqPublisher  domain.OutboxPublisher
	gateway       domain.PaymentGateway
	checks        map[string]healthcheck.Checker

	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

func (d *runtimeDependencies) onClose(name string, fn func() error) {
	d.closers = append(d.closers, namedCloser{name: name, close: fn})
}

// Close освобождает ресурсы в обратном порядке создания.
func (d *runtimeDependencies) Close(logger *log.Entry) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		c := d.closers[i]
		if err := c.close(); err != nil {
			logger.WithError(err).WithField("resource", c.name).Warn("failed to close resource")
			continue
		}
		logger.WithField("resource", c.name).Info("resource closed")
	}
	d.closers = nil
}

// initRuntimeDependencies собирает хранилище, кэш каталога, публикатор outbox и шлюз.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	deps := &runtimeDependencies{checks: make(map[string]healthcheck.Checker)}

	if err := initStorage(ctx, cfg, logger, deps); err != nil {
		deps.Close(logger)
		return nil, err
	}
	initCatalogCache(cfg, logger, deps)
	initPublishers(cfg, logger, deps)

	if err := initGateway(cfg, logger, deps); err != nil {
		deps.Close(logger)
		return nil, err
	}
	return deps, nil
}

func initStorage(ctx context.Context, cfg Config, logger *log.Entry, deps *runtimeDependencies) error {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		deps.orders = memory.NewPlatformOrderRepository()
		deps.subscriptions = memory.NewSubscriptionRepository()
		deps.catalog = memory.NewRecurrenceCatalog()
		deps.outbox = memory.NewOutboxRepository()
		logger.Info("using in-memory storage")
		return nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return errors.New("postgres storage requires dsn")
		}
		pool := postgres.DefaultPoolConfig()
		pool.MaxOpenConns = cfg.PostgresMaxConns
		store, err := postgres.OpenWithPool(ctx, cfg.PostgresDSN, pool)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		deps.onClose("postgres", store.Close)

		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("migrate postgres: %w", err)
			}
		}

		deps.orders = postgres.NewPlatformOrderRepository(store)
		deps.subscriptions = postgres.NewSubscriptionRepository(store)
		deps.catalog = postgres.NewRecurrenceCatalog(store)
		deps.outbox = postgres.NewOutboxRepository(store)
		deps.checks["postgres"] = healthcheck.NewPingChecker("postgres", store)
		logger.Info("using postgres storage")
		return nil

	default:
		return fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// initCatalogCache включает Redis-кэш каталога, если задан адрес.
func initCatalogCache(cfg Config, logger *log.Entry, deps *runtimeDependencies) {
	if cfg.RedisAddr == "" {
		return
	}
	client := rediscache.NewClient(cfg.RedisAddr)
	cache := rediscache.NewCatalogCache(deps.catalog, client,
		rediscache.WithTTL(cfg.CatalogCacheTTL),
		rediscache.WithLogger(logger.WithField("component", "catalog-cache")),
	)
	deps.catalog = cache
	deps.checks["redis"] = healthcheck.NewOptionalPingChecker("redis", cache)
	deps.onClose("redis", client.Close)
	logger.WithField("addr", cfg.RedisAddr).Info("recurrence catalog cache enabled")
}

// initPublishers выбирает Kafka или публикацию в журнал, если Kafka не настроена или недоступна.
func initPublishers(cfg Config, logger *log.Entry, deps *runtimeDependencies) {
	producer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil || producer == nil {
		deps.publisher = outbox.NewLogPublisher(logger.WithField("component", "outbox-log-publisher"))
		return
	}
	deps.onClose("kafka", producer.Close)
	deps.publisher = kafka.NewOutboxPublisher(producer)
	dlqTopic := cfg.KafkaDLQTopic
	if dlqTopic == "" {
		dlqTopic = kafka.TopicDeadLetterQueue
	}
	deps.dlqPublisher = kafka.NewTopicPublisher(producer, dlqTopic)
}

// initKafkaProducer возвращает nil, nil при пустом списке брокеров.
func initKafkaProducer(brokers []string, logger *log.Entry) (*kafka.Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokers, logger.WithField("component", "kafka-producer"))
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}
	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer, nil
}

func initGateway(cfg Config, logger *log.Entry, deps *runtimeDependencies) error {
	if cfg.GatewayBaseURL == "" {
		logger.Warn("gateway base url is not set, using mock payment gateway")
		deps.gateway = gateway.NewMockGateway()
		return nil
	}

	client, err := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewaySecretKey,
		gateway.WithTimeout(cfg.GatewayTimeout),
		gateway.WithLogger(logger.WithField("component", "gateway-client")),
	)
	if err != nil {
		return fmt.Errorf("init gateway client: %w", err)
	}
	deps.gateway = client
	return nil
}
