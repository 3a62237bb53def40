// Package app собирает сервис подписок: HTTP API, gRPC health, метрики и outbox worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	healthcheck "github.com/vladislavdragonenkov/subscriptions/internal/health"
	"github.com/vladislavdragonenkov/subscriptions/internal/i18n"
	"github.com/vladislavdragonenkov/subscriptions/internal/metrics"
	"github.com/vladislavdragonenkov/subscriptions/internal/platform"
	"github.com/vladislavdragonenkov/subscriptions/internal/service/orderlog"
	"github.com/vladislavdragonenkov/subscriptions/internal/service/outbox"
	"github.com/vladislavdragonenkov/subscriptions/internal/service/recurrence"
	"github.com/vladislavdragonenkov/subscriptions/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/subscriptions/internal/version"
)

const (
	// grpcHealthService: имя сервиса в gRPC health для проб оркестратора.
	grpcHealthService = "subscriptions"
	shutdownTimeout   = 5 * time.Second
)

// Run запускает сервис и блокируется до отмены ctx или ошибки одного из серверов.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	logger.WithFields(log.Fields(version.Fields())).Info("starting subscription service")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close(logger)

	subscriptionMetrics := metrics.NewSubscriptionMetrics()
	outboxMetrics := metrics.NewOutboxMetrics()

	service, err := newSubscriptionService(cfg, deps, logger, subscriptionMetrics)
	if err != nil {
		return err
	}

	workerOpts := []outbox.Option{
		outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		outbox.WithMetrics(outboxMetrics),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	}
	if deps.dlqPublisher != nil {
		workerOpts = append(workerOpts, outbox.WithDLQPublisher(deps.dlqPublisher))
	}
	worker := outbox.NewWorker(deps.outbox, deps.publisher, workerOpts...)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	for name, checker := range deps.checks {
		healthHandler.RegisterChecker(name, checker)
	}

	apiHandler := httpapi.NewHandler(service, deps.orders, deps.catalog, logger.WithField("component", "http-api"))
	apiServer := &http.Server{
		Handler:           httpapi.NewRouter(apiHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsServer := &http.Server{
		Handler:           newMetricsMux(healthHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcServer, grpcHealth := newGRPCServer()

	apiLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
	}
	metricsLis, err := net.Listen("tcp", cfg.MetricsAddr)
	if err != nil {
		_ = apiLis.Close()
		return fmt.Errorf("listen metrics %s: %w", cfg.MetricsAddr, err)
	}
	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		_ = apiLis.Close()
		_ = metricsLis.Close()
		return fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("HTTP API слушает %s", apiLis.Addr())
		return serveHTTP(apiServer, apiLis)
	})
	g.Go(func() error {
		logger.Infof("метрики доступны по адресу %s/metrics", metricsLis.Addr())
		return serveHTTP(metricsServer, metricsLis)
	})
	g.Go(func() error {
		logger.Infof("gRPC health сервер слушает %s", grpcLis.Addr())
		if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("получен сигнал остановки, останавливаем серверы")
		grpcHealth.Shutdown()
		stopGRPC(grpcServer, logger)
		shutdownHTTP(apiServer, logger)
		shutdownHTTP(metricsServer, logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// newSubscriptionService собирает оркестратор подписок из инфраструктуры.
func newSubscriptionService(cfg Config, deps *runtimeDependencies, logger *log.Entry, m *metrics.SubscriptionMetrics) (*recurrence.Service, error) {
	serviceLogger := logger.WithField("component", "recurrence")
	return recurrence.NewService(recurrence.Dependencies{
		Extractor:   platform.NewExtractor(deps.catalog, logger.WithField("component", "order-extractor")),
		Gateway:     deps.gateway,
		Store:       deps.subscriptions,
		Config:      cfg,
		Outbox:      deps.outbox,
		Localizer:   i18n.NewLocalizer(cfg.Locale),
		OrderLogger: orderlog.New(logger.WithField("component", "order-log")),
	},
		recurrence.WithLogger(serviceLogger),
		recurrence.WithMetrics(m),
		recurrence.WithCancelErrorCode(cfg.CancelErrorCode),
	)
}

// newGRPCServer поднимает gRPC с health и reflection и метриками go-grpc-prometheus.
// Метрики пишутся в DefaultServerMetrics: их векторы уже зарегистрированы
// в prometheus.DefaultRegisterer и отдаются через /metrics.
func newGRPCServer() (*grpc.Server, *health.Server) {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(promgrpc.UnaryServerInterceptor),
		grpc.ChainStreamInterceptor(promgrpc.StreamServerInterceptor),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(grpcHealthService, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(server)
	promgrpc.Register(server)
	return server, healthServer
}

// newMetricsMux отдаёт служебные /metrics, /healthz, /livez и /readyz.
func newMetricsMux(healthHandler *healthcheck.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	return mux
}

func serveHTTP(srv *http.Server, lis net.Listener) error {
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func stopGRPC(server *grpc.Server, logger *log.Entry) {
	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		server.Stop()
	}
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
