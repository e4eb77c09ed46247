package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/ims/internal/health"
	"github.com/vladislavdragonenkov/ims/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ims/internal/metrics"
	"github.com/vladislavdragonenkov/ims/internal/service/customer"
	"github.com/vladislavdragonenkov/ims/internal/service/order"
	"github.com/vladislavdragonenkov/ims/internal/service/outbox"
	"github.com/vladislavdragonenkov/ims/internal/service/rest"
	"github.com/vladislavdragonenkov/ims/internal/service/stock"
	"github.com/vladislavdragonenkov/ims/internal/version"
)

// Run собирает зависимости и запускает сервис: HTTP API, сервер метрик
// и outbox worker. Блокируется до отмены ctx или фатальной ошибки сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	orderMetrics := metrics.NewOrderMetrics()

	customerSvc := customer.NewService(deps.customers, logger.WithField("layer", "customer"))
	stockSvc := stock.NewService(deps.items, logger.WithField("layer", "stock"), orderMetrics)
	orderSvc := order.NewService(
		deps.customers,
		deps.items,
		deps.orders,
		stockSvc,
		deps.outbox,
		logger.WithField("layer", "order"),
		orderMetrics,
	)

	// Kafka и outbox worker поднимаются только при заданных brokers:
	// без брокера события остаются pending в outbox, сервис продолжает работать.
	kafkaProducer, kafkaErr := initKafkaProducer(cfg.KafkaBrokers, logger)
	if kafkaErr != nil {
		logger.WithError(kafkaErr).Warn("starting without kafka")
	}
	defer closeKafka(kafkaProducer, logger)

	var workerWG sync.WaitGroup
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, cfg.KafkaOrderTopic)
		worker := outbox.NewWorker(
			deps.outbox,
			publisher,
			outbox.WithLogger(logger.WithField("layer", "outbox")),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			worker.Run(workerCtx)
		}()
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", deps.store.Ping))
	}

	router := rest.NewRouter(customerSvc, stockSvc, orderSvc, logger.WithField("layer", "rest"))
	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	metricsSrv := newMetricsServer(cfg.MetricsAddr, healthHandler)

	errCh := make(chan error, 2)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", cfg.MetricsAddr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", cfg.MetricsAddr, cfg.MetricsAddr, cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем сервис")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		stopWorker()
		workerWG.Wait()
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		stopWorker()
		workerWG.Wait()
		return err
	}
}

// newMetricsServer собирает HTTP-сервер с /metrics и health-проверками.
func newMetricsServer(addr string, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	return &http.Server{Addr: addr, Handler: mux}
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
