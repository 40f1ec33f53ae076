package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/amaumene/zoetrope/internal/api"
	"github.com/amaumene/zoetrope/internal/config"
	"github.com/amaumene/zoetrope/internal/controllers"
	"github.com/amaumene/zoetrope/internal/metrics"
	"github.com/amaumene/zoetrope/internal/models"
	"github.com/amaumene/zoetrope/internal/scheduler"
	"github.com/amaumene/zoetrope/internal/services/tmdb"
	"github.com/amaumene/zoetrope/internal/telemetry"
	"github.com/amaumene/zoetrope/internal/utils"
)

// InfraSet provides logging, storage, metrics and tracing
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideStore,
	ProvideRegistry,
	ProvideTracerProvider,
	ProvideClock,
	metrics.NewCollector,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	wire.Bind(new(metrics.Recorder), new(*metrics.Collector)),
)

// ServiceSet provides the external service clients
var ServiceSet = wire.NewSet(
	ProvideTMDBClient,
	ProvideBlocklist,
	wire.Bind(new(controllers.TMDBClient), new(*tmdb.Client)),
)

// ControllerSet provides the controllers and everything built on them
var ControllerSet = wire.NewSet(
	controllers.NewCollectionController,
	controllers.NewDashboardController,
	controllers.NewSearchController,
	controllers.NewInboxController,
	wire.Struct(new(api.Controllers), "*"),
	api.NewServer,
	scheduler.NewScheduler,
	wire.Bind(new(scheduler.InboxJobs), new(*controllers.InboxController)),
	wire.Bind(new(scheduler.GaugeRefresher), new(*controllers.CollectionController)),
	wire.Struct(new(App), "*"),
)

// ProvideLogger builds the process logger from config
func ProvideLogger(cfg *config.Config) *logrus.Logger {
	return utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
}

// ProvideStore opens the configured store and closes it on cleanup
func ProvideStore(cfg *config.Config, logger *logrus.Logger) (models.Store, func(), error) {
	store, err := models.Open(cfg.StoreDriver, cfg.DatabaseFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"driver": cfg.StoreDriver,
		"path":   cfg.DatabaseFile,
	}).Info("Database initialized")

	return store, func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Error("Failed to close database")
		}
	}, nil
}

// ProvideRegistry creates the Prometheus registry with process and Go runtime collectors
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideTracerProvider installs the global tracer provider and flushes it on cleanup
func ProvideTracerProvider(cfg *config.Config, logger *logrus.Logger) (trace.TracerProvider, func()) {
	tp, shutdown := telemetry.Setup(cfg.TracingEnabled, logger)
	return tp, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.WithError(err).Warn("Failed to flush traces")
		}
	}
}

// ProvideClock returns the wall clock
func ProvideClock() controllers.Clock {
	return time.Now
}

// ProvideTMDBClient builds the TMDB client and reports its round trips to metrics
func ProvideTMDBClient(cfg *config.Config, recorder metrics.Recorder, logger *logrus.Logger) *tmdb.Client {
	client := tmdb.NewClient(cfg, logger)
	client.SetObserver(recorder.RecordTMDBRequest)
	if !client.Enabled() {
		logger.Warn("TMDB_API_KEY not set, TMDB search and enrichment are disabled")
	}
	return client
}

// ProvideBlocklist loads the inbox blocklist; a broken file only disables filtering
func ProvideBlocklist(cfg *config.Config, logger *logrus.Logger) *utils.Blocklist {
	blocklist, err := utils.LoadBlocklist(cfg.BlocklistFile)
	if err != nil {
		logger.WithError(err).Warn("Failed to load blocklist, continuing without it")
		return utils.NewBlocklist()
	}
	logger.WithField("terms", blocklist.Len()).Info("Blocklist loaded")
	return blocklist
}
