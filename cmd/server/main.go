// Command server runs the DWD warnings proxy: it accepts a GeoJSON area of
// interest, queries the DWD WFS for warning polygons intersecting its
// bounding box, and returns a normalized GeoJSON FeatureCollection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/datatales/dwd-warnings-service/internal/adapter/http"
	kafkaadapter "github.com/datatales/dwd-warnings-service/internal/adapter/kafka"
	"github.com/datatales/dwd-warnings-service/internal/adapter/wfs"
	"github.com/datatales/dwd-warnings-service/internal/config"
	"github.com/datatales/dwd-warnings-service/internal/domain"
	"github.com/datatales/dwd-warnings-service/internal/observability"
	"github.com/datatales/dwd-warnings-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	normalizer, err := domain.NewNormalizer(cfg.LocalTZ)
	if err != nil {
		// Zone database missing: display times fall back to ISO form.
		logger.Warn("time zone unavailable, using ISO timestamps", "zone", cfg.LocalTZ, "error", err)
	}

	client := wfs.NewClient(cfg, metrics, logger)
	source := wfs.NewCachedSource(client, cfg.CacheTTL, cfg.CacheCapacity, clockwork.NewRealClock(), metrics, logger)

	// Fan-out is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("kafka fan-out enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka fan-out disabled")
	}

	p := pipeline.New(source, normalizer, publisher, cfg, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("dwd warnings proxy started",
		"endpoint", cfg.WFSBaseURL,
		"type_name", cfg.TypeName,
		"cache_ttl", cfg.CacheTTL,
		"cache_capacity", cfg.CacheCapacity,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
