package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/wso2/consent-intake-api/internal/intake"
	"github.com/wso2/consent-intake-api/internal/router"
	"github.com/wso2/consent-intake-api/internal/storage/blobstore"
	"github.com/wso2/consent-intake-api/internal/storage/documentstore"
	"github.com/wso2/consent-intake-api/internal/system/config"
	"github.com/wso2/consent-intake-api/internal/watermark"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var blobOpts []blobstore.S3StoreOptionFunc
	if cfg.Metrics.Enabled {
		blobOpts = append(blobOpts, blobstore.WithPromRegistry(registry))
	}
	blobs, err := blobstore.NewS3Store(ctx, &cfg.Storage.Blob, logger, blobOpts...)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize blob store")
	}

	records, closeRecords, err := newDocumentStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize document store")
	}
	defer closeRecords()

	watermarker := watermark.NewClient(&cfg.Watermark, logger)
	service := intake.NewIngestionService(records, blobs, watermarker, logger)
	handler := intake.NewSubmissionHandler(service, logger)

	engine := router.New(cfg, handler, registry, logger)

	server := &http.Server{
		Addr:         cfg.Server.GetServerAddress(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.WithField("address", server.Addr).Info("Starting consent intake server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("Server stopped")
}

// newDocumentStore builds the record store backend selected in configuration.
// The returned closer releases backend resources on shutdown.
func newDocumentStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (documentstore.Store, func(), error) {
	switch cfg.Storage.Document.Type {
	case "mysql":
		store, err := documentstore.NewMySQLStore(&cfg.Storage.Document, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := store.HealthCheck(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		store, err := documentstore.NewDynamoStore(ctx, &cfg.Storage.Document, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
