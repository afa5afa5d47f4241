package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	config "github.com/s3dt-tech/catalog-backend/internal/cfg"
	v1Http "github.com/s3dt-tech/catalog-backend/internal/delivery/v1/http"
	"github.com/s3dt-tech/catalog-backend/internal/export"
	"github.com/s3dt-tech/catalog-backend/internal/feed"
	"github.com/s3dt-tech/catalog-backend/internal/infrastructure/kafka"
	s3Repo "github.com/s3dt-tech/catalog-backend/internal/repository/minio"
	"github.com/s3dt-tech/catalog-backend/internal/repository/pgdb"
	pgdbConv "github.com/s3dt-tech/catalog-backend/internal/repository/pgdb/converter"
	redisRepo "github.com/s3dt-tech/catalog-backend/internal/repository/redis"
	"github.com/s3dt-tech/catalog-backend/internal/transform"
	"github.com/s3dt-tech/catalog-backend/internal/usecase"
	"github.com/s3dt-tech/catalog-backend/pkg/clients"
	"github.com/s3dt-tech/catalog-backend/pkg/closer"
	"github.com/s3dt-tech/catalog-backend/pkg/logger"
	"github.com/s3dt-tech/catalog-backend/pkg/postgres"
)

func Run() {
	logger := logger.NewSlogLogger()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	appCloser := closer.NewCloser(15 * time.Second)

	db, err := initPGDB(logger, cfg)
	if err != nil {
		logger.Errorf(err, "failed to initialize database")
		os.Exit(1)
	}
	appCloser.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(redisCtx); err != nil {
		redisCancel()
		logger.Errorf(err, "failed to connect to redis")
		os.Exit(1)
	}
	redisCancel()

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		logger.Errorf(err, "failed to initialize minio client")
		os.Exit(1)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		minioCancel()
		logger.Errorf(err, "failed to initialize MinIO bucket")
		os.Exit(1)
	}
	minioCancel()

	conv := pgdbConv.NewCatalogConverter()
	catalogRepo := pgdb.NewCatalogRepo(db.Pool, conv)
	jobRepo := redisRepo.NewJobRepo(redisClient, cfg.Redis, logger)
	feedRepo := s3Repo.NewFeedRepo(minioClient, cfg.Minio)

	producer, err := kafka.NewProducer(logger, cfg.Kafka)
	if err != nil {
		logger.Errorf(err, "failed to initialize kafka producer")
		os.Exit(1)
	}
	appCloser.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		logger.Errorf(err, "failed to initialize kafka topic")
		os.Exit(1)
	}

	supplierClient := feed.NewSupplierClient(cfg.Supplier, logger)
	storefrontClient := feed.NewStorefrontClient(cfg.Storefront, logger)

	transformer := transform.NewTransformer(transform.Options{
		CategoryName:        cfg.Catalog.CategoryName,
		CategoryCode:        cfg.Catalog.CategoryCode,
		Currency:            cfg.Catalog.Currency,
		AvailabilityOnStock: cfg.Catalog.AvailabilityOnStock,
		AvailabilityNoStock: cfg.Catalog.AvailabilityNoStock,
		InvalidEANFallback:  cfg.Catalog.InvalidEANFallback,
	})

	exporter := export.NewExporter(export.Options{
		ReadyToShipLabel:   cfg.Catalog.ReadyToShipLabel,
		OutOfStockLeadTime: cfg.Catalog.OutOfStockLeadTime,
	})

	jobUC := usecase.NewJobUC(
		jobRepo,
		catalogRepo,
		producer,
		supplierClient,
		storefrontClient,
		transformer,
		cfg.Sync.ReportPeriod,
		logger,
	)

	exportUC := usecase.NewExportUC(catalogRepo, feedRepo, exporter, logger)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	worker := kafka.NewJobWorker(jobUC, logger, cfg.Kafka, cfg.Sync.Workers)
	worker.Start(workerCtx)
	appCloser.Add(func(ctx context.Context) error {
		workerCancel()
		worker.Stop()
		return nil
	})

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, logger)
	router.Init(jobUC, exportUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server started on port %s", cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(err, "HTTP server failed: %v", err)
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case appErr := <-errCh:
		logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Stop(shutdownCtx); err != nil {
		logger.Errorf(err, "HTTP server shutdown error")
	} else {
		logger.Infof("HTTP server stopped")
	}

	if err := appCloser.Close(shutdownCtx); err != nil {
		logger.Errorf(err, "graceful shutdown finished with errors")
	} else {
		logger.Infof("Application stopped")
	}
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
