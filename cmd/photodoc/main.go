package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photodoc/internal/camera"
	"photodoc/internal/capture"
	"photodoc/internal/config"
	"photodoc/internal/geo"
	"photodoc/internal/handlers"
	"photodoc/internal/jobs"
	"photodoc/internal/log"
	"photodoc/internal/queue"
	"photodoc/internal/server"
	"photodoc/internal/service"
	"photodoc/internal/store"
	"photodoc/internal/tasks"
	"photodoc/internal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)
	ctx := context.Background()

	repo, err := store.NewSQLiteRepository(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open metadata store")
	}

	photoStore := store.New(repo, logger)
	if err := photoStore.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to load photo catalog")
	}

	driver := buildDriver(cfg)
	tagger := buildGeoTagger(cfg, logger)
	uploader := buildUploader(ctx, cfg, logger)

	var redisClient *redis.Client
	var producer *queue.Producer
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		producer = queue.NewProducer(redisClient, cfg.Redis.Stream)
	}

	var enqueuer capture.Enqueuer
	if producer != nil {
		enqueuer = producer
	}
	svc := service.New(ctx, driver, tagger, photoStore, enqueuer, cfg.Capture, logger)

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if redisClient != nil && uploader != nil {
		processor := tasks.NewProcessor(photoStore, uploader, logger)
		consumer := queue.NewConsumer(
			redisClient,
			cfg.Redis.Stream,
			cfg.Redis.Group,
			cfg.Redis.Consumer,
			cfg.Redis.ClaimInterval,
			logger,
			processor,
		)
		if err := consumer.EnsureGroup(ctx); err != nil {
			logger.Fatal().Err(err).Msg("consumer group setup failed")
		}
		go func() {
			if err := consumer.Start(consumerCtx); err != nil && err != context.Canceled {
				logger.Error().Err(err).Msg("upload consumer stopped unexpectedly")
			}
		}()
	}

	scheduler := jobs.NewScheduler(svc.RetentionManager(), cfg.Retention.DaysToKeep, cfg.Retention.CronSpec, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, svc, repo, uploader)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, svc, repo, redisClient, stopConsumer)
}

func buildDriver(cfg *config.AppConfig) camera.Driver {
	if cfg.Camera.Virtual {
		return camera.NewVirtualDriver(cfg.Camera.VirtualWidth, cfg.Camera.VirtualHeight)
	}
	// Hardware builds register a platform driver here; without one the probe
	// degrades to no camera.
	return nil
}

func buildGeoTagger(cfg *config.AppConfig, logger zerolog.Logger) *geo.GeoTagger {
	var locator geo.Locator
	if cfg.Geo.StaticEnabled {
		locator = geo.StaticLocator{
			Latitude:  cfg.Geo.StaticLatitude,
			Longitude: cfg.Geo.StaticLongitude,
			Accuracy:  cfg.Geo.StaticAccuracy,
		}
	}
	var geocoder geo.Geocoder
	if cfg.Geo.GeocodeURL != "" {
		geocoder = geo.NewHTTPGeocoder(cfg.Geo.GeocodeURL)
	}
	return geo.NewGeoTagger(locator, geocoder, cfg.Geo.LocationTimeout, cfg.Geo.GeocodeTimeout, cfg.Geo.FixMaxAge, logger)
}

func buildUploader(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) upload.Uploader {
	if cfg.Storage.UploadURL != "" {
		return upload.NewHTTPUploader(cfg.Storage.UploadURL, logger)
	}
	if cfg.Storage.Endpoint == "" {
		return nil
	}
	uploader, err := upload.NewObjectStoreUploader(cfg.Storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store uploader")
	}
	if err := uploader.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}
	return uploader
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, svc *service.Service, repo *store.SQLiteRepository, redisClient *redis.Client, stopConsumer context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	stopConsumer()
	scheduler.Stop()

	svc.StopCamera()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}
	if err := repo.Close(); err != nil {
		logger.Error().Err(err).Msg("metadata store close error")
	}

	logger.Info().Msg("server exited cleanly")
}
