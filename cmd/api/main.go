package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nyumbalink/listings-backend/api/routes"
	"github.com/nyumbalink/listings-backend/internal/listings"
	"github.com/nyumbalink/listings-backend/internal/media"
	"github.com/nyumbalink/listings-backend/internal/pages"
	"github.com/nyumbalink/listings-backend/internal/users"
	"github.com/nyumbalink/listings-backend/pkg/config"
	"github.com/nyumbalink/listings-backend/pkg/db"
	"github.com/nyumbalink/listings-backend/pkg/logger"
	"github.com/nyumbalink/listings-backend/pkg/metrics"
	"github.com/nyumbalink/listings-backend/pkg/migrate"
	"github.com/nyumbalink/listings-backend/pkg/redis"
	"github.com/nyumbalink/listings-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	maxUploadBytes := int64(cfg.Media.MaxUploadMB) << 20
	mediaMetrics := metrics.NewMediaMetrics(prometheus.DefaultRegisterer)

	mediaService, err := media.NewService(
		media.NewRepository(dbClient.DB()),
		gcsClient,
		cfg.GCS.BucketName,
		maxUploadBytes,
		mediaMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	listingService, err := listings.NewService(
		listings.NewRepository(dbClient.DB()),
		dbClient,
		mediaService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create listing service", err)
		os.Exit(1)
	}

	pageService, err := pages.NewService(pages.NewRepository(dbClient.DB()), mediaService)
	if err != nil {
		logg.Error(context.Background(), "failed to create page service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			listingService,
			mediaService,
			pageService,
			userService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
