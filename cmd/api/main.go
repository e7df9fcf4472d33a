package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/hadeeqati/hadeeqati-backend/api/routes"
	"github.com/hadeeqati/hadeeqati-backend/internal/auth"
	"github.com/hadeeqati/hadeeqati-backend/internal/categories"
	"github.com/hadeeqati/hadeeqati-backend/internal/diagnoses"
	"github.com/hadeeqati/hadeeqati-backend/internal/media"
	"github.com/hadeeqati/hadeeqati-backend/internal/orders"
	"github.com/hadeeqati/hadeeqati-backend/internal/plants"
	"github.com/hadeeqati/hadeeqati-backend/internal/planttypes"
	"github.com/hadeeqati/hadeeqati-backend/internal/products"
	"github.com/hadeeqati/hadeeqati-backend/internal/reviews"
	"github.com/hadeeqati/hadeeqati-backend/internal/users"
	"github.com/hadeeqati/hadeeqati-backend/pkg/auth/session"
	"github.com/hadeeqati/hadeeqati-backend/pkg/config"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db"
	"github.com/hadeeqati/hadeeqati-backend/pkg/instance"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
	"github.com/hadeeqati/hadeeqati-backend/pkg/metrics"
	"github.com/hadeeqati/hadeeqati-backend/pkg/migrate"
	"github.com/hadeeqati/hadeeqati-backend/pkg/redis"
	"github.com/hadeeqati/hadeeqati-backend/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	domainMetrics := metrics.NewDomainMetrics(registry)

	diskStore, err := storage.NewDiskStore(cfg.Storage.UploadDir, cfg.Storage.PublicPath)
	requireResource(ctx, logg, "upload storage", err)
	mediaService, err := media.NewService(diskStore, cfg.Storage.MaxUploadBytes())
	requireResource(ctx, logg, "media service", err)

	userRepo := users.NewRepository(dbClient.DB())
	plantTypeRepo := planttypes.NewRepository(dbClient.DB())
	categoryRepo := categories.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	requireResource(ctx, logg, "auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	requireResource(ctx, logg, "register service", err)

	userService, err := users.NewService(userRepo)
	requireResource(ctx, logg, "users service", err)

	plantTypeService, err := planttypes.NewService(plantTypeRepo)
	requireResource(ctx, logg, "plant types service", err)

	plantService, err := plants.NewService(plants.ServiceParams{
		DB:         dbClient,
		PlantTypes: plantTypeRepo,
		Media:      mediaService,
		Metrics:    domainMetrics,
	})
	requireResource(ctx, logg, "plants service", err)

	diagnosisService, err := diagnoses.NewService(diagnoses.ServiceParams{
		DB:                 dbClient,
		Plants:             plants.NewRepository(dbClient.DB()),
		Classifier:         diagnoses.NewMockClassifier(cfg.Diagnosis.ClassifierSeed),
		Media:              mediaService,
		Metrics:            domainMetrics,
		Logger:             logg,
		FallbackConfidence: cfg.Diagnosis.FallbackConfidence,
	})
	requireResource(ctx, logg, "diagnoses service", err)

	categoryService, err := categories.NewService(categoryRepo)
	requireResource(ctx, logg, "categories service", err)

	productService, err := products.NewService(products.ServiceParams{
		Repo:       products.NewRepository(dbClient.DB()),
		Categories: categoryRepo,
		Media:      mediaService,
	})
	requireResource(ctx, logg, "products service", err)

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		DB:      dbClient,
		Metrics: domainMetrics,
	})
	requireResource(ctx, logg, "reviews service", err)

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:    orders.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Metrics: domainMetrics,
	})
	requireResource(ctx, logg, "orders service", err)

	router := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:         dbClient,
		Redis:      redisClient,
		Sessions:   sessionManager,
		Gatherer:   registry,
		HTTP:       httpMetrics,
		Auth:       authService,
		Register:   registerService,
		Users:      userService,
		Plants:     plantService,
		PlantTypes: plantTypeService,
		Diagnoses:  diagnosisService,
		Categories: categoryService,
		Products:   productService,
		Reviews:    reviewService,
		Orders:     orderService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs error
	errs = multierr.Append(errs, server.Shutdown(shutdownCtx))
	errs = multierr.Append(errs, redisClient.Close())
	errs = multierr.Append(errs, dbClient.Close())
	if errs != nil {
		logg.Error(ctx, "api server shutdown incomplete", errs)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", resource), "failed to initialize "+resource, err)
	os.Exit(1)
}
