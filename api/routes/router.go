package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hadeeqati/hadeeqati-backend/api/controllers"
	diagnosiscontrollers "github.com/hadeeqati/hadeeqati-backend/api/controllers/diagnoses"
	"github.com/hadeeqati/hadeeqati-backend/api/controllers/marketplace"
	ordercontrollers "github.com/hadeeqati/hadeeqati-backend/api/controllers/orders"
	plantcontrollers "github.com/hadeeqati/hadeeqati-backend/api/controllers/plants"
	planttypecontrollers "github.com/hadeeqati/hadeeqati-backend/api/controllers/planttypes"
	"github.com/hadeeqati/hadeeqati-backend/api/middleware"
	"github.com/hadeeqati/hadeeqati-backend/internal/auth"
	"github.com/hadeeqati/hadeeqati-backend/internal/categories"
	"github.com/hadeeqati/hadeeqati-backend/internal/diagnoses"
	"github.com/hadeeqati/hadeeqati-backend/internal/orders"
	"github.com/hadeeqati/hadeeqati-backend/internal/plants"
	"github.com/hadeeqati/hadeeqati-backend/internal/planttypes"
	"github.com/hadeeqati/hadeeqati-backend/internal/products"
	"github.com/hadeeqati/hadeeqati-backend/internal/reviews"
	"github.com/hadeeqati/hadeeqati-backend/internal/users"
	"github.com/hadeeqati/hadeeqati-backend/pkg/auth/session"
	"github.com/hadeeqati/hadeeqati-backend/pkg/config"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
	"github.com/hadeeqati/hadeeqati-backend/pkg/metrics"
	pkgredis "github.com/hadeeqati/hadeeqati-backend/pkg/redis"
)

// RedisStore is the slice of the Redis client the HTTP layer needs: rate
// limit counters, idempotency records and the readiness ping.
type RedisStore interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(parts ...string) string
	Ping(ctx context.Context) error
}

// Dependencies carries everything the router mounts. Nil services surface as
// 500s from their handlers; nil infrastructure disables the related
// middleware.
type Dependencies struct {
	DB       controllers.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics

	Auth       auth.Service
	Register   auth.RegisterService
	Users      users.Service
	Plants     plants.Service
	PlantTypes planttypes.Service
	Diagnoses  diagnoses.Service
	Categories categories.Service
	Products   products.Service
	Reviews    reviews.Service
	Orders     orders.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTP),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Language(logg),
	)

	var limiter interface {
		IncrWithTTL(context.Context, string, time.Duration) (int64, error)
		RateLimitKey(parts ...string) string
	}
	var idempotency pkgredis.IdempotencyStore
	pingers := map[string]controllers.Pinger{}
	if deps.DB != nil {
		pingers["database"] = deps.DB
	}
	if deps.Redis != nil {
		limiter = deps.Redis
		idempotency = deps.Redis
		pingers["redis"] = deps.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginIdentifierLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterIdentifierLimit,
	)
	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	requireAdmin := middleware.RequireAdmin(logg)
	maxUpload := cfg.Storage.MaxUploadBytes()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		r.Handle(metricsPath(cfg.Metrics.Path), promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	if prefix := uploadsPrefix(cfg.Storage.PublicPath); prefix != "" && cfg.Storage.UploadDir != "" {
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Storage.UploadDir))))
	}

	r.Route("/api/v1/users", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(deps.Register, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", controllers.UsersMe(deps.Users, logg))
			r.Put("/me", controllers.UsersUpdateMe(deps.Users, logg))
		})
	})

	if !cfg.App.IsProd() {
		r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).
			Post("/api/admin/v1/auth/register", controllers.AdminRegister(deps.Register, logg))
	}

	r.Route("/api/v1/plant-types", func(r chi.Router) {
		r.Get("/", planttypecontrollers.List(deps.PlantTypes, logg))
		r.Get("/{typeId}", planttypecontrollers.Get(deps.PlantTypes, logg))
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Post("/", planttypecontrollers.Create(deps.PlantTypes, logg))
			r.Put("/{typeId}", planttypecontrollers.Update(deps.PlantTypes, logg))
		})
	})

	plantHandlers := plantcontrollers.NewHandlers(deps.Plants, maxUpload, logg)
	r.Route("/api/v1/plants", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", plantHandlers.List)
		r.Post("/", plantHandlers.Create)
		r.Route("/{plantId}", func(r chi.Router) {
			r.Get("/", plantHandlers.Get)
			r.Put("/", plantHandlers.Update)
			r.Delete("/", plantHandlers.Delete)
			r.Post("/water", plantHandlers.Water)
			r.Post("/fertilize", plantHandlers.Fertilize)
			r.Get("/watering-history", plantHandlers.WateringHistory)
			r.Post("/upload-photo", plantHandlers.UploadPhoto)
		})
	})

	r.Route("/api/v1/diagnoses", func(r chi.Router) {
		r.Get("/conditions", diagnosiscontrollers.Conditions(deps.Diagnoses, logg))
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", diagnosiscontrollers.Create(deps.Diagnoses, maxUpload, logg))
			r.Get("/", diagnosiscontrollers.List(deps.Diagnoses, logg))
			r.Get("/{diagnosisId}", diagnosiscontrollers.Get(deps.Diagnoses, logg))
			r.Post("/{diagnosisId}/resolve", diagnosiscontrollers.Resolve(deps.Diagnoses, logg))
		})
	})

	r.Route("/api/v1/marketplace", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", marketplace.ListCategories(deps.Categories, logg))
			r.Get("/{categoryId}", marketplace.GetCategory(deps.Categories, logg))
			r.With(requireAuth, requireAdmin).Post("/", marketplace.CreateCategory(deps.Categories, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", marketplace.ListProducts(deps.Products, logg))
			r.Get("/{productId}", marketplace.GetProduct(deps.Products, logg))
			r.Get("/{productId}/reviews", marketplace.ListProductReviews(deps.Reviews, logg))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)
				r.Post("/", marketplace.CreateProduct(deps.Products, logg))
				r.Put("/{productId}", marketplace.UpdateProduct(deps.Products, logg))
				r.Delete("/{productId}", marketplace.DeleteProduct(deps.Products, logg))
				r.Post("/{productId}/upload-image", marketplace.UploadProductImage(deps.Products, maxUpload, logg))
			})
		})

		r.With(requireAuth).Post("/reviews", marketplace.AddReview(deps.Reviews, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(middleware.Idempotency(idempotency, logg)).Post("/", ordercontrollers.Create(deps.Orders, logg))
			r.Get("/", ordercontrollers.List(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			r.Delete("/{orderId}", ordercontrollers.Cancel(deps.Orders, logg))
			r.With(requireAdmin).Put("/{orderId}/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
		})
	})

	return r
}

func metricsPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/metrics"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func uploadsPrefix(path string) string {
	path = strings.TrimRight(strings.TrimSpace(path), "/")
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
