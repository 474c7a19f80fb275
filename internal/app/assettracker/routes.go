// Package assettracker предоставляет маршруты для основного приложения.
package assettracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/asset-tracker/internal/cache"
	"github.com/magabrotheeeer/asset-tracker/internal/config"
	assetcreate "github.com/magabrotheeeer/asset-tracker/internal/http/handlers/asset/create"
	assetlist "github.com/magabrotheeeer/asset-tracker/internal/http/handlers/asset/list"
	assetread "github.com/magabrotheeeer/asset-tracker/internal/http/handlers/asset/read"
	assetremove "github.com/magabrotheeeer/asset-tracker/internal/http/handlers/asset/remove"
	assetupdate "github.com/magabrotheeeer/asset-tracker/internal/http/handlers/asset/update"
	"github.com/magabrotheeeer/asset-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/asset-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/asset-tracker/internal/http/handlers/auth/users"
	billingcancel "github.com/magabrotheeeer/asset-tracker/internal/http/handlers/billing/cancel"
	billingcheckout "github.com/magabrotheeeer/asset-tracker/internal/http/handlers/billing/checkout"
	billingstatus "github.com/magabrotheeeer/asset-tracker/internal/http/handlers/billing/status"
	"github.com/magabrotheeeer/asset-tracker/internal/http/handlers/health"
	webhookregistration "github.com/magabrotheeeer/asset-tracker/internal/http/handlers/webhook/registration"
	webhooksubscription "github.com/magabrotheeeer/asset-tracker/internal/http/handlers/webhook/subscription"
	"github.com/magabrotheeeer/asset-tracker/internal/http/middlewarectx"
	assetservice "github.com/magabrotheeeer/asset-tracker/internal/services/asset"
	authservice "github.com/magabrotheeeer/asset-tracker/internal/services/auth"
	billingservice "github.com/magabrotheeeer/asset-tracker/internal/services/billing"
	"github.com/magabrotheeeer/asset-tracker/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	storage *repository.Storage, cacheRedis *cache.Cache,
	authSvc *authservice.AuthService, assetSvc *assetservice.AssetService,
	billingSvc *billingservice.BillingService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.HTTPServer.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authSvc).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authSvc).ServeHTTP)
		r.Get("/auth/users", users.New(logger, authSvc).ServeHTTP)
		r.Post("/billing/checkout", billingcheckout.New(logger, billingSvc).ServeHTTP)

		// Вебхуки провайдера (аутентификация по подписи тела)
		r.Post("/webhooks/registration", webhookregistration.New(logger, billingSvc,
			cfg.Billing.CheckoutWebhookSecret).ServeHTTP)
		r.Post("/webhooks/subscription", webhooksubscription.New(logger, billingSvc,
			cfg.Billing.SubscriptionWebhookSecret).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authSvc, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/assets", assetcreate.New(logger, assetSvc).ServeHTTP)
			r.Get("/assets", assetlist.New(logger, assetSvc).ServeHTTP)
			r.Get("/assets/{id}", assetread.New(logger, assetSvc).ServeHTTP)
			r.Put("/assets/{id}", assetupdate.New(logger, assetSvc).ServeHTTP)
			r.Delete("/assets/{id}", assetremove.New(logger, assetSvc).ServeHTTP)
			r.Get("/billing/subscription", billingstatus.New(logger, billingSvc).ServeHTTP)
			r.Delete("/billing/subscription", billingcancel.New(logger, billingSvc).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, storage, cacheRedis).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
