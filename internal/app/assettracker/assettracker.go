// Package assettracker собирает все зависимости приложения:
// хранилище, кеш, очередь уведомлений, клиент платёжного провайдера,
// бизнес-сервисы и HTTP-сервер.
package assettracker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/asset-tracker/internal/cache"
	"github.com/magabrotheeeer/asset-tracker/internal/config"
	"github.com/magabrotheeeer/asset-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/asset-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/asset-tracker/internal/migrations"
	"github.com/magabrotheeeer/asset-tracker/internal/paymentprovider"
	"github.com/magabrotheeeer/asset-tracker/internal/rabbitmq"
	assetservice "github.com/magabrotheeeer/asset-tracker/internal/services/asset"
	authservice "github.com/magabrotheeeer/asset-tracker/internal/services/auth"
	billingservice "github.com/magabrotheeeer/asset-tracker/internal/services/billing"
	"github.com/magabrotheeeer/asset-tracker/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и долгоживущие соединения приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New инициализирует все зависимости и собирает приложение.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Очередь уведомлений необязательна для работы API: без неё
	// события подписки просто не публикуются.
	var publisher *rabbitmq.Publisher
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection.ConnectionString,
		cfg.RabbitMQConnection.ConnectRetries, cfg.RabbitMQConnection.ConnectDelay)
	if err != nil {
		logger.Warn("rabbitmq unavailable, notifications disabled", sl.Err(err))
	} else {
		ch, err := rabbitmq.SetupChannel(conn)
		if err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch)
	}

	providerClient := paymentprovider.NewClient(cfg.Billing.APIKey, cfg.Billing.APIURL)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)

	authSvc := authservice.NewAuthService(db, jwtMaker, cfg.Freemium.FreeUserLimit, cfg.Env == "local")
	assetSvc := assetservice.NewAssetService(db, cacheRedis, logger, cfg.Freemium.FreeAssetLimit)
	billingSvc := billingservice.NewBillingService(db, cacheRedis, providerClient, eventPublisher(publisher),
		logger, billingservice.Options{
			PriceID:          cfg.Billing.PriceID,
			FrontendOrigin:   cfg.HTTPServer.FrontendOrigin,
			PendingSignupTTL: cfg.Billing.PendingSignupTTL,
		})

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, db, cacheRedis, authSvc, assetSvc, billingSvc)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Типизированный nil в интерфейсном поле не равен nil,
// поэтому отсутствующий publisher передаётся явно.
func eventPublisher(p *rabbitmq.Publisher) billingservice.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

// Run запускает HTTP-сервер и блокируется до остановки контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close database", sl.Err(cerr))
		}
		return err
	}
}
