// Package hubpass собирает сервис проверки членства: хранилище,
// миграции, кеш, клиентов внешних систем, бизнес-сервисы и HTTP-сервер.
package hubpass

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/tdpk/hubpass/internal/billingprovider"
	"github.com/tdpk/hubpass/internal/cache"
	"github.com/tdpk/hubpass/internal/config"
	"github.com/tdpk/hubpass/internal/identityprovider"
	libjwt "github.com/tdpk/hubpass/internal/lib/jwt"
	"github.com/tdpk/hubpass/internal/migrations"
	billingservice "github.com/tdpk/hubpass/internal/services/billing"
	memberservice "github.com/tdpk/hubpass/internal/services/member"
	passservice "github.com/tdpk/hubpass/internal/services/pass"
	reconcilerservice "github.com/tdpk/hubpass/internal/services/reconciler"
	redemptionservice "github.com/tdpk/hubpass/internal/services/redemption"
	verificationservice "github.com/tdpk/hubpass/internal/services/verification"
	"github.com/tdpk/hubpass/internal/storage/repository"
)

// App держит собранный HTTP-сервер и ресурсы, требующие закрытия.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New инициализирует все зависимости сервиса и возвращает готовое
// к запуску приложение.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	idpClient := identityprovider.NewClient(cfg.IdentityProvider.BaseURL, cfg.IdentityProvider.ServiceKey, cfg.IdentityProvider.TimeoutIdP)
	billingClient := billingprovider.NewClient(
		cfg.Stripe.SecretKey,
		cfg.Stripe.WebhookSecret,
		cfg.Stripe.SuccessURL,
		cfg.Stripe.CancelURL,
		cfg.Stripe.PortalReturnURL,
	)
	jwtMaker := libjwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	verifier := verificationservice.New(db, idpClient, logger)
	reconciler := reconcilerservice.New(db, billingClient, logger)
	billing := billingservice.New(db, cacheRedis, billingClient, logger)
	passes := passservice.New(db, cfg.PassTTL, logger)
	redemptions := redemptionservice.New(db, logger)
	members := memberservice.New(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		JWTMaker:    jwtMaker,
		Storage:     db,
		Verifier:    verifier,
		Reconciler:  reconciler,
		Billing:     billing,
		BillingHook: billingClient,
		Passes:      passes,
		Redemptions: redemptions,
		Members:     members,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
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
		a.db.DB.Close()
		if cerr := a.cache.Db.Close(); cerr != nil {
			a.logger.Error("failed to close redis client", slog.Any("err", cerr))
		}
		return err
	}
}
