package hubpass

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/tdpk/hubpass/internal/billingprovider"
	"github.com/tdpk/hubpass/internal/http/handlers/billing/checkout"
	"github.com/tdpk/hubpass/internal/http/handlers/billing/portal"
	"github.com/tdpk/hubpass/internal/http/handlers/billing/webhook"
	"github.com/tdpk/hubpass/internal/http/handlers/health"
	"github.com/tdpk/hubpass/internal/http/handlers/member/register"
	"github.com/tdpk/hubpass/internal/http/handlers/pass/issue"
	"github.com/tdpk/hubpass/internal/http/handlers/pass/revoke"
	planlist "github.com/tdpk/hubpass/internal/http/handlers/plan/list"
	redemptioncreate "github.com/tdpk/hubpass/internal/http/handlers/redemption/create"
	redemptionlist "github.com/tdpk/hubpass/internal/http/handlers/redemption/list"
	"github.com/tdpk/hubpass/internal/http/handlers/verification/verify"
	"github.com/tdpk/hubpass/internal/http/middlewarectx"
	libjwt "github.com/tdpk/hubpass/internal/lib/jwt"
	billingservice "github.com/tdpk/hubpass/internal/services/billing"
	memberservice "github.com/tdpk/hubpass/internal/services/member"
	passservice "github.com/tdpk/hubpass/internal/services/pass"
	reconcilerservice "github.com/tdpk/hubpass/internal/services/reconciler"
	redemptionservice "github.com/tdpk/hubpass/internal/services/redemption"
	verificationservice "github.com/tdpk/hubpass/internal/services/verification"
	"github.com/tdpk/hubpass/internal/storage/repository"
)

// Deps собирает зависимости, которые нужны маршрутам приложения.
type Deps struct {
	JWTMaker    libjwt.Maker
	Storage     *repository.Storage
	Verifier    *verificationservice.Service
	Reconciler  *reconcilerservice.Service
	Billing     *billingservice.Service
	BillingHook *billingprovider.Client
	Passes      *passservice.Service
	Redemptions *redemptionservice.Service
	Members     *memberservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	verifyLimiter := rate.NewLimiter(5, 10)

	r.Route("/api/v1", func(r chi.Router) {
		// Вебхук аутентифицируется подписью из заголовка события,
		// не сессионным токеном
		r.Post("/billing/webhook", webhook.New(logger, deps.Reconciler, deps.BillingHook).ServeHTTP)
		r.Get("/health", health.New(logger, deps.Storage).ServeHTTP)
		r.Get("/plans", planlist.New(logger, deps.Billing).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(deps.JWTMaker, logger))

			// Конечные точки операторов партнёров
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, libjwt.RolePartner, libjwt.RoleAdmin))
				r.Use(middlewarectx.RateLimitMiddleware(logger, verifyLimiter))
				r.Post("/verify", verify.New(logger, deps.Verifier).ServeHTTP)
				r.Post("/redemptions", redemptioncreate.New(logger, deps.Redemptions).ServeHTTP)
				r.Get("/redemptions", redemptionlist.New(logger, deps.Redemptions).ServeHTTP)
			})

			// Регистрация участников доступна только администраторам
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, libjwt.RoleAdmin))
				r.Post("/members", register.New(logger, deps.Members).ServeHTTP)
			})

			// Конечные точки участников
			r.Post("/passes", issue.New(logger, deps.Passes).ServeHTTP)
			r.Delete("/passes/{jti}", revoke.New(logger, deps.Passes).ServeHTTP)
			r.Post("/billing/checkout", checkout.New(logger, deps.Billing).ServeHTTP)
			r.Post("/billing/portal", portal.New(logger, deps.Billing).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
