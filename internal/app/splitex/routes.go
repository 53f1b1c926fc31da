// Package splitex собирает HTTP- и gRPC-серверы сервиса.
package splitex

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация описания API для /docs.
	_ "github.com/magabrotheeeer/splitex/docs"
	"github.com/magabrotheeeer/splitex/internal/config"
	"github.com/magabrotheeeer/splitex/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/splitex/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/splitex/internal/http/handlers/auth/register"
	expensecreate "github.com/magabrotheeeer/splitex/internal/http/handlers/expense/create"
	expenselist "github.com/magabrotheeeer/splitex/internal/http/handlers/expense/list"
	expenseread "github.com/magabrotheeeer/splitex/internal/http/handlers/expense/read"
	expenseremove "github.com/magabrotheeeer/splitex/internal/http/handlers/expense/remove"
	expenseupdate "github.com/magabrotheeeer/splitex/internal/http/handlers/expense/update"
	"github.com/magabrotheeeer/splitex/internal/http/handlers/health"
	participantadd "github.com/magabrotheeeer/splitex/internal/http/handlers/participant/add"
	participantlist "github.com/magabrotheeeer/splitex/internal/http/handlers/participant/list"
	participantremove "github.com/magabrotheeeer/splitex/internal/http/handlers/participant/remove"
	participantupdate "github.com/magabrotheeeer/splitex/internal/http/handlers/participant/update"
	"github.com/magabrotheeeer/splitex/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/splitex/internal/services/auth"
	expenseservice "github.com/magabrotheeeer/splitex/internal/services/expense"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, authService *authservice.AuthService, expenseService *expenseservice.ExpenseService, db health.Pinger) {
	// Глобальные middleware
	r.Use(middleware.RequestID)
	if cfg.HTTPServer.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware,
		middlewarectx.CORSMiddleware(cfg.CORS.AllowedOrigins),
		middleware.Timeout(cfg.HTTPServer.Timeout),
	)

	limiter := middlewarectx.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	jwtAuth := middlewarectx.JWTMiddleware(authService, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))
				r.Post("/register", register.New(logger, authService).ServeHTTP)
				r.Post("/login", login.New(logger, authService).ServeHTTP)
			})
			r.With(jwtAuth).Get("/u", profile.New(logger, authService).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth)

			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", expensecreate.New(logger, expenseService).ServeHTTP)
				r.Get("/", expenselist.New(logger, expenseService).ServeHTTP)
				r.Get("/{id}", expenseread.New(logger, expenseService).ServeHTTP)
				r.Put("/{id}", expenseupdate.New(logger, expenseService).ServeHTTP)
				r.Delete("/{id}", expenseremove.New(logger, expenseService).ServeHTTP)
			})

			r.Route("/participants/{id}", func(r chi.Router) {
				r.Post("/add", participantadd.New(logger, expenseService).ServeHTTP)
				r.Put("/update/{username}", participantupdate.New(logger, expenseService).ServeHTTP)
				r.Delete("/remove/{username}", participantremove.New(logger, expenseService).ServeHTTP)
				r.Get("/participants", participantlist.New(logger, expenseService).ServeHTTP)
			})
		})
	})

	r.Get("/healthz", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
