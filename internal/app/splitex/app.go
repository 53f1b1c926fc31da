package splitex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/splitex/internal/cache"
	"github.com/magabrotheeeer/splitex/internal/config"
	"github.com/magabrotheeeer/splitex/internal/events"
	grpcserver "github.com/magabrotheeeer/splitex/internal/grpc/server"
	"github.com/magabrotheeeer/splitex/internal/lib/jwt"
	"github.com/magabrotheeeer/splitex/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/splitex/internal/lib/sl"
	"github.com/magabrotheeeer/splitex/internal/migrations"
	authservice "github.com/magabrotheeeer/splitex/internal/services/auth"
	expenseservice "github.com/magabrotheeeer/splitex/internal/services/expense"
	"github.com/magabrotheeeer/splitex/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// txStore адаптирует storage.Storage к expenseservice.Store.
type txStore struct {
	db *storage.Storage
}

func (s txStore) Atomic(ctx context.Context, fn func(expenseservice.Repository) error) error {
	return s.db.Atomic(ctx, func(q *storage.Queries) error {
		return fn(q)
	})
}

type App struct {
	server *http.Server
	health *grpcserver.HealthServer
	logger *slog.Logger
	db     *storage.Storage
	redis  *cache.Cache
	amqp   *amqp.Connection
}

// New открывает хранилище, применяет миграции, подключает необязательные
// Redis и RabbitMQ и собирает серверы.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.splitex.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{logger: logger, db: db}

	var profiles authservice.Cache = cache.Noop{}
	if cfg.RedisConnection.Address != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.redis = redisCache
		profiles = redisCache
	} else {
		logger.Warn("redis address is empty, profile caching disabled")
	}

	var publisher expenseservice.Publisher = events.Noop{}
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, 5, 2*time.Second)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.amqp = conn
		ch, err := rabbitmq.SetupExchange(conn, cfg.RabbitMQ.Exchange)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = events.NewAMQPPublisher(ch, cfg.RabbitMQ.Exchange, logger)
	} else {
		logger.Warn("rabbitmq url is empty, domain events disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.SecretKey, cfg.JWTToken.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker, profiles, cfg.RedisConnection.ProfileTTL, logger)
	expenseService := expenseservice.NewExpenseService(txStore{db: db}, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, authService, expenseService, db.DB)

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	app.health, err = grpcserver.New(cfg.GRPCServer.Address, logger)
	if err != nil {
		app.close()
		return nil, err
	}

	return app, nil
}

// Run обслуживает HTTP и gRPC до отмены ctx, затем останавливает оба
// сервера и закрывает соединения.
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

	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	healthErr := make(chan error, 1)
	go func() {
		healthErr <- a.health.Run(healthCtx)
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case runErr = <-healthErr:
	case <-ctx.Done():
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down servers gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", sl.Err(err))
		if runErr == nil {
			runErr = err
		}
	}
	stopHealth()
	a.close()
	return runErr
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis connection", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
