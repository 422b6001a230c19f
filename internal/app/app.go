package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"

	"go-shop-api/internal/config"
	"go-shop-api/internal/crypto"
	"go-shop-api/internal/database"
	"go-shop-api/internal/graph"
	"go-shop-api/internal/guard"
	"go-shop-api/internal/handler"
	"go-shop-api/internal/middleware"
	"go-shop-api/internal/observability"
	"go-shop-api/internal/repository"
	"go-shop-api/internal/router"
	"go-shop-api/internal/service"
	"go-shop-api/internal/token"
)

// Stores are the persistence ports the services run on.
type Stores struct {
	Users    service.UserStore
	ShopInfo service.ShopInfoStore
	Audit    service.AuditStore
}

// Deps is everything Build needs besides configuration. Health and Redis are
// optional.
type Deps struct {
	Stores   Stores
	Health   interface{ Health(ctx context.Context) error }
	Redis    *redis.Client
	Registry *prometheus.Registry
}

// Services is the wired service layer, exposed for the CLI and tests.
type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	ShopInfo *service.ShopInfoService
	Audit    *service.AuditService
	Tokens   *token.Service
	Hasher   *crypto.BcryptHasher
	Metrics  *observability.Metrics
}

// NewServices wires the service layer on top of stores.
func NewServices(cfg *config.Config, stores Stores, registry *prometheus.Registry) (*Services, error) {
	tokens, err := token.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	hasher, err := crypto.NewBcryptHasher(cfg.BcryptCost, cfg.HashWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := observability.NewMetrics(registry)
	audit := service.NewAuditService(stores.Audit)

	return &Services{
		Auth:     service.NewAuthService(stores.Users, hasher, tokens, audit, metrics),
		Users:    service.NewUserService(stores.Users, hasher, audit),
		ShopInfo: service.NewShopInfoService(stores.ShopInfo, audit),
		Audit:    audit,
		Tokens:   tokens,
		Hasher:   hasher,
		Metrics:  metrics,
	}, nil
}

// Build assembles the HTTP handler: services, guard, schema, middleware and
// routes.
func Build(cfg *config.Config, deps Deps) (http.Handler, *Services, error) {
	services, err := NewServices(cfg, deps.Stores, deps.Registry)
	if err != nil {
		return nil, nil, err
	}

	g := guard.NewDefault(guard.DefaultPolicies(), services.Tokens, services.Metrics)
	schema, err := graph.NewSchema(graph.NewResolver(services.Auth, services.Users, services.ShopInfo, services.Audit, g))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build GraphQL schema: %w", err)
	}

	general := middleware.NewLocalLimiter(cfg.RateLimitRPM, 0, 0)
	var auth middleware.Limiter = middleware.NewLocalLimiter(cfg.AuthRateLimitRPM, 0, 0)
	if deps.Redis != nil {
		auth = middleware.NewRedisWindowLimiter(deps.Redis, cfg.AuthRateLimitRPM, time.Minute, "shop:ratelimit")
	}

	appRouter := router.New(cfg, middleware.NewRateLimitMiddleware(general, auth, services.Metrics), services.Metrics, router.Handlers{
		GraphQL: handler.NewGraphQLHandler(schema),
		Health:  handler.NewHealthHandler(deps.Health),
		Docs:    handler.NewDocsHandler("/graphql"),
	})

	return appRouter, services, nil
}

type App struct {
	cfg          *config.Config
	server       *http.Server
	cleanupFuncs []func(ctx context.Context) error
}

// New connects to PostgreSQL (and Redis when configured), starts tracing and
// builds the HTTP server.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	shutdownTracing := observability.SetupTracing(ctx, cfg.ServiceName, cfg.OTelEndpoint, cfg.OTelInsecure)
	a.cleanupFuncs = append(a.cleanupFuncs, shutdownTracing)

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		a.cleanup(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, func(context.Context) error {
		db.Close()
		return nil
	})

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			a.cleanup(ctx)
			return nil, err
		}
		a.cleanupFuncs = append(a.cleanupFuncs, func(context.Context) error {
			return redisClient.Close()
		})
	}

	appRouter, _, err := Build(cfg, Deps{
		Stores:   PostgresStores(db),
		Health:   db,
		Redis:    redisClient,
		Registry: prometheus.NewRegistry(),
	})
	if err != nil {
		a.cleanup(ctx)
		return nil, err
	}

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

// PostgresStores backs the services with the PostgreSQL repositories.
func PostgresStores(db *database.DB) Stores {
	return Stores{
		Users:    repository.NewUserRepository(db.Pool),
		ShopInfo: repository.NewShopInfoRepository(db.Pool),
		Audit:    repository.NewAuditRepository(db.Pool),
	}
}

func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	slog.Info("redis connected", "addr", opts.Addr)
	return client, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			a.cleanup(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.cleanup(shutdownCtx)
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.cleanup(shutdownCtx)
	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup(ctx context.Context) {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		if err := a.cleanupFuncs[i](ctx); err != nil {
			slog.Warn("cleanup failed", "error", err.Error())
		}
	}
	a.cleanupFuncs = nil
}
