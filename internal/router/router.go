package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"go-shop-api/internal/config"
	"go-shop-api/internal/handler"
	"go-shop-api/internal/middleware"
	"go-shop-api/internal/observability"
)

type Handlers struct {
	GraphQL *handler.GraphQLHandler
	Health  *handler.HealthHandler
	Docs    *handler.DocsHandler
}

func New(
	cfg *config.Config,
	rateLimit *middleware.RateLimitMiddleware,
	metrics *observability.Metrics,
	handlers Handlers,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.BearerToken)
	if rateLimit != nil {
		r.Use(rateLimit.Handler)
	}

	r.Method(http.MethodGet, "/health", handlers.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if handlers.Docs != nil {
		r.Get("/graphiql", handlers.Docs.GraphiQL)
	}

	r.Route("/graphql", func(gql chi.Router) {
		gql.Use(middleware.Timeout(cfg.RequestTimeout))
		gql.Method(http.MethodGet, "/", handlers.GraphQL)
		gql.Method(http.MethodPost, "/", handlers.GraphQL)
	})

	return otelhttp.NewHandler(r, "http.server",
		otelhttp.WithFilter(func(req *http.Request) bool {
			return strings.HasPrefix(req.URL.Path, "/graphql")
		}),
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	)
}
