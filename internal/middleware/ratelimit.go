package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"go-shop-api/internal/model"
	"go-shop-api/internal/observability"
)

const (
	ScopeGeneral = "general"
	ScopeAuth    = "auth"

	maxPeekBody = 1 << 20
)

// authOperations are the mutations that accept credentials and get the
// stricter budget.
var authOperations = map[string]struct{}{
	"login":         {},
	"register":      {},
	"registerAdmin": {},
	"refresh":       {},
}

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LocalLimiter keeps a token bucket per key in a bounded LRU. Idle keys
// expire after ttl.
type LocalLimiter struct {
	rpm     int
	mu      sync.Mutex
	buckets *lru.LRU[string, *rate.Limiter]
}

// NewLocalLimiter allows rpm requests per minute per key. A non-positive rpm
// disables limiting.
func NewLocalLimiter(rpm int, maxKeys int, ttl time.Duration) *LocalLimiter {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &LocalLimiter{
		rpm:     rpm,
		buckets: lru.NewLRU[string, *rate.Limiter](maxKeys, nil, ttl),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.rpm <= 0 {
		return true, nil
	}

	l.mu.Lock()
	limiter, ok := l.buckets.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.rpm)), l.rpm)
		l.buckets.Add(key, limiter)
	}
	l.mu.Unlock()

	return limiter.Allow(), nil
}

// RedisWindowLimiter counts requests per key in fixed windows shared by all
// instances. Redis failures let the request through and return the error.
type RedisWindowLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisWindowLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisWindowLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &RedisWindowLimiter{client: client, limit: limit, window: window, prefix: prefix}
}

func (l *RedisWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("redis rate limit: %w", err)
	}

	// The window starts with the first hit; later hits must not extend it.
	if ttl.Val() < 0 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return true, fmt.Errorf("redis rate limit: %w", err)
		}
	}

	return incr.Val() <= int64(l.limit), nil
}

type RateLimitMiddleware struct {
	general Limiter
	auth    Limiter
	metrics *observability.Metrics
}

func NewRateLimitMiddleware(general Limiter, auth Limiter, metrics *observability.Metrics) *RateLimitMiddleware {
	return &RateLimitMiddleware{general: general, auth: auth, metrics: metrics}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, limiter := ScopeGeneral, m.general
		if isAuthRequest(r) {
			scope, limiter = ScopeAuth, m.auth
		}
		if limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := limiter.Allow(r.Context(), scope+":"+extractClientIP(r))
		if err != nil {
			slog.WarnContext(r.Context(), "rate limiter unavailable", "scope", scope, "error", err.Error())
		}

		if !allowed {
			m.metrics.RateLimited(scope)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isAuthRequest reports whether a GraphQL request selects one of the
// credential mutations at its root. The body is restored for the next
// handler.
func isAuthRequest(r *http.Request) bool {
	var query string

	switch r.Method {
	case http.MethodGet:
		query = r.URL.Query().Get("query")
	case http.MethodPost:
		if r.Body == nil {
			return false
		}
		peeked, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBody))
		r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(peeked), r.Body), Closer: r.Body}
		if err != nil {
			return false
		}

		var body model.GraphQLRequest
		if err := json.Unmarshal(peeked, &body); err != nil {
			return false
		}
		query = body.Query
	default:
		return false
	}

	return selectsAuthOperation(query)
}

func selectsAuthOperation(query string) bool {
	if strings.TrimSpace(query) == "" {
		return false
	}

	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}

	fragments := make(map[string]*ast.FragmentDefinition)
	for _, def := range doc.Definitions {
		if frag, ok := def.(*ast.FragmentDefinition); ok && frag.Name != nil {
			fragments[frag.Name.Value] = frag
		}
	}

	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok || op.Operation != ast.OperationTypeMutation {
			continue
		}
		if selectsAuthField(op.SelectionSet, fragments, make(map[string]bool)) {
			return true
		}
	}

	return false
}

// selectsAuthField reports whether set selects an auth field at the root,
// directly or through inline fragments and fragment spreads.
func selectsAuthField(set *ast.SelectionSet, fragments map[string]*ast.FragmentDefinition, seen map[string]bool) bool {
	if set == nil {
		return false
	}

	for _, selection := range set.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			if sel.Name == nil {
				continue
			}
			if _, ok := authOperations[sel.Name.Value]; ok {
				return true
			}
		case *ast.InlineFragment:
			if selectsAuthField(sel.SelectionSet, fragments, seen) {
				return true
			}
		case *ast.FragmentSpread:
			if sel.Name == nil || seen[sel.Name.Value] {
				continue
			}
			seen[sel.Name.Value] = true
			frag, ok := fragments[sel.Name.Value]
			if ok && selectsAuthField(frag.SelectionSet, fragments, seen) {
				return true
			}
		}
	}
	return false
}

type readCloser struct {
	io.Reader
	io.Closer
}

func extractClientIP(r *http.Request) string {
	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	realIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}

	if strings.TrimSpace(r.RemoteAddr) == "" {
		return "unknown"
	}

	return r.RemoteAddr
}
