package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-shop-api/internal/observability"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func graphqlPost(query string) *http.Request {
	body := `{"query":` + quote(query) + `}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func TestRateLimitMiddleware_UnlimitedGeneral(t *testing.T) {
	mw := NewRateLimitMiddleware(NewLocalLimiter(0, 0, 0), NewLocalLimiter(1, 0, 0), nil)
	handler := mw.Handler(okHandler())

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, graphqlPost(`{ shopInfo { id } }`))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}

func TestRateLimitMiddleware_LimitedAuth(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	mw := NewRateLimitMiddleware(NewLocalLimiter(0, 0, 0), NewLocalLimiter(1, 0, 0), metrics)
	handler := mw.Handler(okHandler())

	login := `mutation { login(auth: {email: "a@b.c", password: "x"}) { access_token } }`

	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, graphqlPost(login))
	assert.Equal(t, http.StatusOK, rec1.Code)

	// Burst is 1, so the second immediate attempt is rejected.
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, graphqlPost(login))
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.Equal(t, "60", rec2.Header().Get("Retry-After"))
	assert.Contains(t, rec2.Body.String(), `"RATE_LIMITED"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RateLimitedTotal.WithLabelValues(ScopeAuth)))

	// Non-auth operations draw from the general budget.
	rec3 := httptest.NewRecorder()
	handler.ServeHTTP(rec3, graphqlPost(`{ shopInfo { id } }`))
	assert.Equal(t, http.StatusOK, rec3.Code)
}

func TestRateLimitMiddleware_PreservesBody(t *testing.T) {
	mw := NewRateLimitMiddleware(NewLocalLimiter(0, 0, 0), NewLocalLimiter(0, 0, 0), nil)

	var seen string
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		seen = buf.String()
	}))

	req := graphqlPost(`mutation { refresh(refreshToken: "t") { access_token } }`)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, seen, "refreshToken")
}

func TestRateLimitMiddleware_KeysByClientIP(t *testing.T) {
	mw := NewRateLimitMiddleware(NewLocalLimiter(1, 0, 0), nil, nil)
	handler := mw.Handler(okHandler())

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Forwarded-For", ip+", 172.16.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, ip)
	}
}

func TestSelectsAuthOperation(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  bool
	}{
		{"login", `mutation { login(auth: {email: "a", password: "b"}) { access_token } }`, true},
		{"register admin", `mutation M { registerAdmin(auth: {email: "a", password: "b"}) { access_token } }`, true},
		{"refresh alongside other", `mutation { deleteShopInfo { id } refresh(refreshToken: "x") { access_token } }`, true},
		{"inline fragment", `mutation { ... on Mutation { login(auth: {email: "a", password: "b"}) { access_token } } }`, true},
		{"fragment spread", `mutation { ...F } fragment F on Mutation { login(auth: {email: "a", password: "b"}) { access_token } }`, true},
		{"nested spread", `mutation { ...Outer } fragment Outer on Mutation { ... on Mutation { ...Inner } } fragment Inner on Mutation { register(auth: {email: "a", password: "b"}) { access_token } }`, true},
		{"spread of other mutation", `mutation { ...F } fragment F on Mutation { deleteUser(id: 1) { id } }`, false},
		{"other mutation", `mutation { deleteUser(id: 1) { id } }`, false},
		{"query with same name", `query { login }`, false},
		{"malformed", `mutation { login(`, false},
		{"empty", ``, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, selectsAuthOperation(tc.query))
		})
	}
}

func TestLocalLimiterPerKey(t *testing.T) {
	l := NewLocalLimiter(2, 10, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok)
}

func TestRedisWindowLimiter(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisWindowLimiter(client, 2, time.Minute, "test")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "auth:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx, "auth:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.TTL("test:auth:1.2.3.4") > 0)

	mr.FastForward(time.Minute + time.Second)

	ok, err = l.Allow(ctx, "auth:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisWindowLimiterFailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	l := NewRedisWindowLimiter(client, 1, time.Minute, "")
	ok, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.True(t, ok)
}
