package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-shop-api/internal/config"
	"go-shop-api/internal/model"
	"go-shop-api/internal/observability"
	"go-shop-api/internal/reqctx"
	"go-shop-api/internal/token"
	"go-shop-api/pkg/apierror"
)

func newTokens(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(&config.Config{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func bearer(t *testing.T, tokens *token.Service, roles ...string) context.Context {
	t.Helper()
	access, err := tokens.IssueAccess(model.Claims{Email: "a@x.com", UserID: 1, Roles: roles})
	require.NoError(t, err)
	return reqctx.WithBearerToken(context.Background(), access)
}

func requireDenied(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, code, apiErr.Code)
	assert.Equal(t, "Unauthorized", apiErr.Message)
}

func TestGuard_StateMachine(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	policies := Policies{
		"admin":   RequireRoles(model.RoleAdmin),
		"either":  RequireRoles("editor", model.RoleAdmin),
		"session": Authenticated(),
	}

	cases := []struct {
		name      string
		operation string
		ctx       context.Context
		code      string
	}{
		{"public operation without token", "public", context.Background(), ""},
		{"public operation ignores bad token", "public", reqctx.WithBearerToken(context.Background(), "garbage"), ""},
		{"missing token", "admin", context.Background(), apierror.CodeUnauthenticated},
		{"invalid token", "admin", reqctx.WithBearerToken(context.Background(), "garbage"), apierror.CodeUnauthenticated},
		{"insufficient role", "admin", bearer(t, tokens, model.RoleUser), apierror.CodeForbidden},
		{"matching role", "admin", bearer(t, tokens, model.RoleAdmin), ""},
		{"any one role suffices", "either", bearer(t, tokens, model.RoleUser, model.RoleAdmin), ""},
		{"role match ignores case", "admin", bearer(t, tokens, "ADMIN"), ""},
		{"authenticated without roles", "session", bearer(t, tokens, model.RoleUser), ""},
		{"authenticated requires token", "session", context.Background(), apierror.CodeUnauthenticated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewDefault(policies, tokens, nil)

			called := false
			_, err := Run(tc.ctx, g, tc.operation, func(ctx context.Context) (string, error) {
				called = true
				return "ok", nil
			})

			if tc.code == "" {
				require.NoError(t, err)
				assert.True(t, called)
				return
			}
			requireDenied(t, err, tc.code)
			assert.False(t, called, "handler must not run on denial")
		})
	}
}

func TestGuard_AttachesIdentity(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	g := NewDefault(Policies{"me": Authenticated()}, tokens, nil)

	identity, err := Run(bearer(t, tokens, model.RoleUser), g, "me", func(ctx context.Context) (model.Identity, error) {
		id, ok := reqctx.IdentityFrom(ctx)
		require.True(t, ok)
		return id, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), identity.UserID)
	assert.Equal(t, "a@x.com", identity.Email)
	assert.Equal(t, []string{model.RoleUser}, identity.Roles)
}

func TestGuard_RejectsRefreshTokenAsBearer(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	refresh, err := tokens.IssueRefresh(model.Claims{Email: "a@x.com", UserID: 1, Roles: []string{model.RoleAdmin}})
	require.NoError(t, err)

	g := NewDefault(DefaultPolicies(), tokens, nil)
	_, err = g.Check(reqctx.WithBearerToken(context.Background(), refresh), "registerAdmin")
	requireDenied(t, err, apierror.CodeUnauthenticated)
}

func TestGuard_CountsDenialsByStage(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	g := NewDefault(DefaultPolicies(), tokens, metrics)

	_, err := g.Check(context.Background(), "registerAdmin")
	require.Error(t, err)
	_, err = g.Check(bearer(t, tokens, model.RoleUser), "registerAdmin")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GuardDenialsTotal.WithLabelValues("registerAdmin", StageAuthenticate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GuardDenialsTotal.WithLabelValues("registerAdmin", StageAuthorize)))
}

func TestDefaultPolicies(t *testing.T) {
	t.Parallel()

	p := DefaultPolicies()

	for _, op := range []string{"login", "register", "refresh", "shopInfo"} {
		_, ok := p[op]
		assert.False(t, ok, "%s must be public", op)
	}
	assert.Equal(t, []string{model.RoleAdmin}, p["registerAdmin"].Roles)
	assert.True(t, p["me"].Authenticated)
	assert.Empty(t, p["me"].Roles)
}
