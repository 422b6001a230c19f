package graph_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-shop-api/internal/config"
	"go-shop-api/internal/crypto"
	"go-shop-api/internal/graph"
	"go-shop-api/internal/guard"
	"go-shop-api/internal/model"
	"go-shop-api/internal/reqctx"
	"go-shop-api/internal/service"
	"go-shop-api/internal/testutil"
	"go-shop-api/internal/token"
)

type stack struct {
	schema graphql.Schema
	users  *testutil.UserStore
	audit  *testutil.AuditStore
	tokens *token.Service
}

func newStack(t *testing.T, users service.UserStore) stack {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    7 * 24 * time.Hour,
	}
	tokens, err := token.NewService(cfg)
	require.NoError(t, err)
	hasher, err := crypto.NewBcryptHasher(bcrypt.MinCost, 2)
	require.NoError(t, err)

	mem := testutil.NewUserStore()
	if users == nil {
		users = mem
	}
	auditStore := &testutil.AuditStore{}
	audit := service.NewAuditService(auditStore)

	resolver := graph.NewResolver(
		service.NewAuthService(users, hasher, tokens, audit, nil),
		service.NewUserService(users, hasher, audit),
		service.NewShopInfoService(testutil.NewShopInfoStore(), audit),
		audit,
		guard.NewDefault(guard.DefaultPolicies(), tokens, nil),
	)
	schema, err := graph.NewSchema(resolver)
	require.NoError(t, err)

	return stack{schema: schema, users: mem, audit: auditStore, tokens: tokens}
}

func (s stack) do(ctx context.Context, query string, vars map[string]any) *graphql.Result {
	return graph.Execute(ctx, s.schema, model.GraphQLRequest{Query: query, Variables: vars})
}

func bearer(tok string) context.Context {
	return reqctx.WithBearerToken(context.Background(), tok)
}

func field(t *testing.T, result *graphql.Result, name string) map[string]any {
	t.Helper()
	require.Empty(t, result.Errors)
	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	out, ok := data[name].(map[string]any)
	require.True(t, ok, "field %s missing", name)
	return out
}

func requireDenied(t *testing.T, result *graphql.Result, name string, code string) {
	t.Helper()
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Unauthorized", result.Errors[0].Message)
	assert.Equal(t, []string{code}, graph.ErrorCodes(result))
	data, _ := result.Data.(map[string]any)
	assert.Nil(t, data[name])
}

const (
	registerDoc      = `mutation($e: String!, $p: String!) { register(auth: {email: $e, password: $p}) { access_token refresh_token } }`
	registerAdminDoc = `mutation($e: String!, $p: String!) { registerAdmin(auth: {email: $e, password: $p}) { access_token refresh_token } }`
	loginDoc         = `mutation($e: String!, $p: String!) { login(auth: {email: $e, password: $p}) { access_token refresh_token } }`
)

func creds(email string, password string) map[string]any {
	return map[string]any{"e": email, "p": password}
}

// seedAdmin stores an admin directly and logs in as them.
func seedAdmin(t *testing.T, s stack) string {
	t.Helper()
	hasher, err := crypto.NewBcryptHasher(bcrypt.MinCost, 1)
	require.NoError(t, err)
	digest, err := hasher.Hash(context.Background(), "rootpw")
	require.NoError(t, err)
	_, err = s.users.Create(context.Background(), model.User{Email: "root@shop.test", PasswordHash: digest, Roles: []string{model.RoleAdmin}})
	require.NoError(t, err)

	out := field(t, s.do(context.Background(), loginDoc, creds("root@shop.test", "rootpw")), "login")
	return out["access_token"].(string)
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	s := newStack(t, nil)

	result := s.do(context.Background(), registerDoc, creds("long@x.com", strings.Repeat("a", crypto.MaxPasswordBytes+1)))
	require.Len(t, result.Errors, 1)
	assert.Equal(t, []string{"BAD_REQUEST"}, graph.ErrorCodes(result))
	assert.NotEqual(t, "Internal server error", result.Errors[0].Message)
}

func TestRegisterLoginAndAdminGate(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()

	reg := field(t, s.do(ctx, registerDoc, creds("a@x.io", "pw1")), "register")
	assert.NotEmpty(t, reg["access_token"])
	assert.NotEmpty(t, reg["refresh_token"])

	login := field(t, s.do(ctx, loginDoc, creds("a@x.io", "pw1")), "login")
	userAccess := login["access_token"].(string)

	requireDenied(t, s.do(ctx, loginDoc, creds("a@x.io", "wrong")), "login", "UNAUTHENTICATED")

	// Unknown account and wrong password look the same.
	unknown := s.do(ctx, loginDoc, creds("nobody@x.io", "pw1"))
	requireDenied(t, unknown, "login", "UNAUTHENTICATED")

	requireDenied(t, s.do(ctx, registerAdminDoc, creds("b@x.io", "pw2")), "registerAdmin", "UNAUTHENTICATED")
	requireDenied(t, s.do(bearer(userAccess), registerAdminDoc, creds("b@x.io", "pw2")), "registerAdmin", "FORBIDDEN")

	_, err := s.users.FindByEmail(ctx, "b@x.io")
	require.ErrorIs(t, err, model.ErrUserNotFound, "denied resolver must not run")

	adminAccess := seedAdmin(t, s)
	created := field(t, s.do(bearer(adminAccess), registerAdminDoc, creds("b@x.io", "pw2")), "registerAdmin")
	assert.NotEmpty(t, created["access_token"])

	stored, err := s.users.FindByEmail(ctx, "b@x.io")
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleAdmin}, stored.Roles)
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()

	field(t, s.do(ctx, registerDoc, creds("dup@x.io", "pw")), "register")
	result := s.do(ctx, registerDoc, creds("dup@x.io", "pw"))
	require.Len(t, result.Errors, 1)
	assert.Equal(t, []string{"CONFLICT"}, graph.ErrorCodes(result))
}

func TestRefreshAndTokenKinds(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()

	reg := field(t, s.do(ctx, registerDoc, creds("r@x.io", "pw")), "register")
	refreshTok := reg["refresh_token"].(string)

	out := field(t, s.do(ctx, `mutation($t: String!) { refresh(refreshToken: $t) { access_token } }`, map[string]any{"t": refreshTok}), "refresh")
	access := out["access_token"].(string)

	me := field(t, s.do(bearer(access), `{ me { id email roles } }`, nil), "me")
	assert.Equal(t, "r@x.io", me["email"])

	// A refresh token is not an access token.
	requireDenied(t, s.do(bearer(refreshTok), `{ me { id } }`, nil), "me", "UNAUTHENTICATED")

	bad := s.do(ctx, `mutation { refresh(refreshToken: "garbage") { access_token } }`, nil)
	requireDenied(t, bad, "refresh", "UNAUTHENTICATED")
}

func TestPasswordIsNotQueryable(t *testing.T) {
	s := newStack(t, nil)
	admin := seedAdmin(t, s)

	result := s.do(bearer(admin), `{ users { id password } }`, nil)
	require.NotEmpty(t, result.Errors)
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	s := newStack(t, nil)
	admin := seedAdmin(t, s)

	created := field(t, s.do(bearer(admin),
		`mutation { createUser(user: {email: "m@x.io", password: "pw", roles: ["user", "manager"]}) { id email roles } }`, nil), "createUser")
	assert.Equal(t, "m@x.io", created["email"])

	byEmail := field(t, s.do(bearer(admin), `{ userByEmail(email: "m@x.io") { id } }`, nil), "userByEmail")
	assert.Equal(t, created["id"], byEmail["id"])

	missing := s.do(bearer(admin), `{ userById(id: 999) { id } }`, nil)
	require.Len(t, missing.Errors, 1)
	assert.Equal(t, "User doesn't exist", missing.Errors[0].Message)
	assert.Equal(t, []string{"NOT_FOUND"}, graph.ErrorCodes(missing))

	requireDenied(t, s.do(context.Background(), `{ users { id } }`, nil), "users", "UNAUTHENTICATED")

	audit := field(t, s.do(bearer(admin), `{ auditEntries(action: "user.create") { items { action status actorEmail } meta { total } } }`, nil), "auditEntries")
	items := audit["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "root@shop.test", items[0].(map[string]any)["actorEmail"])
}

func TestShopInfoLifecycle(t *testing.T) {
	s := newStack(t, nil)
	admin := seedAdmin(t, s)
	ctx := context.Background()

	missing := s.do(ctx, `{ shopInfo { id } }`, nil)
	require.Len(t, missing.Errors, 1)
	assert.Equal(t, []string{"NOT_FOUND"}, graph.ErrorCodes(missing))

	createDoc := `mutation($in: ShopInfoCreateModel!) { createShopInfo(shopInfo: $in) { id address openAt { id weekDayFrom weekDayTo } socialMedia { id name } } }`
	input := map[string]any{"in": map[string]any{
		"address":     "1 Main St",
		"phoneNumber": "+100",
		"email":       "shop@x.io",
		"openAt": []any{map[string]any{
			"weekDayFrom": "monday",
			"weekDayTo":   "FRIDAY",
			"timeFrom":    "2024-01-01T09:00:00Z",
			"timeTo":      "2024-01-01T18:00:00Z",
		}},
		"socialMedia": []any{map[string]any{"name": "ig", "link": "https://ig.example/shop"}},
	}}

	requireDenied(t, s.do(ctx, createDoc, input), "createShopInfo", "UNAUTHENTICATED")

	created := field(t, s.do(bearer(admin), createDoc, input), "createShopInfo")
	assert.Equal(t, "1 Main St", created["address"])
	openAt := created["openAt"].([]any)[0].(map[string]any)
	assert.Equal(t, "MONDAY", openAt["weekDayFrom"])

	public := field(t, s.do(ctx, `{ shopInfo { address email } }`, nil), "shopInfo")
	assert.Equal(t, "shop@x.io", public["email"])

	updated := field(t, s.do(bearer(admin), `mutation { updateShopInfo(shopInfo: {address: "2 Side St"}) { address phoneNumber } }`, nil), "updateShopInfo")
	assert.Equal(t, "2 Side St", updated["address"])
	assert.Equal(t, "+100", updated["phoneNumber"])

	foreign := s.do(bearer(admin), `mutation { updateShopInfo(shopInfo: {socialMedia: [{id: 42, name: "x"}]}) { id } }`, nil)
	assert.Equal(t, []string{"BAD_REQUEST"}, graph.ErrorCodes(foreign))

	field(t, s.do(bearer(admin), `mutation { deleteShopInfo { id } }`, nil), "deleteShopInfo")
	gone := s.do(ctx, `{ shopInfo { id } }`, nil)
	assert.Equal(t, []string{"NOT_FOUND"}, graph.ErrorCodes(gone))
}

type brokenUsers struct {
	*testutil.UserStore
}

func (brokenUsers) FindByEmail(context.Context, string) (model.User, error) {
	return model.User{}, errors.New("connection reset by peer")
}

func TestUnclassifiedErrorsAreHidden(t *testing.T) {
	s := newStack(t, brokenUsers{testutil.NewUserStore()})

	result := s.do(context.Background(), loginDoc, creds("a@x.io", "pw"))
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Internal server error", result.Errors[0].Message)
	assert.Equal(t, []string{"INTERNAL_ERROR"}, graph.ErrorCodes(result))
}

func TestIsMutation(t *testing.T) {
	assert.True(t, graph.IsMutation(model.GraphQLRequest{Query: `mutation { deleteShopInfo { id } }`}))
	assert.False(t, graph.IsMutation(model.GraphQLRequest{Query: `{ shopInfo { id } }`}))
	assert.False(t, graph.IsMutation(model.GraphQLRequest{
		Query:         `query Q { shopInfo { id } } mutation M { deleteShopInfo { id } }`,
		OperationName: "Q",
	}))
	assert.False(t, graph.IsMutation(model.GraphQLRequest{Query: `mutation {`}))
}
