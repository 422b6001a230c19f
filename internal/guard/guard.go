// Package guard enforces per-operation authentication and role requirements
// in front of GraphQL resolvers.
//
// Every root field is dispatched through an ordered pipeline of stages:
// Authenticate resolves the bearer token into an Identity, Authorize checks
// the identity's roles against the operation's Policy. A denial stops the
// pipeline and the resolver is never invoked.
package guard

import (
	"context"
	"strings"

	"go-shop-api/internal/model"
	"go-shop-api/internal/observability"
	"go-shop-api/internal/reqctx"
	"go-shop-api/pkg/apierror"
)

const (
	StageAuthenticate = "authenticate"
	StageAuthorize    = "authorize"
)

// Policy describes what an operation requires. The zero value is public.
// With Roles set, the caller needs at least one of them.
type Policy struct {
	Authenticated bool
	Roles         []string
}

// Policies maps a GraphQL root field name to its policy. Operations with no
// entry are public.
type Policies map[string]Policy

// Authenticated requires a valid access token and no particular role.
func Authenticated() Policy {
	return Policy{Authenticated: true}
}

// RequireRoles requires a valid access token carrying any of roles.
func RequireRoles(roles ...string) Policy {
	return Policy{Authenticated: true, Roles: roles}
}

// DefaultPolicies is the operation table served by the API.
func DefaultPolicies() Policies {
	admin := RequireRoles(model.RoleAdmin)
	return Policies{
		"registerAdmin":  admin,
		"me":             Authenticated(),
		"users":          admin,
		"userById":       admin,
		"userByEmail":    admin,
		"createUser":     admin,
		"updateUser":     admin,
		"deleteUser":     admin,
		"createShopInfo": admin,
		"updateShopInfo": admin,
		"deleteShopInfo": admin,
		"auditEntries":   admin,
	}
}

// Request is the state threaded through the pipeline.
type Request struct {
	Operation string
	Policy    Policy
	Ctx       context.Context
}

// Stage transforms a request or rejects it. A stage returning an error ends
// the pipeline.
type Stage interface {
	Name() string
	Apply(req Request) (Request, error)
}

// AccessVerifier validates an access token.
type AccessVerifier interface {
	VerifyAccess(token string) (model.Claims, error)
}

type authenticateStage struct {
	verifier AccessVerifier
}

// Authenticate attaches the caller's Identity to the context when the
// policy requires authentication. A missing or invalid token is rejected.
func Authenticate(verifier AccessVerifier) Stage {
	return authenticateStage{verifier: verifier}
}

func (authenticateStage) Name() string { return StageAuthenticate }

func (s authenticateStage) Apply(req Request) (Request, error) {
	if !req.Policy.Authenticated {
		return req, nil
	}

	raw, ok := reqctx.BearerToken(req.Ctx)
	if !ok {
		return req, apierror.Unauthenticated()
	}

	claims, err := s.verifier.VerifyAccess(raw)
	if err != nil {
		return req, apierror.Unauthenticated()
	}

	req.Ctx = reqctx.WithIdentity(req.Ctx, claims.Identity())
	return req, nil
}

type authorizeStage struct{}

// Authorize permits the request when the policy names no roles, or when the
// identity holds at least one of them.
func Authorize() Stage {
	return authorizeStage{}
}

func (authorizeStage) Name() string { return StageAuthorize }

func (authorizeStage) Apply(req Request) (Request, error) {
	if len(req.Policy.Roles) == 0 {
		return req, nil
	}

	identity, ok := reqctx.IdentityFrom(req.Ctx)
	if !ok {
		return req, apierror.Unauthenticated()
	}
	if !hasAnyRole(identity.Roles, req.Policy.Roles) {
		return req, apierror.Forbidden()
	}
	return req, nil
}

func hasAnyRole(held []string, required []string) bool {
	for _, want := range required {
		for _, have := range held {
			if strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want)) {
				return true
			}
		}
	}
	return false
}

// Guard runs the stages for an operation according to its policy.
type Guard struct {
	policies Policies
	stages   []Stage
	metrics  *observability.Metrics
}

func New(policies Policies, metrics *observability.Metrics, stages ...Stage) *Guard {
	return &Guard{policies: policies, stages: stages, metrics: metrics}
}

// NewDefault builds the authenticate then authorize pipeline.
func NewDefault(policies Policies, verifier AccessVerifier, metrics *observability.Metrics) *Guard {
	return New(policies, metrics, Authenticate(verifier), Authorize())
}

func (g *Guard) Policy(operation string) Policy {
	return g.policies[operation]
}

// Check runs the pipeline for operation and returns the context the handler
// should run with.
func (g *Guard) Check(ctx context.Context, operation string) (context.Context, error) {
	req := Request{Operation: operation, Policy: g.policies[operation], Ctx: ctx}

	for _, stage := range g.stages {
		next, err := stage.Apply(req)
		if err != nil {
			g.metrics.GuardDenial(operation, stage.Name())
			return ctx, err
		}
		req = next
	}
	return req.Ctx, nil
}

// Run checks operation and invokes handler only when permitted.
func Run[T any](ctx context.Context, g *Guard, operation string, handler func(ctx context.Context) (T, error)) (T, error) {
	ctx, err := g.Check(ctx, operation)
	if err != nil {
		var zero T
		return zero, err
	}
	return handler(ctx)
}
