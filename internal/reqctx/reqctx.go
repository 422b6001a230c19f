// Package reqctx holds the request-scoped values shared between the HTTP
// middleware, the authorization guard and the services.
package reqctx

import (
	"context"

	"go-shop-api/internal/model"
)

type contextKey string

const (
	bearerTokenKey contextKey = "bearer_token"
	clientIPKey    contextKey = "client_ip"
	requestIDKey   contextKey = "request_id"
	identityKey    contextKey = "identity"
)

func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey, token)
}

// BearerToken returns the raw token from the Authorization header, if any.
func BearerToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerTokenKey).(string)
	return token, ok && token != ""
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the caller resolved by the guard's authentication
// stage.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	return identity, ok
}

// Actor builds the audit actor for the current request.
func Actor(ctx context.Context) model.AuditActor {
	actor := model.AuditActor{IP: ClientIP(ctx)}
	if identity, ok := IdentityFrom(ctx); ok {
		actor.UserID = identity.UserID
		actor.Email = identity.Email
	}
	return actor
}
