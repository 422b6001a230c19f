// Package graph binds the services to a graphql-go schema. Every root field
// is dispatched through the authorization guard before its resolver runs.
package graph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"go-shop-api/internal/guard"
	"go-shop-api/internal/model"
	"go-shop-api/internal/observability"
	"go-shop-api/internal/reqctx"
	"go-shop-api/internal/service"
	"go-shop-api/pkg/apierror"
)

type Resolver struct {
	auth  *service.AuthService
	users *service.UserService
	shop  *service.ShopInfoService
	audit *service.AuditService
	guard *guard.Guard
}

func NewResolver(auth *service.AuthService, users *service.UserService, shop *service.ShopInfoService, audit *service.AuditService, g *guard.Guard) *Resolver {
	return &Resolver{auth: auth, users: users, shop: shop, audit: audit, guard: g}
}

// NewSchema builds the executable schema.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type:    userModelType,
				Resolve: r.root("me", r.me),
			},
			"users": &graphql.Field{
				Type:    graphql.NewList(graphql.NewNonNull(userModelType)),
				Resolve: r.root("users", r.listUsers),
			},
			"userById": &graphql.Field{
				Type:    userModelType,
				Args:    graphql.FieldConfigArgument{"id": {Type: graphql.NewNonNull(graphql.Int)}},
				Resolve: r.root("userById", r.userByID),
			},
			"userByEmail": &graphql.Field{
				Type:    userModelType,
				Args:    graphql.FieldConfigArgument{"email": {Type: graphql.NewNonNull(graphql.String)}},
				Resolve: r.root("userByEmail", r.userByEmail),
			},
			"shopInfo": &graphql.Field{
				Type:    shopInfoModelType,
				Resolve: r.root("shopInfo", r.shopInfo),
			},
			"auditEntries": &graphql.Field{
				Type: auditPageType,
				Args: graphql.FieldConfigArgument{
					"action":  {Type: graphql.String},
					"status":  {Type: graphql.String},
					"actorId": {Type: graphql.Int},
					"page":    {Type: graphql.Int, DefaultValue: 1},
					"limit":   {Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: r.root("auditEntries", r.auditEntries),
			},
		},
	})

	authArgs := graphql.FieldConfigArgument{"auth": {Type: graphql.NewNonNull(authCreateInput)}}

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"login": &graphql.Field{
				Type:    authModelType,
				Args:    authArgs,
				Resolve: r.root("login", r.login),
			},
			"register": &graphql.Field{
				Type:    authModelType,
				Args:    authArgs,
				Resolve: r.root("register", r.register),
			},
			"registerAdmin": &graphql.Field{
				Type:    authModelType,
				Args:    authArgs,
				Resolve: r.root("registerAdmin", r.registerAdmin),
			},
			"refresh": &graphql.Field{
				Type:    refreshModelType,
				Args:    graphql.FieldConfigArgument{"refreshToken": {Type: graphql.NewNonNull(graphql.String)}},
				Resolve: r.root("refresh", r.refresh),
			},
			"createUser": &graphql.Field{
				Type:    userModelType,
				Args:    graphql.FieldConfigArgument{"user": {Type: graphql.NewNonNull(userCreateInput)}},
				Resolve: r.root("createUser", r.createUser),
			},
			"updateUser": &graphql.Field{
				Type: userModelType,
				Args: graphql.FieldConfigArgument{
					"id":   {Type: graphql.NewNonNull(graphql.Int)},
					"user": {Type: graphql.NewNonNull(userUpdateInput)},
				},
				Resolve: r.root("updateUser", r.updateUser),
			},
			"deleteUser": &graphql.Field{
				Type:    userModelType,
				Args:    graphql.FieldConfigArgument{"id": {Type: graphql.NewNonNull(graphql.Int)}},
				Resolve: r.root("deleteUser", r.deleteUser),
			},
			"createShopInfo": &graphql.Field{
				Type:    shopInfoModelType,
				Args:    graphql.FieldConfigArgument{"shopInfo": {Type: graphql.NewNonNull(shopInfoCreateInput)}},
				Resolve: r.root("createShopInfo", r.createShopInfo),
			},
			"updateShopInfo": &graphql.Field{
				Type:    shopInfoModelType,
				Args:    graphql.FieldConfigArgument{"shopInfo": {Type: graphql.NewNonNull(shopInfoUpdateInput)}},
				Resolve: r.root("updateShopInfo", r.updateShopInfo),
			},
			"deleteShopInfo": &graphql.Field{
				Type:    shopInfoModelType,
				Resolve: r.root("deleteShopInfo", r.deleteShopInfo),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

// root wraps a root-field resolver with a span, the guard and error
// rendering.
func (r *Resolver) root(operation string, resolve graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		ctx, span := observability.Tracer().Start(p.Context, "graphql."+operation)
		defer span.End()
		span.SetAttributes(attribute.String("graphql.operation", operation))

		out, err := guard.Run(ctx, r.guard, operation, func(ctx context.Context) (any, error) {
			p.Context = ctx
			return resolve(p)
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, clientError(ctx, operation, err)
		}
		return out, nil
	}
}

// clientError passes typed API errors through and hides everything else
// behind a generic internal error.
func clientError(ctx context.Context, operation string, err error) error {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return resolverError{api: apiErr}
	}
	slog.ErrorContext(ctx, "unhandled resolver error",
		"operation", operation,
		"request_id", reqctx.RequestID(ctx),
		"error", err.Error(),
	)
	return apierror.Internal()
}

// resolverError hands an APIError to the executor with its bare message.
// Details travel in extensions.
type resolverError struct {
	api *apierror.APIError
}

func (e resolverError) Error() string { return e.api.Message }

func (e resolverError) Extensions() map[string]interface{} { return e.api.Extensions() }

func (e resolverError) Unwrap() error { return e.api }

func (r *Resolver) login(p graphql.ResolveParams) (any, error) {
	in := argMap(p.Args, "auth")
	result, err := r.auth.Login(p.Context, argString(in, "email"), argString(in, "password"))
	if err != nil {
		return nil, err
	}
	return authView(result), nil
}

func (r *Resolver) register(p graphql.ResolveParams) (any, error) {
	in := argMap(p.Args, "auth")
	result, err := r.auth.Register(p.Context, argString(in, "email"), argString(in, "password"))
	if err != nil {
		return nil, err
	}
	return authView(result), nil
}

func (r *Resolver) registerAdmin(p graphql.ResolveParams) (any, error) {
	in := argMap(p.Args, "auth")
	result, err := r.auth.RegisterAdmin(p.Context, argString(in, "email"), argString(in, "password"))
	if err != nil {
		return nil, err
	}
	return authView(result), nil
}

func (r *Resolver) refresh(p graphql.ResolveParams) (any, error) {
	result, err := r.auth.Refresh(p.Context, argString(p.Args, "refreshToken"))
	if err != nil {
		return nil, err
	}
	return refreshView(result), nil
}

func (r *Resolver) me(p graphql.ResolveParams) (any, error) {
	identity, ok := reqctx.IdentityFrom(p.Context)
	if !ok {
		return nil, apierror.Unauthenticated()
	}
	user, err := r.users.GetByID(p.Context, identity.UserID)
	if err != nil {
		return nil, err
	}
	return userView(user), nil
}

func (r *Resolver) listUsers(p graphql.ResolveParams) (any, error) {
	users, err := r.users.List(p.Context)
	if err != nil {
		return nil, err
	}
	return usersView(users), nil
}

func (r *Resolver) userByID(p graphql.ResolveParams) (any, error) {
	id, err := parseID(p.Args["id"], "id")
	if err != nil {
		return nil, err
	}
	user, err := r.users.GetByID(p.Context, id)
	if err != nil {
		return nil, err
	}
	return userView(user), nil
}

func (r *Resolver) userByEmail(p graphql.ResolveParams) (any, error) {
	user, err := r.users.GetByEmail(p.Context, argString(p.Args, "email"))
	if err != nil {
		return nil, err
	}
	return userView(user), nil
}

func (r *Resolver) createUser(p graphql.ResolveParams) (any, error) {
	user, err := r.users.Create(p.Context, decodeUserCreate(argMap(p.Args, "user")))
	if err != nil {
		return nil, err
	}
	return userView(user), nil
}

func (r *Resolver) updateUser(p graphql.ResolveParams) (any, error) {
	id, err := parseID(p.Args["id"], "id")
	if err != nil {
		return nil, err
	}
	user, err := r.users.Update(p.Context, id, decodeUserUpdate(argMap(p.Args, "user")))
	if err != nil {
		return nil, err
	}
	return userView(user), nil
}

func (r *Resolver) deleteUser(p graphql.ResolveParams) (any, error) {
	id, err := parseID(p.Args["id"], "id")
	if err != nil {
		return nil, err
	}
	user, err := r.users.Delete(p.Context, id)
	if err != nil {
		return nil, err
	}
	return userView(user), nil
}

func (r *Resolver) shopInfo(p graphql.ResolveParams) (any, error) {
	info, err := r.shop.Get(p.Context)
	if err != nil {
		return nil, err
	}
	return shopInfoView(info), nil
}

func (r *Resolver) createShopInfo(p graphql.ResolveParams) (any, error) {
	in, err := decodeShopInfoCreate(argMap(p.Args, "shopInfo"))
	if err != nil {
		return nil, err
	}
	info, err := r.shop.Create(p.Context, in)
	if err != nil {
		return nil, err
	}
	return shopInfoView(info), nil
}

func (r *Resolver) updateShopInfo(p graphql.ResolveParams) (any, error) {
	in, err := decodeShopInfoUpdate(argMap(p.Args, "shopInfo"))
	if err != nil {
		return nil, err
	}
	info, err := r.shop.Update(p.Context, in)
	if err != nil {
		return nil, err
	}
	return shopInfoView(info), nil
}

func (r *Resolver) deleteShopInfo(p graphql.ResolveParams) (any, error) {
	info, err := r.shop.Delete(p.Context)
	if err != nil {
		return nil, err
	}
	return shopInfoView(info), nil
}

func (r *Resolver) auditEntries(p graphql.ResolveParams) (any, error) {
	page, err := r.audit.Query(p.Context, model.AuditQuery{
		Action:  argString(p.Args, "action"),
		Status:  argString(p.Args, "status"),
		ActorID: int64(argInt(p.Args, "actorId")),
		Page:    argInt(p.Args, "page"),
		Limit:   argInt(p.Args, "limit"),
	})
	if err != nil {
		return nil, err
	}
	return auditPageView(page), nil
}
