package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go-shop-api/internal/model"
	"go-shop-api/internal/service"
	"go-shop-api/pkg/apierror"
)

// SeedAdmin creates an admin account. When the email is already registered
// the account is granted the admin role and its password is left alone.
// created reports which of the two happened.
func SeedAdmin(ctx context.Context, users *service.UserService, email string, password string) (user model.User, created bool, err error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.User{}, false, apierror.BadRequest("admin email and password are required", "")
	}

	user, err = users.Create(ctx, model.CreateUserInput{Email: email, Password: password, Roles: []string{model.RoleAdmin}})
	if err == nil {
		slog.Info("admin account created", "email", email, "user_id", user.ID)
		return user, true, nil
	}

	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != apierror.CodeConflict {
		return model.User{}, false, err
	}

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return model.User{}, false, err
	}
	if existing.HasRole(model.RoleAdmin) {
		slog.Info("admin account already present", "email", email, "user_id", existing.ID)
		return existing, false, nil
	}

	roles := append(append([]string{}, existing.Roles...), model.RoleAdmin)
	user, err = users.Update(ctx, existing.ID, model.UpdateUserInput{Roles: roles})
	if err != nil {
		return model.User{}, false, err
	}

	slog.Info("admin role granted", "email", email, "user_id", user.ID)
	return user, false, nil
}
