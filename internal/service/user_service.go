package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go-shop-api/internal/model"
	"go-shop-api/pkg/apierror"
)

const userNotFoundMessage = "User doesn't exist"

type UserService struct {
	users  UserStore
	hasher Hasher
	audit  *AuditService
}

func NewUserService(users UserStore, hasher Hasher, audit *AuditService) *UserService {
	return &UserService{users: users, hasher: hasher, audit: audit}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	return user, translateUserErr(err, strconv.FormatInt(id, 10))
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.TrimSpace(email)
	user, err := s.users.FindByEmail(ctx, email)
	return user, translateUserErr(err, email)
}

func (s *UserService) Create(ctx context.Context, in model.CreateUserInput) (model.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return model.User{}, apierror.BadRequest("email and password are required", "")
	}
	if err := checkPassword(in.Password, "password"); err != nil {
		return model.User{}, err
	}
	roles := model.NormalizeRoles(in.Roles)
	if len(roles) == 0 {
		return model.User{}, apierror.BadRequest("at least one role is required", "roles")
	}

	digest, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.Create(ctx, model.User{Email: email, PasswordHash: digest, Roles: roles})
	err = translateUserErr(err, email)
	s.audit.Record(ctx, "user.create", email, err)
	return user, err
}

// Update applies the non-nil fields of in. A new password is re-hashed.
func (s *UserService) Update(ctx context.Context, id int64, in model.UpdateUserInput) (model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.User{}, translateUserErr(err, strconv.FormatInt(id, 10))
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return model.User{}, apierror.BadRequest("email must not be empty", "email")
		}
		user.Email = email
	}
	if in.Roles != nil {
		roles := model.NormalizeRoles(in.Roles)
		if len(roles) == 0 {
			return model.User{}, apierror.BadRequest("at least one role is required", "roles")
		}
		user.Roles = roles
	}
	if in.Password != nil {
		if *in.Password == "" {
			return model.User{}, apierror.BadRequest("password must not be empty", "password")
		}
		if err := checkPassword(*in.Password, "password"); err != nil {
			return model.User{}, err
		}
		digest, err := s.hasher.Hash(ctx, *in.Password)
		if err != nil {
			return model.User{}, err
		}
		user.PasswordHash = digest
	}

	updated, err := s.users.Update(ctx, user)
	err = translateUserErr(err, user.Email)
	s.audit.Record(ctx, "user.update", strconv.FormatInt(id, 10), err)
	return updated, err
}

func (s *UserService) Delete(ctx context.Context, id int64) (model.User, error) {
	deleted, err := s.users.Delete(ctx, id)
	err = translateUserErr(err, strconv.FormatInt(id, 10))
	s.audit.Record(ctx, "user.delete", strconv.FormatInt(id, 10), err)
	return deleted, err
}

func translateUserErr(err error, details string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrUserNotFound):
		return apierror.NotFound(userNotFoundMessage, details)
	case errors.Is(err, model.ErrUserAlreadyExists):
		return apierror.Conflict("User already exists", details)
	default:
		return err
	}
}
