package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-shop-api/internal/crypto"
	"go-shop-api/internal/model"
	"go-shop-api/internal/observability"
	"go-shop-api/internal/reqctx"
	"go-shop-api/pkg/apierror"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeError   = "error"
)

type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, user model.User) (model.User, error)
	Update(ctx context.Context, user model.User) (model.User, error)
	Delete(ctx context.Context, id int64) (model.User, error)
}

type Hasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Compare(ctx context.Context, plain string, digest string) (bool, error)
}

type TokenIssuer interface {
	IssueAccess(claims model.Claims) (string, error)
	IssueRefresh(claims model.Claims) (string, error)
	VerifyRefresh(token string) (model.Claims, error)
}

type AuthService struct {
	users   UserStore
	hasher  Hasher
	tokens  TokenIssuer
	audit   *AuditService
	metrics *observability.Metrics
}

func NewAuthService(users UserStore, hasher Hasher, tokens TokenIssuer, audit *AuditService, metrics *observability.Metrics) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, audit: audit, metrics: metrics}
}

func (s *AuthService) Register(ctx context.Context, email string, password string) (model.AuthResult, error) {
	result, err := s.register(ctx, email, password, []string{model.RoleUser})
	s.observe(ctx, "register", email, err)
	return result, err
}

// RegisterAdmin creates an account with the admin role. Callers are
// expected to have passed the guard already.
func (s *AuthService) RegisterAdmin(ctx context.Context, email string, password string) (model.AuthResult, error) {
	result, err := s.register(ctx, email, password, []string{model.RoleAdmin})
	s.observe(ctx, "registerAdmin", email, err)
	return result, err
}

func (s *AuthService) register(ctx context.Context, email string, password string, roles []string) (model.AuthResult, error) {
	cred, err := normalizeCredential(model.Credential{Email: email, Password: password})
	if err != nil {
		return model.AuthResult{}, err
	}
	email = cred.Email

	digest, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return model.AuthResult{}, err
	}

	user, err := s.users.Create(ctx, model.User{Email: email, PasswordHash: digest, Roles: roles})
	if errors.Is(err, model.ErrUserAlreadyExists) {
		return model.AuthResult{}, apierror.Conflict("User already exists", email)
	}
	if err != nil {
		return model.AuthResult{}, err
	}

	return s.issuePair(user)
}

// Login never reveals which factor failed: an unknown email and a wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.AuthResult, error) {
	result, err := s.login(ctx, email, password)
	s.observe(ctx, "login", email, err)
	return result, err
}

func (s *AuthService) login(ctx context.Context, email string, password string) (model.AuthResult, error) {
	user, err := s.ValidateUser(ctx, email, password)
	if err != nil {
		return model.AuthResult{}, err
	}
	if user == nil {
		return model.AuthResult{}, apierror.Unauthenticated()
	}
	return s.issuePair(*user)
}

// Refresh mints a new access token from the refresh token's own claims.
// The user record is not consulted, so role changes only take effect once
// the refresh token itself is reissued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.RefreshResult, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		denied := apierror.Unauthenticated()
		s.observe(ctx, "refresh", "", denied)
		return model.RefreshResult{}, denied
	}

	access, err := s.tokens.IssueAccess(model.Claims{
		Email:  claims.Email,
		UserID: claims.UserID,
		Roles:  claims.Roles,
	})
	s.observe(ctx, "refresh", claims.Email, err)
	if err != nil {
		return model.RefreshResult{}, fmt.Errorf("issue access token: %w", err)
	}
	return model.RefreshResult{AccessToken: access}, nil
}

// ValidateUser returns the matching user, or nil when the email is unknown
// or the password does not match. Other store failures are returned.
func (s *AuthService) ValidateUser(ctx context.Context, email string, password string) (*model.User, error) {
	cred, err := normalizeCredential(model.Credential{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	email = cred.Email

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	match, err := s.hasher.Compare(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, nil
	}
	return &user, nil
}

func (s *AuthService) issuePair(user model.User) (model.AuthResult, error) {
	claims := model.Claims{Email: user.Email, UserID: user.ID, Roles: user.Roles}

	access, err := s.tokens.IssueAccess(claims)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(claims)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return model.AuthResult{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) observe(ctx context.Context, operation string, email string, err error) {
	outcome := outcomeSuccess
	var apiErr *apierror.APIError
	switch {
	case err == nil:
	case errors.As(err, &apiErr) && apiErr.Code != apierror.CodeInternal:
		outcome = outcomeFailure
	default:
		outcome = outcomeError
	}
	s.metrics.AuthAttempt(operation, outcome)

	status, errText := model.AuditStatusSuccess, ""
	if err != nil {
		status, errText = model.AuditStatusFailure, err.Error()
	}
	s.audit.Log(ctx, "auth."+operation, reqctx.Actor(ctx), status, strings.TrimSpace(email), errText)
}

func normalizeCredential(in model.Credential) (model.Credential, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return model.Credential{}, apierror.BadRequest("email and password are required", "")
	}
	if err := checkPassword(in.Password, "password"); err != nil {
		return model.Credential{}, err
	}
	return in, nil
}

func checkPassword(password string, field string) error {
	if len(password) > crypto.MaxPasswordBytes {
		return apierror.BadRequest(fmt.Sprintf("password must be at most %d bytes", crypto.MaxPasswordBytes), field)
	}
	return nil
}
