// Package token signs and verifies the two JWT classes used by the API.
// Access and refresh tokens share one claim shape but are signed with
// different secrets and carry different lifetimes.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-shop-api/internal/config"
	"go-shop-api/internal/model"
)

type jwtClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	Type  string   `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for both signing and verification.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("token: config is required")
	}
	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, errors.New("token: access and refresh secrets are required")
	}
	if cfg.JWTSecret == cfg.JWTRefreshSecret {
		return nil, errors.New("token: access and refresh secrets must differ")
	}
	if cfg.JWTAccessTTL <= 0 || cfg.JWTRefreshTTL <= 0 {
		return nil, errors.New("token: lifetimes must be positive")
	}

	s := &Service{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.JWTAccessTTL,
		refreshTTL:    cfg.JWTRefreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *Service) IssueAccess(claims model.Claims) (string, error) {
	claims.Type = model.TokenTypeAccess
	return s.Sign(claims, s.accessSecret, s.accessTTL)
}

func (s *Service) IssueRefresh(claims model.Claims) (string, error) {
	claims.Type = model.TokenTypeRefresh
	return s.Sign(claims, s.refreshSecret, s.refreshTTL)
}

func (s *Service) VerifyAccess(tokenString string) (model.Claims, error) {
	return s.verifyTyped(tokenString, s.accessSecret, model.TokenTypeAccess)
}

func (s *Service) VerifyRefresh(tokenString string) (model.Claims, error) {
	return s.verifyTyped(tokenString, s.refreshSecret, model.TokenTypeRefresh)
}

func (s *Service) verifyTyped(tokenString string, secret []byte, expectedType string) (model.Claims, error) {
	claims, err := s.Verify(tokenString, secret)
	if err != nil {
		return model.Claims{}, err
	}
	if claims.Type != expectedType {
		return model.Claims{}, fmt.Errorf("%w: unexpected token type %q", model.ErrInvalidToken, claims.Type)
	}
	return claims, nil
}

// Sign produces an HS256 token whose expiry is ttl after the current clock.
// A fresh jti is generated when claims.TokenID is empty.
func (s *Service) Sign(claims model.Claims, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("token: empty signing secret")
	}

	now := s.now().UTC()
	tokenID := claims.TokenID
	if tokenID == "" {
		tokenID = uuid.NewString()
	}

	roles := make([]string, len(claims.Roles))
	copy(roles, claims.Roles)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Email: claims.Email,
		Roles: roles,
		Type:  claims.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.UserID, 10),
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry with zero clock-skew
// tolerance. Every failure wraps model.ErrInvalidToken.
func (s *Service) Verify(tokenString string, secret []byte) (model.Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return model.Claims{}, fmt.Errorf("%w: empty token", model.ErrInvalidToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(s.now),
	)

	var parsed jwtClaims
	token, err := parser.ParseWithClaims(tokenString, &parsed, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return model.Claims{}, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}
	if !token.Valid {
		return model.Claims{}, model.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || userID < 1 {
		return model.Claims{}, fmt.Errorf("%w: invalid subject", model.ErrInvalidToken)
	}

	return model.Claims{
		Email:   parsed.Email,
		UserID:  userID,
		Roles:   parsed.Roles,
		Type:    parsed.Type,
		TokenID: parsed.ID,
	}, nil
}
