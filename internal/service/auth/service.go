package auth

import (
	"context"
	"strings"
	"time"

	"github.com/theminddepartment/booking-api/internal/config"
	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/pkg/auth"
	apperrors "github.com/theminddepartment/booking-api/pkg/errors"
	"github.com/theminddepartment/booking-api/pkg/security"
)

// Service authenticates the single configured admin. There is no user
// table; the admin identity lives in configuration and logging in yields
// a bearer token for the /admin surface.
type Service struct {
	admin  config.AdminConfig
	hasher security.PasswordHasher
	jwt    auth.JWTService
	expiry time.Duration
}

func NewService(admin config.AdminConfig, hasher security.PasswordHasher, jwt auth.JWTService, expiry time.Duration) *Service {
	return &Service{admin: admin, hasher: hasher, jwt: jwt, expiry: expiry}
}

// Login verifies the configured credentials and issues an access token.
// The same error covers wrong email and wrong password.
func (s *Service) Login(_ context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		return nil, apperrors.NewUnauthorized(nil)
	}
	if !strings.EqualFold(req.Email, s.admin.Email) {
		return nil, apperrors.NewUnauthorized(nil)
	}
	if err := s.hasher.Compare(s.admin.PasswordHash, req.Password); err != nil {
		return nil, apperrors.NewUnauthorized(err)
	}

	token, err := s.jwt.GenerateAccessToken(s.admin.Email)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.expiry.Seconds()),
	}, nil
}
