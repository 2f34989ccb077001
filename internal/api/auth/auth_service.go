package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/stockers-dev/stockers-api/config"
	"github.com/stockers-dev/stockers-api/internal/api"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the authentication operations exposed to handlers and
// to the middleware (GetUserByID resolves token subjects).
type AuthService interface {
	// Signup registers a new common-role account and returns an access token.
	Signup(ctx context.Context, email, password, passwordCheck string) (string, error)

	// Signin checks credentials and returns an access token.
	Signin(ctx context.Context, email, password string) (string, error)

	// GetUserByID resolves a live account by id.
	GetUserByID(ctx context.Context, userID string) (*User, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	jwtCfg config.JWTConfig
}

func NewAuthService(repo AuthRepo, jwtCfg config.JWTConfig, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		jwtCfg: jwtCfg,
	}
}

func (s *AuthServiceImpl) Signup(ctx context.Context, email, password, passwordCheck string) (string, error) {
	if !api.ValidEmail(email) {
		return "", fmt.Errorf("INVALID_EMAIL: %w", api.ErrValidation)
	}
	if !api.ValidPassword(password) {
		return "", fmt.Errorf("INVALID_PASSWORD: %w", api.ErrValidation)
	}
	if password != passwordCheck {
		return "", fmt.Errorf("PASSWORD_MISMATCH: %w", api.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, email, string(hashed))
	if err != nil {
		return "", err
	}

	token, err := GenerateAccessToken(s.jwtCfg, user.ID, user.Role)
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "Signup successful", slog.String("userID", user.ID))
	return token, nil
}

func (s *AuthServiceImpl) Signin(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			// Do not reveal whether the email exists.
			return "", fmt.Errorf("INVALID_USER: %w", api.ErrUnauthenticated)
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("INVALID_PASSWORD: %w", api.ErrUnauthenticated)
	}

	token, err := GenerateAccessToken(s.jwtCfg, user.ID, user.Role)
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "Signin successful", slog.String("userID", user.ID))
	return token, nil
}

func (s *AuthServiceImpl) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}
