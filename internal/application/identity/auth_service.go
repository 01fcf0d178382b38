// Package identity contains the dashboard authentication service.
package identity

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/identity"
	"github.com/omnistock/backend/internal/domain/shared"
	"github.com/omnistock/backend/internal/infrastructure/auth"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords,
// deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("identity: invalid credentials")

// LoginRequest is the input for a dashboard login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
	DisplayName string `json:"display_name"`
}

// AuthService handles dashboard session use cases
type AuthService struct {
	users  identity.UserRepository
	tokens *auth.JWTService
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users identity.UserRepository, tokens *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Login verifies credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Active || !user.VerifyPassword(req.Password) {
		s.logger.Warn("Failed login attempt", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("username", username))
	return &LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		DisplayName: user.DisplayName,
	}, nil
}
