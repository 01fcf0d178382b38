package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/identity"
	"github.com/omnistock/backend/internal/domain/shared"
	"github.com/omnistock/backend/internal/infrastructure/auth"
	"github.com/omnistock/backend/internal/infrastructure/config"
)

type memoryUserRepository struct {
	users map[string]*identity.User
}

func (r *memoryUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	if user, ok := r.users[username]; ok {
		return user, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryUserRepository) Save(ctx context.Context, user *identity.User) error {
	if r.users == nil {
		r.users = make(map[string]*identity.User)
	}
	r.users[user.Username] = user
	return nil
}

func newTestAuthService(t *testing.T, users ...*identity.User) *AuthService {
	t.Helper()
	repo := &memoryUserRepository{}
	for _, user := range users {
		require.NoError(t, repo.Save(context.Background(), user))
	}
	tokens := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "omnistock-test"})
	return NewAuthService(repo, tokens, zap.NewNop())
}

func TestLogin(t *testing.T) {
	user, err := identity.NewUser("alice", "correct-horse", "Alice")
	require.NoError(t, err)

	t.Run("issues a session token", func(t *testing.T) {
		service := newTestAuthService(t, user)

		resp, err := service.Login(context.Background(), LoginRequest{Username: " alice ", Password: "correct-horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "Alice", resp.DisplayName)
	})

	t.Run("wrong password", func(t *testing.T) {
		service := newTestAuthService(t, user)
		_, err := service.Login(context.Background(), LoginRequest{Username: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		service := newTestAuthService(t)
		_, err := service.Login(context.Background(), LoginRequest{Username: "nobody", Password: "whatever"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated user", func(t *testing.T) {
		disabled, err := identity.NewUser("bob", "correct-horse", "Bob")
		require.NoError(t, err)
		disabled.Active = false

		service := newTestAuthService(t, disabled)
		_, err = service.Login(context.Background(), LoginRequest{Username: "bob", Password: "correct-horse"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
