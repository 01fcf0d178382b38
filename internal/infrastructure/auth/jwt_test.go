package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnistock/backend/internal/infrastructure/config"
)

func newTestJWTService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret",
		Expiration: expiration,
		Issuer:     "omnistock-test",
	})
}

func TestJWTGenerateAndValidate(t *testing.T) {
	service := newTestJWTService(time.Hour)
	userID := uuid.New()

	token, err := service.Generate(userID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)

	claims, err := service.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "omnistock-test", claims.Issuer)
}

func TestJWTValidateRejectsExpired(t *testing.T) {
	service := newTestJWTService(-time.Minute)

	token, err := service.Generate(uuid.New(), "alice")
	require.NoError(t, err)

	_, err = service.Validate(token.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTValidateRejectsWrongSecret(t *testing.T) {
	token, err := newTestJWTService(time.Hour).Generate(uuid.New(), "alice")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "different", Expiration: time.Hour, Issuer: "x"})
	_, err = other.Validate(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidateRejectsGarbage(t *testing.T) {
	service := newTestJWTService(time.Hour)
	_, err := service.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
