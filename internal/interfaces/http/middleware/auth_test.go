package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnistock/backend/internal/infrastructure/auth"
	"github.com/omnistock/backend/internal/infrastructure/config"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "omnistock-test"})

	router := gin.New()
	router.Use(JWTAuth(tokens, "/open"))
	router.GET("/open", func(c *gin.Context) { c.String(http.StatusOK, "open") })
	router.GET("/protected", func(c *gin.Context) { c.String(http.StatusOK, CurrentUsername(c)) })
	return router, tokens
}

func TestJWTAuthMiddleware(t *testing.T) {
	t.Run("valid token passes and exposes the username", func(t *testing.T) {
		router, tokens := newAuthTestRouter(t)
		token, err := tokens.Generate(uuid.New(), "alice")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", rec.Body.String())
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		router, _ := newAuthTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "MISSING_TOKEN")
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		router, _ := newAuthTestRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
	})

	t.Run("skip paths stay open", func(t *testing.T) {
		router, _ := newAuthTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCurrentUsernameFallsBackToAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "anonymous", CurrentUsername(c))
}
