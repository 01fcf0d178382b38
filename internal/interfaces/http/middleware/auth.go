package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/omnistock/backend/internal/infrastructure/auth"
	"github.com/omnistock/backend/internal/interfaces/http/dto"
)

// Context keys set by the auth middleware
const (
	ContextUserID   = "auth_user_id"
	ContextUsername = "auth_username"
)

// JWTAuth validates the bearer token on every request except the listed
// skip paths (login, health probes, webhooks — webhooks authenticate via
// idempotent processing, not sessions).
func JWTAuth(tokens *auth.JWTService, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.Fail("MISSING_TOKEN", "Authorization header with bearer token is required"))
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.Fail("INVALID_TOKEN", "Session token is invalid or expired"))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// CurrentUsername returns the authenticated username, or "anonymous" when
// the route is unauthenticated
func CurrentUsername(c *gin.Context) string {
	if username := c.GetString(ContextUsername); username != "" {
		return username
	}
	return "anonymous"
}
