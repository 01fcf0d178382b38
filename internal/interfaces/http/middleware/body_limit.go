package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omnistock/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects request bodies larger than maxBytes. Webhook and API
// payloads here are small; anything larger is misuse.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.Fail("BODY_TOO_LARGE", "Request body exceeds the allowed size"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
