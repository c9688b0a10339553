package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uxlens/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithDetail(
				"Request body exceeds the maximum allowed size",
				dto.CodePayloadTooLarge,
				c.GetString("correlation_id"),
			))
			return
		}

		// Streaming requests without a Content-Length still get capped
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
