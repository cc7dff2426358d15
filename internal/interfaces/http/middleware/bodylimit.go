package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/roofpo/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size. Multipart
// uploads get uploadBytes instead so invoice attachments fit.
func BodyLimit(maxBytes, uploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if uploadBytes > 0 && strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = uploadBytes
		}

		if c.Request.ContentLength > limit {
			abortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size")
			return
		}

		// Bodies without a declared length are cut off while reading
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
